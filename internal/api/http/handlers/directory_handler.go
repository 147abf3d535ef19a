package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// DirectoryHandler lists rosters for assignment and filter dropdowns.
type DirectoryHandler struct {
	reports *service.ReportService
}

// NewDirectoryHandler constructs handler.
func NewDirectoryHandler(reportService *service.ReportService) *DirectoryHandler {
	return &DirectoryHandler{reports: reportService}
}

// ListTechnicians GET /directory/technicians.
func (h *DirectoryHandler) ListTechnicians(c *fiber.Ctx) error {
	users, err := h.reports.Technicians(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListEmployees GET /directory/employees.
func (h *DirectoryHandler) ListEmployees(c *fiber.Ctx) error {
	users, err := h.reports.Employees(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
