package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/analytics"
	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// ReportsHandler exposes the analytics endpoints. All routes are mounted
// behind the admin role gate.
type ReportsHandler struct {
	reports *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reportService *service.ReportService) *ReportsHandler {
	return &ReportsHandler{reports: reportService}
}

// Overview GET /reports/overview.
func (h *ReportsHandler) Overview(c *fiber.Ctx) error {
	f, err := reportFilter(c)
	if err != nil {
		return err
	}
	report, err := h.reports.Overview(c.Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

// UserPerformance GET /reports/user-performance.
func (h *ReportsHandler) UserPerformance(c *fiber.Ctx) error {
	f, err := reportFilter(c)
	if err != nil {
		return err
	}
	report, err := h.reports.UserPerformance(c.Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

// EmployeeStatistics GET /reports/employee-statistics.
func (h *ReportsHandler) EmployeeStatistics(c *fiber.Ctx) error {
	f, err := reportFilter(c)
	if err != nil {
		return err
	}
	report, err := h.reports.EmployeeStatistics(c.Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

// TechnicianStatistics GET /reports/technician-statistics.
func (h *ReportsHandler) TechnicianStatistics(c *fiber.Ctx) error {
	f, err := reportFilter(c)
	if err != nil {
		return err
	}
	report, err := h.reports.TechnicianStatistics(c.Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

// GroupStatistics GET /reports/group-statistics.
func (h *ReportsHandler) GroupStatistics(c *fiber.Ctx) error {
	f, err := reportFilter(c)
	if err != nil {
		return err
	}
	report, err := h.reports.GroupStatistics(c.Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

// SLATracking GET /reports/sla.
func (h *ReportsHandler) SLATracking(c *fiber.Ctx) error {
	f, err := reportFilter(c)
	if err != nil {
		return err
	}
	report, err := h.reports.SLATracking(c.Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

// QualityMetrics GET /reports/quality.
func (h *ReportsHandler) QualityMetrics(c *fiber.Ctx) error {
	f, err := reportFilter(c)
	if err != nil {
		return err
	}
	report, err := h.reports.QualityMetrics(c.Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

// RecurringProblems GET /reports/recurring.
func (h *ReportsHandler) RecurringProblems(c *fiber.Ctx) error {
	f, err := reportFilter(c)
	if err != nil {
		return err
	}
	report, err := h.reports.RecurringProblems(c.Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

// Workload GET /reports/workload.
func (h *ReportsHandler) Workload(c *fiber.Ctx) error {
	f, err := reportFilter(c)
	if err != nil {
		return err
	}
	report, err := h.reports.Workload(c.Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

// Trends GET /reports/trends.
func (h *ReportsHandler) Trends(c *fiber.Ctx) error {
	f, err := reportFilter(c)
	if err != nil {
		return err
	}
	report, err := h.reports.Trends(c.Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

// FirstResponse GET /reports/first-response.
func (h *ReportsHandler) FirstResponse(c *fiber.Ctx) error {
	f, err := reportFilter(c)
	if err != nil {
		return err
	}
	report, err := h.reports.FirstResponse(c.Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

func reportFilter(c *fiber.Ctx) (analytics.Filter, error) {
	query := dto.ReportQuery{
		DateRange:    c.Query("date_range"),
		StartDate:    c.Query("start_date"),
		EndDate:      c.Query("end_date"),
		Status:       c.Query("status"),
		Priority:     c.Query("priority"),
		Category:     c.Query("category"),
		RequesterID:  c.Query("requester_id"),
		TechnicianID: c.Query("technician_id"),
		Group:        c.Query("group"),
	}
	return query.ToFilter()
}
