package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Reports        *handlers.ReportsHandler
	Directory      *handlers.DirectoryHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Auth.Me)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/dashboard", cfg.Tickets.Dashboard)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/claim", auth.RequireTechnician(), cfg.Tickets.ClaimTicket)
	tickets.Post("/:id/technicians", auth.RequireAdmin(), cfg.Tickets.AddTechnician)
	tickets.Post("/:id/close", auth.RequireTechnician(), cfg.Tickets.CloseTicket)
	tickets.Post("/:id/reopen", cfg.Tickets.ReopenTicket)
	tickets.Get("/:id/history", cfg.Tickets.GetHistory)
	tickets.Get("/:id/closure-reports", cfg.Tickets.ListClosureReports)
	tickets.Post("/:id/messages", cfg.Tickets.AddMessage)
	tickets.Get("/:id/messages", cfg.Tickets.ListMessages)
	tickets.Post("/:id/attachments", cfg.Tickets.AddAttachment)
	tickets.Get("/:id/attachments", cfg.Tickets.ListAttachments)

	directory := app.Group("/directory", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	directory.Get("/technicians", cfg.Directory.ListTechnicians)
	directory.Get("/employees", auth.RequireAdmin(), cfg.Directory.ListEmployees)

	reports := app.Group("/reports", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	reports.Get("/overview", cfg.Reports.Overview)
	reports.Get("/user-performance", cfg.Reports.UserPerformance)
	reports.Get("/employee-statistics", cfg.Reports.EmployeeStatistics)
	reports.Get("/technician-statistics", cfg.Reports.TechnicianStatistics)
	reports.Get("/group-statistics", cfg.Reports.GroupStatistics)
	reports.Get("/sla", cfg.Reports.SLATracking)
	reports.Get("/quality", cfg.Reports.QualityMetrics)
	reports.Get("/recurring-problems", cfg.Reports.RecurringProblems)
	reports.Get("/workload", cfg.Reports.Workload)
	reports.Get("/trends", cfg.Reports.Trends)
	reports.Get("/first-response", cfg.Reports.FirstResponse)
}
