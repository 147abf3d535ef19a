package dto

import (
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// TechnicianDashboardResponse mirrors the technician queue counters.
type TechnicianDashboardResponse struct {
	UnassignedTickets int `json:"unassigned_tickets"`
	MyOpenTickets     int `json:"my_open_tickets"`
	ClosedTickets     int `json:"closed_tickets"`
}

// EmployeeDashboardResponse mirrors a requester's own ticket counters.
type EmployeeDashboardResponse struct {
	OpenedTickets     int `json:"opened_tickets"`
	UnassignedTickets int `json:"unassigned_tickets"`
	ClosedTickets     int `json:"closed_tickets"`
	TotalTickets      int `json:"total_tickets"`
}

func NewTechnicianDashboard(counts *repository.TechnicianDashboard) TechnicianDashboardResponse {
	return TechnicianDashboardResponse{
		UnassignedTickets: counts.UnassignedTickets,
		MyOpenTickets:     counts.MyOpenTickets,
		ClosedTickets:     counts.ClosedTickets,
	}
}

func NewEmployeeDashboard(counts *repository.EmployeeDashboard) EmployeeDashboardResponse {
	return EmployeeDashboardResponse{
		OpenedTickets:     counts.OpenedTickets,
		UnassignedTickets: counts.UnassignedTickets,
		ClosedTickets:     counts.ClosedTickets,
		TotalTickets:      counts.TotalTickets,
	}
}
