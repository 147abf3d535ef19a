package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/analytics"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/pkg/util"
)

// ReportQuery captures the shared filter query parameters of the report
// endpoints.
type ReportQuery struct {
	DateRange    string
	StartDate    string
	EndDate      string
	Status       string
	Priority     string
	Category     string
	RequesterID  string
	TechnicianID string
	Group        string
}

var validWindows = map[analytics.Window]bool{
	analytics.WindowToday:   true,
	analytics.WindowWeek:    true,
	analytics.WindowMonth:   true,
	analytics.WindowQuarter: true,
	analytics.WindowYear:    true,
	analytics.WindowCustom:  true,
	analytics.WindowAll:     true,
}

// ToFilter validates the query and builds the analytics filter. An empty
// date range places no time restriction.
func (q ReportQuery) ToFilter() (analytics.Filter, error) {
	window := analytics.Window(q.DateRange)
	if window == "" {
		window = analytics.WindowAll
	}
	if !validWindows[window] {
		return analytics.Filter{}, util.NewValidationError("unknown date_range", map[string]any{"field": "date_range", "value": q.DateRange})
	}

	f := analytics.Filter{
		Window:       window,
		Status:       domain.TicketStatus(q.Status),
		Priority:     domain.TicketPriority(q.Priority),
		Category:     domain.TicketCategory(q.Category),
		RequesterID:  q.RequesterID,
		TechnicianID: q.TechnicianID,
		Group:        q.Group,
	}

	if window == analytics.WindowCustom {
		if q.StartDate == "" || q.EndDate == "" {
			return analytics.Filter{}, util.NewValidationError("custom range requires start_date and end_date", nil)
		}
		start, err := time.Parse("2006-01-02", q.StartDate)
		if err != nil {
			return analytics.Filter{}, util.NewValidationError("invalid start_date", map[string]any{"field": "start_date", "value": q.StartDate})
		}
		end, err := time.Parse("2006-01-02", q.EndDate)
		if err != nil {
			return analytics.Filter{}, util.NewValidationError("invalid end_date", map[string]any{"field": "end_date", "value": q.EndDate})
		}
		if end.Before(start) {
			return analytics.Filter{}, util.NewValidationError("end_date before start_date", nil)
		}
		f.StartDate = start
		f.EndDate = end
	}
	return f, nil
}
