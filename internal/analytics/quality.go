package analytics

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// QualityReport tracks rework: how often closed work bounces back.
type QualityReport struct {
	ReopenedTickets int     `json:"reopened_tickets"`
	ReopenRate      float64 `json:"reopen_rate"`
	TotalTickets    int     `json:"total_tickets"`
	ClosedTickets   int     `json:"closed_tickets"`
}

// QualityMetrics computes the reopen rate: tickets with at least one
// reopened event over currently closed tickets.
func QualityMetrics(records []Record, f Filter, now time.Time) QualityReport {
	set := f.Apply(records, now)

	var reopened, closed int
	for _, rec := range set {
		if hasReopenedEvent(rec) {
			reopened++
		}
		if rec.Ticket.Status == domain.TicketStatusClosed {
			closed++
		}
	}

	return QualityReport{
		ReopenedTickets: reopened,
		ReopenRate:      safeRate(float64(reopened), float64(closed)),
		TotalTickets:    len(set),
		ClosedTickets:   closed,
	}
}
