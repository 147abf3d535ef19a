// Package analytics computes aggregate reports over the ticket store and
// event log. Every computation is a pure function of a record snapshot, a
// filter and an explicit now timestamp; nothing here mutates state.
package analytics

import (
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Person is the directory projection reports need: a display name and the
// organizational group.
type Person struct {
	ID    string
	Name  string
	Group string
	Role  domain.UserRole
}

// Directory maps user IDs to people for name resolution in report rows.
type Directory map[string]Person

// Name resolves a user ID to a display name, falling back to the raw ID
// when the account is gone.
func (d Directory) Name(id string) string {
	if p, ok := d[id]; ok && p.Name != "" {
		return p.Name
	}
	return id
}

// Record is one ticket denormalized for reporting: the current row, the
// requester's directory fields and the ticket's events in ascending
// creation order.
type Record struct {
	Ticket         domain.Ticket
	RequesterName  string
	RequesterGroup string
	Events         []domain.TicketEvent
}

// HandledBy reports whether the user claimed the ticket or joined as an
// additional technician.
func (r Record) HandledBy(userID string) bool {
	return r.Ticket.IsHandledBy(userID)
}
