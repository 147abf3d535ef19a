package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusClosed     TicketStatus = "closed"
	// TicketStatusReopened is distinct from open: a reopened ticket keeps
	// its claimed_by and is not offered for claiming again.
	TicketStatusReopened TicketStatus = "reopened"
)

// TicketPriority enumerates SLA urgency tiers.
type TicketPriority string

const (
	TicketPriorityP1 TicketPriority = "P1"
	TicketPriorityP2 TicketPriority = "P2"
	TicketPriorityP3 TicketPriority = "P3"
	TicketPriorityP4 TicketPriority = "P4"
)

// TicketCategory classifies the reported problem area. Set at creation from
// the request and overwritten at closure from the closure report's problem
// type.
type TicketCategory string

const (
	TicketCategoryNetwork  TicketCategory = "Network"
	TicketCategoryHardware TicketCategory = "Hardware"
	TicketCategorySoftware TicketCategory = "Software"
	// TicketCategoryOther is never accepted at creation; it appears only
	// when a closure report diagnoses a problem outside the main areas.
	TicketCategoryOther TicketCategory = "Other"
)

// Ticket is the aggregate for helpdesk incidents. Priority is assigned once
// at creation from the requester's group and never edited afterwards.
// ClaimedBy is a one-way gate: nil until the first technician claims, then
// immutable; later technicians join via AdditionalTechnicians. ClosedAt
// reflects only the latest closure and is cleared on reopen; full history
// lives in the event log.
type Ticket struct {
	ID                    string
	ShortID               string
	Subject               string
	Description           string
	Category              TicketCategory
	Status                TicketStatus
	Priority              TicketPriority
	RequesterID           string
	ClaimedBy             *string
	AdditionalTechnicians []string
	CreatedAt             time.Time
	UpdatedAt             time.Time
	ClosedAt              *time.Time
}

// IsHandledBy reports whether the user claimed the ticket or was added as
// an additional technician.
func (t *Ticket) IsHandledBy(userID string) bool {
	if t.ClaimedBy != nil && *t.ClaimedBy == userID {
		return true
	}
	for _, id := range t.AdditionalTechnicians {
		if id == userID {
			return true
		}
	}
	return false
}

// ValidCategory reports whether the value is a known ticket category.
func ValidCategory(c TicketCategory) bool {
	switch c {
	case TicketCategoryNetwork, TicketCategoryHardware, TicketCategorySoftware:
		return true
	}
	return false
}

// ValidPriority reports whether the value is a known priority tier.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityP1, TicketPriorityP2, TicketPriorityP3, TicketPriorityP4:
		return true
	}
	return false
}
