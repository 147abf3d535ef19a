package domain

import "time"

// TicketEventType identifies a lifecycle fact in the audit trail.
type TicketEventType string

const (
	EventTypeCreated         TicketEventType = "created"
	EventTypeClaimed         TicketEventType = "claimed"
	EventTypeAssigned        TicketEventType = "assigned"
	EventTypeTechnicianAdded TicketEventType = "technician_added"
	EventTypeStatusChanged   TicketEventType = "status_changed"
	EventTypeClosed          TicketEventType = "closed"
	EventTypeReopened        TicketEventType = "reopened"
	EventTypeAttachmentAdded TicketEventType = "attachment_added"
	EventTypeMessageSent     TicketEventType = "message_sent"
)

// TicketEvent is an immutable audit fact. Rows are append-only; they are
// never updated or deleted. The event log is the source of truth for
// anything time-ordered the Ticket row cannot express: first technician
// response, reopen history.
type TicketEvent struct {
	ID        string
	TicketID  string
	ActorID   string
	EventType TicketEventType
	FromValue string
	ToValue   string
	CreatedAt time.Time
}
