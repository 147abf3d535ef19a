package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketClaimed         EventType = "ticket_claimed"
	EventTicketTechnicianAdded EventType = "ticket_technician_added"
	EventTicketClosed          EventType = "ticket_closed"
	EventTicketReopened        EventType = "ticket_reopened"
	EventTicketMessageAdded    EventType = "ticket_message_added"
	EventTicketAttachmentAdded EventType = "ticket_attachment_added"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	ShortID     string                `json:"short_id"`
	Subject     string                `json:"subject"`
	Category    domain.TicketCategory `json:"category"`
	Priority    domain.TicketPriority `json:"priority"`
	RequesterID string                `json:"requester_id"`
}

// TicketClaimedPayload payload.
type TicketClaimedPayload struct {
	TechnicianID string `json:"technician_id"`
}

// TicketTechnicianAddedPayload payload.
type TicketTechnicianAddedPayload struct {
	TechnicianID string `json:"technician_id"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	PreviousStatus  domain.TicketStatus `json:"previous_status"`
	ClosureReportID string              `json:"closure_report_id"`
	ProblemType     domain.ProblemType  `json:"problem_type"`
}

// TicketReopenedPayload payload.
type TicketReopenedPayload struct {
	Reason string `json:"reason,omitempty"`
}

// TicketMessageAddedPayload payload.
type TicketMessageAddedPayload struct {
	MessageID   string `json:"message_id"`
	SenderID    string `json:"sender_id"`
	BodyPreview string `json:"body_preview"`
}

// TicketAttachmentAddedPayload payload.
type TicketAttachmentAddedPayload struct {
	AttachmentID string `json:"attachment_id"`
	FileName     string `json:"file_name"`
	SizeBytes    int64  `json:"size_bytes"`
}
