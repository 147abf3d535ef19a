package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload. Priority is intentionally absent; the
// server derives it from the requester's group.
type CreateTicketRequest struct {
	Subject     string                `json:"subject"`
	Description string                `json:"description"`
	Category    domain.TicketCategory `json:"category"`
}

// AddTechnicianRequest payload.
type AddTechnicianRequest struct {
	TechnicianID string `json:"technician_id"`
}

// ReplacedPartRequest is one swapped part on a closure request.
type ReplacedPartRequest struct {
	PartName     string `json:"part_name"`
	SerialNumber string `json:"serial_number"`
}

// CloseTicketRequest carries the structured resolution record.
type CloseTicketRequest struct {
	ProblemType        domain.ProblemType    `json:"problem_type"`
	ProblemSubtype     string                `json:"problem_subtype"`
	RootCause          string                `json:"root_cause"`
	SolutionApplied    string                `json:"solution_applied"`
	PartsUsed          string                `json:"parts_used"`
	TechnicalNotes     string                `json:"technical_notes"`
	Recommendations    string                `json:"recommendations"`
	IsRecurringProblem bool                  `json:"is_recurring_problem"`
	ReplacedParts      []ReplacedPartRequest `json:"replaced_parts"`
}

// CreateMessageRequest payload.
type CreateMessageRequest struct {
	Body string `json:"body"`
}

// CreateAttachmentRequest registers uploaded file metadata.
type CreateAttachmentRequest struct {
	FileName   string `json:"file_name"`
	MimeType   string `json:"mime_type"`
	SizeBytes  int64  `json:"size_bytes"`
	StorageKey string `json:"storage_key"`
}

// TicketSummary response.
type TicketSummary struct {
	ID                    string                `json:"id"`
	ShortID               string                `json:"short_id"`
	Subject               string                `json:"subject"`
	Category              domain.TicketCategory `json:"category"`
	Status                domain.TicketStatus   `json:"status"`
	Priority              domain.TicketPriority `json:"priority"`
	RequesterID           string                `json:"requester_id"`
	ClaimedBy             *string               `json:"claimed_by"`
	AdditionalTechnicians []string              `json:"additional_technicians"`
	CreatedAt             time.Time             `json:"created_at"`
	UpdatedAt             time.Time             `json:"updated_at"`
	ClosedAt              *time.Time            `json:"closed_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Description string                `json:"description"`
	History     []TicketEventResponse `json:"history"`
}

// TicketEventResponse is one audit trail entry.
type TicketEventResponse struct {
	ID        string                 `json:"id"`
	EventType domain.TicketEventType `json:"event_type"`
	ActorID   string                 `json:"actor_id"`
	FromValue string                 `json:"from_value"`
	ToValue   string                 `json:"to_value"`
	CreatedAt time.Time              `json:"created_at"`
}

// ReplacedPartResponse metadata.
type ReplacedPartResponse struct {
	ID           string `json:"id"`
	PartName     string `json:"part_name"`
	SerialNumber string `json:"serial_number"`
}

// ClosureReportResponse is the resolution record returned on close and
// on the reports listing.
type ClosureReportResponse struct {
	ID                 string                 `json:"id"`
	TicketID           string                 `json:"ticket_id"`
	ProblemType        domain.ProblemType     `json:"problem_type"`
	ProblemSubtype     string                 `json:"problem_subtype"`
	RootCause          string                 `json:"root_cause"`
	SolutionApplied    string                 `json:"solution_applied"`
	PartsUsed          string                 `json:"parts_used"`
	TechnicalNotes     string                 `json:"technical_notes"`
	Recommendations    string                 `json:"recommendations"`
	IsRecurringProblem bool                   `json:"is_recurring_problem"`
	ReplacedParts      []ReplacedPartResponse `json:"replaced_parts"`
	CreatedBy          string                 `json:"created_by"`
	CreatedAt          time.Time              `json:"created_at"`
}

// MessageResponse represents one thread message.
type MessageResponse struct {
	ID          string    `json:"id"`
	TicketID    string    `json:"ticket_id"`
	SenderID    string    `json:"sender_id"`
	MessageText string    `json:"message_text"`
	CreatedAt   time.Time `json:"created_at"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticket_id"`
	UploadedBy string    `json:"uploaded_by"`
	FileName   string    `json:"file_name"`
	MimeType   string    `json:"mime_type"`
	SizeBytes  int64     `json:"size_bytes"`
	StorageKey string    `json:"storage_key"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewTicketSummary maps the domain aggregate.
func NewTicketSummary(t *domain.Ticket) TicketSummary {
	technicians := t.AdditionalTechnicians
	if technicians == nil {
		technicians = []string{}
	}
	return TicketSummary{
		ID:                    t.ID,
		ShortID:               t.ShortID,
		Subject:               t.Subject,
		Category:              t.Category,
		Status:                t.Status,
		Priority:              t.Priority,
		RequesterID:           t.RequesterID,
		ClaimedBy:             t.ClaimedBy,
		AdditionalTechnicians: technicians,
		CreatedAt:             t.CreatedAt,
		UpdatedAt:             t.UpdatedAt,
		ClosedAt:              t.ClosedAt,
	}
}

// NewTicketDetail maps the aggregate with its audit trail.
func NewTicketDetail(t *domain.Ticket, history []domain.TicketEvent) TicketDetailResponse {
	events := make([]TicketEventResponse, 0, len(history))
	for i := range history {
		events = append(events, NewTicketEvent(&history[i]))
	}
	return TicketDetailResponse{
		TicketSummary: NewTicketSummary(t),
		Description:   t.Description,
		History:       events,
	}
}

// NewTicketEvent maps one audit entry.
func NewTicketEvent(e *domain.TicketEvent) TicketEventResponse {
	return TicketEventResponse{
		ID:        e.ID,
		EventType: e.EventType,
		ActorID:   e.ActorID,
		FromValue: e.FromValue,
		ToValue:   e.ToValue,
		CreatedAt: e.CreatedAt,
	}
}

// NewClosureReport maps the resolution record.
func NewClosureReport(r *domain.ClosureReport) ClosureReportResponse {
	parts := make([]ReplacedPartResponse, 0, len(r.ReplacedParts))
	for _, p := range r.ReplacedParts {
		parts = append(parts, ReplacedPartResponse{
			ID:           p.ID,
			PartName:     p.PartName,
			SerialNumber: p.SerialNumber,
		})
	}
	return ClosureReportResponse{
		ID:                 r.ID,
		TicketID:           r.TicketID,
		ProblemType:        r.ProblemType,
		ProblemSubtype:     r.ProblemSubtype,
		RootCause:          r.RootCause,
		SolutionApplied:    r.SolutionApplied,
		PartsUsed:          r.PartsUsed,
		TechnicalNotes:     r.TechnicalNotes,
		Recommendations:    r.Recommendations,
		IsRecurringProblem: r.IsRecurringProblem,
		ReplacedParts:      parts,
		CreatedBy:          r.CreatedBy,
		CreatedAt:          r.CreatedAt,
	}
}

// NewMessage maps one thread message.
func NewMessage(m *domain.TicketMessage) MessageResponse {
	return MessageResponse{
		ID:          m.ID,
		TicketID:    m.TicketID,
		SenderID:    m.SenderID,
		MessageText: m.MessageText,
		CreatedAt:   m.CreatedAt,
	}
}

// NewAttachment maps one attachment record.
func NewAttachment(a *domain.TicketAttachment) AttachmentResponse {
	return AttachmentResponse{
		ID:         a.ID,
		TicketID:   a.TicketID,
		UploadedBy: a.UploadedBy,
		FileName:   a.FileName,
		MimeType:   a.MimeType,
		SizeBytes:  a.SizeBytes,
		StorageKey: a.StorageKey,
		CreatedAt:  a.CreatedAt,
	}
}
