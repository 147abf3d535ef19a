package service

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util"
)

// MessageService manages the conversation thread and attachment metadata
// of a ticket.
type MessageService struct {
	tickets     repository.TicketRepository
	messages    repository.MessageRepository
	attachments repository.AttachmentRepository
	eventLog    repository.EventRepository
	rules       config.RulesConfig
	dispatcher  events.Dispatcher
}

// MessageDependencies bundles collaborators for the message service.
type MessageDependencies struct {
	TicketRepo     repository.TicketRepository
	MessageRepo    repository.MessageRepository
	AttachmentRepo repository.AttachmentRepository
	EventRepo      repository.EventRepository
	Rules          config.RulesConfig
	Dispatcher     events.Dispatcher
}

// NewMessageService constructs the service.
func NewMessageService(deps MessageDependencies) *MessageService {
	return &MessageService{
		tickets:     deps.TicketRepo,
		messages:    deps.MessageRepo,
		attachments: deps.AttachmentRepo,
		eventLog:    deps.EventRepo,
		rules:       deps.Rules,
		dispatcher:  deps.Dispatcher,
	}
}

// AttachmentInput describes uploaded file metadata.
type AttachmentInput struct {
	FileName   string
	MimeType   string
	SizeBytes  int64
	StorageKey string
}

// AddMessage appends a message to the thread. Requester, handlers and
// admins may write; nobody else sees the ticket at all.
func (s *MessageService) AddMessage(ctx context.Context, actor *domain.User, ticketID, body string) (*domain.TicketMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, util.NewValidationError("message text is required", map[string]any{"field": "message"})
	}

	ticket, err := s.authorize(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}

	message := &domain.TicketMessage{
		TicketID:    ticket.ID,
		SenderID:    actor.ID,
		MessageText: body,
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, util.MapError(err)
	}

	if err := s.eventLog.Append(ctx, &domain.TicketEvent{
		TicketID:  ticket.ID,
		ActorID:   actor.ID,
		EventType: domain.EventTypeMessageSent,
		ToValue:   message.ID,
	}); err != nil {
		return nil, util.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketMessageAdded,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketMessageAddedPayload{
			MessageID:   message.ID,
			SenderID:    actor.ID,
			BodyPreview: preview(body, 120),
		},
	})
	return message, nil
}

// ListMessages returns the thread in chronological order.
func (s *MessageService) ListMessages(ctx context.Context, actor *domain.User, ticketID string) ([]domain.TicketMessage, error) {
	if _, err := s.authorize(ctx, actor, ticketID); err != nil {
		return nil, err
	}
	messages, err := s.messages.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, util.MapError(err)
	}
	return messages, nil
}

// AddAttachment records uploaded file metadata after size and extension
// checks. The binary is assumed already placed at the storage key.
func (s *MessageService) AddAttachment(ctx context.Context, actor *domain.User, ticketID string, input AttachmentInput) (*domain.TicketAttachment, error) {
	if input.FileName == "" {
		return nil, util.NewValidationError("file name is required", map[string]any{"field": "file_name"})
	}
	if input.SizeBytes <= 0 || input.SizeBytes > s.rules.MaxUploadBytes {
		return nil, util.NewValidationError("file size out of bounds", map[string]any{
			"field": "size_bytes", "max_bytes": s.rules.MaxUploadBytes})
	}
	if !s.allowedFileType(input.FileName) {
		return nil, util.NewValidationError("file type not allowed", map[string]any{
			"field": "file_name", "allowed": s.rules.AllowedFileTypes})
	}

	ticket, err := s.authorize(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}

	attachment := &domain.TicketAttachment{
		TicketID:   ticket.ID,
		UploadedBy: actor.ID,
		FileName:   input.FileName,
		MimeType:   input.MimeType,
		SizeBytes:  input.SizeBytes,
		StorageKey: input.StorageKey,
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		return nil, util.MapError(err)
	}

	if err := s.eventLog.Append(ctx, &domain.TicketEvent{
		TicketID:  ticket.ID,
		ActorID:   actor.ID,
		EventType: domain.EventTypeAttachmentAdded,
		ToValue:   attachment.ID,
	}); err != nil {
		return nil, util.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAttachmentAdded,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketAttachmentAddedPayload{
			AttachmentID: attachment.ID,
			FileName:     attachment.FileName,
			SizeBytes:    attachment.SizeBytes,
		},
	})
	return attachment, nil
}

// ListAttachments returns attachment metadata in upload order.
func (s *MessageService) ListAttachments(ctx context.Context, actor *domain.User, ticketID string) ([]domain.TicketAttachment, error) {
	if _, err := s.authorize(ctx, actor, ticketID); err != nil {
		return nil, err
	}
	attachments, err := s.attachments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, util.MapError(err)
	}
	return attachments, nil
}

func (s *MessageService) authorize(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, util.MapError(err)
	}
	if actor.IsAdmin() || actor.IsTechnician() || ticket.RequesterID == actor.ID {
		return ticket, nil
	}
	return nil, util.NewForbidden("not allowed to access this ticket")
}

func (s *MessageService) allowedFileType(fileName string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	for _, allowed := range s.rules.AllowedFileTypes {
		if ext == strings.ToLower(strings.TrimSpace(allowed)) {
			return true
		}
	}
	return false
}

func (s *MessageService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func preview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
