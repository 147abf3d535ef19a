package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util"
)

// LifecycleService coordinates ticket transitions. Each transition commits
// the row change and its audit event atomically in the repository; the
// dispatcher fan-out afterwards is fire and forget and never fails the
// operation.
type LifecycleService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	eventLog   repository.EventRepository
	reports    repository.ClosureReportRepository
	rules      config.RulesConfig
	dispatcher events.Dispatcher
}

// LifecycleDependencies bundles collaborators for the lifecycle service.
type LifecycleDependencies struct {
	TicketRepo  repository.TicketRepository
	UserRepo    repository.UserRepository
	EventRepo   repository.EventRepository
	ClosureRepo repository.ClosureReportRepository
	Rules       config.RulesConfig
	Dispatcher  events.Dispatcher
}

// NewLifecycleService constructs the service.
func NewLifecycleService(deps LifecycleDependencies) *LifecycleService {
	return &LifecycleService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		eventLog:   deps.EventRepo,
		reports:    deps.ClosureRepo,
		rules:      deps.Rules,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicketInput describes ticket creation payload. Priority is absent
// on purpose: it derives from the requester's group and is never taken
// from the caller.
type CreateTicketInput struct {
	Subject     string
	Description string
	Category    domain.TicketCategory
}

// ClosureInput carries the structured resolution record required to close.
type ClosureInput struct {
	ProblemType        domain.ProblemType
	ProblemSubtype     string
	RootCause          string
	SolutionApplied    string
	PartsUsed          string
	TechnicalNotes     string
	Recommendations    string
	IsRecurringProblem bool
	ReplacedParts      []ReplacedPartInput
}

// ReplacedPartInput is one swapped part on a closure report.
type ReplacedPartInput struct {
	PartName     string
	SerialNumber string
}

// ListInput describes listing filters. Reopened matches tickets with a
// reopened event in their history, whatever their live status.
type ListInput struct {
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	Group       *string
	Reopened    bool
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// CreateTicket opens a ticket for the requester. The priority comes from
// the group-to-priority table and is immutable afterwards.
func (s *LifecycleService) CreateTicket(ctx context.Context, requester *domain.User, input CreateTicketInput) (*domain.Ticket, error) {
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return nil, util.NewValidationError("subject is required", map[string]any{"field": "subject"})
	}
	if !domain.ValidCategory(input.Category) {
		return nil, util.NewValidationError("unknown category", map[string]any{"field": "category", "value": input.Category})
	}

	ticket := &domain.Ticket{
		Subject:     subject,
		Description: strings.TrimSpace(input.Description),
		Category:    input.Category,
		Status:      domain.TicketStatusOpen,
		Priority:    s.rules.PriorityForGroup(requester.Group),
		RequesterID: requester.ID,
	}

	if _, err := s.tickets.CreateWithEvent(ctx, ticket); err != nil {
		return nil, util.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  requester.ID,
		Payload: events.TicketCreatedPayload{
			ShortID:     ticket.ShortID,
			Subject:     ticket.Subject,
			Category:    ticket.Category,
			Priority:    ticket.Priority,
			RequesterID: ticket.RequesterID,
		},
	})
	return ticket, nil
}

// Claim puts an unclaimed open ticket in progress under the acting
// technician. Exactly one claim can ever succeed per ticket.
func (s *LifecycleService) Claim(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	if !actor.IsTechnician() && !actor.IsAdmin() {
		return nil, util.NewForbidden("only technicians can claim tickets")
	}

	ticket, _, err := s.tickets.Claim(ctx, ticketID, actor.ID)
	if err != nil {
		return nil, util.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketClaimed,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload:  events.TicketClaimedPayload{TechnicianID: actor.ID},
	})
	return ticket, nil
}

// AddTechnician assigns a further technician to a ticket. Assignment is
// an admin capability and works from any status; the target must hold
// the technician role. Re-adding is a silent no-op.
func (s *LifecycleService) AddTechnician(ctx context.Context, actor *domain.User, ticketID, technicianID string) (*domain.Ticket, error) {
	if !actor.IsAdmin() {
		return nil, util.NewForbidden("only admins can assign technicians")
	}
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return nil, util.MapError(err)
	}

	technician, err := s.users.GetByID(ctx, technicianID)
	if err != nil {
		return nil, util.MapError(err)
	}
	if !technician.IsTechnician() {
		return nil, util.NewNotFound("technician", map[string]any{"user_id": technicianID})
	}

	updated, event, err := s.tickets.AddTechnician(ctx, ticketID, actor.ID, technicianID)
	if err != nil {
		return nil, util.MapError(err)
	}

	if event != nil {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketTechnicianAdded,
			TicketID: updated.ID,
			ActorID:  actor.ID,
			Payload:  events.TicketTechnicianAddedPayload{TechnicianID: technicianID},
		})
	}
	return updated, nil
}

// CloseWithReport resolves a ticket. The report is validated first, then
// report, part rows, ticket transition and closed event commit together.
func (s *LifecycleService) CloseWithReport(ctx context.Context, actor *domain.User, ticketID string, input ClosureInput) (*domain.Ticket, *domain.ClosureReport, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, util.MapError(err)
	}
	if !ticket.IsHandledBy(actor.ID) {
		return nil, nil, util.NewForbidden("only an assigned technician can close this ticket")
	}
	if err := validateClosure(input); err != nil {
		return nil, nil, err
	}

	report := &domain.ClosureReport{
		ProblemType:        input.ProblemType,
		ProblemSubtype:     strings.TrimSpace(input.ProblemSubtype),
		RootCause:          strings.TrimSpace(input.RootCause),
		SolutionApplied:    strings.TrimSpace(input.SolutionApplied),
		PartsUsed:          strings.TrimSpace(input.PartsUsed),
		TechnicalNotes:     strings.TrimSpace(input.TechnicalNotes),
		Recommendations:    strings.TrimSpace(input.Recommendations),
		IsRecurringProblem: input.IsRecurringProblem,
	}
	for _, part := range input.ReplacedParts {
		report.ReplacedParts = append(report.ReplacedParts, domain.ReplacedPart{
			PartName:     strings.TrimSpace(part.PartName),
			SerialNumber: strings.TrimSpace(part.SerialNumber),
		})
	}

	updated, event, err := s.tickets.CloseWithReport(ctx, ticketID, actor.ID, report)
	if err != nil {
		return nil, nil, util.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketClosed,
		TicketID: updated.ID,
		ActorID:  actor.ID,
		Payload: events.TicketClosedPayload{
			PreviousStatus:  domain.TicketStatus(event.FromValue),
			ClosureReportID: report.ID,
			ProblemType:     report.ProblemType,
		},
	})
	return updated, report, nil
}

// Reopen puts a closed ticket back into circulation. Only a technician
// with a claim relationship can reopen; the original claim and
// technician membership survive and closed_at is cleared.
func (s *LifecycleService) Reopen(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, util.MapError(err)
	}
	if !ticket.IsHandledBy(actor.ID) {
		return nil, util.NewForbidden("only an assigned technician can reopen this ticket")
	}

	updated, _, err := s.tickets.Reopen(ctx, ticketID, actor.ID)
	if err != nil {
		return nil, util.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketReopened,
		TicketID: updated.ID,
		ActorID:  actor.ID,
		Payload:  events.TicketReopenedPayload{},
	})
	return updated, nil
}

// GetTicket returns one ticket subject to role visibility: employees see
// only their own tickets. The reference is either the row ID or the
// human-facing INC short identifier.
func (s *LifecycleService) GetTicket(ctx context.Context, actor *domain.User, ref string) (*domain.Ticket, error) {
	ticket, err := s.findTicket(ctx, ref)
	if err != nil {
		return nil, util.MapError(err)
	}
	if !s.canSee(actor, ticket) {
		return nil, util.NewForbidden("not allowed to view this ticket")
	}
	return ticket, nil
}

func (s *LifecycleService) findTicket(ctx context.Context, ref string) (*domain.Ticket, error) {
	if strings.HasPrefix(ref, "INC-") {
		return s.tickets.GetByShortID(ctx, ref)
	}
	return s.tickets.GetByID(ctx, ref)
}

// ListTickets returns tickets visible to the actor: employees only their
// own, technicians and admins everything.
func (s *LifecycleService) ListTickets(ctx context.Context, actor *domain.User, input ListInput) ([]domain.Ticket, error) {
	filter := repository.TicketFilter{
		Statuses:    input.Statuses,
		Priorities:  input.Priorities,
		Group:       input.Group,
		Reopened:    input.Reopened,
		SearchTerm:  input.SearchTerm,
		CreatedFrom: input.CreatedFrom,
		CreatedTo:   input.CreatedTo,
		Limit:       input.Limit,
		Offset:      input.Offset,
	}
	if !actor.IsTechnician() && !actor.IsAdmin() {
		requesterID := actor.ID
		filter.RequesterID = &requesterID
	}
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, util.MapError(err)
	}
	return tickets, nil
}

// History returns the full audit trail of a ticket, oldest first.
func (s *LifecycleService) History(ctx context.Context, actor *domain.User, ticketID string) ([]domain.TicketEvent, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, util.MapError(err)
	}
	if !s.canSee(actor, ticket) {
		return nil, util.NewForbidden("not allowed to view this ticket")
	}
	history, err := s.eventLog.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, util.MapError(err)
	}
	return history, nil
}

// ClosureReports returns every closure report a ticket accumulated over
// close and reopen cycles, oldest first. The latest is authoritative.
func (s *LifecycleService) ClosureReports(ctx context.Context, actor *domain.User, ticketID string) ([]domain.ClosureReport, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, util.MapError(err)
	}
	if !s.canSee(actor, ticket) {
		return nil, util.NewForbidden("not allowed to view this ticket")
	}
	reports, err := s.reports.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, util.MapError(err)
	}
	return reports, nil
}

// TechnicianDashboard summarizes the queue from a technician's point of
// view: the unassigned pool plus their own open and closed work.
func (s *LifecycleService) TechnicianDashboard(ctx context.Context, actor *domain.User) (*repository.TechnicianDashboard, error) {
	if !actor.IsTechnician() {
		return nil, util.NewForbidden("technician dashboard requires the technician role")
	}
	counts, err := s.tickets.TechnicianDashboard(ctx, actor.ID)
	if err != nil {
		return nil, util.MapError(err)
	}
	return counts, nil
}

// EmployeeDashboard summarizes the requester's own tickets.
func (s *LifecycleService) EmployeeDashboard(ctx context.Context, actor *domain.User) (*repository.EmployeeDashboard, error) {
	if actor.Role != domain.RoleEmployee {
		return nil, util.NewForbidden("employee dashboard requires the employee role")
	}
	counts, err := s.tickets.EmployeeDashboard(ctx, actor.ID)
	if err != nil {
		return nil, util.MapError(err)
	}
	return counts, nil
}

func (s *LifecycleService) canSee(actor *domain.User, ticket *domain.Ticket) bool {
	if actor.IsAdmin() || actor.IsTechnician() {
		return true
	}
	return ticket.RequesterID == actor.ID
}

func validateClosure(input ClosureInput) error {
	details := map[string]any{}
	if !domain.ValidProblemType(input.ProblemType) {
		details["problem_type"] = "must be one of hardware, software, network, other"
	}
	if strings.TrimSpace(input.RootCause) == "" {
		details["root_cause"] = "required"
	}
	if strings.TrimSpace(input.SolutionApplied) == "" {
		details["solution_applied"] = "required"
	}
	for i, part := range input.ReplacedParts {
		if strings.TrimSpace(part.PartName) == "" {
			details["replaced_parts"] = map[string]any{"index": i, "part_name": "required"}
			break
		}
	}
	if len(details) > 0 {
		return util.NewValidationError("closure report is invalid", details)
	}
	return nil
}

func (s *LifecycleService) publishEvent(ctx context.Context, event events.Event) {
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
