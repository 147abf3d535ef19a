package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util"
)

// fakeTicketRepo reimplements the compound repository semantics in memory:
// first claim wins, close guards on prior status, reopen only from closed.
type fakeTicketRepo struct {
	mu         sync.Mutex
	seq        int
	tickets    map[string]*domain.Ticket
	events     []domain.TicketEvent
	reports    []domain.ClosureReport
	lastFilter repository.TicketFilter
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]*domain.Ticket{}}
}

func (f *fakeTicketRepo) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeTicketRepo) appendEvent(ticketID, actorID string, et domain.TicketEventType, from, to string) *domain.TicketEvent {
	event := domain.TicketEvent{
		ID:        f.nextID("event"),
		TicketID:  ticketID,
		ActorID:   actorID,
		EventType: et,
		FromValue: from,
		ToValue:   to,
		CreatedAt: time.Now(),
	}
	f.events = append(f.events, event)
	return &event
}

func (f *fakeTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copy := *ticket
	return &copy, nil
}

func (f *fakeTicketRepo) GetByShortID(ctx context.Context, shortID string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ticket := range f.tickets {
		if ticket.ShortID == shortID {
			copy := *ticket
			return &copy, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter
	var out []domain.Ticket
	for _, ticket := range f.tickets {
		if filter.RequesterID != nil && ticket.RequesterID != *filter.RequesterID {
			continue
		}
		if filter.Reopened && !f.hasReopenedEvent(ticket.ID) {
			continue
		}
		out = append(out, *ticket)
	}
	return out, nil
}

func (f *fakeTicketRepo) hasReopenedEvent(ticketID string) bool {
	for _, event := range f.events {
		if event.TicketID == ticketID && event.EventType == domain.EventTypeReopened {
			return true
		}
	}
	return false
}

func (f *fakeTicketRepo) CreateWithEvent(ctx context.Context, ticket *domain.Ticket) (*domain.TicketEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket.ID = f.nextID("ticket")
	ticket.ShortID = fmt.Sprintf("INC-%04d-001", f.seq)
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	stored := *ticket
	f.tickets[ticket.ID] = &stored
	return f.appendEvent(ticket.ID, ticket.RequesterID, domain.EventTypeCreated, "", "open"), nil
}

func (f *fakeTicketRepo) Claim(ctx context.Context, ticketID, technicianID string) (*domain.Ticket, *domain.TicketEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[ticketID]
	if !ok {
		return nil, nil, util.NewNotFound("ticket", nil)
	}
	if ticket.ClaimedBy != nil {
		return nil, nil, util.NewAlreadyClaimed(ticketID)
	}
	if ticket.Status != domain.TicketStatusOpen {
		return nil, nil, util.NewConflict("ticket is not open", nil)
	}
	ticket.ClaimedBy = &technicianID
	ticket.Status = domain.TicketStatusInProgress
	ticket.UpdatedAt = time.Now()
	event := f.appendEvent(ticketID, technicianID, domain.EventTypeClaimed, "open", "in_progress")
	copy := *ticket
	return &copy, event, nil
}

func (f *fakeTicketRepo) AddTechnician(ctx context.Context, ticketID, actorID, technicianID string) (*domain.Ticket, *domain.TicketEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[ticketID]
	if !ok {
		return nil, nil, util.NewNotFound("ticket", nil)
	}
	for _, id := range ticket.AdditionalTechnicians {
		if id == technicianID {
			copy := *ticket
			return &copy, nil, nil
		}
	}
	ticket.AdditionalTechnicians = append(ticket.AdditionalTechnicians, technicianID)
	ticket.UpdatedAt = time.Now()
	event := f.appendEvent(ticketID, actorID, domain.EventTypeTechnicianAdded, "", technicianID)
	copy := *ticket
	return &copy, event, nil
}

func (f *fakeTicketRepo) CloseWithReport(ctx context.Context, ticketID, actorID string, report *domain.ClosureReport) (*domain.Ticket, *domain.TicketEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[ticketID]
	if !ok {
		return nil, nil, util.NewNotFound("ticket", nil)
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil, nil, util.NewAlreadyClosed(ticketID)
	}
	prior := string(ticket.Status)

	report.ID = f.nextID("report")
	report.TicketID = ticketID
	report.CreatedBy = actorID
	report.CreatedAt = time.Now()
	f.reports = append(f.reports, *report)

	now := time.Now()
	ticket.Status = domain.TicketStatusClosed
	ticket.Category = report.ProblemType.Category()
	ticket.ClosedAt = &now
	ticket.UpdatedAt = now
	event := f.appendEvent(ticketID, actorID, domain.EventTypeClosed, prior, "closed")
	copy := *ticket
	return &copy, event, nil
}

func (f *fakeTicketRepo) Reopen(ctx context.Context, ticketID, actorID string) (*domain.Ticket, *domain.TicketEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[ticketID]
	if !ok {
		return nil, nil, util.NewNotFound("ticket", nil)
	}
	if ticket.Status != domain.TicketStatusClosed {
		return nil, nil, util.NewNotClosed(ticketID)
	}
	ticket.Status = domain.TicketStatusReopened
	ticket.ClosedAt = nil
	ticket.UpdatedAt = time.Now()
	event := f.appendEvent(ticketID, actorID, domain.EventTypeReopened, "closed", "open")
	copy := *ticket
	return &copy, event, nil
}

func (f *fakeTicketRepo) TechnicianDashboard(ctx context.Context, technicianID string) (*repository.TechnicianDashboard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := repository.TechnicianDashboard{}
	for _, ticket := range f.tickets {
		if ticket.ClaimedBy == nil && ticket.Status == domain.TicketStatusOpen {
			counts.UnassignedTickets++
		}
		if !ticket.IsHandledBy(technicianID) {
			continue
		}
		switch ticket.Status {
		case domain.TicketStatusOpen:
			counts.MyOpenTickets++
		case domain.TicketStatusClosed:
			counts.ClosedTickets++
		}
	}
	return &counts, nil
}

func (f *fakeTicketRepo) EmployeeDashboard(ctx context.Context, requesterID string) (*repository.EmployeeDashboard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := repository.EmployeeDashboard{}
	for _, ticket := range f.tickets {
		if ticket.RequesterID != requesterID {
			continue
		}
		counts.TotalTickets++
		switch ticket.Status {
		case domain.TicketStatusOpen:
			counts.OpenedTickets++
			if ticket.ClaimedBy == nil {
				counts.UnassignedTickets++
			}
		case domain.TicketStatusClosed:
			counts.ClosedTickets++
		}
	}
	return &counts, nil
}

func (f *fakeTicketRepo) eventTypes(ticketID string) []domain.TicketEventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	var types []domain.TicketEventType
	for _, event := range f.events {
		if event.TicketID == ticketID {
			types = append(types, event.EventType)
		}
	}
	return types
}

type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[string]*domain.User{}}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(f.users)+1)
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) ListByRole(ctx context.Context, role domain.UserRole) ([]domain.User, error) {
	var out []domain.User
	for _, user := range f.users {
		if user.Role == role {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) CountByRole(ctx context.Context, role domain.UserRole) (int, error) {
	users, _ := f.ListByRole(ctx, role)
	return len(users), nil
}

type fakeEventRepo struct {
	tickets *fakeTicketRepo
}

func (f *fakeEventRepo) Append(ctx context.Context, event *domain.TicketEvent) error {
	f.tickets.mu.Lock()
	defer f.tickets.mu.Unlock()
	if event.ID == "" {
		event.ID = f.tickets.nextID("event")
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	f.tickets.events = append(f.tickets.events, *event)
	return nil
}

func (f *fakeEventRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketEvent, error) {
	f.tickets.mu.Lock()
	defer f.tickets.mu.Unlock()
	var out []domain.TicketEvent
	for _, event := range f.tickets.events {
		if event.TicketID == ticketID {
			out = append(out, event)
		}
	}
	return out, nil
}

type fakeClosureRepo struct {
	tickets *fakeTicketRepo
}

func (f *fakeClosureRepo) GetLatestByTicket(ctx context.Context, ticketID string) (*domain.ClosureReport, error) {
	reports, _ := f.ListByTicket(ctx, ticketID)
	if len(reports) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &reports[len(reports)-1], nil
}

func (f *fakeClosureRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.ClosureReport, error) {
	f.tickets.mu.Lock()
	defer f.tickets.mu.Unlock()
	var out []domain.ClosureReport
	for _, report := range f.tickets.reports {
		if report.TicketID == ticketID {
			out = append(out, report)
		}
	}
	return out, nil
}

type fakeMessageRepo struct {
	messages []domain.TicketMessage
}

func (f *fakeMessageRepo) Create(ctx context.Context, message *domain.TicketMessage) error {
	message.ID = fmt.Sprintf("msg-%d", len(f.messages)+1)
	message.CreatedAt = time.Now()
	f.messages = append(f.messages, *message)
	return nil
}

func (f *fakeMessageRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketMessage, error) {
	var out []domain.TicketMessage
	for _, message := range f.messages {
		if message.TicketID == ticketID {
			out = append(out, message)
		}
	}
	return out, nil
}

type fakeAttachmentRepo struct {
	attachments []domain.TicketAttachment
}

func (f *fakeAttachmentRepo) Create(ctx context.Context, attachment *domain.TicketAttachment) error {
	attachment.ID = fmt.Sprintf("att-%d", len(f.attachments)+1)
	attachment.CreatedAt = time.Now()
	f.attachments = append(f.attachments, *attachment)
	return nil
}

func (f *fakeAttachmentRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketAttachment, error) {
	var out []domain.TicketAttachment
	for _, attachment := range f.attachments {
		if attachment.TicketID == ticketID {
			out = append(out, attachment)
		}
	}
	return out, nil
}

// capturingDispatcher records published events for assertions.
type capturingDispatcher struct {
	mu        sync.Mutex
	published []events.Event
}

func (d *capturingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.published = append(d.published, event)
	return nil
}

func (d *capturingDispatcher) Subscribe(et events.EventType, handler events.EventHandler) {}

func (d *capturingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	var types []events.EventType
	for _, event := range d.published {
		types = append(types, event.Type)
	}
	return types
}
