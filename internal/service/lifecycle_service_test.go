package service

import (
	"context"
	"testing"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/pkg/util"
)

func testUsers() (employee, techA, techB, admin *domain.User) {
	employee = &domain.User{ID: "emp-1", Email: "emp@example.com", FirstName: "Dana", Role: domain.RoleEmployee, Group: "Employee"}
	techA = &domain.User{ID: "tech-a", Email: "a@example.com", FirstName: "Avery", Role: domain.RoleTechnician, Group: "IT"}
	techB = &domain.User{ID: "tech-b", Email: "b@example.com", FirstName: "Blair", Role: domain.RoleTechnician, Group: "IT"}
	admin = &domain.User{ID: "admin-1", Email: "admin@example.com", FirstName: "Root", Role: domain.RoleAdmin, Group: "IT"}
	return
}

func newLifecycleFixture(t *testing.T) (*LifecycleService, *fakeTicketRepo, *capturingDispatcher) {
	t.Helper()
	employee, techA, techB, admin := testUsers()
	tickets := newFakeTicketRepo()
	dispatcher := &capturingDispatcher{}
	svc := NewLifecycleService(LifecycleDependencies{
		TicketRepo:  tickets,
		UserRepo:    newFakeUserRepo(employee, techA, techB, admin),
		EventRepo:   &fakeEventRepo{tickets: tickets},
		ClosureRepo: &fakeClosureRepo{tickets: tickets},
		Rules:       config.DefaultRules(),
		Dispatcher:  dispatcher,
	})
	return svc, tickets, dispatcher
}

func validClosure() ClosureInput {
	return ClosureInput{
		ProblemType:     domain.ProblemTypeSoftware,
		RootCause:       "corrupt driver",
		SolutionApplied: "reinstalled driver",
	}
}

func TestCreateTicketDerivesPriorityFromGroup(t *testing.T) {
	svc, _, _ := newLifecycleFixture(t)
	employee, _, _, _ := testUsers()
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, employee, CreateTicketInput{
		Subject:  "laptop will not boot",
		Category: domain.TicketCategoryHardware,
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if ticket.Priority != domain.TicketPriorityP3 {
		t.Errorf("priority = %s, want P3 for group Employee", ticket.Priority)
	}
	if ticket.Status != domain.TicketStatusOpen {
		t.Errorf("status = %s, want open", ticket.Status)
	}
	if ticket.ShortID == "" {
		t.Error("short ID not assigned")
	}

	director := &domain.User{ID: "dir-1", Role: domain.RoleEmployee, Group: "Director"}
	ticket, err = svc.CreateTicket(ctx, director, CreateTicketInput{
		Subject:  "urgent",
		Category: domain.TicketCategorySoftware,
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if ticket.Priority != domain.TicketPriorityP1 {
		t.Errorf("priority = %s, want P1 for group Director", ticket.Priority)
	}

	unknown := &domain.User{ID: "x-1", Role: domain.RoleEmployee, Group: "Contractor"}
	ticket, err = svc.CreateTicket(ctx, unknown, CreateTicketInput{
		Subject:  "badge reader",
		Category: domain.TicketCategoryNetwork,
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if ticket.Priority != domain.TicketPriorityP4 {
		t.Errorf("priority = %s, want P4 for unknown group", ticket.Priority)
	}
}

func TestCreateTicketValidation(t *testing.T) {
	svc, _, _ := newLifecycleFixture(t)
	employee, _, _, _ := testUsers()
	ctx := context.Background()

	if _, err := svc.CreateTicket(ctx, employee, CreateTicketInput{Subject: "  ", Category: domain.TicketCategoryHardware}); !util.IsCode(err, "VALIDATION_FAILED") {
		t.Errorf("blank subject: err = %v, want VALIDATION_FAILED", err)
	}
	if _, err := svc.CreateTicket(ctx, employee, CreateTicketInput{Subject: "x", Category: "Gardening"}); !util.IsCode(err, "VALIDATION_FAILED") {
		t.Errorf("bad category: err = %v, want VALIDATION_FAILED", err)
	}
	// Other is a closure-only category, never accepted at creation.
	if _, err := svc.CreateTicket(ctx, employee, CreateTicketInput{Subject: "x", Category: domain.TicketCategoryOther}); !util.IsCode(err, "VALIDATION_FAILED") {
		t.Errorf("category Other: err = %v, want VALIDATION_FAILED", err)
	}
}

func TestFullLifecycle(t *testing.T) {
	svc, tickets, dispatcher := newLifecycleFixture(t)
	employee, techA, techB, admin := testUsers()
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, employee, CreateTicketInput{
		Subject:  "screen flicker",
		Category: domain.TicketCategoryHardware,
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	claimed, err := svc.Claim(ctx, techA, ticket.ID)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if claimed.Status != domain.TicketStatusInProgress || claimed.ClaimedBy == nil || *claimed.ClaimedBy != techA.ID {
		t.Fatalf("after claim: %+v", claimed)
	}

	if _, err := svc.AddTechnician(ctx, admin, ticket.ID, techB.ID); err != nil {
		t.Fatalf("AddTechnician: %v", err)
	}

	closure := ClosureInput{
		ProblemType:     domain.ProblemTypeSoftware,
		RootCause:       "bad GPU driver",
		SolutionApplied: "rollback to stable release",
	}
	closed, report, err := svc.CloseWithReport(ctx, techA, ticket.ID, closure)
	if err != nil {
		t.Fatalf("CloseWithReport: %v", err)
	}
	if closed.Status != domain.TicketStatusClosed || closed.ClosedAt == nil {
		t.Errorf("after close: %+v", closed)
	}
	// Closure reclassifies the ticket by the diagnosed problem type.
	if closed.Category != domain.TicketCategorySoftware {
		t.Errorf("category = %s, want Software after software diagnosis", closed.Category)
	}
	if report.ID == "" || report.CreatedBy != techA.ID {
		t.Errorf("report = %+v", report)
	}

	wantEvents := []domain.TicketEventType{
		domain.EventTypeCreated,
		domain.EventTypeClaimed,
		domain.EventTypeTechnicianAdded,
		domain.EventTypeClosed,
	}
	gotEvents := tickets.eventTypes(ticket.ID)
	if len(gotEvents) != len(wantEvents) {
		t.Fatalf("events = %v, want %v", gotEvents, wantEvents)
	}
	for i := range wantEvents {
		if gotEvents[i] != wantEvents[i] {
			t.Errorf("event[%d] = %s, want %s", i, gotEvents[i], wantEvents[i])
		}
	}
	if len(dispatcher.types()) != 4 {
		t.Errorf("published %d events, want 4", len(dispatcher.types()))
	}
}

func TestClaimIsFirstWriterWins(t *testing.T) {
	svc, _, _ := newLifecycleFixture(t)
	employee, techA, techB, _ := testUsers()
	ctx := context.Background()

	ticket, _ := svc.CreateTicket(ctx, employee, CreateTicketInput{Subject: "x", Category: domain.TicketCategoryNetwork})
	if _, err := svc.Claim(ctx, techA, ticket.ID); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if _, err := svc.Claim(ctx, techB, ticket.ID); !util.IsCode(err, "ALREADY_CLAIMED") {
		t.Errorf("second claim: err = %v, want ALREADY_CLAIMED", err)
	}
}

func TestClaimRequiresTechnicianRole(t *testing.T) {
	svc, _, _ := newLifecycleFixture(t)
	employee, _, _, _ := testUsers()
	ctx := context.Background()

	ticket, _ := svc.CreateTicket(ctx, employee, CreateTicketInput{Subject: "x", Category: domain.TicketCategoryNetwork})
	if _, err := svc.Claim(ctx, employee, ticket.ID); !util.IsCode(err, "FORBIDDEN") {
		t.Errorf("employee claim: err = %v, want FORBIDDEN", err)
	}
}

func TestAddTechnicianRules(t *testing.T) {
	svc, _, dispatcher := newLifecycleFixture(t)
	employee, techA, techB, admin := testUsers()
	ctx := context.Background()

	ticket, _ := svc.CreateTicket(ctx, employee, CreateTicketInput{Subject: "x", Category: domain.TicketCategoryNetwork})
	svc.Claim(ctx, techA, ticket.ID)

	// Assignment is an admin capability; even the claiming technician
	// cannot add others.
	if _, err := svc.AddTechnician(ctx, techA, ticket.ID, techB.ID); !util.IsCode(err, "FORBIDDEN") {
		t.Errorf("technician add: err = %v, want FORBIDDEN", err)
	}
	// A target without the technician role reads as a failed lookup.
	if _, err := svc.AddTechnician(ctx, admin, ticket.ID, employee.ID); !util.IsCode(err, "NOT_FOUND") {
		t.Errorf("employee target: err = %v, want NOT_FOUND", err)
	}
	if _, err := svc.AddTechnician(ctx, admin, ticket.ID, "ghost"); !util.IsCode(err, "NOT_FOUND") {
		t.Errorf("unknown target: err = %v, want NOT_FOUND", err)
	}

	published := len(dispatcher.types())
	if _, err := svc.AddTechnician(ctx, admin, ticket.ID, techB.ID); err != nil {
		t.Fatalf("AddTechnician: %v", err)
	}
	// Re-adding is a silent no-op: no event, no publication.
	updated, err := svc.AddTechnician(ctx, admin, ticket.ID, techB.ID)
	if err != nil {
		t.Fatalf("repeat AddTechnician: %v", err)
	}
	if len(updated.AdditionalTechnicians) != 1 {
		t.Errorf("technicians = %v, want one entry", updated.AdditionalTechnicians)
	}
	if got := len(dispatcher.types()); got != published+1 {
		t.Errorf("published = %d, want %d: repeat add publishes nothing", got, published+1)
	}
}

func TestAddTechnicianWorksFromAnyStatus(t *testing.T) {
	svc, _, _ := newLifecycleFixture(t)
	employee, techA, techB, admin := testUsers()
	ctx := context.Background()

	ticket, _ := svc.CreateTicket(ctx, employee, CreateTicketInput{Subject: "x", Category: domain.TicketCategoryNetwork})
	svc.Claim(ctx, techA, ticket.ID)
	if _, _, err := svc.CloseWithReport(ctx, techA, ticket.ID, validClosure()); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Assignment has no status precondition; a closed ticket accepts it.
	updated, err := svc.AddTechnician(ctx, admin, ticket.ID, techB.ID)
	if err != nil {
		t.Fatalf("AddTechnician on closed ticket: %v", err)
	}
	if len(updated.AdditionalTechnicians) != 1 {
		t.Errorf("technicians = %v, want one entry", updated.AdditionalTechnicians)
	}
}

func TestCloseValidatesReport(t *testing.T) {
	svc, _, _ := newLifecycleFixture(t)
	employee, techA, _, _ := testUsers()
	ctx := context.Background()

	ticket, _ := svc.CreateTicket(ctx, employee, CreateTicketInput{Subject: "x", Category: domain.TicketCategoryNetwork})
	svc.Claim(ctx, techA, ticket.ID)

	tests := []struct {
		name  string
		input ClosureInput
	}{
		{"bad problem type", ClosureInput{ProblemType: "magic", RootCause: "a", SolutionApplied: "b"}},
		{"missing root cause", ClosureInput{ProblemType: domain.ProblemTypeNetwork, SolutionApplied: "b"}},
		{"missing solution", ClosureInput{ProblemType: domain.ProblemTypeNetwork, RootCause: "a"}},
		{"nameless part", ClosureInput{
			ProblemType: domain.ProblemTypeHardware, RootCause: "a", SolutionApplied: "b",
			ReplacedParts: []ReplacedPartInput{{SerialNumber: "SN1"}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := svc.CloseWithReport(ctx, techA, ticket.ID, tt.input); !util.IsCode(err, "VALIDATION_FAILED") {
				t.Errorf("err = %v, want VALIDATION_FAILED", err)
			}
		})
	}
}

func TestCloseReopenCloseKeepsAllReports(t *testing.T) {
	svc, tickets, _ := newLifecycleFixture(t)
	employee, techA, _, _ := testUsers()
	ctx := context.Background()

	ticket, _ := svc.CreateTicket(ctx, employee, CreateTicketInput{Subject: "x", Category: domain.TicketCategoryNetwork})
	svc.Claim(ctx, techA, ticket.ID)

	if _, _, err := svc.CloseWithReport(ctx, techA, ticket.ID, validClosure()); err != nil {
		t.Fatalf("first close: %v", err)
	}
	// Double close is rejected.
	if _, _, err := svc.CloseWithReport(ctx, techA, ticket.ID, validClosure()); !util.IsCode(err, "ALREADY_CLOSED") {
		t.Errorf("double close: err = %v, want ALREADY_CLOSED", err)
	}

	reopened, err := svc.Reopen(ctx, techA, ticket.ID)
	if err != nil {
		t.Fatalf("Reopen: %v", err)
	}
	if reopened.Status != domain.TicketStatusReopened || reopened.ClosedAt != nil {
		t.Errorf("after reopen: %+v", reopened)
	}
	// The claim survives the reopen.
	if reopened.ClaimedBy == nil || *reopened.ClaimedBy != techA.ID {
		t.Errorf("claim lost on reopen: %+v", reopened.ClaimedBy)
	}

	if _, _, err := svc.CloseWithReport(ctx, techA, ticket.ID, validClosure()); err != nil {
		t.Fatalf("second close: %v", err)
	}

	reports, err := svc.ClosureReports(ctx, employee, ticket.ID)
	if err != nil {
		t.Fatalf("ClosureReports: %v", err)
	}
	if len(reports) != 2 {
		t.Errorf("got %d reports, want 2 across two closures", len(reports))
	}

	var closedEvents int
	for _, et := range tickets.eventTypes(ticket.ID) {
		if et == domain.EventTypeClosed {
			closedEvents++
		}
	}
	if closedEvents != 2 {
		t.Errorf("closed events = %d, want 2", closedEvents)
	}
}

func TestReopenRequiresClosedStatus(t *testing.T) {
	svc, _, _ := newLifecycleFixture(t)
	employee, techA, _, _ := testUsers()
	ctx := context.Background()

	ticket, _ := svc.CreateTicket(ctx, employee, CreateTicketInput{Subject: "x", Category: domain.TicketCategoryNetwork})
	svc.Claim(ctx, techA, ticket.ID)
	if _, err := svc.Reopen(ctx, techA, ticket.ID); !util.IsCode(err, "NOT_CLOSED") {
		t.Errorf("reopen in-progress ticket: err = %v, want NOT_CLOSED", err)
	}
}

func TestReopenRequiresClaimRelationship(t *testing.T) {
	svc, _, _ := newLifecycleFixture(t)
	employee, techA, techB, admin := testUsers()
	ctx := context.Background()

	ticket, _ := svc.CreateTicket(ctx, employee, CreateTicketInput{Subject: "x", Category: domain.TicketCategoryNetwork})
	svc.Claim(ctx, techA, ticket.ID)
	svc.CloseWithReport(ctx, techA, ticket.ID, validClosure())

	// Only claimed_by or an additional technician may reopen. The
	// requester, an unrelated technician and an admin without a claim
	// relationship are all rejected.
	for name, actor := range map[string]*domain.User{
		"requester":            employee,
		"unrelated technician": techB,
		"admin":                admin,
	} {
		if _, err := svc.Reopen(ctx, actor, ticket.ID); !util.IsCode(err, "FORBIDDEN") {
			t.Errorf("%s reopen: err = %v, want FORBIDDEN", name, err)
		}
	}

	if _, err := svc.Reopen(ctx, techA, ticket.ID); err != nil {
		t.Errorf("claiming technician reopen: %v", err)
	}
}

func TestCloseRequiresClaimRelationship(t *testing.T) {
	svc, _, _ := newLifecycleFixture(t)
	employee, techA, techB, admin := testUsers()
	ctx := context.Background()

	ticket, _ := svc.CreateTicket(ctx, employee, CreateTicketInput{Subject: "x", Category: domain.TicketCategoryNetwork})
	svc.Claim(ctx, techA, ticket.ID)

	for name, actor := range map[string]*domain.User{
		"unassigned technician": techB,
		"admin without claim":   admin,
	} {
		if _, _, err := svc.CloseWithReport(ctx, actor, ticket.ID, validClosure()); !util.IsCode(err, "FORBIDDEN") {
			t.Errorf("%s close: err = %v, want FORBIDDEN", name, err)
		}
	}
}

func TestGetTicketByShortID(t *testing.T) {
	svc, _, _ := newLifecycleFixture(t)
	employee, _, _, _ := testUsers()
	ctx := context.Background()

	created, _ := svc.CreateTicket(ctx, employee, CreateTicketInput{Subject: "x", Category: domain.TicketCategoryNetwork})

	ticket, err := svc.GetTicket(ctx, employee, created.ShortID)
	if err != nil {
		t.Fatalf("GetTicket by short ID: %v", err)
	}
	if ticket.ID != created.ID {
		t.Errorf("resolved %s, want %s", ticket.ID, created.ID)
	}
	if _, err := svc.GetTicket(ctx, employee, "INC-9999-999"); !util.IsCode(err, "NOT_FOUND") {
		t.Errorf("unknown short ID: err = %v, want NOT_FOUND", err)
	}
}

func TestListTicketsFilters(t *testing.T) {
	svc, tickets, _ := newLifecycleFixture(t)
	employee, techA, _, admin := testUsers()
	ctx := context.Background()

	svc.CreateTicket(ctx, employee, CreateTicketInput{Subject: "a", Category: domain.TicketCategoryNetwork})
	cycled, _ := svc.CreateTicket(ctx, employee, CreateTicketInput{Subject: "b", Category: domain.TicketCategoryNetwork})
	svc.Claim(ctx, techA, cycled.ID)
	svc.CloseWithReport(ctx, techA, cycled.ID, validClosure())
	svc.Reopen(ctx, techA, cycled.ID)

	// The reopened filter selects by event history, not live status.
	listed, err := svc.ListTickets(ctx, admin, ListInput{Reopened: true})
	if err != nil {
		t.Fatalf("ListTickets: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != cycled.ID {
		t.Errorf("reopened filter returned %v, want only %s", listed, cycled.ID)
	}

	// The group filter reaches the store untouched.
	group := "Employee"
	if _, err := svc.ListTickets(ctx, admin, ListInput{Group: &group}); err != nil {
		t.Fatalf("ListTickets: %v", err)
	}
	if tickets.lastFilter.Group == nil || *tickets.lastFilter.Group != group {
		t.Errorf("store filter group = %v, want %q", tickets.lastFilter.Group, group)
	}
}

func TestDashboards(t *testing.T) {
	svc, _, _ := newLifecycleFixture(t)
	employee, techA, _, admin := testUsers()
	ctx := context.Background()

	svc.CreateTicket(ctx, employee, CreateTicketInput{Subject: "a", Category: domain.TicketCategoryNetwork})
	closed, _ := svc.CreateTicket(ctx, employee, CreateTicketInput{Subject: "b", Category: domain.TicketCategoryNetwork})
	svc.Claim(ctx, techA, closed.ID)
	svc.CloseWithReport(ctx, techA, closed.ID, validClosure())

	tech, err := svc.TechnicianDashboard(ctx, techA)
	if err != nil {
		t.Fatalf("TechnicianDashboard: %v", err)
	}
	if tech.UnassignedTickets != 1 || tech.ClosedTickets != 1 {
		t.Errorf("technician counts = %+v, want 1 unassigned and 1 closed", tech)
	}

	emp, err := svc.EmployeeDashboard(ctx, employee)
	if err != nil {
		t.Fatalf("EmployeeDashboard: %v", err)
	}
	if emp.TotalTickets != 2 || emp.OpenedTickets != 1 || emp.UnassignedTickets != 1 || emp.ClosedTickets != 1 {
		t.Errorf("employee counts = %+v", emp)
	}

	// Each dashboard is bound to its role.
	if _, err := svc.TechnicianDashboard(ctx, admin); !util.IsCode(err, "FORBIDDEN") {
		t.Errorf("admin technician dashboard: err = %v, want FORBIDDEN", err)
	}
	if _, err := svc.EmployeeDashboard(ctx, techA); !util.IsCode(err, "FORBIDDEN") {
		t.Errorf("technician employee dashboard: err = %v, want FORBIDDEN", err)
	}
}

func TestEmployeeVisibility(t *testing.T) {
	svc, _, _ := newLifecycleFixture(t)
	employee, techA, _, admin := testUsers()
	other := &domain.User{ID: "emp-2", Role: domain.RoleEmployee, Group: "Employee"}
	ctx := context.Background()

	ticket, _ := svc.CreateTicket(ctx, employee, CreateTicketInput{Subject: "x", Category: domain.TicketCategoryNetwork})

	if _, err := svc.GetTicket(ctx, other, ticket.ID); !util.IsCode(err, "FORBIDDEN") {
		t.Errorf("other employee: err = %v, want FORBIDDEN", err)
	}
	if _, err := svc.GetTicket(ctx, techA, ticket.ID); err != nil {
		t.Errorf("technician: %v", err)
	}
	if _, err := svc.GetTicket(ctx, admin, ticket.ID); err != nil {
		t.Errorf("admin: %v", err)
	}
	if _, err := svc.History(ctx, other, ticket.ID); !util.IsCode(err, "FORBIDDEN") {
		t.Errorf("other employee history: err = %v, want FORBIDDEN", err)
	}
}
