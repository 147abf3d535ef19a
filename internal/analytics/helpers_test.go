package analytics

import (
	"fmt"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

type recordOption func(*Record)

func withStatus(s domain.TicketStatus) recordOption {
	return func(r *Record) { r.Ticket.Status = s }
}

func withPriority(p domain.TicketPriority) recordOption {
	return func(r *Record) { r.Ticket.Priority = p }
}

func withCategory(c domain.TicketCategory) recordOption {
	return func(r *Record) { r.Ticket.Category = c }
}

func withSubject(s string) recordOption {
	return func(r *Record) { r.Ticket.Subject = s }
}

func withRequester(id, name, group string) recordOption {
	return func(r *Record) {
		r.Ticket.RequesterID = id
		r.RequesterName = name
		r.RequesterGroup = group
	}
}

func withCreatedAt(t time.Time) recordOption {
	return func(r *Record) {
		r.Ticket.CreatedAt = t
		r.Ticket.UpdatedAt = t
	}
}

// withClosedAfter marks the ticket closed the given duration after
// creation.
func withClosedAfter(d time.Duration) recordOption {
	return func(r *Record) {
		closed := r.Ticket.CreatedAt.Add(d)
		r.Ticket.Status = domain.TicketStatusClosed
		r.Ticket.ClosedAt = &closed
	}
}

// withClaim records the claiming technician and its event the given
// duration after creation.
func withClaim(techID string, after time.Duration) recordOption {
	return func(r *Record) {
		r.Ticket.ClaimedBy = &techID
		r.Events = append(r.Events, domain.TicketEvent{
			TicketID:  r.Ticket.ID,
			ActorID:   techID,
			EventType: domain.EventTypeClaimed,
			CreatedAt: r.Ticket.CreatedAt.Add(after),
		})
	}
}

func withAdditionalTech(techID string, after time.Duration) recordOption {
	return func(r *Record) {
		r.Ticket.AdditionalTechnicians = append(r.Ticket.AdditionalTechnicians, techID)
		r.Events = append(r.Events, domain.TicketEvent{
			TicketID:  r.Ticket.ID,
			EventType: domain.EventTypeTechnicianAdded,
			ToValue:   techID,
			CreatedAt: r.Ticket.CreatedAt.Add(after),
		})
	}
}

func withReopenedEvent(after time.Duration) recordOption {
	return func(r *Record) {
		r.Events = append(r.Events, domain.TicketEvent{
			TicketID:  r.Ticket.ID,
			EventType: domain.EventTypeReopened,
			FromValue: "closed",
			ToValue:   "open",
			CreatedAt: r.Ticket.CreatedAt.Add(after),
		})
	}
}

var recordSeq int

func record(opts ...recordOption) Record {
	recordSeq++
	rec := Record{
		Ticket: domain.Ticket{
			ID:          fmt.Sprintf("ticket-%d", recordSeq),
			ShortID:     fmt.Sprintf("INC-%04d-001", recordSeq),
			Subject:     "printer offline",
			Category:    domain.TicketCategoryHardware,
			Status:      domain.TicketStatusOpen,
			Priority:    domain.TicketPriorityP3,
			RequesterID: "emp-1",
			CreatedAt:   testNow.Add(-48 * time.Hour),
			UpdatedAt:   testNow.Add(-48 * time.Hour),
		},
		RequesterName:  "Dana Reyes",
		RequesterGroup: "Employee",
	}
	for _, opt := range opts {
		opt(&rec)
	}
	return rec
}

func testSLA() SLAPolicy {
	return SLAPolicy{
		Hours: map[domain.TicketPriority]float64{
			domain.TicketPriorityP1: 2,
			domain.TicketPriorityP2: 4,
			domain.TicketPriorityP3: 8,
			domain.TicketPriorityP4: 24,
		},
		DefaultHours: 24,
	}
}

func testCapacity() CapacityPolicy {
	return CapacityPolicy{PerTicketPercent: 10, NormalMin: 5, OverMin: 10}
}
