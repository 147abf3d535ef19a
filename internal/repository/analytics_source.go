package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/analytics"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// AnalyticsSource loads the denormalized snapshot the analytics engine
// consumes: every ticket with its requester fields and event history, and
// the user directory for name resolution.
type AnalyticsSource interface {
	Records(ctx context.Context) ([]analytics.Record, error)
	Directory(ctx context.Context) (analytics.Directory, error)
}

type analyticsSource struct {
	pool *pgxpool.Pool
}

// NewAnalyticsSource instantiates the source.
func NewAnalyticsSource(pool *pgxpool.Pool) AnalyticsSource {
	return &analyticsSource{pool: pool}
}

func (s *analyticsSource) Records(ctx context.Context) ([]analytics.Record, error) {
	const query = `
        SELECT t.id, t.short_id, t.subject, t.description, t.category, t.status, t.priority,
               t.requester_id, t.claimed_by, t.created_at, t.updated_at, t.closed_at,
               u.first_name, u.last_name, u."group"
        FROM tickets t
        JOIN users u ON u.id = t.requester_id
        ORDER BY t.created_at`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []analytics.Record
	index := map[string]int{}
	for rows.Next() {
		var rec analytics.Record
		var firstName, lastName string
		if err := rows.Scan(
			&rec.Ticket.ID,
			&rec.Ticket.ShortID,
			&rec.Ticket.Subject,
			&rec.Ticket.Description,
			&rec.Ticket.Category,
			&rec.Ticket.Status,
			&rec.Ticket.Priority,
			&rec.Ticket.RequesterID,
			&rec.Ticket.ClaimedBy,
			&rec.Ticket.CreatedAt,
			&rec.Ticket.UpdatedAt,
			&rec.Ticket.ClosedAt,
			&firstName,
			&lastName,
			&rec.RequesterGroup,
		); err != nil {
			return nil, err
		}
		rec.RequesterName = displayName(firstName, lastName)
		index[rec.Ticket.ID] = len(records)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return records, nil
	}

	if err := s.fillTechnicians(ctx, records, index); err != nil {
		return nil, err
	}
	if err := s.fillEvents(ctx, records, index); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *analyticsSource) fillTechnicians(ctx context.Context, records []analytics.Record, index map[string]int) error {
	rows, err := s.pool.Query(ctx, `
        SELECT ticket_id, technician_id FROM ticket_technicians ORDER BY added_at`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var ticketID, technicianID string
		if err := rows.Scan(&ticketID, &technicianID); err != nil {
			return err
		}
		if i, ok := index[ticketID]; ok {
			records[i].Ticket.AdditionalTechnicians = append(records[i].Ticket.AdditionalTechnicians, technicianID)
		}
	}
	return rows.Err()
}

func (s *analyticsSource) fillEvents(ctx context.Context, records []analytics.Record, index map[string]int) error {
	rows, err := s.pool.Query(ctx, `
        SELECT id, ticket_id, actor_id, event_type, from_value, to_value, created_at
        FROM ticket_events ORDER BY created_at`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var event domain.TicketEvent
		if err := rows.Scan(
			&event.ID,
			&event.TicketID,
			&event.ActorID,
			&event.EventType,
			&event.FromValue,
			&event.ToValue,
			&event.CreatedAt,
		); err != nil {
			return err
		}
		if i, ok := index[event.TicketID]; ok {
			records[i].Events = append(records[i].Events, event)
		}
	}
	return rows.Err()
}

func (s *analyticsSource) Directory(ctx context.Context) (analytics.Directory, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, first_name, last_name, "group", role FROM users`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	directory := analytics.Directory{}
	for rows.Next() {
		var person analytics.Person
		var firstName, lastName string
		if err := rows.Scan(&person.ID, &firstName, &lastName, &person.Group, &person.Role); err != nil {
			return nil, err
		}
		person.Name = displayName(firstName, lastName)
		directory[person.ID] = person
	}
	return directory, rows.Err()
}

func displayName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}
