package repository

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketFilter captures listing parameters. Group matches the requester's
// directory group; Reopened matches tickets with a reopened event in the
// log regardless of their live status.
type TicketFilter struct {
	RequesterID *string
	HandledBy   *string
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

// TechnicianDashboard counts a technician's view of the queue.
type TechnicianDashboard struct {
	UnassignedTickets int
	MyOpenTickets     int
	ClosedTickets     int
}

// EmployeeDashboard counts a requester's own tickets.
type EmployeeDashboard struct {
	OpenedTickets     int
	UnassignedTickets int
	ClosedTickets     int
	TotalTickets      int
}

// TicketRepository encapsulates ticket persistence. Lifecycle mutations are
// compound operations: the row change and its audit event commit in one
// transaction or not at all.
type TicketRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByShortID(ctx context.Context, shortID string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	CreateWithEvent(ctx context.Context, ticket *domain.Ticket) (*domain.TicketEvent, error)
	Claim(ctx context.Context, ticketID, technicianID string) (*domain.Ticket, *domain.TicketEvent, error)
	AddTechnician(ctx context.Context, ticketID, actorID, technicianID string) (*domain.Ticket, *domain.TicketEvent, error)
	CloseWithReport(ctx context.Context, ticketID, actorID string, report *domain.ClosureReport) (*domain.Ticket, *domain.TicketEvent, error)
	Reopen(ctx context.Context, ticketID, actorID string) (*domain.Ticket, *domain.TicketEvent, error)
	TechnicianDashboard(ctx context.Context, technicianID string) (*TechnicianDashboard, error)
	EmployeeDashboard(ctx context.Context, requesterID string) (*EmployeeDashboard, error)
}

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, short_id, subject, description, category, status, priority,
               requester_id, claimed_by, created_at, updated_at, closed_at`

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	return r.fetchSingle(ctx, r.pool, query, id)
}

func (r *ticketRepository) GetByShortID(ctx context.Context, shortID string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE short_id=$1`, ticketColumns)
	return r.fetchSingle(ctx, r.pool, query, shortID)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, q dbtx, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := scanTicket(q.QueryRow(ctx, query, arg), &ticket); err != nil {
		return nil, err
	}
	techs, err := loadTechnicians(ctx, q, []string{ticket.ID})
	if err != nil {
		return nil, err
	}
	ticket.AdditionalTechnicians = techs[ticket.ID]
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := fmt.Sprintf(`SELECT %s FROM tickets`, ticketColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.RequesterID != nil {
		args = append(args, *filter.RequesterID)
		clauses = append(clauses, fmt.Sprintf("requester_id=$%d", len(args)))
	}
	if filter.HandledBy != nil {
		args = append(args, *filter.HandledBy)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(claimed_by=%s OR id IN (SELECT ticket_id FROM ticket_technicians WHERE technician_id=%s))",
			placeholder, placeholder))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Group != nil {
		args = append(args, *filter.Group)
		clauses = append(clauses, fmt.Sprintf(`requester_id IN (SELECT id FROM users WHERE "group"=$%d)`, len(args)))
	}
	if filter.Reopened {
		clauses = append(clauses, "id IN (SELECT DISTINCT ticket_id FROM ticket_events WHERE event_type='reopened')")
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(subject) LIKE %s OR LOWER(description) LIKE %s OR LOWER(short_id) LIKE %s)",
			placeholder, placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	// Active work first: in_progress, then reopened, then open, closed last.
	query := fmt.Sprintf(`%s WHERE %s
        ORDER BY CASE status
            WHEN 'in_progress' THEN 0
            WHEN 'reopened' THEN 1
            WHEN 'open' THEN 2
            ELSE 3
        END, priority ASC, created_at DESC
        LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, err
	}
	return r.attachTechnicians(ctx, tickets)
}

func (r *ticketRepository) attachTechnicians(ctx context.Context, tickets []domain.Ticket) ([]domain.Ticket, error) {
	if len(tickets) == 0 {
		return tickets, nil
	}
	ids := make([]string, len(tickets))
	for i, t := range tickets {
		ids[i] = t.ID
	}
	techs, err := loadTechnicians(ctx, r.pool, ids)
	if err != nil {
		return nil, err
	}
	for i := range tickets {
		tickets[i].AdditionalTechnicians = techs[tickets[i].ID]
	}
	return tickets, nil
}

// CreateWithEvent inserts a ticket, allocates its short identifier and
// appends the created event, all in one transaction.
func (r *ticketRepository) CreateWithEvent(ctx context.Context, ticket *domain.Ticket) (*domain.TicketEvent, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	shortID, err := nextShortID(ctx, tx)
	if err != nil {
		return nil, err
	}

	if err := insertTicket(ctx, tx, ticket, shortID); err != nil {
		if isUniqueViolation(err) {
			// Short-ID collision under concurrency: fall back to a
			// timestamp-derived identifier and try once more.
			if err := insertTicket(ctx, tx, ticket, fallbackShortID()); err != nil {
				return nil, err
			}
		} else {
			return nil, err
		}
	}

	event := &domain.TicketEvent{
		TicketID:  ticket.ID,
		ActorID:   ticket.RequesterID,
		EventType: domain.EventTypeCreated,
		ToValue:   string(domain.TicketStatusOpen),
	}
	if err := insertEvent(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return event, nil
}

func insertTicket(ctx context.Context, q dbtx, ticket *domain.Ticket, shortID string) error {
	const query = `
        INSERT INTO tickets (short_id, subject, description, category, status, priority, requester_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	err := q.QueryRow(ctx, query,
		shortID,
		ticket.Subject,
		ticket.Description,
		ticket.Category,
		ticket.Status,
		ticket.Priority,
		ticket.RequesterID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
	if err != nil {
		return err
	}
	ticket.ShortID = shortID
	return nil
}

// nextShortID produces INC-<counter>-<suffix> where counter is one past the
// highest already allocated.
func nextShortID(ctx context.Context, q dbtx) (string, error) {
	const query = `
        SELECT COALESCE(MAX(NULLIF(SPLIT_PART(short_id, '-', 2), '')::INT), 0)
        FROM tickets WHERE short_id LIKE 'INC-%'`
	var maxCounter int
	if err := q.QueryRow(ctx, query).Scan(&maxCounter); err != nil {
		return "", err
	}
	return fmt.Sprintf("INC-%04d-%03d", maxCounter+1, rand.Intn(1000)), nil
}

func fallbackShortID() string {
	return fmt.Sprintf("INC-%d-%d", time.Now().Unix()%100000, 100+rand.Intn(900))
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Claim sets claimed_by for an unclaimed ticket. The claimed_by IS NULL
// predicate makes the first writer win; losers read the row back to
// distinguish a lost race from a missing ticket.
func (r *ticketRepository) Claim(ctx context.Context, ticketID, technicianID string) (*domain.Ticket, *domain.TicketEvent, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	query := fmt.Sprintf(`
        UPDATE tickets SET claimed_by=$1, status=$2, updated_at=NOW()
        WHERE id=$3 AND claimed_by IS NULL AND status=$4
        RETURNING %s`, ticketColumns)

	var ticket domain.Ticket
	err = scanTicket(tx.QueryRow(ctx, query,
		technicianID,
		domain.TicketStatusInProgress,
		ticketID,
		domain.TicketStatusOpen,
	), &ticket)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, err
		}
		existing, fetchErr := r.fetchSingle(ctx, tx, fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns), ticketID)
		if fetchErr != nil {
			if errors.Is(fetchErr, pgx.ErrNoRows) {
				return nil, nil, util.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
			}
			return nil, nil, fetchErr
		}
		if existing.ClaimedBy != nil {
			return nil, nil, util.NewAlreadyClaimed(ticketID)
		}
		return nil, nil, util.NewConflict("ticket cannot be claimed in its current status",
			map[string]any{"ticket_id": ticketID, "status": existing.Status})
	}

	event := &domain.TicketEvent{
		TicketID:  ticket.ID,
		ActorID:   technicianID,
		EventType: domain.EventTypeClaimed,
		FromValue: string(domain.TicketStatusOpen),
		ToValue:   string(domain.TicketStatusInProgress),
	}
	if err := insertEvent(ctx, tx, event); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return &ticket, event, nil
}

// AddTechnician joins a further technician to a claimed ticket. Adding the
// same technician twice is a no-op and appends no event.
func (r *ticketRepository) AddTechnician(ctx context.Context, ticketID, actorID, technicianID string) (*domain.Ticket, *domain.TicketEvent, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
        INSERT INTO ticket_technicians (ticket_id, technician_id)
        VALUES ($1,$2) ON CONFLICT DO NOTHING`, ticketID, technicianID)
	if err != nil {
		return nil, nil, err
	}

	var event *domain.TicketEvent
	if cmd.RowsAffected() > 0 {
		if _, err := tx.Exec(ctx, `UPDATE tickets SET updated_at=NOW() WHERE id=$1`, ticketID); err != nil {
			return nil, nil, err
		}
		event = &domain.TicketEvent{
			TicketID:  ticketID,
			ActorID:   actorID,
			EventType: domain.EventTypeTechnicianAdded,
			ToValue:   technicianID,
		}
		if err := insertEvent(ctx, tx, event); err != nil {
			return nil, nil, err
		}
	}

	ticket, err := r.fetchSingle(ctx, tx, fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns), ticketID)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return ticket, event, nil
}

// CloseWithReport persists the closure report, its replaced parts, the
// ticket transition to closed and the closed event atomically. The ticket
// category is reclassified from the diagnosed problem type.
func (r *ticketRepository) CloseWithReport(ctx context.Context, ticketID, actorID string, report *domain.ClosureReport) (*domain.Ticket, *domain.TicketEvent, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	var priorStatus domain.TicketStatus
	err = tx.QueryRow(ctx, `SELECT status FROM tickets WHERE id=$1 FOR UPDATE`, ticketID).Scan(&priorStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, util.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, nil, err
	}
	if priorStatus == domain.TicketStatusClosed {
		return nil, nil, util.NewAlreadyClosed(ticketID)
	}

	const reportQuery = `
        INSERT INTO closure_reports (ticket_id, problem_type, problem_subtype, root_cause, solution_applied,
            parts_used, technical_notes, recommendations, is_recurring_problem, created_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at`
	err = tx.QueryRow(ctx, reportQuery,
		ticketID,
		report.ProblemType,
		report.ProblemSubtype,
		report.RootCause,
		report.SolutionApplied,
		report.PartsUsed,
		report.TechnicalNotes,
		report.Recommendations,
		report.IsRecurringProblem,
		actorID,
	).Scan(&report.ID, &report.CreatedAt)
	if err != nil {
		return nil, nil, err
	}
	report.TicketID = ticketID
	report.CreatedBy = actorID

	for i := range report.ReplacedParts {
		part := &report.ReplacedParts[i]
		err = tx.QueryRow(ctx, `
            INSERT INTO replaced_parts (closure_report_id, part_name, serial_number)
            VALUES ($1,$2,$3) RETURNING id, created_at`,
			report.ID, part.PartName, part.SerialNumber,
		).Scan(&part.ID, &part.CreatedAt)
		if err != nil {
			return nil, nil, err
		}
		part.ClosureReportID = report.ID
	}

	query := fmt.Sprintf(`
        UPDATE tickets SET status=$1, category=$2, closed_at=NOW(), updated_at=NOW()
        WHERE id=$3
        RETURNING %s`, ticketColumns)

	var ticket domain.Ticket
	err = scanTicket(tx.QueryRow(ctx, query,
		domain.TicketStatusClosed,
		report.ProblemType.Category(),
		ticketID,
	), &ticket)
	if err != nil {
		return nil, nil, err
	}

	event := &domain.TicketEvent{
		TicketID:  ticketID,
		ActorID:   actorID,
		EventType: domain.EventTypeClosed,
		FromValue: string(priorStatus),
		ToValue:   string(domain.TicketStatusClosed),
	}
	if err := insertEvent(ctx, tx, event); err != nil {
		return nil, nil, err
	}

	techs, err := loadTechnicians(ctx, tx, []string{ticket.ID})
	if err != nil {
		return nil, nil, err
	}
	ticket.AdditionalTechnicians = techs[ticket.ID]

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return &ticket, event, nil
}

// Reopen transitions a closed ticket back into circulation. The claim and
// additional technicians are kept; closed_at is cleared so the ticket no
// longer counts as resolved.
func (r *ticketRepository) Reopen(ctx context.Context, ticketID, actorID string) (*domain.Ticket, *domain.TicketEvent, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	query := fmt.Sprintf(`
        UPDATE tickets SET status=$1, closed_at=NULL, updated_at=NOW()
        WHERE id=$2 AND status=$3
        RETURNING %s`, ticketColumns)

	var ticket domain.Ticket
	err = scanTicket(tx.QueryRow(ctx, query,
		domain.TicketStatusReopened,
		ticketID,
		domain.TicketStatusClosed,
	), &ticket)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, err
		}
		var exists bool
		if scanErr := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tickets WHERE id=$1)`, ticketID).Scan(&exists); scanErr != nil {
			return nil, nil, scanErr
		}
		if !exists {
			return nil, nil, util.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, nil, util.NewNotClosed(ticketID)
	}

	event := &domain.TicketEvent{
		TicketID:  ticketID,
		ActorID:   actorID,
		EventType: domain.EventTypeReopened,
		FromValue: string(domain.TicketStatusClosed),
		ToValue:   string(domain.TicketStatusOpen),
	}
	if err := insertEvent(ctx, tx, event); err != nil {
		return nil, nil, err
	}

	techs, err := loadTechnicians(ctx, tx, []string{ticket.ID})
	if err != nil {
		return nil, nil, err
	}
	ticket.AdditionalTechnicians = techs[ticket.ID]

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return &ticket, event, nil
}

// TechnicianDashboard aggregates the technician queue counters in one
// query: the unassigned open pool plus the tickets the technician claims
// or assists on.
func (r *ticketRepository) TechnicianDashboard(ctx context.Context, technicianID string) (*TechnicianDashboard, error) {
	const query = `
        SELECT
            COUNT(*) FILTER (WHERE claimed_by IS NULL AND status='open'),
            COUNT(*) FILTER (WHERE (claimed_by=$1 OR id IN (SELECT ticket_id FROM ticket_technicians WHERE technician_id=$1)) AND status='open'),
            COUNT(*) FILTER (WHERE (claimed_by=$1 OR id IN (SELECT ticket_id FROM ticket_technicians WHERE technician_id=$1)) AND status='closed')
        FROM tickets`
	var counts TechnicianDashboard
	err := r.pool.QueryRow(ctx, query, technicianID).Scan(
		&counts.UnassignedTickets,
		&counts.MyOpenTickets,
		&counts.ClosedTickets,
	)
	if err != nil {
		return nil, err
	}
	return &counts, nil
}

// EmployeeDashboard aggregates a requester's own ticket counters.
func (r *ticketRepository) EmployeeDashboard(ctx context.Context, requesterID string) (*EmployeeDashboard, error) {
	const query = `
        SELECT
            COUNT(*) FILTER (WHERE status='open'),
            COUNT(*) FILTER (WHERE status='open' AND claimed_by IS NULL),
            COUNT(*) FILTER (WHERE status='closed'),
            COUNT(*)
        FROM tickets WHERE requester_id=$1`
	var counts EmployeeDashboard
	err := r.pool.QueryRow(ctx, query, requesterID).Scan(
		&counts.OpenedTickets,
		&counts.UnassignedTickets,
		&counts.ClosedTickets,
		&counts.TotalTickets,
	)
	if err != nil {
		return nil, err
	}
	return &counts, nil
}

func insertEvent(ctx context.Context, q dbtx, event *domain.TicketEvent) error {
	const query = `
        INSERT INTO ticket_events (ticket_id, actor_id, event_type, from_value, to_value)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return q.QueryRow(ctx, query,
		event.TicketID,
		event.ActorID,
		event.EventType,
		event.FromValue,
		event.ToValue,
	).Scan(&event.ID, &event.CreatedAt)
}

func loadTechnicians(ctx context.Context, q dbtx, ticketIDs []string) (map[string][]string, error) {
	rows, err := q.Query(ctx, `
        SELECT ticket_id, technician_id FROM ticket_technicians
        WHERE ticket_id = ANY($1) ORDER BY added_at`, ticketIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]string)
	for rows.Next() {
		var ticketID, technicianID string
		if err := rows.Scan(&ticketID, &technicianID); err != nil {
			return nil, err
		}
		result[ticketID] = append(result[ticketID], technicianID)
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.ShortID,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Category,
		&ticket.Status,
		&ticket.Priority,
		&ticket.RequesterID,
		&ticket.ClaimedBy,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ClosedAt,
	)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
