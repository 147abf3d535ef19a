package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ClosureReportRepository reads closure reports written during close
// transactions. Reports are immutable; a re-closed ticket gets a new row.
type ClosureReportRepository interface {
	GetLatestByTicket(ctx context.Context, ticketID string) (*domain.ClosureReport, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.ClosureReport, error)
}

type closureReportRepository struct {
	pool *pgxpool.Pool
}

// NewClosureReportRepository instantiates repository.
func NewClosureReportRepository(pool *pgxpool.Pool) ClosureReportRepository {
	return &closureReportRepository{pool: pool}
}

const closureReportColumns = `id, ticket_id, problem_type, problem_subtype, root_cause, solution_applied,
               parts_used, technical_notes, recommendations, is_recurring_problem, created_by, created_at`

func (r *closureReportRepository) GetLatestByTicket(ctx context.Context, ticketID string) (*domain.ClosureReport, error) {
	query := `
        SELECT ` + closureReportColumns + `
        FROM closure_reports WHERE ticket_id=$1
        ORDER BY created_at DESC LIMIT 1`

	var report domain.ClosureReport
	if err := scanClosureReport(r.pool.QueryRow(ctx, query, ticketID), &report); err != nil {
		return nil, err
	}
	if err := r.loadParts(ctx, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *closureReportRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.ClosureReport, error) {
	query := `
        SELECT ` + closureReportColumns + `
        FROM closure_reports WHERE ticket_id=$1
        ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ClosureReport
	for rows.Next() {
		var report domain.ClosureReport
		if err := scanClosureReport(rows, &report); err != nil {
			return nil, err
		}
		result = append(result, report)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range result {
		if err := r.loadParts(ctx, &result[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *closureReportRepository) loadParts(ctx context.Context, report *domain.ClosureReport) error {
	rows, err := r.pool.Query(ctx, `
        SELECT id, closure_report_id, part_name, serial_number, created_at
        FROM replaced_parts WHERE closure_report_id=$1 ORDER BY created_at`, report.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var part domain.ReplacedPart
		if err := rows.Scan(&part.ID, &part.ClosureReportID, &part.PartName, &part.SerialNumber, &part.CreatedAt); err != nil {
			return err
		}
		report.ReplacedParts = append(report.ReplacedParts, part)
	}
	return rows.Err()
}

func scanClosureReport(row pgx.Row, report *domain.ClosureReport) error {
	return row.Scan(
		&report.ID,
		&report.TicketID,
		&report.ProblemType,
		&report.ProblemSubtype,
		&report.RootCause,
		&report.SolutionApplied,
		&report.PartsUsed,
		&report.TechnicalNotes,
		&report.Recommendations,
		&report.IsRecurringProblem,
		&report.CreatedBy,
		&report.CreatedAt,
	)
}
