package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/analytics"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

type fakeAnalyticsSource struct {
	records   []analytics.Record
	directory analytics.Directory
	loads     int
}

func (f *fakeAnalyticsSource) Records(ctx context.Context) ([]analytics.Record, error) {
	f.loads++
	return f.records, nil
}

func (f *fakeAnalyticsSource) Directory(ctx context.Context) (analytics.Directory, error) {
	return f.directory, nil
}

func newReportFixture(t *testing.T, source *fakeAnalyticsSource) *ReportService {
	t.Helper()
	employee, techA, techB, admin := testUsers()
	return NewReportService(ReportDependencies{
		Source: source,
		Users:  newFakeUserRepo(employee, techA, techB, admin),
		Rules:  config.DefaultRules(),
		Logger: zap.NewNop(),
		Now:    func() time.Time { return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC) },
	})
}

func closedRecord(hoursToClose float64) analytics.Record {
	created := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	closed := created.Add(time.Duration(hoursToClose * float64(time.Hour)))
	return analytics.Record{
		Ticket: domain.Ticket{
			ID:          "t-1",
			Subject:     "disk full",
			Category:    domain.TicketCategoryHardware,
			Status:      domain.TicketStatusClosed,
			Priority:    domain.TicketPriorityP3,
			RequesterID: "emp-1",
			CreatedAt:   created,
			UpdatedAt:   closed,
			ClosedAt:    &closed,
		},
		RequesterName:  "Dana",
		RequesterGroup: "Employee",
	}
}

func TestReportServiceOverview(t *testing.T) {
	source := &fakeAnalyticsSource{records: []analytics.Record{closedRecord(5)}}
	svc := newReportFixture(t, source)

	report, err := svc.Overview(context.Background(), analytics.Filter{Window: analytics.WindowMonth})
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if report.TotalTickets != 1 || report.ResolutionRate != 100.0 {
		t.Errorf("report = %+v, want one fully resolved ticket", report)
	}
	// One employee in the roster fixture.
	if report.AvgTicketsPerEmployee != 1.0 {
		t.Errorf("avg per employee = %v, want 1.0", report.AvgTicketsPerEmployee)
	}
}

func TestReportServiceWorkloadUsesRoster(t *testing.T) {
	source := &fakeAnalyticsSource{}
	svc := newReportFixture(t, source)

	report, err := svc.Workload(context.Background(), analytics.Filter{})
	if err != nil {
		t.Fatalf("Workload: %v", err)
	}
	// Both technicians appear even with an empty ticket store.
	if len(report.Technicians) != 2 {
		t.Errorf("roster = %d, want 2", len(report.Technicians))
	}
}

func TestReportServiceRecomputesWithoutCache(t *testing.T) {
	source := &fakeAnalyticsSource{}
	svc := newReportFixture(t, source)
	ctx := context.Background()

	if _, err := svc.QualityMetrics(ctx, analytics.Filter{}); err != nil {
		t.Fatalf("QualityMetrics: %v", err)
	}
	if _, err := svc.QualityMetrics(ctx, analytics.Filter{}); err != nil {
		t.Fatalf("QualityMetrics: %v", err)
	}
	if source.loads != 2 {
		t.Errorf("loads = %d, want 2: no cache configured", source.loads)
	}
}
