package dto

import (
	"testing"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/analytics"
	"github.com/spec-kit/helpdesk-service/pkg/util"
)

func TestReportQueryDefaultsToAllTime(t *testing.T) {
	f, err := ReportQuery{}.ToFilter()
	if err != nil {
		t.Fatalf("ToFilter: %v", err)
	}
	if f.Window != analytics.WindowAll {
		t.Errorf("window = %q, want all", f.Window)
	}
}

func TestReportQueryCustomRange(t *testing.T) {
	q := ReportQuery{DateRange: "custom", StartDate: "2026-03-01", EndDate: "2026-03-15"}
	f, err := q.ToFilter()
	if err != nil {
		t.Fatalf("ToFilter: %v", err)
	}
	want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if !f.StartDate.Equal(want) {
		t.Errorf("start = %v, want %v", f.StartDate, want)
	}
}

func TestReportQueryValidation(t *testing.T) {
	tests := []struct {
		name  string
		query ReportQuery
	}{
		{"unknown window", ReportQuery{DateRange: "fortnight"}},
		{"custom without dates", ReportQuery{DateRange: "custom"}},
		{"custom bad start", ReportQuery{DateRange: "custom", StartDate: "03/01/2026", EndDate: "2026-03-15"}},
		{"custom inverted range", ReportQuery{DateRange: "custom", StartDate: "2026-03-15", EndDate: "2026-03-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.query.ToFilter()
			if !util.IsCode(err, "VALIDATION_FAILED") {
				t.Errorf("err = %v, want VALIDATION_FAILED", err)
			}
		})
	}
}
