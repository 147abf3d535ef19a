package analytics

import (
	"testing"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestSLATrackingCompliance(t *testing.T) {
	records := []Record{
		record(withPriority(domain.TicketPriorityP1), withClosedAfter(90*time.Minute)),
		record(withPriority(domain.TicketPriorityP1), withClosedAfter(150*time.Minute)),
		record(withPriority(domain.TicketPriorityP4), withClosedAfter(20*time.Hour)),
		record(), // still open, ignored
	}

	report := SLATracking(records, Filter{}, testNow, testSLA())

	if report.TotalClosed != 3 {
		t.Fatalf("total closed = %d, want 3", report.TotalClosed)
	}
	if report.Breaches != 1 {
		t.Errorf("breaches = %d, want 1 (the 2.5h P1)", report.Breaches)
	}
	if report.ComplianceRate != 66.7 {
		t.Errorf("compliance = %v, want 66.7", report.ComplianceRate)
	}
}

func TestSLATrackingExactTargetIsCompliant(t *testing.T) {
	rec := record(withPriority(domain.TicketPriorityP1), withClosedAfter(2*time.Hour))
	report := SLATracking([]Record{rec}, Filter{}, testNow, testSLA())
	if report.Breaches != 0 {
		t.Errorf("breaches = %d, want 0: hitting the target exactly complies", report.Breaches)
	}
}

func TestSLATrackingUnknownPriorityUsesDefault(t *testing.T) {
	rec := record(withPriority(domain.TicketPriority("P9")), withClosedAfter(20*time.Hour))
	report := SLATracking([]Record{rec}, Filter{}, testNow, testSLA())
	if report.ComplianceRate != 100.0 {
		t.Errorf("compliance = %v, want 100.0 against the 24h default", report.ComplianceRate)
	}
}

func TestSLATrackingEmptySet(t *testing.T) {
	report := SLATracking(nil, Filter{}, testNow, testSLA())
	if report.ComplianceRate != 0 || report.AvgResolutionHours != 0 {
		t.Errorf("report = %+v, want zeros on empty set", report)
	}
}
