package analytics

import (
	"time"
)

// SLAReport summarizes resolution-target compliance over closed tickets.
type SLAReport struct {
	ComplianceRate     float64 `json:"sla_compliance_rate"`
	AvgResolutionHours float64 `json:"avg_resolution_time"`
	Breaches           int     `json:"sla_breaches"`
	TotalClosed        int     `json:"total_closed"`
}

// SLATracking classifies every closed ticket in the filtered set against
// its priority's target. A ticket is compliant when resolution took no
// longer than the target; everything else is a breach.
func SLATracking(records []Record, f Filter, now time.Time, sla SLAPolicy) SLAReport {
	set := f.Apply(records, now)

	var totalClosed, compliant int
	var totalHours float64
	for _, rec := range set {
		h, ok := resolutionHours(rec.Ticket)
		if !ok {
			continue
		}
		totalClosed++
		totalHours += h
		if h <= sla.Target(rec.Ticket.Priority) {
			compliant++
		}
	}

	return SLAReport{
		ComplianceRate:     safeRate(float64(compliant), float64(totalClosed)),
		AvgResolutionHours: round1(safeDiv(totalHours, float64(totalClosed))),
		Breaches:           totalClosed - compliant,
		TotalClosed:        totalClosed,
	}
}
