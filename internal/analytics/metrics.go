package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// SLAPolicy carries the priority-keyed resolution targets.
type SLAPolicy struct {
	Hours        map[domain.TicketPriority]float64
	DefaultHours float64
}

// Target returns the SLA target in hours for the given priority.
func (p SLAPolicy) Target(priority domain.TicketPriority) float64 {
	if h, ok := p.Hours[priority]; ok {
		return h
	}
	return p.DefaultHours
}

// CapacityPolicy carries the workload heuristic parameters.
type CapacityPolicy struct {
	PerTicketPercent int
	NormalMin        int
	OverMin          int
}

// Utilization applies the linear capacity heuristic, capped at 100.
func (p CapacityPolicy) Utilization(active int) int {
	u := active * p.PerTicketPercent
	if u > 100 {
		return 100
	}
	return u
}

// safeRate returns part/total as a percentage, 0 on a zero denominator.
func safeRate(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return round1(part / total * 100)
}

// safeDiv returns num/den, 0 on a zero denominator.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return round1(sum / float64(len(values)))
}

// resolutionHours measures creation to latest closure. Only closed tickets
// have a value; reopened tickets had closed_at cleared.
func resolutionHours(t domain.Ticket) (float64, bool) {
	if t.Status != domain.TicketStatusClosed || t.ClosedAt == nil {
		return 0, false
	}
	return t.ClosedAt.Sub(t.CreatedAt).Hours(), true
}

// firstEventTime returns the timestamp of the earliest event of any given
// type. Events are stored ascending, so the first hit wins.
func firstEventTime(rec Record, types ...domain.TicketEventType) (time.Time, bool) {
	for _, event := range rec.Events {
		for _, et := range types {
			if event.EventType == et {
				return event.CreatedAt, true
			}
		}
	}
	return time.Time{}, false
}

// firstResponseHours measures creation to the claimed event. Tickets never
// claimed have no first response.
func firstResponseHours(rec Record) (float64, bool) {
	at, ok := firstEventTime(rec, domain.EventTypeClaimed)
	if !ok {
		return 0, false
	}
	return at.Sub(rec.Ticket.CreatedAt).Hours(), true
}

// firstResponseHoursAssist treats a technician joining as a response too.
func firstResponseHoursAssist(rec Record) (float64, bool) {
	at, ok := firstEventTime(rec, domain.EventTypeClaimed, domain.EventTypeTechnicianAdded)
	if !ok {
		return 0, false
	}
	return at.Sub(rec.Ticket.CreatedAt).Hours(), true
}

// firstResponseWithFallback approximates the first response for claimed
// tickets whose claimed event predates the audit trail, using the row's
// last update instead.
func firstResponseWithFallback(rec Record) (float64, bool) {
	if h, ok := firstResponseHours(rec); ok {
		return h, true
	}
	if rec.Ticket.ClaimedBy != nil {
		return rec.Ticket.UpdatedAt.Sub(rec.Ticket.CreatedAt).Hours(), true
	}
	return 0, false
}

func hasReopenedEvent(rec Record) bool {
	_, ok := firstEventTime(rec, domain.EventTypeReopened)
	return ok
}

// monthStart returns midnight on the first day of t's month.
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// quarterStart returns midnight on the first day of t's calendar quarter.
func quarterStart(t time.Time) time.Time {
	q := (int(t.Month()) - 1) / 3
	return time.Date(t.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, t.Location())
}

// yearStart returns midnight on January 1st of t's year.
func yearStart(t time.Time) time.Time {
	return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// sortedCounts flattens a count map ordered by label.
func sortedCounts(counts map[string]int) []CountItem {
	items := make([]CountItem, 0, len(counts))
	for label, count := range counts {
		items = append(items, CountItem{Label: label, Count: count})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Label < items[j].Label })
	return items
}

// sortedCountsDesc flattens a count map ordered by descending count, ties
// broken by label for determinism.
func sortedCountsDesc(counts map[string]int) []CountItem {
	items := make([]CountItem, 0, len(counts))
	for label, count := range counts {
		items = append(items, CountItem{Label: label, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Label < items[j].Label
	})
	return items
}
