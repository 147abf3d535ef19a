package analytics

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Window names a predefined reporting time window anchored at now.
type Window string

const (
	WindowToday   Window = "today"
	WindowWeek    Window = "week"
	WindowMonth   Window = "month"
	WindowQuarter Window = "quarter"
	WindowYear    Window = "year"
	WindowCustom  Window = "custom"
	WindowAll     Window = "all"
)

// Filter selects the ticket subset a report runs over. Zero values mean
// "no restriction". Status "reopened" is special: it matches tickets that
// have a reopened event regardless of their live status, since a reopened
// ticket may have been re-closed since.
type Filter struct {
	Window       Window
	StartDate    time.Time
	EndDate      time.Time
	Status       domain.TicketStatus
	Priority     domain.TicketPriority
	Category     domain.TicketCategory
	RequesterID  string
	TechnicianID string
	Group        string
}

// Apply returns the records matching both the time window and the static
// predicates.
func (f Filter) Apply(records []Record, now time.Time) []Record {
	var result []Record
	for _, rec := range records {
		if f.matchTime(rec.Ticket.CreatedAt, now) && f.matchStatic(rec) {
			result = append(result, rec)
		}
	}
	return result
}

// ApplyStatic filters by everything except the time window. Reports whose
// time axis is not creation date (resolution histograms, month
// comparisons) use this and window the relevant timestamp themselves.
func (f Filter) ApplyStatic(records []Record) []Record {
	var result []Record
	for _, rec := range records {
		if f.matchStatic(rec) {
			result = append(result, rec)
		}
	}
	return result
}

// ApplyScope filters by the static predicates except status. The
// resolution histogram always buckets closed tickets, so honoring a
// status filter there would empty the set.
func (f Filter) ApplyScope(records []Record) []Record {
	scoped := f
	scoped.Status = ""
	return scoped.ApplyStatic(records)
}

// matchTime windows the creation timestamp. Week through year are rolling
// windows from now, not calendar boundaries; custom is an inclusive date
// range on the date component.
func (f Filter) matchTime(createdAt, now time.Time) bool {
	switch f.Window {
	case WindowToday:
		return sameDate(createdAt, now)
	case WindowWeek:
		return !createdAt.Before(now.AddDate(0, 0, -7))
	case WindowMonth:
		return !createdAt.Before(now.AddDate(0, 0, -30))
	case WindowQuarter:
		return !createdAt.Before(now.AddDate(0, 0, -90))
	case WindowYear:
		return !createdAt.Before(now.AddDate(0, 0, -365))
	case WindowCustom:
		if f.StartDate.IsZero() || f.EndDate.IsZero() {
			return true
		}
		return inDateRange(createdAt, f.StartDate, f.EndDate)
	default:
		return true
	}
}

func (f Filter) matchStatic(rec Record) bool {
	if f.Status != "" {
		if f.Status == domain.TicketStatusReopened {
			if !hasReopenedEvent(rec) {
				return false
			}
		} else if rec.Ticket.Status != f.Status {
			return false
		}
	}
	if f.Priority != "" && rec.Ticket.Priority != f.Priority {
		return false
	}
	if f.Category != "" && rec.Ticket.Category != f.Category {
		return false
	}
	if f.RequesterID != "" && rec.Ticket.RequesterID != f.RequesterID {
		return false
	}
	if f.TechnicianID != "" && !rec.HandledBy(f.TechnicianID) {
		return false
	}
	if f.Group != "" && rec.RequesterGroup != f.Group {
		return false
	}
	return true
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func inDateRange(t, start, end time.Time) bool {
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, t.Location())
	to := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
	return !t.Before(from) && t.Before(to)
}
