package analytics

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CountItem pairs a label with an occurrence count.
type CountItem struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// MonthCount is one month on the yearly creation trend.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// MonthlyComparisons holds month-over-month deltas. Rate change is in
// percentage points; time changes are previous minus current, so a
// positive value means the team got faster.
type MonthlyComparisons struct {
	ResolutionRateChange     float64 `json:"resolution_rate_change"`
	ResolutionTimeChange     float64 `json:"resolution_time_change"`
	FirstResponseChange      float64 `json:"frt_change"`
	TotalTicketsChange       float64 `json:"total_tickets_change"`
	TicketsPerEmployeeChange float64 `json:"avg_tickets_per_employee_change"`
}

// OverviewReport is the main ticket analytics aggregate.
type OverviewReport struct {
	TotalTickets           int                `json:"total_tickets"`
	ResolutionRate         float64            `json:"resolution_rate"`
	AvgResolutionHours     float64            `json:"avg_resolution_time"`
	AvgFirstResponseHours  float64            `json:"avg_first_response_time"`
	ReopenedTickets        int                `json:"reopened_tickets"`
	StatusDistribution     []CountItem        `json:"status_distribution"`
	CategoryDistribution   []CountItem        `json:"type_distribution"`
	PriorityDistribution   []CountItem        `json:"priority_distribution"`
	ResolutionDistribution map[string]int     `json:"resolution_time_distribution"`
	MonthlyTrends          []MonthCount       `json:"monthly_trends"`
	AvgTicketsPerEmployee  float64            `json:"avg_tickets_per_employee"`
	MonthlyComparisons     MonthlyComparisons `json:"monthly_comparisons"`
}

// Overview computes the ticket analytics report. The resolution-time
// histogram deliberately windows on closure date with calendar month,
// quarter and year boundaries while everything else windows creation date
// with rolling windows; both behaviors are load-bearing for consumers.
func Overview(records []Record, f Filter, now time.Time, employeeCount int) OverviewReport {
	set := f.Apply(records, now)

	total := len(set)
	var closedCount, reopenedCount int
	var resolutionTimes, responseTimes []float64
	statusCounts := map[string]int{}
	categoryCounts := map[string]int{}
	priorityCounts := map[string]int{}

	for _, rec := range set {
		statusCounts[string(rec.Ticket.Status)]++
		categoryCounts[string(rec.Ticket.Category)]++
		priorityCounts[string(rec.Ticket.Priority)]++
		if rec.Ticket.Status == domain.TicketStatusClosed {
			closedCount++
		}
		if hasReopenedEvent(rec) {
			reopenedCount++
		}
		if h, ok := resolutionHours(rec.Ticket); ok {
			resolutionTimes = append(resolutionTimes, h)
		}
		if h, ok := firstResponseWithFallback(rec); ok {
			responseTimes = append(responseTimes, h)
		}
	}

	report := OverviewReport{
		TotalTickets:           total,
		ResolutionRate:         safeRate(float64(closedCount), float64(total)),
		AvgResolutionHours:     mean(resolutionTimes),
		AvgFirstResponseHours:  mean(responseTimes),
		ReopenedTickets:        reopenedCount,
		StatusDistribution:     sortedCounts(statusCounts),
		CategoryDistribution:   sortedCountsDesc(categoryCounts),
		PriorityDistribution:   sortedCounts(priorityCounts),
		ResolutionDistribution: resolutionHistogram(f.ApplyScope(records), f, now),
		MonthlyTrends:          monthlyTrends(set, now),
		AvgTicketsPerEmployee:  round1(safeDiv(float64(total), float64(employeeCount))),
		MonthlyComparisons:     monthlyComparisons(set, now, total, employeeCount),
	}
	return report
}

var resolutionBuckets = []string{"0-1_day", "1-3_days", "3-7_days", "7-14_days", "14+_days"}

// resolutionHistogram buckets closed tickets by resolution duration. The
// closure timestamp, not creation, decides window membership; today and
// week windows place no restriction at all.
func resolutionHistogram(staticSet []Record, f Filter, now time.Time) map[string]int {
	histogram := make(map[string]int, len(resolutionBuckets))
	for _, bucket := range resolutionBuckets {
		histogram[bucket] = 0
	}

	for _, rec := range staticSet {
		hours, ok := resolutionHours(rec.Ticket)
		if !ok {
			continue
		}
		if !closureInWindow(*rec.Ticket.ClosedAt, f, now) {
			continue
		}
		days := hours / 24
		switch {
		case days <= 1:
			histogram["0-1_day"]++
		case days <= 3:
			histogram["1-3_days"]++
		case days <= 7:
			histogram["3-7_days"]++
		case days <= 14:
			histogram["7-14_days"]++
		default:
			histogram["14+_days"]++
		}
	}
	return histogram
}

func closureInWindow(closedAt time.Time, f Filter, now time.Time) bool {
	switch f.Window {
	case WindowMonth:
		start := monthStart(now)
		return !closedAt.Before(start) && closedAt.Before(start.AddDate(0, 1, 0))
	case WindowQuarter:
		start := quarterStart(now)
		return !closedAt.Before(start) && closedAt.Before(start.AddDate(0, 3, 0))
	case WindowYear:
		start := yearStart(now)
		return !closedAt.Before(start) && closedAt.Before(start.AddDate(1, 0, 0))
	case WindowCustom:
		if f.StartDate.IsZero() || f.EndDate.IsZero() {
			return true
		}
		return inDateRange(closedAt, f.StartDate, f.EndDate)
	default:
		return true
	}
}

// monthlyTrends counts creations per calendar month of the current year.
func monthlyTrends(set []Record, now time.Time) []MonthCount {
	trends := make([]MonthCount, 12)
	for m := time.January; m <= time.December; m++ {
		trends[m-1] = MonthCount{Month: m.String()}
	}
	for _, rec := range set {
		created := rec.Ticket.CreatedAt
		if created.Year() == now.Year() {
			trends[created.Month()-1].Count++
		}
	}
	return trends
}

func monthlyComparisons(set []Record, now time.Time, total, employeeCount int) MonthlyComparisons {
	curStart := monthStart(now)
	prevStart := curStart.AddDate(0, -1, 0)

	var cur, prev []Record
	for _, rec := range set {
		created := rec.Ticket.CreatedAt
		switch {
		case !created.Before(curStart):
			cur = append(cur, rec)
		case !created.Before(prevStart):
			prev = append(prev, rec)
		}
	}

	curRate := closedRate(cur)
	prevRate := closedRate(prev)
	curRes := avgResolution(cur)
	prevRes := avgResolution(prev)
	curFRT := avgAssistResponse(cur)
	prevFRT := avgAssistResponse(prev)

	var totalChange float64
	if len(prev) > 0 {
		totalChange = float64(len(cur)-len(prev)) / float64(len(prev)) * 100
	}

	avgPerEmployee := safeDiv(float64(total), float64(employeeCount))
	prevPerEmployee := safeDiv(float64(len(prev)), float64(employeeCount))
	var perEmployeeChange float64
	if prevPerEmployee > 0 {
		perEmployeeChange = (avgPerEmployee - prevPerEmployee) / prevPerEmployee * 100
	}

	return MonthlyComparisons{
		ResolutionRateChange:     round1(curRate - prevRate),
		ResolutionTimeChange:     round1(prevRes - curRes),
		FirstResponseChange:      round1(prevFRT - curFRT),
		TotalTicketsChange:       round1(totalChange),
		TicketsPerEmployeeChange: round1(perEmployeeChange),
	}
}

func closedRate(set []Record) float64 {
	var closed int
	for _, rec := range set {
		if rec.Ticket.Status == domain.TicketStatusClosed {
			closed++
		}
	}
	if len(set) == 0 {
		return 0
	}
	return float64(closed) / float64(len(set)) * 100
}

func avgResolution(set []Record) float64 {
	var times []float64
	for _, rec := range set {
		if h, ok := resolutionHours(rec.Ticket); ok {
			times = append(times, h)
		}
	}
	if len(times) == 0 {
		return 0
	}
	var sum float64
	for _, h := range times {
		sum += h
	}
	return sum / float64(len(times))
}

func avgAssistResponse(set []Record) float64 {
	var times []float64
	for _, rec := range set {
		if h, ok := firstResponseHoursAssist(rec); ok {
			times = append(times, h)
		}
	}
	if len(times) == 0 {
		return 0
	}
	var sum float64
	for _, h := range times {
		sum += h
	}
	return sum / float64(len(times))
}
