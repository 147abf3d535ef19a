package analytics

import (
	"fmt"
	"time"
)

// WeekCount is one week on the weekly trend.
type WeekCount struct {
	Week  string `json:"week"`
	Count int    `json:"count"`
}

// TrendsReport describes ticket volume over rolling horizons anchored at
// now, independent of the filter's own time window.
type TrendsReport struct {
	DailyTrends      []DayCount   `json:"daily_trends"`
	WeeklyTrends     []WeekCount  `json:"weekly_trends"`
	MonthlyTrends    []MonthCount `json:"monthly_trends"`
	GrowthRate       float64      `json:"growth_rate"`
	VolumeByCategory []CountItem  `json:"volume_by_type"`
	VolumeByPriority []CountItem  `json:"volume_by_priority"`
	VolumeByGroup    []CountItem  `json:"volume_by_department"`
}

// Trends computes daily counts for 30 days, weekly for 12 weeks and
// monthly for 12 calendar months, plus a 30-day-over-30-day growth rate
// and volume breakdowns.
func Trends(records []Record, f Filter, now time.Time) TrendsReport {
	set := f.Apply(records, now)

	daily := make([]DayCount, 30)
	for i := 0; i < 30; i++ {
		day := dayStart(now).AddDate(0, 0, -(29 - i))
		var count int
		for _, rec := range set {
			if sameDate(rec.Ticket.CreatedAt, day) {
				count++
			}
		}
		daily[i] = DayCount{Date: day.Format("2006-01-02"), Count: count}
	}

	weekly := make([]WeekCount, 12)
	for i := 0; i < 12; i++ {
		start := now.AddDate(0, 0, -7*(12-i))
		end := start.AddDate(0, 0, 7)
		var count int
		for _, rec := range set {
			created := rec.Ticket.CreatedAt
			if !created.Before(start) && created.Before(end) {
				count++
			}
		}
		weekly[i] = WeekCount{Week: fmt.Sprintf("Week %d", i+1), Count: count}
	}

	monthly := make([]MonthCount, 12)
	for i := 0; i < 12; i++ {
		start := monthStart(now).AddDate(0, -(11 - i), 0)
		end := start.AddDate(0, 1, 0)
		var count int
		for _, rec := range set {
			created := rec.Ticket.CreatedAt
			if !created.Before(start) && created.Before(end) {
				count++
			}
		}
		monthly[i] = MonthCount{Month: start.Format("2006-01"), Count: count}
	}

	var current, previous int
	cutoff := now.AddDate(0, 0, -30)
	previousCutoff := now.AddDate(0, 0, -60)
	for _, rec := range set {
		created := rec.Ticket.CreatedAt
		switch {
		case !created.Before(cutoff):
			current++
		case !created.Before(previousCutoff):
			previous++
		}
	}
	var growth float64
	if previous > 0 {
		growth = round1(float64(current-previous) / float64(previous) * 100)
	}

	categoryCounts := map[string]int{}
	priorityCounts := map[string]int{}
	groupCounts := map[string]int{}
	for _, rec := range set {
		categoryCounts[string(rec.Ticket.Category)]++
		priorityCounts[string(rec.Ticket.Priority)]++
		groupCounts[rec.RequesterGroup]++
	}

	return TrendsReport{
		DailyTrends:      daily,
		WeeklyTrends:     weekly,
		MonthlyTrends:    monthly,
		GrowthRate:       growth,
		VolumeByCategory: sortedCountsDesc(categoryCounts),
		VolumeByPriority: sortedCounts(priorityCounts),
		VolumeByGroup:    sortedCountsDesc(groupCounts),
	}
}
