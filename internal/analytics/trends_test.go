package analytics

import (
	"testing"
	"time"
)

func TestTrendsHorizonLengths(t *testing.T) {
	report := Trends(nil, Filter{}, testNow)

	if len(report.DailyTrends) != 30 {
		t.Errorf("daily length = %d, want 30", len(report.DailyTrends))
	}
	if len(report.WeeklyTrends) != 12 {
		t.Errorf("weekly length = %d, want 12", len(report.WeeklyTrends))
	}
	if len(report.MonthlyTrends) != 12 {
		t.Errorf("monthly length = %d, want 12", len(report.MonthlyTrends))
	}
	last := report.DailyTrends[29].Date
	if last != testNow.Format("2006-01-02") {
		t.Errorf("last daily bucket = %s, want today", last)
	}
	if report.MonthlyTrends[11].Month != testNow.Format("2006-01") {
		t.Errorf("last monthly bucket = %s, want current month", report.MonthlyTrends[11].Month)
	}
}

func TestTrendsGrowthRate(t *testing.T) {
	var records []Record
	for i := 0; i < 3; i++ {
		records = append(records, record(withCreatedAt(testNow.AddDate(0, 0, -5))))
	}
	for i := 0; i < 2; i++ {
		records = append(records, record(withCreatedAt(testNow.AddDate(0, 0, -45))))
	}

	report := Trends(records, Filter{}, testNow)
	if report.GrowthRate != 50.0 {
		t.Errorf("growth = %v, want 50.0 (3 vs 2)", report.GrowthRate)
	}
}

func TestTrendsGrowthRateZeroBaseline(t *testing.T) {
	records := []Record{record(withCreatedAt(testNow.AddDate(0, 0, -5)))}
	report := Trends(records, Filter{}, testNow)
	if report.GrowthRate != 0 {
		t.Errorf("growth = %v, want 0 when the previous window is empty", report.GrowthRate)
	}
}

func TestTrendsDailyCounts(t *testing.T) {
	day := testNow.AddDate(0, 0, -3)
	records := []Record{
		record(withCreatedAt(day)),
		record(withCreatedAt(day.Add(2 * time.Hour))),
	}

	report := Trends(records, Filter{}, testNow)
	wantDate := day.Format("2006-01-02")
	for _, d := range report.DailyTrends {
		if d.Date == wantDate {
			if d.Count != 2 {
				t.Errorf("count on %s = %d, want 2", wantDate, d.Count)
			}
			return
		}
	}
	t.Errorf("day %s missing from trend", wantDate)
}
