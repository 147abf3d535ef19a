package analytics

import (
	"sort"
	"time"
)

// SubjectCount is one recurring subject line with its occurrence count.
type SubjectCount struct {
	Subject     string `json:"subject"`
	Occurrences int    `json:"occurrences"`
}

// RecurringReport lists the most repeated ticket subjects.
type RecurringReport struct {
	RecurringProblems []SubjectCount `json:"recurring_problems"`
}

// RecurringProblems counts exact subject matches; no fuzzy clustering.
// Top ten by occurrence, ties broken alphabetically.
func RecurringProblems(records []Record, f Filter, now time.Time) RecurringReport {
	set := f.Apply(records, now)

	counts := map[string]int{}
	for _, rec := range set {
		counts[rec.Ticket.Subject]++
	}

	problems := make([]SubjectCount, 0, len(counts))
	for subject, count := range counts {
		problems = append(problems, SubjectCount{Subject: subject, Occurrences: count})
	}
	sort.Slice(problems, func(i, j int) bool {
		if problems[i].Occurrences != problems[j].Occurrences {
			return problems[i].Occurrences > problems[j].Occurrences
		}
		return problems[i].Subject < problems[j].Subject
	})
	if len(problems) > 10 {
		problems = problems[:10]
	}
	return RecurringReport{RecurringProblems: problems}
}
