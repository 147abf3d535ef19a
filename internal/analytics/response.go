package analytics

import (
	"sort"
	"time"
)

// PriorityFRT is the average first response for one priority tier.
type PriorityFRT struct {
	Priority string  `json:"priority"`
	AvgFRT   float64 `json:"avg_frt"`
	Count    int     `json:"count"`
}

// FirstResponseReport breaks down how quickly tickets get picked up.
type FirstResponseReport struct {
	AvgFRT              float64       `json:"avg_frt"`
	ByPriority          []PriorityFRT `json:"frt_by_priority"`
	Distribution        []CountItem   `json:"frt_distribution"`
	TicketsWithResponse int           `json:"total_tickets_with_response"`
}

var frtBuckets = []string{"0-1h", "1-4h", "4-8h", "8-24h", ">24h"}

// FirstResponse measures creation to first technician involvement, from
// the event log only. Tickets nobody ever touched contribute nothing.
func FirstResponse(records []Record, f Filter, now time.Time) FirstResponseReport {
	set := f.Apply(records, now)

	var times []float64
	byPriority := map[string][]float64{}
	bucketCounts := map[string]int{}
	for _, bucket := range frtBuckets {
		bucketCounts[bucket] = 0
	}

	for _, rec := range set {
		h, ok := firstResponseHoursAssist(rec)
		if !ok {
			continue
		}
		times = append(times, h)
		byPriority[string(rec.Ticket.Priority)] = append(byPriority[string(rec.Ticket.Priority)], h)
		switch {
		case h <= 1:
			bucketCounts["0-1h"]++
		case h <= 4:
			bucketCounts["1-4h"]++
		case h <= 8:
			bucketCounts["4-8h"]++
		case h <= 24:
			bucketCounts["8-24h"]++
		default:
			bucketCounts[">24h"]++
		}
	}

	priorities := make([]PriorityFRT, 0, len(byPriority))
	for priority, values := range byPriority {
		priorities = append(priorities, PriorityFRT{
			Priority: priority,
			AvgFRT:   mean(values),
			Count:    len(values),
		})
	}
	sort.Slice(priorities, func(i, j int) bool { return priorities[i].Priority < priorities[j].Priority })

	distribution := make([]CountItem, len(frtBuckets))
	for i, bucket := range frtBuckets {
		distribution[i] = CountItem{Label: bucket, Count: bucketCounts[bucket]}
	}

	return FirstResponseReport{
		AvgFRT:              mean(times),
		ByPriority:          priorities,
		Distribution:        distribution,
		TicketsWithResponse: len(times),
	}
}
