package analytics

import (
	"sort"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TechnicianLoad is one technician's share of the active backlog.
type TechnicianLoad struct {
	TechnicianID        string `json:"technician_id"`
	Name                string `json:"name"`
	ActiveTickets       int    `json:"active_tickets"`
	CapacityUtilization int    `json:"capacity_utilization"`
}

// WorkloadDistribution buckets technicians by load.
type WorkloadDistribution struct {
	UnderCapacity  int `json:"under_capacity"`
	NormalCapacity int `json:"normal_capacity"`
	OverCapacity   int `json:"over_capacity"`
}

// DayCount is one day on an intake trend.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// WorkloadReport describes the current distribution of open work.
type WorkloadReport struct {
	Technicians        []TechnicianLoad     `json:"workload_data"`
	Distribution       WorkloadDistribution `json:"workload_distribution"`
	OverloadAlerts     []TechnicianLoad     `json:"overload_alerts"`
	IntakeTrend        []DayCount           `json:"workload_trends"`
	TotalActiveTickets int                  `json:"total_active_tickets"`
}

// Workload counts open tickets per technician across the whole roster,
// including technicians holding nothing, and applies the linear capacity
// heuristic. Only open-status tickets count as active.
func Workload(records []Record, f Filter, now time.Time, technicians []Person, capacity CapacityPolicy) WorkloadReport {
	var active []Record
	for _, rec := range f.Apply(records, now) {
		if rec.Ticket.Status == domain.TicketStatusOpen {
			active = append(active, rec)
		}
	}

	loads := make([]TechnicianLoad, 0, len(technicians))
	var totalActive int
	for _, tech := range technicians {
		var count int
		for _, rec := range active {
			if rec.HandledBy(tech.ID) {
				count++
			}
		}
		totalActive += count
		loads = append(loads, TechnicianLoad{
			TechnicianID:        tech.ID,
			Name:                tech.Name,
			ActiveTickets:       count,
			CapacityUtilization: capacity.Utilization(count),
		})
	}
	sort.Slice(loads, func(i, j int) bool {
		if loads[i].ActiveTickets != loads[j].ActiveTickets {
			return loads[i].ActiveTickets > loads[j].ActiveTickets
		}
		return loads[i].TechnicianID < loads[j].TechnicianID
	})

	var distribution WorkloadDistribution
	var alerts []TechnicianLoad
	for _, load := range loads {
		switch {
		case load.ActiveTickets < capacity.NormalMin:
			distribution.UnderCapacity++
		case load.ActiveTickets < capacity.OverMin:
			distribution.NormalCapacity++
		default:
			distribution.OverCapacity++
			alerts = append(alerts, load)
		}
	}

	trend := make([]DayCount, 7)
	for i := 0; i < 7; i++ {
		day := dayStart(now).AddDate(0, 0, -(6 - i))
		var count int
		for _, rec := range active {
			if sameDate(rec.Ticket.CreatedAt, day) {
				count++
			}
		}
		trend[i] = DayCount{Date: day.Format("2006-01-02"), Count: count}
	}

	return WorkloadReport{
		Technicians:        loads,
		Distribution:       distribution,
		OverloadAlerts:     alerts,
		IntakeTrend:        trend,
		TotalActiveTickets: totalActive,
	}
}
