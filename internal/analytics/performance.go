package analytics

import (
	"sort"
	"time"
)

// EmployeeRow is one requester on the employee leaderboards.
type EmployeeRow struct {
	EmployeeID          string  `json:"employee_id"`
	Name                string  `json:"name"`
	Group               string  `json:"group"`
	TicketsCreated      int     `json:"tickets_created"`
	TicketsClosed       int     `json:"tickets_closed"`
	AvgResolutionHours  float64 `json:"avg_resolution_time"`
	EvolutionPercentage float64 `json:"evolution_percentage"`
}

// TechnicianRow is one technician on the technician leaderboards.
type TechnicianRow struct {
	TechnicianID       string  `json:"technician_id"`
	Name               string  `json:"name"`
	TicketsHandled     int     `json:"tickets_resolved"`
	TicketsClosed      int     `json:"tickets_closed"`
	AvgResolutionHours float64 `json:"avg_resolution_time"`
	AvgResponseHours   float64 `json:"avg_response_time"`
}

// GroupRow is one requester group on the group leaderboards.
type GroupRow struct {
	Group              string  `json:"group_name"`
	TicketsCreated     int     `json:"tickets_created"`
	TicketsClosed      int     `json:"tickets_closed"`
	AvgResolutionHours float64 `json:"avg_resolution_time"`
}

// UserPerformanceReport is the cross-entity top-5 snapshot.
type UserPerformanceReport struct {
	TopEmployees      []EmployeeRow   `json:"top_employees"`
	TopTechnicians    []TechnicianRow `json:"top_technicians"`
	TopGroups         []GroupRow      `json:"top_departments"`
	GroupDistribution []CountItem     `json:"group_distribution"`
}

// UserPerformance ranks employees, technicians and groups by ticket count
// over the filtered set, five entries each.
func UserPerformance(records []Record, f Filter, now time.Time, dir Directory) UserPerformanceReport {
	set := f.Apply(records, now)
	groupCounts := map[string]int{}
	for _, rec := range set {
		groupCounts[rec.RequesterGroup]++
	}
	return UserPerformanceReport{
		TopEmployees:      employeeRows(set, now, 5),
		TopTechnicians:    technicianRows(set, dir, 5),
		TopGroups:         groupRows(set, 5),
		GroupDistribution: sortedCountsDesc(groupCounts),
	}
}

// EmployeeStatisticsReport is the employee-focused aggregate.
type EmployeeStatisticsReport struct {
	TopEmployees          []EmployeeRow `json:"top_employees"`
	TicketsPerHour        float64       `json:"tickets_per_hour"`
	AvgTicketsPerEmployee float64       `json:"avg_tickets_per_employee"`
	AvgResolutionHours    float64       `json:"avg_resolution_by_creator"`
	SLAOnTimeRate         float64       `json:"sla_on_time_rate"`
}

// EmployeeStatistics computes the top-10 requester leaderboard plus rate
// metrics. Tickets per hour divides by the nominal window length, not the
// observed activity span, except for the all window which uses the data
// range floored at one hour.
func EmployeeStatistics(records []Record, f Filter, now time.Time, sla SLAPolicy, employeeCount int) EmployeeStatisticsReport {
	set := f.Apply(records, now)

	var closedTimes []float64
	var closedCount, slaCompliant int
	for _, rec := range set {
		h, ok := resolutionHours(rec.Ticket)
		if !ok {
			continue
		}
		closedCount++
		closedTimes = append(closedTimes, h)
		if h <= sla.Target(rec.Ticket.Priority) {
			slaCompliant++
		}
	}

	return EmployeeStatisticsReport{
		TopEmployees:          employeeRows(set, now, 10),
		TicketsPerHour:        round2(safeDiv(float64(len(set)), windowHours(set, f, now))),
		AvgTicketsPerEmployee: round1(safeDiv(float64(len(set)), float64(employeeCount))),
		AvgResolutionHours:    mean(closedTimes),
		SLAOnTimeRate:         safeRate(float64(slaCompliant), float64(closedCount)),
	}
}

// TechnicianStatisticsReport is the technician-focused aggregate.
type TechnicianStatisticsReport struct {
	TopTechnicians []TechnicianRow `json:"top_technicians"`
}

// TechnicianStatistics ranks the top-10 technicians by handled ticket
// count with resolution and response averages.
func TechnicianStatistics(records []Record, f Filter, now time.Time, dir Directory) TechnicianStatisticsReport {
	return TechnicianStatisticsReport{
		TopTechnicians: technicianRows(f.Apply(records, now), dir, 10),
	}
}

// GroupStatisticsReport is the per-group aggregate.
type GroupStatisticsReport struct {
	TopGroups []GroupRow `json:"top_groups"`
}

// GroupStatistics ranks the top-10 requester groups.
func GroupStatistics(records []Record, f Filter, now time.Time) GroupStatisticsReport {
	return GroupStatisticsReport{TopGroups: groupRows(f.Apply(records, now), 10)}
}

func employeeRows(set []Record, now time.Time, limit int) []EmployeeRow {
	type acc struct {
		name, group         string
		created, closed     int
		curMonth, prevMonth int
		resolutionTimes     []float64
	}
	curStart := monthStart(now)
	prevStart := curStart.AddDate(0, -1, 0)

	byEmployee := map[string]*acc{}
	for _, rec := range set {
		a := byEmployee[rec.Ticket.RequesterID]
		if a == nil {
			a = &acc{name: rec.RequesterName, group: rec.RequesterGroup}
			byEmployee[rec.Ticket.RequesterID] = a
		}
		a.created++
		created := rec.Ticket.CreatedAt
		switch {
		case !created.Before(curStart):
			a.curMonth++
		case !created.Before(prevStart):
			a.prevMonth++
		}
		if h, ok := resolutionHours(rec.Ticket); ok {
			a.closed++
			a.resolutionTimes = append(a.resolutionTimes, h)
		}
	}

	rows := make([]EmployeeRow, 0, len(byEmployee))
	for id, a := range byEmployee {
		rows = append(rows, EmployeeRow{
			EmployeeID:          id,
			Name:                a.name,
			Group:               a.group,
			TicketsCreated:      a.created,
			TicketsClosed:       a.closed,
			AvgResolutionHours:  mean(a.resolutionTimes),
			EvolutionPercentage: evolution(a.prevMonth, a.curMonth),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TicketsCreated != rows[j].TicketsCreated {
			return rows[i].TicketsCreated > rows[j].TicketsCreated
		}
		return rows[i].EmployeeID < rows[j].EmployeeID
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// evolution compares monthly volumes. A jump from zero to anything is
// pinned at 100 rather than undefined.
func evolution(prev, cur int) float64 {
	if prev == 0 {
		if cur > 0 {
			return 100
		}
		return 0
	}
	return round1(float64(cur-prev) / float64(prev) * 100)
}

func technicianRows(set []Record, dir Directory, limit int) []TechnicianRow {
	type acc struct {
		handled, closed int
		resolutionTimes []float64
		responseTimes   []float64
	}

	byTechnician := map[string]*acc{}
	for _, rec := range set {
		seen := map[string]bool{}
		techIDs := make([]string, 0, 1+len(rec.Ticket.AdditionalTechnicians))
		if rec.Ticket.ClaimedBy != nil {
			techIDs = append(techIDs, *rec.Ticket.ClaimedBy)
		}
		techIDs = append(techIDs, rec.Ticket.AdditionalTechnicians...)

		for _, id := range techIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			a := byTechnician[id]
			if a == nil {
				a = &acc{}
				byTechnician[id] = a
			}
			a.handled++
			if h, ok := resolutionHours(rec.Ticket); ok {
				a.closed++
				a.resolutionTimes = append(a.resolutionTimes, h)
			}
			if h, ok := firstResponseHoursAssist(rec); ok {
				a.responseTimes = append(a.responseTimes, h)
			}
		}
	}

	rows := make([]TechnicianRow, 0, len(byTechnician))
	for id, a := range byTechnician {
		rows = append(rows, TechnicianRow{
			TechnicianID:       id,
			Name:               dir.Name(id),
			TicketsHandled:     a.handled,
			TicketsClosed:      a.closed,
			AvgResolutionHours: mean(a.resolutionTimes),
			AvgResponseHours:   mean(a.responseTimes),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TicketsHandled != rows[j].TicketsHandled {
			return rows[i].TicketsHandled > rows[j].TicketsHandled
		}
		return rows[i].TechnicianID < rows[j].TechnicianID
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

func groupRows(set []Record, limit int) []GroupRow {
	type acc struct {
		created, closed int
		resolutionTimes []float64
	}

	byGroup := map[string]*acc{}
	for _, rec := range set {
		a := byGroup[rec.RequesterGroup]
		if a == nil {
			a = &acc{}
			byGroup[rec.RequesterGroup] = a
		}
		a.created++
		if h, ok := resolutionHours(rec.Ticket); ok {
			a.closed++
			a.resolutionTimes = append(a.resolutionTimes, h)
		}
	}

	rows := make([]GroupRow, 0, len(byGroup))
	for group, a := range byGroup {
		rows = append(rows, GroupRow{
			Group:              group,
			TicketsCreated:     a.created,
			TicketsClosed:      a.closed,
			AvgResolutionHours: mean(a.resolutionTimes),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TicketsCreated != rows[j].TicketsCreated {
			return rows[i].TicketsCreated > rows[j].TicketsCreated
		}
		return rows[i].Group < rows[j].Group
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// windowHours returns the nominal length of the filter window.
func windowHours(set []Record, f Filter, now time.Time) float64 {
	switch f.Window {
	case WindowToday:
		return 24
	case WindowWeek:
		return 168
	case WindowMonth:
		return 720
	case WindowQuarter:
		return 2160
	case WindowYear:
		return 8760
	case WindowCustom:
		if f.StartDate.IsZero() || f.EndDate.IsZero() {
			return 1
		}
		h := f.EndDate.Sub(f.StartDate).Hours()
		if h < 1 {
			return 1
		}
		return h
	default:
		if len(set) == 0 {
			return 1
		}
		first, last := set[0].Ticket.CreatedAt, set[0].Ticket.CreatedAt
		for _, rec := range set[1:] {
			if rec.Ticket.CreatedAt.Before(first) {
				first = rec.Ticket.CreatedAt
			}
			if rec.Ticket.CreatedAt.After(last) {
				last = rec.Ticket.CreatedAt
			}
		}
		h := last.Sub(first).Hours()
		if h < 1 {
			return 1
		}
		return h
	}
}
