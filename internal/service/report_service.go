package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/analytics"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util"
)

// ReportService runs the analytics engine over a fresh snapshot and caches
// rendered reports in Redis for a short TTL. Cache failures degrade to
// recomputation, never to request failure.
type ReportService struct {
	source repository.AnalyticsSource
	users  repository.UserRepository
	cache  *redis.Client
	ttl    time.Duration
	rules  config.RulesConfig
	logger *zap.Logger
	now    func() time.Time
}

// ReportDependencies bundles collaborators for the report service.
type ReportDependencies struct {
	Source repository.AnalyticsSource
	Users  repository.UserRepository
	Cache  *redis.Client
	TTL    time.Duration
	Rules  config.RulesConfig
	Logger *zap.Logger
	Now    func() time.Time
}

// NewReportService constructs the service.
func NewReportService(deps ReportDependencies) *ReportService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &ReportService{
		source: deps.Source,
		users:  deps.Users,
		cache:  deps.Cache,
		ttl:    deps.TTL,
		rules:  deps.Rules,
		logger: deps.Logger,
		now:    now,
	}
}

func (s *ReportService) slaPolicy() analytics.SLAPolicy {
	return analytics.SLAPolicy{Hours: s.rules.SLAHours, DefaultHours: s.rules.SLADefaultHours}
}

func (s *ReportService) capacityPolicy() analytics.CapacityPolicy {
	return analytics.CapacityPolicy{
		PerTicketPercent: s.rules.CapacityPerTicket,
		NormalMin:        s.rules.CapacityNormalMin,
		OverMin:          s.rules.CapacityOverMin,
	}
}

// Overview computes the main ticket analytics report.
func (s *ReportService) Overview(ctx context.Context, f analytics.Filter) (*analytics.OverviewReport, error) {
	return cached(ctx, s, "overview", f, func(records []analytics.Record, now time.Time) (*analytics.OverviewReport, error) {
		count, err := s.users.CountByRole(ctx, domain.RoleEmployee)
		if err != nil {
			return nil, util.MapError(err)
		}
		report := analytics.Overview(records, f, now, count)
		return &report, nil
	})
}

// UserPerformance computes the cross-entity top-5 report.
func (s *ReportService) UserPerformance(ctx context.Context, f analytics.Filter) (*analytics.UserPerformanceReport, error) {
	return cached(ctx, s, "user_performance", f, func(records []analytics.Record, now time.Time) (*analytics.UserPerformanceReport, error) {
		directory, err := s.source.Directory(ctx)
		if err != nil {
			return nil, util.MapError(err)
		}
		report := analytics.UserPerformance(records, f, now, directory)
		return &report, nil
	})
}

// EmployeeStatistics computes the employee leaderboard report.
func (s *ReportService) EmployeeStatistics(ctx context.Context, f analytics.Filter) (*analytics.EmployeeStatisticsReport, error) {
	return cached(ctx, s, "employee_statistics", f, func(records []analytics.Record, now time.Time) (*analytics.EmployeeStatisticsReport, error) {
		count, err := s.users.CountByRole(ctx, domain.RoleEmployee)
		if err != nil {
			return nil, util.MapError(err)
		}
		report := analytics.EmployeeStatistics(records, f, now, s.slaPolicy(), count)
		return &report, nil
	})
}

// TechnicianStatistics computes the technician leaderboard report.
func (s *ReportService) TechnicianStatistics(ctx context.Context, f analytics.Filter) (*analytics.TechnicianStatisticsReport, error) {
	return cached(ctx, s, "technician_statistics", f, func(records []analytics.Record, now time.Time) (*analytics.TechnicianStatisticsReport, error) {
		directory, err := s.source.Directory(ctx)
		if err != nil {
			return nil, util.MapError(err)
		}
		report := analytics.TechnicianStatistics(records, f, now, directory)
		return &report, nil
	})
}

// GroupStatistics computes the per-group report.
func (s *ReportService) GroupStatistics(ctx context.Context, f analytics.Filter) (*analytics.GroupStatisticsReport, error) {
	return cached(ctx, s, "group_statistics", f, func(records []analytics.Record, now time.Time) (*analytics.GroupStatisticsReport, error) {
		report := analytics.GroupStatistics(records, f, now)
		return &report, nil
	})
}

// SLATracking computes the compliance report.
func (s *ReportService) SLATracking(ctx context.Context, f analytics.Filter) (*analytics.SLAReport, error) {
	return cached(ctx, s, "sla_tracking", f, func(records []analytics.Record, now time.Time) (*analytics.SLAReport, error) {
		report := analytics.SLATracking(records, f, now, s.slaPolicy())
		return &report, nil
	})
}

// QualityMetrics computes the reopen rate report.
func (s *ReportService) QualityMetrics(ctx context.Context, f analytics.Filter) (*analytics.QualityReport, error) {
	return cached(ctx, s, "quality_metrics", f, func(records []analytics.Record, now time.Time) (*analytics.QualityReport, error) {
		report := analytics.QualityMetrics(records, f, now)
		return &report, nil
	})
}

// RecurringProblems computes the repeated-subject report.
func (s *ReportService) RecurringProblems(ctx context.Context, f analytics.Filter) (*analytics.RecurringReport, error) {
	return cached(ctx, s, "recurring_problems", f, func(records []analytics.Record, now time.Time) (*analytics.RecurringReport, error) {
		report := analytics.RecurringProblems(records, f, now)
		return &report, nil
	})
}

// Workload computes the open-backlog distribution report.
func (s *ReportService) Workload(ctx context.Context, f analytics.Filter) (*analytics.WorkloadReport, error) {
	return cached(ctx, s, "workload", f, func(records []analytics.Record, now time.Time) (*analytics.WorkloadReport, error) {
		technicians, err := s.technicianRoster(ctx)
		if err != nil {
			return nil, err
		}
		report := analytics.Workload(records, f, now, technicians, s.capacityPolicy())
		return &report, nil
	})
}

// Trends computes the volume trend report.
func (s *ReportService) Trends(ctx context.Context, f analytics.Filter) (*analytics.TrendsReport, error) {
	return cached(ctx, s, "trends", f, func(records []analytics.Record, now time.Time) (*analytics.TrendsReport, error) {
		report := analytics.Trends(records, f, now)
		return &report, nil
	})
}

// FirstResponse computes the response-time report.
func (s *ReportService) FirstResponse(ctx context.Context, f analytics.Filter) (*analytics.FirstResponseReport, error) {
	return cached(ctx, s, "first_response", f, func(records []analytics.Record, now time.Time) (*analytics.FirstResponseReport, error) {
		report := analytics.FirstResponse(records, f, now)
		return &report, nil
	})
}

// Technicians returns the technician roster for filter dropdowns.
func (s *ReportService) Technicians(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.ListByRole(ctx, domain.RoleTechnician)
	if err != nil {
		return nil, util.MapError(err)
	}
	return users, nil
}

// Employees returns the employee roster for filter dropdowns.
func (s *ReportService) Employees(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.ListByRole(ctx, domain.RoleEmployee)
	if err != nil {
		return nil, util.MapError(err)
	}
	return users, nil
}

func (s *ReportService) technicianRoster(ctx context.Context) ([]analytics.Person, error) {
	users, err := s.users.ListByRole(ctx, domain.RoleTechnician)
	if err != nil {
		return nil, util.MapError(err)
	}
	roster := make([]analytics.Person, 0, len(users))
	for i := range users {
		user := &users[i]
		roster = append(roster, analytics.Person{
			ID:    user.ID,
			Name:  user.FullName(),
			Group: user.Group,
			Role:  user.Role,
		})
	}
	return roster, nil
}

// cached wraps a report computation with the Redis JSON cache.
func cached[T any](ctx context.Context, s *ReportService, name string, f analytics.Filter, compute func([]analytics.Record, time.Time) (*T, error)) (*T, error) {
	key := cacheKey(name, f)

	if s.cache != nil {
		if body, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var report T
			if err := json.Unmarshal(body, &report); err == nil {
				return &report, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("report cache read failed", zap.String("report", name), zap.Error(err))
		}
	}

	records, err := s.source.Records(ctx)
	if err != nil {
		return nil, util.MapError(err)
	}
	report, err := compute(records, s.now())
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.ttl > 0 {
		if body, err := json.Marshal(report); err == nil {
			if err := s.cache.Set(ctx, key, body, s.ttl).Err(); err != nil {
				s.logger.Warn("report cache write failed", zap.String("report", name), zap.Error(err))
			}
		}
	}
	return report, nil
}

func cacheKey(name string, f analytics.Filter) string {
	start, end := "", ""
	if !f.StartDate.IsZero() {
		start = f.StartDate.Format("2006-01-02")
	}
	if !f.EndDate.IsZero() {
		end = f.EndDate.Format("2006-01-02")
	}
	return fmt.Sprintf("helpdesk:reports:%s:%s:%s:%s:%s:%s:%s:%s:%s:%s",
		name, f.Window, start, end, f.Status, f.Priority, f.Category, f.RequesterID, f.TechnicianID, f.Group)
}
