package service

import (
	"context"
	"fmt"
	"time"

	"adbazaar/internal/domain"
	"adbazaar/internal/repository"
)

const (
	monthWindow = 30 * 24 * time.Hour
	weekWindow  = 7 * 24 * time.Hour
)

// StatsService computes the read-only admin dashboard aggregate.
type StatsService interface {
	Dashboard(ctx context.Context) (*domain.DashboardStats, error)
}

type statsService struct {
	repo repository.StatsRepository
}

// NewStatsService creates a new instance of StatsService
func NewStatsService(repo repository.StatsRepository) StatsService {
	return &statsService{repo: repo}
}

// Dashboard gathers totals plus month-over-month and week-over-week deltas.
// A previous period with no entries yields a 0.0 delta rather than a
// division error.
func (s *statsService) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	now := time.Now()

	stats := &domain.DashboardStats{}
	var err error

	if stats.TotalUsers, err = s.repo.TotalUsers(ctx); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if stats.TotalAds, err = s.repo.TotalAds(ctx); err != nil {
		return nil, fmt.Errorf("failed to count ads: %w", err)
	}
	if stats.PendingPayments, err = s.repo.PendingPayments(ctx); err != nil {
		return nil, fmt.Errorf("failed to count pending payments: %w", err)
	}
	if stats.ApprovedAds, err = s.repo.ApprovedAds(ctx); err != nil {
		return nil, fmt.Errorf("failed to count approved ads: %w", err)
	}

	stats.UsersMonthChange, err = s.periodChange(ctx, s.repo.UsersCreatedBetween, now, monthWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to compute user delta: %w", err)
	}
	stats.AdsMonthChange, err = s.periodChange(ctx, s.repo.AdsCreatedBetween, now, monthWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to compute ad delta: %w", err)
	}
	stats.PaymentsWeekChange, err = s.periodChange(ctx, s.repo.PaymentsCreatedBetween, now, weekWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to compute payment delta: %w", err)
	}
	stats.ApprovedAdsWeekChange, err = s.periodChange(ctx, s.repo.ApprovedAdsCreatedBetween, now, weekWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to compute approved ad delta: %w", err)
	}

	return stats, nil
}

func (s *statsService) periodChange(
	ctx context.Context,
	countBetween func(context.Context, time.Time, time.Time) (int, error),
	now time.Time,
	window time.Duration,
) (float64, error) {
	current, err := countBetween(ctx, now.Add(-window), now)
	if err != nil {
		return 0, err
	}
	previous, err := countBetween(ctx, now.Add(-2*window), now.Add(-window))
	if err != nil {
		return 0, err
	}
	return domain.PercentChange(current, previous), nil
}
