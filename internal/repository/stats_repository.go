package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// StatsRepository exposes the count queries behind the admin dashboard.
// All methods are read-only.
type StatsRepository interface {
	TotalUsers(ctx context.Context) (int, error)
	TotalAds(ctx context.Context) (int, error)
	PendingPayments(ctx context.Context) (int, error)
	ApprovedAds(ctx context.Context) (int, error)
	UsersCreatedBetween(ctx context.Context, from, to time.Time) (int, error)
	AdsCreatedBetween(ctx context.Context, from, to time.Time) (int, error)
	PaymentsCreatedBetween(ctx context.Context, from, to time.Time) (int, error)
	ApprovedAdsCreatedBetween(ctx context.Context, from, to time.Time) (int, error)
}

type statsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates a new instance of StatsRepository
func NewStatsRepository(db *sql.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) count(ctx context.Context, query string, args ...interface{}) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to run count query: %w", err)
	}
	return n, nil
}

func (r *statsRepository) TotalUsers(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users`)
}

func (r *statsRepository) TotalAds(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM ads WHERE deleted_at IS NULL`)
}

func (r *statsRepository) PendingPayments(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM payments WHERE status = 'pending'`)
}

func (r *statsRepository) ApprovedAds(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM ads WHERE status = 'approved' AND deleted_at IS NULL`)
}

func (r *statsRepository) UsersCreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users WHERE created_at >= $1 AND created_at < $2`, from, to)
}

func (r *statsRepository) AdsCreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM ads WHERE created_at >= $1 AND created_at < $2 AND deleted_at IS NULL`, from, to)
}

func (r *statsRepository) PaymentsCreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM payments WHERE created_at >= $1 AND created_at < $2`, from, to)
}

func (r *statsRepository) ApprovedAdsCreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM ads WHERE status = 'approved' AND created_at >= $1 AND created_at < $2 AND deleted_at IS NULL`, from, to)
}
