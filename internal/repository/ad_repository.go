package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"adbazaar/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrAdNotFound = errors.New("ad not found")
)

// escapeLikePattern neutralizes LIKE metacharacters so a search term matches
// literally.
func escapeLikePattern(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// AdFilter narrows ad listing queries. A nil field means "no filter".
type AdFilter struct {
	CategoryID *uuid.UUID
	Status     *domain.AdStatus
	Search     string // case-insensitive substring over title and description
	Limit      int
	Offset     int
}

// AdRepository defines the interface for ad data access. Deletion is a soft
// delete; deleted ads are excluded from every query.
type AdRepository interface {
	Create(ctx context.Context, ad *domain.Ad) error
	Update(ctx context.Context, ad *domain.Ad) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Ad, error)
	List(ctx context.Context, filter AdFilter) ([]*domain.Ad, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AdStatus, reason *string) error
}

type adRepository struct {
	db *sql.DB
}

// NewAdRepository creates a new instance of AdRepository
func NewAdRepository(db *sql.DB) AdRepository {
	return &adRepository{db: db}
}

const adColumns = `id, title, description, price, image_urls, video_url, category_id, user_id, package, status, rejection_reason, created_at, updated_at`

// Create inserts a new ad into the database using parameterized queries
func (r *adRepository) Create(ctx context.Context, ad *domain.Ad) error {
	query := `
		INSERT INTO ads (id, title, description, price, image_urls, video_url, category_id, user_id, package, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	images, err := json.Marshal(ad.ImageURLs)
	if err != nil {
		return fmt.Errorf("failed to encode image urls: %w", err)
	}

	_, err = r.db.ExecContext(
		ctx,
		query,
		ad.ID,
		ad.Title,
		ad.Description,
		ad.Price,
		images,
		ad.VideoURL,
		ad.CategoryID,
		ad.UserID,
		ad.Package,
		ad.Status,
		ad.CreatedAt,
		ad.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create ad: %w", err)
	}

	return nil
}

// Update rewrites the content fields of an ad. Status is not touched here;
// status changes go through UpdateStatus.
func (r *adRepository) Update(ctx context.Context, ad *domain.Ad) error {
	query := `
		UPDATE ads
		SET title = $2, description = $3, price = $4, image_urls = $5,
		    video_url = $6, category_id = $7, updated_at = $8
		WHERE id = $1 AND deleted_at IS NULL
	`

	images, err := json.Marshal(ad.ImageURLs)
	if err != nil {
		return fmt.Errorf("failed to encode image urls: %w", err)
	}

	result, err := r.db.ExecContext(
		ctx,
		query,
		ad.ID,
		ad.Title,
		ad.Description,
		ad.Price,
		images,
		ad.VideoURL,
		ad.CategoryID,
		ad.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update ad: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrAdNotFound
	}

	return nil
}

// SoftDelete marks an ad deleted. The row stays behind for auditability.
func (r *adRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE ads SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete ad: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrAdNotFound
	}

	return nil
}

// FindByID retrieves a non-deleted ad by ID
func (r *adRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Ad, error) {
	query := fmt.Sprintf(`SELECT %s FROM ads WHERE id = $1 AND deleted_at IS NULL`, adColumns)

	ad, err := scanAd(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAdNotFound
		}
		return nil, fmt.Errorf("failed to find ad by ID: %w", err)
	}

	return ad, nil
}

// List retrieves ads matching the filter, newest first, with the total count
// of matching rows for pagination.
func (r *adRepository) List(ctx context.Context, filter AdFilter) ([]*domain.Ad, int, error) {
	whereClause := "WHERE deleted_at IS NULL"
	args := []interface{}{}
	argIndex := 1

	if filter.Status != nil {
		whereClause += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *filter.Status)
		argIndex++
	}

	if filter.CategoryID != nil {
		whereClause += fmt.Sprintf(" AND category_id = $%d", argIndex)
		args = append(args, *filter.CategoryID)
		argIndex++
	}

	if filter.Search != "" {
		whereClause += fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex)
		args = append(args, "%"+escapeLikePattern(filter.Search)+"%")
		argIndex++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM ads %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count ads: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM ads
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, adColumns, whereClause, argIndex, argIndex+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list ads: %w", err)
	}
	defer rows.Close()

	ads := []*domain.Ad{}
	for rows.Next() {
		ad, err := scanAd(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan ad: %w", err)
		}
		ads = append(ads, ad)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating ads: %w", err)
	}

	return ads, total, nil
}

// UpdateStatus flips the ad status, storing the rejection reason when given.
func (r *adRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AdStatus, reason *string) error {
	query := `
		UPDATE ads
		SET status = $2, rejection_reason = $3, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, id, status, reason)
	if err != nil {
		return fmt.Errorf("failed to update ad status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrAdNotFound
	}

	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAd(row rowScanner) (*domain.Ad, error) {
	ad := &domain.Ad{}
	var images []byte

	err := row.Scan(
		&ad.ID,
		&ad.Title,
		&ad.Description,
		&ad.Price,
		&images,
		&ad.VideoURL,
		&ad.CategoryID,
		&ad.UserID,
		&ad.Package,
		&ad.Status,
		&ad.RejectionReason,
		&ad.CreatedAt,
		&ad.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(images) > 0 {
		if err := json.Unmarshal(images, &ad.ImageURLs); err != nil {
			return nil, fmt.Errorf("failed to decode image urls: %w", err)
		}
	}

	return ad, nil
}
