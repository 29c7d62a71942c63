package repository

import (
	"context"
	"database/sql"
	"fmt"

	"adbazaar/internal/domain"
)

// AuditLogRepository defines the interface for audit log data access. The
// table is append-only; entries are never updated or deleted.
type AuditLogRepository interface {
	Insert(ctx context.Context, entry *domain.AuditLogEntry) error
	List(ctx context.Context, limit, offset int) ([]*domain.AuditLogEntry, int, error)
}

type auditLogRepository struct {
	db *sql.DB
}

// NewAuditLogRepository creates a new instance of AuditLogRepository
func NewAuditLogRepository(db *sql.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

// Insert appends an audit entry
func (r *auditLogRepository) Insert(ctx context.Context, entry *domain.AuditLogEntry) error {
	query := `
		INSERT INTO audit_logs (id, action, actor_id, target_type, target_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.Action,
		entry.ActorID,
		entry.TargetType,
		entry.TargetID,
		[]byte(entry.Details),
		entry.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert audit log entry: %w", err)
	}

	return nil
}

// List retrieves audit entries newest first with pagination
func (r *auditLogRepository) List(ctx context.Context, limit, offset int) ([]*domain.AuditLogEntry, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit log entries: %w", err)
	}

	query := `
		SELECT id, action, actor_id, target_type, target_id, details, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit log entries: %w", err)
	}
	defer rows.Close()

	entries := []*domain.AuditLogEntry{}
	for rows.Next() {
		entry := &domain.AuditLogEntry{}
		var details []byte
		err := rows.Scan(
			&entry.ID,
			&entry.Action,
			&entry.ActorID,
			&entry.TargetType,
			&entry.TargetID,
			&details,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan audit log entry: %w", err)
		}
		entry.Details = details
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating audit log entries: %w", err)
	}

	return entries, total, nil
}
