package service

import (
	"context"
	"encoding/json"
	"time"

	"adbazaar/internal/domain"
	"adbazaar/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditRecorder appends workflow actions to the audit log. Writes are
// fire-and-forget: a failed insert is logged and swallowed so it can never
// block or roll back the action that triggered it.
type AuditRecorder struct {
	repo   repository.AuditLogRepository
	logger *zap.Logger
}

// NewAuditRecorder creates a new AuditRecorder
func NewAuditRecorder(repo repository.AuditLogRepository, logger *zap.Logger) *AuditRecorder {
	return &AuditRecorder{
		repo:   repo,
		logger: logger,
	}
}

// Record appends an entry for a state-changing action. Details may be nil.
func (a *AuditRecorder) Record(ctx context.Context, action string, actorID uuid.UUID, targetType string, targetID uuid.UUID, details map[string]interface{}) {
	entry := &domain.AuditLogEntry{
		ID:         uuid.New(),
		Action:     action,
		ActorID:    actorID,
		TargetType: targetType,
		TargetID:   targetID,
		CreatedAt:  time.Now(),
	}

	if details != nil {
		payload, err := json.Marshal(details)
		if err != nil {
			a.logger.Warn("Failed to encode audit details",
				zap.String("action", action),
				zap.Error(err),
			)
		} else {
			entry.Details = payload
		}
	}

	if err := a.repo.Insert(ctx, entry); err != nil {
		a.logger.Warn("Failed to write audit log entry",
			zap.String("action", action),
			zap.String("target_id", targetID.String()),
			zap.Error(err),
		)
	}
}

// List exposes the audit trail to the admin read endpoint
func (a *AuditRecorder) List(ctx context.Context, limit, offset int) ([]*domain.AuditLogEntry, int, error) {
	return a.repo.List(ctx, limit, offset)
}
