package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Audit action names recorded by the workflow managers.
const (
	AuditActionAdCreated        = "ad_created"
	AuditActionAdUpdated        = "ad_updated"
	AuditActionAdDeleted        = "ad_deleted"
	AuditActionAdApproved       = "ad_approved"
	AuditActionAdRejected       = "ad_rejected"
	AuditActionPaymentSubmitted = "payment_submitted"
	AuditActionPaymentApproved  = "payment_approved"
	AuditActionPaymentRejected  = "payment_rejected"
	AuditActionCategoryCreated  = "category_created"
	AuditActionCategoryUpdated  = "category_updated"
	AuditActionCategoryDeleted  = "category_deleted"
	AuditActionUserUpdated      = "user_updated"
)

// Target types referenced by audit entries.
const (
	AuditTargetAd       = "ad"
	AuditTargetPayment  = "payment"
	AuditTargetCategory = "category"
	AuditTargetUser     = "user"
)

// AuditLogEntry is an append-only record of a state-changing action.
type AuditLogEntry struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	Action     string          `json:"action" db:"action"`
	ActorID    uuid.UUID       `json:"actor_id" db:"actor_id"`
	TargetType string          `json:"target_type" db:"target_type"`
	TargetID   uuid.UUID       `json:"target_id" db:"target_id"`
	Details    json.RawMessage `json:"details,omitempty" db:"details"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}
