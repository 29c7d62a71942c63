package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus is the verification state of a submitted payment.
type PaymentStatus string

const (
	// PaymentStatusPending means the payment is awaiting an admin decision.
	PaymentStatusPending PaymentStatus = "pending"
	// PaymentStatusVerified means an admin confirmed the payment.
	PaymentStatusVerified PaymentStatus = "verified"
	// PaymentStatusRejected means an admin rejected the payment.
	PaymentStatusRejected PaymentStatus = "rejected"
)

// Payment is a manually submitted proof of payment for a paid-package ad.
// At most one pending payment may exist per ad at a time; once a payment
// leaves pending it is never mutated again.
type Payment struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	AdID          uuid.UUID     `json:"ad_id" db:"ad_id"`
	UserID        uuid.UUID     `json:"user_id" db:"user_id"`
	SenderName    string        `json:"sender_name" db:"sender_name"`
	BankName      string        `json:"bank_name" db:"bank_name"`
	TransactionID string        `json:"transaction_id" db:"transaction_id"`
	ScreenshotURL *string       `json:"screenshot_url,omitempty" db:"screenshot_url"`
	Status        PaymentStatus `json:"status" db:"status"`
	AdminNote     *string       `json:"admin_note,omitempty" db:"admin_note"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	VerifiedAt    *time.Time    `json:"verified_at,omitempty" db:"verified_at"`
}
