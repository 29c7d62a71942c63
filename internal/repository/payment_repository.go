package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"adbazaar/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrPaymentNotPending means the payment already left the pending state;
	// verified and rejected payments are immutable.
	ErrPaymentNotPending = errors.New("payment is not pending")
	// ErrDuplicatePendingPayment backs the one-pending-payment-per-ad guard.
	ErrDuplicatePendingPayment = errors.New("a pending payment already exists for this ad")
)

// PaymentRepository defines the interface for payment data access. Approve and
// Reject flip the linked ad status inside the same transaction so an ad can
// never become public without its payment decision.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	FindPendingByAdID(ctx context.Context, adID uuid.UUID) (*domain.Payment, error)
	ListPending(ctx context.Context, limit, offset int) ([]*domain.Payment, int, error)
	Approve(ctx context.Context, id uuid.UUID, note *string) (*domain.Payment, error)
	Reject(ctx context.Context, id uuid.UUID, note string) (*domain.Payment, error)
}

type paymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository creates a new instance of PaymentRepository
func NewPaymentRepository(db *sql.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `id, ad_id, user_id, sender_name, bank_name, transaction_id, screenshot_url, status, admin_note, created_at, verified_at`

// Create inserts a new pending payment. The partial unique index on
// (ad_id) WHERE status = 'pending' turns concurrent duplicate submissions
// into ErrDuplicatePendingPayment.
func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, ad_id, user_id, sender_name, bank_name, transaction_id, screenshot_url, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		payment.ID,
		payment.AdID,
		payment.UserID,
		payment.SenderName,
		payment.BankName,
		payment.TransactionID,
		payment.ScreenshotURL,
		payment.Status,
		payment.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, "payments_one_pending_per_ad") {
			return ErrDuplicatePendingPayment
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

// FindByID retrieves a payment by ID
func (r *paymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE id = $1`, paymentColumns)

	payment, err := scanPayment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to find payment by ID: %w", err)
	}

	return payment, nil
}

// FindPendingByAdID retrieves the pending payment linked to an ad, if any
func (r *paymentRepository) FindPendingByAdID(ctx context.Context, adID uuid.UUID) (*domain.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE ad_id = $1 AND status = 'pending'`, paymentColumns)

	payment, err := scanPayment(r.db.QueryRowContext(ctx, query, adID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to find pending payment: %w", err)
	}

	return payment, nil
}

// ListPending retrieves pending payments, oldest first so admins work the
// queue in submission order.
func (r *paymentRepository) ListPending(ctx context.Context, limit, offset int) ([]*domain.Payment, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM payments WHERE status = 'pending'`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count pending payments: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM payments
		WHERE status = 'pending'
		ORDER BY created_at ASC
		LIMIT $1 OFFSET $2
	`, paymentColumns)

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list pending payments: %w", err)
	}
	defer rows.Close()

	payments := []*domain.Payment{}
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, payment)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating payments: %w", err)
	}

	return payments, total, nil
}

// Approve marks a pending payment verified and flips the linked ad to
// approved in one transaction.
func (r *paymentRepository) Approve(ctx context.Context, id uuid.UUID, note *string) (*domain.Payment, error) {
	return r.decide(ctx, id, domain.PaymentStatusVerified, note, domain.AdStatusApproved)
}

// Reject marks a pending payment rejected and flips the linked ad to rejected
// in one transaction. The note is stored on both the payment and the ad.
func (r *paymentRepository) Reject(ctx context.Context, id uuid.UUID, note string) (*domain.Payment, error) {
	return r.decide(ctx, id, domain.PaymentStatusRejected, &note, domain.AdStatusRejected)
}

// decide performs the coupled payment/ad status write. The conditional
// status = 'pending' guard makes concurrent admin decisions on the same
// payment lose cleanly with ErrPaymentNotPending.
func (r *paymentRepository) decide(ctx context.Context, id uuid.UUID, paymentStatus domain.PaymentStatus, note *string, adStatus domain.AdStatus) (*domain.Payment, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var verifiedAt *time.Time
	if paymentStatus == domain.PaymentStatusVerified {
		now := time.Now()
		verifiedAt = &now
	}

	query := fmt.Sprintf(`
		UPDATE payments
		SET status = $2, admin_note = $3, verified_at = $4
		WHERE id = $1 AND status = 'pending'
		RETURNING %s
	`, paymentColumns)

	payment, err := scanPayment(tx.QueryRowContext(ctx, query, id, paymentStatus, note, verifiedAt))
	if err != nil {
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("failed to update payment: %w", err)
		}
		// Distinguish a missing payment from one already decided.
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM payments WHERE id = $1)`, id).Scan(&exists); err != nil {
			return nil, fmt.Errorf("failed to check payment existence: %w", err)
		}
		if !exists {
			return nil, ErrPaymentNotFound
		}
		return nil, ErrPaymentNotPending
	}

	var reason *string
	if adStatus == domain.AdStatusRejected {
		reason = note
	}

	adQuery := `
		UPDATE ads
		SET status = $2, rejection_reason = $3, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	if _, err := tx.ExecContext(ctx, adQuery, payment.AdID, adStatus, reason); err != nil {
		return nil, fmt.Errorf("failed to update linked ad status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit payment decision: %w", err)
	}

	return payment, nil
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	payment := &domain.Payment{}
	err := row.Scan(
		&payment.ID,
		&payment.AdID,
		&payment.UserID,
		&payment.SenderName,
		&payment.BankName,
		&payment.TransactionID,
		&payment.ScreenshotURL,
		&payment.Status,
		&payment.AdminNote,
		&payment.CreatedAt,
		&payment.VerifiedAt,
	)
	if err != nil {
		return nil, err
	}
	return payment, nil
}
