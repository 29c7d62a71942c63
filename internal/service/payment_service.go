package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"adbazaar/internal/config"
	"adbazaar/internal/domain"
	"adbazaar/internal/repository"

	"github.com/google/uuid"
)

var (
	// ErrAdNotAwaitingPayment means the ad is not in pending_verification, so
	// no payment may be submitted for it.
	ErrAdNotAwaitingPayment = errors.New("ad is not awaiting payment")
	// ErrAdminNoteRequired means a rejection was attempted without a reason.
	ErrAdminNoteRequired = errors.New("admin note is required when rejecting a payment")
)

// SubmitPaymentInput carries the seller-provided proof of payment.
type SubmitPaymentInput struct {
	AdID          uuid.UUID
	SenderName    string
	BankName      string
	TransactionID string
	ScreenshotURL *string
}

// PaymentInstructions is the static bank detail block shown to sellers.
type PaymentInstructions struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountTitle  string `json:"account_title"`
}

// PaymentService gates an ad's entry into the public catalog on admin
// sign-off of its payment. A paid-package ad can only reach approved through
// Approve here.
type PaymentService interface {
	Submit(ctx context.Context, userID uuid.UUID, input SubmitPaymentInput) (*domain.Payment, error)
	Approve(ctx context.Context, adminID, paymentID uuid.UUID, note *string) (*domain.Payment, error)
	Reject(ctx context.Context, adminID, paymentID uuid.UUID, note string) (*domain.Payment, error)
	ListPending(ctx context.Context, limit, offset int) ([]*domain.Payment, int, error)
	Instructions() PaymentInstructions
}

type paymentService struct {
	paymentRepo  repository.PaymentRepository
	adRepo       repository.AdRepository
	userRepo     repository.UserRepository
	audit        *AuditRecorder
	instructions PaymentInstructions
}

// NewPaymentService creates a new instance of PaymentService
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	adRepo repository.AdRepository,
	userRepo repository.UserRepository,
	audit *AuditRecorder,
	cfg config.PaymentConfig,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		adRepo:      adRepo,
		userRepo:    userRepo,
		audit:       audit,
		instructions: PaymentInstructions{
			BankName:      cfg.BankName,
			AccountNumber: cfg.AccountNumber,
			AccountTitle:  cfg.AccountTitle,
		},
	}
}

// Submit records a pending payment for a paid-package ad. Preconditions are
// checked in order: the ad must exist and belong to the submitter (an ad
// owned by someone else reads as not found), it must be awaiting payment,
// and no pending payment may already be linked to it.
func (s *paymentService) Submit(ctx context.Context, userID uuid.UUID, input SubmitPaymentInput) (*domain.Payment, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load submitting user: %w", err)
	}
	if user.Status == domain.UserStatusBlocked {
		return nil, ErrUserBlocked
	}

	ad, err := s.adRepo.FindByID(ctx, input.AdID)
	if err != nil {
		return nil, err
	}
	if ad.UserID != userID {
		return nil, repository.ErrAdNotFound
	}

	if ad.Status != domain.AdStatusPendingVerification {
		return nil, ErrAdNotAwaitingPayment
	}

	if _, err := s.paymentRepo.FindPendingByAdID(ctx, input.AdID); err == nil {
		return nil, repository.ErrDuplicatePendingPayment
	} else if !errors.Is(err, repository.ErrPaymentNotFound) {
		return nil, fmt.Errorf("failed to check for pending payment: %w", err)
	}

	payment := &domain.Payment{
		ID:            uuid.New(),
		AdID:          input.AdID,
		UserID:        userID,
		SenderName:    input.SenderName,
		BankName:      input.BankName,
		TransactionID: input.TransactionID,
		ScreenshotURL: input.ScreenshotURL,
		Status:        domain.PaymentStatusPending,
		CreatedAt:     time.Now(),
	}

	// The partial unique index catches the race where two submissions pass
	// the check above concurrently.
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, domain.AuditActionPaymentSubmitted, userID, domain.AuditTargetPayment, payment.ID, map[string]interface{}{
		"ad_id":          payment.AdID.String(),
		"transaction_id": payment.TransactionID,
	})

	return payment, nil
}

// Approve verifies a pending payment and flips the linked ad to approved.
// Both writes happen in one repository transaction. A second approve on the
// same payment fails because the payment is no longer pending.
func (s *paymentService) Approve(ctx context.Context, adminID, paymentID uuid.UUID, note *string) (*domain.Payment, error) {
	payment, err := s.paymentRepo.Approve(ctx, paymentID, note)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, domain.AuditActionPaymentApproved, adminID, domain.AuditTargetPayment, paymentID, map[string]interface{}{
		"ad_id": payment.AdID.String(),
	})

	return payment, nil
}

// Reject declines a pending payment and flips the linked ad to rejected. The
// note is mandatory; rejection without a reason is invalid input.
func (s *paymentService) Reject(ctx context.Context, adminID, paymentID uuid.UUID, note string) (*domain.Payment, error) {
	if strings.TrimSpace(note) == "" {
		return nil, ErrAdminNoteRequired
	}

	payment, err := s.paymentRepo.Reject(ctx, paymentID, note)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, domain.AuditActionPaymentRejected, adminID, domain.AuditTargetPayment, paymentID, map[string]interface{}{
		"ad_id":  payment.AdID.String(),
		"reason": note,
	})

	return payment, nil
}

// ListPending exposes the admin verification queue.
func (s *paymentService) ListPending(ctx context.Context, limit, offset int) ([]*domain.Payment, int, error) {
	return s.paymentRepo.ListPending(ctx, normalizeLimit(limit, DefaultAdminListLimit), normalizeOffset(offset))
}

// Instructions returns the configured bank details.
func (s *paymentService) Instructions() PaymentInstructions {
	return s.instructions
}
