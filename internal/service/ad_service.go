package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"adbazaar/internal/domain"
	"adbazaar/internal/repository"

	"github.com/google/uuid"
)

const (
	// DefaultPublicListLimit is applied when the public listing request gives no limit.
	DefaultPublicListLimit = 50
	// DefaultAdminListLimit is applied when the admin listing request gives no limit.
	DefaultAdminListLimit = 100
	// MaxListLimit caps any listing request.
	MaxListLimit = 100
)

var (
	ErrNotAdOwner = errors.New("only the ad owner may modify this ad")
	// ErrAdAlreadyDecided means the ad is in a terminal status and no further
	// admin decision is allowed.
	ErrAdAlreadyDecided = errors.New("ad has already been decided")
	ErrUserBlocked      = errors.New("user account is blocked")
	ErrNegativePrice    = errors.New("price must not be negative")
)

// CreateAdInput carries the seller-provided fields for a new ad.
type CreateAdInput struct {
	Title       string
	Description string
	Price       *float64
	ImageURLs   []string
	VideoURL    *string
	CategoryID  uuid.UUID
	Package     domain.AdPackage
}

// UpdateAdInput is a partial update of an ad's content fields. Nil fields are
// left unchanged; status is never touched by an edit.
type UpdateAdInput struct {
	Title       *string
	Description *string
	Price       *float64
	ImageURLs   []string
	VideoURL    *string
	CategoryID  *uuid.UUID
}

// AdListParams narrows listing queries.
type AdListParams struct {
	CategoryID *uuid.UUID
	Status     *domain.AdStatus
	Search     string
	Limit      int
	Offset     int
}

// AdService owns the ad status field and its legal transitions.
type AdService interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CreateAdInput) (*domain.Ad, error)
	Update(ctx context.Context, actorID, adID uuid.UUID, input UpdateAdInput) (*domain.Ad, error)
	Delete(ctx context.Context, actorID, adID uuid.UUID) error
	GetPublic(ctx context.Context, adID uuid.UUID) (*domain.Ad, error)
	ListPublic(ctx context.Context, params AdListParams) ([]*domain.Ad, int, error)
	ListAll(ctx context.Context, params AdListParams) ([]*domain.Ad, int, error)
	Approve(ctx context.Context, adminID, adID uuid.UUID) (*domain.Ad, error)
	Reject(ctx context.Context, adminID, adID uuid.UUID, reason *string) (*domain.Ad, error)
}

type adService struct {
	adRepo       repository.AdRepository
	categoryRepo repository.CategoryRepository
	userRepo     repository.UserRepository
	audit        *AuditRecorder
}

// NewAdService creates a new instance of AdService
func NewAdService(
	adRepo repository.AdRepository,
	categoryRepo repository.CategoryRepository,
	userRepo repository.UserRepository,
	audit *AuditRecorder,
) AdService {
	return &adService{
		adRepo:       adRepo,
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
		audit:        audit,
	}
}

// Create posts a new ad. Free-package ads go straight to the admin approval
// queue; paid-package ads wait for payment verification first.
func (s *adService) Create(ctx context.Context, ownerID uuid.UUID, input CreateAdInput) (*domain.Ad, error) {
	owner, err := s.userRepo.FindByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ad owner: %w", err)
	}
	if owner.Status == domain.UserStatusBlocked {
		return nil, ErrUserBlocked
	}

	if input.Price != nil && *input.Price < 0 {
		return nil, ErrNegativePrice
	}

	if _, err := s.categoryRepo.FindByID(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	now := time.Now()
	ad := &domain.Ad{
		ID:          uuid.New(),
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		ImageURLs:   input.ImageURLs,
		VideoURL:    input.VideoURL,
		CategoryID:  input.CategoryID,
		UserID:      ownerID,
		Package:     input.Package,
		Status:      input.Package.InitialStatus(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.adRepo.Create(ctx, ad); err != nil {
		return nil, fmt.Errorf("failed to create ad: %w", err)
	}

	s.audit.Record(ctx, domain.AuditActionAdCreated, ownerID, domain.AuditTargetAd, ad.ID, map[string]interface{}{
		"title":   ad.Title,
		"package": string(ad.Package),
		"status":  string(ad.Status),
	})

	return ad, nil
}

// Update applies a partial content edit on behalf of the owner. The status
// field is untouched by this operation.
func (s *adService) Update(ctx context.Context, actorID, adID uuid.UUID, input UpdateAdInput) (*domain.Ad, error) {
	ad, err := s.adRepo.FindByID(ctx, adID)
	if err != nil {
		return nil, err
	}
	if ad.UserID != actorID {
		return nil, ErrNotAdOwner
	}

	if input.Title != nil {
		ad.Title = *input.Title
	}
	if input.Description != nil {
		ad.Description = *input.Description
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, ErrNegativePrice
		}
		ad.Price = input.Price
	}
	if input.ImageURLs != nil {
		ad.ImageURLs = input.ImageURLs
	}
	if input.VideoURL != nil {
		ad.VideoURL = input.VideoURL
	}
	if input.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
		ad.CategoryID = *input.CategoryID
	}
	ad.UpdatedAt = time.Now()

	if err := s.adRepo.Update(ctx, ad); err != nil {
		return nil, fmt.Errorf("failed to update ad: %w", err)
	}

	s.audit.Record(ctx, domain.AuditActionAdUpdated, actorID, domain.AuditTargetAd, ad.ID, nil)

	return ad, nil
}

// Delete soft-deletes an ad on behalf of the owner.
func (s *adService) Delete(ctx context.Context, actorID, adID uuid.UUID) error {
	ad, err := s.adRepo.FindByID(ctx, adID)
	if err != nil {
		return err
	}
	if ad.UserID != actorID {
		return ErrNotAdOwner
	}

	if err := s.adRepo.SoftDelete(ctx, adID); err != nil {
		return fmt.Errorf("failed to delete ad: %w", err)
	}

	s.audit.Record(ctx, domain.AuditActionAdDeleted, actorID, domain.AuditTargetAd, adID, nil)

	return nil
}

// GetPublic retrieves a single ad for the public catalog. Non-approved ads
// read as not found.
func (s *adService) GetPublic(ctx context.Context, adID uuid.UUID) (*domain.Ad, error) {
	ad, err := s.adRepo.FindByID(ctx, adID)
	if err != nil {
		return nil, err
	}
	if ad.Status != domain.AdStatusApproved {
		return nil, repository.ErrAdNotFound
	}
	return ad, nil
}

// ListPublic lists approved ads only, newest first.
func (s *adService) ListPublic(ctx context.Context, params AdListParams) ([]*domain.Ad, int, error) {
	status := domain.AdStatusApproved
	filter := repository.AdFilter{
		CategoryID: params.CategoryID,
		Status:     &status,
		Search:     params.Search,
		Limit:      normalizeLimit(params.Limit, DefaultPublicListLimit),
		Offset:     normalizeOffset(params.Offset),
	}
	return s.adRepo.List(ctx, filter)
}

// ListAll lists ads in any status for the admin panel.
func (s *adService) ListAll(ctx context.Context, params AdListParams) ([]*domain.Ad, int, error) {
	filter := repository.AdFilter{
		CategoryID: params.CategoryID,
		Status:     params.Status,
		Search:     params.Search,
		Limit:      normalizeLimit(params.Limit, DefaultAdminListLimit),
		Offset:     normalizeOffset(params.Offset),
	}
	return s.adRepo.List(ctx, filter)
}

// Approve is the direct admin decision used for free-package ads.
func (s *adService) Approve(ctx context.Context, adminID, adID uuid.UUID) (*domain.Ad, error) {
	return s.decide(ctx, adminID, adID, domain.AdStatusApproved, nil)
}

// Reject is the direct admin decision; an optional reason is stored on the ad.
func (s *adService) Reject(ctx context.Context, adminID, adID uuid.UUID, reason *string) (*domain.Ad, error) {
	return s.decide(ctx, adminID, adID, domain.AdStatusRejected, reason)
}

func (s *adService) decide(ctx context.Context, adminID, adID uuid.UUID, status domain.AdStatus, reason *string) (*domain.Ad, error) {
	ad, err := s.adRepo.FindByID(ctx, adID)
	if err != nil {
		return nil, err
	}
	if ad.Status.Terminal() {
		return nil, ErrAdAlreadyDecided
	}

	if err := s.adRepo.UpdateStatus(ctx, adID, status, reason); err != nil {
		return nil, fmt.Errorf("failed to update ad status: %w", err)
	}
	ad.Status = status
	ad.RejectionReason = reason
	ad.UpdatedAt = time.Now()

	action := domain.AuditActionAdApproved
	details := map[string]interface{}{}
	if status == domain.AdStatusRejected {
		action = domain.AuditActionAdRejected
		if reason != nil {
			details["reason"] = *reason
		}
	}
	s.audit.Record(ctx, action, adminID, domain.AuditTargetAd, adID, details)

	return ad, nil
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
