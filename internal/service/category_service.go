package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"adbazaar/internal/domain"
	"adbazaar/internal/repository"

	"github.com/google/uuid"
)

var (
	// ErrInvalidSlug means the slug is not URL-safe.
	ErrInvalidSlug = errors.New("slug must contain only lowercase letters, digits and hyphens")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// CategoryInput carries the admin-provided category fields.
type CategoryInput struct {
	Name        string
	Slug        string
	Description string
	Active      bool
	SortOrder   int
}

// CategoryService owns admin-managed category CRUD. Reads are public.
type CategoryService interface {
	Create(ctx context.Context, adminID uuid.UUID, input CategoryInput) (*domain.Category, error)
	Update(ctx context.Context, adminID, id uuid.UUID, input CategoryInput) (*domain.Category, error)
	Delete(ctx context.Context, adminID, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.Category, error)
}

type categoryService struct {
	repo  repository.CategoryRepository
	audit *AuditRecorder
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(repo repository.CategoryRepository, audit *AuditRecorder) CategoryService {
	return &categoryService{
		repo:  repo,
		audit: audit,
	}
}

// Create adds a category. The slug must be URL-safe and unique.
func (s *categoryService) Create(ctx context.Context, adminID uuid.UUID, input CategoryInput) (*domain.Category, error) {
	if !slugPattern.MatchString(input.Slug) {
		return nil, ErrInvalidSlug
	}

	category := &domain.Category{
		ID:          uuid.New(),
		Name:        input.Name,
		Slug:        input.Slug,
		Description: input.Description,
		Active:      input.Active,
		SortOrder:   input.SortOrder,
		CreatedAt:   time.Now(),
	}

	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, domain.AuditActionCategoryCreated, adminID, domain.AuditTargetCategory, category.ID, map[string]interface{}{
		"name": category.Name,
		"slug": category.Slug,
	})

	return category, nil
}

// Update rewrites a category.
func (s *categoryService) Update(ctx context.Context, adminID, id uuid.UUID, input CategoryInput) (*domain.Category, error) {
	if !slugPattern.MatchString(input.Slug) {
		return nil, ErrInvalidSlug
	}

	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	category.Name = input.Name
	category.Slug = input.Slug
	category.Description = input.Description
	category.Active = input.Active
	category.SortOrder = input.SortOrder

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, domain.AuditActionCategoryUpdated, adminID, domain.AuditTargetCategory, id, nil)

	return category, nil
}

// Delete removes a category.
func (s *categoryService) Delete(ctx context.Context, adminID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Record(ctx, domain.AuditActionCategoryDeleted, adminID, domain.AuditTargetCategory, id, nil)

	return nil
}

// Get retrieves a single category.
func (s *categoryService) Get(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return category, nil
}

// List retrieves categories, optionally only active ones.
func (s *categoryService) List(ctx context.Context, activeOnly bool) ([]*domain.Category, error) {
	categories, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}
