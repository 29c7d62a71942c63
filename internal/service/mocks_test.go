package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"adbazaar/internal/domain"
	"adbazaar/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// In-memory mock repositories for testing

type mockAdRepository struct {
	ads map[uuid.UUID]*domain.Ad
}

func newMockAdRepository() *mockAdRepository {
	return &mockAdRepository{ads: make(map[uuid.UUID]*domain.Ad)}
}

func (m *mockAdRepository) Create(ctx context.Context, ad *domain.Ad) error {
	copied := *ad
	m.ads[ad.ID] = &copied
	return nil
}

func (m *mockAdRepository) Update(ctx context.Context, ad *domain.Ad) error {
	existing, ok := m.ads[ad.ID]
	if !ok || existing.DeletedAt != nil {
		return repository.ErrAdNotFound
	}
	copied := *ad
	copied.Status = existing.Status
	m.ads[ad.ID] = &copied
	return nil
}

func (m *mockAdRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	ad, ok := m.ads[id]
	if !ok || ad.DeletedAt != nil {
		return repository.ErrAdNotFound
	}
	now := time.Now()
	ad.DeletedAt = &now
	return nil
}

func (m *mockAdRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Ad, error) {
	ad, ok := m.ads[id]
	if !ok || ad.DeletedAt != nil {
		return nil, repository.ErrAdNotFound
	}
	copied := *ad
	return &copied, nil
}

func (m *mockAdRepository) List(ctx context.Context, filter repository.AdFilter) ([]*domain.Ad, int, error) {
	matched := []*domain.Ad{}
	for _, ad := range m.ads {
		if ad.DeletedAt != nil {
			continue
		}
		if filter.Status != nil && ad.Status != *filter.Status {
			continue
		}
		if filter.CategoryID != nil && ad.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(ad.Title), needle) &&
				!strings.Contains(strings.ToLower(ad.Description), needle) {
				continue
			}
		}
		copied := *ad
		matched = append(matched, &copied)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if filter.Offset >= len(matched) {
		return []*domain.Ad{}, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (m *mockAdRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AdStatus, reason *string) error {
	ad, ok := m.ads[id]
	if !ok || ad.DeletedAt != nil {
		return repository.ErrAdNotFound
	}
	ad.Status = status
	ad.RejectionReason = reason
	ad.UpdatedAt = time.Now()
	return nil
}

type mockCategoryRepository struct {
	categories map[uuid.UUID]*domain.Category
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{categories: make(map[uuid.UUID]*domain.Category)}
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	for _, existing := range m.categories {
		if existing.Slug == category.Slug {
			return repository.ErrCategorySlugExists
		}
	}
	copied := *category
	m.categories[category.ID] = &copied
	return nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	if _, ok := m.categories[category.ID]; !ok {
		return repository.ErrCategoryNotFound
	}
	for id, existing := range m.categories {
		if id != category.ID && existing.Slug == category.Slug {
			return repository.ErrCategorySlugExists
		}
	}
	copied := *category
	m.categories[category.ID] = &copied
	return nil
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.categories[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	category, ok := m.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	copied := *category
	return &copied, nil
}

func (m *mockCategoryRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Category, error) {
	categories := []*domain.Category{}
	for _, category := range m.categories {
		if activeOnly && !category.Active {
			continue
		}
		copied := *category
		categories = append(categories, &copied)
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].SortOrder != categories[j].SortOrder {
			return categories[i].SortOrder < categories[j].SortOrder
		}
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

type mockUserRepository struct {
	users map[uuid.UUID]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[uuid.UUID]*domain.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return repository.ErrUserAlreadyExists
		}
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *mockUserRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, int, error) {
	users := []*domain.User{}
	for _, user := range m.users {
		copied := *user
		users = append(users, &copied)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	total := len(users)
	if offset >= len(users) {
		return []*domain.User{}, total, nil
	}
	users = users[offset:]
	if limit > 0 && limit < len(users) {
		users = users[:limit]
	}
	return users, total, nil
}

func (m *mockUserRepository) UpdateRoleStatus(ctx context.Context, id uuid.UUID, role domain.UserRole, status domain.UserStatus) error {
	user, ok := m.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.Role = role
	user.Status = status
	user.UpdatedAt = time.Now()
	return nil
}

func (m *mockUserRepository) add(role domain.UserRole, status domain.UserStatus) uuid.UUID {
	id := uuid.New()
	now := time.Now()
	m.users[id] = &domain.User{
		ID:        id,
		Name:      "Test User",
		Email:     id.String() + "@example.com",
		Role:      role,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return id
}

// mockPaymentRepository mirrors the production coupling: Approve and Reject
// flip the linked ad through the shared ad repository, as the SQL
// transaction does.
type mockPaymentRepository struct {
	payments map[uuid.UUID]*domain.Payment
	ads      *mockAdRepository
}

func newMockPaymentRepository(ads *mockAdRepository) *mockPaymentRepository {
	return &mockPaymentRepository{
		payments: make(map[uuid.UUID]*domain.Payment),
		ads:      ads,
	}
}

func (m *mockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	for _, existing := range m.payments {
		if existing.AdID == payment.AdID && existing.Status == domain.PaymentStatusPending {
			return repository.ErrDuplicatePendingPayment
		}
	}
	copied := *payment
	m.payments[payment.ID] = &copied
	return nil
}

func (m *mockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	payment, ok := m.payments[id]
	if !ok {
		return nil, repository.ErrPaymentNotFound
	}
	copied := *payment
	return &copied, nil
}

func (m *mockPaymentRepository) FindPendingByAdID(ctx context.Context, adID uuid.UUID) (*domain.Payment, error) {
	for _, payment := range m.payments {
		if payment.AdID == adID && payment.Status == domain.PaymentStatusPending {
			copied := *payment
			return &copied, nil
		}
	}
	return nil, repository.ErrPaymentNotFound
}

func (m *mockPaymentRepository) ListPending(ctx context.Context, limit, offset int) ([]*domain.Payment, int, error) {
	pending := []*domain.Payment{}
	for _, payment := range m.payments {
		if payment.Status == domain.PaymentStatusPending {
			copied := *payment
			pending = append(pending, &copied)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	total := len(pending)
	if offset >= len(pending) {
		return []*domain.Payment{}, total, nil
	}
	pending = pending[offset:]
	if limit > 0 && limit < len(pending) {
		pending = pending[:limit]
	}
	return pending, total, nil
}

func (m *mockPaymentRepository) Approve(ctx context.Context, id uuid.UUID, note *string) (*domain.Payment, error) {
	return m.decide(ctx, id, domain.PaymentStatusVerified, note, domain.AdStatusApproved)
}

func (m *mockPaymentRepository) Reject(ctx context.Context, id uuid.UUID, note string) (*domain.Payment, error) {
	return m.decide(ctx, id, domain.PaymentStatusRejected, &note, domain.AdStatusRejected)
}

func (m *mockPaymentRepository) decide(ctx context.Context, id uuid.UUID, paymentStatus domain.PaymentStatus, note *string, adStatus domain.AdStatus) (*domain.Payment, error) {
	payment, ok := m.payments[id]
	if !ok {
		return nil, repository.ErrPaymentNotFound
	}
	if payment.Status != domain.PaymentStatusPending {
		return nil, repository.ErrPaymentNotPending
	}

	payment.Status = paymentStatus
	payment.AdminNote = note
	if paymentStatus == domain.PaymentStatusVerified {
		now := time.Now()
		payment.VerifiedAt = &now
	}

	var reason *string
	if adStatus == domain.AdStatusRejected {
		reason = note
	}
	if err := m.ads.UpdateStatus(ctx, payment.AdID, adStatus, reason); err != nil {
		return nil, err
	}

	copied := *payment
	return &copied, nil
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{tokens: make(map[string]*domain.RefreshToken)}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	copied := *token
	m.tokens[token.Token] = &copied
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken, ok := m.tokens[token]
	if !ok {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	copied := *refreshToken
	return &copied, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	refreshToken, ok := m.tokens[token]
	if !ok {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

type mockAuditLogRepository struct {
	entries    []*domain.AuditLogEntry
	failInsert bool
}

func newMockAuditLogRepository() *mockAuditLogRepository {
	return &mockAuditLogRepository{}
}

func (m *mockAuditLogRepository) Insert(ctx context.Context, entry *domain.AuditLogEntry) error {
	if m.failInsert {
		return context.DeadlineExceeded
	}
	copied := *entry
	m.entries = append(m.entries, &copied)
	return nil
}

func (m *mockAuditLogRepository) List(ctx context.Context, limit, offset int) ([]*domain.AuditLogEntry, int, error) {
	total := len(m.entries)
	entries := make([]*domain.AuditLogEntry, 0, total)
	for i := len(m.entries) - 1; i >= 0; i-- {
		copied := *m.entries[i]
		entries = append(entries, &copied)
	}
	if offset >= len(entries) {
		return []*domain.AuditLogEntry{}, total, nil
	}
	entries = entries[offset:]
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, total, nil
}

func (m *mockAuditLogRepository) actions() []string {
	actions := make([]string, 0, len(m.entries))
	for _, entry := range m.entries {
		actions = append(actions, entry.Action)
	}
	return actions
}

func newTestAuditRecorder(repo repository.AuditLogRepository) *AuditRecorder {
	return NewAuditRecorder(repo, zap.NewNop())
}
