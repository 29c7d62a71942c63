package transport

import (
	"errors"
	"net/http"

	"adbazaar/internal/middleware"
	"adbazaar/internal/repository"
	"adbazaar/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryRequest represents the admin category write payload
type CategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Slug        string `json:"slug" validate:"required"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
	SortOrder   int    `json:"sort_order" validate:"gte=0"`
}

// CategoryHandler handles HTTP requests for category operations
type CategoryHandler struct {
	categoryService service.CategoryService
	logger          *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// RegisterRoutes registers public reads and admin-gated writes
func (h *CategoryHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})

	// The admin panel sees hidden categories too
	r.Route("/api/admin/categories", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)
		r.Get("/", h.ListAll)
	})
}

// List serves active categories to the public catalog
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.List(r.Context(), true)
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// ListAll includes inactive categories for the admin panel
func (h *CategoryHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.List(r.Context(), false)
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// Get serves a single category
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	category, err := h.categoryService.Get(r.Context(), id)
	if err != nil {
		h.respondCategoryError(w, err, "failed to get category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// Create handles admin category creation
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	adminID, ok := requesterID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.categoryService.Create(r.Context(), adminID, categoryInput(req))
	if err != nil {
		h.respondCategoryError(w, err, "failed to create category")
		return
	}

	h.logger.Info("Category created",
		zap.String("category_id", category.ID.String()),
		zap.String("slug", category.Slug),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

// Update handles admin category updates
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	adminID, ok := requesterID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	var req CategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.categoryService.Update(r.Context(), adminID, id, categoryInput(req))
	if err != nil {
		h.respondCategoryError(w, err, "failed to update category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// Delete handles admin category deletion
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	adminID, ok := requesterID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := h.categoryService.Delete(r.Context(), adminID, id); err != nil {
		h.respondCategoryError(w, err, "failed to delete category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}

func categoryInput(req CategoryRequest) service.CategoryInput {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return service.CategoryInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Active:      active,
		SortOrder:   req.SortOrder,
	}
}

// respondCategoryError maps category errors onto the HTTP taxonomy
func (h *CategoryHandler) respondCategoryError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrCategoryNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "category not found")
	case errors.Is(err, repository.ErrCategorySlugExists):
		middleware.RespondWithError(w, http.StatusConflict, "slug already exists")
	case errors.Is(err, service.ErrInvalidSlug):
		middleware.RespondWithError(w, http.StatusBadRequest, "slug must contain only lowercase letters, digits and hyphens")
	default:
		h.logger.Error(fallback, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}
