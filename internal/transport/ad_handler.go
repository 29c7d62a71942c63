package transport

import (
	"errors"
	"net/http"
	"strconv"

	"adbazaar/internal/domain"
	"adbazaar/internal/middleware"
	"adbazaar/internal/repository"
	"adbazaar/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateAdRequest represents the ad creation payload
type CreateAdRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	ImageURLs   []string `json:"image_urls" validate:"omitempty,dive,url"`
	VideoURL    *string  `json:"video_url" validate:"omitempty,url"`
	CategoryID  string   `json:"category_id" validate:"required,uuid"`
	Package     string   `json:"package" validate:"required,oneof=free standard premium"`
}

// UpdateAdRequest represents a partial ad edit payload
type UpdateAdRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=1"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	ImageURLs   []string `json:"image_urls" validate:"omitempty,dive,url"`
	VideoURL    *string  `json:"video_url" validate:"omitempty,url"`
	CategoryID  *string  `json:"category_id" validate:"omitempty,uuid"`
}

// RejectAdRequest represents the direct admin rejection payload
type RejectAdRequest struct {
	Reason string `json:"reason"`
}

// AdListResponse wraps a page of ads with the total match count
type AdListResponse struct {
	Ads   []*domain.Ad `json:"ads"`
	Total int          `json:"total"`
}

// AdHandler handles HTTP requests for ad operations
type AdHandler struct {
	adService service.AdService
	logger    *zap.Logger
}

// NewAdHandler creates a new AdHandler
func NewAdHandler(adService service.AdService, logger *zap.Logger) *AdHandler {
	return &AdHandler{
		adService: adService,
		logger:    logger,
	}
}

// RegisterRoutes registers public, owner and admin ad routes
func (h *AdHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/ads", func(r chi.Router) {
		// Public routes
		r.Get("/", h.ListPublic)
		r.Get("/{id}", h.GetPublic)

		// Owner routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})

	r.Route("/api/admin/ads", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)
		r.Get("/", h.ListAll)
		r.Post("/{id}/approve", h.Approve)
		r.Post("/{id}/reject", h.Reject)
	})
}

// Create handles ad creation
func (h *AdHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requesterID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateAdRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Ad creation validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	ad, err := h.adService.Create(r.Context(), actorID, service.CreateAdInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		ImageURLs:   req.ImageURLs,
		VideoURL:    req.VideoURL,
		CategoryID:  categoryID,
		Package:     domain.AdPackage(req.Package),
	})
	if err != nil {
		h.respondAdError(w, err, "failed to create ad")
		return
	}

	h.logger.Info("Ad created",
		zap.String("ad_id", ad.ID.String()),
		zap.String("status", string(ad.Status)),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, ad)
}

// ListPublic handles the public catalog listing. Only approved ads are returned.
func (h *AdHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	params, err := listParamsFromQuery(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	ads, total, err := h.adService.ListPublic(r.Context(), params)
	if err != nil {
		h.logger.Error("Failed to list ads", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list ads")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, AdListResponse{Ads: ads, Total: total})
}

// GetPublic handles a public single-ad read
func (h *AdHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	adID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid ad id")
		return
	}

	ad, err := h.adService.GetPublic(r.Context(), adID)
	if err != nil {
		h.respondAdError(w, err, "failed to get ad")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ad)
}

// Update handles an owner content edit
func (h *AdHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requesterID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	adID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid ad id")
		return
	}

	var req UpdateAdRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := service.UpdateAdInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		ImageURLs:   req.ImageURLs,
		VideoURL:    req.VideoURL,
	}
	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category id")
			return
		}
		input.CategoryID = &categoryID
	}

	ad, err := h.adService.Update(r.Context(), actorID, adID, input)
	if err != nil {
		h.respondAdError(w, err, "failed to update ad")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ad)
}

// Delete handles an owner delete
func (h *AdHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requesterID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	adID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid ad id")
		return
	}

	if err := h.adService.Delete(r.Context(), actorID, adID); err != nil {
		h.respondAdError(w, err, "failed to delete ad")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "ad deleted"})
}

// ListAll handles the admin listing across all statuses
func (h *AdHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	params, err := listParamsFromQuery(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if statusParam := r.URL.Query().Get("status"); statusParam != "" {
		status := domain.AdStatus(statusParam)
		if !status.Valid() {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid status filter")
			return
		}
		params.Status = &status
	}

	ads, total, err := h.adService.ListAll(r.Context(), params)
	if err != nil {
		h.logger.Error("Failed to list ads for admin", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list ads")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, AdListResponse{Ads: ads, Total: total})
}

// Approve handles the direct admin approval used for free-package ads
func (h *AdHandler) Approve(w http.ResponseWriter, r *http.Request) {
	adminID, ok := requesterID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	adID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid ad id")
		return
	}

	ad, err := h.adService.Approve(r.Context(), adminID, adID)
	if err != nil {
		h.respondAdError(w, err, "failed to approve ad")
		return
	}

	h.logger.Info("Ad approved", zap.String("ad_id", adID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, ad)
}

// Reject handles the direct admin rejection with an optional reason
func (h *AdHandler) Reject(w http.ResponseWriter, r *http.Request) {
	adminID, ok := requesterID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	adID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid ad id")
		return
	}

	var req RejectAdRequest
	// The body is optional; rejection without a reason is allowed here.
	if err := middleware.DecodeOptional(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var reason *string
	if req.Reason != "" {
		reason = &req.Reason
	}

	ad, err := h.adService.Reject(r.Context(), adminID, adID, reason)
	if err != nil {
		h.respondAdError(w, err, "failed to reject ad")
		return
	}

	h.logger.Info("Ad rejected", zap.String("ad_id", adID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, ad)
}

// respondAdError maps ad workflow errors onto the HTTP taxonomy
func (h *AdHandler) respondAdError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrAdNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "ad not found")
	case errors.Is(err, repository.ErrCategoryNotFound):
		middleware.RespondWithError(w, http.StatusBadRequest, "category not found")
	case errors.Is(err, repository.ErrUserNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrNotAdOwner):
		middleware.RespondWithError(w, http.StatusForbidden, "only the ad owner may perform this action")
	case errors.Is(err, service.ErrUserBlocked):
		middleware.RespondWithError(w, http.StatusForbidden, "user account is blocked")
	case errors.Is(err, service.ErrAdAlreadyDecided):
		middleware.RespondWithError(w, http.StatusBadRequest, "ad has already been decided")
	case errors.Is(err, service.ErrNegativePrice):
		middleware.RespondWithError(w, http.StatusBadRequest, "price must not be negative")
	default:
		h.logger.Error(fallback, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}

// requesterID extracts the authenticated user id set by the auth middleware
func requesterID(r *http.Request) (uuid.UUID, bool) {
	userIDStr, ok := middleware.GetUserID(r.Context())
	if !ok {
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}

// listParamsFromQuery parses the shared category/search/limit/offset params
func listParamsFromQuery(r *http.Request) (service.AdListParams, error) {
	params := service.AdListParams{
		Search: r.URL.Query().Get("search"),
	}

	if categoryParam := r.URL.Query().Get("category_id"); categoryParam != "" {
		categoryID, err := uuid.Parse(categoryParam)
		if err != nil {
			return params, errors.New("invalid category id")
		}
		params.CategoryID = &categoryID
	}

	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		limit, err := strconv.Atoi(limitParam)
		if err != nil {
			return params, errors.New("invalid limit")
		}
		params.Limit = limit
	}

	if offsetParam := r.URL.Query().Get("offset"); offsetParam != "" {
		offset, err := strconv.Atoi(offsetParam)
		if err != nil {
			return params, errors.New("invalid offset")
		}
		params.Offset = offset
	}

	return params, nil
}
