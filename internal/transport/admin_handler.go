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

// UpdateUserRequest represents the admin role/status write payload
type UpdateUserRequest struct {
	Role   string `json:"role" validate:"required,oneof=user seller admin"`
	Status string `json:"status" validate:"required,oneof=approved pending blocked"`
}

// UserListResponse wraps a page of users with the total count
type UserListResponse struct {
	Users []*domain.User `json:"users"`
	Total int            `json:"total"`
}

// AuditLogListResponse wraps a page of audit entries with the total count
type AuditLogListResponse struct {
	Entries []*domain.AuditLogEntry `json:"entries"`
	Total   int                     `json:"total"`
}

// AdminHandler handles the admin read endpoints and user administration
type AdminHandler struct {
	userService  service.UserService
	statsService service.StatsService
	audit        *service.AuditRecorder
	logger       *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	userService service.UserService,
	statsService service.StatsService,
	audit *service.AuditRecorder,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		userService:  userService,
		statsService: statsService,
		audit:        audit,
		logger:       logger,
	}
}

// RegisterRoutes registers the admin-only routes
func (h *AdminHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)
		r.Get("/users", h.ListUsers)
		r.Put("/users/{id}", h.UpdateUser)
		r.Get("/audit-logs", h.ListAuditLogs)
		r.Get("/stats", h.Stats)
	})
}

// ListUsers serves the user roster to the admin panel
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	users, total, err := h.userService.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("Failed to list users", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, UserListResponse{Users: users, Total: total})
}

// UpdateUser sets a user's role and status
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	adminID, ok := requesterID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req UpdateUserRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.userService.UpdateRoleStatus(r.Context(), adminID, userID, domain.UserRole(req.Role), domain.UserStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, service.ErrInvalidRole), errors.Is(err, service.ErrInvalidUserStatus):
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("Failed to update user", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update user")
		}
		return
	}

	h.logger.Info("User updated by admin",
		zap.String("user_id", userID.String()),
		zap.String("role", req.Role),
		zap.String("status", req.Status),
	)
	middleware.RespondWithJSON(w, http.StatusOK, user)
}

// ListAuditLogs serves the audit trail, newest first
func (h *AdminHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 {
		limit = service.DefaultAdminListLimit
	}
	if offset < 0 {
		offset = 0
	}

	entries, total, err := h.audit.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("Failed to list audit logs", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list audit logs")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, AuditLogListResponse{Entries: entries, Total: total})
}

// Stats serves the dashboard aggregate
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsService.Dashboard(r.Context())
	if err != nil {
		h.logger.Error("Failed to compute dashboard stats", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, stats)
}
