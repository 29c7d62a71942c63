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

// SubmitPaymentRequest represents the payment submission payload
type SubmitPaymentRequest struct {
	AdID          string  `json:"ad_id" validate:"required,uuid"`
	SenderName    string  `json:"sender_name" validate:"required"`
	BankName      string  `json:"bank_name" validate:"required"`
	TransactionID string  `json:"transaction_id" validate:"required"`
	ScreenshotURL *string `json:"screenshot_url" validate:"omitempty,url"`
}

// ApprovePaymentRequest represents the admin approval payload
type ApprovePaymentRequest struct {
	Note string `json:"note"`
}

// RejectPaymentRequest represents the admin rejection payload. The note is
// mandatory: rejecting a payment without a reason is invalid input.
type RejectPaymentRequest struct {
	Note string `json:"note" validate:"required"`
}

// PaymentListResponse wraps a page of payments with the total count
type PaymentListResponse struct {
	Payments []*domain.Payment `json:"payments"`
	Total    int               `json:"total"`
}

// PaymentHandler handles HTTP requests for payment operations
type PaymentHandler struct {
	paymentService service.PaymentService
	logger         *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService service.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// RegisterRoutes registers seller and admin payment routes
func (h *PaymentHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/payments", func(r chi.Router) {
		r.Get("/instructions", h.Instructions)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/", h.Submit)
		})
	})

	r.Route("/api/admin/payments", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)
		r.Get("/pending", h.ListPending)
		r.Post("/{id}/approve", h.Approve)
		r.Post("/{id}/reject", h.Reject)
	})
}

// Instructions serves the static bank details read from configuration
func (h *PaymentHandler) Instructions(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.paymentService.Instructions())
}

// Submit handles a seller's payment submission for a paid-package ad
func (h *PaymentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SubmitPaymentRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Payment submission validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	adID, err := uuid.Parse(req.AdID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid ad id")
		return
	}

	payment, err := h.paymentService.Submit(r.Context(), userID, service.SubmitPaymentInput{
		AdID:          adID,
		SenderName:    req.SenderName,
		BankName:      req.BankName,
		TransactionID: req.TransactionID,
		ScreenshotURL: req.ScreenshotURL,
	})
	if err != nil {
		h.respondPaymentError(w, err, "failed to submit payment")
		return
	}

	h.logger.Info("Payment submitted",
		zap.String("payment_id", payment.ID.String()),
		zap.String("ad_id", payment.AdID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, payment)
}

// ListPending serves the admin verification queue
func (h *PaymentHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	payments, total, err := h.paymentService.ListPending(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("Failed to list pending payments", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list pending payments")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, PaymentListResponse{Payments: payments, Total: total})
}

// Approve handles an admin verifying a pending payment
func (h *PaymentHandler) Approve(w http.ResponseWriter, r *http.Request) {
	adminID, ok := requesterID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	paymentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	var req ApprovePaymentRequest
	// The note is optional on approval.
	if err := middleware.DecodeOptional(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var note *string
	if req.Note != "" {
		note = &req.Note
	}

	payment, err := h.paymentService.Approve(r.Context(), adminID, paymentID, note)
	if err != nil {
		h.respondPaymentError(w, err, "failed to approve payment")
		return
	}

	h.logger.Info("Payment approved",
		zap.String("payment_id", paymentID.String()),
		zap.String("ad_id", payment.AdID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusOK, payment)
}

// Reject handles an admin rejecting a pending payment with a mandatory note
func (h *PaymentHandler) Reject(w http.ResponseWriter, r *http.Request) {
	adminID, ok := requesterID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	paymentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	var req RejectPaymentRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payment, err := h.paymentService.Reject(r.Context(), adminID, paymentID, req.Note)
	if err != nil {
		h.respondPaymentError(w, err, "failed to reject payment")
		return
	}

	h.logger.Info("Payment rejected",
		zap.String("payment_id", paymentID.String()),
		zap.String("ad_id", payment.AdID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusOK, payment)
}

// respondPaymentError maps payment workflow errors onto the HTTP taxonomy
func (h *PaymentHandler) respondPaymentError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrAdNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "ad not found")
	case errors.Is(err, repository.ErrPaymentNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "payment not found")
	case errors.Is(err, repository.ErrUserNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrAdNotAwaitingPayment):
		middleware.RespondWithError(w, http.StatusBadRequest, "ad is not awaiting payment")
	case errors.Is(err, repository.ErrDuplicatePendingPayment):
		middleware.RespondWithError(w, http.StatusConflict, "payment already submitted for this ad")
	case errors.Is(err, repository.ErrPaymentNotPending):
		middleware.RespondWithError(w, http.StatusBadRequest, "payment is no longer pending")
	case errors.Is(err, service.ErrAdminNoteRequired):
		middleware.RespondWithError(w, http.StatusBadRequest, "admin note is required when rejecting a payment")
	case errors.Is(err, service.ErrUserBlocked):
		middleware.RespondWithError(w, http.StatusForbidden, "user account is blocked")
	default:
		h.logger.Error(fallback, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}
