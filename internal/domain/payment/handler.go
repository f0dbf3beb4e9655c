package payment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rancho/rancho-credits-api/internal/domain/catalog"
	"github.com/rancho/rancho-credits-api/internal/middleware"
	"github.com/rancho/rancho-credits-api/internal/pkg/response"
)

// Handler handles payment HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates payment handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateOrderRequest is the POST /payments body
type CreateOrderRequest struct {
	PackageID string `json:"packageId"`
}

// CreateOrder handles POST /payments
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateOrderRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.PackageID == "" {
		response.BadRequest(w, "Package ID is required")
		return
	}
	packageID, err := uuid.Parse(req.PackageID)
	if err != nil {
		response.BadRequest(w, "Invalid or inactive package")
		return
	}

	result, err := h.service.InitiatePurchase(r.Context(), userID, packageID)
	if err != nil {
		if errors.Is(err, ErrInvalidPackage) {
			response.BadRequest(w, "Invalid or inactive package")
			return
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("payment order creation failed")
		response.InternalError(w)
		return
	}

	response.OK(w, result)
}

// VerifyRequest is the POST /payments/verify body. Field names match the
// Razorpay checkout callback payload.
type VerifyRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// Verify handles POST /payments/verify
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req VerifyRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" {
		response.BadRequest(w, "Missing payment details")
		return
	}

	result, err := h.service.VerifyPurchase(r.Context(), userID, req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature)
	if err != nil {
		switch {
		case errors.Is(err, ErrSignatureMismatch):
			response.BadRequest(w, "Invalid payment signature")
		case errors.Is(err, ErrAlreadyProcessed):
			response.BadRequest(w, "Payment already processed")
		case errors.Is(err, ErrTransactionNotFound):
			response.NotFound(w, "Payment transaction not found")
		case errors.Is(err, catalog.ErrPackageNotFound):
			response.NotFound(w, "Credit package not found")
		case errors.Is(err, ErrForbidden):
			response.Forbidden(w, "Unauthorized payment verification")
		case errors.Is(err, ErrVerifyInProgress):
			response.Conflict(w, "Payment verification already in progress")
		default:
			log.Error().Err(err).Str("order_id", req.RazorpayOrderID).Msg("payment verification failed")
			response.InternalError(w)
		}
		return
	}

	response.OK(w, map[string]interface{}{
		"success":      true,
		"creditsAdded": result.CreditsAdded,
		"newBalance":   result.NewBalance,
		"packageName":  result.PackageName,
	})
}

// GetHistory handles GET /payments
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	limit := 20
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}

	transactions, err := h.service.History(r.Context(), userID, limit, offset)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("payment history failed")
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{"payments": transactions})
}

// Routes returns payment router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.GetHistory)
		r.Post("/", h.CreateOrder)
		r.Post("/verify", h.Verify)
	})

	return r
}
