package credit

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rancho/rancho-credits-api/internal/middleware"
	"github.com/rancho/rancho-credits-api/internal/pkg/pricing"
	"github.com/rancho/rancho-credits-api/internal/pkg/response"
	"github.com/rancho/rancho-credits-api/internal/pkg/validator"
)

// Handler handles credit HTTP requests
type Handler struct {
	service Service
	costs   *pricing.Table
}

// NewHandler creates credit handler
func NewHandler(service Service, costs *pricing.Table) *Handler {
	return &Handler{service: service, costs: costs}
}

// GetBalance handles GET /credits
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	account, err := h.service.GetSummary(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("get credit summary failed")
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{
		"credits":               account.Balance,
		"totalCreditsPurchased": account.TotalPurchased,
	})
}

// ListTransactions handles GET /credits/transactions
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
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

	transactions, err := h.service.ListTransactions(r.Context(), userID, limit, offset)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("list credit transactions failed")
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{"transactions": transactions})
}

// VerifyGenerationRequest is the POST /credits/verify body
type VerifyGenerationRequest struct {
	Type string `json:"type" validate:"required,oneof=video game"`
}

// VerifyGeneration handles POST /credits/verify. Inability to read the balance
// is reported as insufficient credits (fail closed); the underlying error is
// logged so outages remain visible server-side.
func (h *Handler) VerifyGeneration(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req VerifyGenerationRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validator.Struct(req); err != nil {
		response.ErrorWithDetails(w, http.StatusBadRequest, "BAD_REQUEST", "invalid generation type", validator.Details(err))
		return
	}

	requiredCredits, err := h.costs.CostOf(req.Type)
	if err != nil {
		response.BadRequest(w, "invalid generation type")
		return
	}

	hasCredits, err := h.service.HasSufficient(r.Context(), userID, requiredCredits)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("credit check failed, reporting insufficient")
		hasCredits = false
	}

	response.OK(w, map[string]interface{}{
		"hasEnoughCredits": hasCredits,
		"requiredCredits":  requiredCredits,
		"type":             req.Type,
	})
}
