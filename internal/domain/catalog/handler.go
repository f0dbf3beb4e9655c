package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/rancho/rancho-credits-api/internal/pkg/response"
)

// Handler handles package catalog HTTP requests
type Handler struct {
	repo *Repository
}

// NewHandler creates catalog handler
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// ListPackages handles GET /credits/packages. Public: the pricing page is
// visible before sign-in.
func (h *Handler) ListPackages(w http.ResponseWriter, r *http.Request) {
	packages, err := h.repo.ListActive(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list credit packages failed")
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{"packages": packages})
}

// Routes returns catalog router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListPackages)
	return r
}
