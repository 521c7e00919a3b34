package api

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/payscout/internal/domain/types"
)

// CatalogHandler serves the catalog listings.
type CatalogHandler struct {
	deps CatalogDependencies
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps CatalogDependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

// HandleCategories handles GET /categories requests.
func (h *CatalogHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_categories"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	categories, err := h.deps.Categories(r.Context())
	if err != nil {
		writeOpError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// HandlePlatforms handles GET /categories/{id}/platforms requests.
func (h *CatalogHandler) HandlePlatforms(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_platforms"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	query := r.URL.Query()
	maxCashout, err := optionalFloat(query, "max_cashout")
	if err != nil {
		writeOpError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	minRating, err := optionalFloat(query, "min_rating")
	if err != nil {
		writeOpError(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	page, err := h.deps.PlatformPage(r.Context(), r.PathValue("id"), types.PlatformQuery{
		PaymentMethod: strings.TrimSpace(query.Get("payment_method")),
		Region:        query.Get("region"),
		MaxCashout:    maxCashout,
		MinRating:     minRating,
	})
	if err != nil {
		writeOpError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandleProofs handles GET /proofs requests.
func (h *CatalogHandler) HandleProofs(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_proofs"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	query := r.URL.Query()
	minRating, err := optionalFloat(query, "min_rating")
	if err != nil {
		writeOpError(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	page, err := h.deps.ProofPage(r.Context(), types.ProofQuery{
		Search:    strings.TrimSpace(query.Get("search")),
		Category:  strings.ToLower(strings.TrimSpace(query.Get("category"))),
		MinRating: minRating,
	})
	if err != nil {
		writeOpError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandlePlatform handles GET /platforms/{name} requests.
func (h *CatalogHandler) HandlePlatform(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_platform"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	name := r.PathValue("name")
	if name == "" {
		writeOpError(w, NewKind(op, ErrBadRequest))
		return
	}
	platform, err := h.deps.PlatformByName(r.Context(), name)
	if err != nil {
		writeOpError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, platform)
}

// optionalFloat returns nil when key is absent or blank.
func optionalFloat(query url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(query.Get(key))
	if raw == "" {
		return nil, nil //nolint:nilnil // absent is not an error
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("invalid %s %q", key, raw)
	}
	return &v, nil
}
