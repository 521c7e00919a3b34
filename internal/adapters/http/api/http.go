// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/payscout/internal/domain/model"
	"github.com/okian/payscout/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	CatalogDependencies
	MatchDependencies
}

// CatalogDependencies exposes the read side of the catalog.
type CatalogDependencies interface {
	Categories(ctx context.Context) ([]types.CategorySummary, error)
	PlatformPage(ctx context.Context, categoryID string, q types.PlatformQuery) (types.PlatformPage, error)
	ProofPage(ctx context.Context, q types.ProofQuery) (types.ProofPage, error)
	PlatformByName(ctx context.Context, name string) (types.PlatformView, error)
}

// MatchDependencies runs matchmaker requests.
type MatchDependencies interface {
	Match(ctx context.Context, sessionID, prompt string) model.MatchOutcome
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	catalogHandler *CatalogHandler
	matchHandler   *MatchHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		catalogHandler: NewCatalogHandler(deps),
		matchHandler:   NewMatchHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/categories", MetricsMiddleware(s.catalogHandler.HandleCategories, "categories"))
	mux.HandleFunc("/categories/{id}/platforms", MetricsMiddleware(s.catalogHandler.HandlePlatforms, "platforms"))
	mux.HandleFunc("/proofs", MetricsMiddleware(s.catalogHandler.HandleProofs, "proofs"))
	mux.HandleFunc("/platforms/{name}", MetricsMiddleware(s.catalogHandler.HandlePlatform, "platform"))
	mux.HandleFunc("/matchmaker", MetricsMiddleware(s.matchHandler.HandleMatch, "matchmaker"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeOpError derives status and code from the error kind.
func writeOpError(w http.ResponseWriter, err error) {
	status, code := statusOf(err)
	writeError(w, status, code, err)
}
