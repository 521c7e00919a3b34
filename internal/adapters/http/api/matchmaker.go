package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/okian/payscout/internal/domain/model"
)

const maxMatchBodyBytes = 64 << 10

// matchRequest mirrors the OpenAPI schema for POST /matchmaker.
// Blank prompts are reported by the matchmaker as invalid_input.
type matchRequest struct {
	Prompt    string `json:"prompt"`
	SessionID string `json:"session_id" validate:"omitempty,max=128,printascii"`
}

// MatchHandler handles matchmaker requests.
type MatchHandler struct {
	deps     MatchDependencies
	validate *validator.Validate
}

// NewMatchHandler creates a new matchmaker handler.
func NewMatchHandler(deps MatchDependencies) *MatchHandler {
	return &MatchHandler{deps: deps, validate: validator.New()}
}

// HandleMatch handles POST /matchmaker requests.
func (h *MatchHandler) HandleMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_matchmaker"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req matchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMatchBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeOpError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			err = fmt.Errorf("invalid %s", verrs[0].Field())
		}
		writeOpError(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	outcome := h.deps.Match(r.Context(), req.SessionID, req.Prompt)
	writeJSON(w, matchStatus(outcome.State), outcome)
}

// matchStatus maps an outcome state to its HTTP status.
func matchStatus(state model.MatchState) int {
	switch state {
	case model.MatchMatched, model.MatchNoMatch:
		return http.StatusOK
	case model.MatchInvalidInput:
		return http.StatusBadRequest
	case model.MatchStale:
		return http.StatusConflict
	case model.MatchBusy:
		return http.StatusTooManyRequests
	case model.MatchFailed:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
