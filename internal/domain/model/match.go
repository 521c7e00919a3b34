package model

import (
	"context"
	"time"
)

// MatchState is the user-facing result of a matchmaker request.
type MatchState string

// Matchmaker states.
const (
	MatchMatched      MatchState = "matched"
	MatchNoMatch      MatchState = "no_match"
	MatchFailed       MatchState = "failed"
	MatchInvalidInput MatchState = "invalid_input"
	MatchStale        MatchState = "stale"
	MatchBusy         MatchState = "busy"
)

// MatchResult is a recommendation with its catalog record attached.
type MatchResult struct {
	Recommendation
	Platform Platform `json:"platform"`
}

// MatchOutcome is what a matchmaker request resolves to.
type MatchOutcome struct {
	State           MatchState    `json:"state"`
	Message         string        `json:"message,omitempty"`
	SessionID       string        `json:"session_id"`
	Seq             uint64        `json:"seq"`
	Recommendations []MatchResult `json:"recommendations"`
	Cached          bool          `json:"cached"`
}

// MatchJob carries one matchmaker request through the job queue.
// Reply must be buffered so a worker never blocks on an abandoned caller.
type MatchJob struct {
	ID         string
	SessionID  string
	Seq        uint64
	Prompt     string
	Ctx        context.Context //nolint:containedctx // cancellation travels with the job
	EnqueuedAt time.Time
	Reply      chan<- MatchOutcome
}
