package probe

import (
	"time"

	"github.com/okian/payscout/internal/domain/model"
)

// Config holds configuration for a probe run.
type Config struct {
	BaseURL string        // Base URL of the service
	Workers int           // Number of concurrent category fetchers
	Timeout time.Duration // HTTP request timeout
	Session string        // Matchmaker session id, empty for a new one
	Verbose bool          // Log every category
}

// Report holds the outcome of a catalog check.
type Report struct {
	Categories int
	Platforms  int
	Violations []string
	StartTime  time.Time
	Duration   time.Duration
}

// OK reports whether no invariant was violated.
func (r *Report) OK() bool { return len(r.Violations) == 0 }

// MatchReport holds the outcome of one matchmaker request.
type MatchReport struct {
	Status     int
	Outcome    model.MatchOutcome
	Violations []string
	Duration   time.Duration
}
