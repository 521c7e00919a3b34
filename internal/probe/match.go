package probe

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/payscout/internal/domain/model"
)

const (
	minMatchScore      = 1
	maxMatchScore      = 10
	maxRecommendations = 4
)

type matchRequest struct {
	Prompt    string `json:"prompt"`
	SessionID string `json:"session_id,omitempty"`
}

// RunMatch sends one matchmaker request and checks the shape of the outcome.
func RunMatch(ctx context.Context, config *Config, prompt string) (*MatchReport, error) {
	start := time.Now()
	client := newHTTPClient(config.Timeout)

	report := &MatchReport{}
	status, err := client.PostJSON(ctx, config.BaseURL+"/matchmaker",
		matchRequest{Prompt: prompt, SessionID: config.Session}, &report.Outcome)
	if err != nil {
		return nil, err
	}
	report.Status = status
	report.Duration = time.Since(start)
	report.Violations = outcomeViolations(status, report.Outcome)
	return report, nil
}

var expectedStatus = map[model.MatchState]int{
	model.MatchMatched:      http.StatusOK,
	model.MatchNoMatch:      http.StatusOK,
	model.MatchInvalidInput: http.StatusBadRequest,
	model.MatchStale:        http.StatusConflict,
	model.MatchBusy:         http.StatusTooManyRequests,
	model.MatchFailed:       http.StatusBadGateway,
}

func outcomeViolations(status int, o model.MatchOutcome) []string {
	var out []string
	want, known := expectedStatus[o.State]
	switch {
	case !known:
		out = append(out, fmt.Sprintf("unknown state %q", o.State))
	case want != status:
		out = append(out, fmt.Sprintf("state %s returned status %d, want %d", o.State, status, want))
	}

	if o.State == model.MatchMatched && len(o.Recommendations) == 0 {
		out = append(out, "matched without recommendations")
	}
	if o.State != model.MatchMatched && len(o.Recommendations) > 0 {
		out = append(out, fmt.Sprintf("%s carries %d recommendations", o.State, len(o.Recommendations)))
	}
	if len(o.Recommendations) > maxRecommendations {
		out = append(out, fmt.Sprintf("%d recommendations, at most %d allowed", len(o.Recommendations), maxRecommendations))
	}

	seen := make(map[string]bool, len(o.Recommendations))
	for _, r := range o.Recommendations {
		if r.MatchScore < minMatchScore || r.MatchScore > maxMatchScore {
			out = append(out, fmt.Sprintf("%q scored %d", r.PlatformName, r.MatchScore))
		}
		if r.Platform.Name != r.PlatformName {
			out = append(out, fmt.Sprintf("%q resolved to %q", r.PlatformName, r.Platform.Name))
		}
		if seen[r.PlatformName] {
			out = append(out, fmt.Sprintf("%q recommended twice", r.PlatformName))
		}
		seen[r.PlatformName] = true
	}
	return out
}
