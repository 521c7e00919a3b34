package matchmaker

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/okian/payscout/internal/domain/model"
)

// Drop reasons reported to metrics.
const (
	DropUnknownPlatform = "unknown_platform"
	DropScoreRange      = "score_out_of_range"
	DropDuplicate       = "duplicate"
	DropOverLimit       = "over_limit"
)

type rawRecommendation struct {
	PlatformName *string `json:"platformName"`
	Reason       *string `json:"reason"`
	MatchScore   *int    `json:"matchScore"`
}

type rawResponse struct {
	Recommendations json.RawMessage `json:"recommendations"`
}

// DecodeResponse parses model output strictly. Unknown fields, wrong types,
// missing keys and trailing data are errors. A null or empty list decodes to
// an empty slice.
func DecodeResponse(text string) ([]model.Recommendation, error) {
	var resp rawResponse
	if err := strictUnmarshal([]byte(text), &resp); err != nil {
		return nil, err
	}
	if len(resp.Recommendations) == 0 {
		return nil, fmt.Errorf("%w: missing recommendations", ErrMalformedResponse)
	}
	if bytes.Equal(bytes.TrimSpace(resp.Recommendations), []byte("null")) {
		return []model.Recommendation{}, nil
	}

	var raw []rawRecommendation
	if err := strictUnmarshal(resp.Recommendations, &raw); err != nil {
		return nil, err
	}

	out := make([]model.Recommendation, 0, len(raw))
	for i, r := range raw {
		if r.PlatformName == nil || r.Reason == nil || r.MatchScore == nil {
			return nil, fmt.Errorf("%w: recommendation %d is missing a required field", ErrMalformedResponse, i)
		}
		out = append(out, model.Recommendation{
			PlatformName: *r.PlatformName,
			Reason:       *r.Reason,
			MatchScore:   *r.MatchScore,
		})
	}
	return out, nil
}

func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data", ErrMalformedResponse)
	}
	return nil
}

// Dropped describes a recommendation removed during reconciliation.
type Dropped struct {
	PlatformName string
	Reason       string
}

// Reconcile attaches catalog records by exact name. Unknown names, scores
// outside [MinScore, MaxScore] and repeats are dropped; at most
// MaxRecommendations survive, in model order.
func Reconcile(recs []model.Recommendation, byName map[string]model.Platform) ([]model.MatchResult, []Dropped) {
	var (
		kept    = make([]model.MatchResult, 0, len(recs))
		dropped []Dropped
		seen    = make(map[string]struct{}, len(recs))
	)
	for _, rec := range recs {
		platform, ok := byName[rec.PlatformName]
		switch {
		case !ok:
			dropped = append(dropped, Dropped{rec.PlatformName, DropUnknownPlatform})
			continue
		case rec.MatchScore < MinScore || rec.MatchScore > MaxScore:
			dropped = append(dropped, Dropped{rec.PlatformName, DropScoreRange})
			continue
		}
		if _, dup := seen[rec.PlatformName]; dup {
			dropped = append(dropped, Dropped{rec.PlatformName, DropDuplicate})
			continue
		}
		if len(kept) == MaxRecommendations {
			dropped = append(dropped, Dropped{rec.PlatformName, DropOverLimit})
			continue
		}
		seen[rec.PlatformName] = struct{}{}
		kept = append(kept, model.MatchResult{Recommendation: rec, Platform: platform})
	}
	return kept, dropped
}
