package matchmaker

import "errors"

// Sentinel kinds for matchmaker failures.
var (
	ErrMalformedResponse = errors.New("malformed model response")
	ErrNoProvider        = errors.New("no llm provider configured")
	ErrRateLimited       = errors.New("outbound rate limit wait failed")
)
