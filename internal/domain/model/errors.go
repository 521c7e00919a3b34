package model

import "errors"

// Sentinel errors for model parsing.
var (
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	ErrInvalidRegion     = errors.New("invalid region")
)
