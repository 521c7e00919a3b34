package repository

import "errors"

// Sentinel kinds for catalog errors.
var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrPlatformNotFound = errors.New("platform not found")
	ErrInvalidCatalog   = errors.New("invalid catalog")
)
