package model

import (
	"fmt"
	"strings"
)

// Region narrows platforms by their requirements text.
type Region string

// Supported regions.
const (
	RegionAll    Region = "all"
	RegionGlobal Region = "global"
	RegionUSCA   Region = "us-ca"
)

// ParseRegion accepts all, global and us-ca (case-insensitive). Empty means all.
func ParseRegion(s string) (Region, error) {
	switch r := Region(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return RegionAll, nil
	case RegionAll, RegionGlobal, RegionUSCA:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRegion, s)
	}
}

// AllOption is the "no filtering" value for payment method and proof category.
const AllOption = "all"

// FilterCriteria selects platforms within one category.
type FilterCriteria struct {
	PaymentMethod string  `json:"payment_method"`
	Region        Region  `json:"region"`
	MaxCashout    float64 `json:"max_cashout"`
	MinRating     float64 `json:"min_rating"`
}

// ProofFilterCriteria selects payment-proof records.
type ProofFilterCriteria struct {
	Search    string  `json:"search"`
	Category  string  `json:"category"`
	MinRating float64 `json:"min_rating"`
}
