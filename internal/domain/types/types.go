// Package types contains the read shapes returned by the application service.
package types

import "github.com/okian/payscout/internal/domain/model"

// CategorySummary is a category descriptor with its platform count.
type CategorySummary struct {
	model.Category
	PlatformCount int `json:"platform_count"`
}

// PlatformView is a platform with its parsed rating and cashout.
type PlatformView struct {
	model.Platform
	RatingValue  float64 `json:"rating_value"`
	CashoutValue float64 `json:"cashout_value"`
	Advisory     string  `json:"advisory,omitempty"`
}

// PlatformPage is one filtered category listing.
type PlatformPage struct {
	Category       model.Category       `json:"category"`
	Platforms      []PlatformView       `json:"platforms"`
	Total          int                  `json:"total"`
	Shown          int                  `json:"shown"`
	CashoutCeiling float64              `json:"cashout_ceiling"`
	PaymentMethods []string             `json:"payment_methods"`
	Criteria       model.FilterCriteria `json:"criteria"`
}

// ProofPage is one filtered payment-proof listing.
type ProofPage struct {
	Proofs     []model.Proof             `json:"proofs"`
	Total      int                       `json:"total"`
	Shown      int                       `json:"shown"`
	Categories []string                  `json:"categories"`
	Criteria   model.ProofFilterCriteria `json:"criteria"`
}

// PlatformQuery carries raw, optional filter values. Nil means "use the default".
type PlatformQuery struct {
	PaymentMethod string
	Region        string
	MaxCashout    *float64
	MinRating     *float64
}

// ProofQuery carries raw, optional proof filter values.
type ProofQuery struct {
	Search    string
	Category  string
	MinRating *float64
}
