// Package model contains domain models passed between layers.
package model

// Platform is one earning opportunity in the catalog.
// Text fields are shown verbatim; Rating and MinCashout are parsed on demand.
type Platform struct {
	Name           string   `yaml:"name" json:"name" validate:"required"`
	Description    string   `yaml:"description" json:"description" validate:"required"`
	PayRate        string   `yaml:"pay_rate" json:"pay_rate"`
	Requirements   string   `yaml:"requirements" json:"requirements"`
	PaymentMethods []string `yaml:"payment_methods" json:"payment_methods" validate:"dive,required"`
	Difficulty     string   `yaml:"difficulty" json:"difficulty" validate:"required,difficulty"`
	TimeCommitment string   `yaml:"time_commitment" json:"time_commitment"`
	Pros           []string `yaml:"pros" json:"pros"`
	Cons           []string `yaml:"cons" json:"cons"`
	Tips           string   `yaml:"tips" json:"tips"`
	URL            string   `yaml:"url" json:"url" validate:"required,url"`
	ReviewURL      string   `yaml:"review_url,omitempty" json:"review_url,omitempty" validate:"omitempty,url"`
	Rating         string   `yaml:"rating" json:"rating" validate:"required,rating"`
	MinCashout     string   `yaml:"min_cashout" json:"min_cashout" validate:"required"`
	Warning        string   `yaml:"warning,omitempty" json:"warning,omitempty"`
	Caution        string   `yaml:"caution,omitempty" json:"caution,omitempty"`
}

// RatingText returns the raw rating string.
func (p Platform) RatingText() string { return p.Rating }

// Advisory returns the warning, else the caution, else "".
func (p Platform) Advisory() string {
	if p.Warning != "" {
		return p.Warning
	}
	return p.Caution
}

// Category describes one catalog section.
type Category struct {
	ID    string `yaml:"id" json:"id" validate:"required"`
	Name  string `yaml:"name" json:"name" validate:"required"`
	Icon  string `yaml:"icon" json:"icon"`
	Color string `yaml:"color" json:"color"`
}

// Proof is a payment-proof entry for the proofs view.
// Category is a free-text label such as "Survey/GPT".
type Proof struct {
	Name        string `yaml:"name" json:"name" validate:"required"`
	Category    string `yaml:"category" json:"category" validate:"required"`
	ProofURL    string `yaml:"proof_url" json:"proof_url" validate:"required,url"`
	Description string `yaml:"description" json:"description"`
	ReviewURL   string `yaml:"review_url,omitempty" json:"review_url,omitempty" validate:"omitempty,url"`
	Rating      string `yaml:"rating" json:"rating" validate:"required,rating"`
	MinCashout  string `yaml:"min_cashout" json:"min_cashout" validate:"required"`
}

// RatingText returns the raw rating string.
func (p Proof) RatingText() string { return p.Rating }

// Recommendation is one validated matchmaker suggestion.
type Recommendation struct {
	PlatformName string `json:"platform_name"`
	Reason       string `json:"reason"`
	MatchScore   int    `json:"match_score"`
}
