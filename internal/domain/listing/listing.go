package listing

import (
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/okian/payscout/internal/domain/model"
)

// Rated is any record carrying a textual rating.
type Rated interface {
	RatingText() string
}

// DefaultCashoutCeiling is used when no record has a positive cashout.
const DefaultCashoutCeiling = 100

// SortByRating returns a copy of items ordered by descending parsed rating.
// Equal ratings keep their input order.
func SortByRating[T Rated](items []T) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		ra, rb := ParseRating(a.RatingText()), ParseRating(b.RatingText())
		switch {
		case ra > rb:
			return -1
		case ra < rb:
			return 1
		}
		return 0
	})
	return out
}

// FilterPlatforms keeps the platforms matching every criterion, in order.
func FilterPlatforms(platforms []model.Platform, c model.FilterCriteria) []model.Platform {
	out := make([]model.Platform, 0, len(platforms))
	for _, p := range platforms {
		if matchesPlatform(p, c) {
			out = append(out, p)
		}
	}
	return out
}

func matchesPlatform(p model.Platform, c model.FilterCriteria) bool {
	if c.PaymentMethod != "" && c.PaymentMethod != model.AllOption && !slices.Contains(p.PaymentMethods, c.PaymentMethod) {
		return false
	}
	if !matchesRegion(p.Requirements, c.Region) {
		return false
	}
	return ParseCashout(p.MinCashout) <= c.MaxCashout && ParseRating(p.Rating) >= c.MinRating
}

// matchesRegion is a plain substring test on the requirements text, so
// "us-ca" also matches words like "must" or "local".
func matchesRegion(requirements string, r model.Region) bool {
	req := strings.ToLower(requirements)
	switch r {
	case "", model.RegionAll:
		return true
	case model.RegionGlobal:
		return strings.Contains(req, "global")
	case model.RegionUSCA:
		return strings.Contains(req, "us") || strings.Contains(req, "ca")
	}
	return false
}

// proofAliases maps a category keyword to the one label it also matches exactly.
var proofAliases = map[string]string{
	"passive":  "Passive Income",
	"survey":   "Survey/GPT",
	"research": "Research/Testing",
	"chat":     "Chat Moderation",
	"data":     "Data Annotation",
}

// ProofCategoryKeywords lists the category keywords offered to clients.
var ProofCategoryKeywords = []string{model.AllOption, "survey", "research", "passive", "micro-tasks", "chat", "data"}

// FilterProofs keeps the proofs matching every criterion, in order.
func FilterProofs(proofs []model.Proof, c model.ProofFilterCriteria) []model.Proof {
	search := strings.ToLower(c.Search)
	out := make([]model.Proof, 0, len(proofs))
	for _, p := range proofs {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		if !matchesProofCategory(p.Category, c.Category) {
			continue
		}
		if ParseRating(p.Rating) < c.MinRating {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesProofCategory(label, keyword string) bool {
	if keyword == "" || keyword == model.AllOption {
		return true
	}
	if strings.Contains(strings.ToLower(label), strings.ToLower(keyword)) {
		return true
	}
	alias, ok := proofAliases[keyword]
	return ok && label == alias
}

// CashoutCeiling is the rounded-up largest positive cashout among platforms,
// or DefaultCashoutCeiling when there is none.
func CashoutCeiling(platforms []model.Platform) float64 {
	highest := 0.0
	for _, p := range platforms {
		if v := ParseCashout(p.MinCashout); v > highest {
			highest = v
		}
	}
	if highest <= 0 {
		return DefaultCashoutCeiling
	}
	return math.Ceil(highest)
}

// PaymentMethodOptions returns "all" followed by the sorted distinct payment
// methods of platforms.
func PaymentMethodOptions(platforms []model.Platform) []string {
	seen := make(map[string]struct{})
	for _, p := range platforms {
		for _, m := range p.PaymentMethods {
			seen[m] = struct{}{}
		}
	}
	methods := make([]string, 0, len(seen))
	for m := range seen {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return append([]string{model.AllOption}, methods...)
}
