// Package reason turns a score breakdown into a human-readable match
// explanation.
package reason

import (
	"strconv"
	"strings"

	"github.com/negade/gebeya/internal/domain/model"
	"github.com/negade/gebeya/internal/domain/scoring"
)

// Default score bands for the tier label.
const (
	defaultExcellentBand = 80
	defaultGoodBand      = 65
)

// Composer builds deterministic explanation strings for matches. Output is
// stable for identical inputs so callers can assert on it directly.
type Composer struct {
	excellentBand int
	goodBand      int
}

// Option applies a configuration option to the Composer.
type Option func(*Composer)

// WithBands overrides the score bands for the tier labels.
func WithBands(excellent, good int) Option {
	return func(c *Composer) {
		if excellent > good && good > 0 {
			c.excellentBand = excellent
			c.goodBand = good
		}
	}
}

// NewComposer creates a composer with the default tier bands.
func NewComposer(opts ...Option) *Composer {
	c := &Composer{
		excellentBand: defaultExcellentBand,
		goodBand:      defaultGoodBand,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose renders the reason for a scored candidate. Clauses appear in a
// fixed order: category relevance, budget fit (only when satisfied),
// quantity fit (only when satisfied), seller trust (only when verified).
func (c *Composer) Compose(req model.BuyRequest, listing model.Listing, res scoring.Result, weights scoring.Weights) string {
	clauses := []string{
		listing.Title + " matches your " + categoryLabel(req.Category) + " requirement",
	}

	if req.MaxBudget > 0 && res.BudgetSatisfied(weights) {
		clauses = append(clauses,
			"Price ("+formatAmount(listing.Price)+" "+listing.Currency+") is within your budget")
	}

	if req.Quantity > 0 && res.QuantitySatisfied(weights) {
		clauses = append(clauses,
			"Sufficient quantity available ("+strconv.Itoa(listing.Quantity)+" "+listing.Unit+")")
	}

	if listing.SellerVerified {
		clauses = append(clauses, "Verified seller")
	}

	joined := strings.Join(clauses, ". ") + "."
	switch {
	case res.Total >= c.excellentBand:
		return "Excellent match! " + joined
	case res.Total >= c.goodBand:
		return "Good match. " + joined
	default:
		return "Potential match. " + joined
	}
}

// categoryLabel renders a category enum as readable lower-case text,
// e.g. AGRICULTURAL_PRODUCTS -> "agricultural products".
func categoryLabel(c model.Category) string {
	return strings.ToLower(strings.ReplaceAll(string(c), "_", " "))
}

// formatAmount renders a price without trailing zeros.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
