// Package scoring computes the compatibility score between a buy request
// and a listing under a fixed additive point budget.
package scoring

import (
	"math"

	"github.com/negade/gebeya/internal/domain/model"
	"github.com/negade/gebeya/internal/domain/textsim"
)

// maxScore caps the total after rounding.
const maxScore = 100

// Weights holds the point budget for each scoring term. The values are
// policy, not mechanism: they are loaded from configuration so they can be
// tuned without touching the scoring structure.
type Weights struct {
	CategoryMatch   int     `koanf:"category_match"`
	BudgetFull      int     `koanf:"budget_full"`
	BudgetPartial   int     `koanf:"budget_partial"`
	BudgetUnset     int     `koanf:"budget_unset"`
	BudgetTolerance float64 `koanf:"budget_tolerance"`
	QuantityFull    int     `koanf:"quantity_full"`
	QuantityPartial int     `koanf:"quantity_partial"`
	QuantityUnset   int     `koanf:"quantity_unset"`
	QuantityRatio   float64 `koanf:"quantity_ratio"`
	TextSimilarity  int     `koanf:"text_similarity"`
	VerifiedBonus   int     `koanf:"verified_bonus"`
	UrgencyBonus    int     `koanf:"urgency_bonus"`
}

// DefaultWeights returns the standard 40/20/15/15/5/5 point budget.
func DefaultWeights() Weights {
	return Weights{
		CategoryMatch:   40,
		BudgetFull:      20,
		BudgetPartial:   10,
		BudgetUnset:     15,
		BudgetTolerance: 1.2,
		QuantityFull:    15,
		QuantityPartial: 8,
		QuantityUnset:   10,
		QuantityRatio:   0.5,
		TextSimilarity:  15,
		VerifiedBonus:   5,
		UrgencyBonus:    5,
	}
}

// Breakdown retains each contributing term so the total is explainable.
// TextSimilarity carries its fractional contribution; rounding happens
// once, on the total.
type Breakdown struct {
	Category       int     `json:"category"`
	Budget         int     `json:"budget"`
	Quantity       int     `json:"quantity"`
	TextSimilarity float64 `json:"text_similarity"`
	Verified       int     `json:"verified"`
	Urgency        int     `json:"urgency"`
}

// Result is the outcome of scoring one (request, listing) candidate.
type Result struct {
	Total     int       `json:"total"`
	Breakdown Breakdown `json:"breakdown"`
}

// BudgetSatisfied reports whether the listing price cleared the declared
// budget outright (full credit, not the tolerance band).
func (r Result) BudgetSatisfied(w Weights) bool {
	return r.Breakdown.Budget == w.BudgetFull
}

// QuantitySatisfied reports whether the listing covered the full requested
// quantity.
func (r Result) QuantitySatisfied(w Weights) bool {
	return r.Breakdown.Quantity == w.QuantityFull
}

// Scorer computes compatibility scores. It is pure and total: it never
// fails, and malformed numeric inputs are taken at face value.
type Scorer struct {
	weights Weights
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeights replaces the point budget wholesale. Zero point values are
// honored, so any term can be disabled outright. Out-of-range values that
// would break the scoring arithmetic (negative points, a tolerance under
// 1, a ratio outside (0,1]) fall back to the defaults. Callers wanting to
// tune a single term start from DefaultWeights and modify it; the config
// loader layers overrides onto the defaults the same way.
func WithWeights(w Weights) Option {
	return func(s *Scorer) {
		d := DefaultWeights()
		if w.CategoryMatch < 0 {
			w.CategoryMatch = d.CategoryMatch
		}
		if w.BudgetFull < 0 {
			w.BudgetFull = d.BudgetFull
		}
		if w.BudgetPartial < 0 {
			w.BudgetPartial = d.BudgetPartial
		}
		if w.BudgetUnset < 0 {
			w.BudgetUnset = d.BudgetUnset
		}
		if w.BudgetTolerance < 1 {
			w.BudgetTolerance = d.BudgetTolerance
		}
		if w.QuantityFull < 0 {
			w.QuantityFull = d.QuantityFull
		}
		if w.QuantityPartial < 0 {
			w.QuantityPartial = d.QuantityPartial
		}
		if w.QuantityUnset < 0 {
			w.QuantityUnset = d.QuantityUnset
		}
		if w.QuantityRatio <= 0 || w.QuantityRatio > 1 {
			w.QuantityRatio = d.QuantityRatio
		}
		if w.TextSimilarity < 0 {
			w.TextSimilarity = d.TextSimilarity
		}
		if w.VerifiedBonus < 0 {
			w.VerifiedBonus = d.VerifiedBonus
		}
		if w.UrgencyBonus < 0 {
			w.UrgencyBonus = d.UrgencyBonus
		}
		s.weights = w
	}
}

// NewScorer creates a scorer with the default point budget unless
// overridden by options.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{weights: DefaultWeights()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weights returns the active point budget.
func (s *Scorer) Weights() Weights { return s.weights }

// Score computes the compatibility of listing against request.
// The caller is expected to present only same-category candidates; the
// category term is still recorded explicitly so the breakdown is
// self-describing.
func (s *Scorer) Score(req model.BuyRequest, listing model.Listing) Result {
	w := s.weights
	var b Breakdown

	b.Category = w.CategoryMatch

	// Budget fit. A declared budget grants full credit at or under the
	// limit and partial credit inside the tolerance band; absence of a
	// budget is a mild positive rather than neutral.
	switch {
	case req.MaxBudget <= 0:
		b.Budget = w.BudgetUnset
	case listing.Price <= req.MaxBudget:
		b.Budget = w.BudgetFull
	case listing.Price <= req.MaxBudget*w.BudgetTolerance:
		b.Budget = w.BudgetPartial
	}

	// Quantity fit, only when both sides declare one.
	switch {
	case req.Quantity <= 0 || listing.Quantity <= 0:
		b.Quantity = w.QuantityUnset
	case listing.Quantity >= req.Quantity:
		b.Quantity = w.QuantityFull
	case float64(listing.Quantity) >= float64(req.Quantity)*w.QuantityRatio:
		b.Quantity = w.QuantityPartial
	}

	sim := textsim.Similarity(
		req.Title+" "+req.Description,
		listing.Title+" "+listing.Description,
	)
	b.TextSimilarity = sim * float64(w.TextSimilarity)

	if listing.SellerVerified {
		b.Verified = w.VerifiedBonus
	}

	if req.Urgency == model.UrgencyUrgent && listing.Quantity > 0 {
		b.Urgency = w.UrgencyBonus
	}

	sum := float64(b.Category+b.Budget+b.Quantity+b.Verified+b.Urgency) + b.TextSimilarity
	total := int(math.Round(sum))
	if total > maxScore {
		total = maxScore
	}
	if total < 0 {
		total = 0
	}

	return Result{Total: total, Breakdown: b}
}
