package match

import (
	"time"

	"github.com/negade/gebeya/internal/domain/reason"
	"github.com/negade/gebeya/internal/domain/scoring"
	"github.com/negade/gebeya/pkg/logger"
)

// Option applies a configuration option to the Matcher.
type Option func(*Matcher)

// WithThreshold sets the minimum admission score.
func WithThreshold(threshold int) Option {
	return func(m *Matcher) {
		if threshold > 0 {
			m.threshold = threshold
		}
	}
}

// WithScorer sets a custom compatibility scorer.
func WithScorer(s *scoring.Scorer) Option {
	return func(m *Matcher) {
		if s != nil {
			m.scorer = s
		}
	}
}

// WithComposer sets a custom reason composer.
func WithComposer(c *reason.Composer) Option {
	return func(m *Matcher) {
		if c != nil {
			m.composer = c
		}
	}
}

// WithStoreTimeout bounds each individual store call.
func WithStoreTimeout(d time.Duration) Option {
	return func(m *Matcher) {
		if d > 0 {
			m.storeTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the matcher.
func WithLogger(l logger.Logger) Option {
	return func(m *Matcher) {
		if l != nil {
			m.logger = l
		}
	}
}
