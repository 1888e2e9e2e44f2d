// Package notify hands notification intents to the external delivery
// collaborator. Emission is fire-and-forget: the engine never retries or
// confirms delivery.
package notify

import (
	"context"

	"github.com/negade/gebeya/internal/domain/model"
	"github.com/negade/gebeya/pkg/logger"
)

// Emitter delivers a notification intent to the external collaborator.
type Emitter interface {
	Emit(ctx context.Context, intent model.NotificationIntent) error
}

// LogEmitter writes intents to the structured log. It is the default
// backend for local runs and tests.
type LogEmitter struct {
	logger logger.Logger
}

// LogOption applies a configuration option to the LogEmitter.
type LogOption func(*LogEmitter)

// WithLogger sets a custom logger for the emitter.
func WithLogger(l logger.Logger) LogOption {
	return func(e *LogEmitter) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewLogEmitter creates an emitter that logs each intent.
func NewLogEmitter(opts ...LogOption) *LogEmitter {
	e := &LogEmitter{logger: logger.Get().Named("notify")}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Emit logs the intent.
func (e *LogEmitter) Emit(ctx context.Context, intent model.NotificationIntent) error {
	e.logger.Info(ctx, "notification intent",
		logger.String("recipient", intent.RecipientID),
		logger.String("type", intent.Type),
		logger.String("matchID", intent.Metadata.MatchID),
		logger.Int("score", intent.Metadata.Score),
	)
	return nil
}
