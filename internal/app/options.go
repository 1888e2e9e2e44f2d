package service

import (
	"time"

	"github.com/negade/gebeya/internal/adapters/notify"
	"github.com/negade/gebeya/internal/adapters/repository"
	"github.com/negade/gebeya/internal/domain/scoring"
	"github.com/negade/gebeya/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore injects the storage backend.
func WithStore(s repository.Store) Option {
	return func(svc *Service) {
		if s != nil {
			svc.store = s
		}
	}
}

// WithEmitter injects the notification intent emitter.
func WithEmitter(e notify.Emitter) Option {
	return func(svc *Service) {
		if e != nil {
			svc.emitter = e
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(svc *Service) {
		if l != nil {
			svc.logger = l
		}
	}
}

// WithWorkerCount sets the number of match workers.
func WithWorkerCount(n int) Option {
	return func(svc *Service) {
		if n > 0 {
			svc.workerCount = n
		}
	}
}

// WithQueueSize bounds the match job queue.
func WithQueueSize(n int) Option {
	return func(svc *Service) {
		if n > 0 {
			svc.queueSize = n
		}
	}
}

// WithBatchParallelism bounds concurrent runs inside a batch re-match.
func WithBatchParallelism(n int) Option {
	return func(svc *Service) {
		if n > 0 {
			svc.batchParallelism = n
		}
	}
}

// WithThreshold sets the minimum admissible match score.
func WithThreshold(t int) Option {
	return func(svc *Service) {
		if t > 0 {
			svc.threshold = t
		}
	}
}

// WithWeights sets the scoring point budget.
func WithWeights(w scoring.Weights) Option {
	return func(svc *Service) {
		svc.weights = w
	}
}

// WithStoreTimeout bounds each individual store call.
func WithStoreTimeout(d time.Duration) Option {
	return func(svc *Service) {
		if d > 0 {
			svc.storeTimeout = d
		}
	}
}
