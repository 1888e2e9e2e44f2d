// Package config defines service configuration structures and loading.
//
// Conventions:
// - Defaults come from New; Load layers an optional YAML file and env vars
//   on top.
// - Scoring weights and the admission threshold live here because they are
//   policy, tunable without touching the matching algorithm.
package config

import (
	"runtime"

	"github.com/negade/gebeya/internal/domain/scoring"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Notifier backends.
const (
	NotifierLog   = "log"
	NotifierKafka = "kafka"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8090".
	Addr string `koanf:"addr"`

	// Store selects the storage backend: memory or sqlite.
	Store string `koanf:"store"`

	// SQLitePath locates the database file for the sqlite backend.
	SQLitePath string `koanf:"sqlite_path"`

	// Notifier selects the intent emitter: log or kafka.
	Notifier string `koanf:"notifier"`

	// KafkaBrokers and KafkaTopic configure the kafka emitter.
	KafkaBrokers []string `koanf:"kafka_brokers"`
	KafkaTopic   string   `koanf:"kafka_topic"`

	// QueueSize bounds the in-memory match job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of match workers.
	WorkerCount int `koanf:"worker_count"`

	// BatchParallelism bounds concurrent runs inside a batch re-match.
	BatchParallelism int `koanf:"batch_parallelism"`

	// MatchThreshold is the minimum score admitting a match.
	MatchThreshold int `koanf:"match_threshold"`

	// StoreTimeoutMS bounds each individual store call.
	StoreTimeoutMS int `koanf:"store_timeout_ms"`

	// Weights holds the scoring point budget.
	Weights scoring.Weights `koanf:"weights"`
}

// New returns the default configuration.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":8090",
		Store:            StoreMemory,
		SQLitePath:       "data/gebeya.db",
		Notifier:         NotifierLog,
		KafkaBrokers:     []string{"localhost:9092"},
		KafkaTopic:       "notifications.intents",
		QueueSize:        10_000,
		WorkerCount:      runtime.NumCPU() * 2,
		BatchParallelism: 4,
		MatchThreshold:   50,
		StoreTimeoutMS:   5000,
		Weights:          scoring.DefaultWeights(),
	}
}
