package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/negade/gebeya/internal/adapters/http/api"
	"github.com/negade/gebeya/internal/adapters/notify"
	"github.com/negade/gebeya/internal/adapters/repository"
	sqlitestore "github.com/negade/gebeya/internal/adapters/repository/sqlite"
	app "github.com/negade/gebeya/internal/app"
	"github.com/negade/gebeya/internal/config"
	"github.com/negade/gebeya/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input).
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := buildStore(cfg)
	if err != nil {
		log.Error(ctx, "failed to open store", logger.Error(err))
		return
	}

	emitter := buildEmitter(cfg)

	svc := app.New(
		app.WithLogger(log.Named("service")),
		app.WithStore(store),
		app.WithEmitter(emitter),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithBatchParallelism(cfg.BatchParallelism),
		app.WithThreshold(cfg.MatchThreshold),
		app.WithWeights(cfg.Weights),
		app.WithStoreTimeout(time.Duration(cfg.StoreTimeoutMS)*time.Millisecond),
	)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	// HTTP router and routes.
	router := mux.NewRouter()
	apiServer := api.NewServer(svc, svc)
	apiServer.Register(ctx, router)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// buildStore selects the storage backend from configuration.
func buildStore(cfg *config.Config) (repository.Store, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		return sqlitestore.NewStore(cfg.SQLitePath)
	default:
		return repository.NewMemoryStore(), nil
	}
}

// buildEmitter selects the notification backend from configuration.
func buildEmitter(cfg *config.Config) notify.Emitter {
	switch cfg.Notifier {
	case config.NotifierKafka:
		return notify.NewKafkaEmitter(cfg.KafkaBrokers, notify.WithTopic(cfg.KafkaTopic))
	default:
		return notify.NewLogEmitter()
	}
}
