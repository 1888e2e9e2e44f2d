// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/negade/gebeya/internal/domain/match"
	"github.com/negade/gebeya/internal/domain/model"
	"github.com/negade/gebeya/pkg/metrics"
)

// validate checks request payloads against struct tags.
var validate = validator.New()

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// CreateBuyRequest persists a buy request and triggers matching.
	CreateBuyRequest(ctx context.Context, r model.BuyRequest) (model.BuyRequest, error)

	// CreateListing persists a listing.
	CreateListing(ctx context.Context, l model.Listing) (model.Listing, error)

	// TriggerMatch queues a matching run. duplicate means the trigger was
	// coalesced with a job already waiting; !queued && !duplicate means
	// backpressure.
	TriggerMatch(ctx context.Context, buyRequestID, triggeredBy string) (queued, duplicate bool)

	// RematchAll sweeps every active buy request synchronously.
	RematchAll(ctx context.Context) ([]match.Summary, error)

	// ListMatchesForActor returns matches where the actor is buyer or seller.
	ListMatchesForActor(ctx context.Context, actorID string) ([]model.Match, error)

	// RespondToMatch records the actor's accept or reject decision on a
	// match.
	RespondToMatch(ctx context.Context, matchID, actorID string, status model.MatchStatus) (model.Match, error)
}

// StatsProvider exposes engine statistics for monitoring.
type StatsProvider interface {
	Stats(ctx context.Context) map[string]interface{}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	requestsHandler *RequestsHandler
	listingsHandler *ListingsHandler
	matchesHandler  *MatchesHandler
	rematchHandler  *RematchHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		requestsHandler: NewRequestsHandler(deps),
		listingsHandler: NewListingsHandler(deps),
		matchesHandler:  NewMatchesHandler(deps),
		rematchHandler:  NewRematchHandler(deps),
	}
}

// Register attaches all HTTP routes to the router.
func (s *Server) Register(ctx context.Context, r *mux.Router) {
	r.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")).Methods(http.MethodGet)
	r.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats")).Methods(http.MethodGet)
	r.HandleFunc("/requests", MetricsMiddleware(s.requestsHandler.HandleCreateRequest, "requests")).Methods(http.MethodPost)
	r.HandleFunc("/requests/{id}/match", MetricsMiddleware(s.requestsHandler.HandleTriggerMatch, "trigger_match")).Methods(http.MethodPost)
	r.HandleFunc("/listings", MetricsMiddleware(s.listingsHandler.HandleCreateListing, "listings")).Methods(http.MethodPost)
	r.HandleFunc("/matches", MetricsMiddleware(s.matchesHandler.HandleListMatches, "matches")).Methods(http.MethodGet)
	r.HandleFunc("/matches/{id}", MetricsMiddleware(s.matchesHandler.HandleRespondToMatch, "respond_match")).Methods(http.MethodPatch)
	r.HandleFunc("/rematch", MetricsMiddleware(s.rematchHandler.HandleRematch, "rematch")).Methods(http.MethodPost)

	// Prometheus scrape endpoint, served from the custom registry.
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
