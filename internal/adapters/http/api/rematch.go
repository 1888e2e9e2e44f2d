// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/negade/gebeya/internal/domain/match"
)

// RematchHandler handles batch re-match requests.
type RematchHandler struct {
	deps Dependencies
}

// NewRematchHandler creates a new rematch handler.
func NewRematchHandler(deps Dependencies) *RematchHandler {
	return &RematchHandler{deps: deps}
}

// rematchResponse reports the sweep outcome.
type rematchResponse struct {
	Requests     int             `json:"requests"`
	MatchesFound int             `json:"matches_found"`
	Summaries    []match.Summary `json:"summaries"`
}

// HandleRematch handles POST /rematch. The sweep runs synchronously and
// the response carries one summary per active buy request.
func (h *RematchHandler) HandleRematch(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.deps.RematchAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	total := 0
	for _, s := range summaries {
		total += s.MatchesFound
	}
	writeJSON(w, http.StatusOK, rematchResponse{
		Requests:     len(summaries),
		MatchesFound: total,
		Summaries:    summaries,
	})
}
