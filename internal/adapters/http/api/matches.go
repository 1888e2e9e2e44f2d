// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/negade/gebeya/internal/adapters/repository"
	"github.com/negade/gebeya/internal/domain/model"
)

// MatchesHandler handles match listing.
type MatchesHandler struct {
	deps Dependencies
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps Dependencies) *MatchesHandler {
	return &MatchesHandler{deps: deps}
}

// HandleListMatches handles GET /matches?actor_id= requests. The actor
// sees matches where they are buyer or seller, newest first.
func (h *MatchesHandler) HandleListMatches(w http.ResponseWriter, r *http.Request) {
	actorID := strings.TrimSpace(r.URL.Query().Get("actor_id"))
	if actorID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	matches, err := h.deps.ListMatchesForActor(r.Context(), actorID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

// matchActionPayload mirrors the wire schema for PATCH /matches/{id}.
type matchActionPayload struct {
	ActorID string `json:"actor_id" validate:"required"`
	Action  string `json:"action" validate:"required,oneof=accept reject"`
}

// HandleRespondToMatch handles PATCH /matches/{id}. Either party accepts
// or rejects a pending match; the decision is terminal.
func (h *MatchesHandler) HandleRespondToMatch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	var payload matchActionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: invalid JSON body", ErrBadRequest))
		return
	}
	if err := validate.Struct(payload); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	status := model.MatchAccepted
	if payload.Action == "reject" {
		status = model.MatchRejected
	}

	updated, err := h.deps.RespondToMatch(r.Context(), id, payload.ActorID, status)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", err)
		case errors.Is(err, repository.ErrNotParticipant):
			writeError(w, http.StatusForbidden, "forbidden", err)
		case errors.Is(err, repository.ErrMatchDecided):
			writeError(w, http.StatusConflict, "conflict", err)
		case errors.Is(err, repository.ErrInvalidEntity):
			writeError(w, http.StatusBadRequest, "bad_request", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
