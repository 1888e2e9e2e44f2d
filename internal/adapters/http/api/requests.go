// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/negade/gebeya/internal/adapters/repository"
	"github.com/negade/gebeya/internal/domain/model"
)

// triggerSourceAPI marks jobs queued through POST /requests/{id}/match.
const triggerSourceAPI = "api_trigger"

// RequestsHandler handles buy request creation and match triggering.
type RequestsHandler struct {
	deps Dependencies
}

// NewRequestsHandler creates a new requests handler.
func NewRequestsHandler(deps Dependencies) *RequestsHandler {
	return &RequestsHandler{deps: deps}
}

// createRequestPayload mirrors the wire schema for POST /requests.
type createRequestPayload struct {
	BuyerID     string  `json:"buyer_id" validate:"required"`
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category" validate:"required"`
	MinBudget   float64 `json:"min_budget" validate:"gte=0"`
	MaxBudget   float64 `json:"max_budget" validate:"gte=0"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
	Unit        string  `json:"unit"`
	Location    string  `json:"location"`
	Urgency     string  `json:"urgency"`
}

// HandleCreateRequest handles POST /requests.
func (h *RequestsHandler) HandleCreateRequest(w http.ResponseWriter, r *http.Request) {
	var payload createRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: invalid JSON body", ErrBadRequest))
		return
	}
	if err := validate.Struct(payload); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if !model.Category(payload.Category).Valid() {
		writeError(w, http.StatusBadRequest, "bad_request",
			fmt.Errorf("%w: unknown category %q", ErrBadRequest, payload.Category))
		return
	}

	created, err := h.deps.CreateBuyRequest(r.Context(), model.BuyRequest{
		BuyerID:     payload.BuyerID,
		Title:       payload.Title,
		Description: payload.Description,
		Category:    model.Category(payload.Category),
		MinBudget:   payload.MinBudget,
		MaxBudget:   payload.MaxBudget,
		Quantity:    payload.Quantity,
		Unit:        payload.Unit,
		Location:    payload.Location,
		Urgency:     model.Urgency(payload.Urgency),
	})
	if err != nil {
		if errors.Is(err, repository.ErrInvalidEntity) {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleTriggerMatch handles POST /requests/{id}/match. The run happens
// out of band; the response only acknowledges the trigger.
func (h *RequestsHandler) HandleTriggerMatch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	queued, duplicate := h.deps.TriggerMatch(r.Context(), id, triggerSourceAPI)
	switch {
	case duplicate:
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
	case !queued:
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
	default:
		writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
	}
}
