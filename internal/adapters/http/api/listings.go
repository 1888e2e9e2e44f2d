// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/negade/gebeya/internal/adapters/repository"
	"github.com/negade/gebeya/internal/domain/model"
)

// ListingsHandler handles listing creation.
type ListingsHandler struct {
	deps Dependencies
}

// NewListingsHandler creates a new listings handler.
func NewListingsHandler(deps Dependencies) *ListingsHandler {
	return &ListingsHandler{deps: deps}
}

// createListingPayload mirrors the wire schema for POST /listings.
type createListingPayload struct {
	SellerID       string  `json:"seller_id" validate:"required"`
	Title          string  `json:"title" validate:"required"`
	Description    string  `json:"description"`
	Category       string  `json:"category" validate:"required"`
	Price          float64 `json:"price" validate:"gte=0"`
	Currency       string  `json:"currency"`
	Quantity       int     `json:"quantity" validate:"gte=0"`
	Unit           string  `json:"unit"`
	SellerVerified bool    `json:"seller_verified"`
}

// HandleCreateListing handles POST /listings.
func (h *ListingsHandler) HandleCreateListing(w http.ResponseWriter, r *http.Request) {
	var payload createListingPayload
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

	created, err := h.deps.CreateListing(r.Context(), model.Listing{
		SellerID:       payload.SellerID,
		Title:          payload.Title,
		Description:    payload.Description,
		Category:       model.Category(payload.Category),
		Price:          payload.Price,
		Currency:       payload.Currency,
		Quantity:       payload.Quantity,
		Unit:           payload.Unit,
		SellerVerified: payload.SellerVerified,
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
