package handler

import (
	"encoding/json"
	"net/http"

	"bookmart/internal/middleware"
	"bookmart/internal/model"
	"bookmart/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CartHandler handles cart-related HTTP requests.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart requests. A user with no cart yet receives an
// empty cart, not a 404.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity", h.logger)
		return
	}

	cart, err := h.service.Get(r.Context(), identity.UserID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// AddItem handles POST /api/cart requests. Quantities for an existing line
// accumulate.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity", h.logger)
		return
	}

	var req model.CartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}
	if req.BookID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "bookId is required", h.logger)
		return
	}

	cart, err := h.service.AddItem(r.Context(), identity.UserID, req.BookID, req.Quantity)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// UpdateItem handles PUT /api/cart requests. The quantity is overwritten, not
// accumulated.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity", h.logger)
		return
	}

	var req model.CartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}
	if req.BookID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "bookId is required", h.logger)
		return
	}

	cart, err := h.service.SetItemQuantity(r.Context(), identity.UserID, req.BookID, req.Quantity)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// RemoveItem handles DELETE /api/cart/{bookId} requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity", h.logger)
		return
	}

	bookID, err := uuid.Parse(chi.URLParam(r, "bookId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid book ID format", h.logger)
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), identity.UserID, bookID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}
