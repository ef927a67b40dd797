package handler

import (
	"encoding/json"
	"net/http"

	"bookmart/internal/middleware"
	"bookmart/internal/payment"
	"bookmart/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PaymentHandler handles the online payment handshake.
type PaymentHandler struct {
	service service.PaymentService
	logger  zerolog.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(service service.PaymentService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		logger:  logger.With().Str("handler", "payment").Logger(),
	}
}

// createIntentRequest is the payload for POST /api/payment/momo.
type createIntentRequest struct {
	OrderID   uuid.UUID `json:"orderId"`
	Amount    float64   `json:"amount"`
	ExtraData string    `json:"extraData"`
}

// CreateIntent handles POST /api/payment/momo requests and returns the
// gateway's payable URLs.
func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity", h.logger)
		return
	}

	var req createIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}
	if req.OrderID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "orderId is required", h.logger)
		return
	}

	result, err := h.service.CreateIntent(r.Context(), identity, req.OrderID, req.Amount, req.ExtraData)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleIPN handles POST /api/payment/momo/ipn callbacks from the gateway.
// The gateway expects 204 on acceptance.
func (h *PaymentHandler) HandleIPN(w http.ResponseWriter, r *http.Request) {
	var n payment.IPNRequest
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification body", h.logger)
		return
	}

	if err := h.service.HandleIPN(r.Context(), &n); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
