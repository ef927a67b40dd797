package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"bookmart/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes a plain error response with the given status code and
// message.
func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: http.StatusText(status), Message: message})
}

// writeDomainError maps a business error to its HTTP status and writes a
// structured response. Unknown errors become opaque 500s.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		logger.Error().Err(err).Msg("unexpected handler error")
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
			Error:   model.ErrCodeInternalError,
			Message: "internal server error",
		})
		return
	}

	status := statusForCode(domainErr.Code)
	logger.Warn().
		Str("code", domainErr.Code).
		Int("status", status).
		Str("error", domainErr.Message).
		Msg("request rejected")

	writeJSON(w, status, model.ErrorResponse{
		Error:   domainErr.Code,
		Message: domainErr.Message,
		Details: domainErr.Details,
	})
}

// statusForCode maps domain error codes to HTTP statuses.
func statusForCode(code string) int {
	switch code {
	case model.ErrCodeInvalidInput, model.ErrCodeEmptyCart, model.ErrCodeNoValidItems:
		return http.StatusBadRequest
	case model.ErrCodeNotFound:
		return http.StatusNotFound
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeConflict:
		return http.StatusConflict
	case model.ErrCodeGatewayRejected, model.ErrCodeGatewayUnreachable:
		return http.StatusBadGateway
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
