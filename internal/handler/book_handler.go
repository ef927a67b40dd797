package handler

import (
	"net/http"
	"strconv"

	"bookmart/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BookHandler handles catalogue read requests.
type BookHandler struct {
	service service.BookService
	logger  zerolog.Logger
}

// NewBookHandler creates a new book handler.
func NewBookHandler(service service.BookService, logger zerolog.Logger) *BookHandler {
	return &BookHandler{
		service: service,
		logger:  logger.With().Str("handler", "book").Logger(),
	}
}

// GetAll handles GET /api/books requests with pagination.
func (h *BookHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")

	limit := 10 // default
	if limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit parameter", h.logger)
			return
		}
	}

	offset := 0 // default
	if offsetStr != "" {
		var err error
		offset, err = strconv.Atoi(offsetStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid offset parameter", h.logger)
			return
		}
	}

	books, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve books", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, books)
}

// GetByID handles GET /api/books/{id} requests.
func (h *BookHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid book ID format", h.logger)
		return
	}

	book, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "book not found", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, book)
}
