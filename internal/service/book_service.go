package service

import (
	"context"
	"fmt"

	"bookmart/internal/model"
	"bookmart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// bookService implements BookService.
type bookService struct {
	bookRepo repository.BookRepository
	logger   zerolog.Logger
}

// NewBookService creates a new book service.
func NewBookService(bookRepo repository.BookRepository, logger zerolog.Logger) BookService {
	return &bookService{
		bookRepo: bookRepo,
		logger:   logger.With().Str("service", "book").Logger(),
	}
}

// GetAll retrieves all books with pagination.
func (s *bookService) GetAll(ctx context.Context, limit, offset int) ([]model.Book, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	books, err := s.bookRepo.GetAll(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to get all books")
		return nil, fmt.Errorf("failed to get books: %w", err)
	}

	return books, nil
}

// GetByID retrieves a single book by ID.
func (s *bookService) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("book_id", id.String()).Msg("failed to get book by ID")
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	if book == nil {
		s.logger.Debug().Str("book_id", id.String()).Msg("book not found")
		return nil, model.ErrBookNotFound
	}

	return book, nil
}
