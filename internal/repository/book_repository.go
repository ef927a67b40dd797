package repository

import (
	"context"
	"errors"
	"fmt"

	"bookmart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// bookRepository implements the BookRepository interface using PostgreSQL.
type bookRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewBookRepository creates a new PostgreSQL-backed book repository.
func NewBookRepository(pool *pgxpool.Pool, logger zerolog.Logger) BookRepository {
	return &bookRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "book").Logger(),
	}
}

// GetAll retrieves all books with pagination support.
func (r *bookRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Book, error) {
	query := `
		SELECT id, name, price, cover_url, created_at
		FROM books
		ORDER BY name
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query books")
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	var books []model.Book
	for rows.Next() {
		var b model.Book
		err := rows.Scan(&b.ID, &b.Name, &b.Price, &b.CoverURL, &b.CreatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan book row")
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, b)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating book rows")
		return nil, fmt.Errorf("error iterating books: %w", err)
	}

	return books, nil
}

// GetByID retrieves a single book by its ID.
func (r *bookRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	query := `
		SELECT id, name, price, cover_url, created_at
		FROM books
		WHERE id = $1
	`

	var b model.Book
	err := r.pool.QueryRow(ctx, query, id).Scan(&b.ID, &b.Name, &b.Price, &b.CoverURL, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("book_id", id.String()).Msg("book not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("book_id", id.String()).Msg("failed to query book")
		return nil, fmt.Errorf("failed to query book: %w", err)
	}

	return &b, nil
}
