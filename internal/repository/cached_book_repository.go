package repository

import (
	"context"
	"encoding/json"
	"time"

	"bookmart/internal/cache"
	"bookmart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// cachedBookRepository wraps a BookRepository with a TTL-bounded read-through
// cache for single-book lookups. Cache failures degrade to the inner
// repository; they never fail the request.
type cachedBookRepository struct {
	inner  BookRepository
	cache  cache.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedBookRepository decorates repo with a catalogue read cache.
func NewCachedBookRepository(repo BookRepository, c cache.Cache, ttl time.Duration, logger zerolog.Logger) BookRepository {
	return &cachedBookRepository{
		inner:  repo,
		cache:  c,
		ttl:    ttl,
		logger: logger.With().Str("repository", "book-cached").Logger(),
	}
}

// GetAll always goes to the database; listings are paginated and cheap.
func (r *cachedBookRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Book, error) {
	return r.inner.GetAll(ctx, limit, offset)
}

// GetByID serves from the cache when possible and refreshes it on a miss.
func (r *cachedBookRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	key := r.cache.Key("book", id.String())

	cached, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.Warn().Err(err).Str("book_id", id.String()).Msg("cache read failed")
	} else if cached != "" {
		var b model.Book
		if err := json.Unmarshal([]byte(cached), &b); err == nil {
			return &b, nil
		}
		r.logger.Warn().Str("book_id", id.String()).Msg("discarding malformed cache entry")
	}

	book, err := r.inner.GetByID(ctx, id)
	if err != nil || book == nil {
		return book, err
	}

	if encoded, err := json.Marshal(book); err == nil {
		if err := r.cache.Set(ctx, key, string(encoded), r.ttl); err != nil {
			r.logger.Warn().Err(err).Str("book_id", id.String()).Msg("cache write failed")
		}
	}

	return book, nil
}
