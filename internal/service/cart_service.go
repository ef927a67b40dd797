package service

import (
	"context"
	"fmt"

	"bookmart/internal/model"
	"bookmart/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	cartRepo repository.CartRepository
	bookRepo repository.BookRepository
	logger   zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	bookRepo repository.BookRepository,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo: cartRepo,
		bookRepo: bookRepo,
		logger:   logger.With().Str("service", "cart").Logger(),
	}
}

// Get returns the user's resolved cart, or an empty virtual cart when none
// exists yet.
func (s *cartService) Get(ctx context.Context, userID string) (*model.Cart, error) {
	cart, err := s.cartRepo.GetResolved(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to get cart")
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	if cart == nil {
		return &model.Cart{UserID: userID, Items: []model.CartItem{}}, nil
	}

	return cart, nil
}

// AddItem merges quantity into the line for the book, creating the cart
// lazily.
func (s *cartService) AddItem(ctx context.Context, userID string, bookID uuid.UUID, quantity int) (*model.Cart, error) {
	if quantity < 1 {
		return nil, model.ErrInvalidQuantity
	}

	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		s.logger.Error().Err(err).Str("book_id", bookID.String()).Msg("failed to resolve book")
		return nil, fmt.Errorf("failed to resolve book: %w", err)
	}
	if book == nil {
		s.logger.Warn().Str("book_id", bookID.String()).Msg("add to cart for unknown book")
		return nil, model.ErrBookNotFound
	}

	err = s.withTx(ctx, func(tx pgx.Tx) error {
		cart, err := s.cartRepo.CreateForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		return s.cartRepo.AddItem(ctx, tx, cart.ID, bookID, quantity)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("book_id", bookID.String()).
		Int("quantity", quantity).
		Msg("item added to cart")

	return s.Get(ctx, userID)
}

// SetItemQuantity overwrites the quantity of an existing line.
func (s *cartService) SetItemQuantity(ctx context.Context, userID string, bookID uuid.UUID, quantity int) (*model.Cart, error) {
	if quantity < 1 {
		return nil, model.ErrInvalidQuantity
	}

	err := s.withTx(ctx, func(tx pgx.Tx) error {
		cart, err := s.cartRepo.GetForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if cart == nil {
			return model.ErrCartNotFound
		}
		return s.cartRepo.SetItemQuantity(ctx, tx, cart.ID, bookID, quantity)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("book_id", bookID.String()).
		Int("quantity", quantity).
		Msg("cart item quantity updated")

	return s.Get(ctx, userID)
}

// RemoveItem deletes the line for the book. An absent cart or line is a
// no-op, not an error.
func (s *cartService) RemoveItem(ctx context.Context, userID string, bookID uuid.UUID) (*model.Cart, error) {
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		cart, err := s.cartRepo.GetForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if cart == nil {
			return nil
		}
		return s.cartRepo.RemoveItem(ctx, tx, cart.ID, bookID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("book_id", bookID.String()).
		Msg("item removed from cart")

	return s.Get(ctx, userID)
}

// withTx runs fn inside a transaction, committing on success and rolling back
// on any error.
func (s *cartService) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.cartRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin cart transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.logger.Error().Err(rbErr).Msg("failed to rollback cart transaction")
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit cart transaction: %w", err)
	}

	return nil
}
