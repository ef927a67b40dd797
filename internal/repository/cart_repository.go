package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookmart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so resolved reads can
// run inside or outside a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *cartRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// GetForUpdate loads and locks the user's cart row inside tx.
func (r *cartRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*model.Cart, error) {
	query := `
		SELECT id, user_id, created_at, updated_at
		FROM carts
		WHERE user_id = $1
		FOR UPDATE
	`

	var cart model.Cart
	err := tx.QueryRow(ctx, query, userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to lock cart")
		return nil, fmt.Errorf("failed to lock cart: %w", err)
	}

	return &cart, nil
}

// CreateForUpdate creates the user's cart if absent, then locks it. The insert
// is conflict-tolerant so two first-add requests cannot both create a cart.
func (r *cartRepository) CreateForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*model.Cart, error) {
	insert := `
		INSERT INTO carts (id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (user_id) DO NOTHING
	`

	now := time.Now()
	if _, err := tx.Exec(ctx, insert, uuid.New(), userID, now); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to create cart")
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	cart, err := r.GetForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, fmt.Errorf("cart disappeared after create for user %s", userID)
	}

	return cart, nil
}

// ListItems returns the cart's lines in insertion order with catalogue fields
// resolved.
func (r *cartRepository) ListItems(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) ([]model.CartItem, error) {
	return r.listItems(ctx, tx, cartID)
}

func (r *cartRepository) listItems(ctx context.Context, q querier, cartID uuid.UUID) ([]model.CartItem, error) {
	query := `
		SELECT ci.book_id, ci.quantity,
		       b.id, b.name, b.price, b.cover_url, b.created_at
		FROM cart_items ci
		LEFT JOIN books b ON b.id = ci.book_id
		WHERE ci.cart_id = $1
		ORDER BY ci.position
	`

	rows, err := q.Query(ctx, query, cartID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	var items []model.CartItem
	for rows.Next() {
		var item model.CartItem
		var (
			bookID   *uuid.UUID
			name     *string
			price    *int64
			coverURL *string
			created  *time.Time
		)

		err := rows.Scan(&item.BookID, &item.Quantity, &bookID, &name, &price, &coverURL, &created)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart item row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}

		// A nil join result means the book has left the catalogue; the line
		// stays in the cart but is unusable for checkout.
		if bookID != nil {
			item.Book = &model.Book{
				ID:        *bookID,
				Name:      *name,
				Price:     *price,
				CoverURL:  *coverURL,
				CreatedAt: *created,
			}
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart item rows")
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// AddItem merges quantity into an existing line for the book or appends a new
// line. Quantities accumulate; the line is never duplicated.
func (r *cartRepository) AddItem(ctx context.Context, tx pgx.Tx, cartID, bookID uuid.UUID, quantity int) error {
	query := `
		INSERT INTO cart_items (id, cart_id, book_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cart_id, book_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	`

	if _, err := tx.Exec(ctx, query, uuid.New(), cartID, bookID, quantity); err != nil {
		r.logger.Error().
			Err(err).
			Str("cart_id", cartID.String()).
			Str("book_id", bookID.String()).
			Msg("failed to add cart item")
		return fmt.Errorf("failed to add cart item: %w", err)
	}

	return r.touch(ctx, tx, cartID)
}

// SetItemQuantity overwrites the quantity of an existing line.
func (r *cartRepository) SetItemQuantity(ctx context.Context, tx pgx.Tx, cartID, bookID uuid.UUID, quantity int) error {
	query := `
		UPDATE cart_items
		SET quantity = $3
		WHERE cart_id = $1 AND book_id = $2
	`

	tag, err := tx.Exec(ctx, query, cartID, bookID, quantity)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("cart_id", cartID.String()).
			Str("book_id", bookID.String()).
			Msg("failed to update cart item quantity")
		return fmt.Errorf("failed to update cart item quantity: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrCartItemNotFound
	}

	return r.touch(ctx, tx, cartID)
}

// RemoveItem deletes the line for the book if present.
func (r *cartRepository) RemoveItem(ctx context.Context, tx pgx.Tx, cartID, bookID uuid.UUID) error {
	query := `
		DELETE FROM cart_items
		WHERE cart_id = $1 AND book_id = $2
	`

	if _, err := tx.Exec(ctx, query, cartID, bookID); err != nil {
		r.logger.Error().
			Err(err).
			Str("cart_id", cartID.String()).
			Str("book_id", bookID.String()).
			Msg("failed to remove cart item")
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	return r.touch(ctx, tx, cartID)
}

// DeleteItems prunes the lines checked out into an order.
func (r *cartRepository) DeleteItems(ctx context.Context, tx pgx.Tx, cartID uuid.UUID, bookIDs []uuid.UUID) error {
	if len(bookIDs) == 0 {
		return nil
	}

	query := `
		DELETE FROM cart_items
		WHERE cart_id = $1 AND book_id = ANY($2)
	`

	if _, err := tx.Exec(ctx, query, cartID, bookIDs); err != nil {
		r.logger.Error().
			Err(err).
			Str("cart_id", cartID.String()).
			Int("count", len(bookIDs)).
			Msg("failed to prune cart items")
		return fmt.Errorf("failed to prune cart items: %w", err)
	}

	return r.touch(ctx, tx, cartID)
}

// GetResolved loads the user's cart with resolved lines outside any
// transaction.
func (r *cartRepository) GetResolved(ctx context.Context, userID string) (*model.Cart, error) {
	query := `
		SELECT id, user_id, created_at, updated_at
		FROM carts
		WHERE user_id = $1
	`

	var cart model.Cart
	err := r.pool.QueryRow(ctx, query, userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}

	items, err := r.listItems(ctx, r.pool, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items

	return &cart, nil
}

// touch bumps the cart's updated_at alongside any line mutation.
func (r *cartRepository) touch(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, cartID); err != nil {
		return fmt.Errorf("failed to touch cart: %w", err)
	}
	return nil
}
