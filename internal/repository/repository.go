package repository

import (
	"context"

	"bookmart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BookRepository defines read-only access to the catalogue. This service never
// mutates books.
type BookRepository interface {
	// GetAll retrieves all books with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Book, error)

	// GetByID retrieves a single book by its ID. Returns (nil, nil) when the
	// book does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
}

// CartRepository defines data access for the per-user cart. Mutations run
// inside a transaction holding a row lock on the cart, so concurrent checkout
// and cart edits for the same user serialize instead of losing updates.
type CartRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// GetForUpdate loads the user's cart row inside tx, locking it until the
	// transaction ends. Returns (nil, nil) when the user has no cart.
	GetForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*model.Cart, error)

	// CreateForUpdate creates an empty cart for the user (or locks the
	// existing one if a concurrent request won the race) and returns it.
	CreateForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*model.Cart, error)

	// ListItems returns the cart's lines in insertion order with catalogue
	// fields resolved; a line whose book no longer exists has a nil Book.
	ListItems(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) ([]model.CartItem, error)

	// AddItem merges quantity into an existing line for the book or appends a
	// new line.
	AddItem(ctx context.Context, tx pgx.Tx, cartID, bookID uuid.UUID, quantity int) error

	// SetItemQuantity overwrites the quantity of an existing line. Returns
	// model.ErrCartItemNotFound when the line does not exist.
	SetItemQuantity(ctx context.Context, tx pgx.Tx, cartID, bookID uuid.UUID, quantity int) error

	// RemoveItem deletes the line for the book if present. Removing an absent
	// line is not an error.
	RemoveItem(ctx context.Context, tx pgx.Tx, cartID, bookID uuid.UUID) error

	// DeleteItems removes the lines for the given books, pruning a cart after
	// checkout.
	DeleteItems(ctx context.Context, tx pgx.Tx, cartID uuid.UUID, bookIDs []uuid.UUID) error

	// GetResolved loads the user's cart with resolved lines outside any
	// transaction. Returns (nil, nil) when the user has no cart.
	GetResolved(ctx context.Context, userID string) (*model.Cart, error)
}

// OrderRepository defines data access for immutable priced orders.
type OrderRepository interface {
	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts the order's snapshot lines within the provided
	// transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items. Returns
	// (nil, nil) when no such order exists.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListAll retrieves all orders, newest first. Authorization is the
	// caller's responsibility.
	ListAll(ctx context.Context) ([]model.Order, error)

	// UpdateStatus transitions the order's status conditionally: the update
	// only applies while the stored status equals from. Returns
	// model.ErrConflict when the order has moved on concurrently.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) error
}
