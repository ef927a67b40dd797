package service

import (
	"context"

	"bookmart/internal/model"

	"github.com/google/uuid"
)

// BookService defines read-only catalogue operations.
type BookService interface {
	// GetAll retrieves all books with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Book, error)

	// GetByID retrieves a single book by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
}

// CartService defines operations on the per-user cart. Every mutation returns
// the cart with catalogue fields resolved, so callers never need a second
// read.
type CartService interface {
	// Get returns the user's resolved cart. A user with no cart yet gets an
	// empty virtual cart, not an error.
	Get(ctx context.Context, userID string) (*model.Cart, error)

	// AddItem merges quantity into the line for the book, creating the cart
	// and the line as needed.
	AddItem(ctx context.Context, userID string, bookID uuid.UUID, quantity int) (*model.Cart, error)

	// SetItemQuantity overwrites the quantity of an existing line.
	SetItemQuantity(ctx context.Context, userID string, bookID uuid.UUID, quantity int) (*model.Cart, error)

	// RemoveItem deletes the line for the book. Removing an absent line is a
	// no-op.
	RemoveItem(ctx context.Context, userID string, bookID uuid.UUID) (*model.Cart, error)
}

// OrderService defines checkout and order queries.
type OrderService interface {
	// Checkout turns the selected cart lines into an immutable priced order
	// and prunes exactly those lines from the cart.
	Checkout(ctx context.Context, userID string, req *model.CheckoutRequest) (*model.Order, error)

	// GetByID retrieves an order, enforcing that the requester is the owner
	// or an administrator.
	GetByID(ctx context.Context, id uuid.UUID, requester model.Identity) (*model.Order, error)

	// ListAll retrieves every order. Admin-only; enforced at the handler.
	ListAll(ctx context.Context) ([]model.Order, error)

	// UpdateStatus applies a lifecycle transition to an order's status.
	UpdateStatus(ctx context.Context, id uuid.UUID, to model.OrderStatus) error
}
