package model

import (
	"time"

	"github.com/google/uuid"
)

// Cart is the per-user collection of pending purchase lines. A user has at
// most one cart; it is created lazily on first add and emptied, never deleted.
type Cart struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    string     `json:"userId" db:"user_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
}

// CartItem is one cart line. Book carries the resolved catalogue fields and is
// nil when the referenced book no longer exists in the catalogue.
type CartItem struct {
	BookID   uuid.UUID `json:"bookId" db:"book_id"`
	Quantity int       `json:"quantity" db:"quantity"`
	Book     *Book     `json:"book,omitempty"`
}

// CartItemRequest is the payload for adding or updating a cart line.
type CartItemRequest struct {
	BookID   uuid.UUID `json:"bookId"`
	Quantity int       `json:"quantity"`
}
