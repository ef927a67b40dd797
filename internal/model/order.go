package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus tracks an order through its payment and fulfilment lifecycle.
type OrderStatus string

const (
	OrderStatusCreated         OrderStatus = "created"
	OrderStatusAwaitingPayment OrderStatus = "awaiting_payment"
	OrderStatusPaid            OrderStatus = "paid"
	OrderStatusFailed          OrderStatus = "failed"
	OrderStatusFulfilled       OrderStatus = "fulfilled"
	OrderStatusCancelled       OrderStatus = "cancelled"
)

// orderTransitions is the set of permitted status transitions. Anything not
// listed is rejected. Fulfilled and cancelled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusCreated:         {OrderStatusAwaitingPayment, OrderStatusPaid, OrderStatusCancelled},
	OrderStatusAwaitingPayment: {OrderStatusPaid, OrderStatusFailed, OrderStatusCancelled},
	OrderStatusFailed:          {OrderStatusAwaitingPayment, OrderStatusCancelled},
	OrderStatusPaid:            {OrderStatusFulfilled},
}

// CanTransitionTo reports whether moving from s to next is a valid lifecycle
// transition.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is an immutable priced record of one completed checkout. Only the
// status field changes after creation.
type Order struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	UserID          string      `json:"userId" db:"user_id"`
	OrderItems      []OrderItem `json:"orderItems"`
	ShippingAddress string      `json:"shippingAddress" db:"shipping_address"`
	PaymentMethod   string      `json:"paymentMethod" db:"payment_method"`
	ItemsPrice      int64       `json:"itemsPrice" db:"items_price"`
	ShippingPrice   int64       `json:"shippingPrice" db:"shipping_price"`
	TotalPrice      int64       `json:"totalPrice" db:"total_price"`
	Status          OrderStatus `json:"status" db:"status"`
	CreatedAt       time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time   `json:"updatedAt" db:"updated_at"`
}

// OrderItem is a snapshot of a book's display and price fields captured at
// checkout time. Later catalogue changes never alter it.
type OrderItem struct {
	ID       uuid.UUID `json:"-" db:"id"`
	OrderID  uuid.UUID `json:"-" db:"order_id"`
	BookID   uuid.UUID `json:"bookId" db:"book_id"`
	Name     string    `json:"name" db:"name"`
	CoverURL string    `json:"coverUrl" db:"cover_url"`
	Price    int64     `json:"price" db:"price"`
	Quantity int       `json:"quantity" db:"quantity"`
	Position int       `json:"-" db:"position"`
}

// CheckoutRequest is the payload for creating an order from the cart.
type CheckoutRequest struct {
	ShippingAddress string      `json:"shippingAddress"`
	PaymentMethod   string      `json:"paymentMethod"`
	SelectedBookIDs []uuid.UUID `json:"selectedBookIds"`
}
