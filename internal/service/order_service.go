package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookmart/internal/model"
	"bookmart/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	cartRepo      repository.CartRepository
	orderRepo     repository.OrderRepository
	shippingPrice int64
	logger        zerolog.Logger
}

// NewOrderService creates a new order service. shippingPrice is the flat
// shipping fee in integer currency units.
func NewOrderService(
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
	shippingPrice int64,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		cartRepo:      cartRepo,
		orderRepo:     orderRepo,
		shippingPrice: shippingPrice,
		logger:        logger.With().Str("service", "order").Logger(),
	}
}

// Checkout reconciles the user's cart against the selected book ids, persists
// an immutable priced order and prunes exactly the checked-out lines. The
// whole sequence runs in one transaction holding a row lock on the cart, so a
// concurrent checkout for the same user cannot lose the prune. A transaction
// that loses a serialization race is retried once, then surfaces ErrConflict.
func (s *orderService) Checkout(ctx context.Context, userID string, req *model.CheckoutRequest) (*model.Order, error) {
	if err := validateCheckoutRequest(req); err != nil {
		return nil, err
	}

	order, err := s.checkoutOnce(ctx, userID, req)
	if err != nil && isRetryableTxError(err) {
		s.logger.Warn().Str("user_id", userID).Msg("checkout lost a serialization race, retrying once")
		order, err = s.checkoutOnce(ctx, userID, req)
		if err != nil && isRetryableTxError(err) {
			return nil, model.ErrConflict
		}
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", userID).
		Int("item_count", len(order.OrderItems)).
		Int64("total_price", order.TotalPrice).
		Msg("checkout completed")

	return order, nil
}

func (s *orderService) checkoutOnce(ctx context.Context, userID string, req *model.CheckoutRequest) (*model.Order, error) {
	tx, err := s.cartRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin checkout: %w", err)
	}

	// Roll back on any error path; Commit below makes this a no-op.
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.Error().Err(rbErr).Msg("failed to rollback checkout transaction")
			}
		}
	}()

	cart, err := s.cartRepo.GetForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		err = model.ErrEmptyCart
		return nil, err
	}

	lines, err := s.cartRepo.ListItems(ctx, tx, cart.ID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		err = model.ErrEmptyCart
		return nil, err
	}

	selected := make(map[uuid.UUID]bool, len(req.SelectedBookIDs))
	for _, id := range req.SelectedBookIDs {
		selected[id] = true
	}

	now := time.Now()
	order := &model.Order{
		ID:              uuid.New(),
		UserID:          userID,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ShippingPrice:   s.shippingPrice,
		Status:          model.OrderStatusCreated,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// Partition: snapshot the selected, resolvable lines in cart order. A
	// selected line whose book has left the catalogue or carries no price is
	// skipped and therefore retained in the cart.
	var prune []uuid.UUID
	for _, line := range lines {
		if !selected[line.BookID] {
			continue
		}
		if line.Book == nil || line.Book.Price <= 0 {
			s.logger.Warn().
				Str("cart_id", cart.ID.String()).
				Str("book_id", line.BookID.String()).
				Msg("skipping unresolvable selected line")
			continue
		}

		order.OrderItems = append(order.OrderItems, model.OrderItem{
			ID:       uuid.New(),
			OrderID:  order.ID,
			BookID:   line.BookID,
			Name:     line.Book.Name,
			CoverURL: line.Book.CoverURL,
			Price:    line.Book.Price,
			Quantity: line.Quantity,
			Position: len(order.OrderItems),
		})
		order.ItemsPrice += line.Book.Price * int64(line.Quantity)
		prune = append(prune, line.BookID)
	}

	if len(order.OrderItems) == 0 {
		err = model.ErrNoValidItems
		return nil, err
	}

	order.TotalPrice = order.ItemsPrice + order.ShippingPrice

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, err
	}
	if err = s.orderRepo.CreateOrderItems(ctx, tx, order.OrderItems); err != nil {
		return nil, err
	}

	// Prune exactly the lines that became order items; everything else,
	// including selected-but-unresolvable lines, stays in the cart.
	if err = s.cartRepo.DeleteItems(ctx, tx, cart.ID, prune); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit checkout: %w", err)
	}

	return order, nil
}

// GetByID retrieves an order, enforcing owner-or-admin visibility.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID, requester model.Identity) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if order.UserID != requester.UserID && !requester.Admin {
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("requester", requester.UserID).
			Msg("order access denied")
		return nil, model.ErrForbidden
	}

	return order, nil
}

// ListAll retrieves every order, newest first.
func (s *orderService) ListAll(ctx context.Context) ([]model.Order, error) {
	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus applies a lifecycle transition, rejecting moves the transition
// table does not allow.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, to model.OrderStatus) error {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return model.ErrOrderNotFound
	}

	if !order.Status.CanTransitionTo(to) {
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("from", string(order.Status)).
			Str("to", string(to)).
			Msg("invalid order status transition")
		return model.ErrConflict
	}

	return s.orderRepo.UpdateStatus(ctx, id, order.Status, to)
}

// validateCheckoutRequest rejects malformed checkout payloads before any
// read or write happens.
func validateCheckoutRequest(req *model.CheckoutRequest) error {
	if req == nil {
		return model.ErrInvalidInput
	}
	if strings.TrimSpace(req.ShippingAddress) == "" {
		return model.NewDomainError(model.ErrCodeInvalidInput, "Shipping address is required")
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		return model.NewDomainError(model.ErrCodeInvalidInput, "Payment method is required")
	}
	if len(req.SelectedBookIDs) == 0 {
		return model.NewDomainError(model.ErrCodeInvalidInput, "Select at least one item to check out")
	}
	return nil
}

// isRetryableTxError reports whether the transaction failed because of a
// serialization conflict or deadlock rather than a hard error.
func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
