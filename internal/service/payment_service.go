package service

import (
	"context"
	"fmt"
	"math"

	"bookmart/internal/model"
	"bookmart/internal/payment"
	"bookmart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PaymentService defines the online payment handshake: creating a signed
// payment intent for an order and settling it from the gateway's async
// notification.
type PaymentService interface {
	// CreateIntent builds and sends a signed payment request for the order.
	// The order must belong to the requester.
	CreateIntent(ctx context.Context, requester model.Identity, orderID uuid.UUID, amount float64, extraData string) (*payment.CreateResult, error)

	// HandleIPN verifies the gateway's notification signature and settles the
	// order's payment status.
	HandleIPN(ctx context.Context, n *payment.IPNRequest) error
}

// paymentService implements PaymentService.
type paymentService struct {
	orderRepo repository.OrderRepository
	gateway   payment.Gateway
	logger    zerolog.Logger
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	orderRepo repository.OrderRepository,
	gateway payment.Gateway,
	logger zerolog.Logger,
) PaymentService {
	return &paymentService{
		orderRepo: orderRepo,
		gateway:   gateway,
		logger:    logger.With().Str("service", "payment").Logger(),
	}
}

// CreateIntent rounds the amount to integer currency units, moves the order
// into awaiting_payment and asks the gateway for a payable URL. The gateway
// call happening after the status write means a hung gateway never leaves the
// order in an unpayable state; the user simply retries.
func (s *paymentService) CreateIntent(ctx context.Context, requester model.Identity, orderID uuid.UUID, amount float64, extraData string) (*payment.CreateResult, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if order.UserID != requester.UserID {
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Str("requester", requester.UserID).
			Msg("payment intent for someone else's order")
		return nil, model.ErrForbidden
	}

	// No fractional units go to the gateway.
	rounded := int64(math.Round(amount))
	if rounded <= 0 {
		return nil, model.NewDomainError(model.ErrCodeInvalidInput, "Amount must be positive")
	}

	// Retrying payment against an order already awaiting it is allowed; any
	// other state transitions first.
	if order.Status != model.OrderStatusAwaitingPayment {
		if !order.Status.CanTransitionTo(model.OrderStatusAwaitingPayment) {
			return nil, model.ErrConflict
		}
		if err := s.orderRepo.UpdateStatus(ctx, orderID, order.Status, model.OrderStatusAwaitingPayment); err != nil {
			return nil, err
		}
	}

	result, err := s.gateway.CreatePayment(ctx, orderID.String(), rounded, extraData)
	if err != nil {
		// The order stays awaiting_payment so the user can retry.
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("payment intent failed")
		return nil, err
	}

	return result, nil
}

// HandleIPN settles an order from the gateway's notification. A result code
// of zero means the payment succeeded.
func (s *paymentService) HandleIPN(ctx context.Context, n *payment.IPNRequest) error {
	if !s.gateway.VerifyIPN(n) {
		s.logger.Warn().Str("order_id", n.OrderID).Msg("IPN signature mismatch")
		return model.ErrForbidden
	}

	orderID, err := uuid.Parse(n.OrderID)
	if err != nil {
		return model.NewDomainError(model.ErrCodeInvalidInput, "Notification carries a malformed order id")
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return model.ErrOrderNotFound
	}

	target := model.OrderStatusPaid
	if n.ResultCode != 0 {
		target = model.OrderStatusFailed
	}

	if !order.Status.CanTransitionTo(target) {
		s.logger.Warn().
			Str("order_id", n.OrderID).
			Str("from", string(order.Status)).
			Str("to", string(target)).
			Msg("IPN arrived for an order in a terminal state")
		return model.ErrConflict
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, order.Status, target); err != nil {
		return err
	}

	s.logger.Info().
		Str("order_id", n.OrderID).
		Int("result_code", n.ResultCode).
		Str("status", string(target)).
		Msg("order payment settled")

	return nil
}
