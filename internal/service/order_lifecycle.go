package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stockroom/internal/events"
	"stockroom/internal/model"

	"github.com/google/uuid"
)

// SetStatus moves an order to status if the lifecycle allows it. Setting the
// current status again returns the order unchanged. Cancelling restocks every
// item exactly once, since the write only succeeds against the status it read.
func (s *orderService) SetStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		s.logger.Warn().Str("order_id", id.String()).Str("status", string(status)).Msg("invalid status")
		return nil, model.ErrInvalidStatus
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if order.Status == status {
		return order, nil
	}

	from := order.Status
	if !model.CanTransition(from, status) {
		return nil, &model.InvalidTransitionError{From: from, To: status}
	}

	now := time.Now().UTC()
	updated, err := s.orderRepo.UpdateStatus(ctx, id, from, status, now)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", id.String()).
			Str("from", string(from)).
			Str("to", string(status)).
			Msg("failed to update order status")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if !updated {
		return s.resolveLostUpdate(ctx, id, status)
	}

	order.Status = status
	order.UpdatedAt = now

	if status == model.StatusCancelled {
		if err := s.restock(ctx, order); err != nil {
			return nil, err
		}
	}

	s.publish(ctx, events.TypeOrderStatusChanged, order.ID, events.OrderStatusChangedPayload{
		OrderID: order.ID.String(),
		From:    from,
		To:      status,
	})

	s.logger.Info().
		Str("order_id", id.String()).
		Str("from", string(from)).
		Str("to", string(status)).
		Msg("order status updated")

	return order, nil
}

// resolveLostUpdate handles a status write that matched no row because
// another caller changed the order first.
func (s *orderService) resolveLostUpdate(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	current, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to reload order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if current == nil {
		return nil, model.ErrOrderNotFound
	}

	s.logger.Debug().
		Str("order_id", id.String()).
		Str("current", string(current.Status)).
		Str("requested", string(status)).
		Msg("concurrent status change")

	if current.Status == status {
		return current, nil
	}
	return nil, &model.InvalidTransitionError{From: current.Status, To: status}
}

// restock releases every item of a cancelled order. Products deleted since
// the order was placed are skipped.
func (s *orderService) restock(ctx context.Context, order *model.Order) error {
	ctx = context.WithoutCancel(ctx)

	var errs []error
	for _, item := range order.Items {
		err := s.ledger.Release(ctx, item.ProductID, item.Quantity)
		switch {
		case err == nil:
		case errors.Is(err, model.ErrProductNotFound):
			s.logger.Warn().
				Str("order_id", order.ID.String()).
				Str("product_id", item.ProductID).
				Msg("product removed, skipping restock")
		default:
			s.logger.Error().
				Err(err).
				Str("event", "stock_compensation_failed").
				Bool("alert", true).
				Str("order_id", order.ID.String()).
				Str("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("failed to restock cancelled order")
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", model.ErrCompensationFailed, errors.Join(errs...))
	}
	return nil
}
