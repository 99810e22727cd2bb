package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stockroom/internal/events"
	"stockroom/internal/idempotency"
	"stockroom/internal/model"
	"stockroom/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	ledger      InventoryLedger
	publisher   events.Publisher
	idemStore   idempotency.Store
	logger      zerolog.Logger
}

// reservation is one successful CheckAndReserve within a create attempt.
type reservation struct {
	productID string
	quantity  int
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	ledger InventoryLedger,
	publisher events.Publisher,
	idemStore idempotency.Store,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		ledger:      ledger,
		publisher:   publisher,
		idemStore:   idemStore,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// CreateOrder reserves every item in request order and persists a Pending
// order. Any failure releases what was already reserved before returning.
func (s *orderService) CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.Order, error) {
	if err := s.validateOrderRequest(req); err != nil {
		return nil, err
	}

	if req.IdempotencyKey != "" {
		existing, err := s.replay(ctx, req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	reserved := make([]reservation, 0, len(req.Items))
	items := make([]model.OrderItem, 0, len(req.Items))
	total := decimal.Zero

	for _, item := range req.Items {
		price, err := s.ledger.CheckAndReserve(ctx, item.ProductID, item.Quantity)
		if err != nil {
			if compErr := s.compensate(ctx, reserved); compErr != nil {
				return nil, compErr
			}

			s.logger.Warn().
				Err(err).
				Str("customer_name", req.CustomerName).
				Str("product_id", item.ProductID).
				Int("reserved_items", len(reserved)).
				Msg("order rejected")

			if isLedgerRejection(err) {
				s.publishRejected(ctx, req, err)
			}
			return nil, err
		}

		reserved = append(reserved, reservation{productID: item.ProductID, quantity: item.Quantity})
		line := model.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: price,
		}
		items = append(items, line)
		total = total.Add(line.Subtotal())
	}

	now := time.Now().UTC()
	order := &model.Order{
		ID:           uuid.New(),
		CustomerName: strings.TrimSpace(req.CustomerName),
		Items:        items,
		TotalAmount:  total,
		Status:       model.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to persist order")
		if compErr := s.compensate(ctx, reserved); compErr != nil {
			return nil, compErr
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if req.IdempotencyKey != "" {
		if err := s.idemStore.Put(ctx, req.IdempotencyKey, order.ID); err != nil {
			s.logger.Warn().
				Err(err).
				Str("order_id", order.ID.String()).
				Msg("failed to record idempotency key")
		}
	}

	s.publish(ctx, events.TypeOrderCreated, order.ID, events.OrderCreatedPayload{
		OrderID:      order.ID.String(),
		CustomerName: order.CustomerName,
		Items:        order.Items,
		TotalAmount:  order.TotalAmount,
	})

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Int("item_count", len(order.Items)).
		Str("total_amount", order.TotalAmount.String()).
		Msg("order created successfully")

	return order, nil
}

// replay returns the order a previous request with the same key produced.
// A failing idempotency store degrades to a normal create.
func (s *orderService) replay(ctx context.Context, key string) (*model.Order, error) {
	orderID, found, err := s.idemStore.Get(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Msg("idempotency lookup failed, creating order")
		return nil, nil
	}
	if !found {
		return nil, nil
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to load replayed order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		s.logger.Warn().Str("order_id", orderID.String()).Msg("idempotency key points to missing order")
		return nil, nil
	}

	s.logger.Info().Str("order_id", order.ID.String()).Msg("idempotent replay")
	return order, nil
}

// compensate releases reservations in reverse order. It ignores cancellation
// of ctx so stock is always restored before the caller regains control.
func (s *orderService) compensate(ctx context.Context, reserved []reservation) error {
	ctx = context.WithoutCancel(ctx)

	var errs []error
	for i := len(reserved) - 1; i >= 0; i-- {
		r := reserved[i]
		if err := s.ledger.Release(ctx, r.productID, r.quantity); err != nil {
			s.logger.Error().
				Err(err).
				Str("event", "stock_compensation_failed").
				Bool("alert", true).
				Str("product_id", r.productID).
				Int("quantity", r.quantity).
				Msg("failed to release reserved stock")
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", model.ErrCompensationFailed, errors.Join(errs...))
	}
	return nil
}

// GetByID retrieves an order with the products it still references.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	productIDs := make([]string, 0, len(order.Items))
	seen := make(map[string]struct{}, len(order.Items))
	for _, item := range order.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		productIDs = append(productIDs, item.ProductID)
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to retrieve product details")
		return nil, fmt.Errorf("failed to retrieve product details: %w", err)
	}

	return &model.OrderResponse{
		Order:    *order,
		Products: products,
	}, nil
}

// List retrieves every order in creation order.
func (s *orderService) List(ctx context.Context) ([]model.Order, error) {
	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	s.logger.Debug().Int("count", len(orders)).Msg("listed orders")
	return orders, nil
}

// validateOrderRequest validates the order request.
func (s *orderService) validateOrderRequest(req *model.OrderRequest) error {
	if req == nil || len(req.Items) == 0 {
		return model.ErrEmptyOrder
	}

	if strings.TrimSpace(req.CustomerName) == "" {
		return model.ErrMissingCustomerName
	}

	for i, item := range req.Items {
		if item.ProductID == "" {
			s.logger.Warn().Int("item_index", i).Msg("missing product ID")
			return model.ErrMissingProductID
		}

		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Str("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return model.ErrInvalidQuantity
		}
	}

	return nil
}

func (s *orderService) publishRejected(ctx context.Context, req *model.OrderRequest, cause error) {
	payload := events.OrderRejectedPayload{
		CustomerName: strings.TrimSpace(req.CustomerName),
		Reason:       model.ErrorCode(cause),
	}

	var notFound *model.ProductNotFoundError
	var shortfall *model.InsufficientStockError
	switch {
	case errors.As(cause, &shortfall):
		payload.ProductID = shortfall.ProductID
		payload.Available = &shortfall.Available
		payload.Requested = &shortfall.Requested
	case errors.As(cause, &notFound):
		payload.ProductID = notFound.ProductID
	}

	s.publish(ctx, events.TypeOrderRejected, uuid.Nil, payload)
}

// publish sends an event and logs failures. Delivery problems never fail an
// order operation.
func (s *orderService) publish(ctx context.Context, eventType string, orderID uuid.UUID, payload any) {
	correlationID := ""
	if orderID != uuid.Nil {
		correlationID = orderID.String()
	}

	ev, err := events.New(eventType, correlationID, payload)
	if err == nil {
		err = s.publisher.Publish(ctx, ev)
	}
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("event_type", eventType).
			Str("order_id", correlationID).
			Msg("failed to publish event")
	}
}
