package service

import (
	"context"
	"errors"
	"fmt"

	"stockroom/internal/model"
	"stockroom/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// inventoryLedger implements InventoryLedger.
type inventoryLedger struct {
	stockRepo repository.StockRepository
	logger    zerolog.Logger
}

// NewInventoryLedger creates a ledger over the given stock repository.
func NewInventoryLedger(stockRepo repository.StockRepository, logger zerolog.Logger) InventoryLedger {
	return &inventoryLedger{
		stockRepo: stockRepo,
		logger:    logger.With().Str("service", "inventory").Logger(),
	}
}

// CheckAndReserve decrements stock by quantity if enough is on hand.
func (l *inventoryLedger) CheckAndReserve(ctx context.Context, productID string, quantity int) (decimal.Decimal, error) {
	if productID == "" {
		return decimal.Zero, model.ErrMissingProductID
	}
	if quantity < 1 {
		return decimal.Zero, model.ErrInvalidQuantity
	}

	price, err := l.stockRepo.DecrementStock(ctx, productID, quantity)
	if err != nil {
		if isLedgerRejection(err) {
			l.logger.Debug().
				Err(err).
				Str("product_id", productID).
				Int("quantity", quantity).
				Msg("reservation rejected")
			return decimal.Zero, err
		}

		l.logger.Error().
			Err(err).
			Str("product_id", productID).
			Int("quantity", quantity).
			Msg("failed to reserve stock")
		return decimal.Zero, fmt.Errorf("failed to reserve stock: %w", err)
	}

	l.logger.Debug().
		Str("product_id", productID).
		Int("quantity", quantity).
		Str("unit_price", price.String()).
		Msg("stock reserved")

	return price, nil
}

// Release adds quantity back to the product's stock.
func (l *inventoryLedger) Release(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return model.ErrInvalidQuantity
	}

	if err := l.stockRepo.IncrementStock(ctx, productID, quantity); err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			return err
		}

		l.logger.Error().
			Err(err).
			Str("product_id", productID).
			Int("quantity", quantity).
			Msg("failed to release stock")
		return fmt.Errorf("failed to release stock: %w", err)
	}

	l.logger.Debug().
		Str("product_id", productID).
		Int("quantity", quantity).
		Msg("stock released")

	return nil
}

func isLedgerRejection(err error) bool {
	return errors.Is(err, model.ErrProductNotFound) || errors.Is(err, model.ErrInsufficientStock)
}
