package repository

import (
	"context"
	"errors"
	"fmt"

	"stockroom/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// stockRepository implements StockRepository using conditional updates on the
// products table.
type stockRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewStockRepository creates a new PostgreSQL-backed stock repository.
func NewStockRepository(pool *pgxpool.Pool, logger zerolog.Logger) StockRepository {
	return &stockRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "stock").Logger(),
	}
}

// DecrementStock subtracts quantity if enough stock is on hand.
func (r *stockRepository) DecrementStock(ctx context.Context, id string, quantity int) (decimal.Decimal, error) {
	// The WHERE clause is the compare step; Postgres row locking makes the
	// check and the write a single atomic operation per product.
	query := `
		UPDATE products
		SET stock = stock - $2
		WHERE id = $1 AND stock >= $2
		RETURNING price
	`

	var price decimal.Decimal
	err := r.pool.QueryRow(ctx, query, id, quantity).Scan(&price)
	if err == nil {
		r.logger.Debug().
			Str("product_id", id).
			Int("quantity", quantity).
			Msg("stock decremented")
		return price, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to decrement stock")
		return decimal.Zero, fmt.Errorf("failed to decrement stock: %w", err)
	}

	var available int
	err = r.pool.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, id).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, &model.ProductNotFoundError{ProductID: id}
		}
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to read stock")
		return decimal.Zero, fmt.Errorf("failed to read stock: %w", err)
	}

	return decimal.Zero, &model.InsufficientStockError{
		ProductID: id,
		Available: available,
		Requested: quantity,
	}
}

// IncrementStock adds quantity to the product's stock.
func (r *stockRepository) IncrementStock(ctx context.Context, id string, quantity int) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET stock = stock + $2 WHERE id = $1`, id, quantity)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to increment stock")
		return fmt.Errorf("failed to increment stock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return &model.ProductNotFoundError{ProductID: id}
	}

	r.logger.Debug().
		Str("product_id", id).
		Int("quantity", quantity).
		Msg("stock incremented")

	return nil
}
