package service

import (
	"context"

	"stockroom/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductService defines read operations over the product catalogue.
type ProductService interface {
	// GetAll retrieves all products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// GetByCategory retrieves every product in a category.
	GetByCategory(ctx context.Context, category string) ([]model.Product, error)
}

// InventoryLedger is the single authority over product stock counts.
type InventoryLedger interface {
	// CheckAndReserve decrements stock by quantity if enough is on hand and
	// returns the product's current unit price.
	CheckAndReserve(ctx context.Context, productID string, quantity int) (decimal.Decimal, error)

	// Release adds quantity back to the product's stock.
	Release(ctx context.Context, productID string, quantity int) error
}

// OrderService defines operations for order management.
type OrderService interface {
	// CreateOrder reserves stock for every item and persists a Pending order,
	// or leaves stock untouched and returns the first rejection.
	CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.Order, error)

	// GetByID retrieves an order with the products it still references.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)

	// List retrieves every order in creation order.
	List(ctx context.Context) ([]model.Order, error)

	// SetStatus moves an order along its lifecycle.
	SetStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error)
}

// StatisticsService defines derived read-only views over orders.
type StatisticsService interface {
	// Summary aggregates all orders at call time.
	Summary(ctx context.Context) (*model.Summary, error)
}
