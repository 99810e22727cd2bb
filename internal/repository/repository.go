package repository

import (
	"context"
	"time"

	"stockroom/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves all products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. It returns nil, nil when
	// the product does not exist.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs. Unknown IDs are skipped.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// GetByCategory retrieves every product in the given category.
	GetByCategory(ctx context.Context, category string) ([]model.Product, error)

	// Upsert inserts products or overwrites existing ones by ID.
	Upsert(ctx context.Context, products []model.Product) error
}

// StockRepository is the persistence primitive behind the inventory ledger.
type StockRepository interface {
	// DecrementStock subtracts quantity from the product's stock only if at
	// least quantity is on hand, as a single conditional write, and returns the
	// product's unit price. It fails with *model.ProductNotFoundError or
	// *model.InsufficientStockError.
	DecrementStock(ctx context.Context, id string, quantity int) (decimal.Decimal, error)

	// IncrementStock adds quantity to the product's stock unconditionally.
	IncrementStock(ctx context.Context, id string, quantity int) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// Create inserts a new order.
	Create(ctx context.Context, order *model.Order) error

	// GetByID retrieves an order by its ID. It returns nil, nil when the order
	// does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// List retrieves every order in creation order.
	List(ctx context.Context) ([]model.Order, error)

	// UpdateStatus sets the status of an order only if it currently equals
	// from. It reports whether the row was updated.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus, updatedAt time.Time) (bool, error)
}
