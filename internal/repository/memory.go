package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"stockroom/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// productRecord guards a single product so stock updates on different
// products never contend with each other.
type productRecord struct {
	mu      sync.Mutex
	product model.Product
}

// MemoryProductStore is an in-process ProductRepository and StockRepository.
// The map lock only protects membership; each record carries its own lock.
type MemoryProductStore struct {
	mu      sync.RWMutex
	records map[string]*productRecord
}

// NewMemoryProductStore creates an empty in-memory product store.
func NewMemoryProductStore() *MemoryProductStore {
	return &MemoryProductStore{
		records: make(map[string]*productRecord),
	}
}

func (s *MemoryProductStore) record(id string) *productRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[id]
}

func (s *MemoryProductStore) snapshot() []model.Product {
	s.mu.RLock()
	records := make([]*productRecord, 0, len(s.records))
	for _, rec := range s.records {
		records = append(records, rec)
	}
	s.mu.RUnlock()

	products := make([]model.Product, 0, len(records))
	for _, rec := range records {
		rec.mu.Lock()
		products = append(products, rec.product)
		rec.mu.Unlock()
	}

	sort.Slice(products, func(i, j int) bool {
		if products[i].Name != products[j].Name {
			return products[i].Name < products[j].Name
		}
		return products[i].ID < products[j].ID
	})

	return products
}

// GetAll retrieves all products ordered by name with pagination support.
func (s *MemoryProductStore) GetAll(_ context.Context, limit, offset int) ([]model.Product, error) {
	products := s.snapshot()
	if offset >= len(products) {
		return []model.Product{}, nil
	}
	end := offset + limit
	if end > len(products) {
		end = len(products)
	}
	return products[offset:end], nil
}

// GetByID retrieves a single product by its ID.
func (s *MemoryProductStore) GetByID(_ context.Context, id string) (*model.Product, error) {
	rec := s.record(id)
	if rec == nil {
		return nil, nil
	}
	rec.mu.Lock()
	p := rec.product
	rec.mu.Unlock()
	return &p, nil
}

// GetByIDs retrieves multiple products by their IDs.
func (s *MemoryProductStore) GetByIDs(_ context.Context, ids []string) ([]model.Product, error) {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	products := []model.Product{}
	for _, p := range s.snapshot() {
		if _, ok := wanted[p.ID]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

// GetByCategory retrieves every product in the given category.
func (s *MemoryProductStore) GetByCategory(_ context.Context, category string) ([]model.Product, error) {
	products := []model.Product{}
	for _, p := range s.snapshot() {
		if p.Category == category {
			products = append(products, p)
		}
	}
	return products, nil
}

// Upsert inserts products or overwrites existing ones by ID.
func (s *MemoryProductStore) Upsert(_ context.Context, products []model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range products {
		if rec, ok := s.records[p.ID]; ok {
			rec.mu.Lock()
			p.CreatedAt = rec.product.CreatedAt
			rec.product = p
			rec.mu.Unlock()
			continue
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now()
		}
		s.records[p.ID] = &productRecord{product: p}
	}
	return nil
}

// Delete removes a product. Existing orders keep their own item snapshots.
func (s *MemoryProductStore) Delete(_ context.Context, id string) {
	s.mu.Lock()
	delete(s.records, id)
	s.mu.Unlock()
}

// DecrementStock subtracts quantity under the product's lock.
func (s *MemoryProductStore) DecrementStock(_ context.Context, id string, quantity int) (decimal.Decimal, error) {
	rec := s.record(id)
	if rec == nil {
		return decimal.Zero, &model.ProductNotFoundError{ProductID: id}
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if quantity > rec.product.Stock {
		return decimal.Zero, &model.InsufficientStockError{
			ProductID: id,
			Available: rec.product.Stock,
			Requested: quantity,
		}
	}
	rec.product.Stock -= quantity
	return rec.product.Price, nil
}

// IncrementStock adds quantity under the product's lock.
func (s *MemoryProductStore) IncrementStock(_ context.Context, id string, quantity int) error {
	rec := s.record(id)
	if rec == nil {
		return &model.ProductNotFoundError{ProductID: id}
	}

	rec.mu.Lock()
	rec.product.Stock += quantity
	rec.mu.Unlock()
	return nil
}

// MemoryOrderStore is an in-process OrderRepository.
type MemoryOrderStore struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*model.Order
	seq    []uuid.UUID
}

// NewMemoryOrderStore creates an empty in-memory order store.
func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{
		orders: make(map[uuid.UUID]*model.Order),
	}
}

// Create inserts a copy of the order.
func (s *MemoryOrderStore) Create(_ context.Context, order *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := cloneOrder(*order)
	s.orders[order.ID] = &stored
	s.seq = append(s.seq, order.ID)
	return nil
}

// GetByID retrieves a copy of an order by its ID.
func (s *MemoryOrderStore) GetByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	order := cloneOrder(*stored)
	return &order, nil
}

// List retrieves copies of every order in creation order.
func (s *MemoryOrderStore) List(_ context.Context) ([]model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]model.Order, 0, len(s.seq))
	for _, id := range s.seq {
		orders = append(orders, cloneOrder(*s.orders[id]))
	}
	return orders, nil
}

// UpdateStatus moves an order from one status to another.
func (s *MemoryOrderStore) UpdateStatus(_ context.Context, id uuid.UUID, from, to model.OrderStatus, updatedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.orders[id]
	if !ok || stored.Status != from {
		return false, nil
	}
	stored.Status = to
	stored.UpdatedAt = updatedAt
	return true, nil
}

func cloneOrder(o model.Order) model.Order {
	o.Items = append([]model.OrderItem(nil), o.Items...)
	return o
}
