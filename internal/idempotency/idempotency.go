package idempotency

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// keyOrderCreate namespaces client supplied keys for order creation.
const keyOrderCreate = "idem:order:create:%s"

// Store remembers which order a client supplied Idempotency-Key produced.
type Store interface {
	// Get returns the order ID recorded for key, if any.
	Get(ctx context.Context, key string) (uuid.UUID, bool, error)

	// Put records orderID for key. An existing record is kept.
	Put(ctx context.Context, key string, orderID uuid.UUID) error
}

func orderCreateKey(key string) string {
	return fmt.Sprintf(keyOrderCreate, key)
}
