package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Render prices and totals as JSON numbers rather than quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents an item in the inventory catalogue.
type Product struct {
	ID        string          `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Category  string          `json:"category" db:"category"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Stock     int             `json:"stock" db:"stock"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
}
