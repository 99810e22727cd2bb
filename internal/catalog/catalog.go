package catalog

import (
	"context"

	"stockroom/internal/model"
)

// Header is the required first row of a catalogue file.
var Header = []string{"id", "name", "category", "price", "stock"}

// Loader defines the interface for loading catalogue files.
type Loader interface {
	// Load reads a gzipped CSV catalogue and returns its products in file order.
	Load(ctx context.Context, path string) ([]model.Product, error)
}
