//go:build ignore

package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"stockroom/internal/catalog"
	"stockroom/internal/model"

	"github.com/shopspring/decimal"
)

// generateSampleCatalog writes data/catalog/products.csv.gz for local runs.
// Point CATALOG_SEED_FILE at it to seed the product store on startup.
func main() {
	dataDir := "data/catalog"

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	products := []model.Product{
		{ID: "P001", Name: "Earl Grey Tea", Category: "Drinks", Price: decimal.RequireFromString("4.50"), Stock: 120},
		{ID: "P002", Name: "Espresso Beans 1kg", Category: "Drinks", Price: decimal.RequireFromString("18.90"), Stock: 40},
		{ID: "P003", Name: "Ceramic Mug", Category: "Kitchen", Price: decimal.RequireFromString("7.25"), Stock: 60},
		{ID: "P004", Name: "Pour Over Kettle", Category: "Kitchen", Price: decimal.RequireFromString("39.00"), Stock: 12},
		{ID: "P005", Name: "Paper Filters (100)", Category: "Kitchen", Price: decimal.RequireFromString("3.10"), Stock: 200},
		{ID: "P006", Name: "Gift Card", Category: "Other", Price: decimal.RequireFromString("25.00"), Stock: 1},
	}

	filePath := filepath.Join(dataDir, "products.csv.gz")
	file, err := os.Create(filePath)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", filePath, err)
	}

	if err := catalog.Write(file, products); err != nil {
		file.Close()
		log.Fatalf("Failed to write %s: %v", filePath, err)
	}
	if err := file.Close(); err != nil {
		log.Fatalf("Failed to close %s: %v", filePath, err)
	}

	fmt.Printf("Created %s with %d products\n", filePath, len(products))
}
