package catalog

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"stockroom/internal/model"

	"github.com/shopspring/decimal"
)

// ErrMalformed is wrapped by every parse failure.
var ErrMalformed = errors.New("malformed catalogue")

// Parse decompresses r and decodes the CSV rows into products. Any bad row
// fails the whole file.
func Parse(ctx context.Context, r io.Reader) ([]model.Product, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	reader := csv.NewReader(gz)
	reader.FieldsPerRecord = len(Header)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: missing header", ErrMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	for i, col := range Header {
		if strings.ToLower(strings.TrimSpace(header[i])) != col {
			return nil, fmt.Errorf("%w: line 1: expected column %q, got %q", ErrMalformed, col, header[i])
		}
	}

	seen := make(map[string]int)
	var products []model.Product

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}

		line, _ := reader.FieldPos(0)
		p, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformed, line, err)
		}
		if first, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: line %d: duplicate id %q (first on line %d)", ErrMalformed, line, p.ID, first)
		}
		seen[p.ID] = line
		products = append(products, p)
	}

	return products, nil
}

func parseRecord(record []string) (model.Product, error) {
	id := strings.TrimSpace(record[0])
	if id == "" {
		return model.Product{}, errors.New("id is required")
	}

	name := strings.TrimSpace(record[1])
	if name == "" {
		return model.Product{}, errors.New("name is required")
	}

	price, err := decimal.NewFromString(strings.TrimSpace(record[3]))
	if err != nil {
		return model.Product{}, fmt.Errorf("invalid price %q", record[3])
	}
	if price.IsNegative() {
		return model.Product{}, fmt.Errorf("negative price %s", price)
	}

	stock, err := strconv.Atoi(strings.TrimSpace(record[4]))
	if err != nil {
		return model.Product{}, fmt.Errorf("invalid stock %q", record[4])
	}
	if stock < 0 {
		return model.Product{}, fmt.Errorf("negative stock %d", stock)
	}

	return model.Product{
		ID:       id,
		Name:     name,
		Category: strings.TrimSpace(record[2]),
		Price:    price,
		Stock:    stock,
	}, nil
}

// Write encodes products as a gzipped CSV catalogue.
func Write(w io.Writer, products []model.Product) error {
	gz := gzip.NewWriter(w)
	writer := csv.NewWriter(gz)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, p := range products {
		row := []string{p.ID, p.Name, p.Category, p.Price.StringFixed(2), strconv.Itoa(p.Stock)}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write product %s: %w", p.ID, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush catalogue: %w", err)
	}
	return gz.Close()
}
