package catalog

import (
	"context"
	"fmt"

	"stockroom/internal/repository"

	"github.com/rs/zerolog"
)

// Seeder loads a catalogue file and upserts every product it contains.
type Seeder struct {
	loader      Loader
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewSeeder creates a catalogue seeder.
func NewSeeder(loader Loader, productRepo repository.ProductRepository, logger zerolog.Logger) *Seeder {
	return &Seeder{
		loader:      loader,
		productRepo: productRepo,
		logger:      logger.With().Str("component", "catalog-seeder").Logger(),
	}
}

// Seed loads path and upserts its products. It returns how many were written.
// Nothing is written when the file fails to parse.
func (s *Seeder) Seed(ctx context.Context, path string) (int, error) {
	products, err := s.loader.Load(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("failed to load catalogue: %w", err)
	}

	if len(products) == 0 {
		s.logger.Warn().Str("path", path).Msg("catalogue is empty")
		return 0, nil
	}

	if err := s.productRepo.Upsert(ctx, products); err != nil {
		s.logger.Error().Err(err).Int("count", len(products)).Msg("failed to upsert catalogue")
		return 0, fmt.Errorf("failed to upsert catalogue: %w", err)
	}

	s.logger.Info().
		Str("path", path).
		Int("count", len(products)).
		Msg("catalogue seeded")

	return len(products), nil
}
