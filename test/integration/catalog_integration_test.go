package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"stockroom/internal/catalog"
	"stockroom/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// seedCatalogFile writes TestProducts as a catalogue file and seeds it
// through the same loader chain the server uses, without S3.
func seedCatalogFile(t *testing.T, ctx context.Context, testDB *TestDB) int {
	t.Helper()

	path := filepath.Join(t.TempDir(), "products.csv.gz")
	file, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, catalog.Write(file, TestProducts))
	require.NoError(t, file.Close())

	logger := zerolog.Nop()
	loader := catalog.NewFallbackLoader(nil, catalog.NewFileLoader(logger), "", logger)
	seeder := catalog.NewSeeder(loader, repository.NewProductRepository(testDB.Pool, logger), logger)

	count, err := seeder.Seed(ctx, path)
	require.NoError(t, err)
	return count
}
