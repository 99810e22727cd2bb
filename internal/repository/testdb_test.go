package repository

import (
	"context"
	"testing"
	"time"

	"stockroom/internal/database"
	"stockroom/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer with the schema applied.
// It skips the test in -short mode.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test")
	}

	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	// Get connection string
	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Create connection pool
	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	})

	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))
	return pool
}

// seedProducts inserts test products into the database.
func seedProducts(t *testing.T, pool *pgxpool.Pool, products []model.Product) {
	t.Helper()
	repo := NewProductRepository(pool, zerolog.Nop())
	require.NoError(t, repo.Upsert(context.Background(), products))
}

func testProducts() []model.Product {
	return []model.Product{
		{ID: "P001", Name: "Apple", Category: "Fruit", Price: decimal.RequireFromString("0.50"), Stock: 10},
		{ID: "P002", Name: "Banana", Category: "Fruit", Price: decimal.RequireFromString("0.25"), Stock: 0},
		{ID: "P003", Name: "Carrot", Category: "Vegetable", Price: decimal.RequireFromString("1.10"), Stock: 3},
	}
}
