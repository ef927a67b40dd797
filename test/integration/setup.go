package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"bookmart/internal/config"
	"bookmart/internal/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	Config    config.DatabaseConfig
}

// SetupTestDB creates a PostgreSQL test container, runs the schema migrations
// against it and opens a connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := postgresContainer.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := postgresContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dbConfig := config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "testuser",
		Password:        "testpass",
		Database:        "testdb",
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}

	logger := zerolog.Nop()

	if err := database.Migrate(dbConfig, logger); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	pool, err := database.NewPool(ctx, dbConfig, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		Config:    dbConfig,
	}
}

// SeedBooks inserts test catalogue data and returns the inserted ids in
// insertion order.
func SeedBooks(t *testing.T, pool *pgxpool.Pool) []uuid.UUID {
	t.Helper()

	ctx := context.Background()

	books := []struct {
		name  string
		price int64
	}{
		{"Nha Gia Kim", 79000},
		{"Dac Nhan Tam", 86000},
		{"Tuoi Tre Dang Gia Bao Nhieu", 70000},
		{"Mat Biec", 65000},
		{"Cho Toi Xin Mot Ve Di Tuoi Tho", 80000},
	}

	ids := make([]uuid.UUID, 0, len(books))
	for _, b := range books {
		id := uuid.New()
		_, err := pool.Exec(ctx,
			"INSERT INTO books (id, name, price, cover_url) VALUES ($1, $2, $3, $4)",
			id, b.name, b.price, "https://covers.example/"+id.String(),
		)
		if err != nil {
			t.Fatalf("failed to seed book %s: %v", b.name, err)
		}
		ids = append(ids, id)
	}

	return ids
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_items", "orders", "cart_items", "carts", "books"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
