package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestSQLite(t *testing.T) *SQLStorage {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "storefront.db"))
	require.NoError(t, err)
	require.NoError(t, s.RunMigrations())
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStorage_Contract(t *testing.T) {
	runStorageContract(t, setupTestSQLite(t))
}

func TestSQLiteStorage_MigrationsAreIdempotent(t *testing.T) {
	s := setupTestSQLite(t)

	assert.NoError(t, s.RunMigrations())
}

func TestSQLiteStorage_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.db")
	ctx := context.Background()

	first, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.RunMigrations())
	require.NoError(t, first.Set(ctx, "sid:cartItems", []byte(`[{"_id":"p1"}]`)))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(path)
	require.NoError(t, err)
	defer second.Close()
	require.NoError(t, second.RunMigrations())

	got, err := second.Get(ctx, "sid:cartItems")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"_id":"p1"}]`, string(got))
}

func TestSQLiteStorage_CancelledContext(t *testing.T) {
	s := setupTestSQLite(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Get(ctx, "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context canceled")
}

func setupTestPostgres(t *testing.T) (*SQLStorage, func()) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%d user=testuser password=testpass dbname=testdb sslmode=disable", host, port.Int())
	s, err := OpenPostgres(dsn)
	require.NoError(t, err)
	require.NoError(t, s.RunMigrations())

	cleanup := func() {
		s.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return s, cleanup
}

func TestPostgresStorage_Contract(t *testing.T) {
	s, cleanup := setupTestPostgres(t)
	defer cleanup()

	runStorageContract(t, s)
}
