//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aqasim81/schema-version-engine/internal/catalog"
	"github.com/aqasim81/schema-version-engine/internal/executor"
	"github.com/aqasim81/schema-version-engine/internal/ledger"
	"github.com/aqasim81/schema-version-engine/internal/probe"
)

const (
	postgresImage = "postgres:16-alpine"
	testDB        = "schemaver_test"
	testUser      = "schemaver"
	testPassword  = "schemaver"
)

// SetupPostgres starts a PostgreSQL 16 container and returns a connection
// pool plus the DSN for opening independent verification connections.
// Container and pool are cleaned up when the test completes.
func SetupPostgres(t *testing.T) (*pgxpool.Pool, string) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       testDB,
			"POSTGRES_USER":     testUser,
			"POSTGRES_PASSWORD": testPassword,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, container.Terminate(context.Background()))
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := "postgres://" + testUser + ":" + testPassword + "@" + host + ":" + port.Port() + "/" + testDB + "?sslmode=disable"

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
	})

	require.NoError(t, pool.Ping(ctx))

	return pool, dsn
}

// threeVersionCatalog declares the bootstrap version plus two application
// versions, each with two forward scripts and a rollback script.
func threeVersionCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	cat, err := catalog.New([]catalog.Version{
		ledger.BootstrapVersion(),
		{
			Version:     "1.1.0",
			Description: "users",
			Forward: []catalog.Script{
				{ID: "v11_users", SQL: "CREATE TABLE users (id SERIAL PRIMARY KEY, name TEXT NOT NULL)", ExecutionOrder: 1},
				{ID: "v11_users_idx", SQL: "CREATE INDEX idx_users_name ON users(name)", ExecutionOrder: 2},
			},
			Rollback: []catalog.Script{
				{ID: "v11_rb", SQL: "DROP TABLE IF EXISTS users", ExecutionOrder: 1},
			},
		},
		{
			Version:     "1.2.0",
			Description: "posts",
			Forward: []catalog.Script{
				{ID: "v12_posts", SQL: "CREATE TABLE posts (id SERIAL PRIMARY KEY, user_id INTEGER REFERENCES users(id), title TEXT)", ExecutionOrder: 1},
				{ID: "v12_posts_idx", SQL: "CREATE INDEX idx_posts_user ON posts(user_id)", ExecutionOrder: 2},
			},
			Rollback: []catalog.Script{
				{ID: "v12_rb", SQL: "DROP TABLE IF EXISTS posts", ExecutionOrder: 1},
			},
		},
	})
	require.NoError(t, err)

	return cat
}

// newEngine wires an executor over the pool with the given catalog.
func newEngine(pool *pgxpool.Pool, cat *catalog.Catalog, opts ...executor.Option) *executor.Executor {
	base := []executor.Option{executor.WithAppliedBy("integration")}

	return executor.New(pool, cat, ledger.New(pool), probe.New(pool), append(base, opts...)...)
}
