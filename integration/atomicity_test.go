//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/schema-version-engine/internal/catalog"
	"github.com/aqasim81/schema-version-engine/internal/database"
	"github.com/aqasim81/schema-version-engine/internal/executor"
	"github.com/aqasim81/schema-version-engine/internal/ledger"
)

// brokenCatalog extends the three-version catalog with a version whose
// second script references a missing table.
func brokenCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	versions := append(threeVersionCatalog(t).Versions(), catalog.Version{
		Version:     "1.3.0",
		Description: "broken",
		Forward: []catalog.Script{
			{ID: "v13_ok", SQL: "CREATE TABLE tags (id SERIAL PRIMARY KEY)", ExecutionOrder: 1},
			{ID: "v13_bad", SQL: "CREATE INDEX idx_missing ON no_such_table(id)", ExecutionOrder: 2},
		},
	})

	cat, err := catalog.New(versions)
	require.NoError(t, err)

	return cat
}

func TestMigrateTo_midPathFailure_leavesPriorStateUntouched(t *testing.T) {
	t.Parallel()

	pool, dsn := SetupPostgres(t)
	ctx := context.Background()

	good := newEngine(pool, threeVersionCatalog(t))
	require.True(t, good.MigrateTo(ctx, "1.1.0").Success)

	bad := newEngine(pool, brokenCatalog(t))

	res := bad.MigrateTo(ctx, "1.3.0")
	require.False(t, res.Success)
	assert.Equal(t, "v13_bad", res.FailedScript)

	// 1.2.0's scripts and 1.3.0's first script completed before the failure.
	assert.Equal(t, []string{"v12_posts", "v12_posts_idx", "v13_ok"}, res.ExecutedScripts)
	assert.False(t, res.RollbackAvailable)

	// Verify on a fresh connection: the transaction rollback undid the
	// whole path, so the applied set is unchanged from before the call.
	fresh, err := database.NewPool(ctx, dsn)
	require.NoError(t, err)
	defer fresh.Close()

	assert.Equal(t, []string{"1.0.0", "1.1.0"}, appliedSet(t, fresh))

	var reg *string

	require.NoError(t, fresh.QueryRow(ctx, `SELECT to_regclass('posts')::text`).Scan(&reg))
	assert.Nil(t, reg, "posts table from 1.2.0 must have been rolled back")

	// The attempt closed as FAILED with the partial script list.
	attempts, err := ledger.New(fresh).History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, ledger.StatusFailed, attempts[0].Status)
	assert.Contains(t, attempts[0].ErrorMessage, "v13_bad")
	assert.Equal(t, res.ExecutedScripts, attempts[0].ExecutedScripts)
}

func TestMigrateTo_failedAttemptThenRetry_succeedsAfterFix(t *testing.T) {
	t.Parallel()

	pool, _ := SetupPostgres(t)
	ctx := context.Background()

	bad := newEngine(pool, brokenCatalog(t))
	require.False(t, bad.MigrateTo(ctx, "1.3.0").Success)

	// Retrying with a fixed catalog replays from the current version.
	good := newEngine(pool, threeVersionCatalog(t))

	res := good.MigrateTo(ctx, "1.2.0")
	require.True(t, res.Success, "unexpected error: %v", res.Err)
	assert.Equal(t, []string{"1.0.0", "1.1.0", "1.2.0"}, appliedSet(t, pool))
}

func TestAdvisoryLock_excludesSecondHolder(t *testing.T) {
	t.Parallel()

	pool, _ := SetupPostgres(t)
	ctx := context.Background()

	lock, err := database.TryAcquireLock(ctx, pool)
	require.NoError(t, err)

	_, err = database.TryAcquireLock(ctx, pool)
	require.ErrorIs(t, err, database.ErrLockNotAcquired)

	require.NoError(t, lock.Release(ctx))

	relock, err := database.TryAcquireLock(ctx, pool)
	require.NoError(t, err)
	require.NoError(t, relock.Release(ctx))
}

func TestExecutor_progressEvents(t *testing.T) {
	t.Parallel()

	pool, _ := SetupPostgres(t)
	ctx := context.Background()

	var events []executor.ProgressEvent

	exec := newEngine(pool, threeVersionCatalog(t),
		executor.WithProgressCallback(func(e executor.ProgressEvent) {
			events = append(events, e)
		}),
	)

	require.True(t, exec.MigrateTo(ctx, "1.2.0").Success)

	// Three versions: starting + completed each.
	require.Len(t, events, 6)

	for i := 0; i < 3; i++ {
		assert.Equal(t, executor.StatusStarting, events[i*2].Status)
		assert.Equal(t, executor.StatusCompleted, events[i*2+1].Status)
	}
}
