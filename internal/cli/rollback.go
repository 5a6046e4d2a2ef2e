package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aqasim81/schema-version-engine/internal/database"
	"github.com/aqasim81/schema-version-engine/internal/executor"
	"github.com/aqasim81/schema-version-engine/internal/ledger"
	"github.com/aqasim81/schema-version-engine/internal/probe"
)

var rollbackCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "rollback",
	Short: "Roll back to an earlier schema version",
	Long: `Roll back the database to a version strictly below the current one,
running each version's rollback scripts highest version first, inside one
transaction.`,
	RunE: runRollback,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rollbackCmd.Flags().String("target", "", "version to roll back to (required)")
	_ = rollbackCmd.MarkFlagRequired("target")
	rootCmd.AddCommand(rollbackCmd)
}

func runRollback(cmd *cobra.Command, _ []string) error {
	cfg := AppConfig
	out := cmd.OutOrStdout()
	target, _ := cmd.Flags().GetString("target")

	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)

	pool, err := connectDB(ctx, cfg, out)
	if err != nil {
		return err
	}
	defer pool.Close()

	exec := executor.New(pool, cat, ledger.New(pool), probe.New(pool),
		executor.WithAppliedBy(cfg.AppliedBy),
		executor.WithLockTimeout(cfg.LockTimeout),
		executor.WithStatementTimeout(cfg.StatementTimeout),
		executor.WithProgressCallback(progressPrinter(out)),
	)

	lock, err := database.TryAcquireLock(ctx, pool)
	if err != nil {
		return fmt.Errorf("acquiring migration lock: %w", err)
	}
	defer lock.Release(ctx) //nolint:errcheck // best-effort release on return

	res := exec.RollbackToVersion(ctx, target)

	return printResult(out, res)
}
