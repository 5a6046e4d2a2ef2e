package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aqasim81/schema-version-engine/internal/database"
	"github.com/aqasim81/schema-version-engine/internal/executor"
	"github.com/aqasim81/schema-version-engine/internal/ledger"
	"github.com/aqasim81/schema-version-engine/internal/probe"
)

// errMigrationFailed is returned when a migration attempt does not succeed.
var errMigrationFailed = errors.New("migration failed")

var migrateCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "migrate [target-version]",
	Short: "Migrate the database to a target version",
	Long: `Migrate the database to the given catalog version, upgrading or
downgrading as needed. Without an argument the latest catalog version is
used. The whole path runs inside one transaction.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	migrateCmd.Flags().Bool("dry-run", false, "print the migration path without executing")
	migrateCmd.Flags().Duration("lock-timeout", 0, "override lock timeout (e.g., 10s, 1m)")
	migrateCmd.Flags().Duration("statement-timeout", 0, "override statement timeout (e.g., 30s, 5m)")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg := AppConfig
	out := cmd.OutOrStdout()

	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	target := cat.Latest()
	if len(args) == 1 {
		target = args[0]
	}

	ctx := commandContext(cmd)

	pool, err := connectDB(ctx, cfg, out)
	if err != nil {
		return err
	}
	defer pool.Close()

	lockTimeout := cfg.LockTimeout
	if cmd.Flags().Changed("lock-timeout") {
		lockTimeout, _ = cmd.Flags().GetDuration("lock-timeout")
	}

	stmtTimeout := cfg.StatementTimeout
	if cmd.Flags().Changed("statement-timeout") {
		stmtTimeout, _ = cmd.Flags().GetDuration("statement-timeout")
	}

	exec := executor.New(pool, cat, ledger.New(pool), probe.New(pool),
		executor.WithAppliedBy(cfg.AppliedBy),
		executor.WithLockTimeout(lockTimeout),
		executor.WithStatementTimeout(stmtTimeout),
		executor.WithProgressCallback(progressPrinter(out)),
	)

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		return printPlan(ctx, out, exec, target)
	}

	// The engine does no internal locking; serialize runs here.
	lock, err := database.TryAcquireLock(ctx, pool)
	if err != nil {
		return fmt.Errorf("acquiring migration lock: %w", err)
	}
	defer lock.Release(ctx) //nolint:errcheck // best-effort release on return

	res := exec.MigrateTo(ctx, target)

	return printResult(out, res)
}

// printPlan shows the comparison and path without executing anything.
func printPlan(ctx context.Context, out io.Writer, exec *executor.Executor, target string) error {
	cmp, err := exec.Compare(ctx, target)
	if err != nil {
		return err
	}

	current := cmp.Current
	if current == "" {
		current = "(unversioned)"
	}

	fmt.Fprintf(out, "Current: %s\nTarget:  %s\n", current, cmp.Target)

	switch {
	case cmp.NeedsUpgrade:
		fmt.Fprintf(out, "Upgrade path: %s\n", strings.Join(cmp.MigrationPath, " -> "))
	case cmp.NeedsDowngrade:
		fmt.Fprintf(out, "Downgrade path: %s\n", strings.Join(cmp.MigrationPath, " -> "))
	default:
		fmt.Fprintln(out, "Already at target; nothing to do.")
	}

	return nil
}

// progressPrinter renders executor progress events.
func progressPrinter(out io.Writer) func(executor.ProgressEvent) {
	return func(event executor.ProgressEvent) {
		switch event.Status {
		case executor.StatusStarting:
			fmt.Fprintf(out, "  Applying %s ... ", event.Version)
		case executor.StatusCompleted:
			fmt.Fprintf(out, "done (%s)\n", event.Duration.Truncate(time.Millisecond))
		case executor.StatusSkipped:
			fmt.Fprintf(out, "  Already at %s, nothing to do.\n", event.Version)
		case executor.StatusFailed:
			fmt.Fprintf(out, "FAILED\n    Error: %v\n", event.Error)
		}
	}
}

// printResult renders a migration result and converts failure into an error.
func printResult(out io.Writer, res executor.Result) error {
	if !res.Success {
		if res.FailedScript != "" {
			return fmt.Errorf("%w at script %s: %w", errMigrationFailed, res.FailedScript, res.Err)
		}

		return fmt.Errorf("%w: %w", errMigrationFailed, res.Err)
	}

	fmt.Fprintf(out, "\nMigration to %s complete: %d script(s) in %s.\n",
		res.Version, len(res.ExecutedScripts), res.Duration.Truncate(time.Millisecond))

	if !res.RollbackAvailable {
		fmt.Fprintln(out, "Note: the current version defines no rollback scripts.")
	}

	return nil
}
