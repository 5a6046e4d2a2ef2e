package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aqasim81/schema-version-engine/internal/ledger"
)

var cleanupCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "cleanup",
	Short: "Purge old migration attempt logs",
	RunE:  runCleanup,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	cleanupCmd.Flags().Int("days", 0, "keep attempts newer than this many days (default 30)")
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, _ []string) error {
	cfg := AppConfig
	out := cmd.OutOrStdout()

	ctx := commandContext(cmd)

	pool, err := connectDB(ctx, cfg, out)
	if err != nil {
		return err
	}
	defer pool.Close()

	days := cfg.KeepDays
	if cmd.Flags().Changed("days") {
		days, _ = cmd.Flags().GetInt("days")
	}

	removed, err := ledger.New(pool).Cleanup(ctx, days)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Removed %d attempt log(s) older than %d day(s).\n", removed, days)

	return nil
}
