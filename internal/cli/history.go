package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aqasim81/schema-version-engine/internal/ledger"
)

var historyCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "history",
	Short: "Show migration attempt history, most recent first",
	RunE:  runHistory,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	historyCmd.Flags().Int("limit", 0, "maximum attempts to show (default 50)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg := AppConfig
	out := cmd.OutOrStdout()

	ctx := commandContext(cmd)

	pool, err := connectDB(ctx, cfg, out)
	if err != nil {
		return err
	}
	defer pool.Close()

	limit := cfg.HistoryLimit
	if cmd.Flags().Changed("limit") {
		limit, _ = cmd.Flags().GetInt("limit")
	}

	attempts, err := ledger.New(pool).History(ctx, limit)
	if err != nil {
		return err
	}

	if len(attempts) == 0 {
		fmt.Fprintln(out, "No migration attempts recorded.")

		return nil
	}

	for _, a := range attempts {
		completed := "-"
		if a.CompletedAt != nil {
			completed = a.CompletedAt.Format("2006-01-02 15:04:05")
		}

		fmt.Fprintf(out, "%s  %-9s  %-11s  target=%s  started=%s  completed=%s\n",
			a.MigrationID, a.Operation, a.Status, a.Version,
			a.StartedAt.Format("2006-01-02 15:04:05"), completed)

		if len(a.ExecutedScripts) > 0 {
			fmt.Fprintf(out, "    scripts: %s\n", strings.Join(a.ExecutedScripts, ", "))
		}

		if a.ErrorMessage != "" {
			fmt.Fprintf(out, "    error: %s\n", a.ErrorMessage)
		}
	}

	return nil
}
