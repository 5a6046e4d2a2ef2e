package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aqasim81/schema-version-engine/internal/ledger"
	"github.com/aqasim81/schema-version-engine/internal/probe"
)

var statusCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "status",
	Short: "Show the current schema version and applied history",
	RunE:  runStatus,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg := AppConfig
	out := cmd.OutOrStdout()

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

	current, err := probe.New(pool).CurrentVersion(ctx)
	if err != nil {
		return err
	}

	if current == "" {
		fmt.Fprintf(out, "Current version: (unversioned)\nLatest version:  %s\n", cat.Latest())
		fmt.Fprintf(out, "Pending: %d version(s)\n", len(cat.Versions()))

		return nil
	}

	fmt.Fprintf(out, "Current version: %s\nLatest version:  %s\n", current, cat.Latest())

	applied, err := ledger.New(pool).AppliedVersions(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\nApplied versions (%d):\n", len(applied))

	for _, v := range applied {
		fmt.Fprintf(out, "  %-12s %s  by %s  (%dms)\n",
			v.Version, v.AppliedAt.Format("2006-01-02 15:04:05"), v.AppliedBy, v.ExecutionTimeMs)
	}

	pending := 0

	for _, v := range cat.Versions() {
		if !containsVersion(applied, v.Version) {
			pending++
		}
	}

	fmt.Fprintf(out, "Pending: %d version(s)\n", pending)

	return nil
}

func containsVersion(applied []ledger.AppliedVersion, version string) bool {
	for _, a := range applied {
		if a.Version == version {
			return true
		}
	}

	return false
}
