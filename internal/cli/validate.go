package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aqasim81/schema-version-engine/internal/validate"
)

// errIntegrityIssues is returned when validation finds blocking issues.
var errIntegrityIssues = errors.New("database integrity issues found")

var validateCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "validate",
	Short: "Cross-check the catalog against the database's actual state",
	RunE:  runValidate,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
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

	report, err := validate.New(pool, cat).Validate(ctx)
	if err != nil {
		return err
	}

	for _, issue := range report.Issues {
		fmt.Fprintf(out, "ISSUE: %s\n", issue)
	}

	for _, rec := range report.Recommendations {
		fmt.Fprintf(out, "note: %s\n", rec)
	}

	if !report.Valid {
		return fmt.Errorf("%w: %d issue(s)", errIntegrityIssues, len(report.Issues))
	}

	fmt.Fprintln(out, "Database integrity OK.")

	return nil
}
