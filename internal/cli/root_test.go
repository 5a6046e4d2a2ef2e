package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/schema-version-engine/internal/config"
)

func newFlaggedCommand(t *testing.T) *cobra.Command {
	t.Helper()

	cmd := &cobra.Command{}
	cmd.Flags().String("database-url", "", "")
	cmd.Flags().String("catalog", "", "")

	return cmd
}

func TestMergeFlags_databaseURL_overridesConfig(t *testing.T) {
	t.Parallel()

	cfg := config.New()
	cmd := newFlaggedCommand(t)

	require.NoError(t, cmd.Flags().Set("database-url", "postgres://test:5432/db"))

	mergeFlags(cmd, cfg)
	assert.Equal(t, "postgres://test:5432/db", cfg.DatabaseURL)
}

func TestMergeFlags_catalog_overridesConfig(t *testing.T) {
	t.Parallel()

	cfg := config.New()
	cmd := newFlaggedCommand(t)

	require.NoError(t, cmd.Flags().Set("catalog", "/custom/catalog.yml"))

	mergeFlags(cmd, cfg)
	assert.Equal(t, "/custom/catalog.yml", cfg.CatalogFile)
}

func TestMergeFlags_unchangedFlags_preserveConfig(t *testing.T) {
	t.Parallel()

	cfg := config.New()
	cfg.DatabaseURL = "postgres://original:5432/db"
	cfg.CatalogFile = "/original/catalog.yml"

	mergeFlags(newFlaggedCommand(t), cfg)

	assert.Equal(t, "postgres://original:5432/db", cfg.DatabaseURL)
	assert.Equal(t, "/original/catalog.yml", cfg.CatalogFile)
}

func TestLoadConfig_missingFile_usesDefaults(t *testing.T) { // not parallel: mutates global AppConfig
	old := AppConfig

	t.Cleanup(func() { AppConfig = old })

	cmd := newFlaggedCommand(t)
	cmd.Flags().String("config", filepath.Join(t.TempDir(), "absent.yml"), "")

	require.NoError(t, loadConfig(cmd))
	require.NotNil(t, AppConfig)
	assert.Equal(t, config.DefaultCatalogFile, AppConfig.CatalogFile)
}

func TestLoadConfig_explicitMissingFile_errors(t *testing.T) { // not parallel: mutates global AppConfig
	old := AppConfig

	t.Cleanup(func() { AppConfig = old })

	cmd := newFlaggedCommand(t)
	cmd.Flags().String("config", "", "")
	require.NoError(t, cmd.Flags().Set("config", filepath.Join(t.TempDir(), "absent.yml")))

	err := loadConfig(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading configuration")
}

func TestLoadConfig_readsFile(t *testing.T) { // not parallel: mutates global AppConfig
	old := AppConfig

	t.Cleanup(func() { AppConfig = old })

	path := filepath.Join(t.TempDir(), "schemaver.yml")
	require.NoError(t, os.WriteFile(path,
		[]byte("database_url: postgres://file:5432/db\n"), 0o600))

	cmd := newFlaggedCommand(t)
	cmd.Flags().String("config", path, "")

	require.NoError(t, loadConfig(cmd))
	assert.Equal(t, "postgres://file:5432/db", AppConfig.DatabaseURL)
}
