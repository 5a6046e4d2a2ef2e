package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlCatalog is the raw file representation of a catalog definition.
type yamlCatalog struct {
	Versions []yamlVersion `yaml:"versions"`
}

type yamlVersion struct {
	Version     string       `yaml:"version"`
	Description string       `yaml:"description"`
	ReleaseDate string       `yaml:"release_date"`
	Forward     []yamlScript `yaml:"forward"`
	Rollback    []yamlScript `yaml:"rollback"`
}

type yamlScript struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	RunOrder    int    `yaml:"run_order"`
	SQL         string `yaml:"sql"`
	File        string `yaml:"file"` // SQL file, relative to the catalog file
}

// LoadFile reads a YAML catalog definition and builds a Catalog from it.
// Script bodies may be declared inline via `sql` or in a separate file via
// `file`; paths are resolved relative to the catalog file's directory.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file %s: %w", path, err)
	}

	var raw yamlCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing catalog file %s: %w", path, err)
	}

	versions, err := fromYAML(&raw, filepath.Dir(path))
	if err != nil {
		return nil, err
	}

	return New(versions)
}

// fromYAML converts the raw representation to catalog versions, reading any
// referenced script files.
func fromYAML(raw *yamlCatalog, baseDir string) ([]Version, error) {
	versions := make([]Version, 0, len(raw.Versions))

	for _, rv := range raw.Versions {
		fwd, err := buildScripts(rv.Version, rv.Forward, baseDir)
		if err != nil {
			return nil, err
		}

		rb, err := buildScripts(rv.Version, rv.Rollback, baseDir)
		if err != nil {
			return nil, err
		}

		versions = append(versions, Version{
			Version:     rv.Version,
			Description: rv.Description,
			ReleaseDate: rv.ReleaseDate,
			Forward:     fwd,
			Rollback:    rb,
		})
	}

	return versions, nil
}

func buildScripts(ver string, raw []yamlScript, baseDir string) ([]Script, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	scripts := make([]Script, 0, len(raw))

	for _, rs := range raw {
		sql := strings.TrimSpace(rs.SQL)

		if sql == "" && rs.File != "" {
			data, err := os.ReadFile(filepath.Join(baseDir, rs.File))
			if err != nil {
				return nil, fmt.Errorf("version %s script %s: reading %s: %w", ver, rs.ID, rs.File, err)
			}

			sql = strings.TrimSpace(string(data))
		}

		scripts = append(scripts, Script{
			ID:             rs.ID,
			Name:           rs.Name,
			Description:    rs.Description,
			SQL:            sql,
			ExecutionOrder: rs.RunOrder,
		})
	}

	return scripts, nil
}
