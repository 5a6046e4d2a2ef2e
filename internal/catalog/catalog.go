// Package catalog holds the immutable registry of known schema versions:
// their forward and rollback scripts, their total order, and the path
// computation between any two versions.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/aqasim81/schema-version-engine/internal/version"
)

// Script is one statement batch belonging to a schema version.
type Script struct {
	ID             string // unique within its version
	Name           string
	Description    string
	SQL            string // raw statement batch, may contain multiple statements
	ExecutionOrder int    // intra-version ordering
	Checksum       string // SHA-256 hex digest of SQL
}

// Version is a single schema version: its forward scripts and, when the
// change is reversible, its rollback scripts.
type Version struct {
	Version     string
	Description string
	ReleaseDate string // YYYY-MM-DD, informational only
	Forward     []Script
	Rollback    []Script // empty means the version cannot be rolled back
}

// Checksum returns a digest covering the version's forward scripts in
// execution order, recorded on the applied-version row.
func (v Version) Checksum() string {
	h := sha256.New()

	for _, s := range v.Forward {
		h.Write([]byte(s.SQL))
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))
}

// Catalog is the registry of every known schema version, ordered ascending.
// It is built once at startup and never mutated afterward; callers share it
// by reference.
type Catalog struct {
	versions []Version
	index    map[string]int
}

// New builds a Catalog from the given versions. Versions are sorted into
// ascending order; duplicate versions, malformed version strings, duplicate
// script ids within a version, and versions without forward scripts are
// rejected.
func New(versions []Version) (*Catalog, error) {
	if len(versions) == 0 {
		return nil, ErrEmptyCatalog
	}

	sorted := make([]Version, len(versions))
	copy(sorted, versions)

	for i := range sorted {
		// Normalization sorts scripts and fills checksums; copy the script
		// slices so the caller's input is never written to.
		sorted[i].Forward = append([]Script(nil), sorted[i].Forward...)
		sorted[i].Rollback = append([]Script(nil), sorted[i].Rollback...)

		if err := validateVersion(&sorted[i]); err != nil {
			return nil, err
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return version.Compare(sorted[i].Version, sorted[j].Version) < 0
	})

	index := make(map[string]int, len(sorted))

	for i, v := range sorted {
		if _, dup := index[v.Version]; dup {
			return nil, fmt.Errorf("version %s: %w", v.Version, ErrDuplicateVersion)
		}

		index[v.Version] = i
	}

	return &Catalog{versions: sorted, index: index}, nil
}

// validateVersion checks one declared version and fills in missing script
// checksums. Scripts are sorted by ExecutionOrder here so downstream code
// never has to re-sort.
func validateVersion(v *Version) error {
	if _, err := version.Parse(v.Version); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidVersion, err)
	}

	if len(v.Forward) == 0 {
		return fmt.Errorf("version %s: %w", v.Version, ErrNoForwardScripts)
	}

	if err := normalizeScripts(v.Version, v.Forward); err != nil {
		return err
	}

	return normalizeScripts(v.Version, v.Rollback)
}

func normalizeScripts(ver string, scripts []Script) error {
	seen := make(map[string]struct{}, len(scripts))

	for i := range scripts {
		s := &scripts[i]

		if s.ID == "" {
			return fmt.Errorf("version %s: script %d has no id", ver, i)
		}

		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("version %s script %s: %w", ver, s.ID, ErrDuplicateScript)
		}

		seen[s.ID] = struct{}{}

		if s.SQL == "" {
			return fmt.Errorf("version %s script %s: empty SQL", ver, s.ID)
		}

		if s.Checksum == "" {
			s.Checksum = ComputeChecksum(s.SQL)
		}
	}

	sort.SliceStable(scripts, func(i, j int) bool {
		return scripts[i].ExecutionOrder < scripts[j].ExecutionOrder
	})

	return nil
}

// Versions returns every known version in ascending order.
// The returned slice is a copy; the catalog itself is never exposed mutably.
func (c *Catalog) Versions() []Version {
	out := make([]Version, len(c.versions))
	copy(out, c.versions)

	return out
}

// Latest returns the highest version string in the catalog.
func (c *Catalog) Latest() string {
	return c.versions[len(c.versions)-1].Version
}

// Earliest returns the lowest version string in the catalog.
func (c *Catalog) Earliest() string {
	return c.versions[0].Version
}

// Lookup returns the declared version, if known.
func (c *Catalog) Lookup(v string) (Version, bool) {
	i, ok := c.index[v]
	if !ok {
		return Version{}, false
	}

	return c.versions[i], true
}

// Contains reports whether v is a known version.
func (c *Catalog) Contains(v string) bool {
	_, ok := c.index[v]
	return ok
}

// ComputeChecksum returns the SHA-256 hex digest of the given SQL string.
func ComputeChecksum(sql string) string {
	h := sha256.Sum256([]byte(sql))

	return hex.EncodeToString(h[:])
}
