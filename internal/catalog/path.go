package catalog

import (
	"fmt"

	"github.com/aqasim81/schema-version-engine/internal/version"
)

// Direction of a migration path.
type Direction int

const (
	// DirectionNone means current and target are equal; nothing to do.
	DirectionNone Direction = iota
	// DirectionUpgrade runs forward scripts, lowest version first.
	DirectionUpgrade
	// DirectionDowngrade runs rollback scripts, highest version first.
	DirectionDowngrade
)

// Path is the ordered list of versions to traverse between the current and
// target versions. For upgrades the versions ascend; for downgrades they
// descend.
type Path struct {
	Direction Direction
	Versions  []Version
}

// Unversioned is the comparison floor for a database with no applied
// versions yet.
const Unversioned = "0.0.0"

// Path computes the migration path from current to target. An empty current
// means the database is unversioned and compares as 0.0.0. The target must
// be a known catalog version; intermediate versions are by construction a
// contiguous slice of the catalog's total order.
func (c *Catalog) Path(current, target string) (Path, error) {
	if !c.Contains(target) {
		return Path{}, fmt.Errorf("target %s: %w", target, ErrUnknownVersion)
	}

	if current == "" {
		current = Unversioned
	}

	switch version.Compare(target, current) {
	case 0:
		return Path{Direction: DirectionNone}, nil
	case 1:
		return Path{Direction: DirectionUpgrade, Versions: c.between(current, target, false)}, nil
	default:
		return Path{Direction: DirectionDowngrade, Versions: c.between(target, current, true)}, nil
	}
}

// between returns catalog versions v with low < v <= high, ascending, or
// descending when reversed.
func (c *Catalog) between(low, high string, reversed bool) []Version {
	var out []Version

	for _, v := range c.versions {
		if version.Compare(v.Version, low) > 0 && version.Compare(v.Version, high) <= 0 {
			out = append(out, v)
		}
	}

	if reversed {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}

	return out
}
