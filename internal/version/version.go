// Package version implements numeric comparison of dot-separated
// schema version strings such as "1.2.0" or "2.10".
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse splits a version string into its numeric components.
// Components must be non-negative integers; any count is allowed.
func Parse(v string) ([]int, error) {
	if strings.TrimSpace(v) == "" {
		return nil, fmt.Errorf("empty version string")
	}

	parts := strings.Split(v, ".")
	components := make([]int, len(parts))

	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("version %q: component %q is not a non-negative integer", v, p)
		}

		components[i] = n
	}

	return components, nil
}

// Compare orders two version strings component-wise and returns -1, 0, or 1.
// Missing trailing components are treated as 0, so "1.2" == "1.2.0".
// Unparsable components also compare as 0; catalog construction rejects
// malformed versions before they can reach here.
func Compare(a, b string) int {
	ac := strings.Split(a, ".")
	bc := strings.Split(b, ".")

	n := len(ac)
	if len(bc) > n {
		n = len(bc)
	}

	for i := 0; i < n; i++ {
		av := component(ac, i)
		bv := component(bc, i)

		if av < bv {
			return -1
		}

		if av > bv {
			return 1
		}
	}

	return 0
}

// component returns the i-th numeric component, or 0 if absent or unparsable.
func component(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}

	n, err := strconv.Atoi(parts[i])
	if err != nil || n < 0 {
		return 0
	}

	return n
}
