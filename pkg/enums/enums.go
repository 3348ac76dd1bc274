// Package enums holds the closed string sets stored in order rows and tokens.
package enums

import (
	"fmt"
	"slices"
)

func parse[T ~string](kind, raw string, known []T) (T, error) {
	if v := T(raw); slices.Contains(known, v) {
		return v, nil
	}
	return "", fmt.Errorf("invalid %s %q", kind, raw)
}
