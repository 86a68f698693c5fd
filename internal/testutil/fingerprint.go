// Package testutil provides deterministic fixtures for dep-graph tests:
// stable fingerprints and a builder for previous-session graphs.
package testutil

import (
	"github.com/roach88/verdant/internal/dep"
)

// FingerprintOf derives a stable fingerprint from a label.
//
// The same label always yields the same fingerprint, so tests can express
// "unchanged between sessions" as reusing a label and "changed" as
// switching labels, without caring about actual hash values.
func FingerprintOf(label string) dep.Fingerprint {
	return dep.HashResult([]byte(label))
}
