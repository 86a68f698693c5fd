package dep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashKey_Deterministic(t *testing.T) {
	a := HashKey("crate", "module", "item")
	b := HashKey("crate", "module", "item")
	assert.Equal(t, a, b, "same key must produce same fingerprint")
}

func TestHashKey_DistinctKeys(t *testing.T) {
	a := HashKey("crate", "module", "item")
	b := HashKey("crate", "module", "other")
	assert.NotEqual(t, a, b)
}

func TestHashKey_FieldBoundaries(t *testing.T) {
	// Length prefixing must keep ("ab","c") distinct from ("a","bc").
	a := HashKey("ab", "c")
	b := HashKey("a", "bc")
	assert.NotEqual(t, a, b, "field boundaries must be unambiguous")
}

func TestHashKey_NFCNormalization(t *testing.T) {
	// U+00E9 (precomposed) vs U+0065 U+0301 (decomposed) - same text.
	composed := HashKey("café.src")
	decomposed := HashKey("café.src")
	assert.Equal(t, composed, decomposed,
		"equivalent Unicode compositions must hash identically")
}

func TestHashResult_DomainSeparation(t *testing.T) {
	// A result payload must never collide with a key of the same bytes.
	key := HashKey("payload")
	res := HashResult([]byte("payload"))
	assert.NotEqual(t, key, res)
}

func TestFingerprint_RoundTripHex(t *testing.T) {
	f := HashKey("roundtrip")
	parsed, err := ParseFingerprint(f.String())
	require.NoError(t, err)
	assert.Equal(t, f, parsed)
}

func TestParseFingerprint_RejectsBadInput(t *testing.T) {
	_, err := ParseFingerprint("zz")
	assert.Error(t, err)

	_, err = ParseFingerprint("abcd")
	assert.Error(t, err, "wrong length must be rejected")
}

func TestFingerprint_ZeroSentinel(t *testing.T) {
	assert.True(t, ZeroFingerprint.IsZero())
	assert.False(t, HashKey("x").IsZero())
}
