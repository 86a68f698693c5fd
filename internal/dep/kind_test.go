package dep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_CapabilityTable(t *testing.T) {
	tests := []struct {
		kind       Kind
		hasParams  bool
		evalAlways bool
	}{
		{KindSessionOptions, false, true},
		{KindEnvVar, true, true},
		{KindSourceFile, true, false},
		{KindParse, true, false},
		{KindResolve, true, false},
		{KindTypeCheck, true, false},
		{KindCodegen, true, false},
		{KindModuleGraph, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.hasParams, tt.kind.HasParams())
			assert.Equal(t, tt.evalAlways, tt.kind.IsEvalAlways())
		})
	}
}

func TestKind_TableIsExhaustive(t *testing.T) {
	// Every defined kind must have a non-empty name in the table.
	for k := Kind(0); int(k) < NumKinds; k++ {
		assert.NotEmpty(t, k.String(), "kind %d has no table entry", k)
		assert.True(t, k.Valid())
	}
}

func TestKind_InvalidKindPanics(t *testing.T) {
	bad := Kind(NumKinds)
	assert.False(t, bad.Valid())
	assert.Panics(t, func() { _ = bad.String() })
}

func TestKindFromName_RoundTrip(t *testing.T) {
	for k := Kind(0); int(k) < NumKinds; k++ {
		got, err := KindFromName(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
}

func TestKindFromName_Unknown(t *testing.T) {
	_, err := KindFromName("NoSuchKind")
	assert.Error(t, err)
}
