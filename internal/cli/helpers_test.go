package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/verdant/internal/dep"
	"github.com/roach88/verdant/internal/serial"
)

// writeGraphBlob encodes a small three-node graph to a temp file and
// returns its path: codegen depends on typecheck depends on a source file.
func writeGraphBlob(t *testing.T) string {
	t.Helper()

	src := dep.NewNode(dep.KindSourceFile, "lib/main.src")
	check := dep.NewNode(dep.KindTypeCheck, "lib")
	gen := dep.NewNode(dep.KindCodegen, "lib")

	g, err := serial.New(
		[]serial.NodeData{
			{Node: src, Fingerprint: dep.HashResult([]byte("src"))},
			{Node: check, Fingerprint: dep.HashResult([]byte("check"))},
			{Node: gen, Fingerprint: dep.HashResult([]byte("gen"))},
		},
		[][]dep.PrevNodeIndex{
			nil,
			{0},
			{1},
		},
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, g.Encode(&buf))

	path := filepath.Join(t.TempDir(), "dep-graph.bin")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

// executeCommand runs the root command with args, capturing stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}
