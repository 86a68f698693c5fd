package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/verdant/internal/cache"
	"github.com/roach88/verdant/internal/dep"
)

// seedCacheDir populates a cache directory with one result and one
// session row and returns its path.
func seedCacheDir(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	path := t.TempDir()
	dir, err := cache.OpenDir(path)
	require.NoError(t, err)

	st, err := dir.OpenStore()
	require.NoError(t, err)
	defer st.Close()

	node := dep.NewNode(dep.KindTypeCheck, "lib")
	require.NoError(t, st.PutResult(ctx, node, dep.HashResult([]byte("check")), []byte("payload"), "session-1"))
	require.NoError(t, st.RecordSession(ctx, cache.SessionRecord{
		Token:         "session-1",
		EngineVersion: dep.EngineVersion,
		Nodes:         3,
		Edges:         2,
		Green:         2,
		Red:           1,
	}))

	return path
}

func TestStatsText(t *testing.T) {
	path := seedCacheDir(t)

	out, err := executeCommand(t, "stats", "--dir", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Cached results: 1")
	assert.Contains(t, out, "session-1")
	assert.Contains(t, out, "Green: 2  Red: 1")
}

func TestStatsJSON(t *testing.T) {
	path := seedCacheDir(t)

	out, err := executeCommand(t, "--format", "json", "stats", "--dir", path)
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   StatsResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Results)
	require.Len(t, resp.Data.Sessions, 1)
	assert.Equal(t, "session-1", resp.Data.Sessions[0].Token)
	assert.Equal(t, 3, resp.Data.Sessions[0].Nodes)
}

func TestStatsEmptyDir(t *testing.T) {
	out, err := executeCommand(t, "stats", "--dir", t.TempDir())
	require.NoError(t, err)

	assert.Contains(t, out, "Cached results: 0")
	assert.Contains(t, out, "(no sessions recorded)")
}

func TestStatsMissingDir(t *testing.T) {
	_, err := executeCommand(t, "stats", "--dir", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
