package cache

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/roach88/verdant/internal/serial"
)

const (
	graphFileName = "dep-graph.bin"
	storeFileName = "results.db"
)

// Dir is one crate's incremental cache directory.
type Dir struct {
	path string
}

// OpenDir opens (creating if needed) the cache directory at path.
func OpenDir(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("open cache dir: %w", err)
	}
	return &Dir{path: path}, nil
}

// GraphPath returns the path of the serialized graph blob.
func (d *Dir) GraphPath() string {
	return filepath.Join(d.path, graphFileName)
}

// StorePath returns the path of the result store database.
func (d *Dir) StorePath() string {
	return filepath.Join(d.path, storeFileName)
}

// LoadPrevious loads the previous session's graph.
//
// Returns (nil, nil) - meaning "no previous session, full rebuild" - when
// the blob is missing, truncated, corrupt, or written under a different
// format version. Only real I/O failures return an error.
func (d *Dir) LoadPrevious() (*serial.Graph, error) {
	data, err := os.ReadFile(d.GraphPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load previous dep-graph: %w", err)
	}

	g, err := serial.Decode(data)
	if err != nil {
		if serial.IsFormatError(err) {
			// Unreadable cache degrades to a full build, never fails it.
			return nil, nil
		}
		return nil, fmt.Errorf("load previous dep-graph: %w", err)
	}
	return g, nil
}

// SaveGraph atomically replaces the graph blob with g.
// Written to a temp file in the same directory, then renamed, so a crash
// mid-save leaves the previous blob usable.
func (d *Dir) SaveGraph(g *serial.Graph) error {
	var buf bytes.Buffer
	if err := g.Encode(&buf); err != nil {
		return fmt.Errorf("save dep-graph: %w", err)
	}

	tmp, err := os.CreateTemp(d.path, graphFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("save dep-graph: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("save dep-graph: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save dep-graph: %w", err)
	}

	if err := os.Rename(tmpName, d.GraphPath()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save dep-graph: %w", err)
	}
	return nil
}

// OpenStore opens the directory's result store.
func (d *Dir) OpenStore() (*Store, error) {
	return OpenStore(d.StorePath())
}
