package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/verdant/internal/dep"
)

// CachedResult is one stored query result.
type CachedResult struct {
	Node         dep.Node
	Fingerprint  dep.Fingerprint
	Payload      []byte
	SessionToken string
}

// GetResult looks up the cached payload for a node.
// ok is false if no result is stored.
func (s *Store) GetResult(ctx context.Context, node dep.Node) (CachedResult, bool, error) {
	var (
		fpHex   string
		payload []byte
		token   string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT fingerprint, payload, session_token
		FROM results
		WHERE kind = ? AND key_hash = ?
	`, int64(node.Kind), node.Hash.String()).Scan(&fpHex, &payload, &token)
	if errors.Is(err, sql.ErrNoRows) {
		return CachedResult{}, false, nil
	}
	if err != nil {
		return CachedResult{}, false, fmt.Errorf("get result for %s: %w", node, err)
	}

	fp, err := dep.ParseFingerprint(fpHex)
	if err != nil {
		return CachedResult{}, false, fmt.Errorf("get result for %s: %w", node, err)
	}

	return CachedResult{
		Node:         node,
		Fingerprint:  fp,
		Payload:      payload,
		SessionToken: token,
	}, true, nil
}

// CountResults returns the number of stored results.
func (s *Store) CountResults(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM results`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count results: %w", err)
	}
	return n, nil
}

// ListSessions returns all recorded sessions in session order.
// Returns an empty slice (not nil) if no sessions are recorded.
func (s *Store) ListSessions(ctx context.Context) ([]SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, engine_version, node_count, edge_count, green_count, red_count
		FROM sessions
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []SessionRecord{}
	for rows.Next() {
		var rec SessionRecord
		if err := rows.Scan(&rec.Token, &rec.EngineVersion, &rec.Nodes, &rec.Edges, &rec.Green, &rec.Red); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}
