package cache

import (
	"context"
	"fmt"

	"github.com/roach88/verdant/internal/dep"
)

// SessionRecord is one finished session's metadata row.
type SessionRecord struct {
	Token         string `json:"token"`
	EngineVersion string `json:"engine_version"`
	Nodes         int    `json:"nodes"`
	Edges         int    `json:"edges"`
	Green         int    `json:"green"`
	Red           int    `json:"red"`
}

// PutResult stores the cached payload for a node.
//
// An existing row for the same node is replaced: re-saving under a new
// session supersedes the old result, and re-saving identical content is
// idempotent.
func (s *Store) PutResult(ctx context.Context, node dep.Node, fingerprint dep.Fingerprint, payload []byte, sessionToken string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO results (kind, key_hash, fingerprint, payload, session_token)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(kind, key_hash) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			payload = excluded.payload,
			session_token = excluded.session_token
	`,
		int64(node.Kind),
		node.Hash.String(),
		fingerprint.String(),
		payload,
		sessionToken,
	)
	if err != nil {
		return fmt.Errorf("put result for %s: %w", node, err)
	}
	return nil
}

// RecordSession appends the session metadata row.
// Duplicate tokens are silently ignored for idempotency.
func (s *Store) RecordSession(ctx context.Context, rec SessionRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, engine_version, node_count, edge_count, green_count, red_count)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(token) DO NOTHING
	`,
		rec.Token,
		rec.EngineVersion,
		rec.Nodes,
		rec.Edges,
		rec.Green,
		rec.Red,
	)
	if err != nil {
		return fmt.Errorf("record session %s: %w", rec.Token, err)
	}
	return nil
}

// PruneStale deletes result rows whose node is not in keep - nodes the
// just-serialized graph no longer contains can never be reused again.
// Returns the number of rows removed.
func (s *Store) PruneStale(ctx context.Context, keep []dep.Node) (int64, error) {
	keepSet := make(map[dep.Node]struct{}, len(keep))
	for _, n := range keep {
		keepSet[n] = struct{}{}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("prune stale results: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT kind, key_hash FROM results`)
	if err != nil {
		return 0, fmt.Errorf("prune stale results: %w", err)
	}

	type rowKey struct {
		kind int64
		hash string
	}
	var stale []rowKey
	for rows.Next() {
		var k rowKey
		if err := rows.Scan(&k.kind, &k.hash); err != nil {
			rows.Close()
			return 0, fmt.Errorf("prune stale results: %w", err)
		}
		node, err := rowToNode(k.kind, k.hash)
		if err != nil {
			// An unreadable row cannot correspond to a live node.
			stale = append(stale, k)
			continue
		}
		if _, live := keepSet[node]; !live {
			stale = append(stale, k)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("prune stale results: %w", err)
	}

	var removed int64
	for _, k := range stale {
		res, err := tx.ExecContext(ctx, `DELETE FROM results WHERE kind = ? AND key_hash = ?`, k.kind, k.hash)
		if err != nil {
			return 0, fmt.Errorf("prune stale results: %w", err)
		}
		n, _ := res.RowsAffected()
		removed += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("prune stale results: %w", err)
	}
	return removed, nil
}

func rowToNode(kind int64, keyHash string) (dep.Node, error) {
	k := dep.Kind(kind)
	if kind < 0 || !k.Valid() {
		return dep.Node{}, fmt.Errorf("invalid kind %d in result row", kind)
	}
	hash, err := dep.ParseFingerprint(keyHash)
	if err != nil {
		return dep.Node{}, err
	}
	return dep.Node{Kind: k, Hash: hash}, nil
}
