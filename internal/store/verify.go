package store

import (
	"context"
	"fmt"
)

// Issue describes a stored table that no longer reads back cleanly.
type Issue struct {
	TableHash string `json:"table_hash"`
	Message   string `json:"message"`
}

// Verify reads back every stored table and reports the ones that fail
// validation or no longer match their hash. An empty result means the store
// is consistent.
func (s *Store) Verify(ctx context.Context) ([]Issue, error) {
	hashes, err := s.tableHashes(ctx)
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}

	var issues []Issue
	for _, h := range hashes {
		if _, err := s.ReadTable(ctx, h); err != nil {
			issues = append(issues, Issue{TableHash: h, Message: err.Error()})
		}
	}
	return issues, nil
}

// GetLastSeq returns the highest publication seq, or 0 on an empty store.
func (s *Store) GetLastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM publications`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("get last seq: %w", err)
	}
	return seq, nil
}

func (s *Store) tableHashes(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT hash FROM scene_tables ORDER BY hash ASC COLLATE BINARY`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	return hashes, rows.Err()
}
