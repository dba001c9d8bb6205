package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/changeprob/internal/ir"
	"github.com/roach88/changeprob/internal/table"
)

// Publication records one publish of a scene table.
type Publication struct {
	ID          string `json:"id"`
	Seq         int64  `json:"seq"`
	TableHash   string `json:"table_hash"`
	TableName   string `json:"table_name"`
	Label       string `json:"label,omitempty"`
	ToolVersion string `json:"tool_version"`
}

// Publish stores the table and appends a publication record for it.
//
// Table rows are keyed by content hash and written with ON CONFLICT DO
// NOTHING, so publishing an unchanged table only adds a publication. The
// publication seq is one past the current maximum, assigned inside the same
// transaction.
func (s *Store) Publish(ctx context.Context, tb *table.Table, label string) (Publication, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Publication{}, fmt.Errorf("publish: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := writeTable(ctx, tx, tb.Hash(), tb.IR()); err != nil {
		return Publication{}, fmt.Errorf("publish: %w", err)
	}

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM publications`).Scan(&seq); err != nil {
		return Publication{}, fmt.Errorf("publish: next seq: %w", err)
	}

	pub := Publication{
		ID:          s.ids.Generate(),
		Seq:         seq,
		TableHash:   tb.Hash(),
		TableName:   tb.Name(),
		Label:       label,
		ToolVersion: ir.ToolVersion,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO publications (id, seq, table_hash, label, tool_version)
		VALUES (?, ?, ?, ?, ?)
	`, pub.ID, pub.Seq, pub.TableHash, pub.Label, pub.ToolVersion)
	if err != nil {
		return Publication{}, fmt.Errorf("publish: insert publication: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Publication{}, fmt.Errorf("publish: commit: %w", err)
	}
	return pub, nil
}

// writeTable inserts the table and its child rows unless the hash is
// already stored.
func writeTable(ctx context.Context, tx *sql.Tx, hash string, t *ir.SceneTable) error {
	choices, err := marshalStrings(t.Choices)
	if err != nil {
		return err
	}
	colors, err := marshalColors(t.Colors)
	if err != nil {
		return err
	}
	hit, err := marshalHIT(t.HIT)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO scene_tables (hash, name, ir_version, choices, colors, hit)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO NOTHING
	`, hash, t.Name, ir.IRVersion, choices, colors, hit)
	if err != nil {
		return fmt.Errorf("insert scene table: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert scene table: %w", err)
	}
	if n == 0 {
		// Same hash, same content.
		return nil
	}

	for i, p := range t.Prompts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO prompts (table_hash, idx, horizon, text)
			VALUES (?, ?, ?, ?)
		`, hash, i, p.Horizon, p.Text)
		if err != nil {
			return fmt.Errorf("insert prompt %d: %w", i, err)
		}
	}

	for i, scene := range t.Scenes {
		sceneHash, err := ir.SceneHash(scene)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO scenes (table_hash, idx, image, scene_hash)
			VALUES (?, ?, ?, ?)
		`, hash, i, scene.Image, sceneHash)
		if err != nil {
			return fmt.Errorf("insert scene %d: %w", i, err)
		}

		for j, o := range scene.Objects {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO objects (table_hash, scene_idx, slot, color, label, change_target)
				VALUES (?, ?, ?, ?, ?, ?)
			`, hash, i, j, string(o.Color), o.Label, o.ChangeTarget)
			if err != nil {
				return fmt.Errorf("insert object %d of scene %d: %w", j, i, err)
			}
		}
	}

	return nil
}
