package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/changeprob/internal/ir"
	"github.com/roach88/changeprob/internal/table"
)

// ReadTable loads the table stored under hash.
// The rows are revalidated and rehashed; a table whose content no longer
// matches its hash is an error. Returns ErrNotFound for unknown hashes.
func (s *Store) ReadTable(ctx context.Context, hash string) (*table.Table, error) {
	t, err := s.readSceneTable(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", hash, err)
	}

	tb, err := table.New(t)
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", hash, err)
	}
	if tb.Hash() != hash {
		return nil, fmt.Errorf("read table %s: content hashes to %s", hash, tb.Hash())
	}
	return tb, nil
}

// readSceneTable assembles the raw records without validation.
func (s *Store) readSceneTable(ctx context.Context, hash string) (*ir.SceneTable, error) {
	var (
		t       ir.SceneTable
		choices string
		colors  string
		hit     string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT name, choices, colors, hit
		FROM scene_tables
		WHERE hash = ?
	`, hash).Scan(&t.Name, &choices, &colors, &hit)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if t.Choices, err = unmarshalStrings(choices); err != nil {
		return nil, err
	}
	if t.Colors, err = unmarshalColors(colors); err != nil {
		return nil, err
	}
	if t.HIT, err = unmarshalHIT(hit); err != nil {
		return nil, err
	}

	if t.Prompts, err = s.readPrompts(ctx, hash); err != nil {
		return nil, err
	}
	if t.Scenes, err = s.readScenes(ctx, hash); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) readPrompts(ctx context.Context, hash string) ([]ir.Prompt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT horizon, text
		FROM prompts
		WHERE table_hash = ?
		ORDER BY idx ASC
	`, hash)
	if err != nil {
		return nil, fmt.Errorf("query prompts: %w", err)
	}
	defer rows.Close()

	var prompts []ir.Prompt
	for rows.Next() {
		var p ir.Prompt
		if err := rows.Scan(&p.Horizon, &p.Text); err != nil {
			return nil, fmt.Errorf("scan prompt: %w", err)
		}
		prompts = append(prompts, p)
	}
	return prompts, rows.Err()
}

func (s *Store) readScenes(ctx context.Context, hash string) ([]ir.Scene, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT image
		FROM scenes
		WHERE table_hash = ?
		ORDER BY idx ASC
	`, hash)
	if err != nil {
		return nil, fmt.Errorf("query scenes: %w", err)
	}
	var scenes []ir.Scene
	for rows.Next() {
		var sc ir.Scene
		if err := rows.Scan(&sc.Image); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan scene: %w", err)
		}
		scenes = append(scenes, sc)
	}
	// The single connection must be released before the object queries.
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range scenes {
		objs, err := s.readObjects(ctx, hash, i)
		if err != nil {
			return nil, err
		}
		scenes[i].Objects = objs
	}
	return scenes, nil
}

func (s *Store) readObjects(ctx context.Context, hash string, sceneIdx int) ([]ir.ObjectLabel, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT color, label, change_target
		FROM objects
		WHERE table_hash = ? AND scene_idx = ?
		ORDER BY slot ASC
	`, hash, sceneIdx)
	if err != nil {
		return nil, fmt.Errorf("query objects: %w", err)
	}
	defer rows.Close()

	var objs []ir.ObjectLabel
	for rows.Next() {
		var (
			o     ir.ObjectLabel
			color string
		)
		if err := rows.Scan(&color, &o.Label, &o.ChangeTarget); err != nil {
			return nil, fmt.Errorf("scan object: %w", err)
		}
		o.Color = ir.ColorSlot(color)
		objs = append(objs, o)
	}
	return objs, rows.Err()
}

const publicationColumns = `
	p.id, p.seq, p.table_hash, t.name, p.label, p.tool_version
	FROM publications p
	JOIN scene_tables t ON t.hash = p.table_hash
`

// GetPublication returns the publication with the given id.
func (s *Store) GetPublication(ctx context.Context, id string) (Publication, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+publicationColumns+` WHERE p.id = ?`, id)
	pub, err := scanPublication(row)
	if err != nil {
		return Publication{}, fmt.Errorf("get publication %s: %w", id, err)
	}
	return pub, nil
}

// LatestPublication returns the publication with the highest seq.
// Returns ErrNotFound on an empty store.
func (s *Store) LatestPublication(ctx context.Context) (Publication, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+publicationColumns+` ORDER BY p.seq DESC LIMIT 1`)
	pub, err := scanPublication(row)
	if err != nil {
		return Publication{}, fmt.Errorf("latest publication: %w", err)
	}
	return pub, nil
}

// ListPublications returns every publication in seq order.
func (s *Store) ListPublications(ctx context.Context) ([]Publication, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+publicationColumns+` ORDER BY p.seq ASC, p.id ASC COLLATE BINARY`)
	if err != nil {
		return nil, fmt.Errorf("list publications: %w", err)
	}
	defer rows.Close()

	var pubs []Publication
	for rows.Next() {
		pub, err := scanPublication(rows)
		if err != nil {
			return nil, fmt.Errorf("list publications: %w", err)
		}
		pubs = append(pubs, pub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list publications: %w", err)
	}
	return pubs, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPublication(sc scanner) (Publication, error) {
	var pub Publication
	err := sc.Scan(&pub.ID, &pub.Seq, &pub.TableHash, &pub.TableName, &pub.Label, &pub.ToolVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return Publication{}, ErrNotFound
	}
	if err != nil {
		return Publication{}, err
	}
	return pub, nil
}
