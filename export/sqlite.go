// SPDX-License-Identifier: MIT

package export

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TIMESTAMP NOT NULL,
	levels INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS points (
	run_id TEXT NOT NULL,
	level INTEGER NOT NULL,
	point INTEGER NOT NULL,
	parent INTEGER NOT NULL,
	label INTEGER NOT NULL,
	coords BLOB NOT NULL,
	PRIMARY KEY (run_id, level, point),
	FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);
`

// Store persists hierarchies in a SQLite database, one run per Save.
type Store struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and its schema.
// ":memory:" opens a private in-memory database.
func OpenSQLite(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("OpenSQLite: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("OpenSQLite: %w", err)
	}
	// one connection keeps ":memory:" a single database
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{"PRAGMA foreign_keys=ON", "PRAGMA journal_mode=WAL"} {
		if _, err = db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("OpenSQLite: %s: %w", pragma, err)
		}
	}
	if _, err = db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("OpenSQLite: schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// Save writes every level under runID in one transaction, replacing any
// earlier run with the same id.
func (s *Store) Save(ctx context.Context, runID string, levels []Level) (err error) {
	if len(levels) == 0 {
		return fmt.Errorf("Save: %w", ErrEmpty)
	}
	for _, lv := range levels {
		if err = lv.Validate(); err != nil {
			return fmt.Errorf("Save: %w", err)
		}
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID); err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO runs (id, created_at, levels) VALUES (?, ?, ?)`,
		runID, time.Now().UTC(), len(levels)); err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO points (run_id, level, point, parent, label, coords) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	defer stmt.Close()
	for _, lv := range levels {
		for i, row := range lv.Embedding {
			if _, err = stmt.ExecContext(ctx, runID, lv.Index, i, lv.parent(i), lv.label(i), encodeCoords(row)); err != nil {
				return fmt.Errorf("Save: level %d point %d: %w", lv.Index, i, err)
			}
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	return nil
}

// Runs returns the stored run ids, newest first.
func (s *Store) Runs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("Runs: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("Runs: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Load reads one level of a stored run. Parents is nil when every parent is
// -1, as on level 0.
func (s *Store) Load(ctx context.Context, runID string, level int) (Level, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT parent, label, coords FROM points WHERE run_id = ? AND level = ? ORDER BY point`, runID, level)
	if err != nil {
		return Level{}, fmt.Errorf("Load: %w", err)
	}
	defer rows.Close()

	lv := Level{Index: level}
	hasParent := false
	for rows.Next() {
		var (
			parent, label int
			blob          []byte
		)
		if err = rows.Scan(&parent, &label, &blob); err != nil {
			return Level{}, fmt.Errorf("Load: %w", err)
		}
		coords, err := decodeCoords(blob)
		if err != nil {
			return Level{}, fmt.Errorf("Load: %w", err)
		}
		hasParent = hasParent || parent >= 0
		lv.Parents = append(lv.Parents, parent)
		lv.Labels = append(lv.Labels, label)
		lv.Embedding = append(lv.Embedding, coords)
	}
	if err = rows.Err(); err != nil {
		return Level{}, fmt.Errorf("Load: %w", err)
	}
	if lv.Len() == 0 {
		return Level{}, fmt.Errorf("Load(%s, %d): %w", runID, level, ErrNotFound)
	}
	if !hasParent {
		lv.Parents = nil
	}
	return lv, nil
}

// encodeCoords packs coordinates as little-endian float64 bits.
func encodeCoords(row []float64) []byte {
	buf := make([]byte, 8*len(row))
	for d, x := range row {
		binary.LittleEndian.PutUint64(buf[8*d:], math.Float64bits(x))
	}
	return buf
}

func decodeCoords(buf []byte) ([]float64, error) {
	if len(buf)%8 != 0 {
		return nil, fmt.Errorf("coordinate blob of %d bytes: %w", len(buf), ErrShape)
	}
	row := make([]float64, len(buf)/8)
	for d := range row {
		row[d] = math.Float64frombits(binary.LittleEndian.Uint64(buf[8*d:]))
	}
	return row, nil
}
