package positionstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/wethinkt/go-folio/internal/tuilog"
)

const positionsSchema = `
CREATE TABLE IF NOT EXISTS reading_positions (
    doc_id VARCHAR PRIMARY KEY,
    path VARCHAR,
    page INTEGER NOT NULL,
    scroll_offset INTEGER DEFAULT 0,
    updated_at TIMESTAMP
);
`

// DuckDBStore keeps positions in a DuckDB database file.
type DuckDBStore struct {
	db   *sql.DB
	path string
}

// NewDuckDBStore opens (or creates) the database at path.
func NewDuckDBStore(path string) (*DuckDBStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if _, err := db.Exec(positionsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize positions schema: %w", err)
	}
	if _, err := db.Exec("SET enable_external_access=false"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set security settings: %w", err)
	}

	tuilog.Log.Info("DuckDBStore: opened", "path", path)
	return &DuckDBStore{db: db, path: path}, nil
}

func (s *DuckDBStore) Load(ctx context.Context, docID string) (Position, error) {
	var (
		pos     = Position{DocID: docID}
		path    sql.NullString
		updated sql.NullTime
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT path, page, scroll_offset, updated_at FROM reading_positions WHERE doc_id = ?`,
		docID,
	).Scan(&path, &pos.Page, &pos.ScrollOffset, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Position{}, ErrNotFound
	}
	if err != nil {
		return Position{}, fmt.Errorf("load position: %w", err)
	}
	pos.Path = path.String
	pos.UpdatedAt = updated.Time
	return pos, nil
}

func (s *DuckDBStore) Save(ctx context.Context, pos Position) error {
	if err := validate(pos); err != nil {
		return err
	}
	if pos.UpdatedAt.IsZero() {
		pos.UpdatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO reading_positions (doc_id, path, page, scroll_offset, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		pos.DocID, pos.Path, pos.Page, pos.ScrollOffset, pos.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save position: %w", err)
	}
	return nil
}

func (s *DuckDBStore) Delete(ctx context.Context, docID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reading_positions WHERE doc_id = ?`, docID)
	if err != nil {
		return fmt.Errorf("delete position: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DuckDBStore) List(ctx context.Context) ([]Position, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT doc_id, path, page, scroll_offset, updated_at
		FROM reading_positions
		ORDER BY updated_at DESC, doc_id`)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	defer rows.Close()

	var out []Position
	for rows.Next() {
		var (
			pos     Position
			path    sql.NullString
			updated sql.NullTime
		)
		if err := rows.Scan(&pos.DocID, &path, &pos.Page, &pos.ScrollOffset, &updated); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		pos.Path = path.String
		pos.UpdatedAt = updated.Time
		out = append(out, pos)
	}
	return out, rows.Err()
}

func (s *DuckDBStore) Close() error {
	return s.db.Close()
}
