// Package positionstore persists the last reading position of each document.
package positionstore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by Load when a document has no saved position.
// Callers treat it as a fresh start, not a failure.
var ErrNotFound = errors.New("position not found")

// Position is the saved reading position of one document.
type Position struct {
	DocID        string    `json:"doc_id"`
	Path         string    `json:"path,omitempty"`
	Page         int       `json:"page"`
	ScrollOffset int       `json:"scroll_offset"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Store is a durable map from document id to Position.
type Store interface {
	Load(ctx context.Context, docID string) (Position, error)
	Save(ctx context.Context, pos Position) error
	Delete(ctx context.Context, docID string) error
	List(ctx context.Context) ([]Position, error)
	Close() error
}

// Supported drivers for Open.
const (
	DriverDuckDB = "duckdb"
	DriverJSON   = "json"
	DriverMemory = "memory"
)

// Open returns the store for driver at path.
func Open(driver, path string) (Store, error) {
	switch driver {
	case DriverDuckDB:
		return NewDuckDBStore(path)
	case DriverJSON, "":
		return NewFileStore(path)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown position store driver %q", driver)
	}
}

func validate(pos Position) error {
	if pos.DocID == "" {
		return errors.New("position has no document id")
	}
	if pos.Page < 1 {
		return fmt.Errorf("invalid page %d", pos.Page)
	}
	return nil
}
