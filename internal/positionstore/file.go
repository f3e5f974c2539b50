package positionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore keeps every position in a single JSON file, rewritten atomically
// on each change.
type FileStore struct {
	mu   sync.Mutex
	path string
}

type fileFormat struct {
	Positions map[string]Position `json:"positions"`
}

// NewFileStore returns a store backed by the JSON file at path. The file is
// created lazily on the first Save.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("position file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create position store directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Load(_ context.Context, docID string) (Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.read()
	if err != nil {
		return Position{}, err
	}
	pos, ok := data.Positions[docID]
	if !ok {
		return Position{}, ErrNotFound
	}
	return pos, nil
}

func (s *FileStore) Save(_ context.Context, pos Position) error {
	if err := validate(pos); err != nil {
		return err
	}
	if pos.UpdatedAt.IsZero() {
		pos.UpdatedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.read()
	if err != nil {
		return err
	}
	data.Positions[pos.DocID] = pos
	return s.write(data)
}

func (s *FileStore) Delete(_ context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := data.Positions[docID]; !ok {
		return ErrNotFound
	}
	delete(data.Positions, docID)
	return s.write(data)
}

func (s *FileStore) List(_ context.Context) ([]Position, error) {
	s.mu.Lock()
	data, err := s.read()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make([]Position, 0, len(data.Positions))
	for _, p := range data.Positions {
		out = append(out, p)
	}
	sortRecent(out)
	return out, nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) read() (fileFormat, error) {
	data := fileFormat{Positions: make(map[string]Position)}
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return data, fmt.Errorf("read positions: %w", err)
	}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("parse positions %s: %w", s.path, err)
	}
	if data.Positions == nil {
		data.Positions = make(map[string]Position)
	}
	return data, nil
}

func (s *FileStore) write(data fileFormat) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode positions: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0600); err != nil {
		return fmt.Errorf("write positions: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace positions: %w", err)
	}
	return nil
}
