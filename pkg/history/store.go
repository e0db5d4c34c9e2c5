// Package history persists per-project conversation transcripts as JSON
// files. The on-disk transcript is authoritative once a turn is
// committed; the resume path hydrates from it without replay.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/johnathanchiu/componentize/pkg/builder/ports"
)

// Store is a file-backed ports.HistoryStore. The transcript for project
// P lives at <dir>/P/history.json.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Load reads the transcript for a project. A missing file is an empty
// transcript, not an error: first-ever cold start.
func (s *Store) Load(projectID string) ([]ports.HistoryRecord, error) {
	data, err := os.ReadFile(s.path(projectID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	var records []ports.HistoryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse history %s: %w", projectID, err)
	}

	return records, nil
}

// Save overwrites the transcript for a project.
func (s *Store) Save(projectID string, records []ports.HistoryRecord) error {
	if err := os.MkdirAll(filepath.Dir(s.path(projectID)), 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := os.WriteFile(s.path(projectID), data, 0o644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}

	return nil
}

// Append loads, appends, and saves in one step.
func (s *Store) Append(projectID string, records ...ports.HistoryRecord) error {
	existing, err := s.Load(projectID)
	if err != nil {
		return err
	}

	return s.Save(projectID, append(existing, records...))
}

func (s *Store) path(projectID string) string {
	return filepath.Join(s.dir, projectID, "history.json")
}
