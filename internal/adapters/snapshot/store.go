// Package snapshot persists resolution cache snapshots as JSON files.
package snapshot

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.trai.ch/interpose/internal/core/domain"
	"go.trai.ch/interpose/internal/core/ports"
	"go.trai.ch/zerr"
)

// FormatVersion is written into every snapshot file.
const FormatVersion = 1

type file struct {
	Version int                       `json:"version"`
	SavedAt time.Time                 `json:"saved_at"`
	Records []domain.ResolutionRecord `json:"records"`
}

// Store implements ports.SnapshotStore using a flat JSON file.
type Store struct {
	path string
	now  func() time.Time
	mu   sync.RWMutex
}

// Opener creates the snapshot store for a path.
type Opener func(path string) (ports.SnapshotStore, error)

// Open is the default Opener.
func Open(path string) (ports.SnapshotStore, error) {
	return NewStore(path)
}

// NewStore creates a new Store backed by the file at the given path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, zerr.Wrap(domain.ErrInvalidConfig, "empty snapshot path")
	}
	return &Store{
		path: filepath.Clean(path),
		now:  time.Now,
	}, nil
}

// Path returns the file the store writes to.
func (s *Store) Path() string { return s.path }

// Load returns the records of the last saved snapshot, nil if there is none.
func (s *Store) Load() ([]domain.ResolutionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.Wrap(err, "failed to read snapshot")
	}

	if len(data) == 0 {
		return nil, nil
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, zerr.Wrap(err, "failed to unmarshal snapshot")
	}
	if f.Version != FormatVersion {
		return nil, zerr.With(zerr.New("unsupported snapshot version"), "version", f.Version)
	}
	return f.Records, nil
}

// Save replaces the snapshot with records. The file is replaced atomically.
func (s *Store) Save(records []domain.ResolutionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if records == nil {
		records = []domain.ResolutionRecord{}
	}
	data, err := json.MarshalIndent(file{
		Version: FormatVersion,
		SavedAt: s.now().UTC(),
		Records: records,
	}, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal snapshot")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create directory for snapshot")
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return zerr.Wrap(err, "failed to create temporary snapshot")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.Wrap(err, "failed to write snapshot")
	}
	if err := tmp.Close(); err != nil {
		return zerr.Wrap(err, "failed to write snapshot")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return zerr.Wrap(err, "failed to replace snapshot")
	}
	return nil
}
