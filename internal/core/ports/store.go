package ports

import "go.trai.ch/interpose/internal/core/domain"

// SnapshotStore defines the interface for persisting resolution cache snapshots.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type SnapshotStore interface {
	// Load returns the last saved records.
	// Returns nil, nil if nothing was saved yet.
	Load() ([]domain.ResolutionRecord, error)

	// Save replaces the stored records.
	Save(records []domain.ResolutionRecord) error
}
