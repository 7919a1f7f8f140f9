package ports

import (
	"context"

	"github.com/reelvm/reel/pkg/domain"
)

// SnapshotStore defines the interface for persisting execution snapshots.
// This enables save/resume across scene boundaries and process restarts.
type SnapshotStore interface {
	// Save persists the snapshot under the given slot id.
	Save(ctx context.Context, slotID string, snap *domain.Snapshot) error

	// Load retrieves the snapshot for a slot.
	// Returns domain.ErrSaveNotFound if the slot does not exist.
	Load(ctx context.Context, slotID string) (*domain.Snapshot, error)

	// Delete removes the slot.
	Delete(ctx context.Context, slotID string) error

	// List returns all known slot ids.
	List(ctx context.Context) ([]string, error)
}
