// Package file implements ports.SnapshotStore on the local filesystem,
// storing save slots as JSON files in a configured directory.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/reelvm/reel/pkg/domain"
)

// Store persists snapshots as JSON files.
type Store struct {
	BasePath string
}

// New creates a Store rooted at basePath.
// If basePath is empty, it defaults to ".reel/saves".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".reel", "saves")
	}
	return &Store{BasePath: basePath}
}

// Save persists the snapshot atomically: write to a temp file in the same
// directory, fsync, then rename over the destination.
func (s *Store) Save(ctx context.Context, slotID string, snap *domain.Snapshot) error {
	if slotID == "" {
		return fmt.Errorf("slotID cannot be empty")
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure save directory: %w", err)
	}

	destPath := filepath.Join(s.BasePath, slotID+".json")

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+slotID+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// os.Rename over an existing file fails on Windows, so clear the
	// destination first. The delete+rename window is acceptable for a
	// save-slot store compared to risking a partial file.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing save for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file into place: %w", err)
	}

	return nil
}

// Load retrieves a snapshot from its slot file.
func (s *Store) Load(ctx context.Context, slotID string) (*domain.Snapshot, error) {
	if slotID == "" {
		return nil, fmt.Errorf("slotID cannot be empty")
	}

	data, err := os.ReadFile(filepath.Join(s.BasePath, slotID+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrSaveNotFound
		}
		return nil, fmt.Errorf("failed to read save file: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// Delete removes the slot file.
func (s *Store) Delete(ctx context.Context, slotID string) error {
	if slotID == "" {
		return fmt.Errorf("slotID cannot be empty")
	}

	err := os.Remove(filepath.Join(s.BasePath, slotID+".json"))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete save file: %w", err)
	}
	return nil
}

// List returns all known slot ids.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}

	var slots []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			name := entry.Name()
			slots = append(slots, name[:len(name)-len(".json")])
		}
	}
	return slots, nil
}
