package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelvm/reel/pkg/domain"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a
// SnapshotStore implementation adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	slotID := "contract-slot-" + time.Now().Format("20060102150405")

	sample := &domain.Snapshot{
		SavedAt: time.Now().UTC().Truncate(time.Second),
		Instances: []domain.InstanceSnapshot{
			{
				GraphKind:     domain.GraphAsset,
				GraphID:       "intro",
				Ordinal:       1,
				NodeIndex:     2,
				RemainingWait: 1.25,
				Bindings: []domain.ParamSnapshot{
					{ID: "speaker", Type: domain.TypeString, Encoded: "guard"},
					{ID: "delay", Type: domain.TypeFloat, Encoded: "2.5"},
				},
			},
		},
	}

	t.Run("Save and Load", func(t *testing.T) {
		err := store.Save(ctx, slotID, sample)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, slotID)
		require.NoError(t, err, "Load should not return error")
		require.Len(t, loaded.Instances, 1)

		got := loaded.Instances[0]
		assert.Equal(t, "intro", got.GraphID)
		assert.Equal(t, 2, got.NodeIndex)
		assert.Equal(t, 1.25, got.RemainingWait)
		assert.Equal(t, sample.Instances[0].Bindings, got.Bindings)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+slotID)
		assert.ErrorIs(t, err, domain.ErrSaveNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, slotID, sample)
		require.NoError(t, err)

		err = store.Delete(ctx, slotID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, slotID)
		assert.ErrorIs(t, err, domain.ErrSaveNotFound, "Load after Delete should return ErrSaveNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := slotID + "-1"
		id2 := slotID + "-2"
		require.NoError(t, store.Save(ctx, id1, sample))
		require.NoError(t, store.Save(ctx, id2, sample))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		slots, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, slots, id1)
		assert.Contains(t, slots, id2)
	})
}
