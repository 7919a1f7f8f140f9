package session_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelvm/reel/pkg/adapters/file"
	"github.com/reelvm/reel/pkg/domain"
	"github.com/reelvm/reel/pkg/session"
)

func newManager(t *testing.T) *session.Manager {
	t.Helper()
	return session.NewManager(file.New(t.TempDir()))
}

func TestManager_SaveLoadRoundTrip(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	snap := &domain.Snapshot{
		Instances: []domain.InstanceSnapshot{{GraphID: "intro", Ordinal: 1, NodeIndex: 3}},
	}

	slot, err := m.Save(ctx, "slot-1", snap)
	require.NoError(t, err)
	assert.Equal(t, "slot-1", slot)

	loaded, err := m.Load(ctx, "slot-1")
	require.NoError(t, err)
	require.Len(t, loaded.Instances, 1)
	assert.Equal(t, 3, loaded.Instances[0].NodeIndex)
}

func TestManager_GeneratesSlotID(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	slot, err := m.Save(ctx, "", &domain.Snapshot{})
	require.NoError(t, err)
	assert.NotEmpty(t, slot, "an empty slot id should be generated")

	slots, err := m.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, slots, slot)
}

func TestManager_Delete(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	_, err := m.Save(ctx, "doomed", &domain.Snapshot{})
	require.NoError(t, err)
	require.NoError(t, m.Delete(ctx, "doomed"))

	_, err = m.Load(ctx, "doomed")
	assert.ErrorIs(t, err, domain.ErrSaveNotFound)
}

func TestManager_WithLockSerializesSlotAccess(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	const writers = 16
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.WithLock(ctx, "shared", func(context.Context) error {
				counter++ // data race without the per-slot lock
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, writers, counter)
}

func TestManager_IndependentSlotsDoNotBlock(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	release := make(chan struct{})
	holding := make(chan struct{})

	go func() {
		_ = m.WithLock(ctx, "slot-a", func(context.Context) error {
			close(holding)
			<-release
			return nil
		})
	}()

	<-holding
	// slot-b must proceed while slot-a's lock is held.
	err := m.WithLock(ctx, "slot-b", func(context.Context) error { return nil })
	assert.NoError(t, err)
	close(release)
}
