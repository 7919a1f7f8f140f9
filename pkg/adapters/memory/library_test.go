package memory_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelvm/reel/pkg/adapters/memory"
	"github.com/reelvm/reel/pkg/domain"
	"github.com/reelvm/reel/pkg/dsl"
)

func mustGraph(t *testing.T, id string) *domain.Graph {
	t.Helper()
	g, err := dsl.NewGraph(id).Wait(1).Build()
	require.NoError(t, err)
	return g
}

func TestLibrary_AddAndGet(t *testing.T) {
	lib := memory.NewLibrary()
	g := mustGraph(t, "intro")
	require.NoError(t, lib.Add(g))

	got, err := lib.Graph("intro")
	require.NoError(t, err)
	assert.Same(t, g, got)
}

func TestLibrary_AddRejectsNil(t *testing.T) {
	lib := memory.NewLibrary()
	assert.Error(t, lib.Add(nil))
}

func TestLibrary_UnknownGraph(t *testing.T) {
	lib := memory.NewLibrary()
	_, err := lib.Graph("ghost")
	assert.True(t, errors.Is(err, domain.ErrGraphNotFound))
}

func TestLibrary_ListGraphsSorted(t *testing.T) {
	lib := memory.NewLibrary()
	for _, id := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, lib.Add(mustGraph(t, id)))
	}

	ids, err := lib.ListGraphs()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, ids)
}
