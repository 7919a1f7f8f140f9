// Package memory provides in-process implementations of the engine's
// collaborator ports: a graph library and the variable/inventory systems.
// Hosts embed these directly; tests use them as lightweight fakes.
package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/reelvm/reel/pkg/domain"
)

// Library is an in-memory graph library.
type Library struct {
	mu     sync.RWMutex
	graphs map[string]*domain.Graph
}

// NewLibrary creates an empty library.
func NewLibrary() *Library {
	return &Library{graphs: make(map[string]*domain.Graph)}
}

// Add registers a graph under its own id. Re-adding replaces the previous
// definition; live instances keep the graph they started with.
func (l *Library) Add(g *domain.Graph) error {
	if g == nil || g.ID == "" {
		return fmt.Errorf("library: graph without id")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.graphs[g.ID] = g
	return nil
}

// Graph resolves a graph id.
func (l *Library) Graph(id string) (*domain.Graph, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	g, ok := l.graphs[id]
	if !ok {
		return nil, fmt.Errorf("library: %q: %w", id, domain.ErrGraphNotFound)
	}
	return g, nil
}

// ListGraphs returns all known ids, sorted for stable output.
func (l *Library) ListGraphs() ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.graphs))
	for id := range l.graphs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
