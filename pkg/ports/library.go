package ports

import "github.com/reelvm/reel/pkg/domain"

// GraphLibrary resolves graph identities to definitions. It backs both
// authored "run graph" steps and save restoration, where only the identity
// is persisted.
type GraphLibrary interface {
	// Graph returns the graph for an id.
	// Returns domain.ErrGraphNotFound when the id is unknown.
	Graph(id string) (*domain.Graph, error)

	// ListGraphs returns the ids of every known graph.
	ListGraphs() ([]string, error)
}
