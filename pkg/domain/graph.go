package domain

import "fmt"

// GraphKind distinguishes the two storage forms of a graph. Both expose an
// identical execution contract.
type GraphKind string

const (
	// GraphAsset is a shared graph with a lifetime independent of any scene.
	GraphAsset GraphKind = "asset"
	// GraphInline is owned by a scene object.
	GraphInline GraphKind = "inline"
)

// Policy is the execution policy of a graph.
type Policy struct {
	// Skippable allows the whole run to be fast-forwarded on request.
	Skippable bool `json:"skippable" yaml:"skippable"`
	// BlocksGameplay gates ordinary input while an instance is live.
	BlocksGameplay bool `json:"blocks_gameplay" yaml:"blocks_gameplay"`
	// AllowMultiple permits concurrent instances of the same graph.
	AllowMultiple bool `json:"allow_multiple" yaml:"allow_multiple"`
	// SurviveSceneChange keeps instances alive across scene unloads.
	SurviveSceneChange bool `json:"survive_scene_change" yaml:"survive_scene_change"`
	// ResetParamsAfterRun restores bindings to defaults on completion.
	ResetParamsAfterRun bool `json:"reset_params_after_run" yaml:"reset_params_after_run"`
}

// Graph is an ordered, addressable list of nodes plus parameter declarations
// and an execution policy. Node references are plain integer indices.
type Graph struct {
	ID     string     `json:"id" yaml:"id"`
	Kind   GraphKind  `json:"graph_kind" yaml:"graph_kind"`
	Policy Policy     `json:"policy" yaml:"policy"`
	Params []ParamDef `json:"params,omitempty" yaml:"params,omitempty"`
	Nodes  []Node     `json:"nodes" yaml:"nodes"`
}

// Node returns the node at index i, or nil when i is out of range or the
// terminal sentinel.
func (g *Graph) Node(i int) *Node {
	if i < 0 || i >= len(g.Nodes) {
		return nil
	}
	return &g.Nodes[i]
}

// Param returns the declaration for a parameter id, or nil when the graph
// does not declare it.
func (g *Graph) Param(id string) *ParamDef {
	for i := range g.Params {
		if g.Params[i].ID == id {
			return &g.Params[i]
		}
	}
	return nil
}

// ClampIndex validates a start index, collapsing anything out of range to
// the terminal sentinel.
func (g *Graph) ClampIndex(i int) int {
	if i < 0 || i >= len(g.Nodes) {
		return TerminalIndex
	}
	return i
}

// NextIndex resolves the successor of the node at index from. Normal nodes
// advance to from+1 unless they declare an explicit jump target; Check nodes
// choose the pass or fail edge from outcome. Any target outside the graph's
// bounds collapses to TerminalIndex.
func (g *Graph) NextIndex(from int, outcome bool) int {
	node := g.Node(from)
	if node == nil {
		return TerminalIndex
	}

	var target int
	switch node.Kind {
	case NodeCheck:
		if outcome {
			target = node.Pass
		} else {
			target = node.Fail
		}
	default:
		target = node.Next
	}
	if target == NextSequential {
		target = from + 1
	}

	return g.ClampIndex(target)
}

// Validate performs the authoring checks that can be done without running:
// duplicate parameter ids, typed defaults disagreeing with their declaration,
// and structurally invalid nodes.
func (g *Graph) Validate() error {
	if g.ID == "" {
		return &AuthoringError{GraphID: g.ID, NodeIndex: TerminalIndex, Reason: "graph id is empty"}
	}

	seen := make(map[string]struct{}, len(g.Params))
	for _, p := range g.Params {
		if p.ID == "" {
			return &AuthoringError{GraphID: g.ID, NodeIndex: TerminalIndex, Reason: "parameter with empty id"}
		}
		if _, dup := seen[p.ID]; dup {
			return &AuthoringError{GraphID: g.ID, NodeIndex: TerminalIndex, Reason: fmt.Sprintf("duplicate parameter id %q", p.ID)}
		}
		seen[p.ID] = struct{}{}

		if !KnownType(p.Type) {
			return &AuthoringError{GraphID: g.ID, NodeIndex: TerminalIndex, Reason: fmt.Sprintf("parameter %q has unknown type %q", p.ID, p.Type)}
		}
		if !p.Default.IsZero() && p.Default.Type() != p.Type {
			return &AuthoringError{GraphID: g.ID, NodeIndex: TerminalIndex, Reason: fmt.Sprintf("parameter %q default is %q, declared %q", p.ID, p.Default.Type(), p.Type)}
		}
	}

	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Kind != NodeNormal && n.Kind != NodeCheck {
			return &AuthoringError{GraphID: g.ID, NodeIndex: i, Reason: fmt.Sprintf("unknown node kind %q", n.Kind)}
		}
		if n.Step.Kind == "" {
			return &AuthoringError{GraphID: g.ID, NodeIndex: i, Reason: "node has no step kind"}
		}
	}

	return nil
}
