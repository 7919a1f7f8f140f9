package dsl

import (
	"fmt"

	"github.com/reelvm/reel/pkg/domain"
)

// NodeBuilder configures the most recently added node. It embeds the
// GraphBuilder, so authoring chains continue seamlessly onto the next node.
type NodeBuilder struct {
	*GraphBuilder
	idx int
}

func (n *NodeBuilder) node() *domain.Node {
	return &n.graph.Nodes[n.idx]
}

// Arg sets a raw step argument on this node.
func (n *NodeBuilder) Arg(key string, value any) *NodeBuilder {
	step := &n.node().Step
	if step.Args == nil {
		step.Args = make(map[string]any)
	}
	step.Args[key] = value
	return n
}

// LineParam binds a say node's line to a graph parameter.
func (n *NodeBuilder) LineParam(param string) *NodeBuilder {
	return n.Arg("line_param", param)
}

// For sets a say node's on-screen hold duration in seconds.
func (n *NodeBuilder) For(seconds float64) *NodeBuilder {
	return n.Arg("duration", seconds)
}

// FromParam binds the primary argument of this node's step kind to a graph
// parameter: wait seconds, varset value, move target, item id, or graph id.
func (n *NodeBuilder) FromParam(param string) *NodeBuilder {
	var key string
	switch n.node().Step.Kind {
	case domain.StepWait:
		key = "seconds_param"
	case domain.StepVarSet:
		key = "value_param"
	case domain.StepMove:
		key = "target_param"
	case domain.StepItemAdd, domain.StepItemTake:
		key = "item_param"
	case domain.StepRunGraph:
		key = "graph_param"
	default:
		n.fail(fmt.Errorf("dsl: FromParam is not supported on %q nodes", n.node().Step.Kind))
		return n
	}
	return n.Arg(key, param)
}

// Forward lists parameter ids whose bound values a rungraph node passes on
// as overrides.
func (n *NodeBuilder) Forward(params ...string) *NodeBuilder {
	return n.Arg("forward", params)
}

// NotSkippable exempts this node from the skip fast-forward: it always runs
// its normal path.
func (n *NodeBuilder) NotSkippable() *NodeBuilder {
	n.node().Skippable = false
	return n
}

// JumpTo declares an explicit jump target instead of sequential advance.
func (n *NodeBuilder) JumpTo(idx int) *NodeBuilder {
	n.node().Next = idx
	return n
}

// End terminates the instance after this node.
func (n *NodeBuilder) End() *NodeBuilder {
	n.node().Next = domain.TerminalIndex
	return n
}

// PassTo sets the success edge of a Check node.
func (n *NodeBuilder) PassTo(idx int) *NodeBuilder {
	return n.edge(true, idx)
}

// FailTo sets the failure edge of a Check node.
func (n *NodeBuilder) FailTo(idx int) *NodeBuilder {
	return n.edge(false, idx)
}

// PassEnd terminates the instance on the success edge.
func (n *NodeBuilder) PassEnd() *NodeBuilder {
	return n.edge(true, domain.TerminalIndex)
}

// FailEnd terminates the instance on the failure edge.
func (n *NodeBuilder) FailEnd() *NodeBuilder {
	return n.edge(false, domain.TerminalIndex)
}

func (n *NodeBuilder) edge(pass bool, idx int) *NodeBuilder {
	node := n.node()
	if node.Kind != domain.NodeCheck {
		n.fail(fmt.Errorf("dsl: node %d is not a check node", n.idx))
		return n
	}
	if pass {
		node.Pass = idx
	} else {
		node.Fail = idx
	}
	return n
}
