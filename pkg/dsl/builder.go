package dsl

import (
	"github.com/reelvm/reel/pkg/domain"
)

// GraphBuilder accumulates nodes, parameters and policy for one graph.
type GraphBuilder struct {
	graph domain.Graph
	err   error
}

// NewGraph starts a builder for an asset graph with the default policy:
// skippable, non-blocking, single-instance.
func NewGraph(id string) *GraphBuilder {
	return &GraphBuilder{
		graph: domain.Graph{
			ID:   id,
			Kind: domain.GraphAsset,
			Policy: domain.Policy{
				Skippable: true,
			},
		},
	}
}

// Inline marks the graph as scene-owned rather than a shared asset.
func (g *GraphBuilder) Inline() *GraphBuilder {
	g.graph.Kind = domain.GraphInline
	return g
}

// Blocking makes live instances of this graph gate gameplay input.
func (g *GraphBuilder) Blocking() *GraphBuilder {
	g.graph.Policy.BlocksGameplay = true
	return g
}

// Unskippable disables fast-forwarding for the whole graph.
func (g *GraphBuilder) Unskippable() *GraphBuilder {
	g.graph.Policy.Skippable = false
	return g
}

// AllowMultiple permits concurrent instances of this graph.
func (g *GraphBuilder) AllowMultiple() *GraphBuilder {
	g.graph.Policy.AllowMultiple = true
	return g
}

// SurviveSceneChange keeps instances alive across scene unloads.
func (g *GraphBuilder) SurviveSceneChange() *GraphBuilder {
	g.graph.Policy.SurviveSceneChange = true
	return g
}

// ResetParamsAfterRun restores bindings to defaults on completion.
func (g *GraphBuilder) ResetParamsAfterRun() *GraphBuilder {
	g.graph.Policy.ResetParamsAfterRun = true
	return g
}

// Param declares a graph parameter with a default value.
func (g *GraphBuilder) Param(id string, t domain.ParamType, def domain.Value) *GraphBuilder {
	g.graph.Params = append(g.graph.Params, domain.ParamDef{ID: id, Type: t, Default: def})
	return g
}

// Step appends a raw node from the closed step set; the typed adders below
// are preferred.
func (g *GraphBuilder) Step(kind string, args map[string]any) *NodeBuilder {
	return g.add(domain.NormalNode(domain.Step{Kind: kind, Args: args}))
}

// Wait appends a timed-delay node.
func (g *GraphBuilder) Wait(seconds float64) *NodeBuilder {
	return g.Step(domain.StepWait, map[string]any{"seconds": seconds})
}

// Say appends a speech node.
func (g *GraphBuilder) Say(speaker, line string) *NodeBuilder {
	return g.Step(domain.StepSay, map[string]any{"speaker": speaker, "line": line})
}

// Move appends a movement node walking object to target over duration.
func (g *GraphBuilder) Move(object string, target domain.Vector3, duration float64) *NodeBuilder {
	return g.Step(domain.StepMove, map[string]any{
		"object":   object,
		"target":   target.String(),
		"duration": duration,
	})
}

// SetVar appends a variable-write node.
func (g *GraphBuilder) SetVar(variable string, v domain.Value) *NodeBuilder {
	return g.Step(domain.StepVarSet, map[string]any{
		"variable": variable,
		"type":     string(v.Type()),
		"value":    v.Encode(),
	})
}

// CheckVar appends a Check node branching on a variable's truthiness.
// Pass defaults to the following node, fail to termination.
func (g *GraphBuilder) CheckVar(variable string) *NodeBuilder {
	return g.addCheck(domain.Step{Kind: domain.StepVarCheck, Args: map[string]any{"variable": variable}})
}

// Check appends a Check node branching on a boolean expression over
// variables and bindings.
func (g *GraphBuilder) Check(condition string) *NodeBuilder {
	return g.addCheck(domain.Step{Kind: domain.StepVarCheck, Args: map[string]any{"condition": condition}})
}

// AddItem appends an inventory-grant node.
func (g *GraphBuilder) AddItem(item string, count int) *NodeBuilder {
	return g.Step(domain.StepItemAdd, map[string]any{"item": item, "count": count})
}

// TakeItem appends an inventory-remove node.
func (g *GraphBuilder) TakeItem(item string, count int) *NodeBuilder {
	return g.Step(domain.StepItemTake, map[string]any{"item": item, "count": count})
}

// Run appends a node queuing another graph.
func (g *GraphBuilder) Run(graphID string) *NodeBuilder {
	return g.Step(domain.StepRunGraph, map[string]any{"graph": graphID})
}

// Comment appends a no-op marker node.
func (g *GraphBuilder) Comment(text string) *NodeBuilder {
	return g.Step(domain.StepComment, map[string]any{"text": text})
}

// Build validates and returns the assembled graph.
func (g *GraphBuilder) Build() (*domain.Graph, error) {
	if g.err != nil {
		return nil, g.err
	}
	if err := g.graph.Validate(); err != nil {
		return nil, err
	}
	graph := g.graph
	return &graph, nil
}

func (g *GraphBuilder) add(node domain.Node) *NodeBuilder {
	g.graph.Nodes = append(g.graph.Nodes, node)
	return &NodeBuilder{GraphBuilder: g, idx: len(g.graph.Nodes) - 1}
}

func (g *GraphBuilder) addCheck(step domain.Step) *NodeBuilder {
	return g.add(domain.CheckNode(step, domain.NextSequential, domain.TerminalIndex))
}

func (g *GraphBuilder) fail(err error) {
	if g.err == nil {
		g.err = err
	}
}
