// Package yamlfile loads graph assets from YAML documents on disk.
//
// One file holds one graph:
//
//	id: intro
//	graph_kind: asset
//	policy:
//	  blocks_gameplay: true
//	params:
//	  - id: greeting
//	    type: string
//	    default: "Hello there"
//	nodes:
//	  - step: {kind: say, line_param: greeting, duration: 1.5}
//	  - step: {kind: wait, seconds: 2}
//	  - kind: check
//	    pass: 3
//	    fail: -1
//	    step: {kind: varcheck, variable: door_open}
//	  - step: {kind: varset, variable: visited, type: int, value: "1"}
package yamlfile

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/reelvm/reel/pkg/adapters/memory"
	"github.com/reelvm/reel/pkg/domain"
)

type paramDoc struct {
	ID      string `yaml:"id"`
	Type    string `yaml:"type"`
	Default string `yaml:"default"`
}

type nodeDoc struct {
	Kind      string         `yaml:"kind"`
	Skippable *bool          `yaml:"skippable"`
	Next      *int           `yaml:"next"`
	Pass      *int           `yaml:"pass"`
	Fail      *int           `yaml:"fail"`
	Step      map[string]any `yaml:"step"`
}

type graphDoc struct {
	ID     string        `yaml:"id"`
	Kind   string        `yaml:"graph_kind"`
	Policy domain.Policy `yaml:"policy"`
	Params []paramDoc    `yaml:"params"`
	Nodes  []nodeDoc     `yaml:"nodes"`
}

// Parse decodes one YAML document into a validated graph.
func Parse(data []byte) (*domain.Graph, error) {
	var doc graphDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid graph document: %w", err)
	}
	return doc.toGraph()
}

func (doc *graphDoc) toGraph() (*domain.Graph, error) {
	g := &domain.Graph{
		ID:     doc.ID,
		Kind:   domain.GraphKind(doc.Kind),
		Policy: doc.Policy,
	}
	if g.Kind == "" {
		g.Kind = domain.GraphAsset
	}

	for _, p := range doc.Params {
		def := domain.ParamDef{ID: p.ID, Type: domain.ParamType(p.Type)}
		if p.Default != "" {
			v, err := domain.ParseValue(def.Type, p.Default)
			if err != nil {
				return nil, &domain.AuthoringError{
					GraphID:   doc.ID,
					NodeIndex: domain.TerminalIndex,
					Reason:    fmt.Sprintf("parameter %q: %v", p.ID, err),
				}
			}
			def.Default = v
		}
		g.Params = append(g.Params, def)
	}

	for i, nd := range doc.Nodes {
		node, err := nd.toNode()
		if err != nil {
			return nil, &domain.AuthoringError{GraphID: doc.ID, NodeIndex: i, Reason: err.Error()}
		}
		g.Nodes = append(g.Nodes, node)
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (nd *nodeDoc) toNode() (domain.Node, error) {
	if len(nd.Step) == 0 {
		return domain.Node{}, fmt.Errorf("node has no step")
	}

	stepKind, ok := nd.Step["kind"].(string)
	if !ok || stepKind == "" {
		return domain.Node{}, fmt.Errorf("step has no kind")
	}
	args := make(map[string]any, len(nd.Step)-1)
	for k, v := range nd.Step {
		if k != "kind" {
			args[k] = v
		}
	}

	node := domain.NormalNode(domain.Step{Kind: stepKind, Args: args})
	if nd.Kind == domain.NodeCheck {
		node = domain.CheckNode(node.Step, domain.NextSequential, domain.TerminalIndex)
	} else if nd.Kind != "" && nd.Kind != domain.NodeNormal {
		return domain.Node{}, fmt.Errorf("unknown node kind %q", nd.Kind)
	}

	if nd.Skippable != nil {
		node.Skippable = *nd.Skippable
	}
	if nd.Next != nil {
		node.Next = *nd.Next
	}
	if nd.Pass != nil {
		node.Pass = *nd.Pass
	}
	if nd.Fail != nil {
		node.Fail = *nd.Fail
	}
	return node, nil
}

// LoadFile reads and parses a single graph document.
func LoadFile(path string) (*domain.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph %s: %w", path, err)
	}
	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// LoadDir parses every .yaml/.yml file in dir into a library.
func LoadDir(dir string) (*memory.Library, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read graph directory: %w", err)
	}

	lib := memory.NewLibrary()
	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		g, err := LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if err := lib.Add(g); err != nil {
			return nil, err
		}
		loaded++
	}
	if loaded == 0 {
		return nil, fmt.Errorf("no graph documents in %s", dir)
	}
	return lib, nil
}
