package domain

// Node routing sentinels. TerminalIndex ends the instance; NextSequential
// means "advance to the following node".
const (
	TerminalIndex  = -1
	NextSequential = -2
)

// NodeKind constants define the control-flow shape of a node.
const (
	// NodeNormal has a single success edge.
	NodeNormal = "normal"
	// NodeCheck selects between declared pass/fail edges.
	NodeCheck = "check"
)

// Step kind constants define the closed set of executable step variants.
const (
	StepWait     = "wait"
	StepSay      = "say"
	StepMove     = "move"
	StepVarSet   = "varset"
	StepVarCheck = "varcheck"
	StepItemAdd  = "itemadd"
	StepItemTake = "itemtake"
	StepRunGraph = "rungraph"
	StepComment  = "comment"
)

// Step is the data payload of a node: a kind from the closed variant set
// plus its raw arguments. The runtime decodes Args per kind.
type Step struct {
	Kind string         `json:"kind" yaml:"kind"`
	Args map[string]any `json:"args,omitempty" yaml:"args,omitempty"`
}

// Node represents one executable step in a graph. A node is identified by
// its position within its owning graph and never outlives it.
type Node struct {
	Kind      string `json:"kind" yaml:"kind"`
	Skippable bool   `json:"skippable" yaml:"skippable"`

	// Next is the explicit jump target for Normal nodes, or NextSequential.
	Next int `json:"next" yaml:"next"`
	// Pass and Fail are the branch targets for Check nodes.
	Pass int `json:"pass,omitempty" yaml:"pass,omitempty"`
	Fail int `json:"fail,omitempty" yaml:"fail,omitempty"`

	Step Step `json:"step" yaml:"step"`
}

// NormalNode builds a sequential Normal node. Callers adjust Next afterwards
// for explicit jumps.
func NormalNode(step Step) Node {
	return Node{Kind: NodeNormal, Skippable: true, Next: NextSequential, Step: step}
}

// CheckNode builds a Check node with explicit branch targets.
func CheckNode(step Step, pass, fail int) Node {
	return Node{Kind: NodeCheck, Skippable: true, Next: NextSequential, Pass: pass, Fail: fail, Step: step}
}
