package dsl

import (
	"testing"

	"github.com/reelvm/reel/pkg/domain"
)

func TestBuilder_SimpleFlow(t *testing.T) {
	g, err := NewGraph("intro").
		Say("guard", "Halt!").For(2).
		Wait(1.5).
		SetVar("gate_open", domain.IntValue(1)).
		Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if g.ID != "intro" {
		t.Errorf("graph id = %q, want intro", g.ID)
	}
	if g.Kind != domain.GraphAsset {
		t.Errorf("graph kind = %q, want asset", g.Kind)
	}
	if !g.Policy.Skippable {
		t.Error("default policy should be skippable")
	}
	if len(g.Nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(g.Nodes))
	}

	say := g.Nodes[0]
	if say.Kind != domain.NodeNormal || say.Step.Kind != domain.StepSay {
		t.Errorf("node 0 = %s/%s, want normal/say", say.Kind, say.Step.Kind)
	}
	if say.Step.Args["speaker"] != "guard" || say.Step.Args["duration"] != 2.0 {
		t.Errorf("say args wrong: %v", say.Step.Args)
	}
	if say.Next != domain.NextSequential {
		t.Errorf("say node should advance sequentially, got %d", say.Next)
	}

	set := g.Nodes[2]
	if set.Step.Args["type"] != "int" || set.Step.Args["value"] != "1" {
		t.Errorf("varset args wrong: %v", set.Step.Args)
	}
}

func TestBuilder_CheckEdges(t *testing.T) {
	g, err := NewGraph("gate").
		CheckVar("has_key").PassTo(2).FailEnd().
		Comment("unreachable without key").
		Say("guard", "Enter.").
		Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	check := g.Nodes[0]
	if check.Kind != domain.NodeCheck {
		t.Fatalf("node 0 kind = %q, want check", check.Kind)
	}
	if check.Pass != 2 {
		t.Errorf("pass edge = %d, want 2", check.Pass)
	}
	if check.Fail != domain.TerminalIndex {
		t.Errorf("fail edge = %d, want terminal", check.Fail)
	}
}

func TestBuilder_CheckDefaultsToSequentialPass(t *testing.T) {
	g, err := NewGraph("gate").
		Check(`score > 10`).
		Say("announcer", "High score!").
		Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if got := g.NextIndex(0, true); got != 1 {
		t.Errorf("pass edge should default to next node, got %d", got)
	}
	if got := g.NextIndex(0, false); got != domain.TerminalIndex {
		t.Errorf("fail edge should default to terminal, got %d", got)
	}
}

func TestBuilder_PolicyChain(t *testing.T) {
	g, err := NewGraph("ambient").
		Inline().
		Blocking().
		Unskippable().
		AllowMultiple().
		SurviveSceneChange().
		ResetParamsAfterRun().
		Comment("policy carrier").
		Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if g.Kind != domain.GraphInline {
		t.Error("Inline() not applied")
	}
	p := g.Policy
	if !p.BlocksGameplay || p.Skippable || !p.AllowMultiple || !p.SurviveSceneChange || !p.ResetParamsAfterRun {
		t.Errorf("policy chain not applied: %+v", p)
	}
}

func TestBuilder_Params(t *testing.T) {
	g, err := NewGraph("parameterized").
		Param("speaker", domain.TypeString, domain.StringValue("narrator")).
		Param("line", domain.TypeString, domain.Value{}).
		Say("", "").LineParam("line").Arg("speaker", "override-me").
		Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if len(g.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(g.Params))
	}
	if g.Params[0].Default.Str() != "narrator" {
		t.Errorf("default not preserved: %v", g.Params[0].Default)
	}
	if g.Nodes[0].Step.Args["line_param"] != "line" {
		t.Errorf("LineParam not applied: %v", g.Nodes[0].Step.Args)
	}
}

func TestBuilder_FromParam(t *testing.T) {
	cases := []struct {
		name    string
		build   func() *NodeBuilder
		wantKey string
	}{
		{"wait", func() *NodeBuilder { return NewGraph("g").Wait(0) }, "seconds_param"},
		{"varset", func() *NodeBuilder { return NewGraph("g").SetVar("v", domain.IntValue(0)) }, "value_param"},
		{"move", func() *NodeBuilder { return NewGraph("g").Move("o", domain.Vector3{}, 1) }, "target_param"},
		{"itemadd", func() *NodeBuilder { return NewGraph("g").AddItem("i", 1) }, "item_param"},
		{"itemtake", func() *NodeBuilder { return NewGraph("g").TakeItem("i", 1) }, "item_param"},
		{"rungraph", func() *NodeBuilder { return NewGraph("g").Run("other") }, "graph_param"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := tc.build().FromParam("p")
			g, err := n.Build()
			if err != nil {
				t.Fatalf("Build() failed: %v", err)
			}
			if g.Nodes[0].Step.Args[tc.wantKey] != "p" {
				t.Errorf("FromParam should set %q, args: %v", tc.wantKey, g.Nodes[0].Step.Args)
			}
		})
	}
}

func TestBuilder_FromParamUnsupportedKind(t *testing.T) {
	_, err := NewGraph("g").Say("a", "b").FromParam("p").Build()
	if err == nil {
		t.Fatal("FromParam on a say node should fail the build")
	}
}

func TestBuilder_EdgeOnNonCheckNode(t *testing.T) {
	_, err := NewGraph("g").Comment("x").PassTo(0).Build()
	if err == nil {
		t.Fatal("PassTo on a normal node should fail the build")
	}
}

func TestBuilder_JumpAndEnd(t *testing.T) {
	g, err := NewGraph("loop").
		Comment("top").
		Wait(1).JumpTo(0).
		Comment("tail").End().
		Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if g.Nodes[1].Next != 0 {
		t.Errorf("JumpTo not applied: %d", g.Nodes[1].Next)
	}
	if g.Nodes[2].Next != domain.TerminalIndex {
		t.Errorf("End not applied: %d", g.Nodes[2].Next)
	}
}

func TestBuilder_NotSkippable(t *testing.T) {
	g, err := NewGraph("g").
		SetVar("critical", domain.IntValue(1)).NotSkippable().
		Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if g.Nodes[0].Skippable {
		t.Error("NotSkippable not applied")
	}
}

func TestBuilder_ValidatesOnBuild(t *testing.T) {
	_, err := NewGraph("").Comment("x").Build()
	if err == nil {
		t.Fatal("empty graph id should fail validation")
	}
}
