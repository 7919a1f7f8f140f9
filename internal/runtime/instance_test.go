package runtime_test

import (
	"context"
	"testing"

	"github.com/reelvm/reel/internal/runtime"
	"github.com/reelvm/reel/pkg/adapters/memory"
	"github.com/reelvm/reel/pkg/domain"
)

func TestInstance_WaitThenCheckThenSet(t *testing.T) {
	ctx := context.Background()
	vars := memory.NewVariables()
	vars.Set("gate_seen", domain.IntValue(1))

	s := runtime.NewScheduler(
		runtime.WithVariables(vars),
	)

	g := graph("gate",
		waitNode(2),
		checkNode("gate_seen", domain.NextSequential, domain.TerminalIndex),
		setNode("gate_open", "int", "1"),
	)

	in, err := s.BeginOrJoin(ctx, g, nil, 0)
	if err != nil {
		t.Fatalf("BeginOrJoin failed: %v", err)
	}

	// First second: the wait persists with one second left. The check node
	// must not have evaluated yet.
	s.Tick(ctx, 1.0)
	if in.Status() != domain.StatusWaiting {
		t.Fatalf("after 1s: status = %s, want waiting", in.Status())
	}
	if in.RemainingWait() != 1.0 {
		t.Errorf("after 1s: remaining wait = %v, want 1", in.RemainingWait())
	}
	if _, ok := vars.Get("gate_open"); ok {
		t.Error("set node ran before the wait expired")
	}

	// Second second: the wait expires, the check passes and the set node
	// runs, all within one tick.
	s.Tick(ctx, 1.0)
	if in.Status() != domain.StatusCompleted {
		t.Fatalf("after 2s: status = %s, want completed", in.Status())
	}
	v, ok := vars.Get("gate_open")
	if !ok || v.Int() != 1 {
		t.Errorf("gate_open = %v (set %v), want 1", v, ok)
	}
	if s.Active() != 0 {
		t.Errorf("completed instance still scheduled: %d active", s.Active())
	}
}

func TestInstance_CheckFailEdgeTerminates(t *testing.T) {
	ctx := context.Background()
	vars := memory.NewVariables()

	s := runtime.NewScheduler(runtime.WithVariables(vars))
	g := graph("gate",
		checkNode("never_set", domain.NextSequential, domain.TerminalIndex),
		setNode("reached", "int", "1"),
	)

	if _, err := s.BeginOrJoin(ctx, g, nil, 0); err != nil {
		t.Fatalf("BeginOrJoin failed: %v", err)
	}
	s.Tick(ctx, 0.016)

	if _, ok := vars.Get("reached"); ok {
		t.Error("fail edge should have bypassed the set node")
	}
	if s.Active() != 0 {
		t.Errorf("instance should have terminated, %d active", s.Active())
	}
}

func TestInstance_ZeroWaitCascadeIsAtomic(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}

	s := runtime.NewScheduler(runtime.WithDispatcher(rec))
	g := graph("burst",
		sayNode("a", "one", 0),
		sayNode("a", "two", 0),
		sayNode("a", "three", 0),
	)

	if _, err := s.BeginOrJoin(ctx, g, nil, 0); err != nil {
		t.Fatalf("BeginOrJoin failed: %v", err)
	}
	s.Tick(ctx, 0.016)

	says := rec.says()
	if len(says) != 3 {
		t.Fatalf("zero-wait nodes should cascade in one tick, got %d says", len(says))
	}
	if says[0].Line != "one" || says[2].Line != "three" {
		t.Errorf("order wrong: %+v", says)
	}
	if s.Active() != 0 {
		t.Error("instance should complete within the tick")
	}
}

func TestInstance_SayHoldsForDuration(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}

	s := runtime.NewScheduler(runtime.WithDispatcher(rec))
	g := graph("talk",
		sayNode("guard", "Halt!", 2),
		sayNode("guard", "Proceed.", 0),
	)

	in, err := s.BeginOrJoin(ctx, g, nil, 0)
	if err != nil {
		t.Fatalf("BeginOrJoin failed: %v", err)
	}

	s.Tick(ctx, 1.0)
	if got := len(rec.says()); got != 1 {
		t.Fatalf("after 1s: %d says, want 1 (hold in progress)", got)
	}
	if in.Status() != domain.StatusWaiting {
		t.Errorf("status = %s, want waiting", in.Status())
	}

	s.Tick(ctx, 1.0)
	if got := len(rec.says()); got != 2 {
		t.Errorf("after 2s: %d says, want 2", got)
	}
}

func TestInstance_MoveSpansTicks(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}

	s := runtime.NewScheduler(runtime.WithDispatcher(rec))
	g := graph("walk",
		normal(domain.StepMove, map[string]any{
			"object":   "npc",
			"target":   "10,0,5",
			"duration": 3.0,
		}),
		markNode(),
	)

	in, err := s.BeginOrJoin(ctx, g, nil, 0)
	if err != nil {
		t.Fatalf("BeginOrJoin failed: %v", err)
	}

	s.Tick(ctx, 1.0)
	moves := rec.moves()
	if len(moves) != 1 {
		t.Fatalf("move request should dispatch once on entry, got %d", len(moves))
	}
	if moves[0].Target != (domain.Vector3{X: 10, Z: 5}) || moves[0].Teleport {
		t.Errorf("move payload wrong: %+v", moves[0])
	}
	if in.Status() != domain.StatusRunning {
		t.Errorf("mid-move status = %s, want running", in.Status())
	}

	s.Tick(ctx, 1.0)
	s.Tick(ctx, 1.0)
	if in.Status() != domain.StatusCompleted {
		t.Errorf("after 3s of movement: status = %s, want completed", in.Status())
	}
	if len(rec.moves()) != 1 {
		t.Errorf("move must not re-dispatch while in progress, got %d", len(rec.moves()))
	}
}

func TestInstance_TrailingWaitEndsRunImmediately(t *testing.T) {
	ctx := context.Background()
	s := runtime.NewScheduler()

	// A wait whose success edge resolves to the terminal sentinel has
	// nothing to delay; the instance completes on the tick that runs it.
	g := graph("outro", waitNode(2))

	in, err := s.BeginOrJoin(ctx, g, nil, 0)
	if err != nil {
		t.Fatalf("BeginOrJoin failed: %v", err)
	}
	s.Tick(ctx, 1)

	if in.Status() != domain.StatusCompleted {
		t.Fatalf("status = %s, want completed", in.Status())
	}
	if in.RemainingWait() != 0 {
		t.Errorf("remaining wait = %v, want 0", in.RemainingWait())
	}
	if s.Active() != 0 {
		t.Errorf("completed instance still scheduled: %d active", s.Active())
	}
}

func TestInstance_StartFromIndex(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}

	s := runtime.NewScheduler(runtime.WithDispatcher(rec))
	g := graph("mid",
		sayNode("a", "skipped by start index", 0),
		sayNode("a", "first visible", 0),
	)

	if _, err := s.BeginOrJoin(ctx, g, nil, 1); err != nil {
		t.Fatalf("BeginOrJoin failed: %v", err)
	}
	s.Tick(ctx, 0.016)

	says := rec.says()
	if len(says) != 1 || says[0].Line != "first visible" {
		t.Errorf("start index not honored: %+v", says)
	}
}

func TestInstance_StartIndexOutOfRangeCompletesImmediately(t *testing.T) {
	ctx := context.Background()
	s := runtime.NewScheduler()
	g := graph("short", sayNode("a", "x", 0))

	in, err := s.BeginOrJoin(ctx, g, nil, 99)
	if err != nil {
		t.Fatalf("BeginOrJoin failed: %v", err)
	}
	if in.Status() != domain.StatusCompleted {
		t.Errorf("out-of-range start should complete, got %s", in.Status())
	}
}

func TestInstance_AuthoringErrorDropsOnlyThatInstance(t *testing.T) {
	ctx := context.Background()
	vars := memory.NewVariables()

	s := runtime.NewScheduler(runtime.WithVariables(vars))

	bad := graph("bad", normal("explode", nil))
	good := graph("good", setNode("survived", "int", "1"))

	if _, err := s.BeginOrJoin(ctx, bad, nil, 0); err != nil {
		t.Fatalf("BeginOrJoin(bad) failed: %v", err)
	}
	if _, err := s.BeginOrJoin(ctx, good, nil, 0); err != nil {
		t.Fatalf("BeginOrJoin(good) failed: %v", err)
	}

	s.Tick(ctx, 0.016)

	if _, ok := vars.Get("survived"); !ok {
		t.Error("sibling instance should run to completion despite the bad one")
	}
	if s.Active() != 0 {
		t.Errorf("both instances should be gone, %d active", s.Active())
	}
}

func TestInstance_ResetParamsAfterRun(t *testing.T) {
	ctx := context.Background()
	vars := memory.NewVariables()

	s := runtime.NewScheduler(runtime.WithVariables(vars))

	g := graph("oneshot",
		normal(domain.StepVarSet, map[string]any{
			"variable":    "result",
			"value_param": "payload",
		}),
	)
	g.Policy.ResetParamsAfterRun = true
	g.Params = []domain.ParamDef{
		{ID: "payload", Type: domain.TypeString, Default: domain.StringValue("default")},
	}

	_, err := s.BeginOrJoin(ctx, g, []domain.Override{
		{ID: "payload", Value: domain.StringValue("custom")},
	}, 0)
	if err != nil {
		t.Fatalf("BeginOrJoin failed: %v", err)
	}
	s.Tick(ctx, 0.016)

	if v, _ := vars.Get("result"); v.Str() != "custom" {
		t.Errorf("override not used: %v", v)
	}

	// A later run without overrides must see the declared default, not the
	// previous run's argument.
	if _, err := s.BeginOrJoin(ctx, g, nil, 0); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	s.Tick(ctx, 0.016)
	if v, _ := vars.Get("result"); v.Str() != "default" {
		t.Errorf("params not reset after run: %v", v)
	}
}
