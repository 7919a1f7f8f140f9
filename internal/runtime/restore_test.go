package runtime_test

import (
	"context"
	"testing"

	"github.com/reelvm/reel/internal/runtime"
	"github.com/reelvm/reel/pkg/adapters/memory"
	"github.com/reelvm/reel/pkg/domain"
)

// questGraph is the shared fixture for persistence tests: a wait in the
// middle lets snapshots land mid-delay.
func questGraph() *domain.Graph {
	g := graph("quest",
		setNode("quest_started", "int", "1"),
		waitNode(5),
		setNode("quest_done", "int", "1"),
	)
	g.Params = []domain.ParamDef{
		{ID: "reward", Type: domain.TypeString, Default: domain.StringValue("gold")},
	}
	return g
}

func TestRestore_MidWaitRoundTrip(t *testing.T) {
	ctx := context.Background()
	lib := memory.NewLibrary()
	lib.Add(questGraph())

	vars := memory.NewVariables()
	s := runtime.NewScheduler(
		runtime.WithLibrary(lib),
		runtime.WithVariables(vars),
	)

	g, _ := lib.Graph("quest")
	if _, err := s.BeginOrJoin(ctx, g, []domain.Override{
		{ID: "reward", Value: domain.StringValue("silver")},
	}, 0); err != nil {
		t.Fatalf("BeginOrJoin failed: %v", err)
	}

	s.Tick(ctx, 2) // set ran, 3s of the wait remain

	snap := s.Snapshot()
	if len(snap.Instances) != 1 {
		t.Fatalf("want 1 saved instance, got %d", len(snap.Instances))
	}
	saved := snap.Instances[0]
	if saved.GraphID != "quest" || saved.RemainingWait != 3 {
		t.Fatalf("saved state wrong: %+v", saved)
	}

	// Fresh scheduler, as after a process restart.
	vars2 := memory.NewVariables()
	s2 := runtime.NewScheduler(
		runtime.WithLibrary(lib),
		runtime.WithVariables(vars2),
	)
	if err := s2.Restore(ctx, snap); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	in := s2.Instances()[0]
	if in.RemainingWait() != 3 {
		t.Errorf("restored wait = %v, want 3", in.RemainingWait())
	}
	if in.Graph().ID != "quest" {
		t.Errorf("restored graph = %q", in.Graph().ID)
	}

	// Twin-stepping: the restored run finishes exactly when the original
	// would have.
	s2.Tick(ctx, 2.5)
	if _, ok := vars2.Get("quest_done"); ok {
		t.Fatal("restored wait expired too early")
	}
	s2.Tick(ctx, 0.5)
	if v, _ := vars2.Get("quest_done"); v.Int() != 1 {
		t.Error("restored wait should expire on schedule")
	}
}

func TestRestore_PreservesBindings(t *testing.T) {
	ctx := context.Background()
	lib := memory.NewLibrary()

	echo := graph("echo",
		waitNode(1),
		normal(domain.StepVarSet, map[string]any{
			"variable":    "spoken",
			"value_param": "reward",
		}),
	)
	echo.Params = []domain.ParamDef{
		{ID: "reward", Type: domain.TypeString, Default: domain.StringValue("gold")},
	}
	lib.Add(echo)

	s := runtime.NewScheduler(runtime.WithLibrary(lib))
	if _, err := s.BeginOrJoin(ctx, echo, []domain.Override{
		{ID: "reward", Value: domain.StringValue("emerald")},
	}, 0); err != nil {
		t.Fatalf("BeginOrJoin failed: %v", err)
	}
	s.Tick(ctx, 0.25)

	snap := s.Snapshot()

	vars2 := memory.NewVariables()
	s2 := runtime.NewScheduler(
		runtime.WithLibrary(lib),
		runtime.WithVariables(vars2),
	)
	if err := s2.Restore(ctx, snap); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	s2.Tick(ctx, 1)

	if v, _ := vars2.Get("spoken"); v.Str() != "emerald" {
		t.Errorf("restored binding lost: %v", v)
	}
}

func TestRestore_DropsUnresolvableGraphs(t *testing.T) {
	ctx := context.Background()
	lib := memory.NewLibrary()
	lib.Add(questGraph())

	snap := &domain.Snapshot{
		Instances: []domain.InstanceSnapshot{
			{GraphKind: domain.GraphAsset, GraphID: "deleted_graph", Ordinal: 1, NodeIndex: 0},
			{GraphKind: domain.GraphAsset, GraphID: "quest", Ordinal: 2, NodeIndex: 1, RemainingWait: 2},
		},
	}

	s := runtime.NewScheduler(runtime.WithLibrary(lib))
	if err := s.Restore(ctx, snap); err != nil {
		t.Fatalf("Restore should tolerate missing graphs, got %v", err)
	}
	if s.Active() != 1 {
		t.Fatalf("want only the resolvable instance, got %d", s.Active())
	}
	if s.Instances()[0].Graph().ID != "quest" {
		t.Error("wrong instance survived")
	}
}

func TestRestore_OrdinalHighWaterPreventsCollisions(t *testing.T) {
	ctx := context.Background()
	lib := memory.NewLibrary()

	g := graph("crowd", waitNode(100))
	g.Policy.AllowMultiple = true
	lib.Add(g)

	snap := &domain.Snapshot{
		Instances: []domain.InstanceSnapshot{
			{GraphKind: domain.GraphAsset, GraphID: "crowd", Ordinal: 7, NodeIndex: 0},
		},
	}

	s := runtime.NewScheduler(runtime.WithLibrary(lib))
	if err := s.Restore(ctx, snap); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	fresh, err := s.BeginOrJoin(ctx, g, nil, 0)
	if err != nil {
		t.Fatalf("BeginOrJoin failed: %v", err)
	}
	if fresh.Ordinal() <= 7 {
		t.Errorf("new ordinal %d collides with restored high water 7", fresh.Ordinal())
	}
}

func TestRestore_ReplacesCurrentState(t *testing.T) {
	ctx := context.Background()
	lib := memory.NewLibrary()
	lib.Add(questGraph())

	s := runtime.NewScheduler(runtime.WithLibrary(lib))
	g, _ := lib.Graph("quest")
	s.BeginOrJoin(ctx, g, nil, 0)

	if err := s.Restore(ctx, &domain.Snapshot{}); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if s.Active() != 0 {
		t.Errorf("restore must replace, not merge: %d active", s.Active())
	}
}
