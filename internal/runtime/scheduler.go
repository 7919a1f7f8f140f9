package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/reelvm/reel/internal/logging"
	"github.com/reelvm/reel/pkg/domain"
	"github.com/reelvm/reel/pkg/ports"
)

// Scheduler owns every active instance and advances them once per tick.
// Scheduling is single-threaded and cooperative: "concurrent" execution
// means multiple instances stepped within one pass, in strict insertion
// order, never parallel threads. The Scheduler itself is not synchronized;
// callers serialize access (the reel facade does).
type Scheduler struct {
	logger *slog.Logger
	world  *world

	library ports.GraphLibrary

	instances []*Instance
	ordinals  map[string]int

	// pending holds instances created during a tick. They are appended
	// after the pass so a node queuing a run never has that instance
	// stepped within the same tick.
	pending []*Instance
	ticking bool

	paused        bool
	dialogOptions bool
}

// Option configures the Scheduler.
type Option func(*Scheduler)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = logger }
}

// WithDispatcher sets the host side-effect dispatcher.
func WithDispatcher(d ports.Dispatcher) Option {
	return func(s *Scheduler) { s.world.dispatcher = d }
}

// WithVariables sets the game-variable collaborator.
func WithVariables(v ports.Variables) Option {
	return func(s *Scheduler) { s.world.vars = v }
}

// WithInventory sets the inventory collaborator.
func WithInventory(inv ports.Inventory) Option {
	return func(s *Scheduler) { s.world.inventory = inv }
}

// WithEvaluator sets the condition evaluator used by check nodes.
func WithEvaluator(e ports.ConditionEvaluator) Option {
	return func(s *Scheduler) { s.world.evaluator = e }
}

// WithLibrary sets the graph library used by rungraph steps and restores.
func WithLibrary(lib ports.GraphLibrary) Option {
	return func(s *Scheduler) { s.library = lib }
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Scheduler) { s.world.hooks = hooks }
}

// NewScheduler creates a scheduler with explicit dependency wiring; nothing
// is resolved through ambient global state.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		logger:   logging.NewNop(),
		world:    &world{},
		ordinals: make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.world.dispatcher == nil {
		s.world.dispatcher = nopDispatcher{}
	}
	if s.world.vars == nil {
		s.world.vars = newMemoryVariables()
	}
	if s.world.inventory == nil {
		s.world.inventory = newMemoryInventory()
	}
	s.world.queuer = s
	return s
}

// BeginOrJoin creates a run of graph, or reuses the existing instance when
// the graph forbids multiple instances: the survivor is rebound with the
// overrides and restarted from startIndex, preventing runaway duplication
// from repeated triggers.
func (s *Scheduler) BeginOrJoin(ctx context.Context, g *domain.Graph, overrides []domain.Override, startIndex int) (*Instance, error) {
	if g == nil {
		return nil, fmt.Errorf("begin: nil graph")
	}
	if err := g.Validate(); err != nil {
		s.logger.Error("rejected malformed graph", "graph", g.ID, "err", err)
		return nil, err
	}

	if !g.Policy.AllowMultiple {
		if existing := s.find(g.ID); existing != nil {
			existing.rebind(overrides)
			existing.RunFromIndex(startIndex)
			s.emitInstance(ctx, existing, domain.EventInstanceStart, s.world.hooks.OnInstanceStart)
			return existing, nil
		}
	}

	s.ordinals[g.ID]++
	in := newInstance(g, s.ordinals[g.ID], overrides, s.world, s.logger)
	in.RunFromIndex(startIndex)

	if s.ticking {
		s.pending = append(s.pending, in)
	} else {
		s.instances = append(s.instances, in)
	}
	s.emitInstance(ctx, in, domain.EventInstanceStart, s.world.hooks.OnInstanceStart)
	return in, nil
}

// QueueRun resolves a graph id through the library and begins it. Called by
// rungraph steps mid-pass; the append-after-pass rule bounds same-tick
// cascades.
func (s *Scheduler) QueueRun(graphID string, overrides []domain.Override) error {
	if s.library == nil {
		return fmt.Errorf("no graph library configured")
	}
	g, err := s.library.Graph(graphID)
	if err != nil {
		return fmt.Errorf("queue run %q: %w", graphID, err)
	}
	_, err = s.BeginOrJoin(context.Background(), g, overrides, 0)
	return err
}

// Tick advances every active instance once. Iteration walks a defensive
// snapshot, not the live collection; completed instances are removed after
// the pass and their notifications fire post-removal, so the derived game
// state reflects same-tick completions immediately.
func (s *Scheduler) Tick(ctx context.Context, dt float64) {
	if s.paused {
		// Frozen: in-flight wait timers are preserved, not consumed.
		return
	}

	s.ticking = true
	pass := make([]*Instance, len(s.instances))
	copy(pass, s.instances)

	var completed []*Instance
	for _, in := range pass {
		if in.Step(ctx, dt) {
			completed = append(completed, in)
		}
	}
	s.ticking = false

	if len(completed) > 0 {
		s.compact()
	}
	if len(s.pending) > 0 {
		s.instances = append(s.instances, s.pending...)
		s.pending = nil
	}

	for _, in := range completed {
		s.emitInstance(ctx, in, domain.EventInstanceComplete, s.world.hooks.OnInstanceComplete)
	}
}

// GameState derives the global state: any live blocking instance means a
// cutscene; otherwise the dialog-options signal; otherwise normal play.
// The externally forced pause overrides everything.
func (s *Scheduler) GameState() domain.GameState {
	if s.paused {
		return domain.StatePaused
	}
	for _, in := range s.instances {
		if in.Active() && in.graph.Policy.BlocksGameplay {
			return domain.StateCutscene
		}
	}
	if s.dialogOptions {
		return domain.StateDialogOptions
	}
	return domain.StateNormal
}

// SkipAll requests a skip on every live instance whose graph is skippable.
func (s *Scheduler) SkipAll(ctx context.Context) {
	for _, in := range s.instances {
		if !in.Active() || !in.graph.Policy.Skippable {
			continue
		}
		in.RequestSkip()
		s.emitInstance(ctx, in, domain.EventSkipRequested, s.world.hooks.OnSkipRequested)
	}
}

// KillAll terminates instances immediately and synchronously, with no
// side-effect rollback. An empty filter kills everything; otherwise only
// instances of that graph id. Returns the number removed.
func (s *Scheduler) KillAll(graphID string) int {
	killed := 0
	for _, in := range s.instances {
		if graphID != "" && in.graph.ID != graphID {
			continue
		}
		in.Kill()
		killed++
	}
	if killed > 0 {
		s.compact()
	}
	return killed
}

// Kill terminates one instance identified by graph id and ordinal.
func (s *Scheduler) Kill(graphID string, ordinal int) bool {
	for _, in := range s.instances {
		if in.graph.ID == graphID && in.ordinal == ordinal {
			in.Kill()
			s.compact()
			return true
		}
	}
	return false
}

// OnSceneChange removes every instance whose graph does not survive scene
// boundaries. Returns the number removed.
func (s *Scheduler) OnSceneChange() int {
	killed := 0
	for _, in := range s.instances {
		if in.graph.Policy.SurviveSceneChange {
			continue
		}
		in.Kill()
		killed++
	}
	if killed > 0 {
		s.compact()
	}
	return killed
}

// SetPaused toggles the orthogonal engine-wide pause. While paused, ticks
// halt and wait timers freeze exactly where they are.
func (s *Scheduler) SetPaused(paused bool) { s.paused = paused }

// Paused reports the pause override.
func (s *Scheduler) Paused() bool { return s.paused }

// SetDialogOptions records the external "dialog options active" signal.
func (s *Scheduler) SetDialogOptions(active bool) { s.dialogOptions = active }

// Active returns the number of live instances.
func (s *Scheduler) Active() int { return len(s.instances) }

// Instances returns the live instances in scheduling order.
func (s *Scheduler) Instances() []*Instance {
	out := make([]*Instance, len(s.instances))
	copy(out, s.instances)
	return out
}

// Snapshot enumerates every active instance for persistence.
func (s *Scheduler) Snapshot() *domain.Snapshot {
	snap := &domain.Snapshot{
		SavedAt:       time.Now().UTC(),
		DialogOptions: s.dialogOptions,
		Instances:     make([]domain.InstanceSnapshot, 0, len(s.instances)),
	}
	for _, in := range s.instances {
		if !in.Active() {
			continue
		}
		snap.Instances = append(snap.Instances, in.snapshot())
	}
	return snap
}

// Restore recreates the saved instance set via run-from-index. A snapshot
// entry whose graph cannot be resolved is logged and dropped; siblings are
// restored regardless, favoring availability over strictness.
func (s *Scheduler) Restore(ctx context.Context, snap *domain.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("restore: nil snapshot")
	}
	if s.library == nil {
		return fmt.Errorf("restore: no graph library configured")
	}

	s.KillAll("")
	s.dialogOptions = snap.DialogOptions

	for _, is := range snap.Instances {
		g, err := s.library.Graph(is.GraphID)
		if err != nil {
			s.logger.Error("dropping saved instance: graph unresolved",
				"graph", is.GraphID, "ordinal", is.Ordinal, "err", err)
			continue
		}

		in := newInstance(g, is.Ordinal, nil, s.world, s.logger)
		in.bindings.Restore(is.Bindings)
		in.RunFromIndex(is.NodeIndex)
		in.remainingWait = is.RemainingWait

		if s.ordinals[g.ID] < is.Ordinal {
			s.ordinals[g.ID] = is.Ordinal
		}
		s.instances = append(s.instances, in)
		s.emitInstance(ctx, in, domain.EventInstanceStart, s.world.hooks.OnInstanceStart)
	}
	return nil
}

// find returns the first live instance of a graph id.
func (s *Scheduler) find(graphID string) *Instance {
	for _, in := range s.instances {
		if in.graph.ID == graphID && in.Active() {
			return in
		}
	}
	for _, in := range s.pending {
		if in.graph.ID == graphID && in.Active() {
			return in
		}
	}
	return nil
}

// compact drops completed instances, preserving insertion order.
func (s *Scheduler) compact() {
	live := s.instances[:0]
	for _, in := range s.instances {
		if in.Active() {
			live = append(live, in)
		}
	}
	// Clear the tail so dropped instances do not linger.
	for i := len(live); i < len(s.instances); i++ {
		s.instances[i] = nil
	}
	s.instances = live
}

func (s *Scheduler) emitInstance(ctx context.Context, in *Instance, t domain.EventType, fn func(context.Context, *domain.InstanceEvent)) {
	if fn == nil {
		return
	}
	fn(ctx, &domain.InstanceEvent{
		Timestamp: time.Now(),
		Type:      t,
		GraphID:   in.graph.ID,
		Ordinal:   in.ordinal,
	})
}

// nopDispatcher discards host requests; useful for tests and headless runs.
type nopDispatcher struct{}

func (nopDispatcher) Dispatch(ctx context.Context, req domain.HostRequest) error { return nil }
