package reel

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/reelvm/reel/internal/logging"
	"github.com/reelvm/reel/internal/runtime"
	"github.com/reelvm/reel/pkg/domain"
	"github.com/reelvm/reel/pkg/observability"
	"github.com/reelvm/reel/pkg/ports"
	"github.com/reelvm/reel/pkg/session"
)

// Engine is the high-level entry point for the Reel library. It wraps the
// internal scheduler behind a mutex so a host can drive the frame loop from
// one goroutine while control surfaces (HTTP, console commands) call in from
// others.
type Engine struct {
	mu        sync.Mutex
	scheduler *runtime.Scheduler
	library   ports.GraphLibrary
	store     ports.SnapshotStore
	sessions  *session.Manager
	metrics   *observability.Metrics
	logger    *slog.Logger

	hooks domain.LifecycleHooks
	opts  []runtime.Option
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithDispatcher routes node side-effects (dialog lines, object movement)
// to the host.
func WithDispatcher(d ports.Dispatcher) Option {
	return func(e *Engine) {
		e.opts = append(e.opts, runtime.WithDispatcher(d))
	}
}

// WithVariables injects the host's game-variable system.
func WithVariables(v ports.Variables) Option {
	return func(e *Engine) {
		e.opts = append(e.opts, runtime.WithVariables(v))
	}
}

// WithInventory injects the host's inventory system.
func WithInventory(inv ports.Inventory) Option {
	return func(e *Engine) {
		e.opts = append(e.opts, runtime.WithInventory(inv))
	}
}

// WithEvaluator sets the expression evaluator used by check nodes.
func WithEvaluator(eval ports.ConditionEvaluator) Option {
	return func(e *Engine) {
		e.opts = append(e.opts, runtime.WithEvaluator(eval))
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithStore sets the snapshot store backing Save and Load.
func WithStore(store ports.SnapshotStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithMetrics attaches Prometheus collectors. Metric hooks are chained after
// any hooks registered via WithHooks.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// New initializes an Engine over a graph library. The library resolves
// authored "run graph" steps and save restoration; hosts that only ever
// start graphs directly may pass an empty one.
func New(library ports.GraphLibrary, opts ...Option) (*Engine, error) {
	if library == nil {
		return nil, fmt.Errorf("reel: nil graph library")
	}

	eng := &Engine{library: library}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.store != nil {
		eng.sessions = session.NewManager(eng.store, session.WithLogger(eng.logger))
	}

	hooks := eng.hooks
	if eng.metrics != nil {
		hooks = chainHooks(hooks, eng.metrics.Hooks())
	}

	schedOpts := append([]runtime.Option{
		runtime.WithLogger(eng.logger),
		runtime.WithLibrary(library),
		runtime.WithHooks(hooks),
	}, eng.opts...)

	eng.scheduler = runtime.NewScheduler(schedOpts...)
	return eng, nil
}

// Play starts the graph with the given id from its first node, or rejoins
// the surviving instance when the graph forbids multiple instances.
func (e *Engine) Play(ctx context.Context, graphID string, overrides ...domain.Override) error {
	return e.PlayFrom(ctx, graphID, 0, overrides...)
}

// PlayFrom starts the graph at an authored node index.
func (e *Engine) PlayFrom(ctx context.Context, graphID string, startIndex int, overrides ...domain.Override) error {
	g, err := e.library.Graph(graphID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err = e.scheduler.BeginOrJoin(ctx, g, overrides, startIndex)
	return err
}

// PlayGraph starts an inline graph definition that does not live in the
// library, such as one assembled with the dsl package.
func (e *Engine) PlayGraph(ctx context.Context, g *domain.Graph, overrides ...domain.Override) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := e.scheduler.BeginOrJoin(ctx, g, overrides, 0)
	return err
}

// Tick advances every active instance by dt seconds. Hosts call this once
// per frame; dt at or below zero is a no-op for waits but still lets
// zero-wait nodes progress.
func (e *Engine) Tick(ctx context.Context, dt float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	e.scheduler.Tick(ctx, dt)
	if e.metrics != nil {
		e.metrics.ObserveTick(time.Since(start), e.scheduler.Active(), e.scheduler.GameState())
	}
}

// GameState derives the current gameplay state from pause, blocking
// cutscenes and dialog options, in that order of precedence.
func (e *Engine) GameState() domain.GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scheduler.GameState()
}

// SkipAll fast-forwards every instance whose graph policy permits skipping.
func (e *Engine) SkipAll(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scheduler.SkipAll(ctx)
}

// StopAll kills every instance of the graph and reports how many died.
func (e *Engine) StopAll(graphID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scheduler.KillAll(graphID)
}

// Stop kills one specific instance.
func (e *Engine) Stop(graphID string, ordinal int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scheduler.Kill(graphID, ordinal)
}

// Pause freezes scheduling. Ticks become no-ops until Resume.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scheduler.SetPaused(true)
}

// Resume lifts a pause.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scheduler.SetPaused(false)
}

// Paused reports whether scheduling is frozen.
func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scheduler.Paused()
}

// SetDialogOptions marks whether the host is presenting a dialog choice,
// which the derived game state reflects.
func (e *Engine) SetDialogOptions(active bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scheduler.SetDialogOptions(active)
}

// SceneChange kills every instance that does not survive scene boundaries
// and returns how many were removed.
func (e *Engine) SceneChange() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scheduler.OnSceneChange()
}

// Save snapshots all active instances into the configured store. Slot access
// is serialized through the session manager; an empty slotID gets a generated
// one, and the id actually used is returned either way.
func (e *Engine) Save(ctx context.Context, slotID string) (string, error) {
	if e.sessions == nil {
		return "", fmt.Errorf("reel: no snapshot store configured")
	}
	e.mu.Lock()
	snap := e.scheduler.Snapshot()
	e.mu.Unlock()
	return e.sessions.Save(ctx, slotID, snap)
}

// Load replaces the current execution state with a stored snapshot.
// Instances whose graphs no longer resolve are dropped, not fatal.
func (e *Engine) Load(ctx context.Context, slotID string) error {
	if e.sessions == nil {
		return fmt.Errorf("reel: no snapshot store configured")
	}
	snap, err := e.sessions.Load(ctx, slotID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scheduler.Restore(ctx, snap)
}

// Saves lists the known save slots.
func (e *Engine) Saves(ctx context.Context) ([]string, error) {
	if e.sessions == nil {
		return nil, fmt.Errorf("reel: no snapshot store configured")
	}
	return e.sessions.List(ctx)
}

// Snapshot captures the resumable state without persisting it.
func (e *Engine) Snapshot() *domain.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scheduler.Snapshot()
}

// Restore replaces the current execution state with snap.
func (e *Engine) Restore(ctx context.Context, snap *domain.Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scheduler.Restore(ctx, snap)
}

// InstanceInfo describes one live instance for status surfaces.
type InstanceInfo struct {
	GraphID       string                `json:"graph_id"`
	Ordinal       int                   `json:"ordinal"`
	NodeIndex     int                   `json:"node_index"`
	Status        domain.InstanceStatus `json:"status"`
	RemainingWait float64               `json:"remaining_wait"`
}

// Status summarizes the engine for hosts and control surfaces.
type Status struct {
	State     domain.GameState `json:"state"`
	Paused    bool             `json:"paused"`
	Instances []InstanceInfo   `json:"instances"`
}

// Status reports the derived game state and every live instance.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	live := e.scheduler.Instances()
	out := Status{
		State:     e.scheduler.GameState(),
		Paused:    e.scheduler.Paused(),
		Instances: make([]InstanceInfo, 0, len(live)),
	}
	for _, in := range live {
		out.Instances = append(out.Instances, InstanceInfo{
			GraphID:       in.Graph().ID,
			Ordinal:       in.Ordinal(),
			NodeIndex:     in.NodeIndex(),
			Status:        in.Status(),
			RemainingWait: in.RemainingWait(),
		})
	}
	return out
}

// Library returns the graph library the engine resolves against.
func (e *Engine) Library() ports.GraphLibrary {
	return e.library
}

func chainHooks(a, b domain.LifecycleHooks) domain.LifecycleHooks {
	instance := func(first, second func(context.Context, *domain.InstanceEvent)) func(context.Context, *domain.InstanceEvent) {
		switch {
		case first == nil:
			return second
		case second == nil:
			return first
		}
		return func(ctx context.Context, ev *domain.InstanceEvent) {
			first(ctx, ev)
			second(ctx, ev)
		}
	}

	node := a.OnNodeEnter
	if node == nil {
		node = b.OnNodeEnter
	} else if b.OnNodeEnter != nil {
		firstNode, secondNode := a.OnNodeEnter, b.OnNodeEnter
		node = func(ctx context.Context, ev *domain.NodeEvent) {
			firstNode(ctx, ev)
			secondNode(ctx, ev)
		}
	}

	return domain.LifecycleHooks{
		OnInstanceStart:    instance(a.OnInstanceStart, b.OnInstanceStart),
		OnNodeEnter:        node,
		OnInstanceComplete: instance(a.OnInstanceComplete, b.OnInstanceComplete),
		OnSkipRequested:    instance(a.OnSkipRequested, b.OnSkipRequested),
	}
}
