package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/reelvm/reel/pkg/domain"
)

// Instance is one live, stateful execution of a graph. Instances are owned
// and stepped by the Scheduler; they are not safe for concurrent use.
type Instance struct {
	graph    *domain.Graph
	ordinal  int
	bindings *Bindings
	world    *world
	logger   *slog.Logger

	idx           int
	status        domain.InstanceStatus
	remainingWait float64
	skipRequested bool

	// exec caches the executor for execIdx so Continue steps keep state
	// across ticks. Rebuilt whenever the index moves.
	exec    stepExec
	execIdx int

	// entered marks nodes already announced via OnNodeEnter, so a node
	// returning Continue is reported once.
	entered int
}

func newInstance(g *domain.Graph, ordinal int, overrides []domain.Override, w *world, logger *slog.Logger) *Instance {
	in := &Instance{
		graph:    g,
		ordinal:  ordinal,
		world:    w,
		logger:   logger,
		status:   domain.StatusRunning,
		execIdx:  domain.TerminalIndex,
		entered:  domain.TerminalIndex,
		bindings: NewBindings(g.Params, logger),
	}
	in.bindings.Apply(overrides)
	return in
}

// Graph returns the owning graph definition.
func (in *Instance) Graph() *domain.Graph { return in.graph }

// Ordinal distinguishes concurrent instances of the same graph.
func (in *Instance) Ordinal() int { return in.ordinal }

// NodeIndex is the current node, or the terminal sentinel.
func (in *Instance) NodeIndex() int { return in.idx }

// Status reports the lifecycle state.
func (in *Instance) Status() domain.InstanceStatus { return in.status }

// RemainingWait is the pending idle time before the current node runs.
func (in *Instance) RemainingWait() float64 { return in.remainingWait }

// Active reports whether the instance still participates in scheduling.
func (in *Instance) Active() bool { return in.status != domain.StatusCompleted }

// RequestSkip flags the instance for fast-forwarding: from the next step on,
// every node is driven through its skip path until completion and pending
// waits collapse to zero. Irreversible effects still apply.
func (in *Instance) RequestSkip() {
	if !in.Active() {
		return
	}
	in.skipRequested = true
}

// RunFromIndex starts or resumes execution at a validated index, clamping
// anything out of range to the terminal sentinel. Used for authored
// "run from node N" starts and for restoring a saved instance.
func (in *Instance) RunFromIndex(i int) {
	in.idx = in.graph.ClampIndex(i)
	in.remainingWait = 0
	in.skipRequested = false
	in.exec = nil
	in.execIdx = domain.TerminalIndex
	in.entered = domain.TerminalIndex
	if in.idx == domain.TerminalIndex {
		in.status = domain.StatusCompleted
		return
	}
	in.status = domain.StatusRunning
}

// rebind reapplies overrides for a joined run of a non-multi-instance graph.
func (in *Instance) rebind(overrides []domain.Override) {
	in.bindings.Reset(in.graph.Params)
	in.bindings.Apply(overrides)
}

// Step advances the instance by one tick. It returns true when the instance
// completed during this step.
//
// The tick's delta time acts as a budget: pending waits consume it first,
// and nodes that finish with zero wait cascade within the same call, so a
// wait expiring and the next node branching are observed in one tick.
func (in *Instance) Step(ctx context.Context, dt float64) bool {
	if !in.Active() {
		return true
	}

	budget := dt
	for {
		if in.remainingWait > 0 {
			if in.skipRequested {
				in.remainingWait = 0
			} else if budget < in.remainingWait {
				in.remainingWait -= budget
				in.status = domain.StatusWaiting
				return false
			} else {
				budget -= in.remainingWait
				in.remainingWait = 0
			}
		}

		node := in.graph.Node(in.idx)
		if node == nil {
			in.complete()
			return true
		}

		if in.exec == nil || in.execIdx != in.idx {
			exec, err := buildStep(in.graph, in.idx, in.world)
			if err != nil {
				in.fail(err)
				return true
			}
			in.exec = exec
			in.execIdx = in.idx
		}

		if err := in.exec.Bind(in.bindings); err != nil {
			in.fail(err)
			return true
		}

		if in.entered != in.idx {
			in.entered = in.idx
			in.emitNodeEnter(ctx, node)
		}

		var (
			res domain.StepResult
			err error
		)
		if in.skipRequested && node.Skippable {
			res, err = in.exec.Skip(ctx)
		} else {
			res, err = in.exec.Run(ctx, budget)
		}
		if err != nil {
			in.fail(err)
			return true
		}

		if !res.Done() {
			in.status = domain.StatusRunning
			return false
		}

		next := in.graph.NextIndex(in.idx, res.Outcome())
		if next == domain.TerminalIndex {
			in.complete()
			return true
		}

		in.idx = next
		wait := res.Wait()
		if in.skipRequested {
			wait = 0
		}
		in.remainingWait = wait
		in.status = domain.StatusRunning
		// Loop: remaining budget is applied to the fresh wait, and
		// zero-wait successors execute within this same tick.
	}
}

// Kill terminates the instance immediately. No side-effect rollback occurs
// beyond what prior steps already mutated.
func (in *Instance) Kill() {
	in.status = domain.StatusCompleted
}

func (in *Instance) complete() {
	in.status = domain.StatusCompleted
	in.remainingWait = 0
	if in.graph.Policy.ResetParamsAfterRun {
		in.bindings.Reset(in.graph.Params)
	}
}

// fail drops the instance on an authoring defect. The scheduler and sibling
// instances are never aborted; gameplay resumes instead of freezing.
func (in *Instance) fail(err error) {
	in.logger.Error("instance terminated",
		"graph", in.graph.ID,
		"ordinal", in.ordinal,
		"node", in.idx,
		"err", err,
	)
	in.complete()
}

func (in *Instance) emitNodeEnter(ctx context.Context, node *domain.Node) {
	if in.world.hooks.OnNodeEnter == nil {
		return
	}
	in.world.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
		InstanceEvent: domain.InstanceEvent{
			Timestamp: time.Now(),
			Type:      domain.EventNodeEnter,
			GraphID:   in.graph.ID,
			Ordinal:   in.ordinal,
		},
		NodeIndex: in.idx,
		StepKind:  node.Step.Kind,
	})
}

// snapshot captures the resumable state of the instance.
func (in *Instance) snapshot() domain.InstanceSnapshot {
	return domain.InstanceSnapshot{
		GraphKind:     in.graph.Kind,
		GraphID:       in.graph.ID,
		Ordinal:       in.ordinal,
		NodeIndex:     in.idx,
		RemainingWait: in.remainingWait,
		Bindings:      in.bindings.Snapshot(),
	}
}
