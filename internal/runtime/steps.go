package runtime

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/reelvm/reel/pkg/domain"
	"github.com/reelvm/reel/pkg/ports"
)

// stepExec is the execution contract of one node payload. Bind copies
// resolved override values into working fields and may be called every pass;
// Run performs one unit of work per tick; Skip synchronously forces the
// node's completed effect.
type stepExec interface {
	Bind(b *Bindings) error
	Run(ctx context.Context, dt float64) (domain.StepResult, error)
	Skip(ctx context.Context) (domain.StepResult, error)
}

// graphQueuer is how a step asks for another graph to be run. The scheduler
// guarantees the queued instance is never stepped within the same tick.
type graphQueuer interface {
	QueueRun(graphID string, overrides []domain.Override) error
}

// world bundles the collaborators steps act upon.
type world struct {
	dispatcher ports.Dispatcher
	vars       ports.Variables
	inventory  ports.Inventory
	evaluator  ports.ConditionEvaluator
	queuer     graphQueuer
	hooks      domain.LifecycleHooks
}

// buildStep materializes the executor for a node from the closed variant
// set. Unknown kinds are authoring errors.
func buildStep(g *domain.Graph, idx int, w *world) (stepExec, error) {
	node := g.Node(idx)
	if node == nil {
		return nil, &domain.AuthoringError{GraphID: g.ID, NodeIndex: idx, Reason: "node index out of range"}
	}

	var (
		exec stepExec
		err  error
	)
	switch node.Step.Kind {
	case domain.StepWait:
		exec, err = newWaitStep(node.Step.Args)
	case domain.StepSay:
		exec, err = newSayStep(node.Step.Args, w)
	case domain.StepMove:
		exec, err = newMoveStep(node.Step.Args, w)
	case domain.StepVarSet:
		exec, err = newVarSetStep(node.Step.Args, w)
	case domain.StepVarCheck:
		exec, err = newVarCheckStep(node.Step.Args, w)
	case domain.StepItemAdd:
		exec, err = newItemStep(node.Step.Args, w, false)
	case domain.StepItemTake:
		exec, err = newItemStep(node.Step.Args, w, true)
	case domain.StepRunGraph:
		exec, err = newRunGraphStep(node.Step.Args, w)
	case domain.StepComment:
		exec = &commentStep{}
	default:
		err = fmt.Errorf("unknown step kind %q", node.Step.Kind)
	}
	if err != nil {
		return nil, &domain.AuthoringError{GraphID: g.ID, NodeIndex: idx, Reason: err.Error()}
	}
	return exec, nil
}

func decodeArgs(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("invalid step arguments: %w", err)
	}
	return nil
}

// resolveFloat returns the bound parameter value when param is set,
// otherwise the literal.
func resolveFloat(b *Bindings, param string, literal float64) float64 {
	if param == "" {
		return literal
	}
	if v, ok := b.Get(param); ok && !v.IsZero() {
		return v.Float()
	}
	return literal
}

func resolveString(b *Bindings, param, literal string) string {
	if param == "" {
		return literal
	}
	if v, ok := b.Get(param); ok && !v.IsZero() {
		if v.Type() == domain.TypeString {
			return v.Str()
		}
		return v.Ref()
	}
	return literal
}

// --- wait ---

type waitArgs struct {
	Seconds      float64 `mapstructure:"seconds"`
	SecondsParam string  `mapstructure:"seconds_param"`
}

// waitStep idles the instance. The delay rides the instance-level wait
// timer, so mid-wait saves round-trip exactly.
type waitStep struct {
	args    waitArgs
	seconds float64
}

func newWaitStep(args map[string]any) (*waitStep, error) {
	s := &waitStep{}
	if err := decodeArgs(args, &s.args); err != nil {
		return nil, err
	}
	if s.args.Seconds < 0 {
		return nil, fmt.Errorf("wait: negative duration %v", s.args.Seconds)
	}
	return s, nil
}

func (s *waitStep) Bind(b *Bindings) error {
	s.seconds = resolveFloat(b, s.args.SecondsParam, s.args.Seconds)
	return nil
}

func (s *waitStep) Run(ctx context.Context, dt float64) (domain.StepResult, error) {
	return domain.Finished(s.seconds), nil
}

func (s *waitStep) Skip(ctx context.Context) (domain.StepResult, error) {
	return domain.Finished(0), nil
}

// --- say ---

type sayArgs struct {
	Speaker       string  `mapstructure:"speaker"`
	Line          string  `mapstructure:"line"`
	LineParam     string  `mapstructure:"line_param"`
	Duration      float64 `mapstructure:"duration"`
	DurationParam string  `mapstructure:"duration_param"`
}

// sayStep dispatches one line to the host and holds it on screen for the
// resolved duration. Skip still shows the line, only the hold collapses.
type sayStep struct {
	args     sayArgs
	world    *world
	line     string
	duration float64
}

func newSayStep(args map[string]any, w *world) (*sayStep, error) {
	s := &sayStep{world: w}
	if err := decodeArgs(args, &s.args); err != nil {
		return nil, err
	}
	if s.args.Line == "" && s.args.LineParam == "" {
		return nil, fmt.Errorf("say: no line or line_param")
	}
	return s, nil
}

func (s *sayStep) Bind(b *Bindings) error {
	s.line = resolveString(b, s.args.LineParam, s.args.Line)
	s.duration = resolveFloat(b, s.args.DurationParam, s.args.Duration)
	return nil
}

func (s *sayStep) dispatch(ctx context.Context, duration float64) error {
	return s.world.dispatcher.Dispatch(ctx, domain.HostRequest{
		Type: domain.RequestSay,
		Payload: domain.SayPayload{
			Speaker:  s.args.Speaker,
			Line:     s.line,
			Duration: duration,
		},
	})
}

func (s *sayStep) Run(ctx context.Context, dt float64) (domain.StepResult, error) {
	if err := s.dispatch(ctx, s.duration); err != nil {
		return domain.StepResult{}, err
	}
	return domain.Finished(s.duration), nil
}

func (s *sayStep) Skip(ctx context.Context) (domain.StepResult, error) {
	if err := s.dispatch(ctx, 0); err != nil {
		return domain.StepResult{}, err
	}
	return domain.Finished(0), nil
}

// --- move ---

type moveArgs struct {
	Object      string  `mapstructure:"object"`
	ObjectParam string  `mapstructure:"object_param"`
	Target      string  `mapstructure:"target"`
	TargetParam string  `mapstructure:"target_param"`
	Duration    float64 `mapstructure:"duration"`
}

// moveStep walks an object toward a target across ticks. The skip path
// teleports: the completed effect is still applied, only its duration
// collapses.
type moveStep struct {
	args    moveArgs
	world   *world
	object  string
	target  domain.Vector3
	started bool
	elapsed float64
}

func newMoveStep(args map[string]any, w *world) (*moveStep, error) {
	s := &moveStep{world: w}
	if err := decodeArgs(args, &s.args); err != nil {
		return nil, err
	}
	if s.args.Object == "" && s.args.ObjectParam == "" {
		return nil, fmt.Errorf("move: no object or object_param")
	}
	if s.args.Target != "" {
		if _, err := domain.ParseVector3(s.args.Target); err != nil {
			return nil, fmt.Errorf("move: %w", err)
		}
	} else if s.args.TargetParam == "" {
		return nil, fmt.Errorf("move: no target or target_param")
	}
	return s, nil
}

func (s *moveStep) Bind(b *Bindings) error {
	s.object = resolveString(b, s.args.ObjectParam, s.args.Object)

	if s.args.TargetParam != "" {
		if v, ok := b.Get(s.args.TargetParam); ok && v.Type() == domain.TypeVector3 {
			s.target = v.Vec()
			return nil
		}
	}
	if s.args.Target != "" {
		v, err := domain.ParseVector3(s.args.Target)
		if err != nil {
			return err
		}
		s.target = v
	}
	return nil
}

func (s *moveStep) Run(ctx context.Context, dt float64) (domain.StepResult, error) {
	if !s.started {
		s.started = true
		err := s.world.dispatcher.Dispatch(ctx, domain.HostRequest{
			Type:    domain.RequestMove,
			Payload: domain.MovePayload{Object: s.object, Target: s.target},
		})
		if err != nil {
			return domain.StepResult{}, err
		}
	}
	s.elapsed += dt
	if s.elapsed >= s.args.Duration {
		return domain.Finished(0), nil
	}
	return domain.Continue(), nil
}

func (s *moveStep) Skip(ctx context.Context) (domain.StepResult, error) {
	err := s.world.dispatcher.Dispatch(ctx, domain.HostRequest{
		Type:    domain.RequestMove,
		Payload: domain.MovePayload{Object: s.object, Target: s.target, Teleport: true},
	})
	if err != nil {
		return domain.StepResult{}, err
	}
	return domain.Finished(0), nil
}

// --- varset ---

type varSetArgs struct {
	Variable      string `mapstructure:"variable"`
	VariableParam string `mapstructure:"variable_param"`
	Type          string `mapstructure:"type"`
	Value         string `mapstructure:"value"`
	ValueParam    string `mapstructure:"value_param"`
}

type varSetStep struct {
	args     varSetArgs
	world    *world
	variable string
	value    domain.Value
}

func newVarSetStep(args map[string]any, w *world) (*varSetStep, error) {
	s := &varSetStep{world: w}
	if err := decodeArgs(args, &s.args); err != nil {
		return nil, err
	}
	if s.args.Variable == "" && s.args.VariableParam == "" {
		return nil, fmt.Errorf("varset: no variable or variable_param")
	}
	if s.args.ValueParam == "" {
		t := domain.ParamType(s.args.Type)
		if t == "" {
			t = domain.TypeInt
		}
		if _, err := domain.ParseValue(t, s.args.Value); err != nil {
			return nil, fmt.Errorf("varset: %w", err)
		}
	}
	return s, nil
}

func (s *varSetStep) Bind(b *Bindings) error {
	s.variable = resolveString(b, s.args.VariableParam, s.args.Variable)

	if s.args.ValueParam != "" {
		if v, ok := b.Get(s.args.ValueParam); ok {
			s.value = v
			return nil
		}
		return fmt.Errorf("varset: value_param %q is not a declared parameter", s.args.ValueParam)
	}

	t := domain.ParamType(s.args.Type)
	if t == "" {
		t = domain.TypeInt
	}
	v, err := domain.ParseValue(t, s.args.Value)
	if err != nil {
		return err
	}
	s.value = v
	return nil
}

func (s *varSetStep) apply() {
	s.world.vars.Set(s.variable, s.value)
}

func (s *varSetStep) Run(ctx context.Context, dt float64) (domain.StepResult, error) {
	s.apply()
	return domain.Finished(0), nil
}

// Skip applies the same mutation; the effect must not be bypassed.
func (s *varSetStep) Skip(ctx context.Context) (domain.StepResult, error) {
	s.apply()
	return domain.Finished(0), nil
}

// --- varcheck ---

type varCheckArgs struct {
	Variable      string `mapstructure:"variable"`
	VariableParam string `mapstructure:"variable_param"`
	Condition     string `mapstructure:"condition"`
}

// varCheckStep branches on either a boolean expression over variables and
// bindings, or the plain truthiness of a single variable.
type varCheckStep struct {
	args     varCheckArgs
	world    *world
	variable string
	bindings *Bindings
}

func newVarCheckStep(args map[string]any, w *world) (*varCheckStep, error) {
	s := &varCheckStep{world: w}
	if err := decodeArgs(args, &s.args); err != nil {
		return nil, err
	}
	if s.args.Condition == "" && s.args.Variable == "" && s.args.VariableParam == "" {
		return nil, fmt.Errorf("varcheck: no condition and no variable")
	}
	return s, nil
}

func (s *varCheckStep) Bind(b *Bindings) error {
	s.variable = resolveString(b, s.args.VariableParam, s.args.Variable)
	s.bindings = b
	return nil
}

func (s *varCheckStep) evaluate(ctx context.Context) (bool, error) {
	if s.args.Condition != "" {
		if s.world.evaluator == nil {
			return false, fmt.Errorf("varcheck: condition %q needs an evaluator", s.args.Condition)
		}
		env := s.bindings.Env()
		for id, v := range s.world.vars.All() {
			if _, shadowed := env[id]; !shadowed {
				env[id] = v.Native()
			}
		}
		return s.world.evaluator.Evaluate(ctx, s.args.Condition, env)
	}

	v, ok := s.world.vars.Get(s.variable)
	return ok && v.Truthy(), nil
}

func (s *varCheckStep) Run(ctx context.Context, dt float64) (domain.StepResult, error) {
	outcome, err := s.evaluate(ctx)
	if err != nil {
		return domain.StepResult{}, err
	}
	return domain.Branch(outcome), nil
}

// Skip evaluates normally: the realized path must match an unskipped run.
func (s *varCheckStep) Skip(ctx context.Context) (domain.StepResult, error) {
	return s.Run(ctx, 0)
}

// --- itemadd / itemtake ---

type itemArgs struct {
	Item      string `mapstructure:"item"`
	ItemParam string `mapstructure:"item_param"`
	Count     int    `mapstructure:"count"`
}

type itemStep struct {
	args   itemArgs
	world  *world
	remove bool
	item   string
}

func newItemStep(args map[string]any, w *world, remove bool) (*itemStep, error) {
	s := &itemStep{world: w, remove: remove}
	if err := decodeArgs(args, &s.args); err != nil {
		return nil, err
	}
	if s.args.Item == "" && s.args.ItemParam == "" {
		return nil, fmt.Errorf("item step: no item or item_param")
	}
	if s.args.Count == 0 {
		s.args.Count = 1
	}
	return s, nil
}

func (s *itemStep) Bind(b *Bindings) error {
	s.item = resolveString(b, s.args.ItemParam, s.args.Item)
	return nil
}

func (s *itemStep) apply() {
	if s.remove {
		s.world.inventory.Remove(s.item, s.args.Count)
		return
	}
	s.world.inventory.Add(s.item, s.args.Count)
}

func (s *itemStep) Run(ctx context.Context, dt float64) (domain.StepResult, error) {
	s.apply()
	return domain.Finished(0), nil
}

func (s *itemStep) Skip(ctx context.Context) (domain.StepResult, error) {
	s.apply()
	return domain.Finished(0), nil
}

// --- rungraph ---

type runGraphArgs struct {
	Graph      string   `mapstructure:"graph"`
	GraphParam string   `mapstructure:"graph_param"`
	Forward    []string `mapstructure:"forward"`
}

// runGraphStep queues another graph on the scheduler. The new instance is
// appended after the current pass, never stepped within the same tick.
type runGraphStep struct {
	args      runGraphArgs
	world     *world
	graphID   string
	overrides []domain.Override
}

func newRunGraphStep(args map[string]any, w *world) (*runGraphStep, error) {
	s := &runGraphStep{world: w}
	if err := decodeArgs(args, &s.args); err != nil {
		return nil, err
	}
	if s.args.Graph == "" && s.args.GraphParam == "" {
		return nil, fmt.Errorf("rungraph: no graph or graph_param")
	}
	return s, nil
}

func (s *runGraphStep) Bind(b *Bindings) error {
	s.graphID = resolveString(b, s.args.GraphParam, s.args.Graph)

	s.overrides = s.overrides[:0]
	for _, id := range s.args.Forward {
		if v, ok := b.Get(id); ok {
			s.overrides = append(s.overrides, domain.Override{ID: id, Value: v})
		}
	}
	return nil
}

func (s *runGraphStep) queue() error {
	if s.world.queuer == nil {
		return fmt.Errorf("rungraph: no graph library wired")
	}
	return s.world.queuer.QueueRun(s.graphID, s.overrides)
}

func (s *runGraphStep) Run(ctx context.Context, dt float64) (domain.StepResult, error) {
	if err := s.queue(); err != nil {
		return domain.StepResult{}, err
	}
	return domain.Finished(0), nil
}

func (s *runGraphStep) Skip(ctx context.Context) (domain.StepResult, error) {
	if err := s.queue(); err != nil {
		return domain.StepResult{}, err
	}
	return domain.Finished(0), nil
}

// --- comment ---

type commentStep struct{}

func (s *commentStep) Bind(b *Bindings) error { return nil }

func (s *commentStep) Run(ctx context.Context, dt float64) (domain.StepResult, error) {
	return domain.Finished(0), nil
}

func (s *commentStep) Skip(ctx context.Context) (domain.StepResult, error) {
	return domain.Finished(0), nil
}
