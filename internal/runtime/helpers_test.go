package runtime_test

import (
	"context"
	"sync"

	"github.com/reelvm/reel/pkg/domain"
)

// recorder captures dispatched host requests in order.
type recorder struct {
	mu       sync.Mutex
	requests []domain.HostRequest
}

func (r *recorder) Dispatch(_ context.Context, req domain.HostRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	return nil
}

func (r *recorder) all() []domain.HostRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.HostRequest, len(r.requests))
	copy(out, r.requests)
	return out
}

func (r *recorder) says() []domain.SayPayload {
	var out []domain.SayPayload
	for _, req := range r.all() {
		if req.Type == domain.RequestSay {
			out = append(out, req.Payload.(domain.SayPayload))
		}
	}
	return out
}

func (r *recorder) moves() []domain.MovePayload {
	var out []domain.MovePayload
	for _, req := range r.all() {
		if req.Type == domain.RequestMove {
			out = append(out, req.Payload.(domain.MovePayload))
		}
	}
	return out
}

// truthyEvaluator treats the expression as a single variable name and
// reports its truthiness, enough for routing tests without a real
// expression engine.
type truthyEvaluator struct{}

func (e truthyEvaluator) Evaluate(_ context.Context, expression string, env map[string]any) (bool, error) {
	v, ok := env[expression]
	if !ok {
		return false, nil
	}
	switch x := v.(type) {
	case int64:
		return x != 0, nil
	case float64:
		return x != 0, nil
	case string:
		return x != "", nil
	case bool:
		return x, nil
	}
	return false, nil
}

func normal(kind string, args map[string]any) domain.Node {
	return domain.NormalNode(domain.Step{Kind: kind, Args: args})
}

func waitNode(seconds float64) domain.Node {
	return normal(domain.StepWait, map[string]any{"seconds": seconds})
}

func sayNode(speaker, line string, duration float64) domain.Node {
	return normal(domain.StepSay, map[string]any{
		"speaker":  speaker,
		"line":     line,
		"duration": duration,
	})
}

func setNode(variable, typ, value string) domain.Node {
	return normal(domain.StepVarSet, map[string]any{
		"variable": variable,
		"type":     typ,
		"value":    value,
	})
}

// markNode is a no-op successor; a wait needs one, since a wait routed to
// the terminal sentinel completes the instance and its delay is dropped.
func markNode() domain.Node {
	return normal(domain.StepComment, map[string]any{"text": "mark"})
}

func checkNode(variable string, pass, fail int) domain.Node {
	return domain.CheckNode(
		domain.Step{Kind: domain.StepVarCheck, Args: map[string]any{"variable": variable}},
		pass, fail,
	)
}

func graph(id string, nodes ...domain.Node) *domain.Graph {
	return &domain.Graph{ID: id, Kind: domain.GraphAsset, Policy: domain.Policy{Skippable: true}, Nodes: nodes}
}
