package tui

import (
	"context"
	"fmt"

	"github.com/reelvm/reel/pkg/domain"
)

// Dispatcher adapts the renderer to the engine's side-effect port.
type Dispatcher struct {
	renderer *Renderer
}

// NewDispatcher wraps a renderer as a dispatcher.
func NewDispatcher(r *Renderer) *Dispatcher {
	return &Dispatcher{renderer: r}
}

// Dispatch routes one host request to the terminal.
func (d *Dispatcher) Dispatch(_ context.Context, req domain.HostRequest) error {
	switch req.Type {
	case domain.RequestSay:
		p, ok := req.Payload.(domain.SayPayload)
		if !ok {
			return fmt.Errorf("tui: %s payload is %T", req.Type, req.Payload)
		}
		d.renderer.Say(p.Speaker, p.Line)
	case domain.RequestMove:
		p, ok := req.Payload.(domain.MovePayload)
		if !ok {
			return fmt.Errorf("tui: %s payload is %T", req.Type, req.Payload)
		}
		d.renderer.Move(p.Object, p.Target.X, p.Target.Y, p.Target.Z, p.Teleport)
	case domain.RequestSystem:
		if msg, ok := req.Payload.(string); ok {
			d.renderer.System(msg)
		}
	default:
		d.renderer.System(fmt.Sprintf("unhandled request %q", req.Type))
	}
	return nil
}
