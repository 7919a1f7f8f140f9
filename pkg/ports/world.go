package ports

import (
	"context"

	"github.com/reelvm/reel/pkg/domain"
)

// Dispatcher receives the side-effects nodes request from the host:
// presentation, object movement, system messages. The engine stores no
// presentation state; hosts decide what a request means.
type Dispatcher interface {
	Dispatch(ctx context.Context, req domain.HostRequest) error
}

// Variables is the engine's view of the game-variable system. The engine
// stores ids and typed values and defers all semantic meaning to the host.
type Variables interface {
	Get(id string) (domain.Value, bool)
	Set(id string, v domain.Value)
	// All returns the full variable table, used to build expression
	// environments for check nodes.
	All() map[string]domain.Value
}

// Inventory is the engine's view of the inventory system, addressed purely
// by item identifiers.
type Inventory interface {
	Add(itemID string, count int)
	Remove(itemID string, count int)
	Count(itemID string) int
}

// ConditionEvaluator evaluates a boolean expression against an environment
// of variables and bindings. Check nodes branch on the result.
type ConditionEvaluator interface {
	Evaluate(ctx context.Context, expression string, env map[string]any) (bool, error)
}
