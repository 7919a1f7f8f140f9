// Package exprlang implements ports.ConditionEvaluator with expr-lang/expr.
// Check-node conditions get let bindings, comparison and boolean operators,
// nil coalescing and optional chaining over the variable/binding environment.
package exprlang

import (
	"context"
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Evaluator compiles conditions once and caches the programs. Safe for
// reuse across graphs; the same condition string shares one program.
type Evaluator struct {
	mu    sync.RWMutex
	cache map[string]*vm.Program
}

// New creates an Evaluator with an empty program cache.
func New() *Evaluator {
	return &Evaluator{cache: make(map[string]*vm.Program)}
}

// Evaluate runs a condition against the environment and coerces the result
// to a branch outcome: booleans directly, numbers by non-zero, strings by
// non-empty. Anything else is an authoring mistake.
func (e *Evaluator) Evaluate(ctx context.Context, expression string, env map[string]any) (bool, error) {
	if expression == "" {
		return false, fmt.Errorf("empty condition")
	}

	prg, err := e.getOrCompile(expression)
	if err != nil {
		return false, err
	}

	if env == nil {
		env = map[string]any{}
	}
	out, err := vm.Run(prg, env)
	if err != nil {
		return false, fmt.Errorf("condition %q failed: %w", expression, err)
	}

	switch v := out.(type) {
	case bool:
		return v, nil
	case int:
		return v != 0, nil
	case int64:
		return v != 0, nil
	case float64:
		return v != 0, nil
	case string:
		return v != "", nil
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("condition %q evaluated to %T, want bool", expression, out)
	}
}

func (e *Evaluator) getOrCompile(expression string) (*vm.Program, error) {
	e.mu.RLock()
	if prg, ok := e.cache[expression]; ok {
		e.mu.RUnlock()
		return prg, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if prg, ok := e.cache[expression]; ok {
		return prg, nil
	}

	// Compiled without a typed env: conditions reference whatever
	// variables and bindings exist at run time.
	prg, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("invalid condition %q: %w", expression, err)
	}
	e.cache[expression] = prg
	return prg, nil
}
