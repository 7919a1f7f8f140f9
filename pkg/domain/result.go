package domain

type resultKind int

const (
	resultContinue resultKind = iota
	resultFinished
	resultBranch
)

// StepResult is the outcome of one unit of node work. A node that keeps
// returning Continue is called again on the next tick; Finished ends the
// node, optionally idling the instance before the next node; Branch ends a
// Check node and selects its edge.
type StepResult struct {
	kind    resultKind
	wait    float64
	outcome bool
}

// Continue means "call Run again next tick".
func Continue() StepResult {
	return StepResult{kind: resultContinue}
}

// Finished ends the node, idling the instance for wait seconds before the
// next node is evaluated.
func Finished(wait float64) StepResult {
	if wait < 0 {
		wait = 0
	}
	return StepResult{kind: resultFinished, wait: wait, outcome: true}
}

// Branch ends a Check node, selecting the pass edge when outcome is true.
func Branch(outcome bool) StepResult {
	return StepResult{kind: resultBranch, outcome: outcome}
}

// Done reports whether the node ended this call.
func (r StepResult) Done() bool { return r.kind != resultContinue }

// Wait returns the requested idle duration in seconds.
func (r StepResult) Wait() float64 { return r.wait }

// Outcome returns the selected edge: true for Finished and passing Branch
// results, false for a failing Branch.
func (r StepResult) Outcome() bool { return r.outcome }
