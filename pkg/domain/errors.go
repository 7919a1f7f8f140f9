package domain

import (
	"errors"
	"fmt"
)

// ErrSaveNotFound is returned when a save slot cannot be found in the store.
var ErrSaveNotFound = errors.New("save slot not found")

// ErrGraphNotFound is returned when a graph id cannot be resolved by the library.
var ErrGraphNotFound = errors.New("graph not found")

// AuthoringError reports content defects: missing node or asset references,
// duplicate parameter ids, unknown step kinds. The affected instance is
// terminated rather than the engine aborting.
type AuthoringError struct {
	GraphID   string
	NodeIndex int
	Reason    string
}

func (e *AuthoringError) Error() string {
	if e.NodeIndex == TerminalIndex {
		return fmt.Sprintf("authoring error in graph %q: %s", e.GraphID, e.Reason)
	}
	return fmt.Sprintf("authoring error in graph %q node %d: %s", e.GraphID, e.NodeIndex, e.Reason)
}
