package automaton

import (
	"errors"
	"fmt"
)

// Build errors.
var (
	// ErrTooManyPatterns indicates the pattern set exceeds Config.MaxPatterns.
	ErrTooManyPatterns = errors.New("too many patterns")

	// ErrTooManyStates indicates the trie grew beyond Config.MaxStates.
	ErrTooManyStates = errors.New("too many automaton states")
)

// BuildError wraps a construction failure with the pattern that triggered it.
type BuildError struct {
	// Pattern is the index of the offending pattern, or -1 if the failure
	// is not tied to one pattern.
	Pattern int
	Limit   int
	Err     error
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	if e.Pattern >= 0 {
		return fmt.Sprintf("automaton: build failed at pattern %d: %v (limit %d)", e.Pattern, e.Err, e.Limit)
	}
	return fmt.Sprintf("automaton: build failed: %v (limit %d)", e.Err, e.Limit)
}

// Unwrap returns the underlying error.
func (e *BuildError) Unwrap() error {
	return e.Err
}
