package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/verdant/internal/dep"
)

// InternalError represents a condition that can only arise from a bug in
// the engine or its callers, never from user input.
//
// Internal errors include:
//   - Duplicate interning: the same non-eval-always node computed twice
//     in one session (a false cache miss upstream)
//   - Cycle detection: a node transitively depends on itself
//
// They abort the session with enough context to diagnose which query
// misbehaved, and ask for a bug report - silent wrong output is never an
// option.
type InternalError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Node identifies the offending node, if there is a single one.
	Node dep.Node

	// Cycle holds the dependency chain for cycle errors, in walk order,
	// ending with the node that closed the cycle.
	Cycle []dep.Node
}

// ErrorCode categorizes internal errors.
type ErrorCode string

const (
	// ErrCodeDuplicateNode indicates the same node was interned twice in
	// one session. The query layer's memoization re-ran a computation it
	// had already recorded.
	ErrCodeDuplicateNode ErrorCode = "DUPLICATE_NODE"

	// ErrCodeCycleDetected indicates a node transitively depends on its
	// own result. The graph is a DAG by construction; a cycle means the
	// upstream scheduler let a query observe its own in-progress value.
	ErrCodeCycleDetected ErrorCode = "CYCLE_DETECTED"
)

// Error implements the error interface.
func (e *InternalError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "internal error [%s]: %s", e.Code, e.Message)
	if len(e.Cycle) > 0 {
		b.WriteString(" (")
		for i, n := range e.Cycle {
			if i > 0 {
				b.WriteString(" -> ")
			}
			b.WriteString(n.String())
		}
		b.WriteString(")")
	}
	b.WriteString("; this is a verdant bug, please report it")
	return b.String()
}

// IsDuplicateNodeError reports whether err is a duplicate-interning error.
// Uses errors.As to handle wrapped errors.
func IsDuplicateNodeError(err error) bool {
	var ie *InternalError
	return errors.As(err, &ie) && ie.Code == ErrCodeDuplicateNode
}

// IsCycleError reports whether err is a dependency-cycle error.
// Uses errors.As to handle wrapped errors.
func IsCycleError(err error) bool {
	var ie *InternalError
	return errors.As(err, &ie) && ie.Code == ErrCodeCycleDetected
}

// newDuplicateNodeError builds the error for a node interned twice.
func newDuplicateNodeError(node dep.Node) *InternalError {
	return &InternalError{
		Code:    ErrCodeDuplicateNode,
		Message: fmt.Sprintf("node %s computed twice in one session", node),
		Node:    node,
	}
}

// newCycleError builds the error for a dependency cycle.
// chain is the walk from the first repeated node back to itself.
func newCycleError(chain []dep.Node) *InternalError {
	return &InternalError{
		Code:    ErrCodeCycleDetected,
		Message: "dependency cycle while marking green",
		Cycle:   chain,
	}
}
