package workflow

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidGraph  = errors.New("invalid workflow graph")
	ErrCycle         = errors.New("cycle detected")
	ErrNoEntryPoint  = errors.New("no single entry point")
	ErrStateConflict = errors.New("state conflict")
	ErrInvalidUpdate = errors.New("invalid state update")
)

// GraphError reports a graph that failed validation in Compile.
type GraphError struct {
	Kind error
	Msg  string
}

func (e *GraphError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *GraphError) Unwrap() error { return e.Kind }

func invalidf(format string, args ...any) error {
	return &GraphError{Kind: ErrInvalidGraph, Msg: fmt.Sprintf(format, args...)}
}

func cycleError(path []string) error {
	msg := "cycle"
	if len(path) > 0 {
		msg = "cycle: " + strings.Join(path, " -> ")
	}
	return &GraphError{Kind: ErrCycle, Msg: msg}
}

func noEntryf(format string, args ...any) error {
	return &GraphError{Kind: ErrNoEntryPoint, Msg: fmt.Sprintf(format, args...)}
}

// StateConflictError is returned when two nodes claim the same field, or
// a node writes a field it does not own.
type StateConflictError struct {
	Field Field
	Nodes []string
	Msg   string
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("%s on field %q (%s): %s", ErrStateConflict, e.Field, strings.Join(e.Nodes, ", "), e.Msg)
}

func (e *StateConflictError) Unwrap() error { return ErrStateConflict }

// UpdateError is returned by State.Merge for an unknown field or a value
// of the wrong type.
type UpdateError struct {
	Field Field
	Msg   string
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("%s: field %q: %s", ErrInvalidUpdate, e.Field, e.Msg)
}

func (e *UpdateError) Unwrap() error { return ErrInvalidUpdate }

// NodeExecutionError wraps the failure of a single node. The run that
// produced it returns no state.
type NodeExecutionError struct {
	Node  string
	Cause error
}

func (e *NodeExecutionError) Error() string {
	return fmt.Sprintf("node %q failed: %v", e.Node, e.Cause)
}

func (e *NodeExecutionError) Unwrap() error { return e.Cause }
