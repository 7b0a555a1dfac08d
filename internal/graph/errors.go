package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/flowgraph/internal/ident"
)

// ValidationCode classifies expected, user-triggered rejections. Every
// rejection happens before any registry is touched.
type ValidationCode string

const (
	// IncompatibleTypes: the source pin type cannot flow into the target pin type.
	IncompatibleTypes ValidationCode = "incompatible_types"
	// CycleDetected: committing the edge would close a cycle.
	CycleDetected ValidationCode = "cycle_detected"
	// DuplicateInputConnection: the target input pin already has a producer.
	DuplicateInputConnection ValidationCode = "duplicate_input_connection"
	// UnknownEntity: a referenced id does not resolve to a live entity.
	UnknownEntity ValidationCode = "unknown_entity"
	// IllegalNesting: a group operation would break the group forest.
	IllegalNesting ValidationCode = "illegal_nesting"
	// InvalidDirection: the source is not an output pin or the target is not
	// an input pin.
	InvalidDirection ValidationCode = "invalid_direction"
	// ManagedConnection: the connection is an internal boundary leg owned by
	// the router and cannot be removed directly.
	ManagedConnection ValidationCode = "managed_connection"
	// InvalidSignature: a node descriptor failed its structural checks.
	InvalidSignature ValidationCode = "invalid_signature"
)

// ValidationError is an expected rejection of a proposed mutation. The graph
// is unchanged when one is returned.
type ValidationError struct {
	Code ValidationCode
	Msg  string
	// Path carries the discovered node cycle for CycleDetected, starting and
	// ending at the same node.
	Path []ident.NodeID
}

func (e *ValidationError) Error() string {
	if e.Code == CycleDetected && len(e.Path) > 0 {
		parts := make([]string, len(e.Path))
		for i, n := range e.Path {
			parts[i] = n.String()
		}
		return fmt.Sprintf("%s: %s [%s]", e.Code, e.Msg, strings.Join(parts, " -> "))
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func validationf(code ValidationCode, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is or wraps a ValidationError, optionally
// matching one of the given codes.
func IsValidation(err error, codes ...ValidationCode) bool {
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return false
	}
	if len(codes) == 0 {
		return true
	}
	for _, c := range codes {
		if ve.Code == c {
			return true
		}
	}
	return false
}

// ConsistencyError reports a violated internal invariant: a defect in the
// core itself, not user feedback. The failed operation leaves no partial
// mutation behind.
type ConsistencyError struct {
	Msg string
}

func (e *ConsistencyError) Error() string {
	return "graph consistency violated: " + e.Msg
}

func consistencyf(format string, args ...any) *ConsistencyError {
	return &ConsistencyError{Msg: fmt.Sprintf(format, args...)}
}
