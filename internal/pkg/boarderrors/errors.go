// Package boarderrors defines the error taxonomy shared across the board
// execution engine: descriptor, resolution, handler, reanimation, and
// cancellation failures all wrap one of the sentinels below.
package boarderrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidState       = errors.New("invalid state")
	ErrCycle              = errors.New("cycle detected in board")
	ErrMaxInvocations     = errors.New("max invocations per node exceeded")
	ErrNoHandler          = errors.New("no handler for node type")
	ErrUnknownTicket      = errors.New("unknown or corrupted reanimation ticket")
	ErrAborted            = errors.New("run aborted")
	ErrTimeout            = errors.New("operation timeout")
)

// DomainError wraps a sentinel with a stable code and structured details
// so callers can branch with errors.As instead of string matching.
type DomainError struct {
	Code    string
	Message string
	Err     error
	Details map[string]interface{}
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error { return e.Err }

func New(code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err, Details: make(map[string]interface{})}
}

func (e *DomainError) WithDetails(key string, value interface{}) *DomainError {
	e.Details[key] = value
	return e
}

func NotFound(resource, id string) *DomainError {
	return New("NOT_FOUND", fmt.Sprintf("%s not found", resource), ErrNotFound).
		WithDetails("resource", resource).WithDetails("id", id)
}

func InvalidInput(field, reason string) *DomainError {
	return New("INVALID_INPUT", fmt.Sprintf("invalid input for field %s", field), ErrInvalidInput).
		WithDetails("field", field).WithDetails("reason", reason)
}

func InvalidState(current, attempted string) *DomainError {
	return New("INVALID_STATE", fmt.Sprintf("cannot perform %s in state %s", attempted, current), ErrInvalidState).
		WithDetails("current_state", current).WithDetails("attempted_operation", attempted)
}

// DescriptorInvalid reports a structural error found while building a
// Representation from a Descriptor (missing endpoints, duplicate ids).
func DescriptorInvalid(reason string) *DomainError {
	return New("DESCRIPTOR_INVALID", reason, ErrInvalidInput)
}

// NoHandler reports that the registry has no kit entry for a node type.
func NoHandler(nodeType string) *DomainError {
	return New("NO_HANDLER", fmt.Sprintf("no handler registered for type %q", nodeType), ErrNoHandler).
		WithDetails("type", nodeType)
}

// HandlerFailed wraps an error raised by a handler's invoke function.
func HandlerFailed(nodeID string, err error) *DomainError {
	return New("HANDLER_ERROR", fmt.Sprintf("handler for node %q failed", nodeID), err).
		WithDetails("node_id", nodeID)
}

// UnknownTicket reports that a reanimation ticket could not be resolved
// to a persisted ReanimationState.
func UnknownTicket(ticket string) *DomainError {
	return New("REANIMATION_UNKNOWN_TICKET", "reanimation ticket not found or already consumed", ErrUnknownTicket).
		WithDetails("ticket", ticket)
}

// Aborted reports that a run's context was cancelled mid-traversal.
func Aborted(runID string) *DomainError {
	return New("ABORTED", "run aborted by caller", ErrAborted).WithDetails("run_id", runID)
}

func Is(err, target error) bool { return errors.Is(err, target) }
func As(err error, target any) bool { return errors.As(err, target) }
