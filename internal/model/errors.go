// Error types shared by the engine, stores and handlers.  Typed
// errors let callers branch with errors.As without string matching,
// while the Is* helpers keep handler code short.
package model

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or missing input.  It is never
// retried internally.
type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	switch {
	case e.Msg != "" && e.Field != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Field != "":
		return fmt.Sprintf("invalid %s", e.Field)
	default:
		return "validation error"
	}
}

func (e ValidationError) Unwrap() error { return e.Err }

// NotFoundError reports an unknown entity id or reference.
type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

// ConflictError reports a request rejected because a resource is
// already claimed: an overlapping bus or driver assignment, a seat
// that is already booked, or a delete blocked by dependent records.
// The engine never resolves conflicts on the caller's behalf.
type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// StateError reports an operation attempted against an entity whose
// lifecycle state forbids it, such as cancelling an already-cancelled
// booking.  Nothing is mutated when a StateError is returned.
type StateError struct {
	Resource string
	State    string
	Msg      string
}

func (e StateError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Resource != "" && e.State != "" {
		return fmt.Sprintf("%s is %s", e.Resource, e.State)
	}
	return "invalid state"
}

// InternalError wraps unexpected failures from storage or
// collaborators.
type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsState(err error) bool {
	var target StateError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}
