package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced entity no longer exists,
	// typically because an event carried a stale id.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned when an operation's precondition does not
	// hold, e.g. applying a refresh with no pending head change.
	ErrInvalidState = errors.New("invalid state")

	// ErrBranchNotFound is returned by the git collaborator when a branch
	// name does not resolve to a commit.
	ErrBranchNotFound = errors.New("branch not found")
)

// ValidationError describes bad form input. It is recovered locally and shown
// inline; it never propagates as a crash.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}
