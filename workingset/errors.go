package workingset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dogmatiq/workingsetkit/resource"
)

// IsInvalidArgument returns true if err is caused by an invalid argument, such
// as an empty name or a duplicate member.
func IsInvalidArgument(err error) bool {
	var target interface {
		isInvalidArgument()
	}

	return errors.As(err, &target)
}

// IsPreconditionViolation returns true if err is caused by an operation that
// is not permitted in the current state of a [Set] or [Registry], such as
// registering a name that is already in use.
func IsPreconditionViolation(err error) bool {
	var target interface {
		isPreconditionViolation()
	}

	return errors.As(err, &target)
}

// InvalidNameError is returned when a working set is given an empty name.
type InvalidNameError struct{}

func (e InvalidNameError) Error() string {
	return "working set name must not be empty"
}

func (InvalidNameError) isInvalidArgument() {}

// NilMembersError is returned when a working set is populated with a nil
// slice.
type NilMembersError struct {
	// Set is the name of the working set.
	Set string
}

func (e NilMembersError) Error() string {
	return fmt.Sprintf("members of the %q working set must not be nil", e.Set)
}

func (NilMembersError) isInvalidArgument() {}

// NilMemberError is returned when a working set is populated with a nil
// member.
type NilMemberError struct {
	// Set is the name of the working set.
	Set string

	// Index is the position of the nil member within the supplied slice.
	Index int
}

func (e NilMemberError) Error() string {
	return fmt.Sprintf("member at index %d of the %q working set must not be nil", e.Index, e.Set)
}

func (NilMemberError) isInvalidArgument() {}

// DuplicateMemberError is returned when a working set is populated with a
// slice that contains the same member more than once.
type DuplicateMemberError[T any] struct {
	// Set is the name of the working set.
	Set string

	// Member is the duplicated member.
	Member T

	// Index is the position of the second occurrence of the member within the
	// supplied slice.
	Index int
}

func (e DuplicateMemberError[T]) Error() string {
	return fmt.Sprintf(
		"member %v at index %d of the %q working set is a duplicate, each member must occur only once",
		e.Member,
		e.Index,
		e.Set,
	)
}

func (DuplicateMemberError[T]) isInvalidArgument() {}

// InvalidPathError is returned when a working set is populated with a path
// that is not valid.
type InvalidPathError struct {
	// Set is the name of the working set.
	Set string

	// Index is the position of the invalid path within the supplied slice.
	Index int

	// Cause is the error returned by [resource.Path.Validate].
	Cause error
}

func (e InvalidPathError) Error() string {
	return fmt.Sprintf("path at index %d of the %q working set is invalid: %s", e.Index, e.Set, e.Cause)
}

func (e InvalidPathError) Unwrap() error {
	return e.Cause
}

func (InvalidPathError) isInvalidArgument() {}

// UnresolvedPathError is returned by [Set.Resolve] if one or more paths could
// not be resolved to a resource.
type UnresolvedPathError struct {
	// Set is the name of the working set.
	Set string

	// Paths are the paths that could not be resolved, in sorted order.
	Paths []resource.Path
}

func (e UnresolvedPathError) Error() string {
	paths := make([]string, len(e.Paths))
	for i, p := range e.Paths {
		paths[i] = string(p)
	}

	return fmt.Sprintf(
		"unable to resolve %d path(s) in the %q working set: %s",
		len(e.Paths),
		e.Set,
		strings.Join(paths, ", "),
	)
}

func (UnresolvedPathError) isInvalidArgument() {}

// NilSetError is returned when a nil [Set] is passed to a [Registry].
type NilSetError struct{}

func (e NilSetError) Error() string {
	return "working set must not be nil"
}

func (NilSetError) isInvalidArgument() {}

// UninitializedSetError is returned when members are added to the zero value
// of [Set], which has no means of comparing them.
type UninitializedSetError struct{}

func (e UninitializedSetError) Error() string {
	return "working set is not initialized, use workingset.New() or a related function to construct it"
}

func (UninitializedSetError) isPreconditionViolation() {}

// DuplicateNameError is returned by [Registry.Add] and [Registry.Rename] if a
// different working set with the same name is already registered.
type DuplicateNameError struct {
	// Name is the name that is already in use.
	Name string
}

func (e DuplicateNameError) Error() string {
	return fmt.Sprintf("a working set named %q is already registered", e.Name)
}

func (DuplicateNameError) isPreconditionViolation() {}

// RegisteredError is returned when an operation requires a working set that is
// not registered with any [Registry], but the set is registered.
type RegisteredError struct {
	// Name is the name of the working set.
	Name string
}

func (e RegisteredError) Error() string {
	return fmt.Sprintf("the %q working set is already registered, use Registry.Rename() to rename a registered set", e.Name)
}

func (RegisteredError) isPreconditionViolation() {}

// NotRegisteredError is returned by [Registry.Rename] if the working set is
// not the set registered under its name.
type NotRegisteredError struct {
	// Name is the name of the working set.
	Name string
}

func (e NotRegisteredError) Error() string {
	return fmt.Sprintf("the %q working set is not registered", e.Name)
}

func (NotRegisteredError) isPreconditionViolation() {}
