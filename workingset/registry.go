package workingset

import (
	"context"
	"strings"
)

// Registry is an ordered collection of working sets, keyed by name.
//
// No two sets in a registry have the same name, and a set may be registered
// with at most one registry at a time.
type Registry[T any] interface {
	// All returns the registered sets, ordered by [Compare].
	All(ctx context.Context) ([]*Set[T], error)

	// Find returns the set with the given name.
	//
	// If there is no such set, or name is empty, ok is false.
	Find(ctx context.Context, name string) (s *Set[T], ok bool, err error)

	// Add registers s.
	//
	// It returns a [DuplicateNameError] if a set with the same name is already
	// registered, or a [RegisteredError] if s is registered with another
	// registry.
	Add(ctx context.Context, s *Set[T]) error

	// Remove unregisters the set with the same name as s, if any.
	//
	// It is not an error to remove a set that is not registered.
	Remove(ctx context.Context, s *Set[T]) error

	// TryRemove unregisters the set with the same name as s, if any. It
	// returns true if a set was removed, or false if no set with that name was
	// registered.
	//
	// Remove() may be more performant when knowledge of prior registration is
	// not required.
	TryRemove(ctx context.Context, s *Set[T]) (bool, error)

	// Rename changes the name of s, which must be registered.
	//
	// The set is re-ordered within the registry. It returns a
	// [DuplicateNameError] if a different set already has the new name.
	Rename(ctx context.Context, s *Set[T], name string) error
}

// Compare returns an integer comparing the names of two sets
// lexicographically, by byte value.
func Compare[T any](a, b *Set[T]) int {
	return strings.Compare(a.Name(), b.Name())
}
