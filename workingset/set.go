package workingset

import (
	"maps"
	"reflect"
	"slices"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/dogmatiq/workingsetkit/internal/clone"
	"github.com/dogmatiq/workingsetkit/internal/errorx"
	"github.com/dogmatiq/workingsetkit/marshaler"
	"github.com/dogmatiq/workingsetkit/resource"
)

// MemberKind describes how the members of a [Set] are represented.
type MemberKind uint8

const (
	// ResourceMembers indicates that a set's members are resolved resource
	// references of the set's member type.
	ResourceMembers MemberKind = iota + 1

	// PathMembers indicates that a set's members are paths that have not yet
	// been resolved to resource references.
	PathMembers
)

func (k MemberKind) String() string {
	switch k {
	case ResourceMembers:
		return "resources"
	case PathMembers:
		return "paths"
	default:
		return "unknown"
	}
}

// Named is an entity that is identified by its name.
type Named interface {
	Name() string
}

// Set is a named, deduplicated collection of resource references of type T.
//
// A set is identified solely by its name. Two sets with the same name are
// [Set.Equal] even if their members differ, which is what allows a [Registry]
// to enforce name uniqueness.
//
// Members are held by reference, as supplied. Sets created by [NewMarshaling]
// are the exception: they compare members by value, so they hold a private
// copy of each member instead.
//
// A set is not safe for concurrent mutation. Callers must ensure that only one
// goroutine modifies a given set at a time.
//
// The zero value is not usable. Use [New], [NewMarshaling], [NewUnresolved] or
// [NewUnresolvedMarshaling] to construct a set.
type Set[T any] struct {
	name       string
	identity   func(T) (any, error)
	snapshot   func(T) T
	kind       MemberKind
	members    map[any]T
	paths      map[resource.Path]struct{}
	registered atomic.Bool
}

// New returns a new working set containing the given elements.
//
// Elements are compared using the == operator. It returns an error if name is
// empty, elements is nil, or elements contains a nil value or the same value
// more than once.
func New[T comparable](name string, elements []T) (*Set[T], error) {
	s, err := newSet[T](name, comparableIdentity[T], nil)
	if err != nil {
		return nil, err
	}

	if err := s.SetElements(elements); err != nil {
		return nil, err
	}

	return s, nil
}

// NewMarshaling returns a new working set containing the given elements.
//
// Elements are considered equal if m produces the same binary representation
// for both, which allows the use of member types that can not be compared
// using the == operator. The set holds a private copy of each element, so
// later changes to the supplied values do not affect it.
func NewMarshaling[T any](
	name string,
	m marshaler.Marshaler[T],
	elements []T,
) (*Set[T], error) {
	s, err := newSet(name, marshalingIdentity(m), clone.Clone[T])
	if err != nil {
		return nil, err
	}

	if err := s.SetElements(elements); err != nil {
		return nil, err
	}

	return s, nil
}

// NewUnresolved returns a new working set containing the given paths, for use
// when the resources they refer to can not yet be resolved.
//
// See [Set.Resolve].
func NewUnresolved[T comparable](name string, paths []resource.Path) (*Set[T], error) {
	s, err := newSet[T](name, comparableIdentity[T], nil)
	if err != nil {
		return nil, err
	}

	if err := s.SetPaths(paths); err != nil {
		return nil, err
	}

	return s, nil
}

// NewUnresolvedMarshaling is the equivalent of [NewUnresolved] for member
// types that are compared by their binary representation.
func NewUnresolvedMarshaling[T any](
	name string,
	m marshaler.Marshaler[T],
	paths []resource.Path,
) (*Set[T], error) {
	s, err := newSet(name, marshalingIdentity(m), clone.Clone[T])
	if err != nil {
		return nil, err
	}

	if err := s.SetPaths(paths); err != nil {
		return nil, err
	}

	return s, nil
}

func newSet[T any](
	name string,
	identity func(T) (any, error),
	snapshot func(T) T,
) (*Set[T], error) {
	if name == "" {
		return nil, InvalidNameError{}
	}

	return &Set[T]{
		name:     name,
		identity: identity,
		snapshot: snapshot,
	}, nil
}

func comparableIdentity[T comparable](v T) (any, error) {
	return v, nil
}

func marshalingIdentity[T any](m marshaler.Marshaler[T]) func(T) (any, error) {
	return func(v T) (any, error) {
		data, err := m.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	}
}

// Name returns the name of the set.
func (s *Set[T]) Name() string {
	return s.name
}

// SetName changes the name of the set.
//
// It returns an error if the set is currently registered with a [Registry], as
// renaming it in place would invalidate the registry's ordering and uniqueness
// guarantees. Use [Registry.Rename] instead.
func (s *Set[T]) SetName(name string) error {
	if name == "" {
		return InvalidNameError{}
	}

	if s.registered.Load() {
		return RegisteredError{s.name}
	}

	s.name = name

	return nil
}

// Kind returns the representation of the set's members.
func (s *Set[T]) Kind() MemberKind {
	return s.kind
}

// Len returns the number of members in the set, regardless of their kind.
func (s *Set[T]) Len() int {
	if s.kind == PathMembers {
		return len(s.paths)
	}
	return len(s.members)
}

// Elements returns the set's resource members in a new slice, in an undefined
// order.
//
// It returns an empty slice if the set's members are unresolved paths.
func (s *Set[T]) Elements() []T {
	elements := make([]T, 0, len(s.members))
	for _, v := range s.members {
		elements = append(elements, s.copyOf(v))
	}
	return elements
}

// SetElements replaces the members of the set with the given elements.
//
// The set is left unchanged if elements is nil, or contains a nil value or the
// same value more than once.
func (s *Set[T]) SetElements(elements []T) error {
	if s.identity == nil {
		return UninitializedSetError{}
	}

	if elements == nil {
		return NilMembersError{s.name}
	}

	members := make(map[any]T, len(elements))

	for i, v := range elements {
		if isNil(v) {
			return NilMemberError{s.name, i}
		}

		k, err := s.identity(v)
		if err != nil {
			errorx.Wrap(&err, "unable to determine the identity of member %d of the %q working set", i, s.name)
			return err
		}

		if _, ok := members[k]; ok {
			return DuplicateMemberError[T]{s.name, v, i}
		}

		members[k] = s.copyOf(v)
	}

	s.kind = ResourceMembers
	s.members = members
	s.paths = nil

	return nil
}

// Paths returns a copy of the set's unresolved path members, in sorted order.
//
// It returns an empty slice if the set's members are resolved resources.
func (s *Set[T]) Paths() []resource.Path {
	if len(s.paths) == 0 {
		return []resource.Path{}
	}
	return slices.Sorted(maps.Keys(s.paths))
}

// SetPaths replaces the members of the set with the given unresolved paths.
//
// The set is left unchanged if paths is nil, or contains an invalid path or the
// same path more than once.
func (s *Set[T]) SetPaths(paths []resource.Path) error {
	if paths == nil {
		return NilMembersError{s.name}
	}

	members := make(map[resource.Path]struct{}, len(paths))

	for i, p := range paths {
		if err := p.Validate(); err != nil {
			return InvalidPathError{s.name, i, err}
		}

		if _, ok := members[p]; ok {
			return DuplicateMemberError[resource.Path]{s.name, p, i}
		}

		members[p] = struct{}{}
	}

	s.kind = PathMembers
	s.members = nil
	s.paths = members

	return nil
}

// Has returns true if v is a resource member of the set.
func (s *Set[T]) Has(v T) bool {
	if s.identity == nil || s.kind != ResourceMembers {
		return false
	}

	k, err := s.identity(v)
	if err != nil {
		return false
	}

	_, ok := s.members[k]
	return ok
}

// IsRegistered returns true if the set is currently registered with a
// [Registry].
func (s *Set[T]) IsRegistered() bool {
	return s.registered.Load()
}

// Claim marks the set as registered. It returns false if the set is already
// registered.
//
// It is intended for use by [Registry] implementations.
func (s *Set[T]) Claim() bool {
	return s.registered.CompareAndSwap(false, true)
}

// Release marks the set as no longer registered.
//
// It is intended for use by [Registry] implementations.
func (s *Set[T]) Release() {
	s.registered.Store(false)
}

// RenameClaimed changes the name of a registered set.
//
// It is intended for use by [Registry] implementations, which must ensure that
// no other registered set has the new name before calling it.
func (s *Set[T]) RenameClaimed(name string) error {
	if name == "" {
		return InvalidNameError{}
	}

	if !s.registered.Load() {
		return NotRegisteredError{s.name}
	}

	s.name = name

	return nil
}

// Equal returns true if other has the same name as s.
//
// Set membership is not considered.
func (s *Set[T]) Equal(other Named) bool {
	if isNil(other) {
		return false
	}
	return other.Name() == s.name
}

// Hash returns a hash of the set's name, consistent with [Set.Equal].
func (s *Set[T]) Hash() uint64 {
	return xxhash.Sum64String(s.name)
}

func (s *Set[T]) String() string {
	return s.name
}

// copyOf returns the value that is stored in, or returned from, the set in
// place of v.
func (s *Set[T]) copyOf(v T) T {
	if s.snapshot == nil {
		return v
	}
	return s.snapshot(v)
}

// isNil returns true if v is nil, or is a nil value of a nillable kind.
func isNil[T any](v T) bool {
	rv := reflect.ValueOf(any(v))
	if !rv.IsValid() {
		return true
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
