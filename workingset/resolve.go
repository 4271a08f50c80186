package workingset

import (
	"context"

	"github.com/dogmatiq/workingsetkit/internal/errorx"
	"github.com/dogmatiq/workingsetkit/resource"
)

// Resolver resolves paths to resource references of type T.
type Resolver[T any] interface {
	// Resolve returns the resource at p.
	//
	// If there is no such resource, ok is false.
	Resolve(ctx context.Context, p resource.Path) (v T, ok bool, err error)
}

// ResolverFunc is an adaptor to allow the use of an ordinary function as a
// [Resolver].
type ResolverFunc[T any] func(ctx context.Context, p resource.Path) (T, bool, error)

// Resolve returns fn(ctx, p).
func (fn ResolverFunc[T]) Resolve(ctx context.Context, p resource.Path) (T, bool, error) {
	return fn(ctx, p)
}

// Resolve replaces the set's unresolved path members with the resources they
// refer to, as returned by r.
//
// If any path does not resolve, it returns an [UnresolvedPathError] and the set
// is left unchanged. It does nothing if the set's members are already
// resolved.
func (s *Set[T]) Resolve(ctx context.Context, r Resolver[T]) error {
	if s.kind != PathMembers {
		return nil
	}

	if s.identity == nil {
		return UninitializedSetError{}
	}

	var unresolved []resource.Path
	members := make(map[any]T, len(s.paths))

	for i, p := range s.Paths() {
		if err := ctx.Err(); err != nil {
			return err
		}

		v, ok, err := r.Resolve(ctx, p)
		if err != nil {
			errorx.Wrap(&err, "unable to resolve %q in the %q working set", p, s.name)
			return err
		}

		if !ok {
			unresolved = append(unresolved, p)
			continue
		}

		if isNil(v) {
			return NilMemberError{s.name, i}
		}

		k, err := s.identity(v)
		if err != nil {
			errorx.Wrap(&err, "unable to determine the identity of the resource at %q in the %q working set", p, s.name)
			return err
		}

		if _, ok := members[k]; ok {
			return DuplicateMemberError[T]{s.name, v, i}
		}

		members[k] = s.copyOf(v)
	}

	if len(unresolved) != 0 {
		return UnresolvedPathError{s.name, unresolved}
	}

	s.kind = ResourceMembers
	s.members = members
	s.paths = nil

	return nil
}
