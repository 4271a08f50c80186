package memoryregistry

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/dogmatiq/workingsetkit/workingset"
)

// Registry is an in-memory implementation of [workingset.Registry].
//
// The zero value is an empty registry, ready to use. It is safe for
// concurrent use.
type Registry[T any] struct {
	m    sync.RWMutex
	sets []*workingset.Set[T] // sorted by name
}

// All returns the registered sets, ordered by [workingset.Compare].
func (r *Registry[T]) All(ctx context.Context) ([]*workingset.Set[T], error) {
	r.m.RLock()
	sets := slices.Clone(r.sets)
	r.m.RUnlock()

	if sets == nil {
		sets = []*workingset.Set[T]{}
	}

	return sets, ctx.Err()
}

// Find returns the set with the given name.
func (r *Registry[T]) Find(ctx context.Context, name string) (*workingset.Set[T], bool, error) {
	if name == "" {
		return nil, false, ctx.Err()
	}

	r.m.RLock()
	defer r.m.RUnlock()

	if i, ok := r.search(name); ok {
		return r.sets[i], true, ctx.Err()
	}

	return nil, false, ctx.Err()
}

// Add registers s.
func (r *Registry[T]) Add(ctx context.Context, s *workingset.Set[T]) error {
	if s == nil {
		return workingset.NilSetError{}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	r.m.Lock()
	defer r.m.Unlock()

	i, ok := r.search(s.Name())
	if ok {
		return workingset.DuplicateNameError{Name: s.Name()}
	}

	if !s.Claim() {
		return workingset.RegisteredError{Name: s.Name()}
	}

	r.sets = slices.Insert(r.sets, i, s)

	return nil
}

// Remove unregisters the set with the same name as s, if any.
func (r *Registry[T]) Remove(ctx context.Context, s *workingset.Set[T]) error {
	_, err := r.TryRemove(ctx, s)
	return err
}

// TryRemove unregisters the set with the same name as s, if any. It returns
// true if a set was removed.
func (r *Registry[T]) TryRemove(ctx context.Context, s *workingset.Set[T]) (bool, error) {
	if s == nil {
		return false, workingset.NilSetError{}
	}

	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.m.Lock()
	defer r.m.Unlock()

	i, ok := r.search(s.Name())
	if !ok {
		return false, nil
	}

	r.sets[i].Release()
	r.sets = slices.Delete(r.sets, i, i+1)

	return true, nil
}

// Rename changes the name of s, which must be registered.
func (r *Registry[T]) Rename(ctx context.Context, s *workingset.Set[T], name string) error {
	if s == nil {
		return workingset.NilSetError{}
	}

	if name == "" {
		return workingset.InvalidNameError{}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	r.m.Lock()
	defer r.m.Unlock()

	i, ok := r.search(s.Name())
	if !ok || r.sets[i] != s {
		return workingset.NotRegisteredError{Name: s.Name()}
	}

	if name == s.Name() {
		return nil
	}

	if _, ok := r.search(name); ok {
		return workingset.DuplicateNameError{Name: name}
	}

	if err := s.RenameClaimed(name); err != nil {
		return err
	}

	r.sets = slices.Delete(r.sets, i, i+1)

	j, _ := r.search(name)
	r.sets = slices.Insert(r.sets, j, s)

	return nil
}

// search returns the position of the set with the given name, or the position
// at which it would be inserted.
func (r *Registry[T]) search(name string) (int, bool) {
	return slices.BinarySearchFunc(
		r.sets,
		name,
		func(s *workingset.Set[T], name string) int {
			return strings.Compare(s.Name(), name)
		},
	)
}
