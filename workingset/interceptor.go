package workingset

import (
	"context"
	"sync/atomic"
)

// Interceptor defines functions that are invoked around registry operations.
//
// An error returned by a "before" function aborts the operation. An error
// returned by an "after" function is returned to the caller, but the
// operation has already been applied.
type Interceptor[T any] struct {
	beforeAdd    hook[func(*Set[T]) error]
	afterAdd     hook[func(*Set[T]) error]
	beforeRemove hook[func(*Set[T]) error]
	afterRemove  hook[func(*Set[T]) error]
	beforeRename hook[func(*Set[T], string) error]
	afterRename  hook[func(*Set[T], string) error]
}

// BeforeAdd sets the function that is invoked before a [Set] is added to the
// [Registry].
func (i *Interceptor[T]) BeforeAdd(fn func(s *Set[T]) error) {
	i.beforeAdd.Store(fn)
}

// AfterAdd sets the function that is invoked after a [Set] is added to the
// [Registry].
func (i *Interceptor[T]) AfterAdd(fn func(s *Set[T]) error) {
	i.afterAdd.Store(fn)
}

// BeforeRemove sets the function that is invoked before a [Set] is removed
// from the [Registry].
func (i *Interceptor[T]) BeforeRemove(fn func(s *Set[T]) error) {
	i.beforeRemove.Store(fn)
}

// AfterRemove sets the function that is invoked after a [Set] is removed from
// the [Registry].
func (i *Interceptor[T]) AfterRemove(fn func(s *Set[T]) error) {
	i.afterRemove.Store(fn)
}

// BeforeRename sets the function that is invoked before a [Set] is renamed.
// The set still has its old name when fn is called.
func (i *Interceptor[T]) BeforeRename(fn func(s *Set[T], newName string) error) {
	i.beforeRename.Store(fn)
}

// AfterRename sets the function that is invoked after a [Set] is renamed.
func (i *Interceptor[T]) AfterRename(fn func(s *Set[T], oldName string) error) {
	i.afterRename.Store(fn)
}

// WithInterceptor returns a [Registry] that invokes the functions defined by
// the given [Interceptor] when performing operations on r.
func WithInterceptor[T any](r Registry[T], in *Interceptor[T]) Registry[T] {
	if in == nil {
		return r
	}

	return &interceptedRegistry[T]{
		Next:        r,
		Interceptor: in,
	}
}

type interceptedRegistry[T any] struct {
	Next        Registry[T]
	Interceptor *Interceptor[T]
}

func (r *interceptedRegistry[T]) All(ctx context.Context) ([]*Set[T], error) {
	return r.Next.All(ctx)
}

func (r *interceptedRegistry[T]) Find(ctx context.Context, name string) (*Set[T], bool, error) {
	return r.Next.Find(ctx, name)
}

func (r *interceptedRegistry[T]) Add(ctx context.Context, s *Set[T]) error {
	if fn := r.Interceptor.beforeAdd.Load(); fn != nil {
		if err := fn(s); err != nil {
			return err
		}
	}

	if err := r.Next.Add(ctx, s); err != nil {
		return err
	}

	if fn := r.Interceptor.afterAdd.Load(); fn != nil {
		return fn(s)
	}

	return nil
}

func (r *interceptedRegistry[T]) Remove(ctx context.Context, s *Set[T]) error {
	if fn := r.Interceptor.beforeRemove.Load(); fn != nil {
		if err := fn(s); err != nil {
			return err
		}
	}

	if err := r.Next.Remove(ctx, s); err != nil {
		return err
	}

	if fn := r.Interceptor.afterRemove.Load(); fn != nil {
		return fn(s)
	}

	return nil
}

func (r *interceptedRegistry[T]) TryRemove(ctx context.Context, s *Set[T]) (bool, error) {
	if fn := r.Interceptor.beforeRemove.Load(); fn != nil {
		if err := fn(s); err != nil {
			return false, err
		}
	}

	removed, err := r.Next.TryRemove(ctx, s)
	if err != nil {
		return false, err
	}

	if fn := r.Interceptor.afterRemove.Load(); fn != nil {
		if err := fn(s); err != nil {
			return false, err
		}
	}

	return removed, nil
}

func (r *interceptedRegistry[T]) Rename(ctx context.Context, s *Set[T], name string) error {
	if fn := r.Interceptor.beforeRename.Load(); fn != nil {
		if err := fn(s, name); err != nil {
			return err
		}
	}

	var oldName string
	if s != nil {
		oldName = s.Name()
	}

	if err := r.Next.Rename(ctx, s, name); err != nil {
		return err
	}

	if fn := r.Interceptor.afterRename.Load(); fn != nil {
		return fn(s, oldName)
	}

	return nil
}

// hook is an interceptor function that can be replaced atomically.
type hook[F any] struct {
	fn atomic.Pointer[F]
}

// Store replaces the hook's function. A nil function clears the hook.
func (h *hook[F]) Store(fn F) {
	h.fn.Store(&fn)
}

// Load returns the hook's function, which is nil if none has been stored.
func (h *hook[F]) Load() F {
	if p := h.fn.Load(); p != nil {
		return *p
	}

	var zero F
	return zero
}
