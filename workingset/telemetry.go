package workingset

import (
	"context"

	"github.com/dogmatiq/workingsetkit/internal/telemetry"
	"github.com/dogmatiq/workingsetkit/internal/x/xtelemetry"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// WithTelemetry returns a [Registry] that adds telemetry to r.
func WithTelemetry[T any](
	r Registry[T],
	p trace.TracerProvider,
	m metric.MeterProvider,
	l log.LoggerProvider,
) Registry[T] {
	telem := telemetry.Provider{
		TracerProvider: p,
		MeterProvider:  m,
		LoggerProvider: l,
	}

	rec := telem.Recorder(
		"github.com/dogmatiq/workingsetkit/workingset",
		telemetry.Type("workingset.registry", r),
		telemetry.Stringer("workingset.registry.handle", xtelemetry.NewHandle()),
	)

	return &instrumentedRegistry[T]{
		Next:           r,
		Telemetry:      rec,
		RegisteredSets: rec.UpDownCounter("registered_sets", "{set}", "The number of working sets that are currently registered."),
		Members:        rec.Histogram("members", "{member}", "The number of members in working sets that have been registered."),
	}
}

// instrumentedRegistry is a decorator that adds instrumentation to a
// [Registry].
type instrumentedRegistry[T any] struct {
	Next      Registry[T]
	Telemetry *telemetry.Recorder

	RegisteredSets telemetry.Instrument[int64]
	Members        telemetry.Instrument[int64]
}

func (r *instrumentedRegistry[T]) All(ctx context.Context) ([]*Set[T], error) {
	ctx, span := r.Telemetry.StartSpan(ctx, "workingset.all")
	defer span.End()

	sets, err := r.Next.All(ctx)
	if err != nil {
		r.Telemetry.Error(ctx, "workingset.all.error", err)
		return nil, err
	}

	span.SetAttributes(
		telemetry.Int("set_count", len(sets)),
	)

	return sets, nil
}

func (r *instrumentedRegistry[T]) Find(ctx context.Context, name string) (*Set[T], bool, error) {
	ctx, span := r.Telemetry.StartSpan(
		ctx,
		"workingset.find",
		telemetry.String("set_name", name),
	)
	defer span.End()

	s, ok, err := r.Next.Find(ctx, name)
	if err != nil {
		r.Telemetry.Error(ctx, "workingset.find.error", err)
		return nil, false, err
	}

	span.SetAttributes(
		telemetry.Bool("set_found", ok),
		telemetry.If(ok, telemetry.Stringer("member_kind", memberKindOf(s))),
	)

	if ok {
		r.Telemetry.Info(ctx, "workingset.find.ok", "working set found")
	} else {
		r.Telemetry.Info(ctx, "workingset.find.ok", "working set not found")
	}

	return s, ok, nil
}

func (r *instrumentedRegistry[T]) Add(ctx context.Context, s *Set[T]) error {
	ctx, span := r.Telemetry.StartSpan(
		ctx,
		"workingset.add",
		setAttrs(s)...,
	)
	defer span.End()

	if err := r.Next.Add(ctx, s); err != nil {
		r.Telemetry.Error(ctx, "workingset.add.error", err)
		return err
	}

	r.RegisteredSets(ctx, 1)
	r.Members(ctx, int64(s.Len()), telemetry.Stringer("member_kind", s.Kind()))
	r.Telemetry.Info(ctx, "workingset.add.ok", "registered working set")

	return nil
}

// Remove defers to the wrapped registry's TryRemove, as registered_sets must
// only change when a set is actually unregistered.
func (r *instrumentedRegistry[T]) Remove(ctx context.Context, s *Set[T]) error {
	_, err := r.tryRemove(ctx, "workingset.remove", s)
	return err
}

func (r *instrumentedRegistry[T]) TryRemove(ctx context.Context, s *Set[T]) (bool, error) {
	return r.tryRemove(ctx, "workingset.try_remove", s)
}

func (r *instrumentedRegistry[T]) tryRemove(ctx context.Context, op string, s *Set[T]) (bool, error) {
	ctx, span := r.Telemetry.StartSpan(ctx, op, setAttrs(s)...)
	defer span.End()

	removed, err := r.Next.TryRemove(ctx, s)
	if err != nil {
		r.Telemetry.Error(ctx, op+".error", err)
		return false, err
	}

	span.SetAttributes(
		telemetry.Bool("set_removed", removed),
	)

	if removed {
		r.RegisteredSets(ctx, -1)
		r.Telemetry.Info(ctx, op+".ok", "unregistered working set")
	} else {
		r.Telemetry.Info(ctx, op+".ok", "working set was not registered")
	}

	return removed, nil
}

func (r *instrumentedRegistry[T]) Rename(ctx context.Context, s *Set[T], name string) error {
	attrs := append(
		setAttrs(s),
		telemetry.String("set_new_name", name),
	)

	ctx, span := r.Telemetry.StartSpan(ctx, "workingset.rename", attrs...)
	defer span.End()

	if err := r.Next.Rename(ctx, s, name); err != nil {
		r.Telemetry.Error(ctx, "workingset.rename.error", err)
		return err
	}

	r.Telemetry.Info(ctx, "workingset.rename.ok", "renamed working set")

	return nil
}

func setAttrs[T any](s *Set[T]) []telemetry.Attr {
	if s == nil {
		return nil
	}

	return []telemetry.Attr{
		telemetry.String("set_name", s.Name()),
		telemetry.Stringer("member_kind", s.Kind()),
		telemetry.Int("member_count", s.Len()),
	}
}

func memberKindOf[T any](s *Set[T]) MemberKind {
	if s == nil {
		return 0
	}
	return s.Kind()
}
