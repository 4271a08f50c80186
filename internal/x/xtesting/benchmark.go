package xtesting

import (
	"context"
	"testing"
	"time"
)

// Benchmark benchmarks fn.
//
// It calls setup once before the first iteration, and pre and post before and
// after each iteration, respectively. Any of these hooks may be nil.
//
// Only the time spent in fn is measured.
func Benchmark(
	b *testing.B,
	setup func(context.Context) error,
	pre func(context.Context) error,
	fn func(context.Context) error,
	post func(context.Context) error,
) {
	ctx := b.Context()
	checkIterationThreshold(b)

	step(b, ctx, setup)

	for b.Loop() {
		b.StopTimer()
		step(b, ctx, pre)

		b.StartTimer()
		err := fn(ctx)
		b.StopTimer()

		if err != nil {
			b.Fatal(err)
		}

		step(b, ctx, post)
		b.StartTimer()
	}
}

// step calls fn with a bounded context, failing the benchmark if it returns an
// error.
func step(b *testing.B, ctx context.Context, fn func(context.Context) error) {
	if fn == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := fn(ctx); err != nil {
		b.Fatal(err)
	}
}

// checkIterationThreshold skips the benchmark if the number of iterations is
// too high, which happens when the benchmarked code is too fast to measure
// meaningfully.
func checkIterationThreshold(b *testing.B) {
	const threshold = 1_000_000
	if b.N >= threshold {
		b.Skipf("benchmark skipped, too many iterations (%d); benchmarked code is likely too fast to measure meaningfully", b.N)
	}
}
