package workingset

import (
	"context"
	"fmt"
	"testing"

	"github.com/dogmatiq/workingsetkit/internal/x/xtesting"
	"github.com/dogmatiq/workingsetkit/resource"
)

// RunBenchmarks runs benchmarks against a [Registry] implementation.
//
// newRegistry must return a new, empty registry each time it is called.
func RunBenchmarks(
	b *testing.B,
	newRegistry func(b *testing.B) Registry[resource.Ref],
) {
	// populate adds n sets to reg and returns them.
	populate := func(ctx context.Context, reg Registry[resource.Ref], n int) ([]*Set[resource.Ref], error) {
		var sets []*Set[resource.Ref]

		for i := range n {
			name := fmt.Sprintf("set-%04d", i)

			s, err := New(
				name,
				[]resource.Ref{
					resource.FileRef(resource.Path("/" + name)),
				},
			)
			if err != nil {
				return nil, err
			}

			if err := reg.Add(ctx, s); err != nil {
				return nil, err
			}

			sets = append(sets, s)
		}

		return sets, nil
	}

	for _, size := range []int{10, 100} {
		b.Run(fmt.Sprintf("%d sets", size), func(b *testing.B) {
			b.Run("Add", func(b *testing.B) {
				var (
					reg Registry[resource.Ref]
					set *Set[resource.Ref]
				)

				xtesting.Benchmark(
					b,
					// SETUP
					func(ctx context.Context) (err error) {
						reg = newRegistry(b)
						_, err = populate(ctx, reg, size)
						return err
					},
					// BEFORE EACH
					func(context.Context) (err error) {
						set, err = New(xtesting.SequentialName("set"), []resource.Ref{})
						return err
					},
					// BENCHMARKED CODE
					func(ctx context.Context) error {
						return reg.Add(ctx, set)
					},
					// AFTER EACH
					func(ctx context.Context) error {
						return reg.Remove(ctx, set)
					},
				)
			})

			b.Run("Find", func(b *testing.B) {
				var (
					reg  Registry[resource.Ref]
					sets []*Set[resource.Ref]
					i    int
				)

				xtesting.Benchmark(
					b,
					// SETUP
					func(ctx context.Context) (err error) {
						reg = newRegistry(b)
						sets, err = populate(ctx, reg, size)
						return err
					},
					// BEFORE EACH
					nil,
					// BENCHMARKED CODE
					func(ctx context.Context) error {
						i = (i + 1) % len(sets)
						_, _, err := reg.Find(ctx, sets[i].Name())
						return err
					},
					// AFTER EACH
					nil,
				)
			})

			b.Run("All", func(b *testing.B) {
				var reg Registry[resource.Ref]

				xtesting.Benchmark(
					b,
					// SETUP
					func(ctx context.Context) error {
						reg = newRegistry(b)
						_, err := populate(ctx, reg, size)
						return err
					},
					// BEFORE EACH
					nil,
					// BENCHMARKED CODE
					func(ctx context.Context) error {
						_, err := reg.All(ctx)
						return err
					},
					// AFTER EACH
					nil,
				)
			})
		})
	}
}
