package workingset

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/dogmatiq/workingsetkit/resource"
	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"
)

// RunTests runs tests that confirm a [Registry] implementation behaves
// correctly.
//
// newRegistry must return a new, empty registry each time it is called.
func RunTests(
	t *testing.T,
	newRegistry func(t *testing.T) Registry[resource.Ref],
) {
	setup := func(t *testing.T, names ...string) (Registry[resource.Ref], []*Set[resource.Ref]) {
		t.Helper()

		reg := newRegistry(t)
		var sets []*Set[resource.Ref]

		for _, n := range names {
			s := newTestSet(t, n, "/"+n)
			if err := reg.Add(t.Context(), s); err != nil {
				t.Fatal(err)
			}
			sets = append(sets, s)
		}

		return reg, sets
	}

	expectNames := func(t *testing.T, reg Registry[resource.Ref], want ...string) {
		t.Helper()

		sets, err := reg.All(t.Context())
		if err != nil {
			t.Fatal(err)
		}

		if want == nil {
			want = []string{}
		}

		if diff := cmp.Diff(want, setNames(sets)); diff != "" {
			t.Fatalf("unexpected registered sets (-want +got):\n%s", diff)
		}
	}

	t.Run("Registry", func(t *testing.T) {
		t.Parallel()

		t.Run("All", func(t *testing.T) {
			t.Parallel()

			t.Run("it returns an empty slice when no sets are registered", func(t *testing.T) {
				t.Parallel()

				reg, _ := setup(t)

				sets, err := reg.All(t.Context())
				if err != nil {
					t.Fatal(err)
				}

				if sets == nil {
					t.Fatal("expected a non-nil slice")
				}

				if len(sets) != 0 {
					t.Fatalf("unexpected number of sets: got %d, want 0", len(sets))
				}
			})

			t.Run("it returns the sets ordered by name", func(t *testing.T) {
				t.Parallel()

				reg, _ := setup(t, "B", "A", "C")
				expectNames(t, reg, "A", "B", "C")
			})

			t.Run("it orders names by byte value", func(t *testing.T) {
				t.Parallel()

				reg, _ := setup(t, "b", "_", "a", "B")
				expectNames(t, reg, "B", "_", "a", "b")
			})

			t.Run("it returns a snapshot that is not affected by later changes", func(t *testing.T) {
				t.Parallel()

				reg, _ := setup(t, "A", "B")

				sets, err := reg.All(t.Context())
				if err != nil {
					t.Fatal(err)
				}

				sets[0] = nil

				if err := reg.Add(t.Context(), newTestSet(t, "C")); err != nil {
					t.Fatal(err)
				}

				if len(sets) != 2 {
					t.Fatalf("unexpected snapshot length: got %d, want 2", len(sets))
				}

				expectNames(t, reg, "A", "B", "C")
			})
		})

		t.Run("Find", func(t *testing.T) {
			t.Parallel()

			t.Run("it returns false if the name is empty", func(t *testing.T) {
				t.Parallel()

				reg, _ := setup(t, "A")

				_, ok, err := reg.Find(t.Context(), "")
				if err != nil {
					t.Fatal(err)
				}
				if ok {
					t.Fatal("expected ok to be false")
				}
			})

			t.Run("it returns false if no set has the name", func(t *testing.T) {
				t.Parallel()

				reg, _ := setup(t, "A", "B")

				_, ok, err := reg.Find(t.Context(), "Z")
				if err != nil {
					t.Fatal(err)
				}
				if ok {
					t.Fatal("expected ok to be false")
				}
			})

			t.Run("it returns the registered set", func(t *testing.T) {
				t.Parallel()

				reg, sets := setup(t, "A", "B", "C")
				want := sets[1]

				got, ok, err := reg.Find(t.Context(), want.Name())
				if err != nil {
					t.Fatal(err)
				}
				if !ok {
					t.Fatal("expected ok to be true")
				}
				if got != want {
					t.Fatalf("unexpected set: got %q, want %q", got, want)
				}
				if !got.Equal(want) {
					t.Fatal("expected sets to be equal")
				}
			})

			t.Run("it matches names exactly", func(t *testing.T) {
				t.Parallel()

				reg, _ := setup(t, "Foo")

				_, ok, err := reg.Find(t.Context(), "foo")
				if err != nil {
					t.Fatal(err)
				}
				if ok {
					t.Fatal("expected ok to be false")
				}
			})
		})

		t.Run("Add", func(t *testing.T) {
			t.Parallel()

			t.Run("it marks the set as registered", func(t *testing.T) {
				t.Parallel()

				_, sets := setup(t, "A")

				if !sets[0].IsRegistered() {
					t.Fatal("expected set to be registered")
				}
			})

			t.Run("it returns a precondition violation if a set with the same name is registered", func(t *testing.T) {
				t.Parallel()

				reg, sets := setup(t, "Foo")
				dup := newTestSet(t, "Foo", "/other")

				err := reg.Add(t.Context(), dup)
				if !IsPreconditionViolation(err) {
					t.Fatalf("unexpected error: got %v, want a precondition violation", err)
				}

				var target DuplicateNameError
				if !errors.As(err, &target) || target.Name != "Foo" {
					t.Fatalf("unexpected error: got %v, want %v", err, DuplicateNameError{"Foo"})
				}

				if dup.IsRegistered() {
					t.Fatal("did not expect the duplicate set to be registered")
				}

				expectNames(t, reg, "Foo")

				got, _, err := reg.Find(t.Context(), "Foo")
				if err != nil {
					t.Fatal(err)
				}
				if got != sets[0] {
					t.Fatal("expected the original set to remain registered")
				}
			})

			t.Run("it returns a precondition violation if the set is registered with another registry", func(t *testing.T) {
				t.Parallel()

				_, sets := setup(t, "A")
				other := newRegistry(t)

				err := other.Add(t.Context(), sets[0])
				if !IsPreconditionViolation(err) {
					t.Fatalf("unexpected error: got %v, want a precondition violation", err)
				}

				expectNames(t, other)
			})

			t.Run("it returns an invalid argument error if the set is nil", func(t *testing.T) {
				t.Parallel()

				reg, _ := setup(t)

				err := reg.Add(t.Context(), nil)
				if !IsInvalidArgument(err) {
					t.Fatalf("unexpected error: got %v, want an invalid argument error", err)
				}
			})

			t.Run("it prevents the set from being renamed directly", func(t *testing.T) {
				t.Parallel()

				_, sets := setup(t, "A")

				err := sets[0].SetName("B")
				if !IsPreconditionViolation(err) {
					t.Fatalf("unexpected error: got %v, want a precondition violation", err)
				}

				if got, want := sets[0].Name(), "A"; got != want {
					t.Fatalf("unexpected name: got %q, want %q", got, want)
				}
			})
		})

		t.Run("Remove", func(t *testing.T) {
			t.Parallel()

			t.Run("it removes the set", func(t *testing.T) {
				t.Parallel()

				reg, sets := setup(t, "A", "B", "C")

				if err := reg.Remove(t.Context(), sets[1]); err != nil {
					t.Fatal(err)
				}

				expectNames(t, reg, "A", "C")

				if sets[1].IsRegistered() {
					t.Fatal("did not expect set to be registered")
				}
			})

			t.Run("it removes the set with the same name, even if it is a different instance", func(t *testing.T) {
				t.Parallel()

				reg, sets := setup(t, "Foo")

				if err := reg.Remove(t.Context(), newTestSet(t, "Foo")); err != nil {
					t.Fatal(err)
				}

				expectNames(t, reg)

				if sets[0].IsRegistered() {
					t.Fatal("did not expect set to be registered")
				}
			})

			t.Run("it does nothing if the set is not registered", func(t *testing.T) {
				t.Parallel()

				reg, _ := setup(t, "A", "B")

				if err := reg.Remove(t.Context(), newTestSet(t, "C")); err != nil {
					t.Fatal(err)
				}

				expectNames(t, reg, "A", "B")
			})

			t.Run("it allows the set to be registered again", func(t *testing.T) {
				t.Parallel()

				reg, sets := setup(t, "A")

				if err := reg.Remove(t.Context(), sets[0]); err != nil {
					t.Fatal(err)
				}

				if err := reg.Add(t.Context(), sets[0]); err != nil {
					t.Fatal(err)
				}

				expectNames(t, reg, "A")
			})

			t.Run("it allows the set to be renamed directly", func(t *testing.T) {
				t.Parallel()

				reg, sets := setup(t, "A")

				if err := reg.Remove(t.Context(), sets[0]); err != nil {
					t.Fatal(err)
				}

				if err := sets[0].SetName("B"); err != nil {
					t.Fatal(err)
				}
			})
		})

		t.Run("TryRemove", func(t *testing.T) {
			t.Parallel()

			t.Run("it returns true if the set was removed", func(t *testing.T) {
				t.Parallel()

				reg, sets := setup(t, "A", "B")

				ok, err := reg.TryRemove(t.Context(), sets[0])
				if err != nil {
					t.Fatal(err)
				}

				if !ok {
					t.Fatal("expected TryRemove() to report that the set was removed")
				}

				expectNames(t, reg, "B")

				if sets[0].IsRegistered() {
					t.Fatal("did not expect set to be registered")
				}
			})

			t.Run("it returns false if the set was not registered", func(t *testing.T) {
				t.Parallel()

				reg, _ := setup(t, "A")

				ok, err := reg.TryRemove(t.Context(), newTestSet(t, "B"))
				if err != nil {
					t.Fatal(err)
				}

				if ok {
					t.Fatal("did not expect TryRemove() to report that a set was removed")
				}

				expectNames(t, reg, "A")
			})

			t.Run("it returns an error if the set is nil", func(t *testing.T) {
				t.Parallel()

				reg, _ := setup(t)

				if _, err := reg.TryRemove(t.Context(), nil); !IsInvalidArgument(err) {
					t.Fatalf("unexpected error: got %v, want an invalid argument error", err)
				}
			})
		})

		t.Run("Rename", func(t *testing.T) {
			t.Parallel()

			t.Run("it renames the set and preserves the ordering", func(t *testing.T) {
				t.Parallel()

				reg, sets := setup(t, "A", "B", "C")

				if err := reg.Rename(t.Context(), sets[0], "D"); err != nil {
					t.Fatal(err)
				}

				expectNames(t, reg, "B", "C", "D")

				if got, want := sets[0].Name(), "D"; got != want {
					t.Fatalf("unexpected name: got %q, want %q", got, want)
				}

				if _, ok, err := reg.Find(t.Context(), "A"); err != nil {
					t.Fatal(err)
				} else if ok {
					t.Fatal("did not expect to find a set under the old name")
				}

				got, ok, err := reg.Find(t.Context(), "D")
				if err != nil {
					t.Fatal(err)
				}
				if !ok || got != sets[0] {
					t.Fatal("expected to find the set under the new name")
				}

				if !sets[0].IsRegistered() {
					t.Fatal("expected set to remain registered")
				}
			})

			t.Run("it does nothing when renaming to the current name", func(t *testing.T) {
				t.Parallel()

				reg, sets := setup(t, "A", "B")

				if err := reg.Rename(t.Context(), sets[0], "A"); err != nil {
					t.Fatal(err)
				}

				expectNames(t, reg, "A", "B")
			})

			t.Run("it returns a precondition violation if the new name is in use", func(t *testing.T) {
				t.Parallel()

				reg, sets := setup(t, "A", "B")

				err := reg.Rename(t.Context(), sets[0], "B")
				if !IsPreconditionViolation(err) {
					t.Fatalf("unexpected error: got %v, want a precondition violation", err)
				}

				expectNames(t, reg, "A", "B")

				if got, want := sets[0].Name(), "A"; got != want {
					t.Fatalf("unexpected name: got %q, want %q", got, want)
				}
			})

			t.Run("it returns a precondition violation if the set is not registered", func(t *testing.T) {
				t.Parallel()

				reg, _ := setup(t, "A")

				err := reg.Rename(t.Context(), newTestSet(t, "B"), "C")
				if !IsPreconditionViolation(err) {
					t.Fatalf("unexpected error: got %v, want a precondition violation", err)
				}

				expectNames(t, reg, "A")
			})

			t.Run("it returns a precondition violation if a different set is registered under the same name", func(t *testing.T) {
				t.Parallel()

				reg, _ := setup(t, "Foo")

				err := reg.Rename(t.Context(), newTestSet(t, "Foo"), "Bar")
				if !IsPreconditionViolation(err) {
					t.Fatalf("unexpected error: got %v, want a precondition violation", err)
				}

				expectNames(t, reg, "Foo")
			})

			t.Run("it returns an invalid argument error if the name is empty", func(t *testing.T) {
				t.Parallel()

				reg, sets := setup(t, "A")

				err := reg.Rename(t.Context(), sets[0], "")
				if !IsInvalidArgument(err) {
					t.Fatalf("unexpected error: got %v, want an invalid argument error", err)
				}

				expectNames(t, reg, "A")
			})
		})

		t.Run("property-based", func(t *testing.T) {
			t.Parallel()

			outer := t

			rapid.Check(t, func(t *rapid.T) {
				reg := newRegistry(outer)
				model := map[string]*Set[resource.Ref]{}

				name := rapid.StringMatching(`[a-dA-D]{1,2}`)

				t.Repeat(
					map[string]func(*rapid.T){
						"Add": func(t *rapid.T) {
							n := name.Draw(t, "name")
							s := newTestSet(t, n)

							err := reg.Add(t.Context(), s)

							if _, ok := model[n]; ok {
								if !IsPreconditionViolation(err) {
									t.Fatalf("unexpected error adding duplicate %q: got %v, want a precondition violation", n, err)
								}
								return
							}

							if err != nil {
								t.Fatal(err)
							}

							model[n] = s
						},
						"Remove": func(t *rapid.T) {
							n := name.Draw(t, "name")

							if err := reg.Remove(t.Context(), newTestSet(t, n)); err != nil {
								t.Fatal(err)
							}

							if s, ok := model[n]; ok {
								if s.IsRegistered() {
									t.Fatalf("expected %q to be unregistered", n)
								}
								delete(model, n)
							}
						},
						"TryRemove": func(t *rapid.T) {
							n := name.Draw(t, "name")

							ok, err := reg.TryRemove(t.Context(), newTestSet(t, n))
							if err != nil {
								t.Fatal(err)
							}

							_, want := model[n]
							if ok != want {
								t.Fatalf("unexpected TryRemove(%q) result: got %t, want %t", n, ok, want)
							}

							delete(model, n)
						},
						"Rename": func(t *rapid.T) {
							if len(model) == 0 {
								t.Skip("skip: registry is empty")
							}

							from := rapid.SampledFrom(sortedKeys(model)).Draw(t, "from")
							to := name.Draw(t, "to")
							s := model[from]

							err := reg.Rename(t.Context(), s, to)

							if _, ok := model[to]; ok && to != from {
								if !IsPreconditionViolation(err) {
									t.Fatalf("unexpected error renaming %q to %q: got %v, want a precondition violation", from, to, err)
								}
								return
							}

							if err != nil {
								t.Fatal(err)
							}

							delete(model, from)
							model[to] = s
						},
						"Find": func(t *rapid.T) {
							n := name.Draw(t, "name")

							got, ok, err := reg.Find(t.Context(), n)
							if err != nil {
								t.Fatal(err)
							}

							want, expect := model[n]
							if ok != expect {
								t.Fatalf("unexpected find result for %q: got %t, want %t", n, ok, expect)
							}
							if got != want {
								t.Fatalf("unexpected set for %q: got %v, want %v", n, got, want)
							}
						},
						"": func(t *rapid.T) {
							sets, err := reg.All(t.Context())
							if err != nil {
								t.Fatal(err)
							}

							if diff := cmp.Diff(sortedKeys(model), setNames(sets)); diff != "" {
								t.Fatalf("unexpected registered sets (-want +got):\n%s", diff)
							}
						},
					},
				)
			})
		})
	})
}

// fataler is the subset of [testing.TB] and [rapid.T] used by test helpers.
type fataler interface {
	Helper()
	Fatal(args ...any)
}

// newTestSet returns a new set of file references with the given name.
func newTestSet(t fataler, name string, paths ...string) *Set[resource.Ref] {
	t.Helper()

	refs := make([]resource.Ref, len(paths))
	for i, p := range paths {
		refs[i] = resource.FileRef(resource.MustParsePath(p))
	}

	s, err := New(name, refs)
	if err != nil {
		t.Fatal(err)
	}

	return s
}

func setNames[T any](sets []*Set[T]) []string {
	names := make([]string, len(sets))
	for i, s := range sets {
		names[i] = s.Name()
	}
	return names
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, strings.Compare)
	return keys
}
