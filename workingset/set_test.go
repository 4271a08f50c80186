package workingset_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/dogmatiq/workingsetkit/marshaler"
	"github.com/dogmatiq/workingsetkit/resource"
	. "github.com/dogmatiq/workingsetkit/workingset"
	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/types/known/wrapperspb"
	"pgregory.net/rapid"
)

func TestNew(t *testing.T) {
	t.Parallel()

	a := resource.FileRef("/project/a.go")
	b := resource.FileRef("/project/b.go")
	c := resource.FolderRef("/project/internal")

	t.Run("it returns a set containing the elements", func(t *testing.T) {
		t.Parallel()

		s, err := New("Foo", []resource.Ref{a, b, c})
		if err != nil {
			t.Fatal(err)
		}

		if got, want := s.Name(), "Foo"; got != want {
			t.Fatalf("unexpected name: got %q, want %q", got, want)
		}

		if got, want := s.Kind(), ResourceMembers; got != want {
			t.Fatalf("unexpected kind: got %s, want %s", got, want)
		}

		if got, want := s.Len(), 3; got != want {
			t.Fatalf("unexpected length: got %d, want %d", got, want)
		}

		if diff := cmp.Diff(
			[]resource.Ref{a, b, c},
			sortRefs(s.Elements()),
		); diff != "" {
			t.Fatalf("unexpected elements (-want +got):\n%s", diff)
		}

		if s.IsRegistered() {
			t.Fatal("did not expect a new set to be registered")
		}
	})

	t.Run("it accepts an empty slice", func(t *testing.T) {
		t.Parallel()

		s, err := New("Foo", []resource.Ref{})
		if err != nil {
			t.Fatal(err)
		}

		if got := s.Elements(); len(got) != 0 {
			t.Fatalf("unexpected elements: %v", got)
		}
	})

	t.Run("it returns an error if the name is empty", func(t *testing.T) {
		t.Parallel()

		_, err := New("", []resource.Ref{a})
		if !IsInvalidArgument(err) {
			t.Fatalf("unexpected error: got %v, want an invalid argument error", err)
		}

		if !errors.As(err, &InvalidNameError{}) {
			t.Fatalf("unexpected error: got %v, want %v", err, InvalidNameError{})
		}
	})

	t.Run("it returns an error if the elements slice is nil", func(t *testing.T) {
		t.Parallel()

		_, err := New[resource.Ref]("Foo", nil)
		if !IsInvalidArgument(err) {
			t.Fatalf("unexpected error: got %v, want an invalid argument error", err)
		}

		if !errors.As(err, &NilMembersError{}) {
			t.Fatalf("unexpected error: got %v, want %v", err, NilMembersError{Set: "Foo"})
		}
	})

	t.Run("it returns an error if an element is nil", func(t *testing.T) {
		t.Parallel()

		v := 1
		_, err := New("Foo", []*int{&v, nil})
		if !IsInvalidArgument(err) {
			t.Fatalf("unexpected error: got %v, want an invalid argument error", err)
		}

		var target NilMemberError
		if !errors.As(err, &target) {
			t.Fatalf("unexpected error: got %v, want %T", err, target)
		}

		if target.Index != 1 {
			t.Fatalf("unexpected index: got %d, want 1", target.Index)
		}
	})

	t.Run("it returns an error if the elements contain a duplicate", func(t *testing.T) {
		t.Parallel()

		_, err := New("Foo", []resource.Ref{a, b, a})
		if !IsInvalidArgument(err) {
			t.Fatalf("unexpected error: got %v, want an invalid argument error", err)
		}

		var target DuplicateMemberError[resource.Ref]
		if !errors.As(err, &target) {
			t.Fatalf("unexpected error: got %v, want %T", err, target)
		}

		want := DuplicateMemberError[resource.Ref]{Set: "Foo", Member: a, Index: 2}
		if target != want {
			t.Fatalf("unexpected error: got %v, want %v", target, want)
		}
	})

	t.Run("it treats references with different types as distinct", func(t *testing.T) {
		t.Parallel()

		s, err := New(
			"Foo",
			[]resource.Ref{
				resource.FileRef("/project/x"),
				resource.FolderRef("/project/x"),
			},
		)
		if err != nil {
			t.Fatal(err)
		}

		if got, want := s.Len(), 2; got != want {
			t.Fatalf("unexpected length: got %d, want %d", got, want)
		}
	})

	t.Run("it holds elements by reference", func(t *testing.T) {
		t.Parallel()

		h1 := &handle{id: 1}
		h2 := &handle{id: 2}
		in := []*handle{h1, h2}

		s, err := New("Foo", in)
		if err != nil {
			t.Fatal(err)
		}

		got := s.Elements()
		if len(got) != 2 {
			t.Fatalf("unexpected number of elements: got %d, want 2", len(got))
		}

		for _, v := range got {
			if v != h1 && v != h2 {
				t.Fatalf("unexpected element: %p is not one of the supplied handles", v)
			}

			if !s.Has(v) {
				t.Fatalf("expected the set to contain element %d", v.id)
			}
		}

		got[0] = nil
		in[0] = nil

		for _, v := range s.Elements() {
			if v == nil {
				t.Fatal("expected the set to be unaffected by changes to the input and output slices")
			}
		}
	})

	t.Run("property-based", func(t *testing.T) {
		t.Parallel()

		segment := rapid.StringMatching(`[a-z]{1,8}`)

		rapid.Check(t, func(t *rapid.T) {
			refs := rapid.SliceOfNDistinct(
				rapid.Custom(func(t *rapid.T) resource.Ref {
					return resource.Ref{
						Type: rapid.SampledFrom([]resource.Type{resource.File, resource.Folder, resource.Project}).Draw(t, "type"),
						Path: resource.Path("/" + segment.Draw(t, "segment")),
					}
				}),
				0,
				20,
				func(r resource.Ref) resource.Ref { return r },
			).Draw(t, "refs")

			s, err := New("Foo", refs)
			if err != nil {
				t.Fatal(err)
			}

			if diff := cmp.Diff(
				sortRefs(slices.Clone(refs)),
				sortRefs(s.Elements()),
			); diff != "" {
				t.Fatalf("unexpected elements (-want +got):\n%s", diff)
			}

			if len(refs) == 0 {
				return
			}

			dup := rapid.SampledFrom(refs).Draw(t, "duplicate")
			at := rapid.IntRange(0, len(refs)).Draw(t, "index")

			_, err = New("Foo", slices.Insert(slices.Clone(refs), at, dup))
			if !IsInvalidArgument(err) {
				t.Fatalf("unexpected error: got %v, want an invalid argument error", err)
			}
		})
	})
}

func TestNewMarshaling(t *testing.T) {
	t.Parallel()

	t.Run("it compares elements by their binary representation", func(t *testing.T) {
		t.Parallel()

		_, err := NewMarshaling(
			"Foo",
			marshaler.NewProto[*wrapperspb.StringValue](),
			[]*wrapperspb.StringValue{
				wrapperspb.String("/project/a.go"),
				wrapperspb.String("/project/a.go"),
			},
		)
		if !IsInvalidArgument(err) {
			t.Fatalf("unexpected error: got %v, want an invalid argument error", err)
		}
	})

	t.Run("it holds a private copy of each element", func(t *testing.T) {
		t.Parallel()

		v := wrapperspb.String("/project/a.go")

		s, err := NewMarshaling(
			"Foo",
			marshaler.NewProto[*wrapperspb.StringValue](),
			[]*wrapperspb.StringValue{v},
		)
		if err != nil {
			t.Fatal(err)
		}

		v.Value = "/project/modified-input.go"
		s.Elements()[0].Value = "/project/modified-output.go"

		if !s.Has(wrapperspb.String("/project/a.go")) {
			t.Fatal("expected the set to be unaffected by changes to its inputs and outputs")
		}

		if got, want := s.Elements()[0].GetValue(), "/project/a.go"; got != want {
			t.Fatalf("unexpected element: got %q, want %q", got, want)
		}
	})

	t.Run("it supports element types that are not comparable", func(t *testing.T) {
		t.Parallel()

		in := [][]string{{"a", "b"}, {"c"}}

		s, err := NewMarshaling("Foo", marshaler.NewJSON[[]string](), in)
		if err != nil {
			t.Fatal(err)
		}

		in[0][0] = "X"

		if !s.Has([]string{"a", "b"}) {
			t.Fatal("expected the set to contain [a b]")
		}

		if s.Has([]string{"X", "b"}) {
			t.Fatal("did not expect the set to contain [X b]")
		}

		_, err = NewMarshaling("Foo", marshaler.NewJSON[[]string](), [][]string{{"a"}, {"a"}})
		if !IsInvalidArgument(err) {
			t.Fatalf("unexpected error: got %v, want an invalid argument error", err)
		}
	})

	t.Run("it returns marshaling errors", func(t *testing.T) {
		t.Parallel()

		want := errors.New("<error>")
		m := marshaler.New(
			func(string) ([]byte, error) { return nil, want },
			func([]byte) (string, error) { return "", nil },
		)

		_, err := NewMarshaling("Foo", m, []string{"a"})
		if !errors.Is(err, want) {
			t.Fatalf("unexpected error: got %v, want %v", err, want)
		}

		if IsInvalidArgument(err) {
			t.Fatal("did not expect a marshaling error to be classified as an invalid argument")
		}
	})
}

func TestSet(t *testing.T) {
	t.Parallel()

	a := resource.FileRef("/project/a.go")
	b := resource.FileRef("/project/b.go")

	t.Run("func Equal()", func(t *testing.T) {
		t.Parallel()

		t.Run("it returns true for sets with the same name and different elements", func(t *testing.T) {
			t.Parallel()

			s1, err := New("Foo", []resource.Ref{a})
			if err != nil {
				t.Fatal(err)
			}

			s2, err := New("Foo", []resource.Ref{b})
			if err != nil {
				t.Fatal(err)
			}

			if !s1.Equal(s2) || !s2.Equal(s1) {
				t.Fatal("expected sets to be equal")
			}

			if s1.Hash() != s2.Hash() {
				t.Fatalf("unexpected hash: %d != %d", s1.Hash(), s2.Hash())
			}
		})

		t.Run("it returns false for sets with different names", func(t *testing.T) {
			t.Parallel()

			s1, err := New("Foo", []resource.Ref{a})
			if err != nil {
				t.Fatal(err)
			}

			s2, err := New("Bar", []resource.Ref{a})
			if err != nil {
				t.Fatal(err)
			}

			if s1.Equal(s2) {
				t.Fatal("did not expect sets to be equal")
			}
		})

		t.Run("it compares against any named entity", func(t *testing.T) {
			t.Parallel()

			s, err := New("Foo", []resource.Ref{a})
			if err != nil {
				t.Fatal(err)
			}

			other, err := NewMarshaling("Foo", marshaler.String, []string{})
			if err != nil {
				t.Fatal(err)
			}

			if !s.Equal(other) {
				t.Fatal("expected sets to be equal")
			}
		})

		t.Run("it returns false for nil", func(t *testing.T) {
			t.Parallel()

			s, err := New("Foo", []resource.Ref{a})
			if err != nil {
				t.Fatal(err)
			}

			var other *Set[resource.Ref]

			if s.Equal(nil) || s.Equal(other) {
				t.Fatal("did not expect set to equal nil")
			}
		})
	})

	t.Run("func SetName()", func(t *testing.T) {
		t.Parallel()

		t.Run("it changes the name", func(t *testing.T) {
			t.Parallel()

			s, err := New("Foo", []resource.Ref{a})
			if err != nil {
				t.Fatal(err)
			}

			if err := s.SetName("Bar"); err != nil {
				t.Fatal(err)
			}

			if got, want := s.Name(), "Bar"; got != want {
				t.Fatalf("unexpected name: got %q, want %q", got, want)
			}
		})

		t.Run("it returns an error if the name is empty", func(t *testing.T) {
			t.Parallel()

			s, err := New("Foo", []resource.Ref{a})
			if err != nil {
				t.Fatal(err)
			}

			if err := s.SetName(""); !IsInvalidArgument(err) {
				t.Fatalf("unexpected error: got %v, want an invalid argument error", err)
			}

			if got, want := s.Name(), "Foo"; got != want {
				t.Fatalf("unexpected name: got %q, want %q", got, want)
			}
		})
	})

	t.Run("func SetElements()", func(t *testing.T) {
		t.Parallel()

		t.Run("it replaces the elements", func(t *testing.T) {
			t.Parallel()

			s, err := New("Foo", []resource.Ref{a})
			if err != nil {
				t.Fatal(err)
			}

			if err := s.SetElements([]resource.Ref{b}); err != nil {
				t.Fatal(err)
			}

			if diff := cmp.Diff([]resource.Ref{b}, s.Elements()); diff != "" {
				t.Fatalf("unexpected elements (-want +got):\n%s", diff)
			}
		})

		t.Run("it leaves the set unchanged if the elements are invalid", func(t *testing.T) {
			t.Parallel()

			s, err := New("Foo", []resource.Ref{a})
			if err != nil {
				t.Fatal(err)
			}

			if err := s.SetElements([]resource.Ref{b, b}); !IsInvalidArgument(err) {
				t.Fatalf("unexpected error: got %v, want an invalid argument error", err)
			}

			if err := s.SetElements(nil); !IsInvalidArgument(err) {
				t.Fatalf("unexpected error: got %v, want an invalid argument error", err)
			}

			if diff := cmp.Diff([]resource.Ref{a}, s.Elements()); diff != "" {
				t.Fatalf("unexpected elements (-want +got):\n%s", diff)
			}
		})

		t.Run("it replaces unresolved paths", func(t *testing.T) {
			t.Parallel()

			s, err := NewUnresolved[resource.Ref]("Foo", []resource.Path{"/project/a.go"})
			if err != nil {
				t.Fatal(err)
			}

			if err := s.SetElements([]resource.Ref{b}); err != nil {
				t.Fatal(err)
			}

			if got, want := s.Kind(), ResourceMembers; got != want {
				t.Fatalf("unexpected kind: got %s, want %s", got, want)
			}

			if got := s.Paths(); len(got) != 0 {
				t.Fatalf("unexpected paths: %v", got)
			}
		})
	})

	t.Run("func SetPaths()", func(t *testing.T) {
		t.Parallel()

		t.Run("it replaces the members with paths", func(t *testing.T) {
			t.Parallel()

			s, err := New("Foo", []resource.Ref{a})
			if err != nil {
				t.Fatal(err)
			}

			if err := s.SetPaths([]resource.Path{"/z", "/project/b.go"}); err != nil {
				t.Fatal(err)
			}

			if got, want := s.Kind(), PathMembers; got != want {
				t.Fatalf("unexpected kind: got %s, want %s", got, want)
			}

			if diff := cmp.Diff(
				[]resource.Path{"/project/b.go", "/z"},
				s.Paths(),
			); diff != "" {
				t.Fatalf("unexpected paths (-want +got):\n%s", diff)
			}

			if got := s.Elements(); len(got) != 0 {
				t.Fatalf("unexpected elements: %v", got)
			}

			if s.Has(a) {
				t.Fatal("did not expect the set to contain a resolved member")
			}

			if got, want := s.Len(), 2; got != want {
				t.Fatalf("unexpected length: got %d, want %d", got, want)
			}
		})

		t.Run("it returns an error if the paths are invalid", func(t *testing.T) {
			t.Parallel()

			cases := []struct {
				Name  string
				Paths []resource.Path
			}{
				{"nil", nil},
				{"empty path", []resource.Path{""}},
				{"relative path", []resource.Path{"project/a.go"}},
				{"unclean path", []resource.Path{"/project/../a.go"}},
				{"duplicate path", []resource.Path{"/a", "/b", "/a"}},
			}

			for _, c := range cases {
				t.Run(c.Name, func(t *testing.T) {
					t.Parallel()

					s, err := New("Foo", []resource.Ref{a})
					if err != nil {
						t.Fatal(err)
					}

					if err := s.SetPaths(c.Paths); !IsInvalidArgument(err) {
						t.Fatalf("unexpected error: got %v, want an invalid argument error", err)
					}

					if got, want := s.Kind(), ResourceMembers; got != want {
						t.Fatalf("unexpected kind: got %s, want %s", got, want)
					}
				})
			}
		})

		t.Run("it reports the underlying path error", func(t *testing.T) {
			t.Parallel()

			_, err := NewUnresolved[resource.Ref]("Foo", []resource.Path{"/a", "b"})

			var target resource.InvalidPathError
			if !errors.As(err, &target) {
				t.Fatalf("unexpected error: got %v, want %T", err, target)
			}

			if got, want := target.Path, "b"; got != want {
				t.Fatalf("unexpected path: got %q, want %q", got, want)
			}
		})
	})

	t.Run("zero value", func(t *testing.T) {
		t.Parallel()

		var s Set[resource.Ref]

		if err := s.SetElements([]resource.Ref{a}); !IsPreconditionViolation(err) {
			t.Fatalf("unexpected error: got %v, want a precondition violation", err)
		}

		if s.Has(a) {
			t.Fatal("did not expect the set to contain a")
		}

		if err := s.SetPaths([]resource.Path{"/project/a.go"}); err != nil {
			t.Fatal(err)
		}

		err := s.Resolve(
			t.Context(),
			ResolverFunc[resource.Ref](func(context.Context, resource.Path) (resource.Ref, bool, error) {
				return a, true, nil
			}),
		)
		if !errors.As(err, &UninitializedSetError{}) {
			t.Fatalf("unexpected error: got %v, want %v", err, UninitializedSetError{})
		}
	})

	t.Run("func Has()", func(t *testing.T) {
		t.Parallel()

		s, err := New("Foo", []resource.Ref{a})
		if err != nil {
			t.Fatal(err)
		}

		if !s.Has(a) {
			t.Fatal("expected the set to contain a")
		}

		if s.Has(b) {
			t.Fatal("did not expect the set to contain b")
		}
	})
}

type handle struct {
	id int
}

func sortRefs(refs []resource.Ref) []resource.Ref {
	slices.SortFunc(refs, func(a, b resource.Ref) int {
		return strings.Compare(a.String(), b.String())
	})
	return refs
}
