package errorx_test

import (
	"errors"
	"testing"

	. "github.com/dogmatiq/workingsetkit/internal/errorx"
)

func TestWrap(t *testing.T) {
	t.Run("it adds context to the error", func(t *testing.T) {
		cause := errors.New("<error>")
		err := cause

		Wrap(&err, "unable to resolve %q", "/path")

		if got, want := err.Error(), `unable to resolve "/path": <error>`; got != want {
			t.Fatalf("unexpected message: got %q, want %q", got, want)
		}

		if !errors.Is(err, cause) {
			t.Fatal("expected wrapped error to match the cause")
		}
	})

	t.Run("it does nothing if the error is nil", func(t *testing.T) {
		var err error
		Wrap(&err, "<context>")

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("it panics if the pointer is nil", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Fatal("expected a panic")
			}
		}()

		Wrap(nil, "<context>")
	})
}
