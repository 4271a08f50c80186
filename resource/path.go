package resource

import (
	"fmt"
	"path"
	"strings"
)

// Path is a slash-separated, workspace-relative path that identifies a
// resource, such as "/project/src/main.go".
//
// A valid path is absolute and clean, as defined by [path.Clean].
type Path string

// ParsePath returns the clean form of s as a [Path].
//
// It returns an error if s is empty or relative.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return "", InvalidPathError{Reason: "path must not be empty"}
	}

	if !strings.HasPrefix(s, "/") {
		return "", InvalidPathError{s, "path must be absolute"}
	}

	return Path(path.Clean(s)), nil
}

// MustParsePath returns the clean form of s as a [Path]. It panics if s is
// not a valid path.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Validate returns an error if p is not a valid path.
func (p Path) Validate() error {
	c, err := ParsePath(string(p))
	if err != nil {
		return err
	}

	if c != p {
		return InvalidPathError{string(p), fmt.Sprintf("path is not clean, use %q", c)}
	}

	return nil
}

// Base returns the last element of p.
func (p Path) Base() string {
	return path.Base(string(p))
}

// Parent returns the path of the resource that contains p. The parent of the
// workspace root ("/") is the root itself.
func (p Path) Parent() Path {
	return Path(path.Dir(string(p)))
}

// HasPrefix returns true if p is equal to, or nested within, prefix.
func (p Path) HasPrefix(prefix Path) bool {
	if prefix == "/" || p == prefix {
		return true
	}
	return strings.HasPrefix(string(p), string(prefix)+"/")
}

func (p Path) String() string {
	return string(p)
}

// InvalidPathError is returned when a string or [Path] is not a valid path.
type InvalidPathError struct {
	// Path is the offending path.
	Path string

	// Reason is a human-readable description of the problem.
	Reason string
}

func (e InvalidPathError) Error() string {
	if e.Path == "" {
		return "invalid path: " + e.Reason
	}
	return fmt.Sprintf("invalid path %q: %s", e.Path, e.Reason)
}
