package resource

import (
	"fmt"
	"strings"

	"github.com/dogmatiq/workingsetkit/marshaler"
)

// Type is the type of a resource.
type Type uint8

const (
	// File is a leaf resource that holds content.
	File Type = iota + 1

	// Folder is a resource that contains other resources.
	Folder

	// Project is a top-level folder within the workspace.
	Project
)

func (t Type) String() string {
	switch t {
	case File:
		return "file"
	case Folder:
		return "folder"
	case Project:
		return "project"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// parseType is the inverse of [Type.String] for the known types.
func parseType(s string) (Type, bool) {
	switch s {
	case "file":
		return File, true
	case "folder":
		return Folder, true
	case "project":
		return Project, true
	default:
		return 0, false
	}
}

// Ref is an opaque reference to a resource managed outside of this module.
//
// Two references are equal if they have the same type and path, which makes
// Ref suitable for use as a map key and as a member of a working set.
type Ref struct {
	Type Type
	Path Path
}

// FileRef returns a reference to the file at p.
func FileRef(p Path) Ref {
	return Ref{File, p}
}

// FolderRef returns a reference to the folder at p.
func FolderRef(p Path) Ref {
	return Ref{Folder, p}
}

// ProjectRef returns a reference to the project at p.
func ProjectRef(p Path) Ref {
	return Ref{Project, p}
}

func (r Ref) String() string {
	return r.Type.String() + ":" + string(r.Path)
}

// RefMarshaler marshals a [Ref] to and from its string representation, for
// example "file:/project/main.go".
var RefMarshaler = marshaler.New(
	func(r Ref) ([]byte, error) {
		return []byte(r.String()), nil
	},
	func(data []byte) (Ref, error) {
		t, p, ok := strings.Cut(string(data), ":")
		if !ok {
			return Ref{}, fmt.Errorf("malformed resource reference %q", data)
		}

		typ, ok := parseType(t)
		if !ok {
			return Ref{}, fmt.Errorf("unrecognized resource type %q", t)
		}

		path, err := ParsePath(p)
		if err != nil {
			return Ref{}, err
		}

		return Ref{typ, path}, nil
	},
)
