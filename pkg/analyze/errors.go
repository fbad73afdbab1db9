// Package analyze implements the semantic pass that walks a parsed CDDL
// AST (pkg/cddl) and registers its meaning into an ITR catalog
// (pkg/itr). The pass is single-threaded and synchronous: every
// function here mutates the same *itr.Catalog in place and returns on
// the first error it hits.
package analyze

import (
	"fmt"

	"github.com/blockberries/cddlc/pkg/cddl"
)

// Kind classifies why the analyzer rejected a schema.
type Kind int

const (
	// SyntaxUnsupported is a CDDL feature the grammar allows but this
	// pass does not implement (e.g. .default, generic plain groups).
	SyntaxUnsupported Kind = iota
	// InvalidSchema is CDDL that violates a semantic rule this pass
	// enforces (map field without a key, nested tagging, .cbor on a
	// non-bytes type, ...).
	InvalidSchema
	// UnresolvedReference is a name referenced in a context that forces
	// eager resolution but is not yet registered.
	UnresolvedReference
	// Unreachable marks a defensive assertion on an AST shape the
	// grammar should never produce.
	Unreachable
)

func (k Kind) String() string {
	switch k {
	case SyntaxUnsupported:
		return "SyntaxUnsupported"
	case InvalidSchema:
		return "InvalidSchema"
	case UnresolvedReference:
		return "UnresolvedReference"
	case Unreachable:
		return "Unreachable"
	default:
		return "Kind(?)"
	}
}

// Error is the fatal diagnostic type this pass returns. There is no
// recovery path: the first Error aborts the whole translation.
type Error struct {
	Kind     Kind
	Position cddl.Position
	Message  string
}

func (e *Error) Error() string {
	if e.Position.Filename != "" {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Position.Filename, e.Position.Line, e.Position.Column, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func errAt(kind Kind, pos cddl.Position, format string, args ...any) *Error {
	return &Error{Kind: kind, Position: pos, Message: fmt.Sprintf(format, args...)}
}
