package bencode

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorKind classifies a typed-decode failure, as distinct from the
// lower-level grammar failures StructureError reports (spec.md §7).
// A grammar failure detected mid-typed-decode is carried as an *Error
// of Kind MalformedContent wrapping the *StructureError: UnmarshalList
// and UnmarshalDict wrap it as soon as they see it, and WithContext
// wraps any bare one it is given. Unmarshal returns a failure of its
// own top-level NextObject call as the bare *StructureError.
type ErrorKind int

const (
	// MalformedContent: the token stream was grammatically valid but
	// its content didn't fit the target type (e.g. "i99999999999999999999e"
	// read as int64, or a byte string that isn't valid UTF-8 when a
	// string field demands it).
	MalformedContent ErrorKind = iota
	// MissingField: a struct's FromBencode implementation required a
	// dict key that the input dict did not contain.
	MissingField
	// UnexpectedField: a struct's FromBencode implementation runs in
	// strict mode and the input dict contained a key it doesn't know.
	UnexpectedField
	// UnexpectedToken: the input held the wrong token kind for what
	// the target type expects (e.g. a list where an integer belongs).
	UnexpectedToken
)

func (k ErrorKind) String() string {
	switch k {
	case MalformedContent:
		return "MalformedContent"
	case MissingField:
		return "MissingField"
	case UnexpectedField:
		return "UnexpectedField"
	case UnexpectedToken:
		return "UnexpectedToken"
	default:
		return "ErrorKind(?)"
	}
}

// Error is the typed-decode layer's error: a StructureError or a
// conversion failure, carrying the dotted field path that led to it
// (spec.md "Error context: dict/list nesting accumulates a path").
//
// A fresh Error has an empty path; each enclosing FromBencode
// implementation calls WithContext as the error unwinds through it, so
// the outermost caller sees the full path, e.g. "files.0.length".
type Error struct {
	Kind ErrorKind
	path []string
	err  error
}

func malformedContent(reason string) *Error {
	return &Error{Kind: MalformedContent, err: errors.New(reason)}
}

func missingField(field string) *Error {
	return &Error{Kind: MissingField, err: errors.Errorf("missing required field %q", field)}
}

func unexpectedField(field string) *Error {
	return &Error{Kind: UnexpectedField, err: errors.Errorf("unexpected field %q", field)}
}

func unexpectedToken(want, got ObjectKind) *Error {
	return &Error{Kind: UnexpectedToken, err: errors.Errorf("expected %s, got %s", want, got)}
}

// wrapStructureError lifts a grammar-level failure into the typed
// layer so a single Error type can carry a dotted path regardless of
// which layer detected the problem.
func wrapStructureError(cause error) *Error {
	return &Error{Kind: MalformedContent, err: errors.WithStack(cause)}
}

// WithContext prepends field to err's path and returns err, letting
// each enclosing FromBencode implementation annotate the error as it
// propagates outward. If err is not an *Error (e.g. it's a plain
// StructureError returned directly by the Decoder), it is first
// wrapped so the path can still be recorded.
func WithContext(err error, field string) error {
	if err == nil {
		return nil
	}
	e, ok := err.(*Error)
	if !ok {
		e = wrapStructureError(err)
	}
	e.path = append([]string{field}, e.path...)
	return e
}

// Path returns the dotted field path accumulated via WithContext, or
// "" if the error never passed through a WithContext call.
func (e *Error) Path() string { return strings.Join(e.path, ".") }

func (e *Error) Error() string {
	if len(e.path) == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Path(), e.Kind, e.err)
}

// Unwrap exposes the underlying cause for errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.err }

func (o ObjectKind) String() string {
	switch o {
	case ObjList:
		return "List"
	case ObjDict:
		return "Dict"
	case ObjInteger:
		return "Integer"
	case ObjBytes:
		return "Bytes"
	default:
		return "ObjectKind(?)"
	}
}
