package bencode

import "fmt"

// StructureErrorKind distinguishes the closed set of grammar
// violations a StateTracker or scanner can raise. See spec.md §7.
type StructureErrorKind int

const (
	// ErrInvalidState: a token does not match the expected grammar
	// position (bare top-level End, non-string map key, missing map
	// value).
	ErrInvalidState StructureErrorKind = iota
	// ErrUnsortedKeys: a dict key is not strictly greater than the
	// previous key (this is also the duplicate-key signal).
	ErrUnsortedKeys
	// ErrUnexpectedEof: the buffer ended mid-token or mid-container,
	// or a string length prefix outran the buffer.
	ErrUnexpectedEof
	// ErrSyntax: a malformed integer body, bad length prefix, or
	// unrecognized start byte.
	ErrSyntax
	// ErrNestingTooDeep: opening one more container would exceed the
	// configured depth budget.
	ErrNestingTooDeep
)

func (k StructureErrorKind) String() string {
	switch k {
	case ErrInvalidState:
		return "InvalidState"
	case ErrUnsortedKeys:
		return "UnsortedKeys"
	case ErrUnexpectedEof:
		return "UnexpectedEof"
	case ErrSyntax:
		return "SyntaxError"
	case ErrNestingTooDeep:
		return "NestingTooDeep"
	default:
		return fmt.Sprintf("StructureErrorKind(%d)", int(k))
	}
}

// StructureError is the closed taxonomy of bencode grammar violations.
// It is immutable and comparable, so it can be stashed on a
// StateTracker and handed back, unchanged, on every later call
// (spec.md §3 invariant 6, "stickiness").
type StructureError struct {
	Kind StructureErrorKind

	// Message carries the human-readable detail: the InvalidState
	// reason, the SyntaxError description (offset + offending byte),
	// or empty for kinds that need no extra detail.
	Message string
}

func (e *StructureError) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func invalidState(reason string) *StructureError {
	return &StructureError{Kind: ErrInvalidState, Message: reason}
}

func unsortedKeys(prev, next []byte) *StructureError {
	return &StructureError{
		Kind:    ErrUnsortedKeys,
		Message: fmt.Sprintf("key %q does not sort strictly after %q", next, prev),
	}
}

func unexpectedEOF(reason string) *StructureError {
	return &StructureError{Kind: ErrUnexpectedEof, Message: reason}
}

func syntaxError(offset int, reason string) *StructureError {
	return &StructureError{
		Kind:    ErrSyntax,
		Message: fmt.Sprintf("offset %d: %s", offset, reason),
	}
}

func nestingTooDeep(maxDepth int) *StructureError {
	return &StructureError{
		Kind:    ErrNestingTooDeep,
		Message: fmt.Sprintf("exceeds max depth %d", maxDepth),
	}
}
