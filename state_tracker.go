package bencode

import (
	"bytes"

	"go.uber.org/zap"
)

// frameKind identifies which of the pushdown automaton's frame shapes
// is on top of the stack. See spec.md §3 "StateTracker state".
type frameKind int

const (
	frameInSeq frameKind = iota
	frameExpectingKey
	frameExpectingValue
)

// frame is one entry in the StateTracker's stack.
type frame struct {
	kind frameKind

	// lastKey is the previously emitted key, used by frameExpectingKey
	// to enforce strict ascending order, and by frameExpectingValue to
	// remember which key the incoming value belongs to.
	lastKey []byte
	hasKey  bool
}

// StateTracker is the pushdown automaton that validates a token
// stream against the bencode grammar and the configured depth budget.
// Decoder and Encoder both drive the same tracker through
// ObserveToken, so they enforce identical rules (spec.md §4.1).
//
// Once any Observe* call fails, the tracker is sticky: every later
// call returns the same *StructureError value (spec.md invariant
// 6) without re-examining the token.
type StateTracker struct {
	stack    []frame
	maxDepth int
	failed   *StructureError
	log      *zap.Logger
}

// NewStateTracker returns a tracker with the default depth budget and
// a no-op logger.
func NewStateTracker() *StateTracker {
	return &StateTracker{maxDepth: DefaultMaxDepth, log: zap.NewNop()}
}

// SetMaxDepth configures the nesting budget.
func (t *StateTracker) SetMaxDepth(n int) { t.maxDepth = n }

// SetLogger installs a logger for transition tracing. A nil logger is
// replaced with a no-op logger.
func (t *StateTracker) SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	t.log = log
}

// RemainingDepth returns how many more containers may be opened
// before hitting the budget. Encoders use this to propagate a
// tightened budget into sub-encoders (spec.md "Nested depth budget
// propagation").
func (t *StateTracker) RemainingDepth() int {
	r := t.maxDepth - len(t.stack)
	if r < 0 {
		return 0
	}
	return r
}

// CheckError is the fast path that returns the sticky error, if any,
// without touching the stack.
func (t *StateTracker) CheckError() error {
	if t.failed != nil {
		return t.failed
	}
	return nil
}

// latchErr transitions the tracker into the sticky-failure state when
// err is non-nil, and returns err either way.
func (t *StateTracker) latchErr(err *StructureError) error {
	if err != nil {
		t.failed = err
		t.log.Debug("bencode: state tracker latched error", zap.String("kind", err.Kind.String()), zap.String("message", err.Message))
		return err
	}
	return nil
}

// top returns a pointer to the top frame, or nil if the stack is empty.
func (t *StateTracker) top() *frame {
	if len(t.stack) == 0 {
		return nil
	}
	return &t.stack[len(t.stack)-1]
}

func (t *StateTracker) push(f frame) *StructureError {
	if len(t.stack) >= t.maxDepth {
		return nestingTooDeep(t.maxDepth)
	}
	t.stack = append(t.stack, f)
	return nil
}

func (t *StateTracker) pop() {
	t.stack = t.stack[:len(t.stack)-1]
}

// ObserveToken accepts one token and validates it against the current
// grammar position. See spec.md §4.1 for the full transition table.
func (t *StateTracker) ObserveToken(tok Token) error {
	if t.failed != nil {
		return t.failed
	}

	err := t.observe(tok)
	return t.latchErr(err)
}

func (t *StateTracker) observe(tok Token) *StructureError {
	top := t.top()

	// End is handled first since its effect depends only on what
	// frame it closes, independent of atom/container distinctions.
	if tok.Kind == TokenEnd {
		switch {
		case top == nil:
			return invalidState("End not allowed at top level")
		case top.kind == frameInSeq:
			t.pop()
			return nil
		case top.kind == frameExpectingKey:
			t.pop()
			return nil
		case top.kind == frameExpectingValue:
			return invalidState("Missing map value")
		}
	}

	if top != nil && top.kind == frameExpectingKey {
		if tok.Kind != TokenString {
			return invalidState("Map keys must be strings")
		}
		if top.hasKey && bytes.Compare(top.lastKey, tok.Bytes) >= 0 {
			return unsortedKeys(top.lastKey, tok.Bytes)
		}
		top.lastKey = tok.Bytes
		top.hasKey = true
		top.kind = frameExpectingValue
		return nil
	}

	if top != nil && top.kind == frameExpectingValue {
		// Capture the parent frame's index rather than its pointer:
		// push() may grow t.stack and reallocate its backing array,
		// which would strand a pointer taken before the append.
		parentIdx := len(t.stack) - 1
		key := top.lastKey
		switch tok.Kind {
		case TokenList:
			if err := t.push(frame{kind: frameInSeq}); err != nil {
				return err
			}
			t.stack[parentIdx] = frame{kind: frameExpectingKey, lastKey: key, hasKey: true}
			return nil
		case TokenDict:
			if err := t.push(frame{kind: frameExpectingKey}); err != nil {
				return err
			}
			t.stack[parentIdx] = frame{kind: frameExpectingKey, lastKey: key, hasKey: true}
			return nil
		default:
			// TokenEnd was already handled above; any other token is
			// an atom (String/Num) closing the key/value pair.
			*top = frame{kind: frameExpectingKey, lastKey: key, hasKey: true}
			return nil
		}
	}

	// Not inside a dict awaiting a key/value: InSeq, or top-level.
	switch tok.Kind {
	case TokenList:
		return t.push(frame{kind: frameInSeq})
	case TokenDict:
		return t.push(frame{kind: frameExpectingKey})
	default:
		// atom at top level or inside a list: no state change
		return nil
	}
}

// ObserveEOF reports whether the token stream may legally end here:
// it succeeds iff the frame stack is empty, and is idempotent — once
// it has returned nil for an empty stack, the stack cannot change
// without another ObserveToken call, so a second call again returns
// nil.
func (t *StateTracker) ObserveEOF() error {
	if t.failed != nil {
		return t.failed
	}
	if len(t.stack) != 0 {
		return t.latchErr(unexpectedEOF("container not closed before end of input"))
	}
	return nil
}
