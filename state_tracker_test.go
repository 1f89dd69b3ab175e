package bencode

import "testing"

// feed drives tracker with toks in order, returning the first error
// encountered (or nil if every token was accepted).
func feed(t *StateTracker, toks ...Token) error {
	for _, tok := range toks {
		if err := t.ObserveToken(tok); err != nil {
			return err
		}
	}
	return nil
}

func str(s string) Token { return String([]byte(s)) }
func num(s string) Token { return Num([]byte(s)) }

// TestStateTrackerValidSequences exercises S1's token stream and a
// couple of other structurally valid shapes end-to-end through
// ObserveToken + ObserveEOF.
func TestStateTrackerValidSequences(t *testing.T) {
	cases := []struct {
		name string
		toks []Token
	}{
		{"S1 dict with nested list", []Token{
			Dict(), str("bar"), num("1"), str("foo"), List(), num("2"), num("3"), End(), End(),
		}},
		{"empty list", []Token{List(), End()}},
		{"empty dict", []Token{Dict(), End()}},
		{"bare atom", []Token{num("42")}},
		{"bare string", []Token{str("hello")}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tracker := NewStateTracker()
			if err := feed(tracker, c.toks...); err != nil {
				t.Fatalf("feed: %v", err)
			}
			if err := tracker.ObserveEOF(); err != nil {
				t.Fatalf("ObserveEOF: %v", err)
			}
		})
	}
}

// TestStateTrackerUnsortedKeys covers S5 and S6.
func TestStateTrackerUnsortedKeys(t *testing.T) {
	cases := []struct {
		name string
		toks []Token
	}{
		{"S5 descending keys", []Token{Dict(), str("foo"), num("1"), str("bar"), num("1")}},
		{"S6 equal keys", []Token{Dict(), str("foo"), num("1"), str("foo"), num("1")}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tracker := NewStateTracker()
			err := feed(tracker, c.toks...)
			se, ok := err.(*StructureError)
			if !ok || se.Kind != ErrUnsortedKeys {
				t.Fatalf("got %v, want UnsortedKeys", err)
			}
		})
	}
}

// TestStateTrackerMissingMapValue covers S9.
func TestStateTrackerMissingMapValue(t *testing.T) {
	tracker := NewStateTracker()
	err := feed(tracker, Dict(), str("foo"), End())
	se, ok := err.(*StructureError)
	if !ok || se.Kind != ErrInvalidState {
		t.Fatalf("got %v, want InvalidState", err)
	}
}

// TestStateTrackerBareTopLevelEnd rejects an End with nothing open.
func TestStateTrackerBareTopLevelEnd(t *testing.T) {
	tracker := NewStateTracker()
	err := feed(tracker, End())
	se, ok := err.(*StructureError)
	if !ok || se.Kind != ErrInvalidState {
		t.Fatalf("got %v, want InvalidState", err)
	}
}

// TestStateTrackerNonStringKey rejects a dict key that isn't a string.
func TestStateTrackerNonStringKey(t *testing.T) {
	tracker := NewStateTracker()
	err := feed(tracker, Dict(), num("1"))
	se, ok := err.(*StructureError)
	if !ok || se.Kind != ErrInvalidState {
		t.Fatalf("got %v, want InvalidState", err)
	}
}

// TestStateTrackerDepthBound covers S7/S8 and invariant 4: n opens
// followed by n closes succeeds iff n <= max_depth, and the failure
// triggers on the over-deep opener, not on close.
func TestStateTrackerDepthBound(t *testing.T) {
	build := func(n int) []Token {
		toks := make([]Token, 0, 2*n)
		for i := 0; i < n; i++ {
			toks = append(toks, List())
		}
		for i := 0; i < n; i++ {
			toks = append(toks, End())
		}
		return toks
	}

	t.Run("S8 depth 4 budget 4 succeeds", func(t *testing.T) {
		tracker := NewStateTracker()
		tracker.SetMaxDepth(4)
		if err := feed(tracker, build(4)...); err != nil {
			t.Fatalf("feed: %v", err)
		}
		if err := tracker.ObserveEOF(); err != nil {
			t.Fatalf("ObserveEOF: %v", err)
		}
	})

	t.Run("S8 depth 4 budget 3 fails", func(t *testing.T) {
		tracker := NewStateTracker()
		tracker.SetMaxDepth(3)
		err := feed(tracker, build(4)...)
		se, ok := err.(*StructureError)
		if !ok || se.Kind != ErrNestingTooDeep {
			t.Fatalf("got %v, want NestingTooDeep", err)
		}
	})

	t.Run("S7 fails exactly at the over-deep opener", func(t *testing.T) {
		tracker := NewStateTracker()
		tracker.SetMaxDepth(2048)
		opens := 0
		var failAt = -1
		for i := 0; i < 4096; i++ {
			if err := tracker.ObserveToken(List()); err != nil {
				failAt = i + 1 // 1-indexed opener count
				break
			}
			opens++
		}
		if failAt != 2049 {
			t.Fatalf("failed at opener #%d (after %d successful opens), want #2049", failAt, opens)
		}
	})
}

// TestStateTrackerStickyError covers invariant 5: once failed, every
// later call returns the same error without re-examining the token.
func TestStateTrackerStickyError(t *testing.T) {
	tracker := NewStateTracker()
	first := feed(tracker, End())
	if first == nil {
		t.Fatal("expected an error")
	}
	second := tracker.ObserveToken(List())
	if second != first {
		t.Fatalf("second call returned a different error: %v vs %v", second, first)
	}
	third := tracker.ObserveEOF()
	if third != first {
		t.Fatalf("ObserveEOF after latch returned a different error: %v vs %v", third, first)
	}
}

// TestStateTrackerIdempotentEOF covers invariant 8.
func TestStateTrackerIdempotentEOF(t *testing.T) {
	t.Run("empty tracker", func(t *testing.T) {
		tracker := NewStateTracker()
		if err := tracker.ObserveEOF(); err != nil {
			t.Fatalf("first ObserveEOF: %v", err)
		}
		if err := tracker.ObserveEOF(); err != nil {
			t.Fatalf("second ObserveEOF: %v", err)
		}
	})
	t.Run("unbalanced tracker", func(t *testing.T) {
		tracker := NewStateTracker()
		if err := tracker.ObserveToken(List()); err != nil {
			t.Fatalf("ObserveToken: %v", err)
		}
		first := tracker.ObserveEOF()
		second := tracker.ObserveEOF()
		if first == nil || second == nil {
			t.Fatal("expected UnexpectedEof both times")
		}
		if first != second {
			t.Fatalf("not consistent across calls: %v vs %v", first, second)
		}
	})
}
