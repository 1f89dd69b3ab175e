package bencode

import (
	"testing"
)

// TestEncoderSortedDict covers S11: encoding {"bar":25, "foo":["baz","qux"]}
// via the sorted-dict emitter produces the documented bytes, and
// decoding those bytes recovers the same structure.
func TestEncoderSortedDict(t *testing.T) {
	e := NewEncoder()
	err := e.EmitDict(func(d *DictEncoder) error {
		if err := d.EmitInt("bar", []byte("25")); err != nil {
			return err
		}
		return d.EmitList("foo", func(l *ListEncoder) error {
			if err := l.EmitString([]byte("baz")); err != nil {
				return err
			}
			return l.EmitString([]byte("qux"))
		})
	})
	if err != nil {
		t.Fatalf("EmitDict: %v", err)
	}
	out, err := e.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	want := "d3:bari25e3:fool3:baz3:quxee"
	if string(out) != want {
		t.Fatalf("got %q, want %q", out, want)
	}

	// Decode it back.
	d := NewDecoder(out)
	obj, err := d.NextObject()
	if err != nil {
		t.Fatalf("NextObject: %v", err)
	}
	dict, ok := obj.Dict()
	if !ok {
		t.Fatalf("not a dict: %+v", obj)
	}
	key, val, err := dict.NextPair()
	if err != nil || string(key) != "bar" {
		t.Fatalf("first pair = %q, %v, want bar", key, err)
	}
	if text, ok := val.Integer(); !ok || string(text) != "25" {
		t.Fatalf("bar value = %+v, want Num(25)", val)
	}
	key, val, err = dict.NextPair()
	if err != nil || string(key) != "foo" {
		t.Fatalf("second pair = %q, %v, want foo", key, err)
	}
	list, ok := val.List()
	if !ok {
		t.Fatalf("foo value not a list: %+v", val)
	}
	item, err := list.NextObject()
	if err != nil {
		t.Fatalf("list item 0: %v", err)
	}
	if b, ok := item.Bytes(); !ok || string(b) != "baz" {
		t.Fatalf("list item 0 = %+v, want baz", item)
	}
}

// TestEncoderUnsortedDict covers S12: keys supplied in reverse order
// are emitted ascending.
func TestEncoderUnsortedDict(t *testing.T) {
	e := NewEncoder()
	err := e.EmitAndSortDict(func(u *UnsortedDictEncoder) error {
		if err := u.EmitString("b", []byte("2")); err != nil {
			return err
		}
		return u.EmitString("a", []byte("1"))
	})
	if err != nil {
		t.Fatalf("EmitAndSortDict: %v", err)
	}
	out, err := e.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	want := "d1:a1:11:b1:2e"
	if string(out) != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

// TestEncoderDuplicateKeyRejected asserts the unsorted-dict helper
// rejects a repeated key rather than silently emitting it twice.
func TestEncoderDuplicateKeyRejected(t *testing.T) {
	e := NewEncoder()
	err := e.EmitAndSortDict(func(u *UnsortedDictEncoder) error {
		if err := u.EmitString("a", []byte("1")); err != nil {
			return err
		}
		return u.EmitString("a", []byte("2"))
	})
	if err == nil {
		t.Fatal("expected an error for a duplicate key")
	}
}

// TestEncoderOutOfOrderSortedDictRejected asserts EmitDict (the
// caller-presorts variant) rejects keys it receives out of order,
// straight from the underlying tracker.
func TestEncoderOutOfOrderSortedDictRejected(t *testing.T) {
	e := NewEncoder()
	err := e.EmitDict(func(d *DictEncoder) error {
		if err := d.EmitInt("foo", []byte("1")); err != nil {
			return err
		}
		return d.EmitInt("bar", []byte("1"))
	})
	se, ok := err.(*StructureError)
	if !ok || se.Kind != ErrUnsortedKeys {
		t.Fatalf("got %v, want UnsortedKeys", err)
	}
}

// TestEncoderFinishValidity covers invariant 7 for one emitted list:
// the bytes Finish returns decode back as that list.
func TestEncoderFinishValidity(t *testing.T) {
	e := NewEncoder()
	if err := e.EmitList(func(l *ListEncoder) error {
		return l.EmitInt([]byte("7"))
	}); err != nil {
		t.Fatalf("EmitList: %v", err)
	}
	out, err := e.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	d := NewDecoder(out)
	obj, err := d.NextObject()
	if err != nil {
		t.Fatalf("decoding encoder output: %v", err)
	}
	if _, ok := obj.List(); !ok {
		t.Fatalf("not a list: %+v", obj)
	}
}

// TestEncoderUnbalancedFinishFails asserts Finish refuses to return
// bytes for an unbalanced stream.
func TestEncoderUnbalancedFinishFails(t *testing.T) {
	e := NewEncoder()
	// Intentionally drive the tracker directly into an unbalanced
	// state without using the public EmitList wrapper's matching End.
	if err := e.emitToken(List()); err != nil {
		t.Fatalf("emitToken: %v", err)
	}
	if _, err := e.Finish(); err == nil {
		t.Fatal("expected Finish to reject an unbalanced stream")
	}
}

// TestEncoderNestingTooDeep covers invariant 4 at the Encoder level.
func TestEncoderNestingTooDeep(t *testing.T) {
	e := NewEncoderWithConfig(&EncoderConfig{MaxDepth: 2})
	err := e.EmitList(func(l *ListEncoder) error {
		return l.EmitList(func(l2 *ListEncoder) error {
			return l2.EmitList(func(l3 *ListEncoder) error {
				return nil
			})
		})
	})
	se, ok := err.(*StructureError)
	if !ok || se.Kind != ErrNestingTooDeep {
		t.Fatalf("got %v, want NestingTooDeep", err)
	}
}
