package bencode

import "testing"

// TestDecoderTokenStream covers S1: decoding
// d3:bari1e3:fooli2ei3eee through Tokens() yields the documented
// sequence exactly.
func TestDecoderTokenStream(t *testing.T) {
	d := NewDecoder([]byte("d3:bari1e3:fooli2ei3eee"))
	want := []Token{
		Dict(), str("bar"), num("1"), str("foo"), List(), num("2"), num("3"), End(), End(),
	}

	var got []Token
	stream := d.Tokens()
	for {
		tok, ok, err := stream.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, tok)
	}

	if len(want) != len(got) {
		t.Fatalf("token count = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if want[i].Kind != got[i].Kind || string(want[i].Bytes) != string(got[i].Bytes) || string(want[i].Num) != string(got[i].Num) {
			t.Fatalf("token %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

// TestDecoderSuccessiveTopLevelReads covers S2: i0ei-1e read as two
// successive top-level objects.
func TestDecoderSuccessiveTopLevelReads(t *testing.T) {
	d := NewDecoder([]byte("i0ei-1e"))

	first, err := d.NextObject()
	if err != nil {
		t.Fatalf("first NextObject: %v", err)
	}
	text, ok := first.Integer()
	if !ok || string(text) != "0" {
		t.Fatalf("first = %+v, want Num(0)", first)
	}

	second, err := d.NextObject()
	if err != nil {
		t.Fatalf("second NextObject: %v", err)
	}
	text, ok = second.Integer()
	if !ok || string(text) != "-1" {
		t.Fatalf("second = %+v, want Num(-1)", second)
	}

	third, err := d.NextObject()
	if err != nil {
		t.Fatalf("third NextObject: %v", err)
	}
	if third != nil {
		t.Fatalf("third = %+v, want nil (end of input)", third)
	}
}

// TestDecoderNonCanonicalIntegers covers S3, S4, and invariant 2.
func TestDecoderNonCanonicalIntegers(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		wantKind StructureErrorKind
	}{
		{"S3 negative zero", "i-0e", ErrSyntax},
		{"S4 leading zero", "i01e", ErrSyntax},
		{"double leading zero", "i00e", ErrSyntax},
		{"negative leading zero digits", "i-01e", ErrSyntax},
		{"empty body", "ie", ErrSyntax},
		{"bare sign", "i-e", ErrSyntax},
		{"unterminated", "i1", ErrUnexpectedEof},
		{"explicit plus sign", "i+1e", ErrSyntax},
		{"decimal point", "i1.0e", ErrSyntax},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := NewDecoder([]byte(c.input))
			_, err := d.NextObject()
			se, ok := err.(*StructureError)
			if !ok {
				t.Fatalf("got %v (%T), want *StructureError", err, err)
			}
			if se.Kind != c.wantKind {
				t.Fatalf("got %v, want %v", se.Kind, c.wantKind)
			}
		})
	}
}

// TestDecoderMissingMapValue covers S9.
func TestDecoderMissingMapValue(t *testing.T) {
	d := NewDecoder([]byte("d3:fooe"))
	dictObj, err := d.NextObject()
	if err != nil {
		t.Fatalf("NextObject (dict open): %v", err)
	}
	dict, ok := dictObj.Dict()
	if !ok {
		t.Fatalf("not a dict: %+v", dictObj)
	}
	_, _, err = dict.NextPair()
	se, ok := err.(*StructureError)
	if !ok || se.Kind != ErrInvalidState {
		t.Fatalf("got %v, want InvalidState", err)
	}
}

// TestDecoderTruncatedString covers S10.
func TestDecoderTruncatedString(t *testing.T) {
	d := NewDecoder([]byte("3:"))
	_, err := d.NextObject()
	se, ok := err.(*StructureError)
	if !ok || se.Kind != ErrUnexpectedEof {
		t.Fatalf("got %v, want UnexpectedEof", err)
	}
}

// TestDecoderViewDropConsumes covers S13 and invariant 6: abandoning a
// DictDecoder partway through still leaves the parent positioned right
// after the dict's matching End.
func TestDecoderViewDropConsumes(t *testing.T) {
	d := NewDecoder([]byte("d3:fooi1e3:quxi2eei1000e"))

	dictObj, err := d.NextObject()
	if err != nil {
		t.Fatalf("NextObject (dict open): %v", err)
	}
	dict, ok := dictObj.Dict()
	if !ok {
		t.Fatalf("not a dict: %+v", dictObj)
	}

	key, val, err := dict.NextPair()
	if err != nil {
		t.Fatalf("NextPair: %v", err)
	}
	if string(key) != "foo" {
		t.Fatalf("key = %q, want foo", key)
	}
	text, ok := val.Integer()
	if !ok || string(text) != "1" {
		t.Fatalf("val = %+v, want Num(1)", val)
	}

	dict.Close() // abandon before reading the "qux" pair

	next, err := d.NextObject()
	if err != nil {
		t.Fatalf("NextObject after Close: %v", err)
	}
	text, ok = next.Integer()
	if !ok || string(text) != "1000" {
		t.Fatalf("next = %+v, want Num(1000)", next)
	}
}

// TestDecoderChildOpenGuard asserts the LIFO view discipline: reading
// the parent decoder directly while a view is open is rejected.
func TestDecoderChildOpenGuard(t *testing.T) {
	d := NewDecoder([]byte("ld3:fooi1eee"))
	obj, err := d.NextObject()
	if err != nil {
		t.Fatalf("NextObject: %v", err)
	}
	if _, ok := obj.List(); !ok {
		t.Fatalf("not a list: %+v", obj)
	}

	if _, err := d.NextObject(); err == nil {
		t.Fatal("expected an error reading parent while child view is open")
	}
	if _, err := d.NextToken(); err == nil {
		t.Fatal("expected an error reading parent token while child view is open")
	}
}

// TestDecoderNestingTooDeep covers invariant 4 at the Decoder level.
func TestDecoderNestingTooDeep(t *testing.T) {
	opens := make([]byte, 4)
	for i := range opens {
		opens[i] = 'l'
	}
	closes := make([]byte, 4)
	for i := range closes {
		closes[i] = 'e'
	}
	input := append(append([]byte{}, opens...), closes...)

	d := NewDecoderWithConfig(input, &DecoderConfig{MaxDepth: 3})
	var lastErr error
	for i := 0; i < len(input); i++ {
		_, lastErr = d.NextToken()
		if lastErr != nil {
			break
		}
	}
	se, ok := lastErr.(*StructureError)
	if !ok || se.Kind != ErrNestingTooDeep {
		t.Fatalf("got %v, want NestingTooDeep", lastErr)
	}
}
