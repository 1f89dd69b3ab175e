package bencode

// TokenStream is the lazy, finite token-level view of a Decoder: each
// call to Next returns the next token in document order — including
// the End tokens that close lists and dicts — until the stream is
// exhausted at top-level end-of-input (spec.md §4.2, "tokens()").
//
// Unlike NextObject, TokenStream does not build any Object views; it
// is the raw grammar-level primitive external collaborators (the
// Serde adapter, the Inspectable tree) are expected to drive.
type TokenStream struct {
	d    *Decoder
	done bool
}

// Tokens returns a TokenStream over d. Do not call d.NextObject (or
// open any view on d) while iterating the stream and vice versa —
// both drive the same underlying position and tracker.
func (d *Decoder) Tokens() *TokenStream {
	return &TokenStream{d: d}
}

// Next returns the next token, or ok=false once the stream has
// reached top-level end-of-input. Once Next returns an error or
// ok=false, the stream must not be used again.
func (t *TokenStream) Next() (tok Token, ok bool, err error) {
	if t.done {
		return Token{}, false, nil
	}
	if len(t.d.tracker.stack) == 0 && t.d.atEOF() {
		t.done = true
		return Token{}, false, nil
	}
	tok, err = t.d.NextToken()
	if err != nil {
		t.done = true
		return Token{}, false, err
	}
	return tok, true, nil
}
