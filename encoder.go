package bencode

import (
	"bytes"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// Encoder builds a bencoded byte buffer through a typed façade,
// refusing any token sequence the Decoder's grammar would reject —
// both sides are driven by the same StateTracker (spec.md §4.3).
// Integer text given to EmitInt is written as given, not validated.
type Encoder struct {
	buf     bytes.Buffer
	tracker *StateTracker
	log     *zap.Logger
}

// NewEncoder returns an empty Encoder with default configuration.
func NewEncoder() *Encoder {
	return NewEncoderWithConfig(nil)
}

// NewEncoderWithConfig is like NewEncoder but allows tuning the depth
// budget and trace logging.
func NewEncoderWithConfig(cfg *EncoderConfig) *Encoder {
	tracker := NewStateTracker()
	tracker.SetMaxDepth(cfg.maxDepth())
	log := cfg.logger()
	tracker.SetLogger(log)
	return &Encoder{tracker: tracker, log: log}
}

// emitToken pushes tok through the buffer and the tracker in lockstep.
func (e *Encoder) emitToken(tok Token) error {
	if err := e.tracker.ObserveToken(tok); err != nil {
		return err
	}
	switch tok.Kind {
	case TokenList:
		e.buf.WriteByte('l')
	case TokenDict:
		e.buf.WriteByte('d')
	case TokenEnd:
		e.buf.WriteByte('e')
	case TokenString:
		e.buf.WriteString(itoa(len(tok.Bytes)))
		e.buf.WriteByte(':')
		e.buf.Write(tok.Bytes)
	case TokenNum:
		e.buf.WriteByte('i')
		e.buf.Write(tok.Num)
		e.buf.WriteByte('e')
	}
	e.log.Debug("bencode: emitted token", zap.Stringer("token", tok))
	return nil
}

// EmitInt emits a canonical integer. The caller supplies the decimal
// text directly (sign + digits, no leading zeros other than the
// literal "0"); the emitter does not re-derive it from a numeric type
// so that arbitrary-precision callers are not forced through int64
// (spec.md "Integer carrying as text"). Use FormatInt to build this
// text from a standard integer type.
func (e *Encoder) EmitInt(text []byte) error {
	return e.emitToken(Num(text))
}

// EmitString emits a length-prefixed byte string.
func (e *Encoder) EmitString(b []byte) error {
	return e.emitToken(String(b))
}

// EmitList emits a list, calling cb to populate it. cb receives a
// *ListEncoder scoped to the new list and propagated with the
// remaining depth budget.
func (e *Encoder) EmitList(cb func(*ListEncoder) error) error {
	if err := e.emitToken(List()); err != nil {
		return err
	}
	if err := cb(&ListEncoder{e: e}); err != nil {
		return err
	}
	return e.emitToken(End())
}

// EmitDict emits a dict whose keys cb supplies already sorted
// strictly ascending; a key that violates this is rejected with
// UnsortedKeys as soon as cb writes it (spec.md "Sorted-dict helper").
func (e *Encoder) EmitDict(cb func(*DictEncoder) error) error {
	if err := e.emitToken(Dict()); err != nil {
		return err
	}
	if err := cb(&DictEncoder{e: e}); err != nil {
		return err
	}
	return e.emitToken(End())
}

// EmitAndSortDict emits a dict whose keys cb may supply in any order:
// pairs are buffered and flushed in ascending byte order when cb
// returns (spec.md "Unsorted-dict helper").
func (e *Encoder) EmitAndSortDict(cb func(*UnsortedDictEncoder) error) error {
	if err := e.emitToken(Dict()); err != nil {
		return err
	}
	buf := &UnsortedDictEncoder{e: e}
	if err := cb(buf); err != nil {
		return err
	}
	if err := buf.flush(); err != nil {
		return err
	}
	return e.emitToken(End())
}

// Finish asserts that exactly one complete top-level object was
// written (a balanced stack — ObserveEOF succeeds) and returns the
// accumulated bytes (spec.md invariant 7).
func (e *Encoder) Finish() ([]byte, error) {
	if err := e.tracker.ObserveEOF(); err != nil {
		return nil, err
	}
	return e.buf.Bytes(), nil
}

// ListEncoder is the sub-encoder EmitList's callback receives. Each
// Emit* call appends one item to the enclosing list.
type ListEncoder struct{ e *Encoder }

func (l *ListEncoder) EmitInt(text []byte) error    { return l.e.EmitInt(text) }
func (l *ListEncoder) EmitString(b []byte) error    { return l.e.EmitString(b) }
func (l *ListEncoder) EmitList(cb func(*ListEncoder) error) error { return l.e.EmitList(cb) }
func (l *ListEncoder) EmitDict(cb func(*DictEncoder) error) error { return l.e.EmitDict(cb) }
func (l *ListEncoder) EmitAndSortDict(cb func(*UnsortedDictEncoder) error) error {
	return l.e.EmitAndSortDict(cb)
}

// RemainingDepth reports how many more containers may be opened from
// here before hitting the configured budget.
func (l *ListEncoder) RemainingDepth() int { return l.e.tracker.RemainingDepth() }

// DictEncoder is the sub-encoder EmitDict's callback receives. Callers
// must supply keys already strictly ascending; EmitKeyValue rejects
// out-of-order or duplicate keys with UnsortedKeys, straight from the
// underlying tracker (spec.md "Sorted-dict helper: forwards each
// (key, value) pair straight to the underlying tracker").
type DictEncoder struct{ e *Encoder }

// EmitInt emits the value for the given key as an integer.
func (d *DictEncoder) EmitInt(key string, text []byte) error {
	if err := d.e.emitToken(String([]byte(key))); err != nil {
		return err
	}
	return d.e.EmitInt(text)
}

// EmitString emits the value for the given key as a byte string.
func (d *DictEncoder) EmitString(key string, b []byte) error {
	if err := d.e.emitToken(String([]byte(key))); err != nil {
		return err
	}
	return d.e.EmitString(b)
}

// EmitList emits the value for the given key as a list.
func (d *DictEncoder) EmitList(key string, cb func(*ListEncoder) error) error {
	if err := d.e.emitToken(String([]byte(key))); err != nil {
		return err
	}
	return d.e.EmitList(cb)
}

// EmitDict emits the value for the given key as a sorted dict.
func (d *DictEncoder) EmitDict(key string, cb func(*DictEncoder) error) error {
	if err := d.e.emitToken(String([]byte(key))); err != nil {
		return err
	}
	return d.e.EmitDict(cb)
}

// EmitAndSortDict emits the value for the given key as an
// unsorted-then-sorted dict.
func (d *DictEncoder) EmitAndSortDict(key string, cb func(*UnsortedDictEncoder) error) error {
	if err := d.e.emitToken(String([]byte(key))); err != nil {
		return err
	}
	return d.e.EmitAndSortDict(cb)
}

// RemainingDepth reports how many more containers may be opened from
// here before hitting the configured budget.
func (d *DictEncoder) RemainingDepth() int { return d.e.tracker.RemainingDepth() }

// rawKV is one pending pair in an UnsortedDictEncoder's side buffer.
// It is keyed by the raw key bytes, not by the encoded (length-
// prefixed) form, so the ascending-sort step matches the decoder's
// byte-wise ordering rule exactly — re-sorting by encoded bytes would
// misorder keys of different lengths that share a prefix (spec.md
// "Ordered dict side buffer").
type rawKV struct {
	key   []byte
	value []byte
}

// UnsortedDictEncoder buffers (key, already-encoded-value) pairs
// supplied in any order and flushes them sorted ascending by raw key
// bytes once its callback returns.
type UnsortedDictEncoder struct {
	e      *Encoder
	pairs  []rawKV
	seen   map[string]bool
}

// EmitInt buffers the value for key as an integer.
func (u *UnsortedDictEncoder) EmitInt(key string, text []byte) error {
	return u.bufferValue(key, func(sub *Encoder) error { return sub.EmitInt(text) })
}

// EmitString buffers the value for key as a byte string.
func (u *UnsortedDictEncoder) EmitString(key string, b []byte) error {
	return u.bufferValue(key, func(sub *Encoder) error { return sub.EmitString(b) })
}

// EmitList buffers the value for key as a list.
func (u *UnsortedDictEncoder) EmitList(key string, cb func(*ListEncoder) error) error {
	return u.bufferValue(key, func(sub *Encoder) error { return sub.EmitList(cb) })
}

// EmitDict buffers the value for key as a sorted dict.
func (u *UnsortedDictEncoder) EmitDict(key string, cb func(*DictEncoder) error) error {
	return u.bufferValue(key, func(sub *Encoder) error { return sub.EmitDict(cb) })
}

// EmitAndSortDict buffers the value for key as a nested unsorted dict.
func (u *UnsortedDictEncoder) EmitAndSortDict(key string, cb func(*UnsortedDictEncoder) error) error {
	return u.bufferValue(key, func(sub *Encoder) error { return sub.EmitAndSortDict(cb) })
}

// bufferValue encodes one value into a fresh sub-encoder carrying the
// parent's remaining depth budget (spec.md "Nested depth budget
// propagation": propagate remaining_depth, not max_depth), then
// stashes the raw key alongside the already-encoded value bytes.
func (u *UnsortedDictEncoder) bufferValue(key string, emit func(*Encoder) error) error {
	if u.seen == nil {
		u.seen = make(map[string]bool)
	}
	if u.seen[key] {
		return invalidState("Duplicate key " + key)
	}
	u.seen[key] = true

	sub := NewEncoderWithConfig(&EncoderConfig{Logger: u.e.log})
	// Set the budget on the tracker directly: a remaining depth of 0
	// passed as EncoderConfig.MaxDepth would mean DefaultMaxDepth.
	sub.tracker.SetMaxDepth(u.e.tracker.RemainingDepth())
	if err := emit(sub); err != nil {
		return err
	}
	encoded, err := sub.finishValue()
	if err != nil {
		return err
	}

	u.pairs = append(u.pairs, rawKV{key: []byte(key), value: encoded})
	return nil
}

// finishValue is like Finish but for a single-item sub-encoder used
// only to capture one dict value's bytes. Since an EmitValue callback
// may emit any number of values, it also re-scans the bytes and
// rejects a buffer holding no value or more than one.
func (e *Encoder) finishValue() ([]byte, error) {
	if err := e.tracker.ObserveEOF(); err != nil {
		return nil, err
	}
	out := e.buf.Bytes()
	values := 0
	ts := NewDecoderWithConfig(out, &DecoderConfig{MaxDepth: e.tracker.maxDepth}).Tokens()
	for {
		_, ok, err := ts.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if len(ts.d.tracker.stack) == 0 {
			values++
		}
	}
	if values != 1 {
		return nil, invalidState("expected exactly one value, got " + itoa(values))
	}
	return out, nil
}

// flush sorts the buffered pairs ascending by raw key bytes and emits
// them into the parent encoder, one observe_token pair at a time so
// the parent's tracker stays in sync (spec.md "Unsorted-dict helper").
func (u *UnsortedDictEncoder) flush() error {
	slices.SortFunc(u.pairs, func(a, b rawKV) bool {
		return bytes.Compare(a.key, b.key) < 0
	})
	for _, kv := range u.pairs {
		if err := u.e.emitToken(String(kv.key)); err != nil {
			return err
		}
		if err := u.observeEncodedValue(); err != nil {
			return err
		}
		u.e.buf.Write(kv.value)
	}
	return nil
}

// observeEncodedValue advances the parent tracker by one atom
// observation, mirroring what emitting kv.value's top-level token
// would have done. The side buffer stores fully-encoded bytes (so
// nested containers round-trip byte-for-byte via their own
// sub-encoder), but the parent tracker must still see exactly one
// state transition per pair — the same transition any atom value
// causes — to keep its ExpectingKey/ExpectingValue alternation
// correct without re-scanning the bytes we already validated once.
func (u *UnsortedDictEncoder) observeEncodedValue() error {
	return u.e.tracker.ObserveToken(Token{Kind: TokenNum, Num: []byte("0")})
}
