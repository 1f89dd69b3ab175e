package bencode

import "golang.org/x/exp/slices"

// ValueSink is the emission surface a ToBencode implementation writes
// itself into. *Encoder and *ListEncoder both satisfy it, which is
// what lets a single MarshalBencode method serialize a value whether
// it sits at the document root, as a list element, or as a dict
// value — without a type switch, since both structurally implement
// every method below.
type ValueSink interface {
	EmitInt(text []byte) error
	EmitString(b []byte) error
	EmitList(cb func(*ListEncoder) error) error
	EmitDict(cb func(*DictEncoder) error) error
	EmitAndSortDict(cb func(*UnsortedDictEncoder) error) error
}

var (
	_ ValueSink = (*Encoder)(nil)
	_ ValueSink = (*ListEncoder)(nil)
)

// ToBencode is implemented by types that can write themselves into a
// ValueSink (spec.md §4.4).
type ToBencode interface {
	MarshalBencode(sink ValueSink) error
}

// Marshal encodes v as a complete top-level bencode value.
func Marshal[T ToBencode](v T, cfg *EncoderConfig) ([]byte, error) {
	enc := NewEncoderWithConfig(cfg)
	if err := v.MarshalBencode(enc); err != nil {
		return nil, err
	}
	return enc.Finish()
}

// MarshalList writes items into sink as a list, in order.
func MarshalList[T ToBencode](sink ValueSink, items []T) error {
	return sink.EmitList(func(le *ListEncoder) error {
		for _, item := range items {
			if err := item.MarshalBencode(le); err != nil {
				return err
			}
		}
		return nil
	})
}

// MarshalMap writes m into sink as a dict, sorted ascending by key
// regardless of Go's randomized map iteration order (spec.md "Unsorted
// dict helper").
func MarshalMap[T ToBencode](sink ValueSink, m map[string]T) error {
	return sink.EmitAndSortDict(func(ud *UnsortedDictEncoder) error {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			v := m[k]
			if err := ud.EmitValue(k, func(s ValueSink) error {
				return v.MarshalBencode(s)
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// EmitValue writes the value for the given key through cb, as a
// generic ValueSink, rather than requiring the caller to already know
// which concrete Emit* method the value's kind needs.
func (d *DictEncoder) EmitValue(key string, cb func(ValueSink) error) error {
	if err := d.e.emitToken(String([]byte(key))); err != nil {
		return err
	}
	return cb(d.e)
}

// EmitValue buffers the value for key, writing it through cb as a
// generic ValueSink.
func (u *UnsortedDictEncoder) EmitValue(key string, cb func(ValueSink) error) error {
	return u.bufferValue(key, func(sub *Encoder) error { return cb(sub) })
}

func (n Int64) MarshalBencode(sink ValueSink) error {
	return sink.EmitInt(FormatInt(int64(n)))
}

func (n Uint64) MarshalBencode(sink ValueSink) error {
	return sink.EmitInt(FormatUint(uint64(n)))
}

func (n Int32) MarshalBencode(sink ValueSink) error { return sink.EmitInt(FormatInt(int64(n))) }
func (n Int16) MarshalBencode(sink ValueSink) error { return sink.EmitInt(FormatInt(int64(n))) }
func (n Int8) MarshalBencode(sink ValueSink) error  { return sink.EmitInt(FormatInt(int64(n))) }

func (n Uint32) MarshalBencode(sink ValueSink) error { return sink.EmitInt(FormatUint(uint64(n))) }
func (n Uint16) MarshalBencode(sink ValueSink) error { return sink.EmitInt(FormatUint(uint64(n))) }
func (n Uint8) MarshalBencode(sink ValueSink) error  { return sink.EmitInt(FormatUint(uint64(n))) }

func (b Bytes) MarshalBencode(sink ValueSink) error {
	return sink.EmitString([]byte(b))
}

func (s Text) MarshalBencode(sink ValueSink) error {
	return sink.EmitString([]byte(s))
}

// MarshalBencode on Box forwards to Value's own MarshalBencode,
// mirroring UnmarshalBencodeObject's forwarding in from_bencode.go.
// Value must itself implement ToBencode; every provided type in this
// package (Int64, Bytes, Text, ...) does.
func (b Box[T, PT]) MarshalBencode(sink ValueSink) error {
	tb, ok := any(b.Value).(ToBencode)
	if !ok {
		return malformedContent("Box element type does not implement ToBencode")
	}
	return tb.MarshalBencode(sink)
}
