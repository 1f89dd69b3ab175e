package bencode

import (
	"strconv"
	"unicode/utf8"
)

// FromBencode is implemented by types that can populate themselves
// from a decoded Object (spec.md §4.4 "typed decode layer"). Unlike
// reflection-driven (de)serialization, there is no derive step: each
// type's UnmarshalBencodeObject is hand-written, the same way the
// teacher's typeconv.go hand-writes each Python-value conversion
// rather than deriving it.
type FromBencode interface {
	UnmarshalBencodeObject(obj *Object) error
}

// DepthAware is implemented by FromBencode/ToBencode types that want
// to report how deep their own structure can recurse, so an enclosing
// container can compose its own budget from its children's
// (spec.md "EXPECTED_RECURSION_DEPTH composition"). Atoms don't need
// to implement it — AtomDepth is the assumed default.
type DepthAware interface {
	RecursionDepth() int
}

// AtomDepth is the recursion depth of a value with no children: an
// integer or a byte string.
const AtomDepth = 0

// ContainerDepth composes a container's recursion depth from its
// children's, per spec.md "containers = 1 + children". A container
// with no children (an empty list's element type, say) still costs 1.
func ContainerDepth(children ...int) int {
	max := 0
	for _, c := range children {
		if c > max {
			max = c
		}
	}
	return max + 1
}

// Unmarshal decodes exactly one top-level bencode value from b into a
// freshly constructed T, using PT (almost always *T) to reach T's
// FromBencode implementation. cfg's ForbidTrailingBytes governs
// whether leftover bytes after that value are an error.
func Unmarshal[T any, PT interface {
	*T
	FromBencode
}](b []byte, cfg *DecoderConfig) (T, error) {
	var v T
	dec := NewDecoderWithConfig(b, cfg)

	obj, err := dec.NextObject()
	if err != nil {
		return v, err
	}
	if obj == nil {
		return v, missingField("top-level value")
	}
	if err := PT(&v).UnmarshalBencodeObject(obj); err != nil {
		return v, err
	}

	if cfg.forbidTrailingBytes() {
		extra, err := dec.NextObject()
		if err != nil {
			return v, err
		}
		if extra != nil {
			return v, invalidState("trailing bytes after top-level object")
		}
	}
	return v, nil
}

// UnmarshalList decodes obj (which must be a list) into a []T, using
// PT to reach each element's FromBencode implementation. The index of
// any element that fails to decode is recorded in the returned
// error's context path.
func UnmarshalList[T any, PT interface {
	*T
	FromBencode
}](obj *Object) ([]T, error) {
	listDec, ok := obj.List()
	if !ok {
		return nil, unexpectedToken(ObjList, obj.Kind())
	}
	var out []T
	for {
		item, err := listDec.NextObject()
		if err != nil {
			return nil, wrapStructureError(err)
		}
		if item == nil {
			break
		}
		var v T
		if err := PT(&v).UnmarshalBencodeObject(item); err != nil {
			return nil, WithContext(err, strconv.Itoa(len(out)))
		}
		out = append(out, v)
	}
	return out, nil
}

// UnmarshalDict decodes obj (which must be a dict) into a
// map[string]T, using PT to reach each value's FromBencode
// implementation. The key of any value that fails to decode is
// recorded in the returned error's context path.
func UnmarshalDict[T any, PT interface {
	*T
	FromBencode
}](obj *Object) (map[string]T, error) {
	dictDec, ok := obj.Dict()
	if !ok {
		return nil, unexpectedToken(ObjDict, obj.Kind())
	}
	out := make(map[string]T)
	for {
		key, val, err := dictDec.NextPair()
		if err != nil {
			return nil, wrapStructureError(err)
		}
		if val == nil {
			break
		}
		var v T
		if err := PT(&v).UnmarshalBencodeObject(val); err != nil {
			return nil, WithContext(err, string(key))
		}
		out[string(key)] = v
	}
	return out, nil
}

// Int64 is a provided FromBencode/ToBencode implementation for signed
// integers carried as a bencode integer token.
type Int64 int64

func (n *Int64) UnmarshalBencodeObject(obj *Object) error {
	text, ok := obj.Integer()
	if !ok {
		return unexpectedToken(ObjInteger, obj.Kind())
	}
	v, err := ParseInt(text)
	if err != nil {
		return err
	}
	*n = Int64(v)
	return nil
}

func (n Int64) RecursionDepth() int { return AtomDepth }

// Uint64 is a provided FromBencode/ToBencode implementation for
// non-negative integers.
type Uint64 uint64

func (n *Uint64) UnmarshalBencodeObject(obj *Object) error {
	text, ok := obj.Integer()
	if !ok {
		return unexpectedToken(ObjInteger, obj.Kind())
	}
	v, err := ParseUint(text)
	if err != nil {
		return err
	}
	*n = Uint64(v)
	return nil
}

func (n Uint64) RecursionDepth() int { return AtomDepth }

// Int32, Int16, and Int8 are provided FromBencode/ToBencode
// implementations for the narrower signed widths, completing the set
// of standard integer widths the typed layer covers (spec.md §4.4).
// Each rejects a value that doesn't fit its width with
// MalformedContent rather than truncating it.
type (
	Int32 int32
	Int16 int16
	Int8  int8
)

func (n *Int32) UnmarshalBencodeObject(obj *Object) error {
	text, ok := obj.Integer()
	if !ok {
		return unexpectedToken(ObjInteger, obj.Kind())
	}
	v, err := ParseIntN(text, 32)
	if err != nil {
		return err
	}
	*n = Int32(v)
	return nil
}

func (n Int32) RecursionDepth() int { return AtomDepth }

func (n *Int16) UnmarshalBencodeObject(obj *Object) error {
	text, ok := obj.Integer()
	if !ok {
		return unexpectedToken(ObjInteger, obj.Kind())
	}
	v, err := ParseIntN(text, 16)
	if err != nil {
		return err
	}
	*n = Int16(v)
	return nil
}

func (n Int16) RecursionDepth() int { return AtomDepth }

func (n *Int8) UnmarshalBencodeObject(obj *Object) error {
	text, ok := obj.Integer()
	if !ok {
		return unexpectedToken(ObjInteger, obj.Kind())
	}
	v, err := ParseIntN(text, 8)
	if err != nil {
		return err
	}
	*n = Int8(v)
	return nil
}

func (n Int8) RecursionDepth() int { return AtomDepth }

// Uint32, Uint16, and Uint8 are the unsigned counterparts of
// Int32/Int16/Int8, completing the standard-width set on the unsigned
// side.
type (
	Uint32 uint32
	Uint16 uint16
	Uint8  uint8
)

func (n *Uint32) UnmarshalBencodeObject(obj *Object) error {
	text, ok := obj.Integer()
	if !ok {
		return unexpectedToken(ObjInteger, obj.Kind())
	}
	v, err := ParseUintN(text, 32)
	if err != nil {
		return err
	}
	*n = Uint32(v)
	return nil
}

func (n Uint32) RecursionDepth() int { return AtomDepth }

func (n *Uint16) UnmarshalBencodeObject(obj *Object) error {
	text, ok := obj.Integer()
	if !ok {
		return unexpectedToken(ObjInteger, obj.Kind())
	}
	v, err := ParseUintN(text, 16)
	if err != nil {
		return err
	}
	*n = Uint16(v)
	return nil
}

func (n Uint16) RecursionDepth() int { return AtomDepth }

func (n *Uint8) UnmarshalBencodeObject(obj *Object) error {
	text, ok := obj.Integer()
	if !ok {
		return unexpectedToken(ObjInteger, obj.Kind())
	}
	v, err := ParseUintN(text, 8)
	if err != nil {
		return err
	}
	*n = Uint8(v)
	return nil
}

func (n Uint8) RecursionDepth() int { return AtomDepth }

// Bytes is a provided FromBencode/ToBencode implementation for a raw
// byte string with no text interpretation (spec.md Non-goal: "no
// UTF-8 interpretation of byte strings" at the core layer — this type
// is the typed layer honoring that by default).
type Bytes []byte

func (b *Bytes) UnmarshalBencodeObject(obj *Object) error {
	raw, ok := obj.Bytes()
	if !ok {
		return unexpectedToken(ObjBytes, obj.Kind())
	}
	// Copy out of the decoder's backing buffer: the Object's Bytes()
	// borrows from input that may be reused or go out of scope once
	// the surrounding view is drained.
	cp := make([]byte, len(raw))
	copy(cp, raw)
	*b = cp
	return nil
}

func (b Bytes) RecursionDepth() int { return AtomDepth }

// Text is a provided FromBencode/ToBencode implementation for a byte
// string that the caller asserts is valid UTF-8 text — the one place
// this package does perform that interpretation, and only when the
// field is explicitly typed Text rather than Bytes.
type Text string

func (s *Text) UnmarshalBencodeObject(obj *Object) error {
	raw, ok := obj.Bytes()
	if !ok {
		return unexpectedToken(ObjBytes, obj.Kind())
	}
	if !utf8.Valid(raw) {
		return malformedContent("byte string is not valid UTF-8")
	}
	*s = Text(raw)
	return nil
}

func (s Text) RecursionDepth() int { return AtomDepth }

// Box is a single-owner pass-through wrapper around a FromBencode/
// ToBencode value — the Go analogue of the original's Box<E>:
// decoding and encoding forward straight through to Value, and
// RecursionDepth composes unchanged, since indirecting through a
// reference adds no nesting of its own (spec.md §4.4 "pass-through
// wrappers for single-owner and shared-owner references").
type Box[T any, PT interface {
	*T
	FromBencode
}] struct {
	Value T
}

func (b *Box[T, PT]) UnmarshalBencodeObject(obj *Object) error {
	return PT(&b.Value).UnmarshalBencodeObject(obj)
}

func (b Box[T, PT]) RecursionDepth() int {
	if d, ok := any(b.Value).(DepthAware); ok {
		return d.RecursionDepth()
	}
	return AtomDepth
}

// Shared is a shared-owner pass-through wrapper with exactly Box's
// forwarding behavior — the Go analogue of the original's Rc<E>/
// Arc<E>. Go's garbage collector already gives every reference shared
// ownership, so Shared has nothing to do differently from Box at
// runtime; it exists under its own name so a call site can say which
// ownership the wrapped value actually has.
type Shared[T any, PT interface {
	*T
	FromBencode
}] struct {
	Box[T, PT]
}
