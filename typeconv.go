package bencode

import (
	"fmt"
	"strconv"
)

// FormatInt renders n as the canonical decimal text an integer token
// carries: no leading zeros, no "+" sign, "-0" rewritten to "0" is
// unreachable since int64(0) has no sign bit to begin with. Every
// signed width (Int8 .. Int64) encodes through this same function —
// widening to int64 first never changes the canonical decimal text.
func FormatInt(n int64) []byte {
	return strconv.AppendInt(nil, n, 10)
}

// FormatUint renders n as canonical decimal text, shared by every
// unsigned width the same way FormatInt is shared by the signed ones.
func FormatUint(n uint64) []byte {
	return strconv.AppendUint(nil, n, 10)
}

// ParseInt converts an integer token's text to int64, failing with
// MalformedContent if it over/underflows int64's range. The text
// itself is already known canonical (no leading zeros, no "-0") by
// construction — it only ever reaches here via a Token the Decoder
// produced or a literal the caller trusts.
func ParseInt(text []byte) (int64, error) {
	return ParseIntN(text, 64)
}

// ParseUint converts an integer token's text to uint64, failing with
// MalformedContent on a negative value or overflow.
func ParseUint(text []byte) (uint64, error) {
	return ParseUintN(text, 64)
}

// ParseIntN converts an integer token's text to a signed integer that
// must fit in bitSize bits (8, 16, 32, or 64), failing with
// MalformedContent if it over/underflows that narrower width. This is
// what lets Int8 reject "200" or "-200" (and Int16/Int32 reject values
// past their own ranges) instead of quietly truncating it the way a
// bare type conversion would.
func ParseIntN(text []byte, bitSize int) (int64, error) {
	n, err := strconv.ParseInt(string(text), 10, bitSize)
	if err != nil {
		return 0, malformedContent(fmt.Sprintf("integer does not fit in int%d: %s", bitSize, text))
	}
	return n, nil
}

// ParseUintN converts an integer token's text to an unsigned integer
// that must fit in bitSize bits (8, 16, 32, or 64), failing with
// MalformedContent on a negative value or overflow at that width.
func ParseUintN(text []byte, bitSize int) (uint64, error) {
	n, err := strconv.ParseUint(string(text), 10, bitSize)
	if err != nil {
		return 0, malformedContent(fmt.Sprintf("integer does not fit in uint%d: %s", bitSize, text))
	}
	return n, nil
}
