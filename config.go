package bencode

import "go.uber.org/zap"

// DefaultMaxDepth is the nesting budget used when a config does not
// set MaxDepth. It bounds how many simultaneously open List/Dict
// containers are allowed, guarding against adversarial input.
const DefaultMaxDepth = 2048

// DecoderConfig tunes a Decoder, following the teacher's
// NewXWithConfig pattern (see og-rek's DecoderConfig/EncoderConfig).
type DecoderConfig struct {
	// MaxDepth caps simultaneous nesting. Zero means DefaultMaxDepth.
	MaxDepth int

	// ForbidTrailingBytes makes Unmarshal fail with ErrInvalidState if
	// another value follows the single top-level object (malformed
	// trailing bytes fail with their own scan error). NextObject and
	// Tokens do not consult it. The default, false, matches the
	// permissive default of the source this spec distills: the
	// tokenizer happily continues, and callers that care must opt in
	// to strict framing.
	ForbidTrailingBytes bool

	// Logger receives Debug-level structured traces of grammar
	// transitions. Defaults to a no-op logger.
	Logger *zap.Logger
}

func (c *DecoderConfig) maxDepth() int {
	if c == nil || c.MaxDepth == 0 {
		return DefaultMaxDepth
	}
	return c.MaxDepth
}

func (c *DecoderConfig) forbidTrailingBytes() bool {
	return c != nil && c.ForbidTrailingBytes
}

func (c *DecoderConfig) logger() *zap.Logger {
	if c == nil || c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// EncoderConfig tunes an Encoder.
type EncoderConfig struct {
	// MaxDepth caps simultaneous nesting. Zero means DefaultMaxDepth.
	MaxDepth int

	// Logger receives Debug-level structured traces of grammar
	// transitions. Defaults to a no-op logger.
	Logger *zap.Logger
}

func (c *EncoderConfig) maxDepth() int {
	if c == nil || c.MaxDepth == 0 {
		return DefaultMaxDepth
	}
	return c.MaxDepth
}

func (c *EncoderConfig) logger() *zap.Logger {
	if c == nil || c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
