package bencode

import (
	"go.uber.org/zap"
)

// Decoder scans a byte slice into bencode tokens and, through
// NextObject, a tree of Objects. It never copies or allocates the
// payload: every String/Num token borrows from the input buffer.
//
// A Decoder is not safe for concurrent use, and is not restartable
// after Tokens' iterator or NextObject reports end-of-input or an
// error (spec.md §4.2, §5).
type Decoder struct {
	buf []byte
	pos int

	tracker *StateTracker
	cfg     *DecoderConfig
	log     *zap.Logger

	// childOpen enforces the LIFO view discipline dynamically
	// (spec.md "Design Notes: Zero-copy borrow tree"): while a
	// ListDecoder/DictDecoder view is live, the parent must not be
	// advanced directly.
	childOpen bool
}

// NewDecoder returns a Decoder over b with default configuration.
func NewDecoder(b []byte) *Decoder {
	return NewDecoderWithConfig(b, nil)
}

// NewDecoderWithConfig is like NewDecoder but allows tuning depth
// budget, trailing-bytes policy, and trace logging.
func NewDecoderWithConfig(b []byte, cfg *DecoderConfig) *Decoder {
	tracker := NewStateTracker()
	tracker.SetMaxDepth(cfg.maxDepth())
	log := cfg.logger()
	tracker.SetLogger(log)
	return &Decoder{buf: b, tracker: tracker, cfg: cfg, log: log}
}

// WithMaxDepth returns a decoder reconfigured with a new depth budget.
// It must be called before any tokens are read.
func (d *Decoder) WithMaxDepth(n int) *Decoder {
	d.tracker.SetMaxDepth(n)
	return d
}

// errAdvanceWhileChildOpen guards the LIFO view discipline: advancing
// a Decoder while a child List/DictDecoder view is alive is a
// programmer error, not a malformed-input error.
var errAdvanceWhileChildOpen = &StructureError{
	Kind:    ErrInvalidState,
	Message: "decoder advanced while a child List/DictDecoder view is still open",
}

// atEOF reports whether the buffer has been fully consumed.
func (d *Decoder) atEOF() bool { return d.pos >= len(d.buf) }

// Pos returns the current byte offset into the input buffer. Used by
// views to capture the span covered by RawBytes.
func (d *Decoder) Pos() int { return d.pos }

// Raw returns the exact byte span [from, d.Pos()) of the input
// buffer. Callers use this together with Pos to recover the verbatim
// bytes of a value they just finished decoding.
func (d *Decoder) Raw(from int) []byte { return d.buf[from:d.pos] }

// NextToken reads and returns the next token in the stream, advancing
// pos and driving the tracker. It is the primitive both NextObject
// and the views are built on.
func (d *Decoder) NextToken() (Token, error) {
	if d.childOpen {
		return Token{}, errAdvanceWhileChildOpen
	}
	return d.nextTokenInternal()
}

// nextTokenInternal is NextToken's implementation without the
// childOpen guard; see nextObjectInternal.
func (d *Decoder) nextTokenInternal() (Token, error) {
	if err := d.tracker.CheckError(); err != nil {
		return Token{}, err
	}

	tok, serr := d.scanToken()
	if serr != nil {
		d.tracker.latchErr(serr)
		return Token{}, serr
	}

	if err := d.tracker.ObserveToken(tok); err != nil {
		return Token{}, err
	}
	d.log.Debug("bencode: decoded token", zap.Stringer("token", tok))
	return tok, nil
}

// scanToken dispatches on the next byte and returns the raw token
// without touching the tracker.
func (d *Decoder) scanToken() (Token, *StructureError) {
	if d.atEOF() {
		return Token{}, unexpectedEOF("expected a token, reached end of input")
	}

	switch c := d.buf[d.pos]; {
	case c == 'i':
		return d.scanInteger()
	case c == 'l':
		d.pos++
		return List(), nil
	case c == 'd':
		d.pos++
		return Dict(), nil
	case c == 'e':
		d.pos++
		return End(), nil
	case c >= '0' && c <= '9':
		return d.scanString()
	default:
		return Token{}, syntaxError(d.pos, "unrecognized start byte '"+string(c)+"'")
	}
}

// integer scan states, per spec.md §4.2 "Integer scanning is a
// four-state automaton".
type intScanState int

const (
	intStart intScanState = iota
	intSign
	intZero
	intDigits
)

// scanInteger scans `i<digits>e` starting at the 'i' and returns a
// TokenNum carrying the digits (with leading '-' if present).
func (d *Decoder) scanInteger() (Token, *StructureError) {
	start := d.pos
	d.pos++ // consume 'i'

	bodyStart := d.pos
	state := intStart

	for {
		if d.atEOF() {
			return Token{}, unexpectedEOF("unterminated integer starting at offset " + itoa(start))
		}
		c := d.buf[d.pos]

		switch state {
		case intStart:
			switch {
			case c == '-':
				state = intSign
				d.pos++
			case c == '0':
				state = intZero
				d.pos++
			case c >= '1' && c <= '9':
				state = intDigits
				d.pos++
			case c == 'e':
				return Token{}, syntaxError(d.pos, "empty integer body")
			default:
				return Token{}, syntaxError(d.pos, "expected digit or '-', got '"+string(c)+"'")
			}

		case intSign:
			switch {
			case c == '0':
				return Token{}, syntaxError(d.pos, "'0' not allowed as the only digit after '-'; '-0' is not canonical")
			case c >= '1' && c <= '9':
				state = intDigits
				d.pos++
			default:
				return Token{}, syntaxError(d.pos, "expected nonzero digit after '-', got '"+string(c)+"'")
			}

		case intZero:
			if c == 'e' {
				body := d.buf[bodyStart:d.pos]
				d.pos++
				return Num(body), nil
			}
			return Token{}, syntaxError(d.pos, "leading zero not allowed, got '"+string(c)+"'")

		case intDigits:
			switch {
			case c == 'e':
				body := d.buf[bodyStart:d.pos]
				d.pos++
				return Num(body), nil
			case c >= '0' && c <= '9':
				d.pos++
			default:
				return Token{}, syntaxError(d.pos, "expected digit or 'e', got '"+string(c)+"'")
			}
		}
	}
}

// scanString scans `<n>:<n bytes>` and returns a TokenString carrying
// the payload. The length prefix reuses the canonical-form rule (no
// leading zeros except the literal "0") for digits-only, non-negative
// lengths.
func (d *Decoder) scanString() (Token, *StructureError) {
	lenStart := d.pos
	for !d.atEOF() && d.buf[d.pos] != ':' {
		c := d.buf[d.pos]
		if c < '0' || c > '9' {
			return Token{}, syntaxError(d.pos, "expected digit or ':' in string length prefix, got '"+string(c)+"'")
		}
		d.pos++
	}
	if d.atEOF() {
		return Token{}, unexpectedEOF("unterminated string length prefix starting at offset " + itoa(lenStart))
	}
	lenBytes := d.buf[lenStart:d.pos]
	if len(lenBytes) == 0 {
		return Token{}, syntaxError(lenStart, "missing string length prefix")
	}
	if len(lenBytes) > 1 && lenBytes[0] == '0' {
		return Token{}, syntaxError(lenStart, "leading zero not allowed in string length prefix")
	}
	n, convErr := parseNonNegativeLength(lenBytes)
	if convErr != nil {
		return Token{}, syntaxError(lenStart, convErr.Error())
	}

	d.pos++ // skip ':'
	if n > len(d.buf)-d.pos {
		return Token{}, unexpectedEOF("string length " + itoa(n) + " exceeds remaining input")
	}
	payload := d.buf[d.pos : d.pos+n]
	d.pos += n
	return String(payload), nil
}

// NextObject reads one complete value at the current nesting level:
// an atom, or the opening of a List/Dict (returned as a view that
// must be walked to its end or closed before the parent decoder is
// touched again).
//
// It returns (nil, nil) when there is nothing more to read at this
// level: at the top level that means the buffer is fully consumed
// with no container left open; inside a List/DictDecoder view it
// means the next token is that container's matching End (which
// NextObject consumes on the view's behalf, since a view shares its
// parent's token stream).
func (d *Decoder) NextObject() (*Object, error) {
	if d.childOpen {
		return nil, errAdvanceWhileChildOpen
	}
	return d.nextObjectInternal()
}

// nextObjectInternal is NextObject's implementation, without the
// childOpen guard. Views call this directly: they hold the loan
// themselves and are the legitimate way to keep advancing the shared
// decoder position while open.
func (d *Decoder) nextObjectInternal() (*Object, error) {
	if err := d.tracker.CheckError(); err != nil {
		return nil, err
	}
	if len(d.tracker.stack) == 0 && d.atEOF() {
		return nil, nil
	}

	tok, err := d.nextTokenInternal()
	if err != nil {
		return nil, err
	}

	switch tok.Kind {
	case TokenEnd:
		return nil, nil
	case TokenString:
		return &Object{kind: ObjBytes, bytes: tok.Bytes}, nil
	case TokenNum:
		return &Object{kind: ObjInteger, num: tok.Num}, nil
	case TokenList:
		return &Object{kind: ObjList, list: newListDecoder(d)}, nil
	case TokenDict:
		return &Object{kind: ObjDict, dict: newDictDecoder(d)}, nil
	default:
		return nil, invalidState("unknown token kind")
	}
}

// itoa avoids importing strconv for formatting offsets in scan errors.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func parseNonNegativeLength(digits []byte) (int, error) {
	n := 0
	for _, c := range digits {
		if n > (1<<62)/10 {
			return 0, errLengthOverflow
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}

var errLengthOverflow = simpleErr("length prefix overflows int")

type simpleErr string

func (e simpleErr) Error() string { return string(e) }
