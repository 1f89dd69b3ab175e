package bencode

import "fmt"

// TokenKind identifies which of the five grammar symbols a Token carries.
type TokenKind int

const (
	// TokenList opens a list; matched later by a TokenEnd.
	TokenList TokenKind = iota
	// TokenDict opens a dict; matched later by a TokenEnd.
	TokenDict
	// TokenEnd closes the most recently opened List or Dict.
	TokenEnd
	// TokenString carries a byte string's payload.
	TokenString
	// TokenNum carries an integer's textual body (no 'i'/'e', no sign
	// validation beyond what the scanner already enforced).
	TokenNum
)

func (k TokenKind) String() string {
	switch k {
	case TokenList:
		return "List"
	case TokenDict:
		return "Dict"
	case TokenEnd:
		return "End"
	case TokenString:
		return "String"
	case TokenNum:
		return "Num"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// Token is the atomic grammar symbol the bencode grammar speaks.
//
// String and Num borrow their payload from the buffer that produced
// them: decoding never copies, and a Token must not outlive the
// buffer it was scanned from (or, for encoder-side tokens, the
// caller's argument).
type Token struct {
	Kind TokenKind

	// Bytes holds the payload for TokenString.
	Bytes []byte

	// Num holds the textual payload for TokenNum: sign plus digits,
	// no surrounding 'i'/'e'.
	Num []byte
}

// List returns the structural List token.
func List() Token { return Token{Kind: TokenList} }

// Dict returns the structural Dict token.
func Dict() Token { return Token{Kind: TokenDict} }

// End returns the structural End token.
func End() Token { return Token{Kind: TokenEnd} }

// String returns a String token carrying b verbatim (no copy).
func String(b []byte) Token { return Token{Kind: TokenString, Bytes: b} }

// Num returns a Num token carrying the textual integer body text
// verbatim (no copy, no validation beyond what the caller already did).
func Num(text []byte) Token { return Token{Kind: TokenNum, Num: text} }

func (t Token) String() string {
	switch t.Kind {
	case TokenString:
		return fmt.Sprintf("String(%q)", t.Bytes)
	case TokenNum:
		return fmt.Sprintf("Num(%q)", t.Num)
	default:
		return t.Kind.String()
	}
}
