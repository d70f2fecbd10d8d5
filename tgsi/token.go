package tgsi

// TokenKind represents the type of a lexical token in TGSI text.
type TokenKind uint8

const (
	TokenEOF TokenKind = iota
	TokenError

	// Literals
	TokenIdent
	TokenIntLiteral
	TokenFloatLiteral

	// Punctuation
	TokenLeftBracket  // [
	TokenRightBracket // ]
	TokenLeftBrace    // {
	TokenRightBrace   // }
	TokenComma        // ,
	TokenDot          // .
	TokenDotDot       // ..
	TokenColon        // :
	TokenPlus         // +
	TokenMinus        // -
	TokenPipe         // |
)

// String returns the string representation of the token kind.
func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "EOF"
	case TokenError:
		return "Error"
	case TokenIdent:
		return "Ident"
	case TokenIntLiteral:
		return "IntLiteral"
	case TokenFloatLiteral:
		return "FloatLiteral"
	case TokenLeftBracket:
		return "["
	case TokenRightBracket:
		return "]"
	case TokenLeftBrace:
		return "{"
	case TokenRightBrace:
		return "}"
	case TokenComma:
		return ","
	case TokenDot:
		return "."
	case TokenDotDot:
		return ".."
	case TokenColon:
		return ":"
	case TokenPlus:
		return "+"
	case TokenMinus:
		return "-"
	case TokenPipe:
		return "|"
	default:
		return "Unknown"
	}
}

// Lexeme is a lexical token.
type Lexeme struct {
	Kind   TokenKind
	Text   string
	Line   int
	Column int
}
