package tgsi

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes TGSI text.
type Lexer struct {
	source string
	pos    int
	line   int
	column int
	start  int
	tokens []Lexeme
}

// NewLexer creates a new lexer for the given source.
func NewLexer(source string) *Lexer {
	// TGSI text is dense; roughly one token per 4 characters.
	estTokens := len(source) / 4
	if estTokens < 16 {
		estTokens = 16
	}
	return &Lexer{
		source: source,
		line:   1,
		column: 1,
		tokens: make([]Lexeme, 0, estTokens),
	}
}

// Tokenize returns all tokens from the source.
func (l *Lexer) Tokenize() ([]Lexeme, error) {
	for !l.isAtEnd() {
		l.start = l.pos
		if err := l.scanToken(); err != nil {
			return nil, err
		}
	}

	l.tokens = append(l.tokens, Lexeme{
		Kind:   TokenEOF,
		Line:   l.line,
		Column: l.column,
	})

	return l.tokens, nil
}

func (l *Lexer) scanToken() error {
	startColumn := l.column
	r := l.advance()

	switch r {
	case '[':
		l.addToken(TokenLeftBracket)
	case ']':
		l.addToken(TokenRightBracket)
	case '{':
		l.addToken(TokenLeftBrace)
	case '}':
		l.addToken(TokenRightBrace)
	case ',':
		l.addToken(TokenComma)
	case ':':
		l.addToken(TokenColon)
	case '+':
		l.addToken(TokenPlus)
	case '-':
		l.addToken(TokenMinus)
	case '|':
		l.addToken(TokenPipe)
	case '.':
		if l.match('.') {
			l.addToken(TokenDotDot)
		} else {
			l.addToken(TokenDot)
		}
	case '#', ';':
		// Line comment
		for l.peek() != '\n' && !l.isAtEnd() {
			l.advance()
		}

	// Whitespace
	case ' ', '\r', '\t':
	case '\n':
		l.line++
		l.column = 1

	default:
		switch {
		case isDigit(r):
			l.number()
		case isAlpha(r) || r == '_':
			l.identifier()
		default:
			return fmt.Errorf("%d:%d: unexpected character %q", l.line, startColumn, r)
		}
	}

	return nil
}

func (l *Lexer) number() {
	if l.source[l.start] == '0' && (l.peek() == 'x' || l.peek() == 'X') {
		l.advance()
		for isHexDigit(l.peek()) {
			l.advance()
		}
		l.addToken(TokenIntLiteral)
		return
	}

	for isDigit(l.peek()) {
		l.advance()
	}

	// Texture targets such as 2D and 3D lex as identifiers.
	if isAlpha(l.peek()) && !l.atExponent() {
		l.identifier()
		return
	}

	kind := TokenIntLiteral
	if l.peek() == '.' && isDigit(l.peekNext()) {
		kind = TokenFloatLiteral
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	if l.atExponent() {
		kind = TokenFloatLiteral
		l.advance()
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		for isDigit(l.peek()) {
			l.advance()
		}
	}

	l.addToken(kind)
}

func (l *Lexer) atExponent() bool {
	if l.peek() != 'e' && l.peek() != 'E' {
		return false
	}
	next := l.peekNext()
	return isDigit(next) || next == '+' || next == '-'
}

func (l *Lexer) identifier() {
	for isAlphaNumeric(l.peek()) || l.peek() == '_' {
		l.advance()
	}
	l.addToken(TokenIdent)
}

func (l *Lexer) addToken(kind TokenKind) {
	l.tokens = append(l.tokens, Lexeme{
		Kind:   kind,
		Text:   l.source[l.start:l.pos],
		Line:   l.line,
		Column: l.column - (l.pos - l.start),
	})
}

func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.source[l.pos:])
	l.pos += size
	l.column++
	return r
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.source[l.pos:])
	return r
}

func (l *Lexer) peekNext() rune {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	_, size := utf8.DecodeRuneInString(l.source[l.pos:])
	r, _ := utf8.DecodeRuneInString(l.source[l.pos+size:])
	return r
}

func (l *Lexer) match(expected rune) bool {
	if l.isAtEnd() {
		return false
	}
	r, size := utf8.DecodeRuneInString(l.source[l.pos:])
	if r != expected {
		return false
	}
	l.pos += size
	l.column++
	return true
}

func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isAlpha(r rune) bool {
	return unicode.IsLetter(r)
}

func isAlphaNumeric(r rune) bool {
	return isAlpha(r) || isDigit(r)
}
