package tgsi

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parser parses TGSI text tokens into a Program.
type Parser struct {
	tokens  []Lexeme
	current int
	errors  []ParseError
}

// NewParser creates a new parser for the given tokens.
func NewParser(tokens []Lexeme) *Parser {
	return &Parser{
		tokens:  tokens,
		current: 0,
	}
}

// Parse lexes and parses TGSI text. Syntax errors are returned as SourceErrors
// so callers can print them with source context.
func Parse(source string) (*Program, error) {
	tokens, err := NewLexer(source).Tokenize()
	if err != nil {
		return nil, fmt.Errorf("tokenization error: %w", err)
	}

	p := NewParser(tokens)
	prog, err := p.Parse()
	if err != nil {
		errs := make(SourceErrors, 0, len(p.errors))
		for _, pe := range p.errors {
			errs = append(errs, &SourceError{ParseError: pe, Source: source})
		}
		return nil, errs
	}
	return prog, nil
}

// Parse parses the tokens and returns a Program.
func (p *Parser) Parse() (*Program, error) {
	prog := &Program{}

	if err := p.header(prog); err != nil {
		p.errors = append(p.errors, *err)
		return prog, fmt.Errorf("parsing failed: %w", p.errors[0])
	}

	for !p.isAtEnd() {
		tok, err := p.statement()
		if err != nil {
			p.errors = append(p.errors, *err)
			p.synchronize()
			continue
		}
		if tok != nil {
			prog.Tokens = append(prog.Tokens, tok)
		}
	}

	if len(p.errors) > 0 {
		return prog, fmt.Errorf("parsing failed with %d error(s): %w", len(p.errors), p.errors[0])
	}
	return prog, nil
}

func (p *Parser) header(prog *Program) *ParseError {
	tok := p.peek()
	switch {
	case p.matchIdent("FRAG"):
		prog.Processor = ProcessorFragment
	case p.matchIdent("VERT"):
		prog.Processor = ProcessorVertex
	default:
		return p.errorf(tok, "expected FRAG or VERT header, got %q", tok.Text)
	}
	return nil
}

func (p *Parser) statement() (Token, *ParseError) {
	line := p.peek().Line

	// Optional "N:" instruction label.
	if p.check(TokenIntLiteral) && p.checkNext(TokenColon) {
		p.advance()
		p.advance()
	}

	tok := p.peek()
	if tok.Kind != TokenIdent {
		return nil, p.errorf(tok, "expected declaration or instruction, got %s", tok.Kind)
	}

	switch tok.Text {
	case "PROPERTY":
		p.advance()
		// Properties do not affect translation; skip name and value.
		for !p.isAtEnd() && p.peek().Line == line {
			p.advance()
		}
		return nil, nil
	case "DCL":
		p.advance()
		return p.declaration()
	case "IMM":
		p.advance()
		return p.immediate()
	}
	return p.instruction(line)
}

func (p *Parser) declaration() (Token, *ParseError) {
	decl := &Declaration{Interpolate: InterpolatePerspective}

	file, err := p.file()
	if err != nil {
		return nil, err
	}
	decl.File = file

	if err := p.expectErr(TokenLeftBracket); err != nil {
		return nil, err
	}
	first, err := p.uint()
	if err != nil {
		return nil, err
	}
	decl.First, decl.Last = first, first
	if p.match(TokenDotDot) {
		if decl.Last, err = p.uint(); err != nil {
			return nil, err
		}
	}
	if err := p.expectErr(TokenRightBracket); err != nil {
		return nil, err
	}
	if decl.Last < decl.First {
		return nil, p.errorf(p.previous(), "invalid register range %d..%d", decl.First, decl.Last)
	}

	// Declared usage masks are informational.
	if p.match(TokenDot) {
		p.advance()
	}

	for p.match(TokenComma) {
		tok := p.peek()
		if tok.Kind != TokenIdent {
			return nil, p.errorf(tok, "expected semantic or interpolation, got %s", tok.Kind)
		}
		p.advance()
		switch tok.Text {
		case "CONSTANT":
			decl.Interpolate = InterpolateConstant
			continue
		case "LINEAR":
			decl.Interpolate = InterpolateLinear
			continue
		case "PERSPECTIVE":
			decl.Interpolate = InterpolatePerspective
			continue
		}
		name, ok := lookupSemantic(tok.Text)
		if !ok {
			return nil, p.errorf(tok, "unknown semantic %q", tok.Text)
		}
		sem := &Semantic{Name: name}
		if p.match(TokenLeftBracket) {
			if sem.Index, err = p.uint(); err != nil {
				return nil, err
			}
			if err := p.expectErr(TokenRightBracket); err != nil {
				return nil, err
			}
		}
		decl.Semantic = sem
	}

	return decl, nil
}

func (p *Parser) immediate() (Token, *ParseError) {
	imm := &Immediate{}

	if p.match(TokenLeftBracket) {
		if _, err := p.uint(); err != nil {
			return nil, err
		}
		if err := p.expectErr(TokenRightBracket); err != nil {
			return nil, err
		}
	}

	tok := p.advance()
	switch tok.Text {
	case "FLT32":
		imm.Type = ImmFloat32
	case "UINT32":
		imm.Type = ImmUint32
	case "INT32":
		imm.Type = ImmInt32
	default:
		return nil, p.errorf(tok, "unknown immediate type %q", tok.Text)
	}

	if err := p.expectErr(TokenLeftBrace); err != nil {
		return nil, err
	}
	for i := 0; i < 4; i++ {
		if i > 0 && !p.match(TokenComma) {
			break
		}
		bits, err := p.immediateValue(imm.Type)
		if err != nil {
			return nil, err
		}
		imm.Values[i] = bits
	}
	if err := p.expectErr(TokenRightBrace); err != nil {
		return nil, err
	}
	return imm, nil
}

func (p *Parser) immediateValue(typ ImmediateType) (uint32, *ParseError) {
	neg := p.match(TokenMinus)
	tok := p.advance()
	if tok.Kind != TokenIntLiteral && tok.Kind != TokenFloatLiteral {
		return 0, p.errorf(tok, "expected number, got %s", tok.Kind)
	}

	// Hex values are raw bit patterns regardless of type.
	if strings.HasPrefix(tok.Text, "0x") || strings.HasPrefix(tok.Text, "0X") {
		v, err := strconv.ParseUint(tok.Text[2:], 16, 32)
		if err != nil {
			return 0, p.errorf(tok, "invalid hex immediate %q", tok.Text)
		}
		return uint32(v), nil
	}

	switch typ {
	case ImmFloat32:
		f, err := strconv.ParseFloat(tok.Text, 32)
		if err != nil {
			return 0, p.errorf(tok, "invalid float immediate %q", tok.Text)
		}
		if neg {
			f = -f
		}
		return math.Float32bits(float32(f)), nil
	default:
		v, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil || tok.Kind != TokenIntLiteral {
			return 0, p.errorf(tok, "invalid integer immediate %q", tok.Text)
		}
		if neg {
			v = -v
		}
		return uint32(int32(v)), nil
	}
}

func (p *Parser) instruction(line int) (Token, *ParseError) {
	tok := p.advance()
	name := tok.Text
	inst := &Instruction{Line: line}

	switch {
	case strings.HasSuffix(name, "_SSAT"):
		inst.Saturate = SatMinusPlusOne
		name = strings.TrimSuffix(name, "_SSAT")
	case strings.HasSuffix(name, "_SAT"):
		inst.Saturate = SatZeroOne
		name = strings.TrimSuffix(name, "_SAT")
	}

	op, ok := LookupOpcode(name)
	if !ok {
		return nil, p.errorf(tok, "unknown opcode %q", tok.Text)
	}
	inst.Opcode = op
	info := op.Info()

	for i := 0; i < info.NumDst+info.NumSrc; i++ {
		if i > 0 {
			if err := p.expectErr(TokenComma); err != nil {
				return nil, err
			}
		}
		if i < info.NumDst {
			dst, err := p.dstRegister()
			if err != nil {
				return nil, err
			}
			inst.Dst = append(inst.Dst, dst)
		} else {
			src, err := p.srcRegister()
			if err != nil {
				return nil, err
			}
			inst.Src = append(inst.Src, src)
		}
	}

	if info.Texture {
		if err := p.expectErr(TokenComma); err != nil {
			return nil, err
		}
		tt := p.advance()
		target, ok := textureNames[tt.Text]
		if !ok {
			return nil, p.errorf(tt, "unknown texture target %q", tt.Text)
		}
		inst.Texture = target
	}

	if info.Label && p.match(TokenColon) {
		label, err := p.uint()
		if err != nil {
			return nil, err
		}
		inst.Label = label
	}

	return inst, nil
}

func (p *Parser) dstRegister() (DstRegister, *ParseError) {
	dst := DstRegister{WriteMask: WriteMaskXYZW}

	file, err := p.file()
	if err != nil {
		return dst, err
	}
	dst.File = file

	ref, err := p.index()
	if err != nil {
		return dst, err
	}
	dst.Index = ref.index
	dst.Indirect = ref.indirect
	dst.IndirectIndex = ref.addrIndex
	dst.IndirectSwizzle = ref.addrSwizzle

	if p.match(TokenDot) {
		tok := p.advance()
		mask, ok := parseWriteMask(tok.Text)
		if !ok {
			return dst, p.errorf(tok, "invalid write mask %q", tok.Text)
		}
		dst.WriteMask = mask
	}
	return dst, nil
}

func (p *Parser) srcRegister() (SrcRegister, *ParseError) {
	src := SrcRegister{Swizzle: IdentitySwizzle}

	src.Negate = p.match(TokenMinus)
	src.Absolute = p.match(TokenPipe)

	file, err := p.file()
	if err != nil {
		return src, err
	}
	src.File = file

	ref, err := p.index()
	if err != nil {
		return src, err
	}
	src.Index = ref.index
	src.Indirect = ref.indirect
	src.IndirectIndex = ref.addrIndex
	src.IndirectSwizzle = ref.addrSwizzle

	if p.match(TokenDot) {
		tok := p.advance()
		swz, ok := parseSwizzle(tok.Text)
		if !ok {
			return src, p.errorf(tok, "invalid swizzle %q", tok.Text)
		}
		src.Swizzle = swz
	}

	if src.Absolute {
		if err := p.expectErr(TokenPipe); err != nil {
			return src, err
		}
	}
	return src, nil
}

type indexRef struct {
	index       int32
	indirect    bool
	addrIndex   uint32
	addrSwizzle Swizzle
}

// index parses "[n]" or the relative form "[ADDR[a].c+n]".
func (p *Parser) index() (indexRef, *ParseError) {
	var ref indexRef

	if err := p.expectErr(TokenLeftBracket); err != nil {
		return ref, err
	}

	if p.check(TokenIdent) {
		file, err := p.file()
		if err != nil {
			return ref, err
		}
		if file != FileAddress {
			return ref, p.errorf(p.previous(), "relative addressing must use ADDR, got %s", file)
		}
		if err := p.expectErr(TokenLeftBracket); err != nil {
			return ref, err
		}
		if ref.addrIndex, err = p.uint(); err != nil {
			return ref, err
		}
		if err := p.expectErr(TokenRightBracket); err != nil {
			return ref, err
		}
		if err := p.expectErr(TokenDot); err != nil {
			return ref, err
		}
		tok := p.advance()
		swz, ok := parseSwizzle(tok.Text)
		if !ok || len(tok.Text) != 1 {
			return ref, p.errorf(tok, "invalid address component %q", tok.Text)
		}
		ref.addrSwizzle = swz[0]
		ref.indirect = true

		switch {
		case p.match(TokenPlus):
			off, err := p.uint()
			if err != nil {
				return ref, err
			}
			ref.index = int32(off)
		case p.match(TokenMinus):
			off, err := p.uint()
			if err != nil {
				return ref, err
			}
			ref.index = -int32(off)
		}
	} else {
		n, err := p.uint()
		if err != nil {
			return ref, err
		}
		ref.index = int32(n)
	}

	if err := p.expectErr(TokenRightBracket); err != nil {
		return ref, err
	}
	return ref, nil
}

func (p *Parser) file() (File, *ParseError) {
	tok := p.advance()
	if tok.Kind == TokenIdent {
		for f := File(0); f < FileCount; f++ {
			if fileNames[f] == tok.Text {
				return f, nil
			}
		}
	}
	return FileNull, p.errorf(tok, "expected register file, got %q", tok.Text)
}

func (p *Parser) uint() (uint32, *ParseError) {
	tok := p.advance()
	if tok.Kind != TokenIntLiteral {
		return 0, p.errorf(tok, "expected integer, got %s", tok.Kind)
	}
	v, err := strconv.ParseUint(tok.Text, 0, 32)
	if err != nil {
		return 0, p.errorf(tok, "invalid integer %q", tok.Text)
	}
	return uint32(v), nil
}

func parseWriteMask(s string) (WriteMask, bool) {
	var mask WriteMask
	last := -1
	for _, r := range s {
		i := strings.IndexRune("xyzw", r)
		if i <= last {
			return 0, false
		}
		mask |= 1 << i
		last = i
	}
	return mask, mask != 0
}

// parseSwizzle accepts one to four components; missing trailing components
// repeat the last one given.
func parseSwizzle(s string) ([4]Swizzle, bool) {
	var swz [4]Swizzle
	if len(s) == 0 || len(s) > 4 {
		return swz, false
	}
	for i := 0; i < 4; i++ {
		c := s[len(s)-1]
		if i < len(s) {
			c = s[i]
		}
		j := strings.IndexByte("xyzw", c)
		if j < 0 {
			return swz, false
		}
		swz[i] = Swizzle(j)
	}
	return swz, true
}

func lookupSemantic(name string) (SemanticName, bool) {
	for i, n := range semanticNames {
		if n == name {
			return SemanticName(i), true
		}
	}
	return 0, false
}

// Helper methods

func (p *Parser) errorf(tok Lexeme, format string, args ...interface{}) *ParseError {
	return &ParseError{
		Message: fmt.Sprintf(format, args...),
		Token:   tok,
	}
}

func (p *Parser) advance() Lexeme {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) peek() Lexeme {
	return p.tokens[p.current]
}

func (p *Parser) previous() Lexeme {
	if p.current == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.current-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Kind == TokenEOF
}

func (p *Parser) check(kind TokenKind) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Kind == kind
}

func (p *Parser) checkNext(kind TokenKind) bool {
	if p.current+1 >= len(p.tokens) {
		return false
	}
	return p.tokens[p.current+1].Kind == kind
}

func (p *Parser) match(kind TokenKind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) matchIdent(text string) bool {
	if p.check(TokenIdent) && p.peek().Text == text {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expectErr(kind TokenKind) *ParseError {
	if p.check(kind) {
		p.advance()
		return nil
	}
	return &ParseError{
		Message: fmt.Sprintf("expected %s, got %s", kind, p.peek().Kind),
		Token:   p.peek(),
	}
}

// synchronize skips to the start of the next statement after an error.
func (p *Parser) synchronize() {
	line := p.peek().Line
	p.advance()
	for !p.isAtEnd() {
		if p.peek().Line != line {
			return
		}
		p.advance()
	}
}
