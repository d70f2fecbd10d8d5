package tgsi

// Opcode is a source instruction opcode.
type Opcode uint8

const (
	OpArl Opcode = iota
	OpMov
	OpLit
	OpRcp
	OpRsq
	OpExp
	OpLog
	OpMul
	OpAdd
	OpDp3
	OpDp4
	OpDst
	OpMin
	OpMax
	OpSlt
	OpSge
	OpMad
	OpSub
	OpLrp
	OpSqrt
	OpFrc
	OpFlr
	OpRound
	OpEx2
	OpLg2
	OpPow
	OpXpd
	OpAbs
	OpCos
	OpDdx
	OpDdy
	OpKill
	OpSeq
	OpSgt
	OpSin
	OpSle
	OpSne
	OpTex
	OpTxp
	OpTrunc
	OpClamp
	OpCmp
	OpIf
	OpElse
	OpEndif
	OpBgnLoop
	OpEndLoop
	OpBrk
	OpEnd

	OpCount
)

// OpcodeInfo describes the operand shape of an opcode.
type OpcodeInfo struct {
	Name   string
	NumDst int
	NumSrc int
	// Texture opcodes carry a target after their sources.
	Texture bool
	// Label opcodes carry a ":N" branch label.
	Label bool
}

var opcodeInfo = [OpCount]OpcodeInfo{
	OpArl:     {Name: "ARL", NumDst: 1, NumSrc: 1},
	OpMov:     {Name: "MOV", NumDst: 1, NumSrc: 1},
	OpLit:     {Name: "LIT", NumDst: 1, NumSrc: 1},
	OpRcp:     {Name: "RCP", NumDst: 1, NumSrc: 1},
	OpRsq:     {Name: "RSQ", NumDst: 1, NumSrc: 1},
	OpExp:     {Name: "EXP", NumDst: 1, NumSrc: 1},
	OpLog:     {Name: "LOG", NumDst: 1, NumSrc: 1},
	OpMul:     {Name: "MUL", NumDst: 1, NumSrc: 2},
	OpAdd:     {Name: "ADD", NumDst: 1, NumSrc: 2},
	OpDp3:     {Name: "DP3", NumDst: 1, NumSrc: 2},
	OpDp4:     {Name: "DP4", NumDst: 1, NumSrc: 2},
	OpDst:     {Name: "DST", NumDst: 1, NumSrc: 2},
	OpMin:     {Name: "MIN", NumDst: 1, NumSrc: 2},
	OpMax:     {Name: "MAX", NumDst: 1, NumSrc: 2},
	OpSlt:     {Name: "SLT", NumDst: 1, NumSrc: 2},
	OpSge:     {Name: "SGE", NumDst: 1, NumSrc: 2},
	OpMad:     {Name: "MAD", NumDst: 1, NumSrc: 3},
	OpSub:     {Name: "SUB", NumDst: 1, NumSrc: 2},
	OpLrp:     {Name: "LRP", NumDst: 1, NumSrc: 3},
	OpSqrt:    {Name: "SQRT", NumDst: 1, NumSrc: 1},
	OpFrc:     {Name: "FRC", NumDst: 1, NumSrc: 1},
	OpFlr:     {Name: "FLR", NumDst: 1, NumSrc: 1},
	OpRound:   {Name: "ROUND", NumDst: 1, NumSrc: 1},
	OpEx2:     {Name: "EX2", NumDst: 1, NumSrc: 1},
	OpLg2:     {Name: "LG2", NumDst: 1, NumSrc: 1},
	OpPow:     {Name: "POW", NumDst: 1, NumSrc: 2},
	OpXpd:     {Name: "XPD", NumDst: 1, NumSrc: 2},
	OpAbs:     {Name: "ABS", NumDst: 1, NumSrc: 1},
	OpCos:     {Name: "COS", NumDst: 1, NumSrc: 1},
	OpDdx:     {Name: "DDX", NumDst: 1, NumSrc: 1},
	OpDdy:     {Name: "DDY", NumDst: 1, NumSrc: 1},
	OpKill:    {Name: "KILL"},
	OpSeq:     {Name: "SEQ", NumDst: 1, NumSrc: 2},
	OpSgt:     {Name: "SGT", NumDst: 1, NumSrc: 2},
	OpSin:     {Name: "SIN", NumDst: 1, NumSrc: 1},
	OpSle:     {Name: "SLE", NumDst: 1, NumSrc: 2},
	OpSne:     {Name: "SNE", NumDst: 1, NumSrc: 2},
	OpTex:     {Name: "TEX", NumDst: 1, NumSrc: 2, Texture: true},
	OpTxp:     {Name: "TXP", NumDst: 1, NumSrc: 2, Texture: true},
	OpTrunc:   {Name: "TRUNC", NumDst: 1, NumSrc: 1},
	OpClamp:   {Name: "CLAMP", NumDst: 1, NumSrc: 3},
	OpCmp:     {Name: "CMP", NumDst: 1, NumSrc: 3},
	OpIf:      {Name: "IF", NumSrc: 1, Label: true},
	OpElse:    {Name: "ELSE", Label: true},
	OpEndif:   {Name: "ENDIF"},
	OpBgnLoop: {Name: "BGNLOOP", Label: true},
	OpEndLoop: {Name: "ENDLOOP", Label: true},
	OpBrk:     {Name: "BRK"},
	OpEnd:     {Name: "END"},
}

var opcodeByName = func() map[string]Opcode {
	m := make(map[string]Opcode, OpCount)
	for op := Opcode(0); op < OpCount; op++ {
		m[opcodeInfo[op].Name] = op
	}
	return m
}()

// Info returns the operand shape of op.
func (op Opcode) Info() OpcodeInfo {
	if op < OpCount {
		return opcodeInfo[op]
	}
	return OpcodeInfo{Name: "UNKNOWN"}
}

func (op Opcode) String() string {
	return op.Info().Name
}

// LookupOpcode finds an opcode by its TGSI text name.
func LookupOpcode(name string) (Opcode, bool) {
	op, ok := opcodeByName[name]
	return op, ok
}
