package ir3

// Category is the native instruction category. It decides the encoding
// family and which category-specific fields of an Instruction are meaningful.
type Category int8

const (
	// CatMeta instructions carry SSA bookkeeping and are never encoded.
	CatMeta Category = -1
	Cat0    Category = 0 // flow control
	Cat1    Category = 1 // move / convert
	Cat2    Category = 2 // two-source ALU
	Cat3    Category = 3 // three-source ALU
	Cat4    Category = 4 // transcendental
	Cat5    Category = 5 // texture sample
)

// Opc is a native opcode.
type Opc uint16

const (
	// cat0
	OpcNop Opc = iota
	OpcBr
	OpcJump
	OpcCall
	OpcRet
	OpcKill
	OpcEnd

	// cat1
	OpcMov

	// cat2
	OpcAddF
	OpcMinF
	OpcMaxF
	OpcMulF
	OpcSignF
	OpcCmpsF
	OpcAbsnegF
	OpcCmpvF
	OpcFloorF
	OpcCeilF
	OpcRndneF
	OpcRndazF
	OpcTruncF
	OpcAddU
	OpcAddS
	OpcSubU
	OpcSubS
	OpcCmpsU
	OpcCmpsS
	OpcMinU
	OpcMinS
	OpcMaxU
	OpcMaxS
	OpcAbsnegS
	OpcAndB
	OpcOrB
	OpcNotB
	OpcXorB
	OpcMulU
	OpcMulS
	OpcBfrevB
	OpcClzS
	OpcClzB
	OpcShlB
	OpcShrB
	OpcAsharB
	OpcBaryF
	OpcSetrm
	OpcCbitsB

	// cat3
	OpcMadU16
	OpcMadS16
	OpcMadF16
	OpcMadF32
	OpcSelB16
	OpcSelB32
	OpcSelS16
	OpcSelS32
	OpcSelF16
	OpcSelF32

	// cat4
	OpcRcp
	OpcRsq
	OpcLog2
	OpcExp2
	OpcSin
	OpcCos
	OpcSqrt

	// cat5
	OpcIsam
	OpcSam
	OpcSamb
	OpcSaml
	OpcGetlod

	// meta
	OpcMetaInput
	OpcMetaOutput
	OpcMetaPhi
	OpcMetaFO
	OpcMetaFI
	OpcMetaFlow

	opcCount
)

type opcInfo struct {
	name string
	cat  Category
}

var opcTable = [opcCount]opcInfo{
	OpcNop:  {"nop", Cat0},
	OpcBr:   {"br", Cat0},
	OpcJump: {"jump", Cat0},
	OpcCall: {"call", Cat0},
	OpcRet:  {"ret", Cat0},
	OpcKill: {"kill", Cat0},
	OpcEnd:  {"end", Cat0},

	OpcMov: {"mov", Cat1},

	OpcAddF:    {"add.f", Cat2},
	OpcMinF:    {"min.f", Cat2},
	OpcMaxF:    {"max.f", Cat2},
	OpcMulF:    {"mul.f", Cat2},
	OpcSignF:   {"sign.f", Cat2},
	OpcCmpsF:   {"cmps.f", Cat2},
	OpcAbsnegF: {"absneg.f", Cat2},
	OpcCmpvF:   {"cmpv.f", Cat2},
	OpcFloorF:  {"floor.f", Cat2},
	OpcCeilF:   {"ceil.f", Cat2},
	OpcRndneF:  {"rndne.f", Cat2},
	OpcRndazF:  {"rndaz.f", Cat2},
	OpcTruncF:  {"trunc.f", Cat2},
	OpcAddU:    {"add.u", Cat2},
	OpcAddS:    {"add.s", Cat2},
	OpcSubU:    {"sub.u", Cat2},
	OpcSubS:    {"sub.s", Cat2},
	OpcCmpsU:   {"cmps.u", Cat2},
	OpcCmpsS:   {"cmps.s", Cat2},
	OpcMinU:    {"min.u", Cat2},
	OpcMinS:    {"min.s", Cat2},
	OpcMaxU:    {"max.u", Cat2},
	OpcMaxS:    {"max.s", Cat2},
	OpcAbsnegS: {"absneg.s", Cat2},
	OpcAndB:    {"and.b", Cat2},
	OpcOrB:     {"or.b", Cat2},
	OpcNotB:    {"not.b", Cat2},
	OpcXorB:    {"xor.b", Cat2},
	OpcMulU:    {"mul.u", Cat2},
	OpcMulS:    {"mul.s", Cat2},
	OpcBfrevB:  {"bfrev.b", Cat2},
	OpcClzS:    {"clz.s", Cat2},
	OpcClzB:    {"clz.b", Cat2},
	OpcShlB:    {"shl.b", Cat2},
	OpcShrB:    {"shr.b", Cat2},
	OpcAsharB:  {"ashr.b", Cat2},
	OpcBaryF:   {"bary.f", Cat2},
	OpcSetrm:   {"setrm", Cat2},
	OpcCbitsB:  {"cbits.b", Cat2},

	OpcMadU16: {"mad.u16", Cat3},
	OpcMadS16: {"mad.s16", Cat3},
	OpcMadF16: {"mad.f16", Cat3},
	OpcMadF32: {"mad.f32", Cat3},
	OpcSelB16: {"sel.b16", Cat3},
	OpcSelB32: {"sel.b32", Cat3},
	OpcSelS16: {"sel.s16", Cat3},
	OpcSelS32: {"sel.s32", Cat3},
	OpcSelF16: {"sel.f16", Cat3},
	OpcSelF32: {"sel.f32", Cat3},

	OpcRcp:  {"rcp", Cat4},
	OpcRsq:  {"rsq", Cat4},
	OpcLog2: {"log2", Cat4},
	OpcExp2: {"exp2", Cat4},
	OpcSin:  {"sin", Cat4},
	OpcCos:  {"cos", Cat4},
	OpcSqrt: {"sqrt", Cat4},

	OpcIsam:   {"isam", Cat5},
	OpcSam:    {"sam", Cat5},
	OpcSamb:   {"samb", Cat5},
	OpcSaml:   {"saml", Cat5},
	OpcGetlod: {"getlod", Cat5},

	OpcMetaInput:  {"meta:in", CatMeta},
	OpcMetaOutput: {"meta:out", CatMeta},
	OpcMetaPhi:    {"meta:phi", CatMeta},
	OpcMetaFO:     {"meta:fo", CatMeta},
	OpcMetaFI:     {"meta:fi", CatMeta},
	OpcMetaFlow:   {"meta:flow", CatMeta},
}

func (o Opc) String() string {
	if o < opcCount {
		return opcTable[o].name
	}
	return "???"
}

// Category returns the category o belongs to.
func (o Opc) Category() Category {
	if o < opcCount {
		return opcTable[o].cat
	}
	return CatMeta
}

// IsMeta reports whether o is a meta opcode.
func (o Opc) IsMeta() bool {
	return o.Category() == CatMeta
}

// IsMad reports whether o is a multiply-add, whose first two sources commute.
func (o Opc) IsMad() bool {
	switch o {
	case OpcMadU16, OpcMadS16, OpcMadF16, OpcMadF32:
		return true
	}
	return false
}

// Type is an operand data type for conversions and samples.
type Type uint8

const (
	TypeF16 Type = iota
	TypeF32
	TypeU16
	TypeU32
	TypeS16
	TypeS32
	TypeU8
	TypeS8
)

var typeNames = [...]string{"f16", "f32", "u16", "u32", "s16", "s32", "u8", "s8"}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "?"
}

// Cond is a comparison condition for cmps/cmpv.
type Cond uint8

const (
	CondLT Cond = iota
	CondLE
	CondGT
	CondGE
	CondEQ
	CondNE
)

var condNames = [...]string{"lt", "le", "gt", "ge", "eq", "ne"}

func (c Cond) String() string {
	if int(c) < len(condNames) {
		return condNames[c]
	}
	return "?"
}
