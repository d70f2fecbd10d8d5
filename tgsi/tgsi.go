package tgsi

// Processor identifies the shader stage a program was written for.
type Processor uint8

const (
	ProcessorFragment Processor = iota
	ProcessorVertex
)

// String returns the header keyword used in TGSI text.
func (p Processor) String() string {
	switch p {
	case ProcessorFragment:
		return "FRAG"
	case ProcessorVertex:
		return "VERT"
	default:
		return "UNKNOWN"
	}
}

// File identifies a register file.
type File uint8

const (
	FileNull File = iota
	FileConstant
	FileInput
	FileOutput
	FileTemporary
	FileSampler
	FileAddress
	FileImmediate
	FilePredicate
	FileSystemValue

	FileCount
)

var fileNames = [FileCount]string{
	FileNull:        "NULL",
	FileConstant:    "CONST",
	FileInput:       "IN",
	FileOutput:      "OUT",
	FileTemporary:   "TEMP",
	FileSampler:     "SAMP",
	FileAddress:     "ADDR",
	FileImmediate:   "IMM",
	FilePredicate:   "PRED",
	FileSystemValue: "SV",
}

// String returns the register file name as it appears in TGSI text.
func (f File) String() string {
	if f < FileCount {
		return fileNames[f]
	}
	return "UNKNOWN"
}

// Mask returns the bit for f in a file bitmask such as Info.IndirectFiles.
func (f File) Mask() uint32 {
	return 1 << f
}

// Swizzle selects one component of a four-component register.
type Swizzle uint8

const (
	SwizzleX Swizzle = iota
	SwizzleY
	SwizzleZ
	SwizzleW
)

// IdentitySwizzle reads every component from its own lane.
var IdentitySwizzle = [4]Swizzle{SwizzleX, SwizzleY, SwizzleZ, SwizzleW}

func (s Swizzle) String() string {
	return string("xyzw"[s&3])
}

// WriteMask selects the destination components an instruction writes.
type WriteMask uint8

const (
	WriteMaskX    WriteMask = 0x1
	WriteMaskY    WriteMask = 0x2
	WriteMaskZ    WriteMask = 0x4
	WriteMaskW    WriteMask = 0x8
	WriteMaskXY   WriteMask = WriteMaskX | WriteMaskY
	WriteMaskXYZ  WriteMask = WriteMaskXY | WriteMaskZ
	WriteMaskXYZW WriteMask = WriteMaskXYZ | WriteMaskW
)

// Has reports whether component comp is written.
func (m WriteMask) Has(comp int) bool {
	return m&(1<<comp) != 0
}

func (m WriteMask) String() string {
	if m == WriteMaskXYZW {
		return ""
	}
	b := []byte{'.'}
	for i := 0; i < 4; i++ {
		if m.Has(i) {
			b = append(b, "xyzw"[i])
		}
	}
	return string(b)
}

// Saturate is the result clamping requested by an instruction.
type Saturate uint8

const (
	SatNone Saturate = iota
	SatZeroOne
	SatMinusPlusOne
)

// TextureTarget is the texture shape addressed by a sample instruction.
type TextureTarget uint8

const (
	TextureUnknown TextureTarget = iota
	Texture1D
	Texture2D
	Texture3D
	TextureCube
	TextureRect
	TextureShadow1D
	TextureShadow2D
	TextureShadowRect
)

var textureNames = map[string]TextureTarget{
	"1D":         Texture1D,
	"2D":         Texture2D,
	"3D":         Texture3D,
	"CUBE":       TextureCube,
	"RECT":       TextureRect,
	"SHADOW1D":   TextureShadow1D,
	"SHADOW2D":   TextureShadow2D,
	"SHADOWRECT": TextureShadowRect,
}

func (t TextureTarget) String() string {
	for name, tt := range textureNames {
		if tt == t {
			return name
		}
	}
	return "UNKNOWN"
}

// SemanticName tags a declared input or output with its meaning.
type SemanticName uint8

const (
	SemanticPosition SemanticName = iota
	SemanticColor
	SemanticBColor
	SemanticFog
	SemanticPSize
	SemanticGeneric
	SemanticNormal
	SemanticFace
	SemanticEdgeFlag
	SemanticPrimID
	SemanticInstanceID
	SemanticVertexID
	SemanticTexCoord
	SemanticPCoord
)

var semanticNames = []string{
	SemanticPosition:   "POSITION",
	SemanticColor:      "COLOR",
	SemanticBColor:     "BCOLOR",
	SemanticFog:        "FOG",
	SemanticPSize:      "PSIZE",
	SemanticGeneric:    "GENERIC",
	SemanticNormal:     "NORMAL",
	SemanticFace:       "FACE",
	SemanticEdgeFlag:   "EDGEFLAG",
	SemanticPrimID:     "PRIM_ID",
	SemanticInstanceID: "INSTANCEID",
	SemanticVertexID:   "VERTEXID",
	SemanticTexCoord:   "TEXCOORD",
	SemanticPCoord:     "PCOORD",
}

func (s SemanticName) String() string {
	if int(s) < len(semanticNames) {
		return semanticNames[s]
	}
	return "UNKNOWN"
}

// Semantic is a semantic name plus its index, e.g. GENERIC[3].
type Semantic struct {
	Name  SemanticName
	Index uint32
}

// Interpolation is the varying interpolation mode of a fragment input.
type Interpolation uint8

const (
	InterpolateConstant Interpolation = iota
	InterpolateLinear
	InterpolatePerspective
)

// Token is one element of a program: a declaration, an immediate or an instruction.
type Token interface {
	token()
}

// Declaration declares a range of registers in one file.
type Declaration struct {
	File        File
	First, Last uint32
	// Semantic is nil when the declaration carries no semantic.
	Semantic    *Semantic
	Interpolate Interpolation
}

func (*Declaration) token() {}

// ImmediateType is the element type of an immediate block.
type ImmediateType uint8

const (
	ImmFloat32 ImmediateType = iota
	ImmUint32
	ImmInt32
)

// Immediate is one vec4 immediate block. Values hold raw bits.
type Immediate struct {
	Type   ImmediateType
	Values [4]uint32
}

func (*Immediate) token() {}

// SrcRegister is a source operand.
type SrcRegister struct {
	File  File
	Index int32
	// Indirect means the effective index is Index plus the address register
	// selected by IndirectIndex and IndirectSwizzle.
	Indirect        bool
	IndirectIndex   uint32
	IndirectSwizzle Swizzle
	Swizzle         [4]Swizzle
	Negate          bool
	Absolute        bool
}

// Swz returns the component read for lane comp.
func (s *SrcRegister) Swz(comp int) Swizzle {
	return s.Swizzle[comp&3]
}

// IsConst reports whether s reads the constant or immediate file.
func (s *SrcRegister) IsConst() bool {
	return s.File == FileConstant || s.File == FileImmediate
}

// IsRelOrConst reports whether s is relative-addressed or a constant read.
func (s *SrcRegister) IsRelOrConst() bool {
	return s.Indirect || s.IsConst()
}

// DstRegister is a destination operand.
type DstRegister struct {
	File            File
	Index           int32
	Indirect        bool
	IndirectIndex   uint32
	IndirectSwizzle Swizzle
	WriteMask       WriteMask
}

// SrcFromDst returns a source reading every component of dst with no modifiers.
func SrcFromDst(dst *DstRegister) SrcRegister {
	return SrcRegister{
		File:            dst.File,
		Index:           dst.Index,
		Indirect:        dst.Indirect,
		IndirectIndex:   dst.IndirectIndex,
		IndirectSwizzle: dst.IndirectSwizzle,
		Swizzle:         IdentitySwizzle,
	}
}

// Instruction is one source instruction.
type Instruction struct {
	Opcode   Opcode
	Saturate Saturate
	Dst      []DstRegister
	Src      []SrcRegister
	// Texture is set for sample opcodes.
	Texture TextureTarget
	// Label is the branch target printed after IF/ELSE; informational only.
	Label uint32
	// Line is the source line in text programs, 0 otherwise.
	Line int
}

func (*Instruction) token() {}

// Program is a parsed shader: a processor header followed by tokens in order.
type Program struct {
	Processor Processor
	Tokens    []Token
}

// Instructions returns the instruction tokens in program order.
func (p *Program) Instructions() []*Instruction {
	out := make([]*Instruction, 0, len(p.Tokens))
	for _, t := range p.Tokens {
		if inst, ok := t.(*Instruction); ok {
			out = append(out, inst)
		}
	}
	return out
}
