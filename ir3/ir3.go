package ir3

import "math"

// Handle types for referencing arena objects. Handles stay valid for the
// lifetime of the Shader that issued them.
type (
	InstrHandle uint32
	BlockHandle uint32
)

const (
	// NoInstr marks an empty producer slot or an unset SSA link.
	NoInstr InstrHandle = math.MaxUint32
	// NoBlock is the parent of the outermost block.
	NoBlock BlockHandle = math.MaxUint32
)

// RegFlags are operand modifier and kind flags.
type RegFlags uint16

const (
	RegConst RegFlags = 1 << iota
	RegImmed
	RegHalf
	RegRelativ
	RegNegate
	RegAbs
	// RegSSA operands reference the producing instruction in Register.Instr
	// instead of a register number.
	RegSSA
)

// Register is an operand descriptor. Regs[0] of an Instruction is its
// destination; the rest are sources.
type Register struct {
	Flags RegFlags
	// Num is a scalar register id, see RegID.
	Num   uint32
	Instr InstrHandle
	IImm  int32
	FImm  float32
	// WrMask is the set of consecutive components covered, starting at Num.
	WrMask uint8
}

// RegID packs a vec4 register number and a component into a scalar id.
func RegID(num, comp uint32) uint32 {
	return num<<2 | comp&3
}

// RegNum returns the vec4 register number of r.
func (r *Register) RegNum() uint32 {
	return r.Num >> 2
}

// Comp returns the component of r.
func (r *Register) Comp() uint32 {
	return r.Num & 3
}

// IsSSA reports whether r is an SSA link.
func (r *Register) IsSSA() bool {
	return r.Flags&RegSSA != 0
}

// InstrFlags are per-instruction encoding flags.
type InstrFlags uint8

const (
	InstrSY InstrFlags = 1 << iota
	InstrSS
	InstrJP
	// InstrP marks a projective sample.
	InstrP
	// Instr3D marks a sample with three coordinates (3D and cube targets).
	Instr3D
)

// Cat1Fields are the move/convert fields.
type Cat1Fields struct {
	SrcType Type
	DstType Type
}

// Cat2Fields are the two-source ALU fields.
type Cat2Fields struct {
	Condition Cond
}

// Cat5Fields are the sample fields.
type Cat5Fields struct {
	Samp uint32
	Tex  uint32
	Type Type
}

// FlowFields are the branch fields of a meta:flow instruction.
type FlowFields struct {
	IfBlock   BlockHandle
	ElseBlock BlockHandle
}

// InOutFields name the block a meta:in or meta:out belongs to.
type InOutFields struct {
	Block BlockHandle
}

// FOFields select the lane a meta:fo extracts.
type FOFields struct {
	Off int
}

// Instruction is a native or meta instruction node.
type Instruction struct {
	// Block is the block the instruction was created in.
	Block    BlockHandle
	Category Category
	Opc      Opc
	Flags    InstrFlags
	Regs     []Register

	Cat1  Cat1Fields
	Cat2  Cat2Fields
	Cat5  Cat5Fields
	Flow  FlowFields
	InOut InOutFields
	FO    FOFields
}

// AddReg appends an operand and returns it. The pointer is valid until the
// next AddReg on the same instruction.
func (inst *Instruction) AddReg(num uint32, flags RegFlags) *Register {
	inst.Regs = append(inst.Regs, Register{
		Flags:  flags,
		Num:    num,
		Instr:  NoInstr,
		WrMask: 0x1,
	})
	return &inst.Regs[len(inst.Regs)-1]
}

// Dst returns the destination operand, or nil if none was attached.
func (inst *Instruction) Dst() *Register {
	if len(inst.Regs) == 0 {
		return nil
	}
	return &inst.Regs[0]
}

// Srcs returns the source operands.
func (inst *Instruction) Srcs() []Register {
	if len(inst.Regs) < 2 {
		return nil
	}
	return inst.Regs[1:]
}

// Shader is the arena owning every instruction and block of one compile.
type Shader struct {
	instrs []*Instruction
	blocks []*Block
}

// NewShader creates an empty shader arena.
func NewShader() *Shader {
	return &Shader{
		instrs: make([]*Instruction, 0, 64),
		blocks: make([]*Block, 0, 4),
	}
}

// NewInstr creates an instruction in block. The category follows from opc.
func (s *Shader) NewInstr(block BlockHandle, opc Opc) InstrHandle {
	h := InstrHandle(len(s.instrs))
	s.instrs = append(s.instrs, &Instruction{
		Block:    block,
		Category: opc.Category(),
		Opc:      opc,
		Regs:     make([]Register, 0, 4),
		Flow:     FlowFields{IfBlock: NoBlock, ElseBlock: NoBlock},
		InOut:    InOutFields{Block: NoBlock},
	})
	if b := s.Block(block); b != nil {
		b.Instrs = append(b.Instrs, h)
	}
	return h
}

// Clone copies the instruction h, operands included, into the same block.
func (s *Shader) Clone(h InstrHandle) InstrHandle {
	src := s.instrs[h]
	dup := *src
	dup.Regs = make([]Register, len(src.Regs), cap(src.Regs))
	copy(dup.Regs, src.Regs)

	nh := InstrHandle(len(s.instrs))
	s.instrs = append(s.instrs, &dup)
	if b := s.Block(dup.Block); b != nil {
		b.Instrs = append(b.Instrs, nh)
	}
	return nh
}

// Instr returns the instruction for h, or nil if h is out of range.
func (s *Shader) Instr(h InstrHandle) *Instruction {
	if int(h) >= len(s.instrs) {
		return nil
	}
	return s.instrs[h]
}

// NumInstrs returns the number of instructions in the arena.
func (s *Shader) NumInstrs() int {
	return len(s.instrs)
}

// NewBlock creates a block with producer tables of the given sizes.
func (s *Shader) NewBlock(parent BlockHandle, ntmp, nin, nout int) BlockHandle {
	h := BlockHandle(len(s.blocks))
	b := &Block{
		Parent:      parent,
		Temporaries: NewProducerTable(ntmp),
		Inputs:      NewProducerTable(nin),
		Outputs:     NewProducerTable(nout),
	}
	if parent != NoBlock {
		b.OutputInputs = NewProducerTable(nout)
		b.Depth = s.blocks[parent].Depth + 1
	}
	s.blocks = append(s.blocks, b)
	return h
}

// Block returns the block for h, or nil if h is out of range.
func (s *Shader) Block(h BlockHandle) *Block {
	if int(h) >= len(s.blocks) {
		return nil
	}
	return s.blocks[h]
}

// NumBlocks returns the number of blocks in the arena.
func (s *Shader) NumBlocks() int {
	return len(s.blocks)
}
