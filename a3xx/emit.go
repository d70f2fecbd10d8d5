// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package a3xx

import (
	"math/bits"

	"github.com/gogpu/fd3c/ir3"
	"github.com/gogpu/fd3c/tgsi"
)

// MaxScratch is the number of scratch vec4 temporaries one source
// instruction may use.
const MaxScratch = 4

// maxSrcIndex is the highest register index a source operand can encode.
const maxSrcIndex = 63

// emit flushes pending writes and creates a native instruction in the
// current block.
func (c *compiler) emit(opc ir3.Opc) (ir3.InstrHandle, error) {
	if err := c.flush(); err != nil {
		return ir3.NoInstr, err
	}
	return c.shader.NewInstr(c.block, opc), nil
}

// clone duplicates h, operands included, into the current block.
func (c *compiler) clone(h ir3.InstrHandle) (ir3.InstrHandle, error) {
	if err := c.flush(); err != nil {
		return ir3.NoInstr, err
	}
	return c.shader.Clone(h), nil
}

// recordDst records h as the writer of component comp of dst.
func (c *compiler) recordDst(h ir3.InstrHandle, dst *tgsi.DstRegister, comp uint32) error {
	n := ir3.RegID(uint32(dst.Index), comp)
	b := c.shader.Block(c.block)

	switch dst.File {
	case tgsi.FileOutput:
		return c.recordWrite(c.block, b.Outputs, n, h)
	case tgsi.FileTemporary:
		return c.recordWrite(c.block, b.Temporaries, n, h)
	}
	return nil
}

// addDst attaches the destination of h. A multi-component wrmask on a
// TEMP or OUT destination gets one meta:fo per written lane, each recorded
// as the producer of that lane.
func (c *compiler) addDst(h ir3.InstrHandle, dst *tgsi.DstRegister, comp uint32, wrmask uint8) (*ir3.Register, error) {
	var num uint32
	var flags ir3.RegFlags

	switch dst.File {
	case tgsi.FileOutput, tgsi.FileTemporary:
		num = uint32(dst.Index) + c.ns.Base[dst.File]
	case tgsi.FileAddress:
		num = regA0
	default:
		return nil, c.errorf(ErrUnsupportedRegisterFile, "unsupported dst register file: %s", dst.File)
	}

	if dst.Indirect {
		flags |= ir3.RegRelativ
	}
	if c.half {
		flags |= ir3.RegHalf
	}

	if wrmask == 0x1 {
		if err := c.recordDst(h, dst, comp); err != nil {
			return nil, err
		}
	} else if dst.File == tgsi.FileTemporary || dst.File == tgsi.FileOutput {
		for i := uint32(0); i < 4; i++ {
			if wrmask&(1<<i) == 0 {
				continue
			}
			fo := c.newMeta(ir3.OpcMetaFO)
			inst := c.shader.Instr(fo)
			inst.FO.Off = int(i)
			inst.AddReg(0, 0)
			inst.AddReg(0, ir3.RegSSA).Instr = h
			if err := c.recordDst(fo, dst, comp+i); err != nil {
				return nil, err
			}
		}
	}

	reg := c.shader.Instr(h).AddReg(ir3.RegID(num, comp), flags)
	reg.WrMask = wrmask
	return reg, nil
}

// addSrc attaches a source of h reading component comp of src. A
// multi-component rdmask reads through a meta:fi collecting every lane;
// unset lanes below the highest read lane are left as placeholders.
func (c *compiler) addSrc(h ir3.InstrHandle, src *tgsi.SrcRegister, comp uint32, rdmask uint8) (*ir3.Register, error) {
	var num uint32
	var flags ir3.RegFlags

	if src.Index > maxSrcIndex {
		return nil, c.errorf(ErrUnsupportedRegisterFile, "%s[%d] beyond encodable index %d",
			src.File, src.Index, maxSrcIndex)
	}

	switch src.File {
	case tgsi.FileImmediate, tgsi.FileConstant:
		flags |= ir3.RegConst
		num = uint32(src.Index) + c.ns.Base[src.File]
	case tgsi.FileOutput, tgsi.FileInput, tgsi.FileTemporary:
		num = uint32(src.Index) + c.ns.Base[src.File]
	default:
		return nil, c.errorf(ErrUnsupportedRegisterFile, "unsupported src register file: %s", src.File)
	}

	if src.Absolute {
		flags |= ir3.RegAbs
	}
	if src.Negate {
		flags |= ir3.RegNegate
	}
	if src.Indirect {
		flags |= ir3.RegRelativ
	}
	if c.half {
		flags |= ir3.RegHalf
	}

	link := ir3.Register{Instr: ir3.NoInstr}
	if rdmask == 0x1 {
		c.resolveSrc(&link, src, comp)
	} else if src.File == tgsi.FileTemporary || src.File == tgsi.FileOutput || src.File == tgsi.FileInput {
		collect := c.newMeta(ir3.OpcMetaFI)
		c.shader.Instr(collect).AddReg(0, 0)
		for i := 0; i < bits.Len8(rdmask); i++ {
			lane := ir3.Register{Instr: ir3.NoInstr, WrMask: 0x1}
			if rdmask&(1<<i) != 0 {
				c.resolveSrc(&lane, src, comp+uint32(i))
			}
			inst := c.shader.Instr(collect)
			inst.Regs = append(inst.Regs, lane)
		}
		link.Flags = ir3.RegSSA
		link.Instr = collect
	}

	reg := c.shader.Instr(h).AddReg(ir3.RegID(num, comp), flags|link.Flags)
	reg.Instr = link.Instr
	reg.WrMask = rdmask
	return reg, nil
}

// operand is one source of a vectorized instruction: a register read or
// an embedded integer immediate, plus modifier flags. A RegNegate flag
// toggles the negate of the register read.
type operand struct {
	src   *tgsi.SrcRegister
	immed bool
	iimm  int32
	flags ir3.RegFlags
}

func regOperand(src *tgsi.SrcRegister, flags ir3.RegFlags) operand {
	return operand{src: src, flags: flags}
}

func immOperand(v int32) operand {
	return operand{immed: true, iimm: v}
}

// vectorize turns the scalar template h into a vector operation: one
// instruction per lane written by dst, the template itself for the first
// lane and clones for the rest, with every destination and source
// component rewritten to that lane. All lanes read the values from before
// the operation.
func (c *compiler) vectorize(h ir3.InstrHandle, dst *tgsi.DstRegister, ops []operand) error {
	g, err := c.beginGroup()
	if err != nil {
		return err
	}

	first := true
	for i := 0; i < 4; i++ {
		if !dst.WriteMask.Has(i) {
			continue
		}
		lane := uint32(i)

		if first {
			first = false
			if _, err := c.addDst(h, dst, lane, 0x1); err != nil {
				return err
			}
			for _, op := range ops {
				if err := c.attachOperand(h, op, lane); err != nil {
					return err
				}
			}
			continue
		}

		cur, err := c.clone(h)
		if err != nil {
			return err
		}
		if err := c.recordDst(cur, dst, lane); err != nil {
			return err
		}
		inst := c.shader.Instr(cur)
		inst.Regs[0].Num = ir3.RegID(inst.Regs[0].RegNum(), lane)

		for j, op := range ops {
			if op.immed {
				continue
			}
			reg := &inst.Regs[j+1]
			swz := uint32(op.src.Swz(i))
			reg.Num = ir3.RegID(reg.RegNum(), swz)
			if reg.IsSSA() {
				c.resolveSrc(reg, op.src, swz)
			}
		}
	}

	return g.end()
}

func (c *compiler) attachOperand(h ir3.InstrHandle, op operand, lane uint32) error {
	if op.immed {
		c.shader.Instr(h).AddReg(0, ir3.RegImmed|op.flags).IImm = op.iimm
		return nil
	}
	reg, err := c.addSrc(h, op.src, uint32(op.src.Swz(int(lane))), 0x1)
	if err != nil {
		return err
	}
	reg.Flags |= op.flags &^ ir3.RegNegate
	if op.flags&ir3.RegNegate != 0 {
		reg.Flags ^= ir3.RegNegate
	}
	return nil
}

// scratch returns the next scratch temporary of the current source
// instruction.
func (c *compiler) scratch() (tgsi.DstRegister, tgsi.SrcRegister, error) {
	n := c.numScratch
	if n >= MaxScratch {
		return tgsi.DstRegister{}, tgsi.SrcRegister{}, c.errorf(ErrResourceExhausted,
			"more than %d scratch temporaries", MaxScratch)
	}
	c.numScratch++

	dst := tgsi.DstRegister{
		File:      tgsi.FileTemporary,
		Index:     int32(c.info.FileMax[tgsi.FileTemporary] + n + 1),
		WriteMask: tgsi.WriteMaskXYZW,
	}
	return dst, tgsi.SrcFromDst(&dst), nil
}

// immediate returns a source reading bits from the immediate pool.
func (c *compiler) immediate(bits uint32) (tgsi.SrcRegister, error) {
	slot, err := c.pool.Intern(bits)
	if err != nil {
		return tgsi.SrcRegister{}, err
	}
	swz := slot.Component
	return tgsi.SrcRegister{
		File:    tgsi.FileImmediate,
		Index:   int32(slot.Index),
		Negate:  slot.Negate,
		Swizzle: [4]tgsi.Swizzle{swz, swz, swz, swz},
	}, nil
}

// unconst copies a constant or relative source into a scratch temporary,
// for operand positions that cannot read the constant file.
func (c *compiler) unconst(src *tgsi.SrcRegister) (*tgsi.SrcRegister, error) {
	if !src.IsRelOrConst() {
		return nil, c.errorf(ErrInternal, "unconst of %s", src.File)
	}
	tmpDst, tmpSrc, err := c.scratch()
	if err != nil {
		return nil, err
	}
	if err := c.createMov(&tmpDst, src); err != nil {
		return nil, err
	}
	return &tmpSrc, nil
}

// createMov copies src into every written lane of dst. mov cannot encode
// abs or neg, absneg.f is used for those.
func (c *compiler) createMov(dst *tgsi.DstRegister, src *tgsi.SrcRegister) error {
	for i := 0; i < 4; i++ {
		if !dst.WriteMask.Has(i) {
			continue
		}

		opc := ir3.OpcMov
		if src.Absolute || src.Negate {
			opc = ir3.OpcAbsnegF
		}
		h, err := c.emit(opc)
		if err != nil {
			return err
		}
		if opc == ir3.OpcMov {
			c.shader.Instr(h).Cat1 = ir3.Cat1Fields{SrcType: c.ftype(), DstType: c.ftype()}
		}

		if _, err := c.addDst(h, dst, uint32(i), 0x1); err != nil {
			return err
		}
		if _, err := c.addSrc(h, src, uint32(src.Swz(i)), 0x1); err != nil {
			return err
		}
	}
	return nil
}

// createClamp writes min(max(val, minval), maxval) to dst.
func (c *compiler) createClamp(dst *tgsi.DstRegister, val, minval, maxval *tgsi.SrcRegister) error {
	h, err := c.emit(ir3.OpcMaxF)
	if err != nil {
		return err
	}
	if err := c.vectorize(h, dst, []operand{regOperand(val, 0), regOperand(minval, 0)}); err != nil {
		return err
	}

	// the second step reads the clamped-from-below value back from dst
	if h, err = c.emit(ir3.OpcMinF); err != nil {
		return err
	}
	low := tgsi.SrcFromDst(dst)
	return c.vectorize(h, dst, []operand{regOperand(&low, 0), regOperand(maxval, 0)})
}

// createClampImm clamps dst in place against pooled immediates.
func (c *compiler) createClampImm(dst *tgsi.DstRegister, minval, maxval uint32) error {
	val := tgsi.SrcFromDst(dst)

	minconst, err := c.immediate(minval)
	if err != nil {
		return err
	}
	maxconst, err := c.immediate(maxval)
	if err != nil {
		return err
	}
	return c.createClamp(dst, &val, &minconst, &maxconst)
}

// target is where a handler writes its result: the instruction
// destination, or a scratch temporary when a source reads the destination
// register with a different layout.
type target struct {
	dst  *tgsi.DstRegister
	real *tgsi.DstRegister
	tmp  *tgsi.SrcRegister
}

func (c *compiler) getDst(inst *tgsi.Instruction) (target, error) {
	dst := &inst.Dst[0]
	t := target{dst: dst, real: dst}

	for i := range inst.Src {
		src := &inst.Src[i]
		if src.File != dst.File || src.Index != dst.Index {
			continue
		}
		if dst.WriteMask == tgsi.WriteMaskXYZW && src.Swizzle == tgsi.IdentitySwizzle {
			continue
		}

		tmpDst, tmpSrc, err := c.scratch()
		if err != nil {
			return t, err
		}
		tmpDst.WriteMask = dst.WriteMask
		t.dst = &tmpDst
		t.tmp = &tmpSrc
		break
	}
	return t, nil
}

// putDst moves a scratch result into the real destination.
func (c *compiler) putDst(t target) error {
	if t.tmp == nil {
		return nil
	}
	return c.createMov(t.real, t.tmp)
}
