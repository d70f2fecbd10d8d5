// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package a3xx

import (
	"github.com/gogpu/fd3c/ir3"
	"github.com/gogpu/fd3c/tgsi"
)

// handlerKind selects the translation of a TGSI opcode.
type handlerKind uint8

const (
	handleNone handlerKind = iota
	handleCat0
	handleMov
	handleCat2
	handleCat3
	handleCat4
	handleSample
	handleCompare
	handleArl
	handleClamp
	handleIf
	handleElse
	handleEndif
)

// translator is the translation of one TGSI opcode.
type translator struct {
	kind handlerKind
	opc  ir3.Opc
	// hopc replaces opc in half precision mode, if set.
	hopc ir3.Opc
}

var translators = [tgsi.OpCount]translator{
	tgsi.OpMov:   {kind: handleMov},
	tgsi.OpRcp:   {kind: handleCat4, opc: ir3.OpcRcp},
	tgsi.OpRsq:   {kind: handleCat4, opc: ir3.OpcRsq},
	tgsi.OpSqrt:  {kind: handleCat4, opc: ir3.OpcSqrt},
	tgsi.OpMul:   {kind: handleCat2, opc: ir3.OpcMulF},
	tgsi.OpAdd:   {kind: handleCat2, opc: ir3.OpcAddF},
	tgsi.OpSub:   {kind: handleCat2, opc: ir3.OpcAddF},
	tgsi.OpMin:   {kind: handleCat2, opc: ir3.OpcMinF},
	tgsi.OpMax:   {kind: handleCat2, opc: ir3.OpcMaxF},
	tgsi.OpMad:   {kind: handleCat3, opc: ir3.OpcMadF32, hopc: ir3.OpcMadF16},
	tgsi.OpTrunc: {kind: handleCat2, opc: ir3.OpcTruncF},
	tgsi.OpClamp: {kind: handleClamp},
	tgsi.OpFlr:   {kind: handleCat2, opc: ir3.OpcFloorF},
	tgsi.OpRound: {kind: handleCat2, opc: ir3.OpcRndneF},
	tgsi.OpArl:   {kind: handleArl},
	tgsi.OpEx2:   {kind: handleCat4, opc: ir3.OpcExp2},
	tgsi.OpLg2:   {kind: handleCat4, opc: ir3.OpcLog2},
	tgsi.OpAbs:   {kind: handleCat2, opc: ir3.OpcAbsnegF},
	tgsi.OpCos:   {kind: handleCat4, opc: ir3.OpcCos},
	tgsi.OpSin:   {kind: handleCat4, opc: ir3.OpcSin},
	tgsi.OpTex:   {kind: handleSample, opc: ir3.OpcSam},
	tgsi.OpTxp:   {kind: handleSample, opc: ir3.OpcSam},
	tgsi.OpSgt:   {kind: handleCompare},
	tgsi.OpSlt:   {kind: handleCompare},
	tgsi.OpSge:   {kind: handleCompare},
	tgsi.OpSle:   {kind: handleCompare},
	tgsi.OpSne:   {kind: handleCompare},
	tgsi.OpSeq:   {kind: handleCompare},
	tgsi.OpCmp:   {kind: handleCompare},
	tgsi.OpIf:    {kind: handleIf},
	tgsi.OpElse:  {kind: handleElse},
	tgsi.OpEndif: {kind: handleEndif},
	tgsi.OpEnd:   {kind: handleCat0, opc: ir3.OpcEnd},
	tgsi.OpKill:  {kind: handleCat0, opc: ir3.OpcKill},
}

func (c *compiler) translate(inst *tgsi.Instruction) error {
	if inst.Opcode >= tgsi.OpCount {
		return c.errorf(ErrUnknownOpcode, "unknown TGSI opc: %d", inst.Opcode)
	}
	t := &translators[inst.Opcode]

	info := inst.Opcode.Info()
	if t.kind != handleNone && (len(inst.Dst) < info.NumDst || len(inst.Src) < info.NumSrc) {
		return c.errorf(ErrInternal, "%s takes %d dst and %d src operands, got %d and %d",
			inst.Opcode, info.NumDst, info.NumSrc, len(inst.Dst), len(inst.Src))
	}

	switch t.kind {
	case handleNone:
		return c.errorf(ErrUnknownOpcode, "unknown TGSI opc: %s", inst.Opcode)
	case handleCat0:
		_, err := c.emit(t.opc)
		return err
	case handleMov:
		return c.transMov(inst)
	case handleCat2:
		return c.transCat2(t, inst)
	case handleCat3:
		return c.transCat3(t, inst)
	case handleCat4:
		return c.transCat4(t, inst)
	case handleSample:
		return c.transSample(t, inst)
	case handleCompare:
		return c.transCompare(inst)
	case handleArl:
		return c.transArl(inst)
	case handleClamp:
		return c.transClamp(inst)
	case handleIf:
		return c.transIf(inst)
	case handleElse:
		return c.transElse()
	case handleEndif:
		return c.transEndif()
	default:
		return c.errorf(ErrInternal, "no handler of kind %d", t.kind)
	}
}

func (c *compiler) transMov(inst *tgsi.Instruction) error {
	t, err := c.getDst(inst)
	if err != nil {
		return err
	}
	src := &inst.Src[0]

	if src.Negate {
		// mov can't negate its source. Only f32/f16 moves are generated, so
		// add.f with 0.0 is equivalent.
		h, err := c.emit(ir3.OpcAddF)
		if err != nil {
			return err
		}
		zero, err := c.immediate(fui(0.0))
		if err != nil {
			return err
		}
		if err := c.vectorize(h, t.dst, []operand{regOperand(src, 0), regOperand(&zero, 0)}); err != nil {
			return err
		}
	} else if err := c.createMov(t.dst, src); err != nil {
		return err
	}

	return c.putDst(t)
}

// isUnary reports whether a cat2 opcode takes a single source.
func isUnary(opc ir3.Opc) bool {
	switch opc {
	case ir3.OpcAbsnegF, ir3.OpcAbsnegS, ir3.OpcClzB, ir3.OpcClzS,
		ir3.OpcSignF, ir3.OpcFloorF, ir3.OpcCeilF, ir3.OpcRndneF,
		ir3.OpcRndazF, ir3.OpcTruncF, ir3.OpcNotB, ir3.OpcBfrevB,
		ir3.OpcSetrm, ir3.OpcCbitsB:
		return true
	}
	return false
}

func (c *compiler) transCat2(tr *translator, inst *tgsi.Instruction) error {
	t, err := c.getDst(inst)
	if err != nil {
		return err
	}
	src0 := &inst.Src[0]
	var src0Flags, src1Flags ir3.RegFlags

	switch inst.Opcode {
	case tgsi.OpAbs:
		src0Flags = ir3.RegAbs
	case tgsi.OpSub:
		src1Flags = ir3.RegNegate
	}

	if isUnary(tr.opc) {
		h, err := c.emit(tr.opc)
		if err != nil {
			return err
		}
		if err := c.vectorize(h, t.dst, []operand{regOperand(src0, src0Flags)}); err != nil {
			return err
		}
		return c.putDst(t)
	}

	src1 := &inst.Src[1]
	if src0.IsConst() && src1.IsConst() {
		if src0, err = c.unconst(src0); err != nil {
			return err
		}
	}

	h, err := c.emit(tr.opc)
	if err != nil {
		return err
	}
	ops := []operand{regOperand(src0, src0Flags), regOperand(src1, src1Flags)}
	if err := c.vectorize(h, t.dst, ops); err != nil {
		return err
	}
	return c.putDst(t)
}

func (c *compiler) transCat3(tr *translator, inst *tgsi.Instruction) error {
	t, err := c.getDst(inst)
	if err != nil {
		return err
	}
	src0 := &inst.Src[0]
	src1 := &inst.Src[1]

	// src1 of cat3 can't be const or relative. mad commutes its first two
	// sources, so swap when that helps.
	if src1.IsRelOrConst() {
		if tr.opc.IsMad() && !src0.IsRelOrConst() {
			src0, src1 = src1, src0
		} else if src1, err = c.unconst(src1); err != nil {
			return err
		}
	}

	opc := tr.opc
	if c.half && tr.hopc != 0 {
		opc = tr.hopc
	}
	h, err := c.emit(opc)
	if err != nil {
		return err
	}
	ops := []operand{regOperand(src0, 0), regOperand(src1, 0), regOperand(&inst.Src[2], 0)}
	if err := c.vectorize(h, t.dst, ops); err != nil {
		return err
	}
	return c.putDst(t)
}

func (c *compiler) transCat4(tr *translator, inst *tgsi.Instruction) error {
	t, err := c.getDst(inst)
	if err != nil {
		return err
	}
	src := &inst.Src[0]

	if src.IsConst() {
		if src, err = c.unconst(src); err != nil {
			return err
		}
	}

	// cat4 is scalar only, replicate into each component. Every lane reads
	// src.x as it was before the instruction.
	g, err := c.beginGroup()
	if err != nil {
		return err
	}
	for i := 0; i < 4; i++ {
		if !t.dst.WriteMask.Has(i) {
			continue
		}
		h, err := c.emit(tr.opc)
		if err != nil {
			return err
		}
		if _, err := c.addDst(h, t.dst, uint32(i), 0x1); err != nil {
			return err
		}
		if _, err := c.addSrc(h, src, uint32(src.Swz(0)), 0x1); err != nil {
			return err
		}
	}
	if err := g.end(); err != nil {
		return err
	}
	return c.putDst(t)
}

// Coordinate layouts of the sample instructions: order[i] is the offset
// from the first coordinate component of the component sampled in lane i.
var (
	texOrder2D  = [4]int{0, 1, -1, -1}
	texOrder    = [4]int{0, 1, 2, -1}
	txpOrder2D  = [4]int{0, 1, 3, -1}
	txpOrderAll = [4]int{0, 1, 2, 3}
)

func (c *compiler) transSample(tr *translator, inst *tgsi.Instruction) error {
	coord := &inst.Src[0]
	samp := &inst.Src[1]
	if samp.File != tgsi.FileSampler {
		return c.errorf(ErrUnsupportedRegisterFile, "%s sampler operand is %s", inst.Opcode, samp.File)
	}

	var order [4]int
	var srcMask uint8
	var flags ir3.InstrFlags

	switch {
	case inst.Opcode == tgsi.OpTex && inst.Texture == tgsi.Texture2D:
		order, srcMask = texOrder2D, uint8(tgsi.WriteMaskXY)
	case inst.Opcode == tgsi.OpTex:
		order, srcMask = texOrder, uint8(tgsi.WriteMaskXYZ)
	case inst.Texture == tgsi.Texture2D:
		order, srcMask = txpOrder2D, uint8(tgsi.WriteMaskXYZ)
	default:
		order, srcMask = txpOrderAll, uint8(tgsi.WriteMaskXYZW)
	}
	if inst.Opcode == tgsi.OpTxp {
		flags |= ir3.InstrP
	}
	if inst.Texture == tgsi.Texture3D || inst.Texture == tgsi.TextureCube {
		flags |= ir3.Instr3D
	}

	// cat5 can't read const or relative coordinates, and wants them in
	// consecutive components (src.xy but not src.yx). TXP 2D also needs .w
	// moved into .z.
	needsMov := coord.IsRelOrConst()
	for i := 1; i < 4 && order[i] >= 0 && !needsMov; i++ {
		if int(coord.Swz(i)) != int(coord.Swz(0))+order[i] {
			needsMov = true
		}
	}

	if needsMov {
		tmpDst, tmpSrc, err := c.scratch()
		if err != nil {
			return err
		}
		for j := 0; j < 4 && order[j] >= 0; j++ {
			h, err := c.emit(ir3.OpcMov)
			if err != nil {
				return err
			}
			c.shader.Instr(h).Cat1 = ir3.Cat1Fields{SrcType: c.ftype(), DstType: c.ftype()}
			if _, err := c.addDst(h, &tmpDst, uint32(j), 0x1); err != nil {
				return err
			}
			if _, err := c.addSrc(h, coord, uint32(coord.Swz(order[j])), 0x1); err != nil {
				return err
			}
		}
		coord = &tmpSrc
	}

	h, err := c.emit(tr.opc)
	if err != nil {
		return err
	}
	s := c.shader.Instr(h)
	s.Cat5 = ir3.Cat5Fields{
		Samp: uint32(samp.Index),
		Tex:  uint32(samp.Index),
		Type: c.ftype(),
	}
	s.Flags |= flags

	dst := &inst.Dst[0]
	if _, err := c.addDst(h, dst, 0, uint8(dst.WriteMask)); err != nil {
		return err
	}
	_, err = c.addSrc(h, coord, uint32(coord.Swz(0)), srcMask)
	return err
}

// transCompare lowers the set-on-compare opcodes and CMP:
//
//	SEQ(a,b)   cmps.f.eq tmp, b, a; cov.u32f32 dst, tmp
//	SNE(a,b)   cmps.f.eq tmp, b, a; add.s tmp, tmp, -1; sel.f32 dst, 0.0, tmp, 1.0
//	SGE(a,b)   cmps.f.ge tmp, a, b; cov.u32f32 dst, tmp
//	SLE(a,b)   cmps.f.ge tmp, b, a; cov.u32f32 dst, tmp
//	SGT(a,b)   cmps.f.ge tmp, b, a; add.s tmp, tmp, -1; sel.f32 dst, 0.0, tmp, 1.0
//	SLT(a,b)   cmps.f.ge tmp, a, b; add.s tmp, tmp, -1; sel.f32 dst, 0.0, tmp, 1.0
//	CMP(a,b,c) cmps.f.ge tmp, a, 0.0; add.s tmp, tmp, -1; sel.f32 dst, c, tmp, b
func (c *compiler) transCompare(inst *tgsi.Instruction) error {
	t, err := c.getDst(inst)
	if err != nil {
		return err
	}
	tmpDst, tmpSrc, err := c.scratch()
	if err != nil {
		return err
	}

	var a0, a1 *tgsi.SrcRegister
	cond := ir3.CondGE

	switch inst.Opcode {
	case tgsi.OpSeq, tgsi.OpSne:
		a0, a1 = &inst.Src[1], &inst.Src[0]
		cond = ir3.CondEQ
	case tgsi.OpSge, tgsi.OpSlt:
		a0, a1 = &inst.Src[0], &inst.Src[1]
	case tgsi.OpSle, tgsi.OpSgt:
		a0, a1 = &inst.Src[1], &inst.Src[0]
	case tgsi.OpCmp:
		zero, err := c.immediate(fui(0.0))
		if err != nil {
			return err
		}
		a0, a1 = &inst.Src[0], &zero
	default:
		return c.errorf(ErrInternal, "%s is not a compare", inst.Opcode)
	}

	if a0.IsConst() && a1.IsConst() {
		if a0, err = c.unconst(a0); err != nil {
			return err
		}
	}

	h, err := c.emit(ir3.OpcCmpsF)
	if err != nil {
		return err
	}
	c.shader.Instr(h).Cat2.Condition = cond
	if err := c.vectorize(h, &tmpDst, []operand{regOperand(a0, 0), regOperand(a1, 0)}); err != nil {
		return err
	}

	switch inst.Opcode {
	case tgsi.OpSeq, tgsi.OpSge, tgsi.OpSle:
		if h, err = c.emit(ir3.OpcMov); err != nil {
			return err
		}
		c.shader.Instr(h).Cat1 = ir3.Cat1Fields{SrcType: c.utype(), DstType: c.ftype()}
		if err := c.vectorize(h, t.dst, []operand{regOperand(&tmpSrc, 0)}); err != nil {
			return err
		}

	default:
		if h, err = c.emit(ir3.OpcAddS); err != nil {
			return err
		}
		if err := c.vectorize(h, &tmpDst, []operand{regOperand(&tmpSrc, 0), immOperand(-1)}); err != nil {
			return err
		}

		var ops []operand
		if inst.Opcode == tgsi.OpCmp {
			ops = []operand{regOperand(&inst.Src[2], 0), regOperand(&tmpSrc, 0), regOperand(&inst.Src[1], 0)}
		} else {
			zero, err := c.immediate(fui(0.0))
			if err != nil {
				return err
			}
			one, err := c.immediate(fui(1.0))
			if err != nil {
				return err
			}
			ops = []operand{regOperand(&zero, 0), regOperand(&tmpSrc, 0), regOperand(&one, 0)}
		}

		if h, err = c.emit(c.selOpc()); err != nil {
			return err
		}
		if err := c.vectorize(h, t.dst, ops); err != nil {
			return err
		}
	}

	return c.putDst(t)
}

func (c *compiler) selOpc() ir3.Opc {
	if c.half {
		return ir3.OpcSelF16
	}
	return ir3.OpcSelF32
}

// transArl loads the address register: the float source is converted to
// s16 in a half register, scaled to scalar units and moved into a0.
func (c *compiler) transArl(inst *tgsi.Instruction) error {
	dst := &inst.Dst[0]
	src := &inst.Src[0]
	if dst.File != tgsi.FileAddress {
		return c.errorf(ErrUnsupportedRegisterFile, "ARL destination is %s", dst.File)
	}
	comp := uint32(src.Swz(0))

	tmpDst, tmpSrc, err := c.scratch()
	if err != nil {
		return err
	}

	// cov.f32s16 tmp, src
	h, err := c.emit(ir3.OpcMov)
	if err != nil {
		return err
	}
	c.shader.Instr(h).Cat1 = ir3.Cat1Fields{SrcType: c.ftype(), DstType: ir3.TypeS16}
	reg, err := c.addDst(h, &tmpDst, comp, 0x1)
	if err != nil {
		return err
	}
	reg.Flags |= ir3.RegHalf
	if _, err := c.addSrc(h, src, comp, 0x1); err != nil {
		return err
	}

	// shl.b tmp, tmp, 2
	if h, err = c.emit(ir3.OpcShlB); err != nil {
		return err
	}
	if reg, err = c.addDst(h, &tmpDst, comp, 0x1); err != nil {
		return err
	}
	reg.Flags |= ir3.RegHalf
	if reg, err = c.addSrc(h, &tmpSrc, comp, 0x1); err != nil {
		return err
	}
	reg.Flags |= ir3.RegHalf
	c.shader.Instr(h).AddReg(0, ir3.RegImmed).IImm = 2

	// mova a0, tmp
	if h, err = c.emit(ir3.OpcMov); err != nil {
		return err
	}
	c.shader.Instr(h).Cat1 = ir3.Cat1Fields{SrcType: ir3.TypeS16, DstType: ir3.TypeS16}
	if reg, err = c.addDst(h, dst, 0, 0x1); err != nil {
		return err
	}
	reg.Flags |= ir3.RegHalf
	if reg, err = c.addSrc(h, &tmpSrc, comp, 0x1); err != nil {
		return err
	}
	reg.Flags |= ir3.RegHalf
	return nil
}

func (c *compiler) transClamp(inst *tgsi.Instruction) error {
	t, err := c.getDst(inst)
	if err != nil {
		return err
	}
	if err := c.createClamp(t.dst, &inst.Src[0], &inst.Src[1], &inst.Src[2]); err != nil {
		return err
	}
	return c.putDst(t)
}
