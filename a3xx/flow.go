// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package a3xx

import (
	"github.com/gogpu/fd3c/ir3"
	"github.com/gogpu/fd3c/tgsi"
)

// MaxBranchDepth is the deepest IF nesting the target supports.
const MaxBranchDepth = 16

// branchStack holds the meta:flow instruction of every open IF.
type branchStack struct {
	items []ir3.InstrHandle
}

func newBranchStack() branchStack {
	return branchStack{items: make([]ir3.InstrHandle, 0, MaxBranchDepth)}
}

func (s *branchStack) push(h ir3.InstrHandle) bool {
	if len(s.items) >= MaxBranchDepth {
		return false
	}
	s.items = append(s.items, h)
	return true
}

func (s *branchStack) pop() (ir3.InstrHandle, bool) {
	if len(s.items) == 0 {
		return ir3.NoInstr, false
	}
	h := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return h, true
}

// transIf branches on src.x != 0.0:
//
//	cmps.f.eq tmp.x, src.x, 0.0
//	add.s tmp.x, tmp.x, -1
//	meta:flow tmp.x
func (c *compiler) transIf(inst *tgsi.Instruction) error {
	src := &inst.Src[0]

	zero, err := c.immediate(fui(0.0))
	if err != nil {
		return err
	}
	tmpDst, tmpSrc, err := c.scratch()
	if err != nil {
		return err
	}
	if src.IsConst() {
		if src, err = c.unconst(src); err != nil {
			return err
		}
	}

	h, err := c.emit(ir3.OpcCmpsF)
	if err != nil {
		return err
	}
	c.shader.Instr(h).Cat2.Condition = ir3.CondEQ
	if _, err := c.addDst(h, &tmpDst, 0, 0x1); err != nil {
		return err
	}
	if _, err := c.addSrc(h, src, uint32(src.Swz(0)), 0x1); err != nil {
		return err
	}
	if _, err := c.addSrc(h, &zero, uint32(zero.Swz(0)), 0x1); err != nil {
		return err
	}

	if h, err = c.emit(ir3.OpcAddS); err != nil {
		return err
	}
	if _, err := c.addDst(h, &tmpDst, 0, 0x1); err != nil {
		return err
	}
	if _, err := c.addSrc(h, &tmpSrc, 0, 0x1); err != nil {
		return err
	}
	c.shader.Instr(h).AddReg(0, ir3.RegImmed).IImm = -1

	flow, err := c.emit(ir3.OpcMetaFlow)
	if err != nil {
		return err
	}
	c.shader.Instr(flow).AddReg(0, 0)
	if _, err := c.addSrc(flow, &tmpSrc, 0, 0x1); err != nil {
		return err
	}

	if !c.branches.push(flow) {
		return c.errorf(ErrResourceExhausted, "IF nested deeper than %d", MaxBranchDepth)
	}
	if err := c.flush(); err != nil {
		return err
	}
	c.shader.Instr(flow).Flow.IfBlock = c.pushBlock()
	return nil
}

func (c *compiler) transElse() error {
	flow, err := c.popBranch("ELSE")
	if err != nil {
		return err
	}
	if err := c.popBlock(); err != nil {
		return err
	}
	if c.shader.Instr(flow).Flow.ElseBlock != ir3.NoBlock {
		return c.errorf(ErrInternal, "second ELSE for one IF")
	}

	c.branches.push(flow)
	c.shader.Instr(flow).Flow.ElseBlock = c.pushBlock()
	return nil
}

// transEndif joins the arms of the innermost IF. Every temporary and then
// every output written in either arm gets a phi in the parent block,
// selecting between the values leaving each arm. An arm that did not write
// the register passes on the nearest enclosing producer. Without an ELSE
// the parent block stands in for the not-taken arm.
func (c *compiler) transEndif() error {
	flow, err := c.popBranch("ENDIF")
	if err != nil {
		return err
	}
	if err := c.popBlock(); err != nil {
		return err
	}

	f := c.shader.Instr(flow).Flow
	ifb := c.shader.Block(f.IfBlock)
	hasElse := f.ElseBlock != ir3.NoBlock
	elseh := ifb.Parent
	if hasElse {
		elseh = f.ElseBlock
	}
	elseb := c.shader.Block(elseh)

	var elseExits uint32
	join := func(a, b ir3.InstrHandle, find func(ir3.BlockHandle, uint32) ir3.InstrHandle, n uint32) (ir3.InstrHandle, error) {
		if a == ir3.NoInstr {
			a = find(ifb.Parent, n)
		}
		if b == ir3.NoInstr {
			b = find(elseh, n)
		}

		a = c.orZero(f.IfBlock, a)
		b = c.orZero(elseh, b)

		ifOut := c.createOutput(f.IfBlock, a, uint32(len(ifb.Exits)))
		ifb.Exits = append(ifb.Exits, a)

		var elseOut ir3.InstrHandle
		if hasElse {
			elseOut = c.createOutput(elseh, b, uint32(len(elseb.Exits)))
			elseb.Exits = append(elseb.Exits, b)
		} else {
			elseOut = c.createOutput(elseh, b, elseExits)
			elseExits++
		}

		return c.createPhi(flow, ifOut, elseOut)
	}

	parent := c.shader.Block(c.block)
	for n := uint32(0); n < uint32(ifb.Temporaries.Len()); n++ {
		a := ifb.Temporaries.Get(n)
		var b ir3.InstrHandle = ir3.NoInstr
		if hasElse {
			b = elseb.Temporaries.Get(n)
		}
		if a == ir3.NoInstr && b == ir3.NoInstr {
			continue
		}
		phi, err := join(a, b, c.findTemporary, n)
		if err != nil {
			return err
		}
		parent.Temporaries.Set(n, phi)
	}
	for n := uint32(0); n < uint32(ifb.Outputs.Len()); n++ {
		a := ifb.Outputs.Get(n)
		var b ir3.InstrHandle = ir3.NoInstr
		if hasElse {
			b = elseb.Outputs.Get(n)
		}
		if a == ir3.NoInstr && b == ir3.NoInstr {
			continue
		}
		phi, err := join(a, b, c.findOutput, n)
		if err != nil {
			return err
		}
		parent.Outputs.Set(n, phi)
	}
	return nil
}

func (c *compiler) popBranch(what string) (ir3.InstrHandle, error) {
	flow, ok := c.branches.pop()
	if !ok {
		return ir3.NoInstr, c.errorf(ErrInternal, "%s without IF", what)
	}
	if c.shader.Instr(flow).Opc != ir3.OpcMetaFlow {
		return ir3.NoInstr, c.errorf(ErrInternal, "branch stack holds %s", c.shader.Instr(flow).Opc)
	}
	return flow, nil
}

// orZero returns h, or a zero placeholder created in block bh when no
// producer exists.
func (c *compiler) orZero(bh ir3.BlockHandle, h ir3.InstrHandle) ir3.InstrHandle {
	if h != ir3.NoInstr {
		return h
	}
	saved := c.block
	c.block = bh
	h = c.createImmed(0.0)
	c.block = saved
	return h
}

func (c *compiler) createPhi(cond, a, b ir3.InstrHandle) (ir3.InstrHandle, error) {
	h, err := c.emit(ir3.OpcMetaPhi)
	if err != nil {
		return ir3.NoInstr, err
	}
	phi := c.shader.Instr(h)
	phi.AddReg(0, 0)
	phi.AddReg(0, ir3.RegSSA).Instr = cond
	phi.AddReg(0, ir3.RegSSA).Instr = a
	phi.AddReg(0, ir3.RegSSA).Instr = b
	return h, nil
}
