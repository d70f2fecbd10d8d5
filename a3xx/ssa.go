// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package a3xx

import (
	"github.com/gogpu/fd3c/ir3"
	"github.com/gogpu/fd3c/tgsi"
)

// pendingWrite is a producer table update deferred until the writing
// instruction (or group of instructions) is complete, so that the writer
// still reads the previous value of a register it also writes.
type pendingWrite struct {
	block ir3.BlockHandle
	table ir3.ProducerTable
	n     uint32
	instr ir3.InstrHandle
}

// writeGroup buffers the writes of a run of scalar instructions forming one
// vector operation. Every member reads the values from before the group;
// end publishes the writes at once.
type writeGroup struct {
	c      *compiler
	writes []pendingWrite
}

// beginGroup applies the writes of completed instructions and opens a
// write group. Groups do not nest.
func (c *compiler) beginGroup() (*writeGroup, error) {
	if c.group != nil {
		return nil, c.errorf(ErrInternal, "nested write group")
	}
	if err := c.flush(); err != nil {
		return nil, err
	}
	c.group = &writeGroup{c: c}
	return c.group, nil
}

// end closes the group and applies its writes.
func (g *writeGroup) end() error {
	c := g.c
	if c.group != g {
		return c.errorf(ErrInternal, "write group closed twice")
	}
	c.group = nil
	c.pending = append(c.pending, g.writes...)
	return c.flush()
}

// recordWrite defers making instr the producer of n in table.
func (c *compiler) recordWrite(bh ir3.BlockHandle, table ir3.ProducerTable, n uint32, instr ir3.InstrHandle) error {
	if !table.InRange(n) {
		return c.errorf(ErrInternal, "register %d outside block table of %d", n, table.Len())
	}
	if c.shader.Block(bh).Closed {
		return c.errorf(ErrInternal, "write to closed block b%d", bh)
	}
	w := pendingWrite{block: bh, table: table, n: n, instr: instr}
	if c.group != nil {
		c.group.writes = append(c.group.writes, w)
	} else {
		c.pending = append(c.pending, w)
	}
	return nil
}

// flush applies pending writes in order. It is a no-op inside a group.
func (c *compiler) flush() error {
	if c.group != nil {
		return nil
	}
	for _, w := range c.pending {
		if c.shader.Block(w.block).Closed {
			return c.errorf(ErrInternal, "write to closed block b%d", w.block)
		}
		w.table.Set(w.n, w.instr)
	}
	c.pending = c.pending[:0]
	return nil
}

// pushBlock opens a child of the current block and makes it current.
func (c *compiler) pushBlock() ir3.BlockHandle {
	scalars := func(f tgsi.File) int {
		return 4 * (c.info.FileMax[f] + 1)
	}

	// room for the scratch temporaries of one instruction
	ntmp := scalars(tgsi.FileTemporary) + 4*MaxScratch

	// The outermost block's inputs are the INPUT file; reads of IN[] always
	// go to it. Nested blocks use inputs to cache temporaries imported from
	// enclosing blocks.
	var nin int
	if c.block == ir3.NoBlock {
		nin = scalars(tgsi.FileInput)
		if c.kind == tgsi.ProcessorFragment {
			nin = max(nin, 2)
		}
	} else {
		nin = ntmp
	}
	nout := scalars(tgsi.FileOutput)

	c.block = c.shader.NewBlock(c.block, ntmp, nin, nout)
	return c.block
}

// popBlock closes the current block and makes its parent current.
func (c *compiler) popBlock() error {
	if err := c.flush(); err != nil {
		return err
	}
	b := c.shader.Block(c.block)
	if b.IsRoot() {
		return c.errorf(ErrInternal, "block stack underflow")
	}
	b.Closed = true
	c.block = b.Parent
	return nil
}

// resolveInput returns the producer of input n. Inputs are not block
// scoped.
func (c *compiler) resolveInput(n uint32) ir3.InstrHandle {
	return c.shader.Block(c.root).Inputs.Get(n)
}

// resolveTemporary returns the temporary n in scope of block bh, creating
// and caching a meta:in node in every nested block it passes through.
func (c *compiler) resolveTemporary(bh ir3.BlockHandle, n uint32) ir3.InstrHandle {
	b := c.shader.Block(bh)
	if b.IsRoot() || b.Temporaries.Has(n) {
		return b.Temporaries.Get(n)
	}
	if !b.Inputs.InRange(n) {
		return ir3.NoInstr
	}
	if !b.Inputs.Has(n) {
		outer := c.resolveTemporary(b.Parent, n)
		if outer == ir3.NoInstr {
			return ir3.NoInstr
		}
		b.Inputs.Set(n, c.createInput(bh, outer, n))
	}
	return b.Inputs.Get(n)
}

// resolveOutput is resolveTemporary for the OUTPUT file.
func (c *compiler) resolveOutput(bh ir3.BlockHandle, n uint32) ir3.InstrHandle {
	b := c.shader.Block(bh)
	if b.IsRoot() || b.Outputs.Has(n) {
		return b.Outputs.Get(n)
	}
	if !b.OutputInputs.InRange(n) {
		return ir3.NoInstr
	}
	if !b.OutputInputs.Has(n) {
		outer := c.resolveOutput(b.Parent, n)
		if outer == ir3.NoInstr {
			return ir3.NoInstr
		}
		b.OutputInputs.Set(n, c.createInput(bh, outer, n))
	}
	return b.OutputInputs.Get(n)
}

// findTemporary returns the nearest producer of temporary n without
// creating block inputs.
func (c *compiler) findTemporary(bh ir3.BlockHandle, n uint32) ir3.InstrHandle {
	b := c.shader.Block(bh)
	if !b.IsRoot() && !b.Temporaries.Has(n) {
		return c.findTemporary(b.Parent, n)
	}
	return b.Temporaries.Get(n)
}

// findOutput is findTemporary for the OUTPUT file.
func (c *compiler) findOutput(bh ir3.BlockHandle, n uint32) ir3.InstrHandle {
	b := c.shader.Block(bh)
	if !b.IsRoot() && !b.Outputs.Has(n) {
		return c.findOutput(b.Parent, n)
	}
	return b.Outputs.Get(n)
}

// resolveSrc links reg to the producer of component comp of src. A read
// with no producer gets a zero placeholder, modeling undefined register
// contents.
func (c *compiler) resolveSrc(reg *ir3.Register, src *tgsi.SrcRegister, comp uint32) {
	n := ir3.RegID(uint32(src.Index), comp)

	var p ir3.InstrHandle
	switch src.File {
	case tgsi.FileInput:
		p = c.resolveInput(n)
	case tgsi.FileOutput:
		p = c.resolveOutput(c.block, n)
	case tgsi.FileTemporary:
		p = c.resolveTemporary(c.block, n)
	default:
		return
	}

	if p == ir3.NoInstr {
		p = c.createImmed(0.0)
	}
	reg.Flags |= ir3.RegSSA
	reg.Instr = p
}

// newMeta creates an instruction in the current block without flushing
// pending writes.
func (c *compiler) newMeta(opc ir3.Opc) ir3.InstrHandle {
	return c.shader.NewInstr(c.block, opc)
}

// createImmed creates a mov of val. It does not flush pending writes, so
// it can stand in for an operand of the instruction being built.
func (c *compiler) createImmed(val float32) ir3.InstrHandle {
	h := c.shader.NewInstr(c.block, ir3.OpcMov)
	inst := c.shader.Instr(h)
	inst.Cat1 = ir3.Cat1Fields{SrcType: c.ftype(), DstType: c.ftype()}
	inst.AddReg(0, 0)
	inst.AddReg(0, ir3.RegImmed).FImm = val
	return h
}

// createInput creates a meta:in of block bh for register n, fed by instr
// when it is set.
func (c *compiler) createInput(bh ir3.BlockHandle, instr ir3.InstrHandle, n uint32) ir3.InstrHandle {
	h := c.shader.NewInstr(bh, ir3.OpcMetaInput)
	inst := c.shader.Instr(h)
	inst.InOut.Block = bh
	inst.AddReg(n, 0)
	if instr != ir3.NoInstr {
		inst.AddReg(0, ir3.RegSSA).Instr = instr
	}
	return h
}

// createOutput creates exit n of block bh, carrying instr out of it.
func (c *compiler) createOutput(bh ir3.BlockHandle, instr ir3.InstrHandle, n uint32) ir3.InstrHandle {
	h := c.shader.NewInstr(bh, ir3.OpcMetaOutput)
	inst := c.shader.Instr(h)
	inst.InOut.Block = bh
	inst.AddReg(n, 0)
	inst.AddReg(0, ir3.RegSSA).Instr = instr
	return h
}
