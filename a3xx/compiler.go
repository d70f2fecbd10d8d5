// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package a3xx

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/gogpu/fd3c/ir3"
	"github.com/gogpu/fd3c/tgsi"
)

// regA0 is the native address register.
const regA0 = 61

// firstInloc is the linkage offset of the first varying.
const firstInloc = 8

// compiler is the state of one compile. It is created and discarded by
// Compile.
type compiler struct {
	prog  *tgsi.Program
	info  *tgsi.Info
	kind  tgsi.Processor
	half  bool
	ns    Namespace
	pool  *ImmediatePool
	state *ShaderState
	log   *slog.Logger

	shader *ir3.Shader
	root   ir3.BlockHandle
	block  ir3.BlockHandle

	// pending are destination writes not yet visible to reads.
	pending []pendingWrite
	group   *writeGroup

	branches   branchStack
	numScratch int

	// fragPos collects r0.xy, the base of every varying fetch.
	fragPos ir3.InstrHandle

	nextInloc uint32
	// instrIndex is the source instruction being translated, -1 while
	// processing declarations.
	instrIndex int
}

// Compile translates prog into an ir3 graph. info is the static scan of
// prog; when nil it is computed.
//
// The pipeline is:
//  1. Lay out the register namespace and the immediate table
//  2. Translate declarations and instructions in token order
//  3. Validate the graph (if enabled)
//  4. Run the configured passes
//  5. Allocate registers and fix up the linkage (if an allocator is set)
func Compile(prog *tgsi.Program, info *tgsi.Info, opts Options) (*Result, error) {
	if prog == nil {
		return nil, NewError(ErrInternal, "program is nil")
	}
	if info == nil {
		info = tgsi.Scan(prog)
	}

	c, err := newCompiler(prog, info, opts)
	if err != nil {
		return nil, err
	}
	if err := c.compileInstructions(); err != nil {
		return nil, err
	}
	c.state.Immediates = c.pool.Groups()
	c.state.ImmediatesCount = c.pool.Count()

	if err := c.dump(opts.DumpWriter, "translate"); err != nil {
		return nil, err
	}

	if opts.Validate {
		errs, err := ir3.Validate(c.shader, c.root)
		if err != nil {
			return nil, NewError(ErrInternal, err.Error())
		}
		if len(errs) > 0 {
			return nil, NewError(ErrInternal,
				fmt.Sprintf("invalid graph (%d errors): %v", len(errs), errs[0]))
		}
	}

	for _, p := range opts.Passes {
		if err := p.Run(c.shader, c.root); err != nil {
			return nil, fmt.Errorf("pass %s: %w", p.Name(), err)
		}
		c.log.Debug("pass done", "pass", p.Name(), "instrs", c.shader.NumInstrs())
		if err := c.dump(opts.DumpWriter, p.Name()); err != nil {
			return nil, err
		}
	}

	if opts.Allocator != nil {
		if err := opts.Allocator.Allocate(c.shader, c.root, c.kind); err != nil {
			return nil, fmt.Errorf("register allocation: %w", err)
		}
		c.state.fixupLinkage(c.shader, c.shader.Block(c.root))
	}

	c.log.Debug("compile done",
		"kind", c.kind,
		"instrs", c.shader.NumInstrs(),
		"blocks", c.shader.NumBlocks(),
		"immediates", c.state.ImmediatesCount)

	return &Result{
		Shader: c.shader,
		Root:   c.root,
		State:  c.state,
	}, nil
}

func newCompiler(prog *tgsi.Program, info *tgsi.Info, opts Options) (*compiler, error) {
	ns, err := AllocateNamespace(info, prog.Processor, opts.HalfPrecision)
	if err != nil {
		return nil, err
	}
	pool, err := NewImmediatePool(info.FileMax[tgsi.FileImmediate] + 1)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &compiler{
		prog: prog,
		info: info,
		kind: prog.Processor,
		half: opts.HalfPrecision,
		ns:   ns,
		pool: pool,
		state: &ShaderState{
			Kind:           prog.Processor,
			HalfPrecision:  opts.HalfPrecision,
			FirstImmediate: ns.FirstImmediate(),
		},
		log:        logger,
		shader:     ir3.NewShader(),
		root:       ir3.NoBlock,
		block:      ir3.NoBlock,
		branches:   newBranchStack(),
		fragPos:    ir3.NoInstr,
		nextInloc:  firstInloc,
		instrIndex: -1,
	}, nil
}

func (c *compiler) compileInstructions() error {
	c.root = c.pushBlock()

	// For fragment shaders the only hardware input is r0.xy, the base of
	// the bary.f varying fetches. IN[] is tracked normally and the real
	// inputs are attached once translation is done.
	if c.kind == tgsi.ProcessorFragment {
		h := c.newMeta(ir3.OpcMetaFI)
		inst := c.shader.Instr(h)
		inst.AddReg(0, 0)
		inst.AddReg(0, ir3.RegSSA) // r0.x
		inst.AddReg(0, ir3.RegSSA) // r0.y
		c.fragPos = h
	}

	for _, tok := range c.prog.Tokens {
		switch t := tok.(type) {
		case *tgsi.Declaration:
			if err := c.declare(t); err != nil {
				return err
			}
		case *tgsi.Immediate:
			if err := c.pool.Declare(t.Values); err != nil {
				return err
			}
		case *tgsi.Instruction:
			c.instrIndex++
			if err := c.compileInstruction(t); err != nil {
				return err
			}
		}
	}

	if len(c.branches.items) > 0 {
		return c.errorf(ErrInternal, "%d unterminated IF", len(c.branches.items))
	}

	if c.kind == tgsi.ProcessorFragment {
		root := c.shader.Block(c.root)
		fp := c.shader.Instr(c.fragPos)
		for i := 0; i < 2; i++ {
			in := c.createInput(c.root, ir3.NoInstr, uint32(i))
			fp.Regs[i+1].Instr = in
			root.HWInputs = append(root.HWInputs, in)
		}
	}
	return nil
}

func (c *compiler) compileInstruction(inst *tgsi.Instruction) error {
	if err := c.translate(inst); err != nil {
		return err
	}
	c.numScratch = 0

	if len(inst.Dst) > 0 {
		switch inst.Saturate {
		case tgsi.SatZeroOne:
			if err := c.createClampImm(&inst.Dst[0], fui(0.0), fui(1.0)); err != nil {
				return err
			}
		case tgsi.SatMinusPlusOne:
			if err := c.createClampImm(&inst.Dst[0], fui(-1.0), fui(1.0)); err != nil {
				return err
			}
		}
	}

	return c.flush()
}

func (c *compiler) declare(decl *tgsi.Declaration) error {
	switch decl.File {
	case tgsi.FileInput:
		return c.declareInput(decl)
	case tgsi.FileOutput:
		return c.declareOutput(decl)
	case tgsi.FileSampler:
		c.state.SamplersCount++
	}
	return nil
}

func (c *compiler) declareInput(decl *tgsi.Declaration) error {
	// fragment inputs are linked to vertex outputs by semantic
	if c.kind == tgsi.ProcessorFragment && decl.Semantic == nil {
		return c.errorf(ErrInvalidSemantic, "fragment input IN[%d] has no semantic", decl.First)
	}

	base := c.ns.Base[tgsi.FileInput]
	root := c.shader.Block(c.root)
	var flags ir3.RegFlags
	if c.half {
		flags |= ir3.RegHalf
	}

	for i := decl.First; i <= decl.Last; i++ {
		const ncomp = 4
		r := ir3.RegID(i+base, 0)

		desc := InputDesc{
			Index:       i,
			Regid:       r,
			Compmask:    1<<ncomp - 1,
			Inloc:       c.nextInloc,
			Interpolate: decl.Interpolate,
		}
		if decl.Semantic != nil {
			desc.Semantic = *decl.Semantic
		}
		c.nextInloc += ncomp
		c.state.TotalIn += ncomp
		c.state.Inputs = append(c.state.Inputs, desc)

		c.log.Debug("decl in", "index", i, "reg", fmt.Sprintf("r%d", i+base), "inloc", desc.Inloc)

		for j := uint32(0); j < ncomp; j++ {
			n := ir3.RegID(i, j)
			if !root.Inputs.InRange(n) {
				return c.errorf(ErrInternal, "input IN[%d] outside scanned range", i)
			}

			var h ir3.InstrHandle
			if c.kind == tgsi.ProcessorFragment {
				var err error
				if h, err = c.emit(ir3.OpcBaryF); err != nil {
					return err
				}
				inst := c.shader.Instr(h)
				inst.AddReg(r+j, flags)
				inst.AddReg(0, ir3.RegImmed).IImm = int32(desc.Inloc + j - firstInloc)
				src := inst.AddReg(ir3.RegID(0, 0), ir3.RegSSA)
				src.WrMask = 0x3
				src.Instr = c.fragPos
			} else {
				h = c.createInput(c.root, ir3.NoInstr, n)
			}
			root.Inputs.Set(n, h)
		}
	}
	return nil
}

func (c *compiler) declareOutput(decl *tgsi.Declaration) error {
	if decl.Semantic == nil {
		return c.errorf(ErrInvalidSemantic, "output OUT[%d] has no semantic", decl.First)
	}
	sem := *decl.Semantic
	base := c.ns.Base[tgsi.FileOutput]
	var comp uint32

	if c.kind == tgsi.ProcessorVertex {
		switch sem.Name {
		case tgsi.SemanticPosition:
			c.state.WritesPos = true
		case tgsi.SemanticPSize, tgsi.SemanticColor, tgsi.SemanticGeneric,
			tgsi.SemanticFog, tgsi.SemanticTexCoord:
		default:
			return c.errorf(ErrInvalidSemantic, "unknown VS semantic name: %s", sem.Name)
		}
	} else {
		switch sem.Name {
		case tgsi.SemanticPosition:
			comp = 2 // tgsi writes depth to .z
			c.state.WritesPos = true
		case tgsi.SemanticColor:
		default:
			return c.errorf(ErrInvalidSemantic, "unknown FS semantic name: %s", sem.Name)
		}
	}

	c.log.Debug("decl out", "semantic", sem.Name, "reg", fmt.Sprintf("r%d", decl.First+base))

	root := c.shader.Block(c.root)
	for i := decl.First; i <= decl.Last; i++ {
		c.state.Outputs = append(c.state.Outputs, OutputDesc{
			Semantic: sem,
			Index:    i,
			Regid:    ir3.RegID(i+base, comp),
		})

		// a zero placeholder keeps unwritten outputs defined
		for j := uint32(0); j < 4; j++ {
			n := ir3.RegID(i, j)
			if !root.Outputs.InRange(n) {
				return c.errorf(ErrInternal, "output OUT[%d] outside scanned range", i)
			}
			root.Outputs.Set(n, c.createImmed(0.0))
		}
	}
	return nil
}

func (c *compiler) dump(w io.Writer, stage string) error {
	if w == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "; after %s\n", stage); err != nil {
		return err
	}
	return ir3.Dump(w, c.shader)
}

func (c *compiler) errorf(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{
		Kind:        kind,
		Message:     fmt.Sprintf(format, args...),
		Instruction: c.instrIndex,
	}
}

func (c *compiler) ftype() ir3.Type {
	if c.half {
		return ir3.TypeF16
	}
	return ir3.TypeF32
}

func (c *compiler) utype() ir3.Type {
	if c.half {
		return ir3.TypeU16
	}
	return ir3.TypeU32
}

func fui(f float32) uint32 {
	return math.Float32bits(f)
}
