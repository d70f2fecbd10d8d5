package ir3

import (
	"fmt"

	"github.com/samber/lo"
)

// ValidationError represents a structural defect in a shader graph.
type ValidationError struct {
	Message string
	// Optional context
	Block BlockHandle
	Instr InstrHandle
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Instr != NoInstr {
		return fmt.Sprintf("instruction %%%d: %s", e.Instr, e.Message)
	}
	if e.Block != NoBlock {
		return fmt.Sprintf("block b%d: %s", e.Block, e.Message)
	}
	return e.Message
}

// metaWithBlock are the meta opcodes that must name their owning block.
var metaWithBlock = []Opc{OpcMetaInput, OpcMetaOutput}

// Validator checks a shader graph for dangling handles and malformed meta
// instructions.
type Validator struct {
	shader *Shader
	errors []ValidationError
}

// Validate checks the graph reachable from root for correctness.
// Returns validation errors if any, or nil if the graph is valid.
func Validate(s *Shader, root BlockHandle) ([]ValidationError, error) {
	if s == nil {
		return nil, fmt.Errorf("shader is nil")
	}
	if s.Block(root) == nil {
		return nil, fmt.Errorf("root block b%d does not exist", root)
	}

	v := &Validator{shader: s}
	if !s.Block(root).IsRoot() {
		v.addBlockError(root, "root block has a parent")
	}
	v.validateBlocks()
	v.validateInstrs()

	if len(v.errors) > 0 {
		return v.errors, nil
	}
	return nil, nil
}

func (v *Validator) validateBlocks() {
	for i := 0; i < v.shader.NumBlocks(); i++ {
		h := BlockHandle(i)
		b := v.shader.Block(h)

		if !b.IsRoot() {
			parent := v.shader.Block(b.Parent)
			switch {
			case parent == nil:
				v.addBlockError(h, fmt.Sprintf("parent b%d does not exist", b.Parent))
			case b.Parent >= h:
				v.addBlockError(h, fmt.Sprintf("parent b%d created after child", b.Parent))
			case parent.Depth+1 != b.Depth:
				v.addBlockError(h, fmt.Sprintf("depth %d, parent depth %d", b.Depth, parent.Depth))
			}
		}

		for _, ih := range b.Instrs {
			inst := v.shader.Instr(ih)
			if inst == nil {
				v.addBlockError(h, fmt.Sprintf("lists missing instruction %%%d", ih))
				continue
			}
			if inst.Block != h {
				v.addBlockError(h, fmt.Sprintf("lists %%%d owned by b%d", ih, inst.Block))
			}
		}

		tables := []struct {
			name  string
			table ProducerTable
		}{
			{"temporary", b.Temporaries},
			{"output", b.Outputs},
			{"input", b.Inputs},
			{"output-input", b.OutputInputs},
		}
		for _, t := range tables {
			for _, n := range t.table.Written() {
				if !v.isValidInstr(t.table[n]) {
					v.addBlockError(h, fmt.Sprintf("%s %d produced by missing instruction %%%d", t.name, n, t.table[n]))
				}
			}
		}

		for i, eh := range b.Exits {
			if !v.isValidInstr(eh) {
				v.addBlockError(h, fmt.Sprintf("exit %d is missing instruction %%%d", i, eh))
			}
		}
		for i, ih := range b.HWInputs {
			if inst := v.shader.Instr(ih); inst == nil || inst.Opc != OpcMetaInput {
				v.addBlockError(h, fmt.Sprintf("hardware input %d is not a meta:in", i))
			}
		}
	}
}

func (v *Validator) validateInstrs() {
	for i := 0; i < v.shader.NumInstrs(); i++ {
		h := InstrHandle(i)
		inst := v.shader.Instr(h)

		if v.shader.Block(inst.Block) == nil {
			v.addInstrError(h, fmt.Sprintf("block b%d does not exist", inst.Block))
		}
		if inst.Opc.Category() != inst.Category {
			v.addInstrError(h, fmt.Sprintf("category %d does not match %s", inst.Category, inst.Opc))
		}

		for j, r := range inst.Srcs() {
			if !r.IsSSA() || r.Instr == NoInstr {
				continue
			}
			switch {
			case !v.isValidInstr(r.Instr):
				v.addInstrError(h, fmt.Sprintf("source %d references missing instruction %%%d", j, r.Instr))
			case r.Instr == h:
				v.addInstrError(h, fmt.Sprintf("source %d references itself", j))
			}
		}

		v.validateMeta(h, inst)
	}
}

func (v *Validator) validateMeta(h InstrHandle, inst *Instruction) {
	if !inst.Opc.IsMeta() {
		return
	}

	srcs := inst.Srcs()
	if lo.Contains(metaWithBlock, inst.Opc) && v.shader.Block(inst.InOut.Block) == nil {
		v.addInstrError(h, fmt.Sprintf("%s names missing block b%d", inst.Opc, inst.InOut.Block))
	}

	switch inst.Opc {
	case OpcMetaPhi:
		if len(srcs) != 3 {
			v.addInstrError(h, fmt.Sprintf("phi has %d sources, want 3", len(srcs)))
			return
		}
		for j, r := range srcs {
			if !r.IsSSA() || r.Instr == NoInstr {
				v.addInstrError(h, fmt.Sprintf("phi source %d is not linked", j))
			}
		}
		if cond := v.shader.Instr(srcs[0].Instr); cond != nil && cond.Opc != OpcMetaFlow {
			v.addInstrError(h, fmt.Sprintf("phi condition is %s, want meta:flow", cond.Opc))
		}
	case OpcMetaFlow:
		if v.shader.Block(inst.Flow.IfBlock) == nil {
			v.addInstrError(h, "flow has no if block")
		}
		if inst.Flow.ElseBlock != NoBlock && v.shader.Block(inst.Flow.ElseBlock) == nil {
			v.addInstrError(h, fmt.Sprintf("flow names missing else block b%d", inst.Flow.ElseBlock))
		}
	case OpcMetaFO:
		if len(srcs) != 1 || !srcs[0].IsSSA() || srcs[0].Instr == NoInstr {
			v.addInstrError(h, "fan-out needs one linked source")
		}
	case OpcMetaFI:
		if len(srcs) == 0 {
			v.addInstrError(h, "fan-in has no sources")
		}
	case OpcMetaOutput:
		if len(srcs) != 1 || !srcs[0].IsSSA() {
			v.addInstrError(h, "meta:out needs one linked source")
		}
	}
}

func (v *Validator) isValidInstr(h InstrHandle) bool {
	return int(h) < v.shader.NumInstrs()
}

func (v *Validator) addBlockError(h BlockHandle, msg string) {
	v.errors = append(v.errors, ValidationError{
		Message: msg,
		Block:   h,
		Instr:   NoInstr,
	})
}

func (v *Validator) addInstrError(h InstrHandle, msg string) {
	v.errors = append(v.errors, ValidationError{
		Message: msg,
		Block:   NoBlock,
		Instr:   h,
	})
}
