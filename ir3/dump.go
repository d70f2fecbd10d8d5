package ir3

import (
	"fmt"
	"io"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/samber/lo"
)

// FormatRegister renders an operand the way the listing prints it.
func FormatRegister(r *Register) string {
	var sb strings.Builder
	if r.Flags&RegNegate != 0 {
		sb.WriteByte('-')
	}
	if r.Flags&RegAbs != 0 {
		sb.WriteByte('|')
	}

	switch {
	case r.Flags&RegImmed != 0:
		if r.FImm != 0 || r.IImm == 0 {
			fmt.Fprintf(&sb, "(%g)", r.FImm)
		} else {
			fmt.Fprintf(&sb, "(%d)", r.IImm)
		}
	case r.Flags&RegSSA != 0:
		if r.Instr == NoInstr {
			sb.WriteString("_")
		} else {
			fmt.Fprintf(&sb, "%%%d", r.Instr)
		}
	default:
		prefix := "r"
		switch {
		case r.Flags&RegConst != 0:
			prefix = "c"
		case r.Flags&RegHalf != 0:
			prefix = "hr"
		}
		if r.Flags&RegRelativ != 0 {
			fmt.Fprintf(&sb, "%s<a0.x + %d>", prefix, r.RegNum())
		} else {
			fmt.Fprintf(&sb, "%s%d.%c", prefix, r.RegNum(), "xyzw"[r.Comp()])
		}
	}

	if r.Flags&RegAbs != 0 {
		sb.WriteByte('|')
	}
	return sb.String()
}

// FormatInstr renders one instruction as a single listing line.
func FormatInstr(s *Shader, h InstrHandle) string {
	inst := s.Instr(h)
	if inst == nil {
		return fmt.Sprintf("%%%d: <invalid>", h)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%%%d: %s", h, inst.Opc)
	switch inst.Category {
	case Cat1:
		fmt.Fprintf(&sb, ".%s%s", inst.Cat1.SrcType, inst.Cat1.DstType)
	case Cat2:
		if inst.Opc == OpcCmpsF || inst.Opc == OpcCmpsS || inst.Opc == OpcCmpsU {
			fmt.Fprintf(&sb, ".%s", inst.Cat2.Condition)
		}
	case Cat5:
		fmt.Fprintf(&sb, ".%s", inst.Cat5.Type)
		if inst.Flags&Instr3D != 0 {
			sb.WriteString(".3d")
		}
		if inst.Flags&InstrP != 0 {
			sb.WriteString(".p")
		}
	case CatMeta:
		switch inst.Opc {
		case OpcMetaFO:
			fmt.Fprintf(&sb, ".%d", inst.FO.Off)
		case OpcMetaInput, OpcMetaOutput:
			fmt.Fprintf(&sb, "[b%d]", inst.InOut.Block)
		case OpcMetaFlow:
			fmt.Fprintf(&sb, " if=b%d", inst.Flow.IfBlock)
			if inst.Flow.ElseBlock != NoBlock {
				fmt.Fprintf(&sb, " else=b%d", inst.Flow.ElseBlock)
			}
		}
	}

	for i := range inst.Regs {
		if i == 0 {
			sb.WriteByte(' ')
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(FormatRegister(&inst.Regs[i]))
	}
	if inst.Category == Cat5 {
		fmt.Fprintf(&sb, ", s#%d, t#%d", inst.Cat5.Samp, inst.Cat5.Tex)
	}
	return sb.String()
}

// Dump writes a listing of every block, outermost first, in creation order.
func Dump(w io.Writer, s *Shader) error {
	for bh := 0; bh < s.NumBlocks(); bh++ {
		b := s.Block(BlockHandle(bh))
		header := fmt.Sprintf("block b%d", bh)
		if !b.IsRoot() {
			header += fmt.Sprintf(" (parent b%d)", b.Parent)
		}
		if _, err := fmt.Fprintf(w, "%s:\n", header); err != nil {
			return err
		}
		for _, h := range b.Instrs {
			if _, err := fmt.Fprintf(w, "\t%s\n", FormatInstr(s, h)); err != nil {
				return err
			}
		}
		if len(b.Exits) > 0 {
			exits := lo.Map(b.Exits, func(h InstrHandle, _ int) string {
				return fmt.Sprintf("%%%d", h)
			})
			if _, err := fmt.Fprintf(w, "\texits: %s\n", strings.Join(exits, ", ")); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteDot writes the SSA graph in graphviz form, one cluster per block.
func WriteDot(w io.Writer, s *Shader, name string) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "digraph %q {\n", name)
	sb.WriteString("\tnode [shape=record, fontname=monospace];\n")

	for bh := 0; bh < s.NumBlocks(); bh++ {
		b := s.Block(BlockHandle(bh))
		fmt.Fprintf(&sb, "\tsubgraph cluster_b%d {\n\t\tlabel=\"b%d\";\n", bh, bh)
		for _, h := range b.Instrs {
			label := strings.NewReplacer("|", "\\|", "<", "\\<", ">", "\\>", "{", "\\{", "}", "\\}", "\"", "\\\"").
				Replace(FormatInstr(s, h))
			fmt.Fprintf(&sb, "\t\ti%d [label=\"%s\"];\n", h, label)
		}
		sb.WriteString("\t}\n")
	}

	for h := 0; h < s.NumInstrs(); h++ {
		inst := s.Instr(InstrHandle(h))
		links := lo.Filter(inst.Srcs(), func(r Register, _ int) bool {
			return r.IsSSA() && r.Instr != NoInstr
		})
		for _, r := range links {
			fmt.Fprintf(&sb, "\ti%d -> i%d;\n", r.Instr, h)
		}
	}
	sb.WriteString("}\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

var spewConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Sdump returns a deep dump of v, for debugging arena contents.
func Sdump(v ...interface{}) string {
	return spewConfig.Sdump(v...)
}

// Spew returns a deep dump of the whole arena.
func (s *Shader) Spew() string {
	return Sdump(s.instrs, s.blocks)
}
