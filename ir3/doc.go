// Package ir3 defines the native instruction graph produced by the a3xx
// compiler.
//
// The graph lives in a Shader arena. Instructions and blocks are addressed by
// InstrHandle and BlockHandle and are never freed individually; dropping the
// Shader releases everything.
//
// # Structure
//
// Each Instruction has a Category deciding its encoding family:
//   - CatMeta: SSA bookkeeping (meta:in, meta:out, meta:phi, meta:fi, meta:fo, meta:flow)
//   - Cat0: flow control (end, kill)
//   - Cat1: move and convert
//   - Cat2: two-source ALU
//   - Cat3: three-source ALU (mad, sel)
//   - Cat4: transcendental
//   - Cat5: texture sample
//
// Regs[0] is the destination operand. Source operands either name a
// register (RegConst, RegImmed, relative) or link to the producing
// instruction (RegSSA).
//
// Blocks form a tree: the root block holds the real input and temporary
// files, nested blocks are the arms of a conditional. Each block keeps
// ProducerTables mapping scalar register ids to their last writer.
//
// # Debugging
//
// Dump prints a per-block listing, WriteDot a graphviz graph and Validate
// checks handles and meta instruction shapes.
package ir3
