// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package a3xx

import (
	"testing"

	"github.com/gogpu/fd3c/ir3"
	"github.com/gogpu/fd3c/tgsi"
)

const compareHeader = `VERT
DCL IN[0..2]
DCL OUT[0], POSITION
DCL TEMP[0]
`

func TestCompare_SetOnGreaterEqual(t *testing.T) {
	res := compile(t, compareHeader+"  0: SGE TEMP[0].x, IN[0].xxxx, IN[1].xxxx\n  1: END\n")
	s := res.Shader

	cmps := ofOpc(s, res.Root, ir3.OpcCmpsF)
	if len(cmps) != 4 {
		t.Fatalf("got %d cmps.f, want 4", len(cmps))
	}
	for _, h := range cmps {
		c := s.Instr(h)
		if c.Cat2.Condition != ir3.CondGE {
			t.Errorf("condition = %s, want ge", c.Cat2.Condition)
		}
		if c.Regs[1].Instr != input(res, 0, 0) || c.Regs[2].Instr != input(res, 1, 0) {
			t.Errorf("cmps.f reads %%%d, %%%d, want IN[0].x, IN[1].x", c.Regs[1].Instr, c.Regs[2].Instr)
		}
	}

	if n := len(ofOpc(s, res.Root, ir3.OpcSelF32)); n != 0 {
		t.Errorf("got %d sel.f32, want none", n)
	}
	if n := len(ofOpc(s, res.Root, ir3.OpcAddS)); n != 0 {
		t.Errorf("got %d add.s, want none", n)
	}

	cov := s.Instr(temp(res, 0, 0))
	if cov.Opc != ir3.OpcMov || cov.Cat1.SrcType != ir3.TypeU32 || cov.Cat1.DstType != ir3.TypeF32 {
		t.Fatalf("TEMP[0].x = %s, want cov.u32f32", ir3.FormatInstr(s, temp(res, 0, 0)))
	}
	if cov.Regs[1].Instr != cmps[0] {
		t.Errorf("cov reads %%%d, want the x compare %%%d", cov.Regs[1].Instr, cmps[0])
	}
	if temp(res, 0, 1) != ir3.NoInstr {
		t.Error("TEMP[0].y written outside the write mask")
	}
}

func TestCompare_SetOnNotEqual(t *testing.T) {
	res := compile(t, compareHeader+"  0: SNE TEMP[0].x, IN[0].xxxx, IN[1].xxxx\n  1: END\n")
	s := res.Shader

	cmps := ofOpc(s, res.Root, ir3.OpcCmpsF)
	if len(cmps) != 4 {
		t.Fatalf("got %d cmps.f, want 4", len(cmps))
	}
	c := s.Instr(cmps[0])
	if c.Cat2.Condition != ir3.CondEQ {
		t.Errorf("condition = %s, want eq", c.Cat2.Condition)
	}
	// operands swapped
	if c.Regs[1].Instr != input(res, 1, 0) || c.Regs[2].Instr != input(res, 0, 0) {
		t.Errorf("cmps.f reads %%%d, %%%d, want IN[1].x, IN[0].x", c.Regs[1].Instr, c.Regs[2].Instr)
	}

	adds := ofOpc(s, res.Root, ir3.OpcAddS)
	if len(adds) != 4 {
		t.Fatalf("got %d add.s, want 4", len(adds))
	}
	for i, h := range adds {
		a := s.Instr(h)
		if a.Regs[1].Instr != cmps[i] || a.Regs[2].Flags&ir3.RegImmed == 0 || a.Regs[2].IImm != -1 {
			t.Errorf("add.s %d = %s, want add.s of compare %d with -1", i, ir3.FormatInstr(s, h), i)
		}
	}

	sel := s.Instr(temp(res, 0, 0))
	if sel.Opc != ir3.OpcSelF32 {
		t.Fatalf("TEMP[0].x = %s, want sel.f32", sel.Opc)
	}
	if v := immValue(t, res, &sel.Regs[1]); v != fui(0.0) {
		t.Errorf("sel src0 = %#x, want 0.0", v)
	}
	if sel.Regs[2].Instr != adds[0] {
		t.Errorf("sel src1 = %%%d, want the add.s %%%d", sel.Regs[2].Instr, adds[0])
	}
	if v := immValue(t, res, &sel.Regs[3]); v != fui(1.0) {
		t.Errorf("sel src2 = %#x, want 1.0", v)
	}
}

func TestCompare_Lowering(t *testing.T) {
	tests := []struct {
		op      string
		cond    ir3.Cond
		swapped bool
		sel     bool
	}{
		{"SEQ", ir3.CondEQ, true, false},
		{"SNE", ir3.CondEQ, true, true},
		{"SGE", ir3.CondGE, false, false},
		{"SLE", ir3.CondGE, true, false},
		{"SGT", ir3.CondGE, true, true},
		{"SLT", ir3.CondGE, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			res := compile(t, compareHeader+"  0: "+tt.op+" TEMP[0], IN[0], IN[1]\n  1: END\n")
			s := res.Shader

			a, b := input(res, 0, 0), input(res, 1, 0)
			if tt.swapped {
				a, b = b, a
			}
			c := s.Instr(ofOpc(s, res.Root, ir3.OpcCmpsF)[0])
			if c.Cat2.Condition != tt.cond || c.Regs[1].Instr != a || c.Regs[2].Instr != b {
				t.Errorf("compare = %s", ir3.FormatInstr(s, ofOpc(s, res.Root, ir3.OpcCmpsF)[0]))
			}

			last := s.Instr(temp(res, 0, 3))
			if tt.sel && last.Opc != ir3.OpcSelF32 {
				t.Errorf("TEMP[0].w = %s, want sel.f32", last.Opc)
			}
			if !tt.sel && last.Opc != ir3.OpcMov {
				t.Errorf("TEMP[0].w = %s, want cov", last.Opc)
			}
		})
	}
}

func TestCompare_Cmp(t *testing.T) {
	res := compile(t, compareHeader+"  0: CMP TEMP[0].x, IN[0].xxxx, IN[1].xxxx, IN[2].xxxx\n  1: END\n")
	s := res.Shader

	c := s.Instr(ofOpc(s, res.Root, ir3.OpcCmpsF)[0])
	if c.Cat2.Condition != ir3.CondGE || c.Regs[1].Instr != input(res, 0, 0) {
		t.Errorf("compare = %s, want cmps.f.ge on IN[0].x", ir3.FormatInstr(s, ofOpc(s, res.Root, ir3.OpcCmpsF)[0]))
	}
	if immValue(t, res, &c.Regs[2]) != fui(0.0) {
		t.Error("compare is not against 0.0")
	}

	sel := s.Instr(temp(res, 0, 0))
	if sel.Opc != ir3.OpcSelF32 {
		t.Fatalf("TEMP[0].x = %s, want sel.f32", sel.Opc)
	}
	if sel.Regs[1].Instr != input(res, 2, 0) || sel.Regs[3].Instr != input(res, 1, 0) {
		t.Errorf("sel picks %%%d / %%%d, want IN[2].x / IN[1].x", sel.Regs[1].Instr, sel.Regs[3].Instr)
	}
	if s.Instr(sel.Regs[2].Instr).Opc != ir3.OpcAddS {
		t.Error("sel condition is not the add.s")
	}
}

func TestSaturate(t *testing.T) {
	tests := []struct {
		name     string
		suffix   string
		min, max float32
	}{
		{"sat", "_SAT", 0.0, 1.0},
		{"ssat", "_SSAT", -1.0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := compile(t, "VERT\nDCL IN[0]\nDCL TEMP[0]\n  0: MOV"+tt.suffix+" TEMP[0], IN[0]\n")
			s := res.Shader
			instrs := s.Block(res.Root).Instrs

			// mov x4, then max.f x4, then min.f x4 at the end of the block
			if len(instrs) < 12 {
				t.Fatalf("got %d instructions", len(instrs))
			}
			tail := instrs[len(instrs)-12:]
			for i, h := range tail {
				want := [3]ir3.Opc{ir3.OpcMov, ir3.OpcMaxF, ir3.OpcMinF}[i/4]
				if got := s.Instr(h).Opc; got != want {
					t.Fatalf("instruction %d of the tail is %s, want %s", i, got, want)
				}
			}

			maxes, mins := tail[4:8], tail[8:12]
			for j := 0; j < 4; j++ {
				mx, mn := s.Instr(maxes[j]), s.Instr(mins[j])
				if mx.Regs[1].Instr != tail[j] {
					t.Errorf("max.f %d does not clamp the mov", j)
				}
				if mn.Regs[1].Instr != maxes[j] {
					t.Errorf("min.f %d does not clamp the max.f", j)
				}
				if v := immValue(t, res, &mx.Regs[2]); v != fui(tt.min) {
					t.Errorf("max.f %d bound = %#x, want %v", j, v, tt.min)
				}
				if v := immValue(t, res, &mn.Regs[2]); v != fui(tt.max) {
					t.Errorf("min.f %d bound = %#x, want %v", j, v, tt.max)
				}
				// bounds are pooled, every lane reads the same slot
				if mx.Regs[2].Num != s.Instr(maxes[0]).Regs[2].Num || mn.Regs[2].Num != s.Instr(mins[0]).Regs[2].Num {
					t.Errorf("lane %d reads a different bound slot", j)
				}
				if temp(res, 0, uint32(j)) != mins[j] {
					t.Errorf("TEMP[0].%d is not the clamped value", j)
				}
			}
			if res.State.ImmediatesCount != 1 {
				t.Errorf("ImmediatesCount = %d, want 1", res.State.ImmediatesCount)
			}
		})
	}
}

func TestMov_Negate(t *testing.T) {
	res := compile(t, "VERT\nDCL IN[0]\nDCL TEMP[0]\n  0: MOV TEMP[0].xy, -IN[0].yxzw\n")
	s := res.Shader

	adds := ofOpc(s, res.Root, ir3.OpcAddF)
	if len(adds) != 2 {
		t.Fatalf("got %d add.f, want 2", len(adds))
	}
	for lane, h := range adds {
		a := s.Instr(h)
		want := input(res, 0, uint32(1-lane))
		if a.Regs[1].Instr != want || a.Regs[1].Flags&ir3.RegNegate == 0 {
			t.Errorf("add.f %d src0 = %s, want -IN[0].%d", lane, ir3.FormatRegister(&a.Regs[1]), 1-lane)
		}
		if immValue(t, res, &a.Regs[2]) != fui(0.0) {
			t.Errorf("add.f %d does not add 0.0", lane)
		}
	}
	if n := len(ofOpc(s, res.Root, ir3.OpcMov)); n != 0 {
		t.Errorf("got %d mov for a negated MOV", n)
	}
}

func TestMov_AbsUsesAbsneg(t *testing.T) {
	res := compile(t, "VERT\nDCL IN[0]\nDCL TEMP[0]\n  0: MOV TEMP[0].x, |IN[0].xxxx|\n")
	h := temp(res, 0, 0)
	a := res.Shader.Instr(h)
	if a.Opc != ir3.OpcAbsnegF || a.Regs[1].Flags&ir3.RegAbs == 0 {
		t.Errorf("TEMP[0].x = %s, want absneg.f |IN[0].x|", ir3.FormatInstr(res.Shader, h))
	}
}

func TestCat2(t *testing.T) {
	tests := []struct {
		op    string
		opc   ir3.Opc
		flags [2]ir3.RegFlags
	}{
		{"ADD", ir3.OpcAddF, [2]ir3.RegFlags{0, 0}},
		{"SUB", ir3.OpcAddF, [2]ir3.RegFlags{0, ir3.RegNegate}},
		{"MUL", ir3.OpcMulF, [2]ir3.RegFlags{0, 0}},
		{"MIN", ir3.OpcMinF, [2]ir3.RegFlags{0, 0}},
		{"MAX", ir3.OpcMaxF, [2]ir3.RegFlags{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			res := compile(t, "VERT\nDCL IN[0..1]\nDCL TEMP[0]\n  0: "+tt.op+" TEMP[0].y, IN[0], IN[1]\n")
			h := temp(res, 0, 1)
			inst := res.Shader.Instr(h)
			if inst.Opc != tt.opc {
				t.Fatalf("TEMP[0].y = %s, want %s", inst.Opc, tt.opc)
			}
			for i, want := range tt.flags {
				if got := inst.Regs[i+1].Flags &^ ir3.RegSSA; got != want {
					t.Errorf("src%d flags = %#x, want %#x", i, got, want)
				}
				if inst.Regs[i+1].Instr != input(res, uint32(i), 1) {
					t.Errorf("src%d does not read IN[%d].y", i, i)
				}
			}
		})
	}
}

func TestCat2_Unary(t *testing.T) {
	tests := []struct {
		op    string
		opc   ir3.Opc
		flags ir3.RegFlags
	}{
		{"ABS", ir3.OpcAbsnegF, ir3.RegAbs},
		{"FLR", ir3.OpcFloorF, 0},
		{"TRUNC", ir3.OpcTruncF, 0},
		{"ROUND", ir3.OpcRndneF, 0},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			res := compile(t, "VERT\nDCL IN[0]\nDCL TEMP[0]\n  0: "+tt.op+" TEMP[0].x, IN[0]\n")
			inst := res.Shader.Instr(temp(res, 0, 0))
			if inst.Opc != tt.opc || len(inst.Srcs()) != 1 {
				t.Fatalf("TEMP[0].x = %s", ir3.FormatInstr(res.Shader, temp(res, 0, 0)))
			}
			if got := inst.Regs[1].Flags &^ ir3.RegSSA; got != tt.flags {
				t.Errorf("src flags = %#x, want %#x", got, tt.flags)
			}
		})
	}
}

func TestCat2_TwoConstants(t *testing.T) {
	res := compile(t, "VERT\nDCL CONST[0..1]\nDCL TEMP[0]\n  0: ADD TEMP[0].x, CONST[0], CONST[1]\n")
	add := res.Shader.Instr(temp(res, 0, 0))
	if add.Regs[1].Flags&ir3.RegConst != 0 {
		t.Error("src0 still reads the constant file")
	}
	if mov := res.Shader.Instr(add.Regs[1].Instr); mov == nil || mov.Opc != ir3.OpcMov {
		t.Error("src0 is not copied to a temporary")
	}
	if add.Regs[2].Flags&ir3.RegConst == 0 {
		t.Error("src1 should stay a constant")
	}
}

func TestCat3_Mad(t *testing.T) {
	tests := []struct {
		name   string
		srcs   string
		unconst bool
	}{
		{"registers", "IN[0], IN[1], IN[2]", false},
		{"const src1 swapped", "IN[0], CONST[0], IN[2]", false},
		{"two consts", "CONST[0], CONST[1], IN[2]", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := compile(t, "VERT\nDCL IN[0..2]\nDCL CONST[0..1]\nDCL TEMP[0]\n  0: MAD TEMP[0].x, "+tt.srcs+"\n")
			s := res.Shader
			mad := s.Instr(temp(res, 0, 0))
			if mad.Opc != ir3.OpcMadF32 {
				t.Fatalf("TEMP[0].x = %s, want mad.f32", mad.Opc)
			}
			if mad.Regs[2].Flags&ir3.RegConst != 0 {
				t.Errorf("src1 = %s reads the constant file", ir3.FormatRegister(&mad.Regs[2]))
			}
			if tt.unconst {
				if s.Instr(mad.Regs[2].Instr).Opc != ir3.OpcMov {
					t.Error("src1 constant not copied to a temporary")
				}
			}
			if mad.Regs[3].Instr != input(res, 2, 0) {
				t.Error("src2 does not read IN[2].x")
			}
		})
	}
}

func TestCat4(t *testing.T) {
	res := compile(t, "VERT\nDCL CONST[0]\nDCL TEMP[0]\n  0: RCP TEMP[0].xy, CONST[0].yyyy\n")
	s := res.Shader

	rcps := ofOpc(s, res.Root, ir3.OpcRcp)
	if len(rcps) != 2 {
		t.Fatalf("got %d rcp, want 2", len(rcps))
	}
	for lane, h := range rcps {
		r := s.Instr(h)
		if r.Dst().Comp() != uint32(lane) {
			t.Errorf("rcp %d writes lane %d", lane, r.Dst().Comp())
		}
		mov := s.Instr(r.Regs[1].Instr)
		if mov == nil || mov.Opc != ir3.OpcMov || mov.Regs[1].Num != ir3.RegID(0, 1) {
			t.Errorf("rcp %d source = %s, want a copy of c0.y", lane, ir3.FormatRegister(&r.Regs[1]))
		}
	}
	if s.Instr(rcps[0]).Regs[1].Instr != s.Instr(rcps[1]).Regs[1].Instr {
		t.Error("lanes read different scalars")
	}
}

// TestSelfAlias checks instructions whose destination is also a source
// with the identity swizzle and a full write mask. Every lane must read
// TEMP[0] as the previous instruction left it.
func TestSelfAlias(t *testing.T) {
	tests := []struct {
		name  string
		inst  string
		opc   ir3.Opc
		src   int
		splat bool // every lane reads component x
	}{
		{"rcp", "RCP TEMP[0], TEMP[0]", ir3.OpcRcp, 1, true},
		{"sin", "SIN TEMP[0], TEMP[0]", ir3.OpcSin, 1, true},
		{"add", "ADD TEMP[0], TEMP[0], IN[1]", ir3.OpcAddF, 1, false},
		{"abs", "ABS TEMP[0], TEMP[0]", ir3.OpcAbsnegF, 1, false},
		{"mad src0", "MAD TEMP[0], TEMP[0], IN[1], TEMP[0]", ir3.OpcMadF32, 1, false},
		{"mad src2", "MAD TEMP[0], TEMP[0], IN[1], TEMP[0]", ir3.OpcMadF32, 3, false},
		{"mov", "MOV TEMP[0], TEMP[0]", ir3.OpcMov, 1, false},
		{"slt", "SLT TEMP[0], TEMP[0], IN[1]", ir3.OpcCmpsF, 1, false},
		{"clamp", "CLAMP TEMP[0], TEMP[0], IN[1], IN[2]", ir3.OpcMaxF, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := compile(t, "VERT\nDCL IN[0..2]\nDCL TEMP[0]\n  0: MOV TEMP[0], IN[0]\n  1: "+tt.inst+"\n")
			s := res.Shader

			movs := ofOpc(s, res.Root, ir3.OpcMov)
			if len(movs) < 4 {
				t.Fatalf("got %d mov, want the 4 of instruction 0", len(movs))
			}
			prior := movs[:4]

			hs := ofOpc(s, res.Root, tt.opc)
			if len(hs) < 4 {
				t.Fatalf("got %d %s, want 4", len(hs), tt.opc)
			}
			for _, h := range hs[len(hs)-4:] {
				inst := s.Instr(h)
				lane := inst.Dst().Comp()
				want := prior[lane]
				if tt.splat {
					want = prior[0]
				}
				if got := inst.Regs[tt.src].Instr; got != want {
					t.Errorf("lane %d source %d = %s, want the mov %%%d", lane, tt.src,
						ir3.FormatRegister(&inst.Regs[tt.src]), want)
				}
			}
		})
	}
}

func TestMov_NegateBeforeImmediateBlock(t *testing.T) {
	// the zero of the negating add.f is interned before IMM[0] is declared
	res := compile(t, `VERT
DCL IN[0]
DCL TEMP[0..1]
  0: MOV TEMP[0].x, -IN[0].xxxx
IMM[0] FLT32 { 5.0000, 6.0000, 7.0000, 8.0000 }
  1: MOV TEMP[1].x, IMM[0].xxxx
  2: END
`)
	st := res.State
	if st.Immediates[0] != [4]uint32{fui(5.0), fui(6.0), fui(7.0), fui(8.0)} {
		t.Errorf("IMM[0] = %#x", st.Immediates[0])
	}

	adds := ofOpc(res.Shader, res.Root, ir3.OpcAddF)
	if len(adds) != 1 {
		t.Fatalf("got %d add.f, want 1", len(adds))
	}
	zero := &res.Shader.Instr(adds[0]).Regs[2]
	if got := immValue(t, res, zero); got != fui(0.0) {
		t.Errorf("add.f adds %#x, want 0.0", got)
	}
	if zero.RegNum() == st.FirstImmediate {
		t.Errorf("generated 0.0 shares the IMM[0] group: %s", ir3.FormatRegister(zero))
	}
}

func TestSample(t *testing.T) {
	tests := []struct {
		name    string
		inst    string
		flags   ir3.InstrFlags
		srcMask uint8
		movs    int
		samp    uint32
	}{
		{"tex 2d", "TEX TEMP[0], IN[0], SAMP[0], 2D", 0, 0x3, 0, 0},
		{"tex 2d swizzled", "TEX TEMP[0], IN[0].yxzw, SAMP[0], 2D", 0, 0x3, 2, 0},
		{"tex 3d", "TEX TEMP[0], IN[0], SAMP[1], 3D", ir3.Instr3D, 0x7, 0, 1},
		{"txp 2d", "TXP TEMP[0], IN[0], SAMP[0], 2D", ir3.InstrP, 0x7, 3, 0},
		{"txp cube", "TXP TEMP[0], IN[0], SAMP[1], CUBE", ir3.InstrP | ir3.Instr3D, 0xf, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := compile(t, "VERT\nDCL IN[0]\nDCL SAMP[0..1]\nDCL TEMP[0]\n  0: "+tt.inst+"\n")
			s := res.Shader

			sams := ofOpc(s, res.Root, ir3.OpcSam)
			if len(sams) != 1 {
				t.Fatalf("got %d sam, want 1", len(sams))
			}
			sam := s.Instr(sams[0])
			if sam.Flags != tt.flags {
				t.Errorf("flags = %#x, want %#x", sam.Flags, tt.flags)
			}
			if sam.Cat5.Samp != tt.samp || sam.Cat5.Tex != tt.samp || sam.Cat5.Type != ir3.TypeF32 {
				t.Errorf("cat5 = %+v", sam.Cat5)
			}
			if sam.Dst().WrMask != 0xf {
				t.Errorf("dst mask = %#x, want 0xf", sam.Dst().WrMask)
			}
			if sam.Regs[1].WrMask != tt.srcMask {
				t.Errorf("coordinate mask = %#x, want %#x", sam.Regs[1].WrMask, tt.srcMask)
			}
			if got := len(ofOpc(s, res.Root, ir3.OpcMov)); got != tt.movs {
				t.Errorf("got %d coordinate movs, want %d", got, tt.movs)
			}

			for j := uint32(0); j < 4; j++ {
				fo := s.Instr(temp(res, 0, j))
				if fo.Opc != ir3.OpcMetaFO || fo.FO.Off != int(j) || fo.Regs[1].Instr != sams[0] {
					t.Errorf("TEMP[0].%d = %s, want meta:fo.%d of the sample", j, ir3.FormatInstr(s, temp(res, 0, j)), j)
				}
			}
		})
	}
}

func TestSample_TxpMovesW(t *testing.T) {
	res := compile(t, "VERT\nDCL IN[0]\nDCL SAMP[0]\nDCL TEMP[0]\n  0: TXP TEMP[0], IN[0], SAMP[0], 2D\n")
	s := res.Shader

	sam := s.Instr(ofOpc(s, res.Root, ir3.OpcSam)[0])
	coord := s.Instr(sam.Regs[1].Instr)
	if coord.Opc != ir3.OpcMetaFI || len(coord.Srcs()) != 3 {
		t.Fatalf("coordinate = %s", ir3.Sdump(coord))
	}
	for lane, want := range []uint32{0, 1, 3} {
		mov := s.Instr(coord.Srcs()[lane].Instr)
		if mov.Opc != ir3.OpcMov || mov.Regs[1].Instr != input(res, 0, want) {
			t.Errorf("coordinate lane %d does not copy IN[0].%d", lane, want)
		}
	}
}

func TestArl(t *testing.T) {
	res := compile(t, "VERT\nDCL IN[0]\nDCL ADDR[0]\n  0: ARL ADDR[0].x, IN[0].yyyy\n")
	s := res.Shader
	instrs := s.Block(res.Root).Instrs
	tail := instrs[len(instrs)-3:]

	cov := s.Instr(tail[0])
	if cov.Opc != ir3.OpcMov || cov.Cat1.DstType != ir3.TypeS16 || cov.Dst().Flags&ir3.RegHalf == 0 {
		t.Errorf("first = %s, want cov.f32s16 into a half register", ir3.FormatInstr(s, tail[0]))
	}
	if cov.Regs[1].Instr != input(res, 0, 1) {
		t.Error("cov does not read IN[0].y")
	}

	shl := s.Instr(tail[1])
	if shl.Opc != ir3.OpcShlB || shl.Regs[1].Instr != tail[0] || shl.Regs[2].IImm != 2 {
		t.Errorf("second = %s, want shl.b of the cov by 2", ir3.FormatInstr(s, tail[1]))
	}

	mova := s.Instr(tail[2])
	if mova.Opc != ir3.OpcMov || mova.Dst().Num != ir3.RegID(regA0, 0) || mova.Regs[1].Instr != tail[1] {
		t.Errorf("third = %s, want a mov to a0.x", ir3.FormatInstr(s, tail[2]))
	}
	if mova.Cat1.SrcType != ir3.TypeS16 || mova.Cat1.DstType != ir3.TypeS16 {
		t.Errorf("mova types = %s%s", mova.Cat1.SrcType, mova.Cat1.DstType)
	}
}

func TestClamp(t *testing.T) {
	res := compile(t, "VERT\nDCL IN[0..2]\nDCL TEMP[0]\n  0: CLAMP TEMP[0].x, IN[0], IN[1], IN[2]\n")
	s := res.Shader

	mn := s.Instr(temp(res, 0, 0))
	if mn.Opc != ir3.OpcMinF || mn.Regs[2].Instr != input(res, 2, 0) {
		t.Fatalf("TEMP[0].x = %s, want min.f against IN[2].x", ir3.FormatInstr(s, temp(res, 0, 0)))
	}
	mx := s.Instr(mn.Regs[1].Instr)
	if mx.Opc != ir3.OpcMaxF || mx.Regs[1].Instr != input(res, 0, 0) || mx.Regs[2].Instr != input(res, 1, 0) {
		t.Errorf("min.f input = %s, want max.f(IN[0].x, IN[1].x)", ir3.Sdump(mx))
	}
}

func TestKillAndEnd(t *testing.T) {
	res := compile(t, "FRAG\nDCL OUT[0], COLOR\n  0: KILL\n  1: END\n")
	s := res.Shader
	if len(ofOpc(s, res.Root, ir3.OpcKill)) != 1 || len(ofOpc(s, res.Root, ir3.OpcEnd)) != 1 {
		t.Error("want one kill and one end")
	}
}

func TestTranslators_Coverage(t *testing.T) {
	for op := tgsi.Opcode(0); op < tgsi.OpCount; op++ {
		tr := translators[op]
		if tr.kind == handleNone {
			continue
		}
		switch tr.kind {
		case handleCat0, handleCat2, handleCat3, handleCat4, handleSample:
			if tr.opc == ir3.OpcNop {
				t.Errorf("%s has no native opcode", op)
			}
		}
	}

	for _, op := range []tgsi.Opcode{tgsi.OpDp3, tgsi.OpDp4, tgsi.OpLit, tgsi.OpPow, tgsi.OpBgnLoop} {
		if translators[op].kind != handleNone {
			t.Errorf("%s unexpectedly translated", op)
		}
	}
}
