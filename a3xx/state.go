// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package a3xx

import (
	"math/bits"

	"github.com/samber/lo"

	"github.com/gogpu/fd3c/ir3"
	"github.com/gogpu/fd3c/tgsi"
)

// InputDesc describes one declared vec4 input.
type InputDesc struct {
	Semantic tgsi.Semantic
	// Index is the IN[] register.
	Index uint32
	// Regid is the native scalar register of component x.
	Regid    uint32
	Compmask uint8
	// Inloc is the varying linkage offset.
	Inloc       uint32
	Interpolate tgsi.Interpolation
}

// OutputDesc describes one declared vec4 output.
type OutputDesc struct {
	Semantic tgsi.Semantic
	// Index is the OUT[] register.
	Index uint32
	Regid uint32
}

// ShaderState is the per-shader state consumed by the driver: linkage
// descriptors and the immediate table.
type ShaderState struct {
	Kind          tgsi.Processor
	HalfPrecision bool

	Inputs  []InputDesc
	Outputs []OutputDesc

	// Immediates are the vec4 groups loaded into the constant file starting
	// at register FirstImmediate.
	Immediates      [][4]uint32
	ImmediatesCount int
	FirstImmediate  uint32

	SamplersCount int
	// TotalIn is the number of input components fetched.
	TotalIn   int
	WritesPos bool
}

// fixupLinkage rewrites input and output registers from the allocated
// graph. Some or all components of an input may be unused.
func (st *ShaderState) fixupLinkage(s *ir3.Shader, root *ir3.Block) {
	for i := range st.Outputs {
		out := &st.Outputs[i]
		h := root.Outputs.Get(ir3.RegID(out.Index, 0))
		if inst := s.Instr(h); inst != nil && inst.Dst() != nil {
			out.Regid = inst.Dst().Num
		}
		// tgsi writes depth to .z, the hardware takes the scalar register
		if st.Kind == tgsi.ProcessorFragment && out.Semantic.Name == tgsi.SemanticPosition {
			out.Regid += 2
		}
	}

	for i := range st.Inputs {
		in := &st.Inputs[i]
		in.Regid = ^uint32(0)
		in.Compmask = 0
		for j := 0; j < 4; j++ {
			inst := s.Instr(root.Inputs.Get(ir3.RegID(in.Index, uint32(j))))
			if inst == nil {
				continue
			}
			in.Compmask |= 1 << j
			in.Regid = inst.Dst().Num - uint32(j)
		}
	}

	// fragment shaders always get full vec4s, vertex shaders must match
	// the number of components actually fetched
	if st.Kind == tgsi.ProcessorVertex {
		st.TotalIn = lo.SumBy(st.Inputs, func(in InputDesc) int {
			return bits.OnesCount8(in.Compmask)
		})
	}
}
