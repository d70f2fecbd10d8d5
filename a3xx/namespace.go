// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package a3xx

import (
	"fmt"

	"github.com/gogpu/fd3c/tgsi"
)

// unsupportedIndirect are the files the optimizer cannot track through
// relative addressing.
const unsupportedIndirect = 1<<tgsi.FileTemporary | 1<<tgsi.FileInput |
	1<<tgsi.FileOutput | 1<<tgsi.FileImmediate | 1<<tgsi.FileConstant

// Namespace is the base register of every file in the flat native register
// spaces. Constants and immediates share the constant space; inputs,
// outputs and temporaries share the GPR space.
type Namespace struct {
	Base [tgsi.FileCount]uint32
}

// AllocateNamespace lays out the register files of a shader scanned into
// info. Inputs start at r1 for full precision fragment shaders so the
// varying fetch position in r0.xy is not clobbered.
func AllocateNamespace(info *tgsi.Info, kind tgsi.Processor, half bool) (Namespace, error) {
	var ns Namespace

	if info.UsesIndirect(unsupportedIndirect) {
		var files []string
		for f := tgsi.File(0); f < tgsi.FileCount; f++ {
			if unsupportedIndirect&f.Mask() != 0 && info.UsesIndirect(f.Mask()) {
				files = append(files, f.String())
			}
		}
		return ns, NewError(ErrUnsupportedAddressing,
			fmt.Sprintf("relative addressing of %v", files))
	}

	count := func(f tgsi.File) uint32 {
		return uint32(info.FileMax[f] + 1)
	}

	// Immediates go after constants.
	ns.Base[tgsi.FileConstant] = 0
	ns.Base[tgsi.FileImmediate] = count(tgsi.FileConstant)

	var base uint32
	if kind == tgsi.ProcessorFragment && !half {
		base = 1
	}

	// Temporaries after outputs after inputs.
	ns.Base[tgsi.FileInput] = base
	ns.Base[tgsi.FileOutput] = base + count(tgsi.FileInput)
	ns.Base[tgsi.FileTemporary] = base + count(tgsi.FileInput) + count(tgsi.FileOutput)

	return ns, nil
}

// FirstImmediate returns the constant register holding IMM[0].
func (ns Namespace) FirstImmediate() uint32 {
	return ns.Base[tgsi.FileImmediate]
}
