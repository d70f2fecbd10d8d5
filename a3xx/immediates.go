// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package a3xx

import (
	"fmt"

	"github.com/gogpu/fd3c/tgsi"
)

// MaxImmediates is the number of vec4 immediate groups a shader may use.
const MaxImmediates = 64

const signBit = 0x80000000

// Slot is an interned scalar: component Component of group Index, read
// negated when Negate is set.
type Slot struct {
	Index     int
	Component tgsi.Swizzle
	Negate    bool
}

// ImmediatePool is the shader's immediate table. Groups declared by the
// program come first; compiler generated scalars are packed after them.
type ImmediatePool struct {
	groups    [][4]uint32
	reserved  int
	declared  int
	used      int
	generated int
}

// NewImmediatePool returns a pool that reserves the first declared groups
// for IMM[] blocks of the program.
func NewImmediatePool(declared int) (*ImmediatePool, error) {
	if declared > MaxImmediates {
		return nil, NewError(ErrResourceExhausted,
			fmt.Sprintf("%d immediates declared, limit is %d", declared, MaxImmediates))
	}
	return &ImmediatePool{
		groups:   make([][4]uint32, declared, MaxImmediates),
		reserved: declared,
		used:     4 * declared,
	}, nil
}

// Declare stores the next program immediate block.
func (p *ImmediatePool) Declare(values [4]uint32) error {
	if p.declared >= MaxImmediates {
		return NewError(ErrResourceExhausted, "immediate table full")
	}
	if p.declared >= p.reserved {
		if p.generated > 0 {
			return NewError(ErrInternal, "immediate declared after generated immediates")
		}
		p.groups = append(p.groups, [4]uint32{})
		p.reserved++
		p.used = 4 * len(p.groups)
	}
	p.groups[p.declared] = values
	p.declared++
	return nil
}

// Intern returns the slot holding bits, or bits with the sign flipped, and
// appends a new scalar if neither is present. Reserved groups whose IMM[]
// block has not been declared yet hold no values and are never matched.
func (p *ImmediatePool) Intern(bits uint32) (Slot, error) {
	spans := [2][2]int{{0, 4 * p.declared}, {4 * p.reserved, p.used}}
	for _, span := range spans {
		for i := span[0]; i < span[1]; i++ {
			switch p.groups[i/4][i%4] {
			case bits:
				return Slot{Index: i / 4, Component: tgsi.Swizzle(i % 4)}, nil
			case bits ^ signBit:
				return Slot{Index: i / 4, Component: tgsi.Swizzle(i % 4), Negate: true}, nil
			}
		}
	}

	i := p.used
	if i/4 >= MaxImmediates {
		return Slot{}, NewError(ErrResourceExhausted,
			fmt.Sprintf("immediate table full (%d groups)", MaxImmediates))
	}
	if i/4 == len(p.groups) {
		p.groups = append(p.groups, [4]uint32{})
	}
	p.groups[i/4][i%4] = bits
	p.used++
	p.generated++
	return Slot{Index: i / 4, Component: tgsi.Swizzle(i % 4)}, nil
}

// Count returns the number of vec4 groups in use.
func (p *ImmediatePool) Count() int {
	return (p.used + 3) / 4
}

// Groups returns the groups in use.
func (p *ImmediatePool) Groups() [][4]uint32 {
	return p.groups[:p.Count()]
}
