// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package a3xx

import (
	"errors"
	"testing"

	"github.com/gogpu/fd3c/tgsi"
)

func TestImmediatePool_Intern(t *testing.T) {
	pool, err := NewImmediatePool(0)
	if err != nil {
		t.Fatalf("NewImmediatePool: %v", err)
	}

	one, err := pool.Intern(fui(1.0))
	if err != nil {
		t.Fatalf("Intern(1.0): %v", err)
	}
	again, _ := pool.Intern(fui(1.0))
	if again != one {
		t.Errorf("second Intern(1.0) = %+v, want %+v", again, one)
	}

	neg, _ := pool.Intern(fui(-1.0))
	if neg.Index != one.Index || neg.Component != one.Component || !neg.Negate {
		t.Errorf("Intern(-1.0) = %+v, want negated %+v", neg, one)
	}

	half, _ := pool.Intern(fui(0.5))
	if half.Negate || (half.Index == one.Index && half.Component == one.Component) {
		t.Errorf("Intern(0.5) = %+v reused slot %+v", half, one)
	}
	if got := pool.Count(); got != 1 {
		t.Errorf("Count() = %d, want 1", got)
	}
}

func TestImmediatePool_Packing(t *testing.T) {
	pool, _ := NewImmediatePool(0)

	// New scalars fill consecutive components, then the next group.
	for i := 0; i < 6; i++ {
		s, err := pool.Intern(fui(float32(i + 2)))
		if err != nil {
			t.Fatalf("Intern #%d: %v", i, err)
		}
		if s.Index != i/4 || s.Component != tgsi.Swizzle(i%4) {
			t.Errorf("slot #%d = %+v, want group %d component %d", i, s, i/4, i%4)
		}
	}
	if got := pool.Count(); got != 2 {
		t.Errorf("Count() = %d, want 2", got)
	}
	if got := len(pool.Groups()); got != 2 {
		t.Errorf("len(Groups()) = %d, want 2", got)
	}
}

func TestImmediatePool_Declared(t *testing.T) {
	pool, err := NewImmediatePool(1)
	if err != nil {
		t.Fatalf("NewImmediatePool: %v", err)
	}
	if err := pool.Declare([4]uint32{fui(0.5), fui(2.0), fui(0.0), fui(4.0)}); err != nil {
		t.Fatalf("Declare: %v", err)
	}

	// declared values are found in place
	s, _ := pool.Intern(fui(-2.0))
	if s.Index != 0 || s.Component != tgsi.SwizzleY || !s.Negate {
		t.Errorf("Intern(-2.0) = %+v, want IMM[0].y negated", s)
	}

	// generated values go after the declared groups
	s, _ = pool.Intern(fui(3.0))
	if s.Index != 1 || s.Component != tgsi.SwizzleX {
		t.Errorf("Intern(3.0) = %+v, want group 1 x", s)
	}

	if err := pool.Declare([4]uint32{}); err == nil {
		t.Error("Declare after generated immediates succeeded")
	}
}

func TestImmediatePool_GeneratedBeforeDeclared(t *testing.T) {
	pool, err := NewImmediatePool(1)
	if err != nil {
		t.Fatalf("NewImmediatePool: %v", err)
	}

	// the reserved group is still empty and must not match 0.0
	zero, err := pool.Intern(fui(0.0))
	if err != nil {
		t.Fatalf("Intern(0.0): %v", err)
	}
	if zero.Index != 1 || zero.Component != tgsi.SwizzleX || zero.Negate {
		t.Errorf("Intern(0.0) = %+v, want group 1 x", zero)
	}

	imm := [4]uint32{fui(5.0), fui(0.0), fui(7.0), fui(8.0)}
	if err := pool.Declare(imm); err != nil {
		t.Fatalf("Declare: %v", err)
	}
	groups := pool.Groups()
	if len(groups) != 2 {
		t.Fatalf("len(Groups()) = %d, want 2", len(groups))
	}
	if groups[0] != imm {
		t.Errorf("group 0 = %#x, want %#x", groups[0], imm)
	}
	if groups[1][0] != fui(0.0) {
		t.Errorf("group 1 x = %#x, want 0.0", groups[1][0])
	}

	// once declared, the group is searched first
	s, _ := pool.Intern(fui(-7.0))
	if s.Index != 0 || s.Component != tgsi.SwizzleZ || !s.Negate {
		t.Errorf("Intern(-7.0) = %+v, want IMM[0].z negated", s)
	}
}

func TestImmediatePool_Exhausted(t *testing.T) {
	if _, err := NewImmediatePool(MaxImmediates + 1); err == nil {
		t.Fatal("NewImmediatePool over capacity succeeded")
	}

	pool, _ := NewImmediatePool(MaxImmediates - 1)
	for i := 0; i < 4; i++ {
		if _, err := pool.Intern(uint32(i + 1)); err != nil {
			t.Fatalf("Intern #%d: %v", i, err)
		}
	}

	_, err := pool.Intern(100)
	var e *Error
	if !errors.As(err, &e) || !e.IsResourceExhausted() {
		t.Fatalf("err = %v, want ResourceExhausted", err)
	}

	// existing values are still found
	if _, err := pool.Intern(1); err != nil {
		t.Errorf("Intern of an existing value failed: %v", err)
	}
}
