// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package a3xx translates TGSI programs into ir3 instruction graphs for
// Adreno a3xx GPUs.
//
// # Pipeline
//
// Compile runs in stages:
//  1. AllocateNamespace lays out constants, immediates, inputs, outputs and
//     temporaries in the native register spaces
//  2. Declarations create input fetches (bary.f for fragment shaders) and
//     output placeholders
//  3. Every instruction is lowered to scalar ir3 instructions, one per
//     written component, linked by SSA to their producers
//  4. IF/ELSE/ENDIF open nested blocks; ENDIF joins them with meta:phi
//  5. Optional validation, passes and register allocation
//
// # Registers
//
// Each block tracks the last writer of every scalar register in producer
// tables. A write becomes visible only after the instruction (or the whole
// vector operation) writing it is complete, so an instruction reading the
// register it writes sees the previous value.
//
// # Limits
//
// The target imposes fixed capacities, reported as ErrResourceExhausted:
//   - MaxImmediates vec4 immediate groups
//   - MaxScratch scratch temporaries per source instruction
//   - MaxBranchDepth nested IFs
//
// Relative addressing is only supported for the address register itself;
// any other indirect access fails with ErrUnsupportedAddressing.
package a3xx
