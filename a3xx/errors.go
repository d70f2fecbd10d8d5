// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package a3xx

import "fmt"

// ErrorKind categorizes a3xx compilation errors.
type ErrorKind uint8

const (
	// ErrUnsupportedAddressing indicates relative addressing of a register
	// file the optimizer cannot reason about.
	ErrUnsupportedAddressing ErrorKind = iota

	// ErrUnsupportedRegisterFile indicates a register file used in a
	// source or destination role it cannot fill.
	ErrUnsupportedRegisterFile

	// ErrUnknownOpcode indicates a TGSI opcode with no translator.
	ErrUnknownOpcode

	// ErrResourceExhausted indicates a fixed-capacity pool overflowed:
	// scratch temporaries, the branch stack or the immediate table.
	ErrResourceExhausted

	// ErrInvalidSemantic indicates a declaration with a semantic the
	// target stage cannot link.
	ErrInvalidSemantic

	// ErrInternal indicates an internal compiler error.
	ErrInternal
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrUnsupportedAddressing:
		return "UnsupportedAddressing"
	case ErrUnsupportedRegisterFile:
		return "UnsupportedRegisterFile"
	case ErrUnknownOpcode:
		return "UnknownOpcode"
	case ErrResourceExhausted:
		return "ResourceExhausted"
	case ErrInvalidSemantic:
		return "InvalidSemantic"
	case ErrInternal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// Error represents an a3xx compilation error.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Message provides details about the error.
	Message string

	// Instruction is the index of the offending source instruction, or -1
	// when the error is not tied to one.
	Instruction int
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Instruction >= 0 {
		return fmt.Sprintf("a3xx %s at instruction %d: %s", e.Kind, e.Instruction, e.Message)
	}
	return fmt.Sprintf("a3xx %s: %s", e.Kind, e.Message)
}

// NewError creates a new error not tied to an instruction.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{
		Kind:        kind,
		Message:     message,
		Instruction: -1,
	}
}

// IsUnsupportedAddressing returns true if the error is ErrUnsupportedAddressing.
func (e *Error) IsUnsupportedAddressing() bool {
	return e.Kind == ErrUnsupportedAddressing
}

// IsUnsupportedRegisterFile returns true if the error is ErrUnsupportedRegisterFile.
func (e *Error) IsUnsupportedRegisterFile() bool {
	return e.Kind == ErrUnsupportedRegisterFile
}

// IsResourceExhausted returns true if the error is ErrResourceExhausted.
func (e *Error) IsResourceExhausted() bool {
	return e.Kind == ErrResourceExhausted
}

// IsInternal returns true if the error is ErrInternal.
func (e *Error) IsInternal() bool {
	return e.Kind == ErrInternal
}
