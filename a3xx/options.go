// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package a3xx

import (
	"io"
	"log/slog"

	"github.com/gogpu/fd3c/ir3"
	"github.com/gogpu/fd3c/tgsi"
)

// Options configures a compile.
type Options struct {
	// HalfPrecision selects f16 arithmetic and half registers.
	HalfPrecision bool

	// Validate runs ir3.Validate on the translated graph.
	Validate bool

	// Passes run in order over the translated graph, e.g. flatten, copy
	// propagation, depth and scheduling.
	Passes []Pass

	// Allocator assigns native registers. When nil the shader state keeps
	// the registers given by the namespace layout.
	Allocator RegisterAllocator

	// Logger receives debug records. Nil discards them.
	Logger *slog.Logger

	// DumpWriter receives an ir3 listing after translation and after every
	// pass. Nil disables dumps.
	DumpWriter io.Writer
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		HalfPrecision: false,
		Validate:      true,
	}
}

// Pass is a transformation over a translated shader graph.
type Pass interface {
	Name() string
	Run(s *ir3.Shader, root ir3.BlockHandle) error
}

// PassFunc adapts a function to the Pass interface.
type PassFunc struct {
	PassName string
	Fn       func(s *ir3.Shader, root ir3.BlockHandle) error
}

// Name returns the pass name.
func (p PassFunc) Name() string {
	return p.PassName
}

// Run calls the wrapped function.
func (p PassFunc) Run(s *ir3.Shader, root ir3.BlockHandle) error {
	return p.Fn(s, root)
}

// RegisterAllocator assigns native registers to the graph. It must leave
// the destination of every block input and output instruction holding its
// final register id.
type RegisterAllocator interface {
	Allocate(s *ir3.Shader, root ir3.BlockHandle, kind tgsi.Processor) error
}

// Result is a successfully compiled shader.
type Result struct {
	Shader *ir3.Shader
	Root   ir3.BlockHandle
	State  *ShaderState
}
