// Package fd3c provides a Pure Go TGSI compiler for Adreno a3xx GPUs.
//
// fd3c translates TGSI (Tungsten Graphics Shader Infrastructure) programs
// into ir3, the SSA instruction graph consumed by the a3xx register
// allocator and encoder:
//   - tgsi: TGSI text parser and static scanner
//   - ir3: instruction graph, listings and validation
//   - a3xx: the TGSI to ir3 translator
//
// The package provides a simple, high-level API for shader compilation as well as
// lower-level access to individual compilation stages.
//
// Example usage:
//
//	source := `FRAG
//	DCL IN[0], GENERIC[0], PERSPECTIVE
//	DCL OUT[0], COLOR
//	  0: MOV OUT[0], IN[0]
//	  1: END
//	`
//	res, err := fd3c.Compile(source)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ir3.Dump(os.Stdout, res.Shader)
//
// For control over passes, register allocation and logging, use the a3xx
// package:
//
//	prog, _ := fd3c.Parse(source)
//	res, err := a3xx.Compile(prog, nil, a3xx.DefaultOptions())
package fd3c

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/gogpu/fd3c/a3xx"
	"github.com/gogpu/fd3c/ir3"
	"github.com/gogpu/fd3c/tgsi"
)

// CompileOptions configures shader compilation.
type CompileOptions struct {
	// HalfPrecision selects f16 arithmetic and half registers
	HalfPrecision bool

	// Validate enables ir3 graph validation after translation
	Validate bool

	// Logger receives debug records (nil discards them)
	Logger *slog.Logger

	// DumpWriter receives an ir3 listing after each stage (nil disables dumps)
	DumpWriter io.Writer
}

// DefaultOptions returns sensible default options.
func DefaultOptions() CompileOptions {
	return CompileOptions{
		HalfPrecision: false,
		Validate:      true,
	}
}

// Compile compiles TGSI source text to an ir3 graph using default options.
//
// This is the simplest way to compile a shader. For more control, use CompileWithOptions
// or the individual Parse/Translate functions.
func Compile(source string) (*a3xx.Result, error) {
	return CompileWithOptions(source, DefaultOptions())
}

// CompileWithOptions compiles TGSI source text to an ir3 graph with custom options.
//
// The compilation pipeline is:
//  1. Parse TGSI text to a token program
//  2. Scan register usage
//  3. Translate to ir3
//  4. Validate the graph (if enabled)
func CompileWithOptions(source string, opts CompileOptions) (*a3xx.Result, error) {
	prog, err := Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	res, err := Translate(prog, opts)
	if err != nil {
		return nil, fmt.Errorf("translation error: %w", err)
	}

	return res, nil
}

// Parse parses TGSI source text to a token program.
func Parse(source string) (*tgsi.Program, error) {
	return tgsi.Parse(source)
}

// Scan collects the register usage of a program.
func Scan(prog *tgsi.Program) *tgsi.Info {
	return tgsi.Scan(prog)
}

// Translate converts a parsed program to an ir3 graph.
func Translate(prog *tgsi.Program, opts CompileOptions) (*a3xx.Result, error) {
	return a3xx.Compile(prog, Scan(prog), a3xx.Options{
		HalfPrecision: opts.HalfPrecision,
		Validate:      opts.Validate,
		Logger:        opts.Logger,
		DumpWriter:    opts.DumpWriter,
	})
}

// Validate checks an ir3 graph for correctness.
//
// Validation checks include:
//   - Handle validity (every block, instruction and SSA link exists)
//   - Block tree shape (parents precede children, depths are consistent)
//   - Meta instruction shapes (phi, flow, fan-in and fan-out operands)
//
// Returns a slice of validation errors. If the slice is empty, validation passed.
func Validate(res *a3xx.Result) ([]ir3.ValidationError, error) {
	if res == nil {
		return nil, fmt.Errorf("result is nil")
	}
	return ir3.Validate(res.Shader, res.Root)
}
