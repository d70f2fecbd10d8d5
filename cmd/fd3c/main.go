// Command fd3c is the TGSI to ir3 compiler CLI for Adreno a3xx GPUs.
//
// Usage:
//
//	fd3c [options] <input>
//
// Examples:
//
//	fd3c shader.tgsi                    # Print the ir3 listing
//	fd3c -dump=dot -o g.dot shader.tgsi # Write the SSA graph for graphviz
//	fd3c -dump=state shader.tgsi        # Print linkage and immediates
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gogpu/fd3c"
	"github.com/gogpu/fd3c/a3xx"
	"github.com/gogpu/fd3c/ir3"
)

var (
	output   = flag.String("o", "", "output file (default: stdout)")
	half     = flag.Bool("half", false, "use half precision arithmetic")
	dump     = flag.String("dump", "listing", "output format: listing, dot, state, spew")
	validate = flag.Bool("validate", true, "validate the ir3 graph")
	verbose  = flag.Bool("v", false, "log compiler debug records to stderr")
	version  = flag.Bool("version", false, "print version")
)

const fd3cVersion = "0.1.0-dev"

func main() {
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Printf("fd3c version %s\n", fd3cVersion)
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		usage()
		os.Exit(1)
	}

	inputPath := args[0]

	source, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	opts := fd3c.CompileOptions{
		HalfPrecision: *half,
		Validate:      *validate,
	}
	if *verbose {
		opts.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	res, err := fd3c.CompileWithOptions(string(source), opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Compilation error: %v\n", err)
		os.Exit(1)
	}

	var buf bytes.Buffer
	if err := render(&buf, res, *dump, inputPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *output != "" {
		if err := os.WriteFile(*output, buf.Bytes(), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Successfully compiled %s to %s (%d instructions)\n", inputPath, *output, res.Shader.NumInstrs())
		return
	}
	if _, err := os.Stdout.Write(buf.Bytes()); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}
}

// render writes res in the named format.
func render(w io.Writer, res *a3xx.Result, format, name string) error {
	switch format {
	case "listing":
		return ir3.Dump(w, res.Shader)
	case "dot":
		return ir3.WriteDot(w, res.Shader, name)
	case "state":
		_, err := io.WriteString(w, ir3.Sdump(res.State))
		return err
	case "spew":
		_, err := io.WriteString(w, res.Shader.Spew())
		return err
	default:
		return fmt.Errorf("unknown dump format %q", format)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: fd3c [options] <input.tgsi>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  fd3c shader.tgsi                    Print the ir3 listing\n")
	fmt.Fprintf(os.Stderr, "  fd3c -dump=dot -o g.dot shader.tgsi Write the SSA graph\n")
	fmt.Fprintf(os.Stderr, "  fd3c -half shader.tgsi              Compile with f16 arithmetic\n")
}
