// Package simulate holds the plumbing shared by cmd/forward and
// cmd/noforward: argument parsing, engine construction, running the
// requested number of cycles, and reporting the outcome.
package simulate

import (
	"flag"
	"fmt"
	"io"

	"github.com/archrv/rv5sim/emu"
	"github.com/archrv/rv5sim/loader"
	"github.com/archrv/rv5sim/timing/pipeline"
)

// Options holds a parsed command line for one of the two binaries.
type Options struct {
	ProgramPath string
	Cycles      int
	Verbose     bool
}

// ParseArgs parses os.Args-style arguments (excluding the program name)
// into Options: `[-v] <instruction_file> <cycle_count>`. usage is printed
// to stderr, via flag's own usage output, on a parse or argument-count
// error.
func ParseArgs(name string, args []string, stderr io.Writer) (Options, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "print run statistics after the diagram")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [-v] <instruction_file> <cycle_count>\n", name)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return Options{}, fmt.Errorf("expected 2 positional arguments, got %d", fs.NArg())
	}

	cycles, err := parsePositiveInt(fs.Arg(1))
	if err != nil {
		return Options{}, fmt.Errorf("invalid cycle count %q: %w", fs.Arg(1), err)
	}

	return Options{ProgramPath: fs.Arg(0), Cycles: cycles, Verbose: *verbose}, nil
}

func parsePositiveInt(s string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be a positive integer")
	}
	return n, nil
}

// Run loads the program named by opts.ProgramPath, drives variant for
// opts.Cycles ticks, and writes the occupancy diagram (and, if
// opts.Verbose, a short statistics line) to stdout. It returns the first
// error encountered loading or running the program; on any error no
// diagram is printed.
func Run(variant pipeline.Variant, opts Options, stdout io.Writer) error {
	program, err := loader.Load(opts.ProgramPath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", opts.ProgramPath, err)
	}

	regFile := emu.NewRegisterFile()
	dataMem := emu.NewDataMemory()
	engine := pipeline.NewEngine(variant, program, regFile, dataMem)

	if err := engine.Run(opts.Cycles); err != nil {
		return fmt.Errorf("running %s: %w", opts.ProgramPath, err)
	}

	fmt.Fprint(stdout, engine.Occupancy().Render())

	if opts.Verbose {
		stats := engine.Stats()
		fmt.Fprintf(stdout, "\n%s: %d cycles, %d instructions retired, %d stalls, %d branches taken, %d flushes\n",
			variant.Name(), stats.Cycles, stats.Instructions, stats.Stalls, stats.Branches, stats.Flushes)
	}

	return nil
}
