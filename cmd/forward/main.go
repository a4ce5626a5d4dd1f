// Package main provides the entry point for the forwarding pipeline
// variant: load-use stalls only, MEM/WB forwarding into EX, branches
// resolved in EX.
package main

import (
	"fmt"
	"os"

	"github.com/archrv/rv5sim/internal/simulate"
	"github.com/archrv/rv5sim/timing/pipeline"
)

func main() {
	opts, err := simulate.ParseArgs("forward", os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "forward: %v\n", err)
		os.Exit(1)
	}

	if err := simulate.Run(pipeline.ForwardingVariant{}, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "forward: %v\n", err)
		os.Exit(1)
	}
}
