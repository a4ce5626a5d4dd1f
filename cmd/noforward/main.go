// Package main provides the entry point for the non-forwarding pipeline
// variant: full three-latch RAW stalling, branches resolved in ID.
package main

import (
	"fmt"
	"os"

	"github.com/archrv/rv5sim/internal/simulate"
	"github.com/archrv/rv5sim/timing/pipeline"
)

func main() {
	opts, err := simulate.ParseArgs("noforward", os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "noforward: %v\n", err)
		os.Exit(1)
	}

	if err := simulate.Run(pipeline.NonForwardingVariant{}, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "noforward: %v\n", err)
		os.Exit(1)
	}
}
