// Package main is the entry point for the semlabel CLI.
//
// Usage:
//
//	semlabel [flags] <command> [args]
//
// Commands:
//
//	classify  - Classify query texts against an embedded corpus
//	recall    - Dump ranked neighbors per query without voting
//	index     - Build the corpus index and report its stats
//	train     - Train the dual encoder on (query, positive) pairs
//	evaluate  - Score recall@K and accuracy against a golden set
//	version   - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/arliden/semlabel/cmd/semlabel/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
