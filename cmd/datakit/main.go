// Package main provides the datakit CLI tool.
//
// Usage:
//
//	datakit [flags] <command> [args]
//
// Commands:
//
//	convert  - Convert records, grids, and graphs between formats
//	inspect  - Show a styled summary of a document
//	diff     - Compare two documents field by field
//	key      - Encode and decode store keys
//	store    - Read and write documents in a key-value store
//	query    - Run a jq expression over a document
//	config   - Configuration management
//
// Configuration:
//
//	The CLI stores configuration in ~/.datakit/datakit/
//	Use 'datakit config' commands to manage contexts.
package main

import (
	"fmt"
	"os"

	"github.com/cordata/datakit/cmd/datakit/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
