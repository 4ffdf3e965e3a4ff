// Package cli provides shared plumbing for the datakit command-line tool.
//
// This package includes:
//   - Configuration management (named store contexts, kubectl style)
//   - Output helpers (JSON, YAML, raw, terminal messages)
//   - Input loading from files or stdin with format detection
//   - Styled rendering of records and grids for the terminal
//
// Configuration is stored in ~/.datakit/<app>/config.yaml. A context names
// a store directory plus the key-prefix and module segments written in
// front of every key.
//
// Example usage:
//
//	cfg, err := cli.LoadConfig("datakit")
//	ctx, err := cfg.ResolveContext("")
//
//	cli.Output(result, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	    File:   outputPath,
//	})
package cli
