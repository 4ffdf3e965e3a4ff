package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
)

// OutputFormat selects how command results are rendered. It is distinct
// from codec.Format: codec formats are document encodings for records,
// grids, and graphs, while an OutputFormat covers arbitrary command
// results such as key listings and diff reports.
type OutputFormat string

const (
	// FormatYAML is the default terminal rendering.
	FormatYAML OutputFormat = "yaml"
	// FormatJSON renders indented JSON.
	FormatJSON OutputFormat = "json"
	// FormatRaw writes byte and string results verbatim.
	FormatRaw OutputFormat = "raw"
)

// OutputOptions configures where and how a command result is written.
type OutputOptions struct {
	// Format is the rendering format. Empty means FormatYAML.
	Format OutputFormat

	// File is the destination path. Empty means stdout.
	File string

	// Indent is the JSON indentation string. Empty means two spaces.
	Indent string

	// Writer overrides File when set. Used by tests and by commands
	// that already hold an open destination.
	Writer io.Writer
}

// destination resolves the writer to use and a cleanup function.
func (o OutputOptions) destination() (io.Writer, func() error, error) {
	noop := func() error { return nil }
	if o.Writer != nil {
		return o.Writer, noop, nil
	}
	if o.File == "" {
		return os.Stdout, noop, nil
	}
	f, err := os.Create(o.File)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}
	return f, f.Close, nil
}

// Output renders a command result to the configured destination.
func Output(result any, opts OutputOptions) error {
	w, done, err := opts.destination()
	if err != nil {
		return err
	}
	defer done()

	switch opts.Format {
	case FormatYAML, "":
		return writeYAML(w, result)
	case FormatJSON:
		return writeJSON(w, result, opts.Indent)
	case FormatRaw:
		return writeRaw(w, result)
	}
	return fmt.Errorf("unsupported output format: %s", opts.Format)
}

func writeYAML(w io.Writer, result any) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("render output: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func writeJSON(w io.Writer, result any, indent string) error {
	if indent == "" {
		indent = "  "
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", indent)
	return enc.Encode(result)
}

// writeRaw passes bytes and strings through untouched. Anything else
// falls back to YAML so a result is never silently dropped.
func writeRaw(w io.Writer, result any) error {
	switch v := result.(type) {
	case []byte:
		_, err := w.Write(v)
		return err
	case string:
		_, err := io.WriteString(w, v)
		return err
	}
	return writeYAML(w, result)
}

// OutputBytes writes binary data, such as a msgpack document, to a file.
// Binary output never goes to the terminal, so the path is required.
func OutputBytes(data []byte, path string) error {
	if path == "" {
		return fmt.Errorf("output file path is required for binary data")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// Terminal message helpers. Status goes to stdout, errors and verbose
// traces to stderr, so piped command output stays clean.

func PrintSuccess(format string, args ...any) {
	fmt.Printf("✓ "+format+"\n", args...)
}

func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

func PrintInfo(format string, args ...any) {
	fmt.Printf("ℹ "+format+"\n", args...)
}

func PrintWarning(format string, args ...any) {
	fmt.Printf("⚠ "+format+"\n", args...)
}

func PrintVerbose(verbose bool, format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}
