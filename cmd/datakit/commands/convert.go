package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cordata/datakit/pkg/cli"
	"github.com/cordata/datakit/pkg/codec"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a document between formats",
	Long: `Convert a record, grid, or graph between encodings.

The input format is detected from the file extension (override with
--format), the output format from --to. CSV is supported for grids only
and drops everything but column names and row values.

Example:
  datakit convert -f user.json --to yaml
  datakit convert -f rows.csv --kind grid --to msgpack -o rows.mp`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputFile == "" {
			return fmt.Errorf("input file is required (use -f)")
		}
		to, err := cmd.Flags().GetString("to")
		if err != nil {
			return fmt.Errorf("failed to read 'to' flag: %w", err)
		}
		target, err := codec.ParseFormat(to)
		if err != nil {
			return err
		}
		kind, err := cmd.Flags().GetString("kind")
		if err != nil {
			return fmt.Errorf("failed to read 'kind' flag: %w", err)
		}

		data, from, err := loadInput()
		if err != nil {
			return err
		}

		out, err := transcode(data, from, target, kind)
		if err != nil {
			return err
		}
		return cli.WriteOutput(outputFile, out)
	},
}

// transcode decodes one document and re-encodes it in the target format.
func transcode(data []byte, from, to codec.Format, kind string) ([]byte, error) {
	switch kind {
	case "doc", "":
		r, err := codec.UnmarshalRecord(data, from)
		if err != nil {
			return nil, err
		}
		return codec.MarshalRecord(r, to)
	case "grid":
		g, err := codec.UnmarshalGrid(gridName(), data, from)
		if err != nil {
			return nil, err
		}
		return codec.MarshalGrid(g, to)
	case "graph":
		g, err := codec.UnmarshalGraph(data, from)
		if err != nil {
			return nil, err
		}
		return codec.MarshalGraph(g, to)
	default:
		return nil, fmt.Errorf("unknown kind %q (want doc, grid, or graph)", kind)
	}
}

// gridName derives a grid name from the input file when CSV input
// carries none of its own.
func gridName() string {
	if inputFile == "" || inputFile == "-" {
		return "grid"
	}
	base := filepath.Base(inputFile)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func init() {
	convertCmd.Flags().String("to", "json", "target format (json, yaml, xml, csv, msgpack)")
	convertCmd.Flags().String("kind", "doc", "document kind (doc, grid, graph)")
}
