package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cordata/datakit/pkg/cli"
	"github.com/cordata/datakit/pkg/codec"
	"github.com/cordata/datakit/pkg/record"
)

var diffCmd = &cobra.Command{
	Use:   "diff <left> <right>",
	Short: "Compare two documents field by field",
	Long: `Compare two records and report added, deleted, and updated items.

Exits with status 1 when the documents differ, like diff(1).

Example:
  datakit diff old.json new.json
  datakit diff old.yaml new.yaml --features -o changes.json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		includeFeatures, err := cmd.Flags().GetBool("features")
		if err != nil {
			return fmt.Errorf("failed to read 'features' flag: %w", err)
		}

		left, err := readRecord(args[0])
		if err != nil {
			return err
		}
		right, err := readRecord(args[1])
		if err != nil {
			return err
		}

		result := record.Diff(left, right, includeFeatures)
		if result.Empty() {
			cli.PrintSuccess("Documents are identical")
			return nil
		}

		type entryOut struct {
			Name        string `json:"name" yaml:"name"`
			Status      string `json:"status" yaml:"status"`
			Description string `json:"description,omitempty" yaml:"description,omitempty"`
		}
		out := make([]entryOut, 0)
		for _, e := range result.Entries() {
			out = append(out, entryOut{
				Name:        e.Name,
				Status:      string(e.Status),
				Description: e.Description,
			})
		}

		if err := cli.Output(out, cli.OutputOptions{
			Format: outputFormatFlag(),
			File:   outputFile,
		}); err != nil {
			return err
		}
		return fmt.Errorf("%s", cli.FormatCount(len(out), "difference"))
	},
}

// readRecord loads and decodes one record argument.
func readRecord(path string) (*record.Record, error) {
	data, err := cli.ReadInput(path)
	if err != nil {
		return nil, err
	}
	f, err := cli.DetectFormat(path, formatFlag)
	if err != nil {
		return nil, err
	}
	return codec.UnmarshalRecord(data, f)
}

// outputFormatFlag maps the --format flag onto the generic output
// helper, defaulting to YAML for the terminal.
func outputFormatFlag() cli.OutputFormat {
	switch formatFlag {
	case "json":
		return cli.FormatJSON
	default:
		return cli.FormatYAML
	}
}

func init() {
	diffCmd.Flags().Bool("features", false, "also compare display features")
}
