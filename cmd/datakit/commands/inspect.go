package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cordata/datakit/pkg/cli"
	"github.com/cordata/datakit/pkg/codec"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show a styled summary of a document",
	Long: `Print a record or grid with its field types, constraints, and
validation state.

Example:
  datakit inspect -f user.json
  datakit inspect -f rows.csv --kind grid`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputFile == "" {
			return fmt.Errorf("input file is required (use -f)")
		}
		kind, err := cmd.Flags().GetString("kind")
		if err != nil {
			return fmt.Errorf("failed to read 'kind' flag: %w", err)
		}

		data, from, err := loadInput()
		if err != nil {
			return err
		}

		styles := cli.NewStyles(cli.DefaultTheme)

		switch kind {
		case "doc", "":
			r, err := codec.UnmarshalRecord(data, from)
			if err != nil {
				return err
			}
			fmt.Print(styles.RenderRecord(r))
			if violations := r.Validate(); len(violations) > 0 {
				cli.PrintWarning("%s:", cli.FormatCount(len(violations), "violation"))
				for _, v := range violations {
					fmt.Fprintf(os.Stderr, "  %s: %s\n", v.Item, v.Reason)
				}
			}
		case "grid":
			g, err := codec.UnmarshalGrid(gridName(), data, from)
			if err != nil {
				return err
			}
			fmt.Print(styles.RenderGrid(g))
		default:
			return fmt.Errorf("unknown kind %q (want doc or grid)", kind)
		}

		cli.PrintVerbose(verbose, "input: %s (%s)", inputFile, cli.FormatBytes(int64(len(data))))
		return nil
	},
}

func init() {
	inspectCmd.Flags().String("kind", "doc", "document kind (doc, grid)")
}
