package commands

import (
	"encoding/json"
	"fmt"

	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"

	"github.com/cordata/datakit/pkg/codec"
)

var queryCmd = &cobra.Command{
	Use:   "query <expression>",
	Short: "Run a jq expression over a document",
	Long: `Decode a document, project it to JSON, and run a jq expression
over the projection. Results print as JSON lines.

The projection mirrors the JSON encoding: a record is an object with
"name", "items", and "children"; each item carries "name", "type",
"values", and "features".

Example:
  datakit query '.items[] | select(.type == "Integer") | .name' -f user.json
  datakit query '.rows | length' -f rows.csv --kind grid`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputFile == "" {
			return fmt.Errorf("input file is required (use -f)")
		}
		kind, err := cmd.Flags().GetString("kind")
		if err != nil {
			return fmt.Errorf("failed to read 'kind' flag: %w", err)
		}

		q, err := gojq.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid query: %w", err)
		}

		data, from, err := loadInput()
		if err != nil {
			return err
		}
		projected, err := project(data, from, kind)
		if err != nil {
			return err
		}

		var input any
		if err := json.Unmarshal(projected, &input); err != nil {
			return fmt.Errorf("failed to project document: %w", err)
		}

		iter := q.RunWithContext(cmd.Context(), input)
		for {
			v, ok := iter.Next()
			if !ok {
				break
			}
			if err, isErr := v.(error); isErr {
				return fmt.Errorf("query failed: %w", err)
			}
			line, err := gojq.Marshal(v)
			if err != nil {
				return err
			}
			fmt.Println(string(line))
		}
		return nil
	},
}

// project normalizes any supported input into the canonical JSON shape.
func project(data []byte, from codec.Format, kind string) ([]byte, error) {
	if from == codec.JSON {
		return data, nil
	}
	return transcode(data, from, codec.JSON, kind)
}

func init() {
	queryCmd.Flags().String("kind", "doc", "document kind (doc, grid, graph)")
}
