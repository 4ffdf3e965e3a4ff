package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cordata/datakit/pkg/cli"
	"github.com/cordata/datakit/pkg/codec"
	"github.com/cordata/datakit/pkg/keys"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Read and write documents in the configured store",
	Long: `Read and write documents in the store named by the active context.

Records are stored field-wise: one store entry per item, under the
record's derived key. Grids and graphs are stored as single snapshots.

Example:
  datakit store set -f user.json --method Primary
  datakit store get app:core:Hash:Doc:Primary:user:42
  datakit store keys`,
}

var storeSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store a document",
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputFile == "" {
			return fmt.Errorf("input file is required (use -f)")
		}
		method, err := methodFlag(cmd)
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

		client, store, err := openClient()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := cmd.Context()
		var k keys.Key
		switch kind {
		case "doc", "":
			r, err := codec.UnmarshalRecord(data, from)
			if err != nil {
				return err
			}
			k, err = client.SaveRecord(ctx, method, r)
			if err != nil {
				return err
			}
		case "grid":
			g, err := codec.UnmarshalGrid(gridName(), data, from)
			if err != nil {
				return err
			}
			k, err = client.SaveGrid(ctx, method, g)
			if err != nil {
				return err
			}
		case "graph":
			g, err := codec.UnmarshalGraph(data, from)
			if err != nil {
				return err
			}
			k, err = client.SaveGraph(ctx, method, g)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown kind %q (want doc, grid, or graph)", kind)
		}

		slog.Debug("stored document", "key", k.String())
		fmt.Println(k.String())
		return nil
	},
}

var storeGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Load a document by key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := keys.Parse(args[0])
		if err != nil {
			return err
		}
		to, err := cmd.Flags().GetString("to")
		if err != nil {
			return fmt.Errorf("failed to read 'to' flag: %w", err)
		}
		target, err := codec.ParseFormat(to)
		if err != nil {
			return err
		}

		client, store, err := openClient()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := cmd.Context()
		var out []byte
		switch k.DataObject {
		case keys.ObjectDoc:
			r, err := client.LoadRecord(ctx, *k)
			if err != nil {
				return err
			}
			out, err = codec.MarshalRecord(r, target)
			if err != nil {
				return err
			}
		case keys.ObjectGrid:
			g, err := client.LoadGrid(ctx, *k)
			if err != nil {
				return err
			}
			out, err = codec.MarshalGrid(g, target)
			if err != nil {
				return err
			}
		case keys.ObjectGraph:
			g, err := client.LoadGraph(ctx, *k)
			if err != nil {
				return err
			}
			out, err = codec.MarshalGraph(g, target)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("cannot load %s keys directly", k.DataObject)
		}

		return cli.WriteOutput(outputFile, out)
	},
}

var storeDeleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Delete a document by key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := keys.Parse(args[0])
		if err != nil {
			return err
		}

		client, store, err := openClient()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := cmd.Context()
		if k.DataObject == keys.ObjectDoc {
			err = client.DeleteRecord(ctx, *k)
		} else {
			err = client.Delete(ctx, *k)
		}
		if err != nil {
			return err
		}
		cli.PrintSuccess("Deleted %s", k.String())
		return nil
	},
}

var storeKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List stored document keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, store, err := openClient()
		if err != nil {
			return err
		}
		defer store.Close()

		listed, err := client.Keys(cmd.Context())
		if err != nil {
			return err
		}
		for _, k := range listed {
			fmt.Println(k.String())
		}
		cli.PrintVerbose(verbose, "%s", cli.FormatCount(len(listed), "key"))
		return nil
	},
}

func init() {
	storeSetCmd.Flags().String("method", string(keys.MethodHash), "identity method (Name, Hash, Random, Primary)")
	storeSetCmd.Flags().String("kind", "doc", "document kind (doc, grid, graph)")
	storeGetCmd.Flags().String("to", "json", "output format")

	storeCmd.AddCommand(storeSetCmd)
	storeCmd.AddCommand(storeGetCmd)
	storeCmd.AddCommand(storeDeleteCmd)
	storeCmd.AddCommand(storeKeysCmd)
}
