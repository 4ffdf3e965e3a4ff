package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cordata/datakit/pkg/cli"
	"github.com/cordata/datakit/pkg/codec"
	"github.com/cordata/datakit/pkg/keys"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Encode and decode store keys",
	Long: `Work with the colon-delimited key grammar.

A key names where a document lives in the store and how its identity was
derived:

  Prefix:Module:StoreType:DataObject:Method:Name[:ID][:Type:ValueType:ValueFormat]`,
}

var keyParseCmd = &cobra.Command{
	Use:   "parse <key>",
	Short: "Decode a key into its segments",
	Long: `Decode a key string and print its segments.

Example:
  datakit key parse app:core:Hash:Doc:Primary:user:42`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := keys.Parse(args[0])
		if err != nil {
			return err
		}

		out := map[string]string{
			"prefix":      k.Prefix,
			"module":      k.Module,
			"store_type":  string(k.StoreType),
			"data_object": string(k.DataObject),
			"method":      string(k.Method),
			"name":        k.Name,
		}
		if k.ID != "" {
			out["id"] = k.ID
		}
		if k.DataObject == keys.ObjectItem {
			out["data_type"] = string(k.DataType)
			out["value_type"] = string(k.ValueType)
			out["value_format"] = string(k.ValueFormat)
		}
		return cli.Output(out, cli.OutputOptions{
			Format: outputFormatFlag(),
			File:   outputFile,
		})
	},
}

var keyEncodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Derive a key from a document",
	Long: `Derive the store key for a record using the given identity method.

Methods:
  Name     - the document name alone identifies it
  Primary  - the primary item's value is the id
  Hash     - the content hash is the id
  Random   - a fresh random id

Example:
  datakit key encode -f user.json --method Primary`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputFile == "" {
			return fmt.Errorf("input file is required (use -f)")
		}
		method, err := methodFlag(cmd)
		if err != nil {
			return err
		}
		storeType, err := cmd.Flags().GetString("store-type")
		if err != nil {
			return fmt.Errorf("failed to read 'store-type' flag: %w", err)
		}

		data, from, err := loadInput()
		if err != nil {
			return err
		}
		r, err := codec.UnmarshalRecord(data, from)
		if err != nil {
			return err
		}

		ctx, err := getContext()
		prefix, module := cli.DefaultPrefix, cli.DefaultModule
		if err == nil {
			prefix, module = ctx.KeyPrefix(), ctx.KeyModule()
		}

		k, err := keys.ForRecord(prefix, module, keys.StoreType(storeType), method, r)
		if err != nil {
			return err
		}
		fmt.Println(k.String())
		return nil
	},
}

// methodFlag reads and validates the --method flag.
func methodFlag(cmd *cobra.Command) (keys.Method, error) {
	s, err := cmd.Flags().GetString("method")
	if err != nil {
		return "", fmt.Errorf("failed to read 'method' flag: %w", err)
	}
	switch m := keys.Method(s); m {
	case keys.MethodName, keys.MethodHash, keys.MethodRandom, keys.MethodPrimary:
		return m, nil
	default:
		return "", fmt.Errorf("unknown method %q (want Name, Hash, Random, or Primary)", s)
	}
}

func init() {
	keyEncodeCmd.Flags().String("method", string(keys.MethodHash), "identity method (Name, Hash, Random, Primary)")
	keyEncodeCmd.Flags().String("store-type", string(keys.StoreHash), "store type segment")

	keyCmd.AddCommand(keyParseCmd)
	keyCmd.AddCommand(keyEncodeCmd)
}
