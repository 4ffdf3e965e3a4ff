package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cordata/datakit/pkg/cli"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration and contexts.

Contexts allow you to manage multiple store configurations,
similar to kubectl's context management.

Configuration is stored in ~/.datakit/datakit/config.yaml`,
}

var configAddContextCmd = &cobra.Command{
	Use:   "add-context <name>",
	Short: "Add a new context",
	Long: `Add a new context with the specified name.

Example:
  datakit config add-context local --store-dir ~/.datakit/datakit/store
  datakit config add-context scratch --prefix app --module billing`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		storeDir, err := cmd.Flags().GetString("store-dir")
		if err != nil {
			return fmt.Errorf("failed to read 'store-dir' flag: %w", err)
		}
		prefix, err := cmd.Flags().GetString("prefix")
		if err != nil {
			return fmt.Errorf("failed to read 'prefix' flag: %w", err)
		}
		module, err := cmd.Flags().GetString("module")
		if err != nil {
			return fmt.Errorf("failed to read 'module' flag: %w", err)
		}
		format, err := cmd.Flags().GetString("default-format")
		if err != nil {
			return fmt.Errorf("failed to read 'default-format' flag: %w", err)
		}

		ctx := &cli.Context{
			StoreDir: storeDir,
			Prefix:   prefix,
			Module:   module,
			Format:   format,
		}

		cfg := getConfig()
		if err := cfg.AddContext(name, ctx); err != nil {
			return err
		}

		// First context becomes current automatically
		if cfg.CurrentContext == "" {
			if err := cfg.UseContext(name); err != nil {
				return err
			}
		}

		cli.PrintSuccess("Context %q added", name)
		return nil
	},
}

var configUseContextCmd = &cobra.Command{
	Use:   "use-context <name>",
	Short: "Set the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if err := getConfig().UseContext(name); err != nil {
			return err
		}
		cli.PrintSuccess("Switched to context %q", name)
		return nil
	},
}

var configDeleteContextCmd = &cobra.Command{
	Use:   "delete-context <name>",
	Short: "Delete a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if err := getConfig().DeleteContext(name); err != nil {
			return err
		}
		cli.PrintSuccess("Context %q deleted", name)
		return nil
	},
}

var configListContextsCmd = &cobra.Command{
	Use:   "list-contexts",
	Short: "List all contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		names := cfg.ListContexts()
		if len(names) == 0 {
			cli.PrintInfo("No contexts configured. Add one with 'datakit config add-context'")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CURRENT\tNAME\tSTORE\tPREFIX\tMODULE")
		for _, name := range names {
			ctx := cfg.Contexts[name]
			current := ""
			if name == cfg.CurrentContext {
				current = "*"
			}
			store := ctx.StoreDir
			if store == "" {
				store = "(memory)"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				current, name, store, ctx.KeyPrefix(), ctx.KeyModule())
		}
		return w.Flush()
	},
}

var configCurrentContextCmd = &cobra.Command{
	Use:   "current-context",
	Short: "Show the current context",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := getConfig().GetCurrentContext()
		if err != nil {
			return err
		}
		fmt.Println(ctx.Name)
		return nil
	},
}

func init() {
	configAddContextCmd.Flags().String("store-dir", "", "store directory (empty for in-memory)")
	configAddContextCmd.Flags().String("prefix", "", "key prefix segment (default: "+cli.DefaultPrefix+")")
	configAddContextCmd.Flags().String("module", "", "key module segment (default: "+cli.DefaultModule+")")
	configAddContextCmd.Flags().String("default-format", "", "default output format")

	configCmd.AddCommand(configAddContextCmd)
	configCmd.AddCommand(configUseContextCmd)
	configCmd.AddCommand(configDeleteContextCmd)
	configCmd.AddCommand(configListContextsCmd)
	configCmd.AddCommand(configCurrentContextCmd)
}
