package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cordata/datakit/pkg/cli"
	"github.com/cordata/datakit/pkg/codec"
	"github.com/cordata/datakit/pkg/kv"
	"github.com/cordata/datakit/pkg/recstore"
)

const appName = "datakit"

var (
	// Global flags
	cfgFile     string
	contextName string
	outputFile  string
	inputFile   string
	formatFlag  string
	verbose     bool

	// Global configuration
	globalConfig *cli.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "datakit",
	Short: "Self-describing record toolkit",
	Long: `datakit - work with self-describing records, grids, and graphs.

Documents carry their own schema: every field knows its type, its
constraints, and its display metadata. This tool converts documents
between formats, diffs them, derives store keys from them, and reads
and writes them in a local key-value store.

Configuration is stored in ~/.datakit/datakit/ and supports multiple
contexts, similar to kubectl's context management. A context names a
store directory plus the key prefix and module written in front of
every key.

Examples:
  # Set up a context backed by a local store
  datakit config add-context local --store-dir ~/.datakit/datakit/store

  # Convert a record between formats
  datakit convert -f user.json --to yaml

  # Store a record and read it back
  datakit store set -f user.json
  datakit store get app:core:Hash:Doc:Primary:user:42
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "", "", "config file (default is ~/.datakit/datakit/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&contextName, "context", "c", "", "context name to use")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	rootCmd.PersistentFlags().StringVarP(&inputFile, "file", "f", "", "input document file")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", "", "input format (json, yaml, xml, csv, msgpack; default: by extension)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(queryCmd)
}

func initConfig() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	var err error
	globalConfig, err = cli.LoadConfigWithPath(appName, cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
}

// getConfig returns the global configuration
func getConfig() *cli.Config {
	return globalConfig
}

// getContext returns the context configuration to use. Commands that do
// not touch the store work without one; resolveContext tolerates the
// absence and falls back to defaults.
func getContext() (*cli.Context, error) {
	cfg := getConfig()
	if cfg == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}

	ctx, err := cfg.ResolveContext(contextName)
	if err != nil {
		if contextName == "" {
			return nil, fmt.Errorf("no context specified. Use -c flag or set a default context with 'datakit config use-context'")
		}
		return nil, err
	}

	return ctx, nil
}

// openClient opens the store named by the active context and wraps it in
// a record client. The caller must Close the returned store.
func openClient() (*recstore.Client, kv.Store, error) {
	ctx, err := getContext()
	if err != nil {
		return nil, nil, err
	}

	var store kv.Store
	if ctx.StoreDir == "" {
		slog.Debug("no store directory configured, using in-memory store")
		store = kv.NewMemory(nil)
	} else {
		slog.Debug("opening store", "dir", ctx.StoreDir)
		store, err = kv.NewBadger(kv.BadgerOptions{Dir: ctx.StoreDir})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open store: %w", err)
		}
	}

	return recstore.New(store, ctx.KeyPrefix(), ctx.KeyModule()), store, nil
}

// loadInput reads the -f input and detects its format.
func loadInput() ([]byte, codec.Format, error) {
	data, err := cli.ReadInput(inputFile)
	if err != nil {
		return nil, "", err
	}
	f, err := cli.DetectFormat(inputFile, formatFlag)
	if err != nil {
		return nil, "", err
	}
	return data, f, nil
}
