// Command citysuggest searches a sharded city dataset and submits the contact form.
//
// Usage:
//
//	citysuggest search ber
//	citysuggest tui
//	citysuggest send --name Anna --email anna@example.com --city Kraków
//	citysuggest split cities.json ./out --count 134
//
// Settings are read from citysuggest.yaml (see --config); relay and S3
// credentials may come from CITYSUGGEST_* environment variables instead.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/andreiashu/citysuggest"
)

var (
	// Global flags
	verbose    bool
	configPath string

	cfg    *Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "citysuggest",
	Short: "City autocomplete over a sharded dataset",
	Long: `citysuggest loads every partition of a city dataset at once, keeps whatever
loads, and answers case-insensitive substring queries against it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = LoadConfig(configPath)
		if err != nil {
			return err
		}
		return cfg.Validate()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "citysuggest.yaml", "Path to the config file")

	rootCmd.AddCommand(searchCmd, tuiCmd, sendCmd, splitCmd)
}

// startLoad wires store, loader and engine from the config and starts loading.
func startLoad(ctx context.Context, log *zap.Logger) (*citysuggest.Engine, *citysuggest.Initialization, error) {
	src, err := cfg.NewSource()
	if err != nil {
		return nil, nil, err
	}

	store := citysuggest.NewStore()
	loader := citysuggest.NewLoader(src, store,
		citysuggest.WithLogger(log),
		citysuggest.WithConcurrency(cfg.Partitions.Concurrency))
	in := citysuggest.Start(ctx, loader, cfg.Refs())
	return citysuggest.NewEngine(store, cfg.EngineOptions()...), in, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
