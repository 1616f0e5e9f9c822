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
)

var (
	// Global flags
	cfgPath string
	seed    int64
	verbose bool

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "k4solve",
	Short: "k4solve - wheel-constraint solver for the 97-letter sculpture cipher",
	Long: `k4solve solves per-class periodic key wheels from known-plaintext anchors,
derives the plaintext those wheels force, and measures how unique the result
is with mutation (necessity) and null-model batteries.

All commands read the same YAML run config (--config); batch commands write
CSV and SQLite reports and never abort on a single failed trial.`,
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
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "k4solve.yaml", "run configuration file")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 1, "master random seed for batch commands")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(deriveCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(necessityCmd)
	rootCmd.AddCommand(nullModelCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
