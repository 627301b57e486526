// Command shenkernel is the developer tool for the operator library: it
// checks every closed-form operator against the quadrature projection and
// times the apply strategies.
package main

import (
	"fmt"
	"os"

	"github.com/notargets/ShenKernel/builder"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type rootOptions struct {
	verbose    bool
	configPath string

	cfg    builder.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{cfg: builder.DefaultConfig(), logger: zap.NewNop()}
	rootCmd := &cobra.Command{
		Use:           "shenkernel",
		Short:         "Verify and benchmark banded Shen-Galerkin operators",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.configPath != "" {
				cfg, err := builder.LoadConfig(opts.configPath)
				if err != nil {
					return err
				}
				opts.cfg = cfg
			}
			level, err := zapcore.ParseLevel(opts.cfg.LogLevel)
			if err != nil {
				return err
			}
			if opts.verbose {
				level = zapcore.DebugLevel
			}
			config := zap.NewProductionConfig()
			config.Level = zap.NewAtomicLevelAt(level)
			config.OutputPaths = []string{"stderr"}
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = opts.logger.Sync()
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML builder config")

	rootCmd.AddCommand(newVerifyCmd(opts), newBenchCmd(opts))
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
