// Package cli implements the fitcheck command line.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Harshitk-cp/fitcheck/internal/app"
	"github.com/Harshitk-cp/fitcheck/internal/buildconfig"
	"github.com/Harshitk-cp/fitcheck/internal/config"
)

type buildFunc func(ctx context.Context, logger *zap.Logger, opts app.Options) (*app.Components, error)

// commandContext is shared by every subcommand.
type commandContext struct {
	build   buildFunc
	logger  *zap.Logger
	verbose bool
	jsonOut bool
	timeout time.Duration
}

// components loads config and assembles the backends a command needs.
func (c *commandContext) components(ctx context.Context, opts app.Options) (*app.Components, error) {
	return c.build(ctx, c.logger, opts)
}

// withTimeout applies --timeout to the command context. Zero means none.
func (c *commandContext) withTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(cmd.Context())
	}
	return context.WithTimeout(cmd.Context(), c.timeout)
}

// NewRootCommand returns the fitcheck command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&commandContext{build: app.Build})
}

func newRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fitcheck",
		Short: "Check fitness and nutrition claims against research",
		Long: `fitcheck verifies exercise and nutrition claims against an indexed
corpus of research papers. Give it a claim directly or a short-form video
URL; it extracts the claims, retrieves evidence and reports a verdict per claim.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(); err != nil {
				return err
			}
			if ctx.logger != nil {
				return nil
			}
			logger, err := newLogger(ctx.verbose)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			ctx.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if ctx.logger != nil {
				_ = ctx.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&ctx.verbose, "verbose", "v", false, "log at debug level")
	rootCmd.PersistentFlags().BoolVar(&ctx.jsonOut, "json", false, "print machine-readable JSON")
	rootCmd.PersistentFlags().DurationVar(&ctx.timeout, "timeout", 0, "abort the command after this long (0 means no limit)")

	rootCmd.AddCommand(newVerifyCommand(ctx))
	rootCmd.AddCommand(newExtractCommand(ctx))
	rootCmd.AddCommand(newSearchCommand(ctx))
	rootCmd.AddCommand(newStatsCommand(ctx))
	rootCmd.AddCommand(newIngestCommand(ctx))
	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newVersionCommand(ctx))

	return rootCmd
}

// newLogger writes to stderr so stdout stays clean for results.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	level, err := zapcore.ParseLevel(config.LogLevel())
	if err != nil {
		level = zapcore.InfoLevel
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

func newVersionCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ctx.jsonOut {
				return writeJSON(cmd, buildconfig.VersionInfo())
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "fitcheck %s (%s)\n", buildconfig.Version(), buildconfig.Commit())
			return err
		},
	}
}
