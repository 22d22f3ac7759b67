// Package cli provides the command-line interface for globotrack.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/raphaelgruber/globotrack/internal/auth"
	"github.com/raphaelgruber/globotrack/internal/config"
	"github.com/raphaelgruber/globotrack/internal/gateway"
	"github.com/raphaelgruber/globotrack/internal/metrics"
	"github.com/raphaelgruber/globotrack/internal/session"
	"github.com/raphaelgruber/globotrack/internal/store"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config, logger and session
	cfg        config.Config
	logger     *slog.Logger
	closeLog   func() error
	collector  *metrics.Collector
	ctrl       *session.Controller
	closeStore func(context.Context) error

	// Lazy-initialized AI gateway
	gw *gateway.Gateway
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "globotrack",
	Short: "AI travel route planner",
	Long: `GloboTrack finds multi-leg travel routes between two places with a hosted
AI model, keeps the routes you like in a local profile, and answers travel
questions in an interactive chat.

All prices are in Indian Rupees (INR).`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip local setup for commands that do not touch the profile
		if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "stats" {
			return nil
		}

		cfg = config.Load()

		var console io.Writer
		if verbose {
			console = os.Stderr
		}
		logger, closeLog = config.SetupLogger(cfg.LogFile, cfg.LogLevel, console)
		slog.SetDefault(logger)
		collector = metrics.NewCollector()

		ctx := cmd.Context()
		profileStore, closeFn, err := store.Open(ctx, cfg, collector, logger)
		if err != nil {
			return err
		}
		closeStore = closeFn

		ctrl, err = session.Open(ctx, profileStore, auth.LocalVerifier{}, logger)
		if err != nil {
			return fmt.Errorf("open session: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if closeStore != nil {
			if err := closeStore(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close profile store: %v\n", err)
			}
		}
		if closeLog != nil {
			_ = closeLog()
		}
	},
}

// getGateway creates the AI gateway on first use so that commands which only
// touch the profile work without an API key.
func getGateway(ctx context.Context) (*gateway.Gateway, error) {
	if gw != nil {
		return gw, nil
	}
	g, err := gateway.NewFromConfig(ctx, cfg, collector, logger)
	if err != nil {
		return nil, err
	}
	gw = g
	return gw, nil
}

// Execute adds all child commands to the root command and runs it.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (logs to stderr)")

	// Add subcommands
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(routesCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statsCmd)
}
