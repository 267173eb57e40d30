// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the Kenes CLI application.
// It implements subcommands for authentication, applications, documents,
// notifications and the AI assistant using the Cobra CLI framework. Every
// command reads and writes through the cached query layer; notifications
// published by that layer are rendered with pterm.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"kenes/cli/internal/config"
	apierr "kenes/cli/internal/errors"
	"kenes/cli/internal/httperrors"
	"kenes/cli/internal/logging"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

var (
	showVersion bool
	apiURLFlag  string
	verbose     bool
	outputFlag  string
	refreshFlag bool
)

// app is wired by PersistentPreRunE before any subcommand runs.
var app *application

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "kenes",
	Short: "Kenes CLI for credit case management",
	Long: `Kenes is a command-line client for the Kenes case-management service.
It signs you in, manages applications and generated documents, reads
notifications and talks to the AI assistant.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd == cmd.Root() {
			return nil
		}
		if outputFlag != outputTable && outputFlag != outputJSON {
			return fmt.Errorf("--output must be %q or %q", outputTable, outputJSON)
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if apiURLFlag != "" {
			cfg.APIURL = apiURLFlag
			if err := cfg.Validate(); err != nil {
				return err
			}
		}
		a, err := newApplication(cfg, verbose, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		a.presenter.Quiet = outputFlag == outputJSON
		app = a
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app != nil {
			app.close()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Fprintf(cmd.OutOrStdout(), "kenes %s\n", Version)
			return nil
		}
		// If no flag is set, show help
		return cmd.Help()
	},
}

// Execute runs the CLI application.
// It executes the root command and reports any error before exiting non-zero.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		reportError(err)
		os.Exit(1)
	}
}

// reportError prints err in the most helpful form for its kind.
func reportError(err error) {
	var e *apierr.E
	if errors.As(err, &e) && e.Kind == apierr.Network && e.Err != nil && app != nil &&
		!errors.Is(e.Err, context.Canceled) {
		httperrors.ShowNetworkError(e.Err, httperrors.ExtractHostFromURL(app.cfg.APIURL))
		return
	}
	logging.PresentAPIError(err)
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version information")
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "Override the API base URL (default from config or "+config.EnvAPIURL+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Write debug logs to stderr")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", outputTable, "Output format: table or json")
	rootCmd.PersistentFlags().BoolVar(&refreshFlag, "refresh", false, "Ignore cached data and fetch again")
}
