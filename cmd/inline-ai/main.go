package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"inlineai.app/relay/common/logger"
	"inlineai.app/relay/core/config"
)

var (
	version = "dev" // Overwritten at build time
	verbose bool
)

func main() {
	cfg, err := config.Load(config.ServiceTypeCLI)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	rootCmd := newRootCmd(cfg)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "inline-ai",
		Short: "Pick an element on a live page and file a change request for it",
		Long: `inline-ai opens a page in Chrome, lets you click the element you want
changed, and sends your description to the relay, which files a structured
issue in the configured tracker.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			// stdout belongs to the interactive output
			slog.SetDefault(slog.New(logger.NewTraceHandler(
				slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
			)))
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(
		newPickCmd(cfg),
		newHealthCmd(cfg),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("inline-ai version %s\n", version)
		},
	}
}
