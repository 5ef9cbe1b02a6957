package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"inlineai.app/relay/core/config"
	"inlineai.app/relay/internal/client"
)

func newHealthCmd(cfg config.Config) *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Show which collaborators the relay has configured",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			health, err := client.New(server, nil).Health(ctx)
			if err != nil {
				return fmt.Errorf("checking relay health: %w", err)
			}

			color.New(color.FgCyan, color.Bold).Printf("%s @ %s\n", health.Service, server)
			printConfigured("tracker", health.Configured.Tracker)
			printConfigured("llm", health.Configured.LLM)
			printConfigured("blob store", health.Configured.BlobStore)
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", cfg.ServerURL, "Relay base URL")
	return cmd
}

func printConfigured(name string, ok bool) {
	if ok {
		fmt.Printf("  %-11s %s\n", name, color.GreenString("configured"))
		return
	}
	fmt.Printf("  %-11s %s\n", name, color.RedString("missing"))
}
