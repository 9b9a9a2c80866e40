package main

import (
	"github.com/spf13/cobra"
)

// Build information constants
const (
	Version = "0.1.0"
	appName = "graphgate"
)

var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Natural-language gateway for graph queries",
		Long: appName + ` accepts questions over websocket sessions, plans them with a
language model, generates and validates graph queries, and executes
them against a FalkorDB graph store.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"configuration file path (environment variables take precedence)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newDebugCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}
