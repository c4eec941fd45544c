package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "viewdeck",
		Short: "Server-driven UI orchestration for agents and frontends",
		Long: `Viewdeck holds a registry of named views composed of typed UI
components, lets authorized callers mutate that state, and pushes every
accepted mutation to subscribed frontends in real time.

It speaks two transports:

  • MCP over stdio, so agents can author and inspect views as tools
  • HTTP with websocket/SSE streams for frontends rendering the views`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		mcpCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
