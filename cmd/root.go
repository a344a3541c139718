package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the todobridge application
var rootCmd = &cobra.Command{
	Use:   "todobridge",
	Short: "Relay Todoist tasks to REST and MCP clients",
	Long: `todobridge is a thin relay in front of the Todoist REST API. It
validates every payload crossing the boundary against JSON Schemas and
exposes the result through two front ends:

  - An MCP (Model Context Protocol) server for AI assistants
  - A JSON REST API for everything else`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "todobridge version %s\n" .Version}}`)

	// If no subcommand is provided, run the MCP server by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newRestCmd())
	rootCmd.AddCommand(newVersionCmd())
}
