// Package cmd implements the command-line interface for todobridge.
//
// This package provides the following commands:
//   - serve: Start the MCP server to provide Todoist tools for AI assistants
//   - rest: Start the JSON REST API server
//   - version: Display version information
//
// The serve command is the default command when no subcommand is
// specified.
package cmd
