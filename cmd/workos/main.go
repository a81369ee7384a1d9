// WorkOS: Personal Work Intelligence MCP Server
//
// An MCP server that integrates with any AI assistant to track work time,
// maintain a markdown knowledge base, and turn the accumulated history
// into duration estimates, work breakdowns, and expertise analysis.
//
// Usage:
//
//	workos serve    # Start MCP server (stdio transport)
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	wserver "github.com/workosdev/workos/internal/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("workos v%s\n", wserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	s, err := wserver.New()
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	return server.ServeStdio(s)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `WorkOS v%s — Personal Work Intelligence MCP Server

Usage:
  workos serve    Start the MCP server (stdio transport)

Configuration:
  Set WORKOS_HOME to the workspace directory that holds the time log,
  Knowledge/, and People/ (defaults to the current directory).

  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "workos": {
        "command": "workos",
        "args": ["serve"],
        "env": { "WORKOS_HOME": "/path/to/workspace" }
      }
    }
  }
`, wserver.Version)
}
