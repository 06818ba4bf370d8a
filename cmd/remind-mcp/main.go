// Command remind-mcp provides an MCP server for scheduling and listing
// reminders.
//
// Usage:
//
//	./remind-mcp          # Start MCP server (stdio)
//	./remind-mcp --help   # Show help
//
// Environment:
//
//	REMIND_STORE_PATH  Where reminders are kept (default: ~/.remind/reminders.json)
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/notexe/remind/internal/cli"
	"github.com/notexe/remind/internal/config"
	"github.com/notexe/remind/internal/detach"
	"github.com/notexe/remind/internal/reminder"
)

func main() {
	// Reminders scheduled through MCP re-execute this binary as their worker.
	if cli.IsWorkerInvocation(os.Args[1:]) {
		os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--help", "-h":
			printHelp()
			return
		}
	}

	cfg, err := config.Load(config.GetDefaultConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	store, err := reminder.OpenStore(cfg.StoreLocation())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	launcher, err := detach.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to prepare worker launcher: %v\n", err)
		os.Exit(1)
	}

	engine := reminder.NewEngine(reminder.EngineConfig{
		Store:    store,
		Location: cfg.StoreLocation(),
		Launcher: launcher,
	})
	s := reminder.NewServer(engine)

	if err := server.ServeStdio(s.MCPServer()); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(`MCP Remind Server - Desktop reminders via MCP protocol

USAGE:
    remind-mcp          Start MCP server (communicates via stdio)
    remind-mcp --help   Show this help

ENVIRONMENT:
    REMIND_STORE_PATH   Where reminders are kept
                        Default: ~/.remind/reminders.json

TOOLS:
    schedule_reminder   Schedule a notification (message, time, repeat, mute, permanent)
    list_reminders      List reminders (optional status filter: pending, done, missed)

CONFIGURATION:
    Add to your MCP client's config:
    {
      "mcpServers": {
        "remind": {
          "command": "/path/to/remind-mcp",
          "args": []
        }
      }
    }`)
}
