// Command mcp-reminder exposes the ledger reminder store over MCP.
//
// The server keeps the scheduler running in the background, so due
// reminders are logged to stderr while a client is connected.
//
// Usage:
//
//	./mcp-reminder          # Start MCP server (stdio)
//	./mcp-reminder --help   # Show help
//
// Environment:
//
//	REMINDERS_CONFIG  Path to the config file (default: ~/.ledger-reminders/config.yaml)
//	REMINDERS_TOKEN   Session token for the ledger API
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/notexe/ledger-reminders/internal/app"
	"github.com/notexe/ledger-reminders/internal/config"
	"github.com/notexe/ledger-reminders/internal/notify"
	"github.com/notexe/ledger-reminders/internal/reminder"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--help", "-h":
			printHelp()
			return
		}
	}

	configPath := os.Getenv("REMINDERS_CONFIG")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	// Stdout carries the protocol.
	cfg.UI.ColoredOutput = false

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	a.Notifier.AddSink(notify.NewLogSink(a.Logger))

	sched := a.Scheduler()
	sched.Start(ctx)
	defer sched.Stop()

	s := reminder.NewServer(a.Store)

	a.Logger.Info("serving MCP over stdio", zap.String("api", cfg.Backend.BaseURL))
	if err := server.ServeStdio(s.MCPServer()); err != nil {
		a.Logger.Error("server error", zap.Error(err))
		sched.Stop()
		a.Close()
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(`MCP Reminder Server - ledger reminders via MCP protocol

USAGE:
    mcp-reminder          Start MCP server (communicates via stdio)
    mcp-reminder --help   Show this help

ENVIRONMENT:
    REMINDERS_CONFIG        Path to the config file
                            Default: ~/.ledger-reminders/config.yaml
    REMINDERS_TOKEN         Session token for the ledger API
    REMINDERS_API_BASE_URL  Ledger API base URL
                            Default: http://localhost:8000/api

TOOLS:
    list_reminders     List visible reminders (all=true includes scheduled ones)
    unread_count       Count visible unread reminders
    add_reminder       Schedule a manual reminder (title, date, time)
    mark_read          Mark a reminder as read
    mark_all_read      Mark every reminder as read
    delete_reminder    Delete a reminder
    clear_reminders    Delete everything except future manual reminders
    refresh_reminders  Refetch the list from the server

CONFIGURATION:
    Register with an MCP client, e.g.:
    {
      "mcpServers": {
        "reminders": {
          "command": "/path/to/mcp-reminder",
          "args": []
        }
      }
    }`)
}
