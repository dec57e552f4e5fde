// ABOUTME: Entry point for the coven-chat client
// ABOUTME: Runs the terminal chat loop or serves the web front-end

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/coven-chat/internal/agent"
	"github.com/2389/coven-chat/internal/config"
	"github.com/2389/coven-chat/internal/gateway"
	"github.com/2389/coven-chat/internal/logging"
)

// Version is set at build time.
var version = "dev"

const banner = `
                                       _           _
  ___ _____   _____ _ __           ___| |__   __ _| |_
 / __/ _ \ \ / / _ \ '_ \ _____   / __| '_ \ / _' | __|
| (_| (_) \ V /  __/ | | |       | (__| | | | (_| | |_
 \___\___/ \_/ \___|_| |_|        \___|_| |_|\__,_|\__|
`

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "chat":
		err = runChat(ctx)
	case "serve":
		err = runServe(ctx)
	case "version":
		fmt.Println(version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: coven-chat <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  chat      Chat with the agent in this terminal")
	fmt.Println("  serve     Start the web chat server")
	fmt.Println("  version   Print the version")
}

func printBanner() {
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)
}

// loadGateway reads the config file, falling back to defaults when it does
// not exist, and builds the gateway. Logs go to stderr.
func loadGateway() (*gateway.Gateway, *config.Config, string, error) {
	configPath := config.Path()

	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, nil, "", fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cfg.Logging, os.Stderr)

	gw, err := gateway.New(cfg, logger)
	if err != nil {
		return nil, nil, "", fmt.Errorf("creating gateway: %w", err)
	}
	return gw, cfg, configPath, nil
}

func runServe(ctx context.Context) error {
	printBanner()

	gw, cfg, configPath, err := loadGateway()
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:      http://%s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Agent:     %s\n", cfg.Agent.URL)
	if cfg.Metrics.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Metrics:   %s\n", cfg.Metrics.Path)
	}
	fmt.Println()

	return gw.Run(ctx)
}

func runChat(ctx context.Context) error {
	printBanner()

	gw, cfg, _, err := loadGateway()
	if err != nil {
		return err
	}

	fmt.Printf("Chatting with %s at %s\n", agent.AgentName, cfg.Agent.URL)
	fmt.Println("Type a message and press Enter. /help for commands. Ctrl+C to quit.")
	fmt.Println()

	r := newREPL(gw.Conversation(), os.Stdin, os.Stdout, cfg.UI.Sender)
	if err := r.run(ctx); err != nil {
		return err
	}

	fmt.Println("\nGoodbye!")
	return nil
}
