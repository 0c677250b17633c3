// Package main is the entry point for the relay script runner.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dshills/relay/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	// Ensure cleanup on all exit paths
	defer func() {
		if err := application.Shutdown(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: shutdown: %v\n", err)
		}
	}()

	// Handle signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}

func parseFlags() app.Options {
	var opts app.Options
	var showVersion bool
	var showHelp bool
	var timeout time.Duration

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (.yaml, .yml or .toml)")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.ScriptPath, "script", "", "Lua script to run")
	flag.StringVar(&opts.ScriptPath, "s", "", "Lua script to run (shorthand)")
	flag.BoolVar(&opts.Dump, "dump", false, "Dump the registration table after the script ran")
	flag.StringVar(&opts.MetricsAddr, "metrics", "", "Serve Prometheus metrics on this address and keep running")
	flag.BoolVar(&opts.Watch, "watch", false, "Reload logging settings when the config file changes and keep running")
	flag.DurationVar(&timeout, "timeout", 0, "Script execution timeout (default 30s)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Relay - pattern-based event registry with Lua scripting\n\n")
		fmt.Fprintf(os.Stderr, "Usage: relay [options] [script.lua]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  relay handlers.lua                    Run a script\n")
		fmt.Fprintf(os.Stderr, "  relay -c relay.yaml -dump app.lua     Run and dump the registry\n")
		fmt.Fprintf(os.Stderr, "  relay -metrics :9090 -watch -c relay.yaml app.lua\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("Relay %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if timeout < 0 {
		fmt.Fprintf(os.Stderr, "Error: invalid timeout %s\n", timeout)
		os.Exit(1)
	}
	opts.ScriptTimeout = timeout

	// A positional argument is the script when -script is not given
	if opts.ScriptPath == "" && flag.NArg() > 0 {
		opts.ScriptPath = flag.Arg(0)
	}

	return opts
}
