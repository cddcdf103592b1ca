// Package main is the entry point for the avaroute gateway.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vyrodovalexey/avaroute/internal/observability"
)

// Version information (set at build time).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// cliFlags holds command line flags.
type cliFlags struct {
	configPath  string
	logLevel    string
	logFormat   string
	watch       bool
	showVersion bool
}

func main() {
	flags := parseFlags(os.Args[1:])

	if flags.showVersion {
		printVersion()
		return
	}

	logger, err := initLogger(flags.logLevel, flags.logFormat, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, flags, logger); err != nil {
		logger.Error("gateway exited with error", observability.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

// parseFlags parses command line flags. Environment variables provide
// the defaults.
func parseFlags(args []string) cliFlags {
	fs := flag.NewFlagSet("avaroute", flag.ExitOnError)

	var f cliFlags
	fs.StringVar(&f.configPath, "config", getEnvOrDefault("GATEWAY_CONFIG_PATH", "configs/gateway.yaml"),
		"Path to configuration file")
	fs.StringVar(&f.logLevel, "log-level", getEnvOrDefault("GATEWAY_LOG_LEVEL", ""),
		"Log level (debug, info, warn, error); overrides the configuration file")
	fs.StringVar(&f.logFormat, "log-format", getEnvOrDefault("GATEWAY_LOG_FORMAT", ""),
		"Log format (json, console); overrides the configuration file")
	fs.BoolVar(&f.watch, "watch", getEnvBool("GATEWAY_WATCH_CONFIG", true),
		"Reload routes when the configuration file changes")
	fs.BoolVar(&f.showVersion, "version", false, "Show version information")
	_ = fs.Parse(args)

	return f
}

// printVersion prints version information.
func printVersion() {
	fmt.Printf("avaroute version %s\n", version)
	fmt.Printf("  Build time: %s\n", buildTime)
	fmt.Printf("  Git commit: %s\n", gitCommit)
}

// initLogger builds a logger; empty values fall back to info/json/stdout.
func initLogger(level, format, output string) (observability.Logger, error) {
	cfg := observability.DefaultLogConfig()
	if level != "" {
		cfg.Level = level
	}
	if format != "" {
		cfg.Format = format
	}
	if output != "" {
		cfg.Output = output
	}
	return observability.NewLogger(cfg)
}
