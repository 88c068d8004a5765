// Command backup-wrapper runs rdiff-backup for every set in its config
// file, purges old increments and syncs logs, with exit codes and
// logging suitable for cron.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/infothrill/go-clitools/internal/backup"
	"github.com/infothrill/go-clitools/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(cliMain(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func cliMain(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if version.HelpRequested(args) {
		printUsage(stdout)
		return 0
	}
	if version.Requested(args) {
		version.Print(stdout, "backup-wrapper")
		return 0
	}

	fs := flag.NewFlagSet("backup-wrapper", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var configPath string
	var verbose, quiet bool
	fs.StringVar(&configPath, "c", "", "alternative config file")
	fs.StringVar(&configPath, "config", "", "alternative config file")
	fs.BoolVar(&verbose, "v", false, "be verbose")
	fs.BoolVar(&verbose, "verbose", false, "be verbose")
	fs.BoolVar(&quiet, "q", false, "be quiet")
	fs.BoolVar(&quiet, "quiet", false, "be quiet")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		printUsage(stderr)
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(stderr, "error: unexpected arguments")
		printUsage(stderr)
		return 2
	}

	if configPath == "" {
		var err error
		configPath, err = backup.DefaultPath()
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
	}
	cfg, err := backup.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	verbosity := backup.Normal
	if quiet {
		verbosity = backup.Quiet
	}
	if verbose {
		verbosity = backup.Verbose
	}

	logDir, err := backup.LogDir()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	log := backup.NewLogger(cfg.Common, logDir, verbosity, stderr)

	runner := backup.NewRunner(log)
	runner.LogDir = logDir
	if !runner.Run(ctx, cfg) {
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:\n  backup-wrapper [-c CONFIG] [-v | -q]\n\nRuns rdiff-backup for every set in the config file (default\n~/.config/backup-wrapper/config.yaml), purges increments older than\neach set's remove_older_than and optionally rsyncs the log directory.")
}
