// Command onlinepingcheck tests internet connectivity and prints
// "online" or "offline". The exit code follows suit, which makes it
// usable as a guard in shell scripts and cron jobs.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/infothrill/go-clitools/internal/netcheck"
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
		version.Print(stdout, "onlinepingcheck")
		return 0
	}

	fs := flag.NewFlagSet("onlinepingcheck", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	timeout := fs.Duration("timeout", time.Second, "per-probe timeout")
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

	checker := netcheck.New()
	checker.Timeout = *timeout
	if checker.Online(ctx) {
		fmt.Fprintln(stdout, "online")
		return 0
	}
	fmt.Fprintln(stdout, "offline")
	return 1
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:\n  onlinepingcheck [-timeout 1s]\n\nProbes well-known hosts, a batch of random public addresses and the DNS\nroot servers. Prints \"online\" and exits 0 as soon as one answers,\notherwise prints \"offline\" and exits 1.")
}
