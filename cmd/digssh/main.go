// Command digssh prints the HostName configured for a host alias in
// ~/.ssh/config.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kevinburke/ssh_config"

	"github.com/infothrill/go-clitools/internal/version"
)

func main() {
	os.Exit(cliMain(os.Args[1:], os.Stdout, os.Stderr))
}

func cliMain(args []string, stdout, stderr io.Writer) int {
	if version.HelpRequested(args) {
		printUsage(stdout)
		return 0
	}
	if version.Requested(args) {
		version.Print(stdout, "digssh")
		return 0
	}

	fs := flag.NewFlagSet("digssh", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("f", "", "ssh config file (default ~/.ssh/config)")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		printUsage(stderr)
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "error: exactly one host alias is required")
		printUsage(stderr)
		return 2
	}
	alias := fs.Arg(0)

	path := *configPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(stderr, "error: cannot locate home directory: %v\n", err)
			return 1
		}
		path = filepath.Join(home, ".ssh", "config")
	}

	hostname, err := lookup(path, alias)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if hostname == "" {
		return 1
	}
	fmt.Fprintln(stdout, hostname)
	return 0
}

// lookup resolves the HostName for alias using a real ssh_config parser, so
// wildcard Host patterns and quoting behave as ssh itself would treat them.
func lookup(path, alias string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := ssh_config.Decode(f)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", path, err)
	}
	hostname, err := cfg.Get(alias, "HostName")
	if err != nil {
		return "", fmt.Errorf("lookup %s: %w", alias, err)
	}
	return strings.TrimSpace(hostname), nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:\n  digssh [-f config] ALIAS\n\nPrints the HostName configured for ALIAS in the ssh config (default ~/.ssh/config).\nExits 1 when the alias has no HostName.")
}
