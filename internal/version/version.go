// Package version carries build-time identity shared by every tool binary.
package version

import (
	"fmt"
	"io"
	"strings"
)

// Set via -ldflags at build time; defaults are useful for dev builds.
var (
	Version   = "v0.0.0-dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Print writes a concise single-line version string for the named tool.
func Print(w io.Writer, tool string) {
	// Example: rndpasswd version v1.2.3 (commit abcdef1, built 2025-08-17)
	fmt.Fprintf(w, "%s version %s (commit %s, built %s)\n", tool, Version, shortCommit(Commit), BuildDate)
}

func shortCommit(c string) string {
	c = strings.TrimSpace(c)
	if len(c) > 7 {
		return c[:7]
	}
	if c == "" {
		return "unknown"
	}
	return c
}

// Requested reports whether any canonical version token is present in args.
func Requested(args []string) bool {
	for _, a := range args {
		if a == "--version" || a == "-version" {
			return true
		}
	}
	return false
}

// HelpRequested reports whether any canonical help token is present in args.
func HelpRequested(args []string) bool {
	for _, a := range args {
		if a == "--help" || a == "-h" || a == "help" {
			return true
		}
	}
	return false
}
