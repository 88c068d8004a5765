// Command id3fix converts ID3v1 tags on mp3 files to ID3v2, in place.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/infothrill/go-clitools/internal/fswalk"
	"github.com/infothrill/go-clitools/internal/id3"
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
		version.Print(stdout, "id3fix")
		return 0
	}

	fs := flag.NewFlagSet("id3fix", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var dryRun, verbose bool
	fs.BoolVar(&dryRun, "dry-run", false, "only show affected files")
	fs.BoolVar(&verbose, "v", false, "list files being inspected")
	fs.BoolVar(&verbose, "verbose", false, "list files being inspected")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		printUsage(stderr)
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "error: no paths specified")
		printUsage(stderr)
		return 2
	}

	exitCode := 0
	for _, start := range fs.Args() {
		err := fswalk.Files(start, func(path string, info os.FileInfo) error {
			if verbose {
				fmt.Fprintln(stdout, path)
			}
			versions, err := id3.Detect(path)
			if err != nil {
				fmt.Fprintf(stderr, "error: %v\n", err)
				exitCode = 1
				return nil
			}
			if !versions.V1 || versions.V2 {
				return nil
			}
			if !verbose {
				fmt.Fprintln(stdout, path)
			}
			if dryRun {
				return nil
			}
			if err := id3.Convert(path); err != nil {
				fmt.Fprintf(stderr, "error: %v\n", err)
				exitCode = 1
				return nil
			}
			after, err := id3.Detect(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "%s: %s -> %s\n", path, describe(versions), describe(after))
			return nil
		})
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
	}
	return exitCode
}

func describe(v id3.Versions) string {
	var parts []string
	if v.V1 {
		parts = append(parts, "v1")
	}
	if v.V2 {
		parts = append(parts, "v2")
	}
	if len(parts) == 0 {
		return "untagged"
	}
	return strings.Join(parts, "+")
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:\n  id3fix [--dry-run] [-v] PATH [PATH...]\n\nWrites an ID3v2 tag on every mp3 that carries only an ID3v1 tag, keeping\nthe v1 trailer in place.")
}
