// Command transliterate renames filesystem entries to their ASCII
// equivalent transliterations.
//
// Example:
//
//	$ transliterate -v --dry-run .
//	./naïve -> naive
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/infothrill/go-clitools/internal/fsname"
	"github.com/infothrill/go-clitools/internal/fswalk"
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
		version.Print(stdout, "transliterate")
		return 0
	}

	fs := flag.NewFlagSet("transliterate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var verbose, dryRun bool
	fs.BoolVar(&verbose, "v", false, "report each rename")
	fs.BoolVar(&verbose, "verbose", false, "report each rename")
	fs.BoolVar(&dryRun, "d", false, "do not rename, only report")
	fs.BoolVar(&dryRun, "dry-run", false, "do not rename, only report")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		printUsage(stderr)
		return 2
	}

	exitCode := 0
	for _, arg := range fs.Args() {
		start := expandUser(arg)
		// Children are renamed before their parent directory so no walked
		// path goes stale mid-run.
		err := fswalk.BottomUp(start, func(path string, info os.FileInfo) error {
			// A failed entry (usually a name collision) must not stop the
			// rest of the tree.
			if err := fsname.Rename(path, verbose, dryRun, stdout); err != nil {
				fmt.Fprintf(stderr, "error: %v\n", err)
				exitCode = 1
			}
			return nil
		})
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			exitCode = 1
		}
	}
	return exitCode
}

// expandUser resolves a leading ~ to the current user's home directory.
func expandUser(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return home + path[1:]
		}
	}
	return path
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:\n  transliterate [-v] [-d|--dry-run] PATH [PATH...]\n\nRenames filesystem entries to ASCII equivalent transliterations.")
}
