// Command detectencoding attempts to detect the text encoding of files.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/gogs/chardet"

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
		version.Print(stdout, "detectencoding")
		return 0
	}
	if len(args) < 1 {
		fmt.Fprintln(stderr, "Please provide one or more filenames.")
		printUsage(stderr)
		return 2
	}

	detector := chardet.NewTextDetector()
	exitCode := 0
	for _, fname := range args {
		content, err := os.ReadFile(fname)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", fname, err)
			exitCode = 1
			continue
		}
		result, err := detector.DetectBest(content)
		if err != nil {
			fmt.Fprintf(stderr, "%s: detection failed: %v\n", fname, err)
			exitCode = 1
			continue
		}
		fmt.Fprintf(stdout, "%s:%s (confidence %d)\n", fname, result.Charset, result.Confidence)
	}
	return exitCode
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:\n  detectencoding FILE [FILE...]\n\nPrints the detected character encoding of each file with a confidence percentage.")
}
