// Command note creates a dated markdown note in a topic subdirectory of
// the current working directory and opens it in an editor. Topics are
// picked interactively with a fuzzy finder.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/araddon/dateparse"
	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/infothrill/go-clitools/internal/note"
	"github.com/infothrill/go-clitools/internal/version"
)

// replaceable for tests
var (
	pickTopic  = fuzzyPick
	openEditor = execEditor
	timeNow    = time.Now
)

func main() {
	os.Exit(cliMain(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func cliMain(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if version.HelpRequested(args) {
		printUsage(stdout)
		return 0
	}
	if version.Requested(args) {
		version.Print(stdout, "note")
		return 0
	}

	fs := flag.NewFlagSet("note", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dateSpec := fs.String("date", "", "date for the note instead of today, most common formats accepted")
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

	date := timeNow()
	if *dateSpec != "" {
		parsed, err := dateparse.ParseLocal(*dateSpec)
		if err != nil {
			fmt.Fprintf(stderr, "error: cannot parse date %q: %v\n", *dateSpec, err)
			return 2
		}
		date = parsed
	}

	if err := run(date, stdin, stdout); err != nil {
		if errors.Is(err, errAborted) {
			return 0
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

var errAborted = errors.New("aborted")

func run(date time.Time, stdin io.Reader, stdout io.Writer) error {
	base, err := os.Getwd()
	if err != nil {
		return err
	}
	topics, err := note.Subdirs(base)
	if err != nil {
		return err
	}
	if len(topics) == 0 {
		return fmt.Errorf("no topic directories under %s", base)
	}

	topic, err := pickTopic(topics)
	if err != nil {
		return err
	}

	suffix := ""
	if prompt, ok, err := note.SuffixPrompt(filepath.Join(base, topic)); err != nil {
		return err
	} else if ok {
		fmt.Fprintf(stdout, "%s ", prompt)
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		suffix = strings.TrimSpace(line)
	}

	path, err := note.Create(base, topic, note.Filename(date, suffix))
	if err != nil {
		return err
	}
	return openEditor(path)
}

func fuzzyPick(topics []string) (string, error) {
	idx, err := fuzzyfinder.Find(topics, func(i int) string { return topics[i] })
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return "", errAborted
		}
		return "", err
	}
	return topics[idx], nil
}

// execEditor replaces the current process with the editor so the
// terminal is handed over cleanly.
func execEditor(path string) error {
	argv := append(note.EditorCommand(), path)
	bin, err := exec.LookPath(argv[0])
	if err != nil {
		return fmt.Errorf("editor %q not found: %w", argv[0], err)
	}
	return syscall.Exec(bin, argv, os.Environ())
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:\n  note [--date DATE]\n\nPicks a topic subdirectory of the current directory, creates\nYYYY-MM-DD[-suffix].md in it (seeded from __template__.md when present)\nand opens it in $VISUAL, $EDITOR or vim.")
}
