// Command fslint finds files that fail filesystem hygiene checks:
// permissions, ownership and naming.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/infothrill/go-clitools/internal/fslint"
	"github.com/infothrill/go-clitools/internal/fswalk"
	"github.com/infothrill/go-clitools/internal/version"
)

// stringSliceFlag implements flag.Value to collect repeatable string flags into a slice.
type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	if s == nil {
		return ""
	}
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type cliConfig struct {
	skip      stringSliceFlag
	exclude   stringSliceFlag
	listTests bool
	verbose   bool
	fix       bool
	paths     []string
}

func main() {
	os.Exit(cliMain(os.Args[1:], os.Stdout, os.Stderr))
}

func cliMain(args []string, stdout, stderr io.Writer) int {
	if version.HelpRequested(args) {
		printUsage(stdout)
		return 0
	}
	if version.Requested(args) {
		version.Print(stdout, "fslint")
		return 0
	}

	var cfg cliConfig
	fs := flag.NewFlagSet("fslint", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Var(&cfg.skip, "s", "skip the named check (repeatable)")
	fs.Var(&cfg.skip, "skip-test", "skip the named check (repeatable)")
	fs.Var(&cfg.exclude, "x", "gitignore-style pattern for paths to skip (repeatable)")
	fs.Var(&cfg.exclude, "exclude", "gitignore-style pattern for paths to skip (repeatable)")
	fs.BoolVar(&cfg.listTests, "l", false, "list available checks and exit")
	fs.BoolVar(&cfg.listTests, "list-tests", false, "list available checks and exit")
	fs.BoolVar(&cfg.verbose, "v", false, "list failing paths per check")
	fs.BoolVar(&cfg.fix, "fix", false, "repair mechanically fixable findings (chmod)")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		printUsage(stderr)
		return 2
	}
	cfg.paths = fs.Args()

	if cfg.listTests {
		bold := color.New(color.Bold)
		for _, c := range fslint.Registry() {
			bold.Fprintf(stdout, "%s: ", c.Name())
			fmt.Fprintln(stdout, c.Description())
		}
		return 0
	}
	if len(cfg.paths) == 0 {
		fmt.Fprintln(stderr, "error: no paths specified")
		printUsage(stderr)
		return 2
	}

	return run(cfg, stdout, stderr)
}

func run(cfg cliConfig, stdout, stderr io.Writer) int {
	skipped := map[string]bool{}
	for _, name := range cfg.skip {
		skipped[name] = true
	}

	linter := fslint.New()
	for _, c := range fslint.Registry() {
		if !skipped[c.Name()] {
			linter.Register(c)
		}
	}
	if len(cfg.exclude) > 0 {
		linter.Ignore(cfg.exclude)
	}

	for _, arg := range cfg.paths {
		start := expandUser(arg)
		err := fswalk.Entries(start, func(path string, info os.FileInfo) error {
			return linter.Lint(path, info, cfg.fix)
		})
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
	}

	printSummary(linter, cfg.verbose, stdout)
	if linter.TotalFailed() > 0 {
		return 1
	}
	return 0
}

// printSummary writes one line per check: its name in bold and the failure
// count in red (failures) or green (clean).
func printSummary(linter *fslint.Linter, verbose bool, w io.Writer) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed, color.Bold)
	green := color.New(color.FgGreen, color.Bold)

	for _, c := range linter.Checks() {
		failed := linter.Failed(c.Name())
		bold.Fprintf(w, "%s: ", c.Name())
		if len(failed) > 0 {
			red.Fprintf(w, "%d\n", len(failed))
			if verbose {
				for _, p := range failed {
					fmt.Fprintln(w, p)
					if s, ok := c.(fslint.Suggester); ok {
						fmt.Fprintf(w, "  suggestion: %s\n", s.Suggest(p))
					}
				}
			}
		} else {
			green.Fprintf(w, "0\n")
		}
	}
}

func expandUser(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return home + path[1:]
		}
	}
	return path
}

func printUsage(w io.Writer) {
	var b strings.Builder
	b.WriteString("fslint: find files that fail hygiene checks\n\n")
	b.WriteString("Usage:\n  fslint [flags] PATH [PATH...]\n\n")
	b.WriteString("Flags:\n")
	b.WriteString("  -s, --skip-test NAME\n    Skip the named check (repeatable)\n")
	b.WriteString("  -x, --exclude PATTERN\n    Gitignore-style pattern for paths to skip (repeatable)\n")
	b.WriteString("  -l, --list-tests\n    List available checks and exit\n")
	b.WriteString("  -v\n    List failing paths per check\n")
	b.WriteString("  --fix\n    Repair mechanically fixable findings (chmod)\n")
	fmt.Fprintln(w, strings.TrimRight(b.String(), "\n"))
}
