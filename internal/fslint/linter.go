package fslint

import (
	"fmt"
	"os"
	"path/filepath"

	ignore "github.com/sabhiram/go-gitignore"
)

// Linter runs a set of registered checks over filesystem entries and
// accumulates failing paths per check.
type Linter struct {
	checks []Check
	failed map[string][]string
	ignore *ignore.GitIgnore
}

// New returns a Linter with no checks registered.
func New() *Linter {
	return &Linter{failed: map[string][]string{}}
}

// Register adds a check to the run.
func (l *Linter) Register(c Check) {
	l.checks = append(l.checks, c)
}

// Checks returns the registered checks in registration order.
func (l *Linter) Checks() []Check {
	return l.checks
}

// Ignore installs gitignore-style patterns; matching paths are skipped.
func (l *Linter) Ignore(patterns []string) {
	l.ignore = ignore.CompileIgnoreLines(patterns...)
}

// Lint runs every registered check against the entry. With fix set, checks
// that know how to repair their finding do so; the failure is still recorded
// so the summary reflects what was found.
func (l *Linter) Lint(path string, info os.FileInfo, fix bool) error {
	if l.ignore != nil && l.ignore.MatchesPath(filepath.ToSlash(path)) {
		return nil
	}
	for _, c := range l.checks {
		if !c.Check(path, info) {
			continue
		}
		l.failed[c.Name()] = append(l.failed[c.Name()], path)
		if !fix {
			continue
		}
		fixer, ok := c.(Fixer)
		if !ok {
			continue
		}
		if err := fixer.Fix(path, info); err != nil {
			return fmt.Errorf("fix %s on %s: %w", c.Name(), path, err)
		}
		// Later checks must see the repaired mode.
		updated, err := os.Lstat(path)
		if err != nil {
			return err
		}
		info = updated
	}
	return nil
}

// Failed returns the failing paths recorded for the named check.
func (l *Linter) Failed(name string) []string {
	return l.failed[name]
}

// TotalFailed returns the number of recorded failures across all checks.
func (l *Linter) TotalFailed() int {
	n := 0
	for _, paths := range l.failed {
		n += len(paths)
	}
	return n
}
