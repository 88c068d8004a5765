// Package fsname rewrites filesystem entry names to their ASCII
// transliteration.
package fsname

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/unicode/norm"
)

// Transliterate returns the ASCII transliteration of a single path component.
// The name is NFC-normalized first (macOS volumes hand out NFD names), and any
// slash produced by the transliteration (U+2044 and friends decay to "/") is
// replaced so the result stays a single component.
func Transliterate(name string) string {
	ascii := unidecode.Unidecode(norm.NFC.String(name))
	return strings.ReplaceAll(ascii, "/", "_")
}

// Rename renames the entry at path to its transliterated basename when that
// differs. With verbose it reports "path -> newname" on out; with dryRun the
// rename itself is skipped.
func Rename(path string, verbose, dryRun bool, out io.Writer) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	newBase := Transliterate(base)
	if newBase == base {
		return nil
	}
	if verbose {
		fmt.Fprintf(out, "%s -> %s\n", path, newBase)
	}
	if dryRun {
		return nil
	}
	newPath := filepath.Join(dir, newBase)
	if _, err := os.Lstat(newPath); err == nil {
		return fmt.Errorf("rename %s: target %s already exists", path, newBase)
	}
	if err := os.Rename(path, newPath); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
