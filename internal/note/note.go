// Package note creates dated markdown notes inside a tree of topic
// directories, optionally seeded from a template file.
//
// The layout it expects is a base directory with one subdirectory per
// topic, e.g. meetings/daily, meetings/weekly. A note is named after its
// date, `2026-08-30.md`, with an optional suffix, `2026-08-30-alice.md`.
// A `__template__.md` in the topic directory (or, failing that, in the
// base directory) provides the initial content. A `__suffix__` file in
// the topic directory holds the question to ask for the filename suffix.
package note

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	templateName = "__template__.md"
	suffixName   = "__suffix__"
)

// Subdirs returns the sorted names of the directories directly under base.
func Subdirs(base string) ([]string, error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// SuffixPrompt returns the question stored in the topic's __suffix__
// file, or ok=false when the topic does not ask for a suffix.
func SuffixPrompt(topicDir string) (prompt string, ok bool, err error) {
	content, err := os.ReadFile(filepath.Join(topicDir, suffixName))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return strings.TrimSpace(string(content)), true, nil
}

// Filename builds the note filename for a date and an optional suffix.
func Filename(date time.Time, suffix string) string {
	if suffix == "" {
		return date.Format("2006-01-02") + ".md"
	}
	return fmt.Sprintf("%s-%s.md", date.Format("2006-01-02"), suffix)
}

// Create ensures the note file exists inside base/topic and returns its
// path. A fresh note is seeded from the topic's template, falling back
// to the base directory's template; an existing note is left untouched.
func Create(base, topic, name string) (string, error) {
	topicDir := filepath.Join(base, topic)
	info, err := os.Stat(topicDir)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", topicDir)
	}

	target := filepath.Join(topicDir, name)
	if _, err := os.Stat(target); err == nil {
		return target, nil
	} else if !os.IsNotExist(err) {
		return "", err
	}

	for _, tpl := range []string{
		filepath.Join(topicDir, templateName),
		filepath.Join(base, templateName),
	} {
		if _, err := os.Stat(tpl); err == nil {
			return target, copyFile(tpl, target)
		}
	}
	return target, os.WriteFile(target, nil, 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// EditorCommand returns the editor argv to open a note with, honoring
// VISUAL, then EDITOR, then falling back to vim.
func EditorCommand() []string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return strings.Fields(v)
		}
	}
	return []string{"vim"}
}
