// Package fswalk provides deterministic directory traversal for tools that
// rename, lint or convert trees. Children of a directory are always visited
// in sorted order, directories before files, so runs are reproducible and
// output ordering is stable.
package fswalk

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Fn is invoked for each visited entry with its path and lstat info.
type Fn func(path string, info os.FileInfo) error

// Files visits every regular file under start, recursively. If start is
// itself a file it is visited directly; a missing path is an error.
func Files(start string, fn Fn) error {
	info, err := os.Lstat(start)
	if err != nil {
		return fmt.Errorf("invalid argument %q: %w", start, err)
	}
	if !info.IsDir() {
		return fn(start, info)
	}
	return walkFiles(start, fn)
}

func walkFiles(dir string, fn Fn) error {
	dirs, files, err := children(dir)
	if err != nil {
		return err
	}
	for _, name := range files {
		path := filepath.Join(dir, name)
		info, err := os.Lstat(path)
		if err != nil {
			return err
		}
		if err := fn(path, info); err != nil {
			return err
		}
	}
	for _, name := range dirs {
		if err := walkFiles(filepath.Join(dir, name), fn); err != nil {
			return err
		}
	}
	return nil
}

// Entries visits every entry under start top-down: per directory, the sorted
// child directories first, then the sorted files, then a descent into each
// child directory. The start path itself is not visited unless it is a file.
func Entries(start string, fn Fn) error {
	info, err := os.Lstat(start)
	if err != nil {
		return fmt.Errorf("invalid argument %q: %w", start, err)
	}
	if !info.IsDir() {
		return fn(start, info)
	}
	return walkEntries(start, fn)
}

func walkEntries(dir string, fn Fn) error {
	dirs, files, err := children(dir)
	if err != nil {
		return err
	}
	for _, group := range [][]string{dirs, files} {
		for _, name := range group {
			path := filepath.Join(dir, name)
			info, err := os.Lstat(path)
			if err != nil {
				return err
			}
			if err := fn(path, info); err != nil {
				return err
			}
		}
	}
	for _, name := range dirs {
		if err := walkEntries(filepath.Join(dir, name), fn); err != nil {
			return err
		}
	}
	return nil
}

// BottomUp visits children before their parent directory, so fn may rename
// the visited entry without invalidating paths still to be walked. The start
// path itself is not visited unless it is a file.
func BottomUp(start string, fn Fn) error {
	info, err := os.Lstat(start)
	if err != nil {
		return fmt.Errorf("invalid argument %q: %w", start, err)
	}
	if !info.IsDir() {
		return fn(start, info)
	}
	return walkBottomUp(start, fn)
}

func walkBottomUp(dir string, fn Fn) error {
	dirs, files, err := children(dir)
	if err != nil {
		return err
	}
	for _, name := range files {
		path := filepath.Join(dir, name)
		info, err := os.Lstat(path)
		if err != nil {
			return err
		}
		if err := fn(path, info); err != nil {
			return err
		}
	}
	for _, name := range dirs {
		path := filepath.Join(dir, name)
		if err := walkBottomUp(path, fn); err != nil {
			return err
		}
		info, err := os.Lstat(path)
		if err != nil {
			return err
		}
		if err := fn(path, info); err != nil {
			return err
		}
	}
	return nil
}

// children returns the sorted directory and non-directory names within dir.
func children(dir string) (dirs, files []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		} else {
			files = append(files, e.Name())
		}
	}
	sort.Strings(dirs)
	sort.Strings(files)
	return dirs, files, nil
}
