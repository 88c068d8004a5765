// Package fslint detects issues with files: permissions, ownership and
// naming.
package fslint

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"syscall"

	"github.com/gosimple/slug"
)

// A Check inspects one filesystem entry and reports whether it fails.
type Check interface {
	Name() string
	Description() string
	Check(path string, info os.FileInfo) bool
}

// A Fixer is a Check that can mechanically repair what it flags.
type Fixer interface {
	Check
	Fix(path string, info os.FileInfo) error
}

// A Suggester is a Check that can propose a replacement name.
type Suggester interface {
	Check
	Suggest(path string) string
}

// Other-class permission bits on os.FileMode.
const (
	otherRead  = 0o004
	otherWrite = 0o002
	otherExec  = 0o001
)

// Registry returns one instance of every known check, sorted by name.
func Registry() []Check {
	checks := []Check{
		worldWritable{},
		worldReadable{},
		worldReadableDirs{},
		&owner{uid: uint32(os.Getuid())},
		&group{gid: uint32(os.Getgid())},
		newWronglyExecutable(),
		upperCaseExtension{},
		orphanExecutableBit{},
		newTempfile(),
		newProblematicName(),
	}
	sort.Slice(checks, func(i, j int) bool { return checks[i].Name() < checks[j].Name() })
	return checks
}

type worldWritable struct{}

func (worldWritable) Name() string        { return "worldwritable" }
func (worldWritable) Description() string { return "world writable files" }
func (worldWritable) Check(path string, info os.FileInfo) bool {
	return info.Mode().Perm()&otherWrite != 0
}
func (worldWritable) Fix(path string, info os.FileInfo) error {
	return os.Chmod(path, info.Mode().Perm()&^otherWrite)
}

type worldReadable struct{}

func (worldReadable) Name() string        { return "worldreadable" }
func (worldReadable) Description() string { return "world readable (or executable) files" }
func (worldReadable) Check(path string, info os.FileInfo) bool {
	return info.Mode().Perm()&(otherRead|otherExec) != 0
}
func (worldReadable) Fix(path string, info os.FileInfo) error {
	return os.Chmod(path, info.Mode().Perm()&^(otherRead|otherExec))
}

type worldReadableDirs struct{}

func (worldReadableDirs) Name() string        { return "worldreadabledirs" }
func (worldReadableDirs) Description() string { return "world readable directories" }
func (worldReadableDirs) Check(path string, info os.FileInfo) bool {
	return info.IsDir() && info.Mode().Perm()&(otherRead|otherExec) != 0
}
func (worldReadableDirs) Fix(path string, info os.FileInfo) error {
	return os.Chmod(path, info.Mode().Perm()&^(otherRead|otherExec))
}

type owner struct{ uid uint32 }

func (*owner) Name() string        { return "owner" }
func (*owner) Description() string { return "files not owned by the current user" }
func (c *owner) Check(path string, info os.FileInfo) bool {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return false
	}
	return st.Uid != c.uid
}

type group struct{ gid uint32 }

func (*group) Name() string        { return "group" }
func (*group) Description() string { return "files not owned by the current group" }
func (c *group) Check(path string, info os.FileInfo) bool {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return false
	}
	return st.Gid != c.gid
}

// dataExtensions are file types that never legitimately carry an executable
// bit.
var dataExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".doc": true, ".xml": true, ".js": true,
	".css": true, ".png": true, ".gif": true, ".ppt": true, ".vsd": true,
	".xls": true, ".json": true, ".html": true, ".tiff": true, ".ini": true,
	".java": true, ".graffle": true, ".sql": true, ".jar": true, ".mov": true,
	".pdf": true, ".properties": true, ".psd": true, ".rtf": true,
	".dvi": true, ".log": true, ".wmf": true, ".txt": true, ".bmp": true,
	".tif": true, ".cdr": true, ".eps": true, ".zip": true, ".avi": true,
	".mp4": true, ".odt": true, ".csv": true, ".ttf": true, ".xhtml": true,
}

type wronglyExecutable struct{}

func newWronglyExecutable() wronglyExecutable { return wronglyExecutable{} }

func (wronglyExecutable) Name() string        { return "wronglyexecutable" }
func (wronglyExecutable) Description() string { return "executable bit on known data file types" }
func (wronglyExecutable) Check(path string, info os.FileInfo) bool {
	if info.IsDir() {
		return false
	}
	if info.Mode().Perm()&0o111 == 0 {
		return false
	}
	return dataExtensions[strings.ToLower(filepath.Ext(path))]
}
func (wronglyExecutable) Fix(path string, info os.FileInfo) error {
	return os.Chmod(path, info.Mode().Perm()&^os.FileMode(0o111))
}

// okUpperExtensions are conventional upper-case extensions left alone.
var okUpperExtensions = map[string]bool{".PL": true, ".C": true}

type upperCaseExtension struct{}

func (upperCaseExtension) Name() string        { return "uppercaseextension" }
func (upperCaseExtension) Description() string { return "filenames with upper case extensions" }
func (upperCaseExtension) Check(path string, info os.FileInfo) bool {
	if info.IsDir() {
		return false
	}
	ext := filepath.Ext(path)
	return !okUpperExtensions[ext] && strings.ToLower(ext) != ext
}

type orphanExecutableBit struct{}

func (orphanExecutableBit) Name() string { return "orphanexecutablebit" }
func (orphanExecutableBit) Description() string {
	return "executable bit set without the matching read bit"
}
func (orphanExecutableBit) Check(path string, info os.FileInfo) bool {
	perm := info.Mode().Perm()
	switch {
	case perm&0o100 != 0 && perm&0o400 == 0:
		return true
	case perm&0o010 != 0 && perm&0o040 == 0:
		return true
	case perm&otherExec != 0 && perm&otherRead == 0:
		return true
	}
	return false
}
func (orphanExecutableBit) Fix(path string, info os.FileInfo) error {
	perm := info.Mode().Perm()
	if perm&0o400 == 0 {
		perm &^= 0o100
	}
	if perm&0o040 == 0 {
		perm &^= 0o010
	}
	if perm&otherRead == 0 {
		perm &^= otherExec
	}
	return os.Chmod(path, perm)
}

type tempfile struct{ re *regexp.Regexp }

func newTempfile() *tempfile {
	return &tempfile{
		re: regexp.MustCompile(`^(core|.*~|dead\.letter|,.*|.*\.v|.*\.emacs_[0-9]*|.*\.[Bb][Aa][Kk]|.*\.swp)$`),
	}
}

func (*tempfile) Name() string        { return "tempfile" }
func (*tempfile) Description() string { return "files that look like leftover temporary files" }
func (c *tempfile) Check(path string, info os.FileInfo) bool {
	return !info.IsDir() && c.re.MatchString(filepath.Base(path))
}

type problematicName struct{ re *regexp.Regexp }

func newProblematicName() *problematicName {
	expressions := []string{
		`.*\s+`,     // spaces at end
		`\s+.*`,     // spaces at start
		`.*\s\s+.*`, // 2 or more adjacent spaces
		`-.*`,       // - at start of name
		`.*\s-.*`,   // - after space in name
	}
	return &problematicName{
		re: regexp.MustCompile(`^(` + strings.Join(expressions, "|") + `)$`),
	}
}

func (*problematicName) Name() string        { return "problematicname" }
func (*problematicName) Description() string { return "files with weird or shell-hostile names" }
func (c *problematicName) Check(path string, info os.FileInfo) bool {
	return c.re.MatchString(filepath.Base(path))
}

// Suggest proposes a slugified replacement, keeping the extension.
func (*problematicName) Suggest(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	candidate := slug.Make(stem)
	if candidate == "" {
		candidate = "unnamed"
	}
	return candidate + strings.ToLower(ext)
}
