// Package backup drives scheduled rdiff-backup runs: it reads a config
// describing one or more backup sets, runs preflight checks, invokes
// rdiff-backup per set, purges old increments and optionally syncs the
// log directory to a remote path.
package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration, one file for all backup sets.
type Config struct {
	Common Common `yaml:"common"`
	Sets   []Set  `yaml:"sets"`
}

// Common holds settings shared by all sets.
type Common struct {
	// Logfile names the rotating log file; empty disables file logging.
	Logfile string `yaml:"logfile"`
	// Logcount caps the number of rotated log files kept.
	Logcount int `yaml:"logcount"`
	// Synclogs is an rsync destination the log directory is pushed to
	// after all sets ran. Empty disables the sync.
	Synclogs string `yaml:"synclogs"`
}

// Set describes a single backup source/destination pair.
type Set struct {
	Name        string `yaml:"name"`
	Source      string `yaml:"source"`
	Destination string `yaml:"destination"`

	// Pingcheck is a host that must answer a ping before the set runs.
	Pingcheck string `yaml:"pingcheck"`
	// Dircheck is a path that must exist before the set runs, typically
	// a mount point.
	Dircheck string `yaml:"dircheck"`

	// Options are extra rdiff-backup arguments, passed through verbatim.
	Options []string `yaml:"options"`
	// RemoveOlderThan purges increments older than the given age
	// (rdiff-backup time spec, e.g. "6M") after a successful run.
	RemoveOlderThan string `yaml:"remove_older_than"`
}

// restore flags must never leak into an automated backup run
var forbiddenOptions = []string{"-r", "--restore-as-of"}

// DefaultPath returns the standard config location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "backup-wrapper", "config.yaml"), nil
}

// LoadConfig reads and validates a config file. Source, destination and
// check paths get ~ expanded.
func LoadConfig(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(cfg.Sets) == 0 {
		return nil, fmt.Errorf("%s: no backup sets defined", path)
	}
	for i := range cfg.Sets {
		s := &cfg.Sets[i]
		if s.Name == "" {
			return nil, fmt.Errorf("%s: set %d has no name", path, i)
		}
		if s.Source == "" || s.Destination == "" {
			return nil, fmt.Errorf("%s: set %q needs source and destination", path, s.Name)
		}
		s.Source = expandUser(s.Source)
		s.Destination = expandUser(s.Destination)
		s.Dircheck = expandUser(s.Dircheck)
		for _, opt := range s.Options {
			for _, forbidden := range forbiddenOptions {
				if opt == forbidden || strings.HasPrefix(opt, forbidden+"=") {
					return nil, fmt.Errorf("%s: set %q uses forbidden option %s", path, s.Name, forbidden)
				}
			}
		}
	}
	cfg.Common.Synclogs = expandUser(cfg.Common.Synclogs)
	return &cfg, nil
}

func expandUser(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
