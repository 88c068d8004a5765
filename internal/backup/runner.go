package backup

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/infothrill/go-clitools/internal/execx"
)

const (
	backupTimeout = 12 * time.Hour
	checkTimeout  = 10 * time.Second
	syncTimeout   = time.Hour
)

// Runner executes the backup sets of a config in order.
type Runner struct {
	log zerolog.Logger

	// LogDir is rsynced to common.synclogs after the run.
	LogDir string

	// replaceable for tests
	runCommand func(ctx context.Context, c execx.Cmd) (execx.Result, error)
	statPath   func(path string) error
}

// NewRunner returns a Runner logging through log.
func NewRunner(log zerolog.Logger) *Runner {
	return &Runner{
		log:        log,
		runCommand: execx.Run,
		statPath: func(path string) error {
			_, err := os.Stat(path)
			return err
		},
	}
}

// Run executes every set and reports whether all of them succeeded. A
// failing set does not stop the remaining ones.
func (r *Runner) Run(ctx context.Context, cfg *Config) bool {
	ok := true
	for i := range cfg.Sets {
		set := &cfg.Sets[i]
		r.log.Info().Str("set", set.Name).Msg("=== start ===")
		if err := r.runSet(ctx, set); err != nil {
			r.log.Error().Str("set", set.Name).Err(err).Msg("backup set failed")
			ok = false
		}
		r.log.Info().Str("set", set.Name).Msg("=== end ===")
		if ctx.Err() != nil {
			return false
		}
	}
	r.log.Info().Bool("success", ok).Msg("all sets done")

	if cfg.Common.Synclogs != "" && r.LogDir != "" {
		if err := r.syncLogs(ctx, cfg.Common.Synclogs); err != nil {
			r.log.Error().Err(err).Msg("log sync failed")
			ok = false
		}
	}
	return ok
}

func (r *Runner) runSet(ctx context.Context, set *Set) error {
	if !r.pingCheck(ctx, set) || !r.dirCheck(set) {
		// a skipped set is not a failure, the machine is simply not
		// reachable right now
		return nil
	}

	argv := []string{"rdiff-backup"}
	argv = append(argv, set.Options...)
	argv = append(argv, set.Source, set.Destination)
	r.log.Info().Str("source", set.Source).Str("destination", set.Destination).Msg("backing up")
	if err := r.exec(ctx, argv, backupTimeout); err != nil {
		return err
	}

	if set.RemoveOlderThan != "" {
		purge := []string{"rdiff-backup", "--remove-older-than", set.RemoveOlderThan, "--force", set.Destination}
		r.log.Info().Str("age", set.RemoveOlderThan).Msg("purging old increments")
		return r.exec(ctx, purge, backupTimeout)
	}
	return nil
}

func (r *Runner) pingCheck(ctx context.Context, set *Set) bool {
	if set.Pingcheck == "" {
		return true
	}
	err := r.exec(ctx, []string{"ping", "-c", "1", set.Pingcheck}, checkTimeout)
	if err != nil {
		r.log.Warn().Str("set", set.Name).Str("host", set.Pingcheck).Msg("host not reachable, skipping set")
		return false
	}
	return true
}

func (r *Runner) dirCheck(set *Set) bool {
	if set.Dircheck == "" {
		return true
	}
	if err := r.statPath(set.Dircheck); err != nil {
		r.log.Warn().Str("set", set.Name).Str("path", set.Dircheck).Msg("directory missing, skipping set")
		return false
	}
	return true
}

func (r *Runner) syncLogs(ctx context.Context, destination string) error {
	src := r.LogDir
	if !strings.HasSuffix(src, string(os.PathSeparator)) {
		src += string(os.PathSeparator)
	}
	if !strings.HasSuffix(destination, "/") {
		destination += "/"
	}
	r.log.Info().Str("destination", destination).Msg("syncing logs")
	return r.exec(ctx, []string{"rsync", "-aupz", src, destination}, syncTimeout)
}

func (r *Runner) exec(ctx context.Context, argv []string, timeout time.Duration) error {
	r.log.Debug().Strs("argv", argv).Msg("executing")
	res, err := r.runCommand(ctx, execx.Cmd{Argv: argv, Timeout: timeout})
	if err != nil {
		return err
	}
	for _, line := range strings.Split(strings.TrimRight(string(res.Stdout), "\n"), "\n") {
		if line != "" {
			r.log.Info().Msg(line)
		}
	}
	return nil
}
