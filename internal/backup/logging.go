package backup

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Verbosity selects how much ends up on the console. The log file
// always records info and above.
type Verbosity int

const (
	// Quiet writes nothing to the console, for cron.
	Quiet Verbosity = iota
	// Normal shows errors on the console.
	Normal
	// Verbose shows everything on the console.
	Verbose
)

// LogDir returns the directory rotating log files are written to,
// creating it if needed.
func LogDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".local", "state", "backup-wrapper", "log")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// NewLogger builds a logger writing human-readable lines to console and,
// when common.logfile is set, structured records to a rotating file
// under dir.
func NewLogger(common Common, dir string, verbosity Verbosity, console io.Writer) zerolog.Logger {
	var writers []io.Writer

	consoleLevel := zerolog.ErrorLevel
	switch verbosity {
	case Quiet:
		consoleLevel = zerolog.Disabled
	case Verbose:
		consoleLevel = zerolog.DebugLevel
	}
	if consoleLevel != zerolog.Disabled {
		cw := zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339}
		writers = append(writers, leveledWriter{w: cw, min: consoleLevel})
	}

	if common.Logfile != "" {
		count := common.Logcount
		if count == 0 {
			count = 62
		}
		rotating := &lumberjack.Logger{
			Filename:   filepath.Join(dir, common.Logfile),
			MaxBackups: count,
			MaxSize:    50, // MB
		}
		writers = append(writers, leveledWriter{w: rotating, min: zerolog.InfoLevel})
	}

	if len(writers) == 0 {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
}

// leveledWriter drops events below its minimum level so console and
// file can filter independently.
type leveledWriter struct {
	w   io.Writer
	min zerolog.Level
}

func (l leveledWriter) Write(p []byte) (int, error) {
	return l.w.Write(p)
}

func (l leveledWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < l.min {
		return len(p), nil
	}
	if lw, ok := l.w.(zerolog.LevelWriter); ok {
		return lw.WriteLevel(level, p)
	}
	return l.w.Write(p)
}
