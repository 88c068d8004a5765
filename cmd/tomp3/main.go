// Command tomp3 batch converts audio file trees to mp3 using the lame and
// flac encoders.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"github.com/infothrill/go-clitools/internal/audio"
	"github.com/infothrill/go-clitools/internal/execx"
	"github.com/infothrill/go-clitools/internal/fswalk"
	"github.com/infothrill/go-clitools/internal/version"
)

type cliConfig struct {
	target  string
	verbose bool
	dryRun  bool
	jobs    int
	paths   []string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(cliMain(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func cliMain(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if version.HelpRequested(args) {
		printUsage(stdout)
		return 0
	}
	if version.Requested(args) {
		version.Print(stdout, "tomp3")
		return 0
	}

	var cfg cliConfig
	fs := flag.NewFlagSet("tomp3", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.target, "t", "", "target directory root")
	fs.StringVar(&cfg.target, "target", "", "target directory root")
	fs.BoolVar(&cfg.verbose, "v", false, "report skipped files and traversal")
	fs.BoolVar(&cfg.dryRun, "d", false, "do not convert, only report")
	fs.BoolVar(&cfg.dryRun, "dry-run", false, "do not convert, only report")
	fs.IntVar(&cfg.jobs, "j", 1, "number of concurrent conversions")
	fs.IntVar(&cfg.jobs, "jobs", 1, "number of concurrent conversions")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		printUsage(stderr)
		return 2
	}
	cfg.paths = fs.Args()

	if len(cfg.paths) == 0 {
		fmt.Fprintln(stdout, "Nothing to do, no paths specified.")
		return 0
	}
	if cfg.jobs < 1 {
		cfg.jobs = 1
	}
	if cfg.target != "" {
		cfg.target = expandUser(cfg.target)
	}
	if !cfg.dryRun && !execx.Available("lame") {
		fmt.Fprintln(stderr, "error: lame is not installed")
		return 1
	}

	return run(ctx, cfg, stdout, stderr)
}

func run(ctx context.Context, cfg cliConfig, stdout, stderr io.Writer) int {
	conv := audio.NewConverter(cfg.verbose, cfg.dryRun, func(format string, args ...any) {
		fmt.Fprintf(stdout, format+"\n", args...)
	})

	var failures atomic.Int64
	for _, arg := range cfg.paths {
		start := expandUser(arg)
		if cfg.verbose {
			color.New(color.FgBlue).Fprintf(stdout, "Traversing %q:\n", start)
		}

		// Collect first so the worker pool sees a stable file list.
		var files []string
		err := fswalk.Files(start, func(path string, info os.FileInfo) error {
			files = append(files, path)
			return nil
		})
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.jobs)
		for _, path := range files {
			g.Go(func() error {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				destDir := audio.DestDir(start, cfg.target, path)
				// Conversion errors are reported per file; keep going.
				if err := conv.Convert(gctx, path, destDir); err != nil {
					failures.Add(1)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
	}

	if failures.Load() > 0 {
		return 1
	}
	return 0
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
	b.WriteString("tomp3: batch convert audio files to mp3 (lame/flac required)\n\n")
	b.WriteString("Usage:\n  tomp3 [flags] PATH [PATH...]\n\n")
	b.WriteString("Flags:\n")
	b.WriteString("  -t, --target DIR\n    Re-root converted files under DIR (default: alongside sources)\n")
	b.WriteString("  -j, --jobs N\n    Number of concurrent conversions (default 1)\n")
	b.WriteString("  -d, --dry-run\n    Do not convert, only report\n")
	b.WriteString("  -v\n    Report skipped files and traversal\n")
	fmt.Fprintln(w, strings.TrimRight(b.String(), "\n"))
}
