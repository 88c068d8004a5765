// Package audio batch-converts audio files to mp3 by driving the lame and
// flac command line encoders.
package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/infothrill/go-clitools/internal/execx"
)

// Encoder invocations are replaceable for tests.
var (
	runCommand  = execx.Run
	runPipeline = execx.Pipeline
)

// encodeTimeout bounds a single file conversion.
const encodeTimeout = 30 * time.Minute

// Converter converts individual audio files into a destination directory.
// Methods are safe for concurrent use; progress output is serialized.
type Converter struct {
	Verbose bool
	DryRun  bool

	mu  sync.Mutex
	out func(format string, args ...any)
}

// NewConverter returns a Converter reporting progress through report.
func NewConverter(verbose, dryRun bool, report func(format string, args ...any)) *Converter {
	return &Converter{Verbose: verbose, DryRun: dryRun, out: report}
}

func (c *Converter) report(col *color.Color, format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if col != nil {
		c.out("%s", col.Sprintf(format, args...))
		return
	}
	c.out(format, args...)
}

// strategyFor returns the matched source extension and conversion function,
// or "" when the file type is not handled.
func (c *Converter) strategyFor(path string) (string, func(ctx context.Context, src, dst string) error) {
	switch {
	case strings.HasSuffix(path, ".wav"), strings.HasSuffix(path, ".aiff"):
		return filepath.Ext(path), c.convertWave
	case strings.HasSuffix(path, ".flac"):
		return ".flac", c.convertFlac
	case strings.HasSuffix(path, ".mp3"):
		return ".mp3", c.resampleMP3
	}
	return "", nil
}

// Convert converts path into destDir, deriving the output name by replacing
// the matched extension with .mp3. Unhandled file types are skipped.
func (c *Converter) Convert(ctx context.Context, path, destDir string) error {
	ext, convert := c.strategyFor(path)
	if convert == nil {
		if c.Verbose {
			c.report(color.New(color.FgBlue), "Skipping %q", path)
		}
		return nil
	}

	srcName := filepath.Base(path)
	dstName := strings.TrimSuffix(srcName, ext) + ".mp3"
	dstPath := filepath.Join(destDir, dstName)

	c.report(nil, "Converting %q", path)
	if c.DryRun {
		return nil
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", destDir, err)
	}
	if _, err := os.Stat(dstPath); err == nil {
		c.report(color.New(color.FgYellow), "WARN: %q already exists, skipping", dstPath)
		return nil
	}
	if err := convert(ctx, path, dstPath); err != nil {
		c.report(color.New(color.FgRed), "Error converting %q: %v", path, err)
		return fmt.Errorf("convert %s: %w", path, err)
	}
	return nil
}

// convertWave encodes wav/aiff with lame at a fixed 320kbit rate.
func (c *Converter) convertWave(ctx context.Context, src, dst string) error {
	_, err := runCommand(ctx, execx.Cmd{
		Argv:    []string{"lame", "-S", "--silent", "-b", "320", src, dst},
		Timeout: encodeTimeout,
	})
	return err
}

// convertFlac decodes with flac and pipes into lame, carrying the vorbis
// comments over as id3v2 tags:
//
//	flac --stdout --silent --decode src | lame -b 320 --replaygain-accurate \
//	    --add-id3v2 --pad-id3v2-size 256 --ignore-tag-errors \
//	    --ta .. --tt .. --tl .. --tg .. --tn .. --ty .. - dst
func (c *Converter) convertFlac(ctx context.Context, src, dst string) error {
	tags, err := ReadTags(src)
	if err != nil {
		// Encode anyway; the replaygain header lame writes is non-destructive
		// and a tagless source should still convert.
		c.report(color.New(color.FgYellow), "WARN: no tags read from %q: %v", src, err)
	}
	lameArgs := append([]string{
		"lame", "-b", "320", "--replaygain-accurate", "--add-id3v2",
		"--pad-id3v2-size", "256", "--ignore-tag-errors",
	}, tagArgs(tags)...)
	lameArgs = append(lameArgs, "-", dst)

	_, err = runPipeline(ctx,
		execx.Cmd{Argv: []string{"flac", "--stdout", "--silent", "--decode", src}},
		execx.Cmd{Argv: lameArgs},
		encodeTimeout,
	)
	return err
}

// resampleMP3 re-encodes an mp3 at 128kbit; lame preserves existing tags.
func (c *Converter) resampleMP3(ctx context.Context, src, dst string) error {
	_, err := runCommand(ctx, execx.Cmd{
		Argv:    []string{"lame", "--mp3input", "-b", "128", src, dst},
		Timeout: encodeTimeout,
	})
	return err
}

// tagArgs maps read tags onto lame's id3 flags in a fixed order.
func tagArgs(tags Tags) []string {
	var args []string
	appendTag := func(flag, value string) {
		if value != "" {
			args = append(args, flag, value)
		}
	}
	appendTag("--ta", tags.Artist)
	appendTag("--tt", tags.Title)
	appendTag("--tl", tags.Album)
	appendTag("--tg", tags.Genre)
	appendTag("--tn", tags.Track)
	appendTag("--ty", tags.Year)
	return args
}

// DestDir computes the output directory for path: alongside the source when
// targetParent is empty, otherwise the source-relative location re-rooted
// under targetParent.
func DestDir(sourceParent, targetParent, path string) string {
	if targetParent == "" {
		return filepath.Dir(path)
	}
	// sourceParent may be the file itself when a single file was given
	// on the command line
	if sourceParent == path {
		return targetParent
	}
	rel, err := filepath.Rel(sourceParent, path)
	if err != nil {
		return filepath.Dir(path)
	}
	return filepath.Dir(filepath.Join(targetParent, rel))
}
