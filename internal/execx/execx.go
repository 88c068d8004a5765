// Package execx runs external helper programs (lame, flac, pwgen,
// rdiff-backup, rsync, ping) with a bounded lifetime and captured output.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// ErrTimedOut is returned when a command exceeds its deadline.
var ErrTimedOut = errors.New("command timed out")

// Cmd describes one external command invocation.
type Cmd struct {
	Argv    []string      // program and arguments; Argv[0] is resolved via PATH
	Stdin   io.Reader     // optional stdin feed
	Timeout time.Duration // optional; 0 means inherit the parent context only
}

// Result captures the outcome of a finished command.
type Result struct {
	Stdout []byte
	Stderr []byte
}

// Available reports whether the named program can be found on PATH.
func Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// Run executes c and returns its captured output. A non-zero exit maps to an
// error carrying the trimmed stderr text (falling back to the wait error), and
// a deadline hit maps to ErrTimedOut.
func Run(parent context.Context, c Cmd) (Result, error) {
	if len(c.Argv) == 0 {
		return Result{}, errors.New("empty argv")
	}
	ctx := parent
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Argv[0], c.Argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if c.Stdin != nil {
		cmd.Stdin = c.Stdin
	}

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	return res, normalizeWaitError(ctx, err, strings.TrimSpace(stderr.String()))
}

// Pipeline runs producer and consumer with the producer's stdout connected to
// the consumer's stdin (the shell's "producer | consumer"). It returns the
// consumer's captured output. Both processes share the same deadline, and a
// failure in either is reported.
func Pipeline(parent context.Context, producer, consumer Cmd, timeout time.Duration) (Result, error) {
	if len(producer.Argv) == 0 || len(consumer.Argv) == 0 {
		return Result{}, errors.New("empty argv")
	}
	ctx := parent
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, timeout)
		defer cancel()
	}

	prod := exec.CommandContext(ctx, producer.Argv[0], producer.Argv[1:]...)
	cons := exec.CommandContext(ctx, consumer.Argv[0], consumer.Argv[1:]...)

	pipe, err := prod.StdoutPipe()
	if err != nil {
		return Result{}, fmt.Errorf("stdout pipe: %w", err)
	}
	cons.Stdin = pipe

	var prodErr, consOut, consErr bytes.Buffer
	prod.Stderr = &prodErr
	cons.Stdout = &consOut
	cons.Stderr = &consErr

	if err := prod.Start(); err != nil {
		return Result{}, fmt.Errorf("start %s: %w", producer.Argv[0], err)
	}
	if err := cons.Start(); err != nil {
		_ = prod.Wait()
		return Result{}, fmt.Errorf("start %s: %w", consumer.Argv[0], err)
	}

	consWait := cons.Wait()
	prodWait := prod.Wait()

	res := Result{Stdout: consOut.Bytes(), Stderr: consErr.Bytes()}
	if err := normalizeWaitError(ctx, prodWait, strings.TrimSpace(prodErr.String())); err != nil {
		return res, fmt.Errorf("%s: %w", producer.Argv[0], err)
	}
	if err := normalizeWaitError(ctx, consWait, strings.TrimSpace(consErr.String())); err != nil {
		return res, fmt.Errorf("%s: %w", consumer.Argv[0], err)
	}
	return res, nil
}

// normalizeWaitError maps timeout and process errors to deterministic errors.
func normalizeWaitError(ctx context.Context, waitErr error, stderrText string) error {
	if ctx.Err() == context.DeadlineExceeded {
		return ErrTimedOut
	}
	if waitErr != nil {
		if stderrText != "" {
			return errors.New(stderrText)
		}
		return waitErr
	}
	return nil
}
