package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func init() {
	color.NoColor = true
}

func TestCliMain_EmptyRun(t *testing.T) {
	var out, errBuf bytes.Buffer
	if code := cliMain(context.Background(), nil, &out, &errBuf); code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if !strings.Contains(out.String(), "Nothing to do") {
		t.Fatalf("stdout = %q", out.String())
	}
}

func TestCliMain_DryRunReportsConversions(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"one.wav", "two.flac", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	var out, errBuf bytes.Buffer
	code := cliMain(context.Background(), []string{"--dry-run", "-v", dir}, &out, &errBuf)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %q", code, errBuf.String())
	}
	for _, want := range []string{"one.wav", "two.flac"} {
		if !strings.Contains(out.String(), `Converting "`) || !strings.Contains(out.String(), want) {
			t.Fatalf("output missing conversion of %s: %q", want, out.String())
		}
	}
	if !strings.Contains(out.String(), "Skipping") {
		t.Fatalf("verbose output missing skip of notes.txt: %q", out.String())
	}
}

func TestCliMain_DryRunMissingPath(t *testing.T) {
	var out, errBuf bytes.Buffer
	code := cliMain(context.Background(), []string{"--dry-run", filepath.Join(t.TempDir(), "gone")}, &out, &errBuf)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
}

func TestCliMain_JobsFlagParsed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.wav"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	var out, errBuf bytes.Buffer
	code := cliMain(context.Background(), []string{"-j", "4", "--dry-run", dir}, &out, &errBuf)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %q", code, errBuf.String())
	}
}
