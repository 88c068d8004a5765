package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCliMain_RenamesTree(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "smörgåsbord")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "naïve.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	var out, errBuf bytes.Buffer
	if code := cliMain([]string{"-v", root}, &out, &errBuf); code != 0 {
		t.Fatalf("exit code = %d, stderr = %q", code, errBuf.String())
	}
	if _, err := os.Stat(filepath.Join(root, "smorgasbord", "naive.txt")); err != nil {
		t.Fatalf("expected renamed tree: %v", err)
	}
	if !strings.Contains(out.String(), "-> naive.txt") || !strings.Contains(out.String(), "-> smorgasbord") {
		t.Fatalf("verbose output incomplete: %q", out.String())
	}
}

func TestCliMain_DryRunLeavesTreeAlone(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "café.md"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	var out, errBuf bytes.Buffer
	if code := cliMain([]string{"--dry-run", "-v", root}, &out, &errBuf); code != 0 {
		t.Fatalf("exit code = %d, stderr = %q", code, errBuf.String())
	}
	if _, err := os.Stat(filepath.Join(root, "café.md")); err != nil {
		t.Fatal("dry run must not rename")
	}
	if !strings.Contains(out.String(), "cafe.md") {
		t.Fatalf("dry run should report the candidate: %q", out.String())
	}
}

func TestCliMain_SingleFileArgument(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "Dvořák.flac")
	if err := os.WriteFile(src, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	var out, errBuf bytes.Buffer
	if code := cliMain([]string{src}, &out, &errBuf); code != 0 {
		t.Fatalf("exit code = %d, stderr = %q", code, errBuf.String())
	}
	if _, err := os.Stat(filepath.Join(root, "Dvorak.flac")); err != nil {
		t.Fatalf("file not renamed: %v", err)
	}
}

func TestCliMain_CollisionDoesNotStopWalk(t *testing.T) {
	root := t.TempDir()
	// café.md collides with an existing cafe.md; naïve.md does not
	for _, name := range []string{"cafe.md", "café.md", "naïve.md"} {
		if err := os.WriteFile(filepath.Join(root, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	var out, errBuf bytes.Buffer
	if code := cliMain([]string{root}, &out, &errBuf); code != 1 {
		t.Fatalf("exit code = %d, want 1, stderr = %q", code, errBuf.String())
	}
	if !strings.Contains(errBuf.String(), "already exists") {
		t.Fatalf("collision not reported: %q", errBuf.String())
	}
	if _, err := os.Stat(filepath.Join(root, "café.md")); err != nil {
		t.Fatal("colliding file must be left in place")
	}
	if _, err := os.Stat(filepath.Join(root, "naive.md")); err != nil {
		t.Fatalf("remaining entries should still be renamed: %v", err)
	}
}

func TestCliMain_MissingPath(t *testing.T) {
	var out, errBuf bytes.Buffer
	if code := cliMain([]string{filepath.Join(t.TempDir(), "gone")}, &out, &errBuf); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(errBuf.String(), "invalid argument") {
		t.Fatalf("stderr = %q", errBuf.String())
	}
}
