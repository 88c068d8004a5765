package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCliMain_NoArgs(t *testing.T) {
	var out, errBuf bytes.Buffer
	if code := cliMain(nil, &out, &errBuf); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	if !strings.Contains(errBuf.String(), "filenames") {
		t.Fatalf("stderr = %q, want filename hint", errBuf.String())
	}
}

func TestCliMain_DetectsUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "utf8.txt")
	if err := os.WriteFile(path, []byte("héllo wörld, こんにちは\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var out, errBuf bytes.Buffer
	if code := cliMain([]string{path}, &out, &errBuf); code != 0 {
		t.Fatalf("exit code = %d, stderr = %q", code, errBuf.String())
	}
	line := out.String()
	if !strings.HasPrefix(line, path+":") {
		t.Fatalf("output %q not prefixed with filename", line)
	}
	if !strings.Contains(line, "UTF-8") {
		t.Fatalf("output %q does not report UTF-8", line)
	}
	if !strings.Contains(line, "confidence") {
		t.Fatalf("output %q has no confidence", line)
	}
}

func TestCliMain_MissingFileContinues(t *testing.T) {
	good := filepath.Join(t.TempDir(), "ok.txt")
	if err := os.WriteFile(good, []byte("plain ascii text, enough to detect\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var out, errBuf bytes.Buffer
	code := cliMain([]string{filepath.Join(t.TempDir(), "nope.txt"), good}, &out, &errBuf)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(out.String(), good+":") {
		t.Fatalf("good file not reported in %q", out.String())
	}
}
