package fswalk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// seed creates b/, b/x.txt, a.txt, c/, c/d/, c/d/e.txt under a temp root.
func seed(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{"b", "c", filepath.Join("c", "d")} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	for _, file := range []string{"a.txt", filepath.Join("b", "x.txt"), filepath.Join("c", "d", "e.txt")} {
		if err := os.WriteFile(filepath.Join(root, file), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func rel(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		r, err := filepath.Rel(root, p)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, filepath.ToSlash(r))
	}
	return out
}

func TestFiles_SortedRecursive(t *testing.T) {
	root := seed(t)
	var got []string
	err := Files(root, func(path string, info os.FileInfo) error {
		got = append(got, path)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"a.txt", "b/x.txt", "c/d/e.txt"}
	if diff := cmp.Diff(want, rel(t, root, got)); diff != "" {
		t.Fatalf("visit order mismatch (-want +got):\n%s", diff)
	}
}

func TestEntries_DirsBeforeFilesPerLevel(t *testing.T) {
	root := seed(t)
	var got []string
	err := Entries(root, func(path string, info os.FileInfo) error {
		got = append(got, path)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"b", "c", "a.txt", "b/x.txt", "c/d", "c/d/e.txt"}
	if diff := cmp.Diff(want, rel(t, root, got)); diff != "" {
		t.Fatalf("visit order mismatch (-want +got):\n%s", diff)
	}
}

func TestBottomUp_ChildrenBeforeParent(t *testing.T) {
	root := seed(t)
	seen := map[string]int{}
	var order []string
	err := BottomUp(root, func(path string, info os.FileInfo) error {
		r, _ := filepath.Rel(root, path)
		r = filepath.ToSlash(r)
		seen[r] = len(order)
		order = append(order, r)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen["c/d/e.txt"] > seen["c/d"] || seen["c/d"] > seen["c"] {
		t.Fatalf("children not visited before parents: %v", order)
	}
}

func TestBottomUp_RenameDuringWalkIsSafe(t *testing.T) {
	root := seed(t)
	err := BottomUp(root, func(path string, info os.FileInfo) error {
		// Rename every visited entry; parents are visited after children so
		// no pending path becomes stale.
		return os.Rename(path, path+"_r")
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "c_r", "d_r", "e.txt_r")); err != nil {
		t.Fatalf("renamed tree incomplete: %v", err)
	}
}

func TestFiles_SingleFileArgument(t *testing.T) {
	root := seed(t)
	target := filepath.Join(root, "a.txt")
	var got []string
	if err := Files(target, func(path string, info os.FileInfo) error {
		got = append(got, path)
		return nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != target {
		t.Fatalf("got %v, want just %q", got, target)
	}
}

func TestFiles_MissingPath(t *testing.T) {
	if err := Files(filepath.Join(t.TempDir(), "nope"), func(string, os.FileInfo) error { return nil }); err == nil {
		t.Fatal("expected error for missing path")
	}
}
