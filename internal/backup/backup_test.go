package backup

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/infothrill/go-clitools/internal/execx"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
common:
  logfile: backups.log
  logcount: 10
  synclogs: backuphost::logs/
sets:
  - name: home
    source: /home/paul
    destination: /mnt/backup/home
    pingcheck: backuphost
    dircheck: /mnt/backup
    options: ["--exclude", "/home/paul/tmp"]
    remove_older_than: 6M
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	want := &Config{
		Common: Common{Logfile: "backups.log", Logcount: 10, Synclogs: "backuphost::logs/"},
		Sets: []Set{{
			Name:            "home",
			Source:          "/home/paul",
			Destination:     "/mnt/backup/home",
			Pingcheck:       "backuphost",
			Dircheck:        "/mnt/backup",
			Options:         []string{"--exclude", "/home/paul/tmp"},
			RemoveOlderThan: "6M",
		}},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	path := writeConfig(t, `
sets:
  - name: docs
    source: ~/Documents
    destination: /mnt/backup/docs
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, "Documents"); cfg.Sets[0].Source != want {
		t.Fatalf("source = %q, want %q", cfg.Sets[0].Source, want)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	cases := map[string]string{
		"no sets":          "common:\n  logfile: x\n",
		"missing name":     "sets:\n  - source: /a\n    destination: /b\n",
		"missing source":   "sets:\n  - name: x\n    destination: /b\n",
		"forbidden option": "sets:\n  - name: x\n    source: /a\n    destination: /b\n    options: [\"--restore-as-of\", \"now\"]\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, content)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

type fakeExec struct {
	argvs [][]string
	fail  map[string]bool // keyed on argv[0]+" "+argv[1]
}

func (f *fakeExec) run(ctx context.Context, c execx.Cmd) (execx.Result, error) {
	f.argvs = append(f.argvs, c.Argv)
	key := strings.Join(c.Argv[:2], " ")
	if f.fail[key] {
		return execx.Result{}, errors.New("exit status 1")
	}
	return execx.Result{Stdout: []byte("done\n")}, nil
}

func testRunner(fake *fakeExec) *Runner {
	r := NewRunner(zerolog.New(&bytes.Buffer{}))
	r.runCommand = fake.run
	r.statPath = func(string) error { return nil }
	return r
}

func TestRunnerBackupAndPurge(t *testing.T) {
	fake := &fakeExec{}
	r := testRunner(fake)
	cfg := &Config{Sets: []Set{{
		Name:            "home",
		Source:          "/home/paul",
		Destination:     "/mnt/backup/home",
		Options:         []string{"--exclude", "/home/paul/tmp"},
		RemoveOlderThan: "6M",
	}}}

	if !r.Run(context.Background(), cfg) {
		t.Fatal("Run reported failure")
	}
	want := [][]string{
		{"rdiff-backup", "--exclude", "/home/paul/tmp", "/home/paul", "/mnt/backup/home"},
		{"rdiff-backup", "--remove-older-than", "6M", "--force", "/mnt/backup/home"},
	}
	if diff := cmp.Diff(want, fake.argvs); diff != "" {
		t.Fatalf("command mismatch (-want +got):\n%s", diff)
	}
}

func TestRunnerSkipsSetOnFailedPing(t *testing.T) {
	fake := &fakeExec{fail: map[string]bool{"ping -c": true}}
	r := testRunner(fake)
	cfg := &Config{Sets: []Set{{
		Name:        "remote",
		Source:      "/data",
		Destination: "/mnt/backup/data",
		Pingcheck:   "unreachable.example.org",
	}}}

	if !r.Run(context.Background(), cfg) {
		t.Fatal("a skipped set must not count as failure")
	}
	for _, argv := range fake.argvs {
		if argv[0] == "rdiff-backup" {
			t.Fatalf("backup ran despite failed ping check: %v", argv)
		}
	}
}

func TestRunnerSkipsSetOnMissingDir(t *testing.T) {
	fake := &fakeExec{}
	r := testRunner(fake)
	r.statPath = func(string) error { return os.ErrNotExist }
	cfg := &Config{Sets: []Set{{
		Name:        "mount",
		Source:      "/data",
		Destination: "/mnt/backup/data",
		Dircheck:    "/mnt/backup",
	}}}

	if !r.Run(context.Background(), cfg) {
		t.Fatal("a skipped set must not count as failure")
	}
	if len(fake.argvs) != 0 {
		t.Fatalf("no commands expected, got %v", fake.argvs)
	}
}

func TestRunnerFailedSetDoesNotStopOthers(t *testing.T) {
	fake := &fakeExec{fail: map[string]bool{"rdiff-backup /bad": true}}
	r := testRunner(fake)
	cfg := &Config{Sets: []Set{
		{Name: "bad", Source: "/bad", Destination: "/mnt/bad"},
		{Name: "good", Source: "/good", Destination: "/mnt/good"},
	}}

	if r.Run(context.Background(), cfg) {
		t.Fatal("Run must report the failed set")
	}
	var sources []string
	for _, argv := range fake.argvs {
		sources = append(sources, argv[1])
	}
	if diff := cmp.Diff([]string{"/bad", "/good"}, sources); diff != "" {
		t.Fatalf("sources mismatch (-want +got):\n%s", diff)
	}
}

func TestRunnerSyncsLogs(t *testing.T) {
	fake := &fakeExec{}
	r := testRunner(fake)
	r.LogDir = "/var/log/backup-wrapper"
	cfg := &Config{
		Common: Common{Synclogs: "host::logs"},
		Sets:   []Set{{Name: "x", Source: "/a", Destination: "/b"}},
	}

	if !r.Run(context.Background(), cfg) {
		t.Fatal("Run reported failure")
	}
	last := fake.argvs[len(fake.argvs)-1]
	want := []string{"rsync", "-aupz", "/var/log/backup-wrapper/", "host::logs/"}
	if diff := cmp.Diff(want, last); diff != "" {
		t.Fatalf("rsync argv mismatch (-want +got):\n%s", diff)
	}
}
