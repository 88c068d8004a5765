package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/infothrill/go-clitools/internal/glrunners"
)

type fakeAPI struct {
	setting string
}

func (f *fakeAPI) FindGroup(ctx context.Context, name string) (int, error) { return 1, nil }

func (f *fakeAPI) SetGroupSharedRunnersSetting(ctx context.Context, groupID int, setting string) error {
	f.setting = setting
	return nil
}

func (f *fakeAPI) GroupProjects(ctx context.Context, groupID int) ([]glrunners.Project, error) {
	return nil, nil
}

func (f *fakeAPI) SetProjectSharedRunners(ctx context.Context, projectID int, enabled bool) error {
	return nil
}

func (f *fakeAPI) GroupRunners(ctx context.Context, groupID int) ([]glrunners.Runner, error) {
	return nil, nil
}

func (f *fakeAPI) SetRunnerPaused(ctx context.Context, runnerID int, paused bool) error {
	return nil
}

func withFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	fake := &fakeAPI{}
	orig := newAPI
	t.Cleanup(func() { newAPI = orig })
	newAPI = func(baseURL, token string) (glrunners.API, error) { return fake, nil }
	return fake
}

func TestCliMain_Disable(t *testing.T) {
	fake := withFakeAPI(t)

	var out, errBuf bytes.Buffer
	args := []string{"--disable", "--group", "homelab", "--gitlab-token", "glpat-test"}
	if code := cliMain(context.Background(), args, &out, &errBuf); code != 0 {
		t.Fatalf("exit code = %d, stderr = %q", code, errBuf.String())
	}
	if fake.setting != "disabled_and_unoverridable" {
		t.Fatalf("group setting = %q", fake.setting)
	}
}

func TestCliMain_EnableAndDisableConflict(t *testing.T) {
	withFakeAPI(t)

	var out, errBuf bytes.Buffer
	args := []string{"--enable", "--disable", "--group", "homelab", "--gitlab-token", "x"}
	if code := cliMain(context.Background(), args, &out, &errBuf); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	if !strings.Contains(errBuf.String(), "exactly one") {
		t.Fatalf("stderr = %q", errBuf.String())
	}
}

func TestCliMain_MissingToken(t *testing.T) {
	withFakeAPI(t)
	t.Setenv("GITLAB_TOKEN", "")

	var out, errBuf bytes.Buffer
	args := []string{"--enable", "--group", "homelab", "--gitlab-token", ""}
	if code := cliMain(context.Background(), args, &out, &errBuf); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
}

func TestCliMain_MissingGroup(t *testing.T) {
	withFakeAPI(t)

	var out, errBuf bytes.Buffer
	args := []string{"--enable", "--gitlab-token", "x"}
	if code := cliMain(context.Background(), args, &out, &errBuf); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	if !strings.Contains(errBuf.String(), "--group") {
		t.Fatalf("stderr = %q", errBuf.String())
	}
}
