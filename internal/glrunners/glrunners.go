// Package glrunners toggles a GitLab group between shared CI runners
// and its own private runners. Disabling shared runners on the group
// and every project while unpausing the group's private runners (and
// the reverse) makes it cheap to fall back to self-hosted CI when the
// free tier minutes run out.
package glrunners

import (
	"context"
	"fmt"
	"io"
)

// Shared runner settings accepted by the group API.
const (
	settingEnabled  = "enabled"
	settingDisabled = "disabled_and_unoverridable"
)

// Project is the slice of a GitLab project this package cares about.
type Project struct {
	ID                   int
	Name                 string
	SharedRunnersEnabled bool
}

// Runner is the slice of a GitLab runner this package cares about.
type Runner struct {
	ID          int
	Description string
	Paused      bool
}

// API is the narrow GitLab surface the switcher needs.
type API interface {
	// FindGroup resolves a group name to its id and returns an error
	// when no group of that name is visible to the token.
	FindGroup(ctx context.Context, name string) (int, error)
	// SetGroupSharedRunnersSetting applies a shared runner setting on
	// the group itself.
	SetGroupSharedRunnersSetting(ctx context.Context, groupID int, setting string) error
	// GroupProjects lists every project of the group, across all pages.
	GroupProjects(ctx context.Context, groupID int) ([]Project, error)
	// SetProjectSharedRunners toggles shared runners on one project.
	SetProjectSharedRunners(ctx context.Context, projectID int, enabled bool) error
	// GroupRunners lists the runners registered to the group.
	GroupRunners(ctx context.Context, groupID int) ([]Runner, error)
	// SetRunnerPaused pauses or unpauses a runner.
	SetRunnerPaused(ctx context.Context, runnerID int, paused bool) error
}

// Switcher applies a shared-runner state to a group, its projects and
// its private runners, reporting every transition to out.
type Switcher struct {
	api API
	out io.Writer
}

// NewSwitcher returns a Switcher talking to api.
func NewSwitcher(api API, out io.Writer) *Switcher {
	return &Switcher{api: api, out: out}
}

// Apply enables or disables shared runners for the named group. The
// group's private runners are set to the inverse state: paused while
// shared runners are on, active while they are off.
func (s *Switcher) Apply(ctx context.Context, groupName string, enable bool) error {
	groupID, err := s.api.FindGroup(ctx, groupName)
	if err != nil {
		return err
	}

	setting := settingDisabled
	if enable {
		setting = settingEnabled
	}
	if err := s.api.SetGroupSharedRunnersSetting(ctx, groupID, setting); err != nil {
		return fmt.Errorf("update group %s: %w", groupName, err)
	}

	projects, err := s.api.GroupProjects(ctx, groupID)
	if err != nil {
		return fmt.Errorf("list projects of %s: %w", groupName, err)
	}
	for _, p := range projects {
		if p.SharedRunnersEnabled == enable {
			fmt.Fprintf(s.out, "%s/%s: %t\n", groupName, p.Name, p.SharedRunnersEnabled)
			continue
		}
		fmt.Fprintf(s.out, "%s/%s: %t -> %t\n", groupName, p.Name, p.SharedRunnersEnabled, enable)
		if err := s.api.SetProjectSharedRunners(ctx, p.ID, enable); err != nil {
			return fmt.Errorf("update project %s: %w", p.Name, err)
		}
	}

	runners, err := s.api.GroupRunners(ctx, groupID)
	if err != nil {
		return fmt.Errorf("list runners of %s: %w", groupName, err)
	}
	pause := enable
	for _, r := range runners {
		if r.Paused == pause {
			fmt.Fprintf(s.out, "runner: %s/%s: %t\n", groupName, r.Description, !r.Paused)
			continue
		}
		fmt.Fprintf(s.out, "runner: %s/%s: %t -> %t\n", groupName, r.Description, !r.Paused, !pause)
		if err := s.api.SetRunnerPaused(ctx, r.ID, pause); err != nil {
			return fmt.Errorf("update runner %s: %w", r.Description, err)
		}
	}
	return nil
}
