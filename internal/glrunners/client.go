package glrunners

import (
	"context"
	"fmt"

	gitlab "gitlab.com/gitlab-org/api/client-go"
)

const perPage = 100

// Client implements API against a real GitLab instance.
type Client struct {
	gl *gitlab.Client
}

// NewClient connects to the GitLab instance at baseURL with a private
// token.
func NewClient(baseURL, token string) (*Client, error) {
	gl, err := gitlab.NewClient(token, gitlab.WithBaseURL(baseURL))
	if err != nil {
		return nil, err
	}
	return &Client{gl: gl}, nil
}

func (c *Client) FindGroup(ctx context.Context, name string) (int, error) {
	opt := &gitlab.ListGroupsOptions{
		Search:      gitlab.Ptr(name),
		ListOptions: gitlab.ListOptions{PerPage: perPage},
	}
	for {
		groups, resp, err := c.gl.Groups.ListGroups(opt, gitlab.WithContext(ctx))
		if err != nil {
			return 0, err
		}
		for _, g := range groups {
			if g.Name == name {
				return g.ID, nil
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return 0, fmt.Errorf("group %q not found", name)
}

func (c *Client) SetGroupSharedRunnersSetting(ctx context.Context, groupID int, setting string) error {
	_, _, err := c.gl.Groups.UpdateGroup(groupID, &gitlab.UpdateGroupOptions{
		SharedRunnersSetting: gitlab.Ptr(setting),
	}, gitlab.WithContext(ctx))
	return err
}

func (c *Client) GroupProjects(ctx context.Context, groupID int) ([]Project, error) {
	opt := &gitlab.ListGroupProjectsOptions{
		ListOptions: gitlab.ListOptions{PerPage: perPage},
	}
	var projects []Project
	for {
		page, resp, err := c.gl.Groups.ListGroupProjects(groupID, opt, gitlab.WithContext(ctx))
		if err != nil {
			return nil, err
		}
		for _, p := range page {
			projects = append(projects, Project{
				ID:                   p.ID,
				Name:                 p.Name,
				SharedRunnersEnabled: p.SharedRunnersEnabled,
			})
		}
		if resp.NextPage == 0 {
			return projects, nil
		}
		opt.Page = resp.NextPage
	}
}

func (c *Client) SetProjectSharedRunners(ctx context.Context, projectID int, enabled bool) error {
	_, _, err := c.gl.Projects.EditProject(projectID, &gitlab.EditProjectOptions{
		SharedRunnersEnabled: gitlab.Ptr(enabled),
	}, gitlab.WithContext(ctx))
	return err
}

func (c *Client) GroupRunners(ctx context.Context, groupID int) ([]Runner, error) {
	opt := &gitlab.ListGroupsRunnersOptions{
		ListOptions: gitlab.ListOptions{PerPage: perPage},
	}
	var runners []Runner
	for {
		page, resp, err := c.gl.Runners.ListGroupsRunners(groupID, opt, gitlab.WithContext(ctx))
		if err != nil {
			return nil, err
		}
		for _, r := range page {
			details, _, err := c.gl.Runners.GetRunnerDetails(r.ID, gitlab.WithContext(ctx))
			if err != nil {
				return nil, err
			}
			runners = append(runners, Runner{
				ID:          details.ID,
				Description: details.Description,
				Paused:      details.Paused,
			})
		}
		if resp.NextPage == 0 {
			return runners, nil
		}
		opt.Page = resp.NextPage
	}
}

func (c *Client) SetRunnerPaused(ctx context.Context, runnerID int, paused bool) error {
	_, _, err := c.gl.Runners.UpdateRunnerDetails(runnerID, &gitlab.UpdateRunnerDetailsOptions{
		Paused: gitlab.Ptr(paused),
	}, gitlab.WithContext(ctx))
	return err
}
