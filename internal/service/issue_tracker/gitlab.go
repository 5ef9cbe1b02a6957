package issue_tracker

import (
	"context"
	"fmt"
	"strings"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"inlineai.app/relay/internal/model"
)

type GitLabConfig struct {
	Token   string
	BaseURL string // Optional: self-hosted instance root, e.g. https://gitlab.example.com
}

type gitLabIssueTracker struct {
	client *gitlab.Client
}

func NewGitLabIssueTracker(cfg GitLabConfig) (IssueTracker, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("gitlab token is required")
	}

	client, err := newGitLabClient(cfg.BaseURL, cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("creating gitlab client: %w", err)
	}

	return &gitLabIssueTracker{client: client}, nil
}

func (t *gitLabIssueTracker) CreateIssue(ctx context.Context, params CreateIssueParams) (*model.TrackerIssue, error) {
	projectPath := params.Repo
	if params.Owner != "" {
		projectPath = params.Owner + "/" + params.Repo
	}

	labels := gitlab.LabelOptions(params.Labels)
	issue, _, err := t.client.Issues.CreateIssue(
		projectPath,
		&gitlab.CreateIssueOptions{
			Title:       gitlab.Ptr(params.Title),
			Description: gitlab.Ptr(params.Body),
			Labels:      &labels,
		},
		gitlab.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("creating gitlab issue: %w", err)
	}

	if issue.WebURL == "" || issue.IID == 0 {
		return nil, fmt.Errorf("creating gitlab issue: response missing url or iid")
	}

	return &model.TrackerIssue{
		URL:    issue.WebURL,
		Number: int(issue.IID),
	}, nil
}

func (t *gitLabIssueTracker) Name() string {
	return "gitlab"
}

func newGitLabClient(baseURL, token string) (*gitlab.Client, error) {
	opts := []gitlab.ClientOptionFunc{gitlab.WithCustomRetryMax(0)}
	if baseURL != "" {
		apiURL := strings.TrimSuffix(baseURL, "/") + "/api/v4"
		opts = append(opts, gitlab.WithBaseURL(apiURL))
	}
	return gitlab.NewClient(token, opts...)
}
