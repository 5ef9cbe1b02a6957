package issue_tracker

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v66/github"

	"inlineai.app/relay/internal/model"
)

type GitHubConfig struct {
	Token   string
	BaseURL string       // Optional: GitHub Enterprise API URL
	Client  *http.Client // Optional
}

type gitHubIssueTracker struct {
	client *github.Client
}

func NewGitHubIssueTracker(cfg GitHubConfig) (IssueTracker, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("github token is required")
	}

	client := github.NewClient(cfg.Client).WithAuthToken(cfg.Token)
	if cfg.BaseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(cfg.BaseURL, cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("configuring github base url: %w", err)
		}
	}

	return &gitHubIssueTracker{client: client}, nil
}

func (t *gitHubIssueTracker) CreateIssue(ctx context.Context, params CreateIssueParams) (*model.TrackerIssue, error) {
	labels := params.Labels
	issue, _, err := t.client.Issues.Create(ctx, params.Owner, params.Repo, &github.IssueRequest{
		Title:  github.String(params.Title),
		Body:   github.String(params.Body),
		Labels: &labels,
	})
	if err != nil {
		return nil, fmt.Errorf("creating github issue: %w", err)
	}

	if issue.GetHTMLURL() == "" || issue.GetNumber() == 0 {
		return nil, fmt.Errorf("creating github issue: response missing url or number")
	}

	return &model.TrackerIssue{
		URL:    issue.GetHTMLURL(),
		Number: issue.GetNumber(),
	}, nil
}

func (t *gitHubIssueTracker) Name() string {
	return "github"
}
