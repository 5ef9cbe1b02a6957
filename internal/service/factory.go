package service

import (
	"fmt"
	"log/slog"

	"inlineai.app/relay/common/llm"
	"inlineai.app/relay/core/config"
	"inlineai.app/relay/internal/service/blob"
	"inlineai.app/relay/internal/service/issue_tracker"
)

type Services struct {
	changeRequests ChangeRequestService
}

// NewServices wires collaborators from configuration. A collaborator without
// credentials is left nil; submit reports it and health shows it as
// unconfigured.
func NewServices(cfg config.Config) (*Services, error) {
	crCfg := ChangeRequestConfig{
		MaxTokens: cfg.LLM.MaxTokens,
	}

	if cfg.LLM.Enabled() {
		client, err := llm.New(llm.Config{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("creating llm client: %w", err)
		}
		crCfg.LLM = client
	} else {
		slog.Warn("OPENAI_API_KEY not set, change requests cannot be structured")
	}

	if cfg.Tracker.Enabled() {
		tracker, owner, repo, err := newIssueTracker(cfg.Tracker)
		if err != nil {
			return nil, err
		}
		crCfg.Tracker = tracker
		crCfg.Owner = owner
		crCfg.Repo = repo
	} else {
		slog.Warn("issue tracker credentials not set, change requests cannot be filed",
			"provider", cfg.Tracker.Provider)
	}

	if cfg.Blob.Enabled() {
		store, err := newBlobStore(cfg.Blob, cfg.PublicBaseURL)
		if err != nil {
			return nil, err
		}
		crCfg.Blob = store
	} else {
		slog.Warn("blob store not configured, screenshots will be dropped",
			"provider", cfg.Blob.Provider)
	}

	return &Services{changeRequests: NewChangeRequestService(crCfg)}, nil
}

func (s *Services) ChangeRequests() ChangeRequestService {
	return s.changeRequests
}

func newIssueTracker(cfg config.TrackerConfig) (issue_tracker.IssueTracker, string, string, error) {
	switch cfg.Provider {
	case config.TrackerGitLab:
		tracker, err := issue_tracker.NewGitLabIssueTracker(issue_tracker.GitLabConfig{
			Token:   cfg.GitLab.Token,
			BaseURL: cfg.GitLab.BaseURL,
		})
		if err != nil {
			return nil, "", "", fmt.Errorf("creating gitlab tracker: %w", err)
		}
		owner, repo := issue_tracker.SplitProjectPath(cfg.GitLab.Project)
		return tracker, owner, repo, nil
	default:
		tracker, err := issue_tracker.NewGitHubIssueTracker(issue_tracker.GitHubConfig{
			Token:   cfg.GitHub.Token,
			BaseURL: cfg.GitHub.BaseURL,
		})
		if err != nil {
			return nil, "", "", fmt.Errorf("creating github tracker: %w", err)
		}
		return tracker, cfg.GitHub.Owner, cfg.GitHub.Repo, nil
	}
}

func newBlobStore(cfg config.BlobConfig, publicBaseURL string) (blob.Store, error) {
	switch cfg.Provider {
	case config.BlobLocal:
		store, err := blob.NewLocalStore(cfg.LocalDir, publicBaseURL)
		if err != nil {
			return nil, fmt.Errorf("creating local blob store: %w", err)
		}
		return store, nil
	default:
		store, err := blob.NewVercelStore(blob.VercelConfig{
			Token:   cfg.Token,
			BaseURL: cfg.APIURL,
		})
		if err != nil {
			return nil, fmt.Errorf("creating vercel blob store: %w", err)
		}
		return store, nil
	}
}
