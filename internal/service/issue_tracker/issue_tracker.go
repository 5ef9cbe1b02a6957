package issue_tracker

import (
	"context"
	"strings"

	"inlineai.app/relay/internal/model"
)

type CreateIssueParams struct {
	Owner  string // GitHub owner, or GitLab namespace path
	Repo   string
	Title  string
	Body   string
	Labels []string
}

// IssueTracker files issues in an external tracker. Implementations do not
// retry; a failed create is reported to the caller as is.
type IssueTracker interface {
	CreateIssue(ctx context.Context, params CreateIssueParams) (*model.TrackerIssue, error)
	Name() string
}

// SplitProjectPath splits "group/sub/project" into ("group/sub", "project").
func SplitProjectPath(path string) (owner, repo string) {
	path = strings.Trim(path, "/")
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}
