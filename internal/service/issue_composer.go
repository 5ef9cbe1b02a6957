package service

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"inlineai.app/relay/internal/model"
)

const (
	LabelChangeRequest     = "ai-change-request"
	LabelNeedsReview       = "needs-review"
	LabelPRPreviewFeedback = "pr-preview-feedback"

	issueTitlePrefix = "[Inline AI]"
	issueFooter      = "_Filed by Inline AI Editor_"
)

// IssueContent is the tracker-ready text of one change request.
type IssueContent struct {
	Title  string
	Body   string
	Labels []string
}

// ComposeIssue renders the issue deterministically from the request, the
// structured change and the screenshot step's outcome.
func ComposeIssue(in model.ChangeRequestInput, sc model.StructuredChange, screenshot model.Outcome[string]) IssueContent {
	return IssueContent{
		Title:  IssueTitle(in.URL, sc.Scope),
		Body:   IssueBody(in, sc, screenshot),
		Labels: IssueLabels(in.RelatedPRNumber),
	}
}

// IssueTitle is "[Inline AI] <scope> — <pathname>", with "Home" for the root.
func IssueTitle(pageURL, scope string) string {
	return fmt.Sprintf("%s %s — %s", issueTitlePrefix, scope, pageName(pageURL))
}

func pageName(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "Home"
	}
	// Percent-encoding is kept as the browser reports it.
	path := u.EscapedPath()
	if path == "" || path == "/" {
		return "Home"
	}
	return path
}

// IssueBody renders the sections in fixed order. Sections without content are
// left out entirely; the rest are separated by one blank line.
func IssueBody(in model.ChangeRequestInput, sc model.StructuredChange, screenshot model.Outcome[string]) string {
	sections := []string{
		"## 🤖 AI-Generated Change Request",
		locationSection(in, screenshot),
		"### 📝 Expected Change\n" + sc.ExpectedChange,
		listSection("### ✅ Acceptance Criteria", "- [ ] ", sc.AcceptanceCriteria),
		listSection("### ⚠️ Risk Notes", "- ", sc.RiskNotes),
		complexitySection(sc.EstimatedComplexity),
		"---",
		"**Original Description:**\n" + blockQuote(in.Description),
		relatedPRSection(in.RelatedPRNumber),
		issueFooter,
	}

	var b strings.Builder
	for _, s := range sections {
		if s == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(s)
	}
	return b.String()
}

// IssueLabels always carries the classification pair; a related PR adds the
// preview-feedback label.
func IssueLabels(relatedPR *int) []string {
	labels := []string{LabelChangeRequest, LabelNeedsReview}
	if relatedPR != nil {
		labels = append(labels, LabelPRPreviewFeedback)
	}
	return labels
}

func locationSection(in model.ChangeRequestInput, screenshot model.Outcome[string]) string {
	lines := []string{
		"### 📍 Location",
		"- **URL**: " + in.URL,
		"- **Locator**: `" + in.Locator + "`",
		"- **Viewport**: " + formatDimension(in.Viewport.Width) + "×" + formatDimension(in.Viewport.Height),
	}
	if shotURL, ok := screenshot.Get(); ok && shotURL != "" {
		lines = append(lines, "- **Screenshot**: ![Element Screenshot]("+shotURL+")")
	}
	return strings.Join(lines, "\n")
}

func listSection(heading, bullet string, items []string) string {
	if len(items) == 0 {
		return ""
	}
	lines := make([]string, 0, len(items)+1)
	lines = append(lines, heading)
	for _, item := range items {
		lines = append(lines, bullet+item)
	}
	return strings.Join(lines, "\n")
}

func complexitySection(c *model.Complexity) string {
	if c == nil || *c == "" {
		return ""
	}
	return fmt.Sprintf("### 📊 Complexity: `%s`", *c)
}

func relatedPRSection(pr *int) string {
	if pr == nil {
		return ""
	}
	return fmt.Sprintf("Related PR: #%d", *pr)
}

func blockQuote(text string) string {
	return "> " + strings.Join(strings.Split(text, "\n"), "\n> ")
}

func formatDimension(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
