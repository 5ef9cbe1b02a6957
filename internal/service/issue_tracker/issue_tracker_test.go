package issue_tracker_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"inlineai.app/relay/internal/service/issue_tracker"
)

var _ = Describe("SplitProjectPath", func() {
	DescribeTable("splits namespace from project",
		func(path, owner, repo string) {
			o, r := issue_tracker.SplitProjectPath(path)
			Expect(o).To(Equal(owner))
			Expect(r).To(Equal(repo))
		},
		Entry("owner/repo", "acme/web", "acme", "web"),
		Entry("nested groups", "acme/frontend/web", "acme/frontend", "web"),
		Entry("surrounding slashes", "/acme/web/", "acme", "web"),
		Entry("bare project", "web", "", "web"),
	)
})

var _ = Describe("GitHubIssueTracker", func() {
	var (
		server  *httptest.Server
		tracker issue_tracker.IssueTracker
		status  int
		payload map[string]any
		calls   int
	)

	BeforeEach(func() {
		status = http.StatusCreated
		calls = 0
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			calls++
			Expect(r.Method).To(Equal(http.MethodPost))
			Expect(r.URL.Path).To(HaveSuffix("/repos/acme/web/issues"))
			Expect(r.Header.Get("Authorization")).To(Equal("Bearer gh-token"))
			Expect(json.NewDecoder(r.Body).Decode(&payload)).To(Succeed())

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			if status == http.StatusCreated {
				_, _ = w.Write([]byte(`{"number":12,"html_url":"https://github.com/acme/web/issues/12"}`))
				return
			}
			_, _ = w.Write([]byte(`{"message":"Validation Failed"}`))
		}))

		var err error
		tracker, err = issue_tracker.NewGitHubIssueTracker(issue_tracker.GitHubConfig{
			Token:   "gh-token",
			BaseURL: server.URL + "/",
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	It("requires a token", func() {
		_, err := issue_tracker.NewGitHubIssueTracker(issue_tracker.GitHubConfig{})
		Expect(err).To(HaveOccurred())
	})

	It("creates the issue with title, body and labels", func() {
		issue, err := tracker.CreateIssue(context.Background(), issue_tracker.CreateIssueParams{
			Owner:  "acme",
			Repo:   "web",
			Title:  "[Inline AI] Hero heading — Home",
			Body:   "body",
			Labels: []string{"ai-change-request", "needs-review"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(issue.URL).To(Equal("https://github.com/acme/web/issues/12"))
		Expect(issue.Number).To(Equal(12))

		Expect(payload["title"]).To(Equal("[Inline AI] Hero heading — Home"))
		Expect(payload["body"]).To(Equal("body"))
		Expect(payload["labels"]).To(ConsistOf("ai-change-request", "needs-review"))
		Expect(tracker.Name()).To(Equal("github"))
	})

	It("fails without retrying when the api rejects the issue", func() {
		status = http.StatusUnprocessableEntity
		_, err := tracker.CreateIssue(context.Background(), issue_tracker.CreateIssueParams{Owner: "acme", Repo: "web", Title: "t"})
		Expect(err).To(MatchError(ContainSubstring("creating github issue")))
		Expect(calls).To(Equal(1))
	})
})

var _ = Describe("GitLabIssueTracker", func() {
	var (
		server  *httptest.Server
		tracker issue_tracker.IssueTracker
		status  int
		payload map[string]any
		calls   int
	)

	BeforeEach(func() {
		status = http.StatusCreated
		calls = 0
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			calls++
			Expect(r.Method).To(Equal(http.MethodPost))
			Expect(r.URL.EscapedPath()).To(Equal("/api/v4/projects/acme%2Fweb/issues"))
			Expect(r.Header.Get("PRIVATE-TOKEN")).To(Equal("gl-token"))
			Expect(json.NewDecoder(r.Body).Decode(&payload)).To(Succeed())

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			if status == http.StatusCreated {
				_, _ = w.Write([]byte(`{"id":991,"iid":7,"web_url":"https://gitlab.example.com/acme/web/-/issues/7"}`))
				return
			}
			_, _ = w.Write([]byte(`{"message":"500 Internal Server Error"}`))
		}))

		var err error
		tracker, err = issue_tracker.NewGitLabIssueTracker(issue_tracker.GitLabConfig{
			Token:   "gl-token",
			BaseURL: server.URL,
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	It("creates the issue in the project and returns its iid", func() {
		issue, err := tracker.CreateIssue(context.Background(), issue_tracker.CreateIssueParams{
			Owner:  "acme",
			Repo:   "web",
			Title:  "[Inline AI] Pricing card — /pricing",
			Body:   "body",
			Labels: []string{"ai-change-request", "needs-review", "pr-preview-feedback"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(issue.URL).To(Equal("https://gitlab.example.com/acme/web/-/issues/7"))
		Expect(issue.Number).To(Equal(7))

		Expect(payload["title"]).To(Equal("[Inline AI] Pricing card — /pricing"))
		Expect(payload["description"]).To(Equal("body"))
		labels := fmt.Sprint(payload["labels"])
		Expect(labels).To(ContainSubstring("ai-change-request"))
		Expect(labels).To(ContainSubstring("pr-preview-feedback"))
		Expect(tracker.Name()).To(Equal("gitlab"))
	})

	It("does not retry server errors", func() {
		status = http.StatusInternalServerError
		_, err := tracker.CreateIssue(context.Background(), issue_tracker.CreateIssueParams{Owner: "acme", Repo: "web", Title: "t"})
		Expect(err).To(HaveOccurred())
		Expect(calls).To(Equal(1))
	})
})
