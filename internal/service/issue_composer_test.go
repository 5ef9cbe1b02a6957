package service_test

import (
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"inlineai.app/relay/internal/model"
	"inlineai.app/relay/internal/service"
)

var _ = Describe("ComposeIssue", func() {
	var (
		in model.ChangeRequestInput
		sc model.StructuredChange
	)

	BeforeEach(func() {
		in = model.ChangeRequestInput{
			URL:         "https://acme.dev/",
			Locator:     "#hero",
			Description: "Make heading larger",
			Viewport:    model.Viewport{Width: 1280, Height: 800},
		}
		sc = model.StructuredChange{
			Scope:               "Hero heading",
			ExpectedChange:      "Increase font-size to 32px",
			AcceptanceCriteria:  []string{"Heading renders at 32px on desktop"},
			EstimatedComplexity: model.ComplexityLow.Ptr(),
		}
	})

	It("should title the issue by scope and Home for the root path", func() {
		issue := service.ComposeIssue(in, sc, model.Ok(""))

		Expect(issue.Title).To(Equal("[Inline AI] Hero heading — Home"))
	})

	It("should render one checklist line per criterion and the complexity line", func() {
		issue := service.ComposeIssue(in, sc, model.Ok(""))

		Expect(strings.Count(issue.Body, "- [ ] ")).To(Equal(1))
		Expect(issue.Body).To(ContainSubstring("- [ ] Heading renders at 32px on desktop\n"))
		Expect(issue.Body).To(ContainSubstring("### 📊 Complexity: `low`"))
	})

	It("should render sections in order separated by blank lines", func() {
		body := service.IssueBody(in, sc, model.Ok(""))

		Expect(body).To(Equal(strings.Join([]string{
			"## 🤖 AI-Generated Change Request",
			"### 📍 Location\n- **URL**: https://acme.dev/\n- **Locator**: `#hero`\n- **Viewport**: 1280×800",
			"### 📝 Expected Change\nIncrease font-size to 32px",
			"### ✅ Acceptance Criteria\n- [ ] Heading renders at 32px on desktop",
			"### 📊 Complexity: `low`",
			"---",
			"**Original Description:**\n> Make heading larger",
			"_Filed by Inline AI Editor_",
		}, "\n\n")))
	})

	It("should use the pathname for non-root pages", func() {
		Expect(service.IssueTitle("https://acme.dev/pricing?plan=pro", "Pricing card")).
			To(Equal("[Inline AI] Pricing card — /pricing"))
		Expect(service.IssueTitle("https://acme.dev", "Nav")).To(Equal("[Inline AI] Nav — Home"))
	})

	It("should keep the pathname percent-encoded", func() {
		Expect(service.IssueTitle("https://acme.dev/a%2Fb", "Card")).To(Equal("[Inline AI] Card — /a%2Fb"))
		Expect(service.IssueTitle("https://acme.dev/caf%C3%A9", "Menu")).To(Equal("[Inline AI] Menu — /caf%C3%A9"))
	})

	It("should omit risk notes and complexity when absent", func() {
		sc.EstimatedComplexity = nil
		body := service.IssueBody(in, sc, model.Ok(""))

		Expect(body).NotTo(ContainSubstring("Risk Notes"))
		Expect(body).NotTo(ContainSubstring("Complexity"))
	})

	It("should list risk notes when present", func() {
		sc.RiskNotes = []string{"May wrap on mobile", "Check contrast"}
		body := service.IssueBody(in, sc, model.Ok(""))

		Expect(body).To(ContainSubstring("### ⚠️ Risk Notes\n- May wrap on mobile\n- Check contrast"))
	})

	It("should block-quote every line of a multi-line description", func() {
		in.Description = "First line\nSecond line"
		body := service.IssueBody(in, sc, model.Ok(""))

		Expect(body).To(ContainSubstring("> First line\n> Second line"))
	})

	It("should keep fractional viewport sizes as sent", func() {
		in.Viewport = model.Viewport{Width: 390.5, Height: 844}
		body := service.IssueBody(in, sc, model.Ok(""))

		Expect(body).To(ContainSubstring("- **Viewport**: 390.5×844"))
	})

	Context("with a screenshot outcome", func() {
		It("should embed the image when the upload succeeded", func() {
			body := service.IssueBody(in, sc, model.Ok("https://blob.example.com/ai-requests/1-a.png"))

			Expect(body).To(ContainSubstring("![Element Screenshot](https://blob.example.com/ai-requests/1-a.png)"))
		})

		It("should leave the screenshot line out when the upload degraded", func() {
			body := service.IssueBody(in, sc, model.Degrade[string](errors.New("upload failed")))

			Expect(body).NotTo(ContainSubstring("Screenshot"))
		})
	})

	Context("with a related PR", func() {
		It("should add the preview label and the PR line", func() {
			pr := 42
			in.RelatedPRNumber = &pr

			issue := service.ComposeIssue(in, sc, model.Ok(""))

			Expect(issue.Labels).To(Equal([]string{
				service.LabelChangeRequest,
				service.LabelNeedsReview,
				service.LabelPRPreviewFeedback,
			}))
			Expect(issue.Body).To(ContainSubstring("Related PR: #42"))
		})

		It("should exclude both without one", func() {
			issue := service.ComposeIssue(in, sc, model.Ok(""))

			Expect(issue.Labels).To(Equal([]string{service.LabelChangeRequest, service.LabelNeedsReview}))
			Expect(issue.Body).NotTo(ContainSubstring("Related PR"))
		})
	})
})
