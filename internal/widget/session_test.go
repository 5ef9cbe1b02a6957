package widget_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"inlineai.app/relay/internal/model"
	"inlineai.app/relay/internal/targeter"
	"inlineai.app/relay/internal/widget"
)

var _ = Describe("Session", func() {
	var (
		ctx       context.Context
		pick      *mockTargeter
		submitter *mockSubmitter
		session   *widget.Session
	)

	BeforeEach(func() {
		ctx = context.Background()
		pick = &mockTargeter{}
		submitter = &mockSubmitter{}
		session = widget.NewSession(pick, submitter)
	})

	Describe("Pick", func() {
		It("stores the target with its snapshot as a data URL", func() {
			target, err := session.Pick(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(target.Locator).To(Equal("#hero"))
			Expect(target.ScreenshotImage).To(Equal("data:image/png;base64,cG5n"))

			stored, ok := session.Target()
			Expect(ok).To(BeTrue())
			Expect(stored).To(Equal(target))
		})

		It("keeps the target when the snapshot degrades", func() {
			pick.captureSnapshotFn = func(_ context.Context, _ string) model.Outcome[[]byte] {
				return model.Degrade[[]byte](targeter.ErrLocatorNotFound)
			}

			target, err := session.Pick(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(target.HasScreenshot()).To(BeFalse())
			_, ok := session.Target()
			Expect(ok).To(BeTrue())
		})

		It("replaces the previous target", func() {
			_, err := session.Pick(ctx)
			Expect(err).NotTo(HaveOccurred())

			pick.beginPickFn = func(_ context.Context) (model.PickedTarget, error) {
				return model.PickedTarget{Locator: "#cta"}, nil
			}
			_, err = session.Pick(ctx)
			Expect(err).NotTo(HaveOccurred())

			stored, _ := session.Target()
			Expect(stored.Locator).To(Equal("#cta"))
		})

		It("propagates pick errors and keeps the old target", func() {
			_, err := session.Pick(ctx)
			Expect(err).NotTo(HaveOccurred())

			pick.beginPickFn = func(_ context.Context) (model.PickedTarget, error) {
				return model.PickedTarget{}, targeter.ErrPickCancelled
			}
			_, err = session.Pick(ctx)

			Expect(err).To(MatchError(targeter.ErrPickCancelled))
			stored, _ := session.Target()
			Expect(stored.Locator).To(Equal("#hero"))
		})
	})

	Describe("Submit", func() {
		It("refuses without a picked target", func() {
			_, err := session.Submit(ctx, "Make heading larger")

			Expect(err).To(MatchError(widget.ErrNothingPicked))
		})

		It("refuses an empty description", func() {
			_, err := session.Pick(ctx)
			Expect(err).NotTo(HaveOccurred())

			_, err = session.Submit(ctx, "   ")

			Expect(err).To(MatchError(widget.ErrEmptyDescription))
		})

		It("builds the request from the page and resets on success", func() {
			pick.pageStateFn = func(_ context.Context) (targeter.PageState, error) {
				return targeter.PageState{
					URL:      "https://preview.acme.dev/?pr=42",
					Viewport: model.Viewport{Width: 390, Height: 844},
				}, nil
			}
			var sent model.ChangeRequestInput
			submitter.submitFn = func(_ context.Context, in model.ChangeRequestInput) (*model.SubmitResult, error) {
				sent = in
				return &model.SubmitResult{IssueURL: "https://github.com/acme/site/issues/3", IssueNumber: 3, RelatedPRNumber: in.RelatedPRNumber}, nil
			}

			_, err := session.Pick(ctx)
			Expect(err).NotTo(HaveOccurred())
			result, err := session.Submit(ctx, "Make heading larger")

			Expect(err).NotTo(HaveOccurred())
			Expect(result.IssueNumber).To(Equal(3))
			Expect(sent.URL).To(Equal("https://preview.acme.dev/?pr=42"))
			Expect(sent.Locator).To(Equal("#hero"))
			Expect(sent.Description).To(Equal("Make heading larger"))
			Expect(sent.Viewport).To(Equal(model.Viewport{Width: 390, Height: 844}))
			Expect(sent.ScreenshotImage).To(HavePrefix("data:image/png;base64,"))
			Expect(sent.RelatedPRNumber).NotTo(BeNil())
			Expect(*sent.RelatedPRNumber).To(Equal(42))

			_, ok := session.Target()
			Expect(ok).To(BeFalse())
			Expect(session.Busy()).To(BeFalse())
		})

		It("keeps the target after a failed submission", func() {
			submitter.submitFn = func(_ context.Context, _ model.ChangeRequestInput) (*model.SubmitResult, error) {
				return nil, errors.New("relay returned 500: creating tracker issue failed")
			}

			_, err := session.Pick(ctx)
			Expect(err).NotTo(HaveOccurred())
			_, err = session.Submit(ctx, "Make heading larger")

			Expect(err).To(HaveOccurred())
			_, ok := session.Target()
			Expect(ok).To(BeTrue())
			Expect(session.Busy()).To(BeFalse())
		})

		It("is busy while the submission is in flight and refuses pick and submit", func() {
			release := make(chan struct{})
			entered := make(chan struct{})
			submitter.submitFn = func(_ context.Context, _ model.ChangeRequestInput) (*model.SubmitResult, error) {
				close(entered)
				<-release
				return &model.SubmitResult{IssueURL: "u", IssueNumber: 1}, nil
			}

			_, err := session.Pick(ctx)
			Expect(err).NotTo(HaveOccurred())

			done := make(chan error, 1)
			go func() {
				defer GinkgoRecover()
				_, err := session.Submit(ctx, "Make heading larger")
				done <- err
			}()
			Eventually(entered).Should(BeClosed())

			Expect(session.Busy()).To(BeTrue())
			_, err = session.Submit(ctx, "Make heading larger")
			Expect(err).To(MatchError(widget.ErrBusy))
			_, err = session.Pick(ctx)
			Expect(err).To(MatchError(widget.ErrBusy))

			close(release)
			Eventually(done).Should(Receive(BeNil()))
			Expect(session.Busy()).To(BeFalse())
		})
	})

	It("discards the target on reset", func() {
		_, err := session.Pick(ctx)
		Expect(err).NotTo(HaveOccurred())

		session.Reset()

		_, ok := session.Target()
		Expect(ok).To(BeFalse())
	})
})
