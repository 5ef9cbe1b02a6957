package widget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"inlineai.app/relay/internal/model"
	"inlineai.app/relay/internal/targeter"
)

var (
	ErrBusy             = errors.New("a submission is in flight")
	ErrNothingPicked    = errors.New("no element picked")
	ErrEmptyDescription = errors.New("description is empty")
)

type Targeter interface {
	BeginPick(ctx context.Context) (model.PickedTarget, error)
	CaptureSnapshot(ctx context.Context, locator string) model.Outcome[[]byte]
	PageState(ctx context.Context) (targeter.PageState, error)
}

type Submitter interface {
	SubmitChangeRequest(ctx context.Context, in model.ChangeRequestInput) (*model.SubmitResult, error)
}

// Session is the in-page editor: at most one picked target, and a busy flag
// held for the duration of a submission. In-flight submissions are not
// cancelled by the session.
type Session struct {
	targeter  Targeter
	submitter Submitter

	mu     sync.Mutex
	target *model.PickedTarget
	busy   bool
}

func NewSession(t Targeter, s Submitter) *Session {
	return &Session{targeter: t, submitter: s}
}

// Pick captures one element and attaches a best-effort snapshot. The new
// target replaces any previous one.
func (s *Session) Pick(ctx context.Context) (model.PickedTarget, error) {
	if s.Busy() {
		return model.PickedTarget{}, ErrBusy
	}

	target, err := s.targeter.BeginPick(ctx)
	if err != nil {
		return model.PickedTarget{}, err
	}

	if png, ok := s.targeter.CaptureSnapshot(ctx, target.Locator).Get(); ok && len(png) > 0 {
		target.ScreenshotImage = targeter.PNGDataURL(png)
	}

	s.mu.Lock()
	s.target = &target
	s.mu.Unlock()

	return target, nil
}

// Submit files the picked target with description. On success the session is
// reset; on failure the target is kept so the user can retry.
func (s *Session) Submit(ctx context.Context, description string) (*model.SubmitResult, error) {
	s.mu.Lock()
	switch {
	case s.busy:
		s.mu.Unlock()
		return nil, ErrBusy
	case s.target == nil:
		s.mu.Unlock()
		return nil, ErrNothingPicked
	case strings.TrimSpace(description) == "":
		s.mu.Unlock()
		return nil, ErrEmptyDescription
	}
	target := *s.target
	s.busy = true
	s.mu.Unlock()

	result, err := s.submit(ctx, target, description)

	s.mu.Lock()
	s.busy = false
	if err == nil {
		s.target = nil
	}
	s.mu.Unlock()

	return result, err
}

func (s *Session) submit(ctx context.Context, target model.PickedTarget, description string) (*model.SubmitResult, error) {
	state, err := s.targeter.PageState(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading page state: %w", err)
	}

	in := model.ChangeRequestInput{
		URL:             state.URL,
		Locator:         target.Locator,
		Description:     description,
		Viewport:        state.Viewport,
		ScreenshotImage: target.ScreenshotImage,
		RelatedPRNumber: targeter.DetectRelatedPR(state.URL),
	}

	result, err := s.submitter.SubmitChangeRequest(ctx, in)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "change request submitted", "issue_url", result.IssueURL, "issue_number", result.IssueNumber)
	return result, nil
}

// Reset discards the picked target.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.target = nil
}

func (s *Session) Target() (model.PickedTarget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.target == nil {
		return model.PickedTarget{}, false
	}
	return *s.target, true
}

func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}
