package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"inlineai.app/relay/common/llm"
	"inlineai.app/relay/common/logger"
	"inlineai.app/relay/internal/model"
	"inlineai.app/relay/internal/service/blob"
	"inlineai.app/relay/internal/service/issue_tracker"
)

const (
	// Low and fixed so repeated requests structure the same way.
	structuringTemperature = 0.3
	defaultMaxTokens       = 2048
)

var (
	ErrLLMNotConfigured     = errors.New("language model is not configured")
	ErrTrackerNotConfigured = errors.New("issue tracker is not configured")
	ErrBlobNotConfigured    = errors.New("blob store is not configured")
	ErrStructuringFailed    = errors.New("structuring change request failed")
	ErrIssueCreationFailed  = errors.New("creating tracker issue failed")
)

// ChangeRequestService turns one change request into one tracker issue.
// Calls are independent: nothing is kept between them and identical
// submissions file separate issues.
type ChangeRequestService interface {
	Submit(ctx context.Context, in model.ChangeRequestInput) (*model.SubmitResult, error)
	Health() HealthStatus
}

// HealthStatus reports which collaborators have credentials configured.
type HealthStatus struct {
	Tracker   bool
	LLM       bool
	BlobStore bool
}

type ChangeRequestConfig struct {
	LLM       llm.Client                 // nil when no API key is configured
	Tracker   issue_tracker.IssueTracker // nil when no tracker credentials are configured
	Blob      blob.Store                 // nil when no blob credentials are configured
	Owner     string
	Repo      string
	MaxTokens int

	Now   func() time.Time
	Token func() string
}

type changeRequestService struct {
	llm       llm.Client
	tracker   issue_tracker.IssueTracker
	blob      blob.Store
	owner     string
	repo      string
	maxTokens int
	now       func() time.Time
	token     func() string
}

func NewChangeRequestService(cfg ChangeRequestConfig) ChangeRequestService {
	svc := &changeRequestService{
		llm:       cfg.LLM,
		tracker:   cfg.Tracker,
		blob:      cfg.Blob,
		owner:     cfg.Owner,
		repo:      cfg.Repo,
		maxTokens: cfg.MaxTokens,
		now:       cfg.Now,
		token:     cfg.Token,
	}
	if svc.maxTokens == 0 {
		svc.maxTokens = defaultMaxTokens
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.token == nil {
		svc.token = randomToken
	}
	return svc
}

func (s *changeRequestService) Submit(ctx context.Context, in model.ChangeRequestInput) (*model.SubmitResult, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		PageURL:   logger.Ptr(in.URL),
		Component: "relay.service.change_request",
	})

	if err := ValidateChangeRequest(in); err != nil {
		return nil, err
	}

	if s.llm == nil {
		return nil, ErrLLMNotConfigured
	}
	if s.tracker == nil {
		return nil, ErrTrackerNotConfigured
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{Tracker: logger.Ptr(s.tracker.Name())})

	screenshot := s.uploadScreenshot(ctx, in)

	structured, err := s.structure(ctx, in, screenshot)
	if err != nil {
		return nil, err
	}

	content := ComposeIssue(in, structured, screenshot)

	issue, err := s.fileIssue(ctx, content)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{IssueNumber: logger.Ptr(issue.Number)})
	slog.InfoContext(ctx, "change request filed",
		"issue_url", issue.URL,
		"scope", structured.Scope,
		"description", logger.Truncate(in.Description, 80),
		"screenshot", screenshot.OK() && screenshot.Value != "",
		"related_pr", in.RelatedPRNumber != nil)

	return &model.SubmitResult{
		IssueURL:        issue.URL,
		IssueNumber:     issue.Number,
		RelatedPRNumber: in.RelatedPRNumber,
	}, nil
}

func (s *changeRequestService) Health() HealthStatus {
	return HealthStatus{
		Tracker:   s.tracker != nil,
		LLM:       s.llm != nil,
		BlobStore: s.blob != nil,
	}
}

// uploadScreenshot never fails the request. A request without an image is a
// successful outcome with an empty URL; any problem past that is a degraded
// outcome.
func (s *changeRequestService) uploadScreenshot(ctx context.Context, in model.ChangeRequestInput) model.Outcome[string] {
	if !in.HasScreenshot() {
		return model.Ok("")
	}

	if s.blob == nil {
		slog.WarnContext(ctx, "screenshot dropped: blob store not configured")
		return model.Degrade[string](ErrBlobNotConfigured)
	}

	contentType, data, err := decodeImageDataURL(in.ScreenshotImage)
	if err != nil {
		slog.WarnContext(ctx, "screenshot dropped: could not decode image", "error", err)
		return model.Degrade[string](err)
	}

	sc := logger.StartSpan(ctx, "change_request.upload_screenshot")
	defer sc.End()

	name := screenshotName(s.now(), s.token(), contentType)
	obj, err := s.blob.Put(sc.Context(), name, data, blob.PutOptions{
		Access:      blob.AccessPublic,
		ContentType: contentType,
	})
	if err != nil {
		sc.RecordError(err)
		slog.WarnContext(sc.Context(), "screenshot upload failed, continuing without it",
			"error", err,
			"blob_store", s.blob.Name(),
			"bytes", len(data))
		return model.Degrade[string](err)
	}

	slog.InfoContext(sc.Context(), "screenshot uploaded", "url", obj.URL)
	return model.Ok(obj.URL)
}

func (s *changeRequestService) structure(ctx context.Context, in model.ChangeRequestInput, screenshot model.Outcome[string]) (model.StructuredChange, error) {
	sc := logger.StartSpan(ctx, "change_request.structure")
	defer sc.End()
	ctx = sc.Context()

	shotURL, _ := screenshot.Get()

	var out model.StructuredChange
	resp, err := s.llm.Chat(ctx, llm.Request{
		SystemPrompt: structuringSystemPrompt,
		UserPrompt:   StructuringPrompt(in, shotURL),
		SchemaName:   structuredChangeSchemaName,
		Schema:       structuredChangeSchema,
		MaxTokens:    s.maxTokens,
		Temperature:  llm.Temp(structuringTemperature),
	}, &out)
	if err != nil {
		sc.RecordError(err)
		slog.ErrorContext(ctx, "llm structuring failed", "error", err, "model", s.llm.Model())
		return model.StructuredChange{}, fmt.Errorf("%w: %w", ErrStructuringFailed, err)
	}

	// The schema is enforced by the provider; this is the check on our side.
	// Reported as a structuring failure, not as bad caller input.
	if err := ValidateStructuredChange(out); err != nil {
		sc.RecordError(err)
		slog.ErrorContext(ctx, "llm output rejected", "error", err, "model", s.llm.Model())
		detail := err.Error()
		if ve, ok := IsValidationError(err); ok {
			detail = ve.FieldSummary()
		}
		return model.StructuredChange{}, fmt.Errorf("%w: invalid model output: %s", ErrStructuringFailed, detail)
	}

	if resp != nil {
		slog.DebugContext(ctx, "change request structured",
			"model", s.llm.Model(),
			"prompt_tokens", resp.PromptTokens,
			"completion_tokens", resp.CompletionTokens,
			"criteria", len(out.AcceptanceCriteria))
	}

	return out, nil
}

func (s *changeRequestService) fileIssue(ctx context.Context, content IssueContent) (*model.TrackerIssue, error) {
	sc := logger.StartSpan(ctx, "change_request.create_issue")
	defer sc.End()
	ctx = sc.Context()

	issue, err := s.tracker.CreateIssue(ctx, issue_tracker.CreateIssueParams{
		Owner:  s.owner,
		Repo:   s.repo,
		Title:  content.Title,
		Body:   content.Body,
		Labels: content.Labels,
	})
	if err != nil {
		sc.RecordError(err)
		slog.ErrorContext(ctx, "tracker issue creation failed", "error", err, "owner", s.owner, "repo", s.repo)
		return nil, fmt.Errorf("%w: %w", ErrIssueCreationFailed, err)
	}
	return issue, nil
}
