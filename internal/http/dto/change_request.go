package dto

import (
	"inlineai.app/relay/internal/model"
	"inlineai.app/relay/internal/service"
)

const InvalidRequestMessage = "Invalid request data"

// ChangeRequestRequest is the body of POST /change-requests. Invariants are
// checked by the service, not by binding tags, so field detail has one source.
type ChangeRequestRequest struct {
	URL             string       `json:"url"`
	Locator         string       `json:"locator"`
	Description     string       `json:"description"`
	Viewport        ViewportJSON `json:"viewport"`
	ScreenshotImage string       `json:"screenshotImage,omitempty"`
	RelatedPRNumber *int         `json:"relatedPrNumber,omitempty"`
}

type ViewportJSON struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r ChangeRequestRequest) ToInput() model.ChangeRequestInput {
	return model.ChangeRequestInput{
		URL:             r.URL,
		Locator:         r.Locator,
		Description:     r.Description,
		Viewport:        model.Viewport{Width: r.Viewport.Width, Height: r.Viewport.Height},
		ScreenshotImage: r.ScreenshotImage,
		RelatedPRNumber: r.RelatedPRNumber,
	}
}

type ChangeRequestResponse struct {
	OK              bool   `json:"ok"`
	IssueURL        string `json:"issueUrl"`
	IssueNumber     int    `json:"issueNumber"`
	RelatedPRNumber *int   `json:"relatedPrNumber,omitempty"`
}

func ToChangeRequestResponse(r *model.SubmitResult) ChangeRequestResponse {
	return ChangeRequestResponse{
		OK:              true,
		IssueURL:        r.IssueURL,
		IssueNumber:     r.IssueNumber,
		RelatedPRNumber: r.RelatedPRNumber,
	}
}

type FieldErrorJSON struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	OK      bool             `json:"ok"`
	Error   string           `json:"error"`
	Details []FieldErrorJSON `json:"details,omitempty"`
}

func ToValidationErrorResponse(ve *service.ValidationError) ErrorResponse {
	details := make([]FieldErrorJSON, len(ve.Fields))
	for i, f := range ve.Fields {
		details[i] = FieldErrorJSON{Field: f.Field, Message: f.Message}
	}
	return ErrorResponse{Error: InvalidRequestMessage, Details: details}
}

type HealthResponse struct {
	Service    string           `json:"service"`
	Configured ConfiguredStatus `json:"configured"`
}

type ConfiguredStatus struct {
	Tracker   bool `json:"tracker"`
	LLM       bool `json:"llm"`
	BlobStore bool `json:"blobStore"`
}

func ToHealthResponse(name string, h service.HealthStatus) HealthResponse {
	return HealthResponse{
		Service: name,
		Configured: ConfiguredStatus{
			Tracker:   h.Tracker,
			LLM:       h.LLM,
			BlobStore: h.BlobStore,
		},
	}
}
