package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"inlineai.app/relay/internal/http/dto"
	"inlineai.app/relay/internal/model"
)

const defaultTimeout = 90 * time.Second

// APIError is a non-2xx reply from the relay, decoded from its envelope.
type APIError struct {
	StatusCode int
	Message    string
	Details    []dto.FieldErrorJSON
}

func (e *APIError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("relay returned %d: %s", e.StatusCode, e.Message)
	}
	parts := make([]string, len(e.Details))
	for i, d := range e.Details {
		parts[i] = d.Field + " " + d.Message
	}
	return fmt.Sprintf("relay returned %d: %s (%s)", e.StatusCode, e.Message, strings.Join(parts, "; "))
}

// Client submits change requests to a relay server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) SubmitChangeRequest(ctx context.Context, in model.ChangeRequestInput) (*model.SubmitResult, error) {
	body, err := json.Marshal(dto.ChangeRequestRequest{
		URL:             in.URL,
		Locator:         in.Locator,
		Description:     in.Description,
		Viewport:        dto.ViewportJSON{Width: in.Viewport.Width, Height: in.Viewport.Height},
		ScreenshotImage: in.ScreenshotImage,
		RelatedPRNumber: in.RelatedPRNumber,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding change request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/change-requests", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp dto.ChangeRequestResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}

	return &model.SubmitResult{
		IssueURL:        resp.IssueURL,
		IssueNumber:     resp.IssueNumber,
		RelatedPRNumber: resp.RelatedPRNumber,
	}, nil
}

func (c *Client) Health(ctx context.Context) (*dto.HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/change-requests/health", nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	var resp dto.HealthResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(req *http.Request, out any) error {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling relay: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var envelope dto.ErrorResponse
		if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil || envelope.Error == "" {
			envelope.Error = http.StatusText(res.StatusCode)
		}
		return &APIError{
			StatusCode: res.StatusCode,
			Message:    envelope.Error,
			Details:    envelope.Details,
		}
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding relay response: %w", err)
	}
	return nil
}
