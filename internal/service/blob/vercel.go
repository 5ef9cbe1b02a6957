package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	vercelAPIVersion     = "7"
	defaultVercelBaseURL = "https://blob.vercel-storage.com"
)

type VercelConfig struct {
	Token   string
	BaseURL string       // Optional: defaults to the public Vercel Blob API
	Client  *http.Client // Optional
}

type vercelStore struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewVercelStore talks to the Vercel Blob REST API directly; Vercel ships no
// Go SDK.
func NewVercelStore(cfg VercelConfig) (Store, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("blob read-write token is required")
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultVercelBaseURL
	}

	httpClient := cfg.Client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &vercelStore{
		token:   cfg.Token,
		baseURL: baseURL,
		http:    httpClient,
	}, nil
}

type vercelPutResponse struct {
	URL         string `json:"url"`
	DownloadURL string `json:"downloadUrl"`
	Pathname    string `json:"pathname"`
	ContentType string `json:"contentType"`
}

type vercelErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *vercelStore) Put(ctx context.Context, name string, data []byte, opts PutOptions) (*Object, error) {
	if opts.Access != AccessPublic {
		return nil, ErrUnsupportedAccess
	}

	endpoint := s.baseURL + "/?pathname=" + url.QueryEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("building blob request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("x-api-version", vercelAPIVersion)
	req.Header.Set("x-add-random-suffix", "0")
	if opts.ContentType != "" {
		req.Header.Set("x-content-type", opts.ContentType)
	}

	start := time.Now()
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("uploading blob: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading blob response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr vercelErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("blob api %d (%s): %s", resp.StatusCode, apiErr.Error.Code, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("blob api %d", resp.StatusCode)
	}

	var out vercelPutResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decoding blob response: %w", err)
	}
	if out.URL == "" {
		return nil, fmt.Errorf("blob api returned no url")
	}

	slog.DebugContext(ctx, "blob uploaded",
		"pathname", out.Pathname,
		"bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds())

	return &Object{
		URL:         out.URL,
		Pathname:    out.Pathname,
		ContentType: out.ContentType,
	}, nil
}

func (s *vercelStore) Name() string {
	return "vercel"
}
