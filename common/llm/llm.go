package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/invopop/jsonschema"
)

var (
	ErrNoChoices = errors.New("no choices in response")
	ErrRefused   = errors.New("model refused the request")
	ErrTruncated = errors.New("response truncated before completion")
)

// Client performs one schema-constrained generation per call. The model output
// is decoded into result; anything that does not decode cleanly is an error.
type Client interface {
	Chat(ctx context.Context, req Request, result any) (*Response, error)
	Model() string
}

type Request struct {
	SystemPrompt string
	UserPrompt   string
	SchemaName   string
	Schema       any
	MaxTokens    int
	Temperature  *float64 // nil = model default, explicit 0 = deterministic
}

type Response struct {
	PromptTokens     int
	CompletionTokens int
}

type Config struct {
	APIKey  string
	BaseURL string // Optional: any OpenAI-compatible endpoint
	Model   string
}

// GenerateSchema reflects a strict JSON schema for T: no additional
// properties, no $ref indirection.
func GenerateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

func Temp(t float64) *float64 {
	return &t
}

// DecodeStrict unmarshals a single JSON document into result, rejecting
// unknown fields and trailing data.
func DecodeStrict(content string, result any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(content)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(result); err != nil {
		return fmt.Errorf("decode structured output: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode structured output: trailing data after JSON document")
	}
	return nil
}
