package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	anthropicTimeout   = 30 * time.Second
	anthropicVersion   = "2023-06-01"
	anthropicMaxTokens = 1024
)

// Anthropic parses events via the hosted messages endpoint.
type Anthropic struct {
	model  string
	apiKey string
	client *http.Client

	// endpoint is overridable for tests; defaults to the public API.
	endpoint string
}

// NewAnthropic returns a provider using the given model and credential.
// An empty key fails at call time before any network I/O.
func NewAnthropic(model, apiKey string) *Anthropic {
	return &Anthropic{
		model:    model,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: anthropicTimeout},
		endpoint: "https://api.anthropic.com/v1/messages",
	}
}

func (a *Anthropic) Name() string { return "anthropic" }

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (a *Anthropic) Generate(ctx context.Context, prompt string) (string, error) {
	if a.apiKey == "" {
		return "", &KeyMissingError{Provider: a.Name()}
	}

	reqBody := anthropicRequest{
		Model:     a.model,
		MaxTokens: anthropicMaxTokens,
		System:    jsonOnlySystem,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic: %w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("anthropic: %w: %v", ErrUnreachable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", statusError("anthropic", resp.StatusCode, body)
	}

	var out anthropicResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("anthropic: malformed response: %w", err)
	}
	if len(out.Content) == 0 {
		return "", errors.New("anthropic: response contained no content blocks")
	}
	return out.Content[0].Text, nil
}
