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

const openAITimeout = 30 * time.Second

// OpenAI parses events via the hosted chat-completions endpoint.
type OpenAI struct {
	model  string
	apiKey string
	client *http.Client

	// endpoint is overridable for tests; defaults to the public API.
	endpoint string
}

// NewOpenAI returns a provider using the given model and credential. The
// credential must already be resolved; an empty key fails at call time
// before any network I/O.
func NewOpenAI(model, apiKey string) *OpenAI {
	return &OpenAI{
		model:    model,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: openAITimeout},
		endpoint: "https://api.openai.com/v1/chat/completions",
	}
}

func (o *OpenAI) Name() string { return "openai" }

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	if o.apiKey == "" {
		return "", &KeyMissingError{Provider: o.Name()}
	}

	reqBody := openAIRequest{
		Model: o.model,
		Messages: []openAIMessage{
			{Role: "system", Content: jsonOnlySystem},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.1,
	}
	reqBody.ResponseFormat.Type = "json_object"

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai: %w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("openai: %w: %v", ErrUnreachable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", statusError("openai", resp.StatusCode, body)
	}

	var out openAIResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("openai: malformed response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("openai: response contained no choices")
	}
	return out.Choices[0].Message.Content, nil
}
