package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	appLog "textcal/internal/log"
)

// Local models can take minutes on first load, so the generate timeout is
// deliberately generous. Model listing is a cheap metadata call.
const (
	ollamaGenerateTimeout = 180 * time.Second
	ollamaTagsTimeout     = 5 * time.Second
	ollamaNumCtx          = 8192
)

// Ollama parses events via a locally hosted model server.
type Ollama struct {
	host  string
	model string

	// persist, when non-nil, is called after the model is autodetected so
	// the choice survives restarts. Errors are logged, not fatal.
	persist func(model string) error

	client *http.Client
	meta   *http.Client
}

// NewOllama returns a provider for the given host. model may be empty, in
// which case the first model reported by the server is used and handed to
// persist.
func NewOllama(host, model string, persist func(string) error) *Ollama {
	return &Ollama{
		host:    strings.TrimRight(host, "/"),
		model:   model,
		persist: persist,
		client:  &http.Client{Timeout: ollamaGenerateTimeout},
		meta:    &http.Client{Timeout: ollamaTagsTimeout},
	}
}

func (o *Ollama) Name() string { return "ollama" }

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Format  string         `json:"format,omitempty"`
	Options map[string]any `json:"options,omitempty"`

	// Think disables reasoning-trace output on models that support it;
	// reasoning prose breaks strict-JSON parsing.
	Think bool `json:"think"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

// Generate sends the prompt to /api/generate with structured output
// enforced and returns the raw reply text.
func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	model, err := o.resolveModel(ctx)
	if err != nil {
		return "", err
	}

	reqBody := ollamaGenerateRequest{
		Model:   model,
		Prompt:  prompt,
		Stream:  false,
		Format:  "json",
		Options: map[string]any{"num_ctx": ollamaNumCtx},
		Think:   false,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.host+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama: %w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ollama: %w: %v", ErrUnreachable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", statusError("ollama", resp.StatusCode, body)
	}

	var out ollamaGenerateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("ollama: malformed generate response: %w", err)
	}
	return out.Response, nil
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// resolveModel returns the configured model, or autodetects the first
// model the server reports and persists that choice as the new default.
func (o *Ollama) resolveModel(ctx context.Context) (string, error) {
	if o.model != "" {
		return o.model, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.host+"/api/tags", nil)
	if err != nil {
		return "", err
	}

	resp, err := o.meta.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama: %w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ollama: %w: %v", ErrUnreachable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", statusError("ollama", resp.StatusCode, body)
	}

	var tags ollamaTagsResponse
	if err := json.Unmarshal(body, &tags); err != nil {
		return "", fmt.Errorf("ollama: malformed tags response: %w", err)
	}
	if len(tags.Models) == 0 {
		return "", errors.New("ollama: no models installed on server")
	}

	o.model = tags.Models[0].Name
	appLog.Info("ollama model autodetected", "model", o.model)
	if o.persist != nil {
		if err := o.persist(o.model); err != nil {
			appLog.Error("failed to persist autodetected model", err, "model", o.model)
		}
	}
	return o.model, nil
}
