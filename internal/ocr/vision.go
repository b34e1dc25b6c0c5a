package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"textcal/internal/provider"
)

const visionTimeout = 120 * time.Second

// visionPrompt keeps the model from editorializing; anything beyond the
// visible text breaks downstream parsing.
const visionPrompt = "Extract only the visible text from this image. " +
	"Return the text exactly as written, with no commentary."

// Vision recognizes text with a locally hosted multimodal model.
type Vision struct {
	host  string
	model string

	client *http.Client
}

// NewVision returns a recognizer for the given model server host and
// multimodal model name.
func NewVision(host, model string) *Vision {
	return &Vision{
		host:   strings.TrimRight(host, "/"),
		model:  model,
		client: &http.Client{Timeout: visionTimeout},
	}
}

func (v *Vision) Name() string { return "vision" }

type visionRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images"`
	Stream bool     `json:"stream"`
	Think  bool     `json:"think"`
}

type visionResponse struct {
	Response string `json:"response"`
}

// RecognizeText base64-encodes the image and asks the vision model for a
// verbatim transcription.
func (v *Vision) RecognizeText(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", &RecognitionError{Detail: "empty image"}
	}

	reqBody := visionRequest{
		Model:  v.model,
		Prompt: visionPrompt,
		Images: []string{base64.StdEncoding.EncodeToString(image)},
		Stream: false,
		Think:  false,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &RecognitionError{Detail: "encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.host+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", &RecognitionError{Detail: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("vision: %w: %v", provider.ErrUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("vision: %w: %v", provider.ErrUnreachable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &RecognitionError{Detail: fmt.Sprintf("vision model error (%d)", resp.StatusCode)}
	}

	var out visionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &RecognitionError{Detail: "malformed vision response", Err: err}
	}
	return strings.TrimSpace(out.Response), nil
}
