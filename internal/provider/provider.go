// Package provider implements the semantic-parsing backends. Each backend
// takes a fully built prompt and returns the model's raw text reply; JSON
// extraction and validation live in internal/extract, shared by all
// backends.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Provider is a semantic-parsing backend.
type Provider interface {
	// Name returns the provider name used in configuration and errors.
	Name() string

	// Generate sends the prompt and returns the model's raw reply.
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrUnreachable marks transport-level failures (connection refused,
// timeout). Callers do not distinguish timeout from refusal.
var ErrUnreachable = errors.New("provider unreachable")

// KeyMissingError is returned before any network call when a hosted
// provider has no credential configured.
type KeyMissingError struct {
	Provider string
}

func (e *KeyMissingError) Error() string {
	return "no API key configured for " + e.Provider
}

// jsonOnlySystem is the shared system instruction for hosted backends.
const jsonOnlySystem = "You are a calendar event extraction assistant. " +
	"Respond with a single JSON object only. No prose, no explanations, no code fences."

// vendorError mirrors the error envelope both hosted vendors use.
type vendorError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// statusError builds the error for a non-2xx response, surfacing the
// vendor-supplied message when one is present.
func statusError(name string, status int, body []byte) error {
	var ve vendorError
	if err := json.Unmarshal(body, &ve); err == nil && ve.Error.Message != "" {
		return fmt.Errorf("%s: %s", name, ve.Error.Message)
	}
	return fmt.Errorf("%s error (%d)", name, status)
}
