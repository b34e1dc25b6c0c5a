package extract

import (
	"context"
	"strings"
	"sync"
	"time"

	"textcal/internal/capture"
	appLog "textcal/internal/log"
	"textcal/internal/model"
	"textcal/internal/ocr"
	"textcal/internal/provider"
)

// State of the extraction pipeline.
type State string

const (
	StateIdle        State = "idle"
	StateCapturing   State = "capturing"
	StateRecognizing State = "recognizing"
	StateParsing     State = "parsing"
	StateReady       State = "ready"
)

// RunConfig is the per-run collaborator snapshot. It is assembled from
// configuration once, at trigger time; settings saved mid-run do not
// affect a run already in flight.
type RunConfig struct {
	// Source acquires the input (text, image file, page screenshot).
	Source capture.Source

	// Recognizer turns image payloads into text. May be nil for
	// text-only sources.
	Recognizer ocr.Recognizer

	// Provider is the semantic-parsing backend.
	Provider provider.Provider

	// PromptContext is the user's free-form context string, appended
	// verbatim to the prompt.
	PromptContext string

	// DefaultDuration is applied to timed events without an explicit
	// end; zero selects model.DefaultDuration.
	DefaultDuration time.Duration

	// Now supplies wall-clock time for the prompt; nil means time.Now.
	Now func() time.Time
}

// Pipeline sequences capture, recognition, parsing and normalization,
// enforcing the process-wide single-flight rule: a trigger received while
// a run is in flight (or its result is still awaiting user decision) is
// rejected with ErrBusy, never queued.
type Pipeline struct {
	mu    sync.Mutex
	state State
}

// NewPipeline returns an idle pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{state: StateIdle}
}

// State returns the current pipeline state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Run executes one extraction. On success the pipeline stays in
// StateReady until Accept or Discard is called; on any failure it resets
// to idle and returns the typed error unchanged.
func (p *Pipeline) Run(ctx context.Context, rc RunConfig) (*model.Event, error) {
	if !p.begin() {
		return nil, ErrBusy
	}

	ev, err := p.run(ctx, rc)
	if err != nil {
		appLog.Error("extraction failed", err, "provider", providerName(rc))
		p.setState(StateIdle)
		return nil, err
	}

	p.setState(StateReady)
	return ev, nil
}

// Accept releases the pipeline after the user kept the extracted event.
func (p *Pipeline) Accept() { p.release() }

// Discard releases the pipeline after the user rejected the event.
func (p *Pipeline) Discard() { p.release() }

func (p *Pipeline) run(ctx context.Context, rc RunConfig) (*model.Event, error) {
	payload, err := rc.Source.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	text := payload.Text
	if payload.IsImage() {
		p.setState(StateRecognizing)
		if rc.Recognizer == nil {
			return nil, &ocr.RecognitionError{Detail: "no recognizer configured for image input"}
		}
		text, err = rc.Recognizer.RecognizeText(ctx, payload.Image)
		if err != nil {
			return nil, err
		}
	}

	if strings.TrimSpace(text) == "" {
		return nil, ErrNoTextFound
	}

	p.setState(StateParsing)

	now := time.Now
	if rc.Now != nil {
		now = rc.Now
	}
	prompt := BuildPrompt(now(), text, rc.PromptContext)

	raw, err := rc.Provider.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	appLog.Debug("provider reply received", "provider", providerName(rc), "preview", preview(raw))

	return Normalize(raw, text, rc.DefaultDuration)
}

// begin transitions idle -> capturing, or reports the pipeline busy.
func (p *Pipeline) begin() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateIdle {
		return false
	}
	p.state = StateCapturing
	return true
}

func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

func (p *Pipeline) release() {
	p.mu.Lock()
	if p.state == StateReady {
		p.state = StateIdle
	}
	p.mu.Unlock()
}

func providerName(rc RunConfig) string {
	if rc.Provider == nil {
		return "none"
	}
	return rc.Provider.Name()
}
