package extract

import (
	"context"
	"errors"
	"sync"
	"testing"

	"textcal/internal/capture"
)

// blockingProvider parks in Generate until released, so tests can hold a
// run in flight.
type blockingProvider struct {
	entered chan struct{}
	release chan struct{}
	reply   string
}

func (p *blockingProvider) Name() string { return "fake" }

func (p *blockingProvider) Generate(ctx context.Context, _ string) (string, error) {
	if p.entered != nil {
		close(p.entered)
	}
	if p.release != nil {
		select {
		case <-p.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return p.reply, nil
}

const validReply = `{"title":"Standup","date":"2024-03-01","start_time":"09:00"}`

func TestPipelineSingleFlight(t *testing.T) {
	p := NewPipeline()
	prov := &blockingProvider{
		entered: make(chan struct{}),
		release: make(chan struct{}),
		reply:   validReply,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ev, err := p.Run(context.Background(), RunConfig{
			Source:   capture.TextSource("standup tomorrow 9am"),
			Provider: prov,
		})
		if err != nil {
			t.Errorf("first run failed: %v", err)
			return
		}
		if ev == nil || ev.Title != "Standup" {
			t.Errorf("unexpected event: %+v", ev)
		}
	}()

	<-prov.entered

	// Second trigger while the first is parsing: dropped, not queued.
	_, err := p.Run(context.Background(), RunConfig{
		Source:   capture.TextSource("other"),
		Provider: &blockingProvider{reply: validReply},
	})
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("second trigger err = %v, want ErrBusy", err)
	}

	close(prov.release)
	wg.Wait()

	// Result not yet accepted: still busy.
	if got := p.State(); got != StateReady {
		t.Fatalf("state = %v, want ready", got)
	}
	_, err = p.Run(context.Background(), RunConfig{
		Source:   capture.TextSource("other"),
		Provider: &blockingProvider{reply: validReply},
	})
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("trigger while ready err = %v, want ErrBusy", err)
	}

	// Accept releases the pipeline.
	p.Accept()
	if got := p.State(); got != StateIdle {
		t.Fatalf("state after accept = %v, want idle", got)
	}
}

func TestPipelineFailureResetsToIdle(t *testing.T) {
	p := NewPipeline()
	_, err := p.Run(context.Background(), RunConfig{
		Source:   capture.TextSource("meeting"),
		Provider: &blockingProvider{reply: "no json here"},
	})
	var mr *MalformedResponseError
	if !errors.As(err, &mr) {
		t.Fatalf("err = %v, want MalformedResponseError", err)
	}
	if got := p.State(); got != StateIdle {
		t.Fatalf("state after failure = %v, want idle", got)
	}
}

func TestPipelineEmptyTextIsNoTextFound(t *testing.T) {
	p := NewPipeline()
	_, err := p.Run(context.Background(), RunConfig{
		Source:   capture.TextSource("   \n\t"),
		Provider: &blockingProvider{reply: validReply},
	})
	if !errors.Is(err, ErrNoTextFound) {
		t.Fatalf("err = %v, want ErrNoTextFound", err)
	}
	if got := p.State(); got != StateIdle {
		t.Fatalf("state = %v, want idle", got)
	}
}

func TestPipelineDiscardReleases(t *testing.T) {
	p := NewPipeline()
	if _, err := p.Run(context.Background(), RunConfig{
		Source:   capture.TextSource("standup"),
		Provider: &blockingProvider{reply: validReply},
	}); err != nil {
		t.Fatal(err)
	}
	p.Discard()
	if got := p.State(); got != StateIdle {
		t.Fatalf("state after discard = %v, want idle", got)
	}
}

func TestPipelineSourceTextAttached(t *testing.T) {
	p := NewPipeline()
	ev, err := p.Run(context.Background(), RunConfig{
		Source:   capture.TextSource("standup friday morning"),
		Provider: &blockingProvider{reply: validReply},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Discard()
	if ev.SourceText != "standup friday morning" {
		t.Errorf("SourceText = %q, want the captured input", ev.SourceText)
	}
}
