package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yogeshsharma140781/Lingoa/pkg/provider/llm"
	llmmock "github.com/yogeshsharma140781/Lingoa/pkg/provider/llm/mock"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/stt"
	sttmock "github.com/yogeshsharma140781/Lingoa/pkg/provider/stt/mock"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/tts"
	ttsmock "github.com/yogeshsharma140781/Lingoa/pkg/provider/tts/mock"
)

// TestNewChain_Empty rejects a chain with no entries.
func TestNewChain_Empty(t *testing.T) {
	t.Parallel()

	if _, err := NewChain[string](BreakerConfig{}); err == nil {
		t.Fatal("expected error for empty chain")
	}
}

// TestRun_PrimarySucceeds never touches the fallback.
func TestRun_PrimarySucceeds(t *testing.T) {
	t.Parallel()

	fallbackCalled := false
	chain, err := NewChain(BreakerConfig{},
		Entry[func() (string, error)]{Name: "primary", Provider: func() (string, error) { return "ok", nil }},
		Entry[func() (string, error)]{Name: "fallback", Provider: func() (string, error) {
			fallbackCalled = true
			return "", nil
		}},
	)
	if err != nil {
		t.Fatal(err)
	}

	got, err := Run(chain, func(fn func() (string, error)) (string, error) { return fn() })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Errorf("got %q, want ok", got)
	}
	if fallbackCalled {
		t.Error("fallback should not run when primary succeeds")
	}
}

// TestRun_FailsOver moves to the fallback when the primary errors.
func TestRun_FailsOver(t *testing.T) {
	t.Parallel()

	chain, err := NewChain(BreakerConfig{},
		Entry[func() (string, error)]{Name: "primary", Provider: func() (string, error) { return "", errBoom }},
		Entry[func() (string, error)]{Name: "fallback", Provider: func() (string, error) { return "rescued", nil }},
	)
	if err != nil {
		t.Fatal(err)
	}

	got, err := Run(chain, func(fn func() (string, error)) (string, error) { return fn() })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "rescued" {
		t.Errorf("got %q, want rescued", got)
	}
}

// TestRun_AllFail wraps the last error with ErrAllFailed.
func TestRun_AllFail(t *testing.T) {
	t.Parallel()

	chain, err := NewChain(BreakerConfig{},
		Entry[func() (string, error)]{Name: "a", Provider: func() (string, error) { return "", errBoom }},
		Entry[func() (string, error)]{Name: "b", Provider: func() (string, error) { return "", errBoom }},
	)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Run(chain, func(fn func() (string, error)) (string, error) { return fn() }); !errors.Is(err, ErrAllFailed) {
		t.Errorf("expected ErrAllFailed, got %v", err)
	}
}

// TestRun_SkipsOpenBreaker routes around a tripped primary without probing.
func TestRun_SkipsOpenBreaker(t *testing.T) {
	t.Parallel()

	primaryCalls := 0
	chain, err := NewChain(BreakerConfig{FailureThreshold: 1, Cooldown: time.Hour},
		Entry[func() (string, error)]{Name: "primary", Provider: func() (string, error) {
			primaryCalls++
			return "", errBoom
		}},
		Entry[func() (string, error)]{Name: "fallback", Provider: func() (string, error) { return "ok", nil }},
	)
	if err != nil {
		t.Fatal(err)
	}

	run := func() (string, error) {
		return Run(chain, func(fn func() (string, error)) (string, error) { return fn() })
	}
	if _, err := run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if primaryCalls != 1 {
		t.Errorf("expected primary probed once, got %d calls", primaryCalls)
	}
}

// TestLLMChain_FailsOver exercises the llm.Provider wrapper end to end.
func TestLLMChain_FailsOver(t *testing.T) {
	t.Parallel()

	primary := &llmmock.Provider{CompleteErr: errBoom}
	fallback := &llmmock.Provider{CompleteResponse: &llm.CompletionResponse{Content: "hola"}}

	chain, err := NewLLMChain(BreakerConfig{},
		Entry[llm.Provider]{Name: "primary", Provider: primary},
		Entry[llm.Provider]{Name: "fallback", Provider: fallback},
	)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := chain.Complete(context.Background(), llm.CompletionRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "hola" {
		t.Errorf("got %q, want hola", resp.Content)
	}
	if len(primary.CompleteCalls) != 1 || len(fallback.CompleteCalls) != 1 {
		t.Errorf("unexpected call counts: primary=%d fallback=%d",
			len(primary.CompleteCalls), len(fallback.CompleteCalls))
	}
}

// TestSTTChain_FailsOver exercises the stt.Provider wrapper.
func TestSTTChain_FailsOver(t *testing.T) {
	t.Parallel()

	primary := &sttmock.Provider{Err: errBoom}
	fallback := &sttmock.Provider{Result: &stt.Result{Text: "hallo"}}

	chain, err := NewSTTChain(BreakerConfig{},
		Entry[stt.Provider]{Name: "primary", Provider: primary},
		Entry[stt.Provider]{Name: "fallback", Provider: fallback},
	)
	if err != nil {
		t.Fatal(err)
	}

	res, err := chain.Transcribe(context.Background(), stt.Request{Audio: []byte{1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "hallo" {
		t.Errorf("got %q, want hallo", res.Text)
	}
}

// TestTTSChain_FailsOver exercises the tts.Provider wrapper.
func TestTTSChain_FailsOver(t *testing.T) {
	t.Parallel()

	primary := &ttsmock.Provider{Err: errBoom}
	fallback := &ttsmock.Provider{Audio: []byte("mp3")}

	chain, err := NewTTSChain(BreakerConfig{},
		Entry[tts.Provider]{Name: "primary", Provider: primary},
		Entry[tts.Provider]{Name: "fallback", Provider: fallback},
	)
	if err != nil {
		t.Fatal(err)
	}

	audio, err := chain.Speak(context.Background(), tts.Request{Text: "hoi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(audio) != "mp3" {
		t.Errorf("got %q, want mp3", audio)
	}
}
