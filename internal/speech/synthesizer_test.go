package speech

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yogeshsharma140781/Lingoa/pkg/provider/tts"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/tts/mock"
)

// TestSynthesize_OrderPreserved delivers audio in chunk order even when
// earlier chunks finish later.
func TestSynthesize_OrderPreserved(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	provider := &mock.Provider{
		SpeakFunc: func(ctx context.Context, req tts.Request) ([]byte, error) {
			// First call sleeps so the second finishes first.
			if calls.Add(1) == 1 {
				time.Sleep(20 * time.Millisecond)
			}
			return []byte(req.Text), nil
		},
	}
	s := NewSynthesizer(provider)

	chunks := []Chunk{{Text: "uno"}, {Text: "dos"}, {Text: "tres"}}
	out, wait := s.Synthesize(context.Background(), chunks, "es", "beginner")

	var got []string
	for a := range out {
		got = append(got, string(a.Data))
	}
	if err := wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"uno", "dos", "tres"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order broken: got %v, want %v", got, want)
		}
	}
}

// TestSynthesize_SpeedByLevel passes the level speed to the provider.
func TestSynthesize_SpeedByLevel(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{Audio: []byte("x")}
	s := NewSynthesizer(provider)

	out, wait := s.Synthesize(context.Background(), []Chunk{{Text: "hola"}}, "es", "advanced")
	for range out {
	}
	if err := wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(provider.Calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(provider.Calls))
	}
	if got := provider.Calls[0].Req.Speed; got != 1.0 {
		t.Errorf("speed = %v, want 1.0", got)
	}
	if provider.Calls[0].Req.Language != "es" {
		t.Errorf("language = %q", provider.Calls[0].Req.Language)
	}
}

// TestSynthesize_ErrorStopsStream reports the failure through wait.
func TestSynthesize_ErrorStopsStream(t *testing.T) {
	t.Parallel()

	boom := errors.New("tts down")
	provider := &mock.Provider{
		SpeakFunc: func(ctx context.Context, req tts.Request) ([]byte, error) {
			if req.Text == "dos" {
				return nil, boom
			}
			return []byte(req.Text), nil
		},
	}
	s := NewSynthesizer(provider)

	out, wait := s.Synthesize(context.Background(), []Chunk{{Text: "uno"}, {Text: "dos"}, {Text: "tres"}}, "es", "beginner")
	for range out {
	}
	if err := wait(); !errors.Is(err, boom) {
		t.Errorf("expected synthesis error, got %v", err)
	}
}

// TestSynthesize_PrefetchBound limits in-flight synthesis.
func TestSynthesize_PrefetchBound(t *testing.T) {
	t.Parallel()

	var inFlight, peak atomic.Int32
	provider := &mock.Provider{
		SpeakFunc: func(ctx context.Context, req tts.Request) ([]byte, error) {
			cur := inFlight.Add(1)
			for {
				old := peak.Load()
				if cur <= old || peak.CompareAndSwap(old, cur) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			return []byte("a"), nil
		},
	}
	s := NewSynthesizer(provider, WithPrefetch(2))

	chunks := make([]Chunk, 8)
	for i := range chunks {
		chunks[i] = Chunk{Text: fmt.Sprintf("c%d", i)}
	}
	out, wait := s.Synthesize(context.Background(), chunks, "es", "beginner")
	count := 0
	for range out {
		count++
	}
	if err := wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 8 {
		t.Errorf("expected 8 audio chunks, got %d", count)
	}
	if peak.Load() > 2 {
		t.Errorf("prefetch bound exceeded: peak %d", peak.Load())
	}
}
