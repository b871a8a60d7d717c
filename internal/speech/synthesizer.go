package speech

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yogeshsharma140781/Lingoa/internal/session"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/tts"
)

// defaultPrefetch is how many chunks are synthesised ahead of playback.
const defaultPrefetch = 3

// Speeds by learner level. Beginners get slowed-down speech.
var levelSpeeds = map[string]float64{
	session.LevelBeginner:     0.85,
	session.LevelIntermediate: 0.95,
	session.LevelAdvanced:     1.0,
}

// SpeedForLevel returns the TTS speed multiplier for a learner level.
func SpeedForLevel(level string) float64 {
	if speed, ok := levelSpeeds[level]; ok {
		return speed
	}
	return levelSpeeds[session.LevelBeginner]
}

// Audio is one synthesised chunk, in reply order.
type Audio struct {
	// Chunk is the source text piece.
	Chunk Chunk
	// Data is the encoded audio.
	Data []byte
}

// SynthOption is a functional option for [NewSynthesizer].
type SynthOption func(*Synthesizer)

// WithPrefetch sets how many chunks are synthesised ahead of delivery.
// Defaults to 3.
func WithPrefetch(n int) SynthOption {
	return func(s *Synthesizer) {
		if n > 0 {
			s.prefetch = n
		}
	}
}

// Synthesizer fetches audio for reply chunks concurrently while preserving
// reply order. Safe for concurrent use.
type Synthesizer struct {
	tts      tts.Provider
	prefetch int
}

// NewSynthesizer creates a [Synthesizer] over the given TTS provider.
func NewSynthesizer(provider tts.Provider, opts ...SynthOption) *Synthesizer {
	s := &Synthesizer{tts: provider, prefetch: defaultPrefetch}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Synthesize speaks every chunk and returns a channel that delivers the
// audio in chunk order. Up to the prefetch limit of chunks are in flight at
// once; delivery order never changes. The channel closes when all chunks are
// delivered or the first synthesis error occurs; the returned wait function
// reports that error.
func (s *Synthesizer) Synthesize(ctx context.Context, chunks []Chunk, language, level string) (<-chan Audio, func() error) {
	out := make(chan Audio, s.prefetch)
	results := make([]chan []byte, len(chunks))
	for i := range results {
		results[i] = make(chan []byte, 1)
	}

	speed := SpeedForLevel(level)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.prefetch)

	// Producer goroutines, bounded by the prefetch limit. g.Go blocks at the
	// limit, so the scheduling loop runs off the caller's goroutine.
	done := make(chan error, 1)
	go func() {
		for i := range chunks {
			g.Go(func() error {
				audio, err := s.tts.Speak(gctx, tts.Request{
					Text:     chunks[i].Text,
					Language: language,
					Speed:    speed,
				})
				if err != nil {
					return fmt.Errorf("speech: chunk %d: %w", i, err)
				}
				results[i] <- audio
				close(results[i])
				return nil
			})
		}
		done <- g.Wait()
	}()

	go func() {
		defer close(out)
		for i, ch := range results {
			select {
			case data, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- Audio{Chunk: chunks[i], Data: data}:
				case <-ctx.Done():
					return
				}
			case <-gctx.Done():
				return
			}
		}
	}()

	return out, func() error { return <-done }
}
