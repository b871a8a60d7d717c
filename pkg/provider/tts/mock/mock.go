// Package mock provides a test double for the tts.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/yogeshsharma140781/Lingoa/pkg/provider/tts"
)

// SpeakCall records a single invocation of Speak or SpeakStream.
type SpeakCall struct {
	// Ctx is the context passed to the call.
	Ctx context.Context
	// Req is the Request passed to the call.
	Req tts.Request
}

// Provider is a mock implementation of tts.Provider and tts.StreamingProvider.
// Zero values cause Speak to return empty audio and a nil error.
type Provider struct {
	mu sync.Mutex

	// Audio is returned by Speak and emitted (whole) by SpeakStream.
	Audio []byte

	// Err, if non-nil, is returned as the error from Speak and SpeakStream.
	Err error

	// SpeakFunc, if non-nil, overrides Audio/Err for Speak.
	SpeakFunc func(ctx context.Context, req tts.Request) ([]byte, error)

	// Calls records every invocation in order.
	Calls []SpeakCall
}

// Speak records the call and returns the configured audio.
func (p *Provider) Speak(ctx context.Context, req tts.Request) ([]byte, error) {
	p.mu.Lock()
	p.Calls = append(p.Calls, SpeakCall{Ctx: ctx, Req: req})
	fn := p.SpeakFunc
	audio, err := p.Audio, p.Err
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return audio, err
}

// SpeakStream records the call and emits the configured audio as one fragment.
func (p *Provider) SpeakStream(ctx context.Context, req tts.Request) (<-chan []byte, error) {
	audio, err := p.Speak(ctx, req)
	if err != nil {
		return nil, err
	}
	ch := make(chan []byte, 1)
	if len(audio) > 0 {
		ch <- audio
	}
	close(ch)
	return ch, nil
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = nil
}

// Ensure Provider implements both interfaces at compile time.
var (
	_ tts.Provider          = (*Provider)(nil)
	_ tts.StreamingProvider = (*Provider)(nil)
)
