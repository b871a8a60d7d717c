package resilience

import (
	"context"

	"github.com/yogeshsharma140781/Lingoa/pkg/provider/llm"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/stt"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/tts"
)

// LLMChain implements [llm.Provider] over an ordered chain of LLM backends.
type LLMChain struct {
	chain *Chain[llm.Provider]
}

var _ llm.Provider = (*LLMChain)(nil)

// NewLLMChain builds an [LLMChain] from ordered entries.
func NewLLMChain(cfg BreakerConfig, entries ...Entry[llm.Provider]) (*LLMChain, error) {
	chain, err := NewChain(cfg, entries...)
	if err != nil {
		return nil, err
	}
	return &LLMChain{chain: chain}, nil
}

// Complete sends the request to the first healthy backend.
func (c *LLMChain) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return Run(c.chain, func(p llm.Provider) (*llm.CompletionResponse, error) {
		return p.Complete(ctx, req)
	})
}

// StreamCompletion opens a stream against the first healthy backend. Only
// stream setup participates in failover; mid-stream errors belong to the
// caller.
func (c *LLMChain) StreamCompletion(ctx context.Context, req llm.CompletionRequest) (<-chan llm.Chunk, error) {
	return Run(c.chain, func(p llm.Provider) (<-chan llm.Chunk, error) {
		return p.StreamCompletion(ctx, req)
	})
}

// CountTokens delegates to the first healthy backend.
func (c *LLMChain) CountTokens(messages []llm.Message) (int, error) {
	return Run(c.chain, func(p llm.Provider) (int, error) {
		return p.CountTokens(messages)
	})
}

// Capabilities reports the primary's capabilities; static metadata does not
// participate in failover.
func (c *LLMChain) Capabilities() llm.ModelCapabilities {
	return c.chain.Primary().Capabilities()
}

// STTChain implements [stt.Provider] over an ordered chain of STT backends.
type STTChain struct {
	chain *Chain[stt.Provider]
}

var _ stt.Provider = (*STTChain)(nil)

// NewSTTChain builds an [STTChain] from ordered entries.
func NewSTTChain(cfg BreakerConfig, entries ...Entry[stt.Provider]) (*STTChain, error) {
	chain, err := NewChain(cfg, entries...)
	if err != nil {
		return nil, err
	}
	return &STTChain{chain: chain}, nil
}

// Transcribe sends the audio to the first healthy backend.
func (c *STTChain) Transcribe(ctx context.Context, req stt.Request) (*stt.Result, error) {
	return Run(c.chain, func(p stt.Provider) (*stt.Result, error) {
		return p.Transcribe(ctx, req)
	})
}

// TTSChain implements [tts.Provider] over an ordered chain of TTS backends.
type TTSChain struct {
	chain *Chain[tts.Provider]
}

var _ tts.Provider = (*TTSChain)(nil)

// NewTTSChain builds a [TTSChain] from ordered entries.
func NewTTSChain(cfg BreakerConfig, entries ...Entry[tts.Provider]) (*TTSChain, error) {
	chain, err := NewChain(cfg, entries...)
	if err != nil {
		return nil, err
	}
	return &TTSChain{chain: chain}, nil
}

// Speak synthesises the text with the first healthy backend.
func (c *TTSChain) Speak(ctx context.Context, req tts.Request) ([]byte, error) {
	return Run(c.chain, func(p tts.Provider) ([]byte, error) {
		return p.Speak(ctx, req)
	})
}
