// Package tts defines the Provider interface for Text-to-Speech backends.
//
// A TTS provider wraps a speech synthesis service (e.g., ElevenLabs or the
// OpenAI speech endpoint) and turns short text chunks into encoded audio.
// The tutoring pipeline feeds it prosody-sized chunks, so the primary entry
// point is the batch Speak call; providers that can stream encoded audio as
// it is generated may additionally implement StreamingProvider.
//
// Implementations must be safe for concurrent use.
package tts

import "context"

// Provider is the abstraction over any TTS backend.
type Provider interface {
	// Speak synthesises req.Text and returns the complete encoded audio clip.
	// The encoding is provider-specific (MP3 for the built-in providers).
	//
	// Returns an error if synthesis fails or ctx is cancelled.
	Speak(ctx context.Context, req Request) ([]byte, error)
}

// StreamingProvider is implemented by backends that can deliver encoded audio
// incrementally. The returned channel is closed by the implementation when
// synthesis finishes or ctx is cancelled; callers must drain it.
type StreamingProvider interface {
	Provider

	// SpeakStream synthesises req.Text and emits encoded audio fragments as
	// they arrive from the backend. A non-nil error is returned only when the
	// stream cannot be started.
	SpeakStream(ctx context.Context, req Request) (<-chan []byte, error)
}
