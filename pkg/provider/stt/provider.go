// Package stt defines the Provider interface for Speech-To-Text backends.
//
// An STT provider accepts a recorded utterance (a complete audio clip, not a
// live stream) and returns its transcription. Learners speak in short bursts,
// so batch transcription keeps the boundary simple: the caller records,
// submits, and receives text plus the language the engine believes it heard.
//
// Implementors must be safe for concurrent use.
package stt

import "context"

// Provider is the abstraction over any speech-to-text backend.
type Provider interface {
	// Transcribe converts the audio in req to text. The request's Language
	// field, when non-empty, forces the recognition language; engines that
	// support auto-detection may use it as a hint instead.
	//
	// A successful result always carries a non-nil Result (Text may be empty
	// for silent audio). Errors indicate the engine could not process the
	// audio at all, not that it heard nothing.
	Transcribe(ctx context.Context, req Request) (*Result, error)
}
