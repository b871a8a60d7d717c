package stt

// Request carries one recorded utterance to be transcribed.
type Request struct {
	// Audio is the encoded audio clip. Containers accepted depend on the
	// backend; WAV and WebM/Opus are safe choices for all built-in providers.
	Audio []byte

	// MIMEType describes the audio container (e.g., "audio/wav",
	// "audio/webm"). Used to name the upload; backends that sniff the
	// container may ignore it.
	MIMEType string

	// Language is the ISO 639-1 code the engine should transcribe in
	// (e.g., "es", "hi"). Empty means auto-detect.
	Language string
}

// Result is the outcome of a transcription.
type Result struct {
	// Text is the transcribed utterance. May be empty for silent audio.
	Text string

	// DetectedLanguage is the ISO 639-1 code the engine believes it heard.
	// When the request forced a language this echoes that code. Empty when
	// the backend does not report a language.
	DetectedLanguage string
}
