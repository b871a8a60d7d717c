package tts

// Request carries one text chunk to be synthesised.
type Request struct {
	// Text is the chunk to speak. Must be non-empty.
	Text string

	// Language is the ISO 639-1 code of the text (e.g., "es", "hi"). Providers
	// use it to pick a voice and language-appropriate delivery settings.
	Language string

	// Speed adjusts the speaking rate (0.5–2.0, 0 = provider default).
	// Backends without native rate control may ignore it.
	Speed float64

	// Voice optionally overrides the provider's language-based voice choice
	// with a provider-specific voice identifier.
	Voice string
}
