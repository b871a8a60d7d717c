// Package transcribe validates and repairs speech transcripts before the
// turn pipeline acts on them. Speech recognition of learner speech is noisy
// by nature: accents, half-finished sentences, and microphone artefacts all
// end up in the text. The validator decides whether a transcript is usable,
// repairs obvious recognition mistakes, and flags pure noise for the
// inference stage.
//
// Two stages run in order, cheapest first:
//
//  1. Local heuristics: empty input, garbled-noise detection, and the
//     wrong-language check, no LLM call.
//  2. LLM review: a JSON verdict with an optional repaired transcript.
//
// When the LLM response cannot be parsed the transcript passes through
// unchanged rather than surfacing an error. A transcript guard must never be
// the reason a turn dies.
package transcribe

import (
	"context"
	"fmt"
	"strings"

	"github.com/yogeshsharma140781/Lingoa/internal/intent"
	"github.com/yogeshsharma140781/Lingoa/internal/langdetect"
	"github.com/yogeshsharma140781/Lingoa/internal/llmjson"
	"github.com/yogeshsharma140781/Lingoa/internal/prompt"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/llm"
)

const defaultTemperature = 0.1

// Verdict is the validator's decision about one transcript.
type Verdict struct {
	// Valid reports whether the transcript is usable for the turn.
	Valid bool
	// Text is the transcript to use downstream: the repaired form when the
	// LLM fixed recognition mistakes, otherwise the input unchanged.
	Text string
	// Garbled marks transcription noise that the inference stage should try
	// to recover instead of conversing over.
	Garbled bool
	// Reason is a short machine-oriented explanation for an invalid verdict.
	Reason string
	// Repaired reports whether Text differs from the input.
	Repaired bool
}

// Option is a functional option for [NewValidator].
type Option func(*Validator)

// WithTemperature sets the LLM sampling temperature. Default: 0.1.
func WithTemperature(temp float64) Option {
	return func(v *Validator) { v.temperature = temp }
}

// Validator decides whether transcripts are usable and repairs recognition
// mistakes. Safe for concurrent use.
type Validator struct {
	llm         llm.Provider
	assembler   *prompt.Assembler
	temperature float64
}

// NewValidator creates a [Validator] backed by the given LLM provider.
func NewValidator(provider llm.Provider, assembler *prompt.Assembler, opts ...Option) *Validator {
	v := &Validator{
		llm:         provider,
		assembler:   assembler,
		temperature: defaultTemperature,
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// llmVerdict is the JSON shape the validation prompt requests.
type llmVerdict struct {
	Valid    bool   `json:"valid"`
	Repaired string `json:"repaired"`
	Reason   string `json:"reason"`
}

// Validate runs the heuristics and, when they pass, the LLM review.
//
// Network and context errors are returned so the caller can degrade; a
// malformed LLM response is not an error and passes the transcript through.
func (v *Validator) Validate(ctx context.Context, text, language string) (*Verdict, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return &Verdict{Valid: false, Reason: "empty transcript"}, nil
	}
	if langdetect.IsGarbled(trimmed) {
		return &Verdict{Valid: false, Text: trimmed, Garbled: true, Reason: "transcription noise"}, nil
	}
	// Wrong-language speech is rejected here, deterministically: no model
	// review can turn an English sentence into target-language practice.
	// Explicit translation requests are the one exception, those are asked
	// in the learner's own language by nature.
	if !intent.IsTranslationWrapper(trimmed) && langdetect.DetectMismatch(trimmed, language) {
		return &Verdict{Valid: false, Text: trimmed, Reason: "wrong language"}, nil
	}

	system, err := v.assembler.Guard(prompt.PurposeValidation, language, prompt.Data{Transcript: trimmed})
	if err != nil {
		return nil, fmt.Errorf("transcribe: build validation prompt: %w", err)
	}

	resp, err := v.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: system,
		Temperature:  v.temperature,
		JSONOnly:     true,
		Messages:     []llm.Message{{Role: "user", Content: trimmed}},
	})
	if err != nil {
		return nil, fmt.Errorf("transcribe: validate: %w", err)
	}

	parsed, parseErr := llmjson.Decode[llmVerdict](resp.Content)
	if parseErr != nil {
		// Unparseable verdict: the transcript passes through unchanged.
		return &Verdict{Valid: true, Text: trimmed}, nil
	}

	if !parsed.Valid {
		return &Verdict{Valid: false, Text: trimmed, Reason: parsed.Reason}, nil
	}

	repaired := strings.TrimSpace(parsed.Repaired)
	if repaired != "" && repaired != trimmed {
		return &Verdict{Valid: true, Text: repaired, Repaired: true, Reason: parsed.Reason}, nil
	}
	return &Verdict{Valid: true, Text: trimmed}, nil
}
