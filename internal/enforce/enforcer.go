package enforce

import (
	"context"
	"log/slog"
	"strings"

	"github.com/yogeshsharma140781/Lingoa/internal/langdetect"
	"github.com/yogeshsharma140781/Lingoa/internal/prompt"
	"github.com/yogeshsharma140781/Lingoa/internal/scenario"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/llm"
)

// refusalMarkers are English phrases the model falls back to when it gives
// up on an utterance. They must never reach the learner verbatim in a
// non-English conversation; a target-language clarification replaces them.
var refusalMarkers = []string{
	"i didn't understand",
	"i did not understand",
	"i don't understand",
	"i do not understand",
	"didn't catch that",
}

// Option is a functional option for [NewEnforcer].
type Option func(*Enforcer)

// WithTemperature sets the rewrite temperature. Default: 0.3.
func WithTemperature(temp float64) Option {
	return func(e *Enforcer) { e.temperature = temp }
}

// Enforcer checks the final reply against the target language and persona.
// Safe for concurrent use.
type Enforcer struct {
	llm         llm.Provider
	assembler   *prompt.Assembler
	temperature float64
}

// NewEnforcer creates an [Enforcer] backed by the given LLM provider.
func NewEnforcer(provider llm.Provider, assembler *prompt.Assembler, opts ...Option) *Enforcer {
	e := &Enforcer{
		llm:         provider,
		assembler:   assembler,
		temperature: 0.3,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Enforce returns the reply to actually deliver. The pipeline is:
//
//  1. English refusal phrases become a target-language clarification.
//  2. A reply that drifted out of the target language gets ONE LLM rewrite;
//     if the rewrite fails or still drifts, the original reply is kept. A
//     worse-language reply beats no reply.
//  3. The persona rewrite runs last so it also covers rewritten text.
//
// Enforce never returns an error: enforcement is a guard, not a gate.
func (e *Enforcer) Enforce(ctx context.Context, reply, language string) string {
	trimmed := strings.TrimSpace(reply)
	if trimmed == "" {
		return trimmed
	}

	if language != "en" && containsRefusal(trimmed) {
		return scenario.Clarification(language)
	}

	if langdetect.DetectMismatch(trimmed, language) {
		if rewritten := e.rewrite(ctx, trimmed, language); rewritten != "" {
			trimmed = rewritten
		}
	}

	return ApplyPersona(trimmed, language)
}

// rewrite asks the model once to restate the reply in the target language.
// Returns empty when the rewrite failed or still mismatches.
func (e *Enforcer) rewrite(ctx context.Context, reply, language string) string {
	system, err := e.assembler.Guard(prompt.PurposeEnforcement, language, prompt.Data{Reply: reply})
	if err != nil {
		return ""
	}

	resp, err := e.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: system,
		Temperature:  e.temperature,
		Messages:     []llm.Message{{Role: "user", Content: reply}},
	})
	if err != nil {
		slog.Warn("language enforcement rewrite failed", "language", language, "error", err)
		return ""
	}

	rewritten := strings.TrimSpace(resp.Content)
	if rewritten == "" || langdetect.DetectMismatch(rewritten, language) {
		slog.Warn("language enforcement rewrite still off-language", "language", language)
		return ""
	}
	return rewritten
}

func containsRefusal(reply string) bool {
	lower := strings.ToLower(reply)
	for _, marker := range refusalMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
