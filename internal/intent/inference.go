package intent

import (
	"context"
	"fmt"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/yogeshsharma140781/Lingoa/internal/llmjson"
	"github.com/yogeshsharma140781/Lingoa/internal/prompt"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/llm"
)

const (
	// minInferenceConfidence is the model confidence below which an inferred
	// reading is discarded.
	minInferenceConfidence = 0.5

	// visibleDifferenceCeiling is the Jaro-Winkler similarity above which the
	// inferred utterance is treated as the same thing the learner sees on
	// screen, so no correction hint is shown.
	visibleDifferenceCeiling = 0.9
)

// Inference is a recovered reading of a garbled transcript.
type Inference struct {
	// Utterance is the inferred intended utterance.
	Utterance string
	// Confidence is the model's confidence in the reading, 0 to 1.
	Confidence float64
	// ShowHint reports whether the inferred utterance differs visibly from
	// the garbled original and deserves a "you meant" hint.
	ShowHint bool
}

// Inferrer recovers intended utterances from garbled transcripts using the
// recent conversation as context. Safe for concurrent use.
type Inferrer struct {
	llm         llm.Provider
	assembler   *prompt.Assembler
	temperature float64
}

// InferrerOption is a functional option for [NewInferrer].
type InferrerOption func(*Inferrer)

// WithInferrerTemperature sets the LLM sampling temperature. Default: 0.3.
func WithInferrerTemperature(temp float64) InferrerOption {
	return func(inf *Inferrer) { inf.temperature = temp }
}

// NewInferrer creates an [Inferrer] backed by the given LLM provider.
func NewInferrer(provider llm.Provider, assembler *prompt.Assembler, opts ...InferrerOption) *Inferrer {
	inf := &Inferrer{
		llm:         provider,
		assembler:   assembler,
		temperature: 0.3,
	}
	for _, o := range opts {
		o(inf)
	}
	return inf
}

// llmInference is the JSON shape the inference prompt requests.
type llmInference struct {
	Inferred   string  `json:"inferred"`
	Confidence float64 `json:"confidence"`
}

// Infer asks the model for the most likely intended utterance behind a
// garbled transcript. history provides conversational context and is
// windowed like any other LLM call.
//
// A nil Inference with a nil error means no plausible reading exists; the
// caller should ask the learner to repeat. Transport errors surface so the
// caller can degrade the same way.
func (inf *Inferrer) Infer(ctx context.Context, garbled, language string, history []llm.Message) (*Inference, error) {
	trimmed := strings.TrimSpace(garbled)
	if trimmed == "" {
		return nil, nil
	}

	system, err := inf.assembler.Guard(prompt.PurposeInference, language, prompt.Data{Transcript: trimmed})
	if err != nil {
		return nil, fmt.Errorf("intent: build inference prompt: %w", err)
	}

	resp, err := inf.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: system,
		Temperature:  inf.temperature,
		JSONOnly:     true,
		Messages:     append(inf.assembler.Window(history), llm.Message{Role: "user", Content: trimmed}),
	})
	if err != nil {
		return nil, fmt.Errorf("intent: infer: %w", err)
	}

	parsed, parseErr := llmjson.Decode[llmInference](resp.Content)
	if parseErr != nil {
		return nil, nil
	}

	inferred := strings.TrimSpace(parsed.Inferred)
	if inferred == "" || parsed.Confidence < minInferenceConfidence {
		return nil, nil
	}

	similarity := matchr.JaroWinkler(strings.ToLower(trimmed), strings.ToLower(inferred), true)
	return &Inference{
		Utterance:  inferred,
		Confidence: parsed.Confidence,
		ShowHint:   similarity < visibleDifferenceCeiling,
	}, nil
}
