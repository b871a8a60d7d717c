// Package feedback produces the end-of-session language review: a handful of
// rephrasings showing how a native speaker would have said what the learner
// said. The review runs once, after the session ends, so it can afford a
// bigger completion than the in-turn guards.
package feedback

import (
	"context"
	"fmt"
	"strings"

	"github.com/yogeshsharma140781/Lingoa/internal/llmjson"
	"github.com/yogeshsharma140781/Lingoa/internal/prompt"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/llm"
)

const (
	defaultTemperature = 0.4

	// maxTokens bounds the review completion. Five rephrasings with short
	// explanations fit comfortably.
	maxTokens = 500

	// minUtterances is how much the learner must have said before a review
	// is worth generating.
	minUtterances = 2

	// maxImprovements caps the list delivered to the learner. More than five
	// corrections at once reads as a scolding, not a review.
	maxImprovements = 5
)

// Improvement is one rephrasing suggestion.
type Improvement struct {
	// Original is what the learner actually said.
	Original string `json:"original"`
	// Better is how a native speaker would phrase it.
	Better string `json:"better"`
	// Context is a one-sentence explanation of the difference.
	Context string `json:"context"`
}

// Review is the feedback for one completed session.
type Review struct {
	// Improvements lists the suggested rephrasings, at most five. Empty
	// means everything the learner said was natural.
	Improvements []Improvement `json:"improvements"`
}

// Option is a functional option for [NewReviewer].
type Option func(*Reviewer)

// WithTemperature sets the LLM sampling temperature. Default: 0.4.
func WithTemperature(temp float64) Option {
	return func(r *Reviewer) { r.temperature = temp }
}

// Reviewer generates session reviews. Safe for concurrent use.
type Reviewer struct {
	llm         llm.Provider
	assembler   *prompt.Assembler
	temperature float64
}

// NewReviewer creates a [Reviewer] backed by the given LLM provider.
func NewReviewer(provider llm.Provider, assembler *prompt.Assembler, opts ...Option) *Reviewer {
	r := &Reviewer{
		llm:         provider,
		assembler:   assembler,
		temperature: defaultTemperature,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// llmReview is the JSON shape the feedback prompt requests.
type llmReview struct {
	Improvements []Improvement `json:"improvements"`
}

// Generate reviews the learner's utterances from one session.
//
// Sessions with fewer than two utterances return an empty review without an
// LLM call. An unparseable model response also degrades to an empty review:
// feedback is a bonus, never a failure mode.
func (r *Reviewer) Generate(ctx context.Context, utterances []string, language string) (*Review, error) {
	spoken := make([]string, 0, len(utterances))
	for _, u := range utterances {
		if t := strings.TrimSpace(u); t != "" {
			spoken = append(spoken, t)
		}
	}
	if len(spoken) < minUtterances {
		return &Review{}, nil
	}

	system, err := r.assembler.Guard(prompt.PurposeFeedback, language, prompt.Data{})
	if err != nil {
		return nil, fmt.Errorf("feedback: build prompt: %w", err)
	}

	var b strings.Builder
	for i, u := range spoken {
		fmt.Fprintf(&b, "%d. %s\n", i+1, u)
	}

	resp, err := r.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: system,
		Temperature:  r.temperature,
		MaxTokens:    maxTokens,
		JSONOnly:     true,
		Messages:     []llm.Message{{Role: "user", Content: b.String()}},
	})
	if err != nil {
		return nil, fmt.Errorf("feedback: generate: %w", err)
	}

	parsed, parseErr := llmjson.Decode[llmReview](resp.Content)
	if parseErr != nil {
		return &Review{}, nil
	}

	improvements := make([]Improvement, 0, len(parsed.Improvements))
	for _, imp := range parsed.Improvements {
		if strings.TrimSpace(imp.Original) == "" || strings.TrimSpace(imp.Better) == "" {
			continue
		}
		improvements = append(improvements, imp)
		if len(improvements) == maxImprovements {
			break
		}
	}
	return &Review{Improvements: improvements}, nil
}
