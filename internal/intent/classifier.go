// Package intent decides what the learner is doing with an utterance: plain
// conversation, or asking for a translation. It also recovers the intended
// utterance when the transcript came through garbled.
//
// Cheap lexical markers gate everything: an utterance without a marker is
// conversation and never pays an LLM round trip. A marker hit goes to the
// model for confirmation and fragment extraction, with the regex extraction
// as the fallback when the model is down or talks past the JSON contract.
// Any failure in this package degrades to conversation: misclassifying a
// translation request costs one awkward exchange, blocking the turn costs
// the whole conversation.
package intent

import (
	"context"
	"regexp"
	"strings"

	"github.com/yogeshsharma140781/Lingoa/internal/llmjson"
	"github.com/yogeshsharma140781/Lingoa/internal/prompt"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/llm"
)

// Intent is the classification outcome.
type Intent string

const (
	// Conversation is regular practice speech, mistakes included.
	Conversation Intent = "conversation"
	// TranslationRequest asks how to say something or what something means.
	TranslationRequest Intent = "translation_request"
)

// Result pairs an [Intent] with the extracted phrase for translation
// requests.
type Result struct {
	// Intent is the classification.
	Intent Intent
	// Fragment is the phrase to translate when Intent is
	// [TranslationRequest], empty otherwise.
	Fragment string
	// ViaHeuristic reports whether lexical markers decided without an LLM
	// call.
	ViaHeuristic bool
}

// translationMarkers are lexical patterns that decide a translation request
// without an LLM round trip. Each has an extractor that pulls the fragment
// out of the utterance.
var translationMarkers = []struct {
	re *regexp.Regexp
	// fragmentGroup is the capture group holding the phrase, 0 when the
	// marker carries no fragment.
	fragmentGroup int
}{
	{regexp.MustCompile(`(?i)how\s+(?:do|would|can|could)\s+(?:you|i|we)\s+say\s+(.+)`), 1},
	{regexp.MustCompile(`(?i)how\s+to\s+say\s+(.+)`), 1},
	{regexp.MustCompile(`(?i)what\s+does\s+(.+?)\s+mean`), 1},
	{regexp.MustCompile(`(?i)what\s+is\s+(.+?)\s+in\s+\p{L}+\s*\??$`), 1},
	{regexp.MustCompile(`(?i)^(?:can|could)\s+you\s+translate\s+(.+)`), 1},
	{regexp.MustCompile(`(?i)^translate\s+(.+)`), 1},
}

// trailingLanguageRe trims "... in Spanish?" style suffixes off an extracted
// fragment.
var trailingLanguageRe = regexp.MustCompile(`(?i)\s+in\s+\p{L}+\s*\??$`)

// Option is a functional option for [NewClassifier].
type Option func(*Classifier)

// WithTemperature sets the LLM sampling temperature. Default: 0.1.
func WithTemperature(temp float64) Option {
	return func(c *Classifier) { c.temperature = temp }
}

// Classifier decides the intent of learner utterances. Safe for concurrent
// use.
type Classifier struct {
	llm         llm.Provider
	assembler   *prompt.Assembler
	temperature float64
}

// NewClassifier creates a [Classifier] backed by the given LLM provider.
func NewClassifier(provider llm.Provider, assembler *prompt.Assembler, opts ...Option) *Classifier {
	c := &Classifier{
		llm:         provider,
		assembler:   assembler,
		temperature: 0.1,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// llmIntent is the JSON shape the intent prompt requests.
type llmIntent struct {
	Intent   string `json:"intent"`
	Fragment string `json:"fragment"`
}

// Classify returns the intent of text in a conversation targeting language.
//
// Utterances without a lexical wrapper marker are conversation outright; no
// LLM call happens for them. A marker hit is confirmed by the model, which
// also extracts the bare phrase to translate. When the model is unreachable
// or its answer does not resolve, the regex extraction decides instead. A
// request that carries no extractable phrase is conversation: there is
// nothing to translate.
func (c *Classifier) Classify(ctx context.Context, text, language string) (*Result, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return &Result{Intent: Conversation, ViaHeuristic: true}, nil
	}

	fragment, matched := matchMarkers(trimmed)
	if !matched {
		return &Result{Intent: Conversation, ViaHeuristic: true}, nil
	}

	if res := c.extract(ctx, trimmed, language); res != nil {
		return res, nil
	}

	if fragment == "" {
		return &Result{Intent: Conversation, ViaHeuristic: true}, nil
	}
	return &Result{Intent: TranslationRequest, Fragment: fragment, ViaHeuristic: true}, nil
}

// extract asks the model to confirm the request and pull out the phrase to
// translate. A nil return means the answer was inconclusive and the caller
// should fall back to the regex extraction.
func (c *Classifier) extract(ctx context.Context, text, language string) *Result {
	system, err := c.assembler.Guard(prompt.PurposeIntent, language, prompt.Data{Transcript: text})
	if err != nil {
		return nil
	}

	resp, err := c.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: system,
		Temperature:  c.temperature,
		JSONOnly:     true,
		Messages:     []llm.Message{{Role: "user", Content: text}},
	})
	if err != nil {
		return nil
	}

	parsed, parseErr := llmjson.Decode[llmIntent](resp.Content)
	if parseErr != nil {
		return nil
	}
	switch parsed.Intent {
	case string(TranslationRequest):
		fragment := cleanFragment(parsed.Fragment)
		if fragment == "" {
			// Confirmed shape, empty payload: nothing to translate.
			return &Result{Intent: Conversation}
		}
		return &Result{Intent: TranslationRequest, Fragment: fragment}
	case string(Conversation):
		return &Result{Intent: Conversation}
	default:
		return nil
	}
}

// IsTranslationWrapper reports whether text matches one of the lexical
// translation-request patterns. The transcript guards use it to keep
// wrong-language rejection from swallowing explicit questions about the
// target language, which are asked in the learner's own language by nature.
func IsTranslationWrapper(text string) bool {
	_, ok := matchMarkers(strings.TrimSpace(text))
	return ok
}

// matchMarkers tests the lexical patterns and extracts the fragment.
func matchMarkers(text string) (string, bool) {
	// A quoted phrase next to a marker word is the strongest signal.
	if frag, ok := quotedFragment(text); ok {
		lower := strings.ToLower(text)
		for _, marker := range []string{"say", "mean", "translate"} {
			if strings.Contains(lower, marker) {
				return frag, true
			}
		}
	}

	for _, m := range translationMarkers {
		groups := m.re.FindStringSubmatch(text)
		if groups == nil {
			continue
		}
		fragment := ""
		if m.fragmentGroup > 0 && m.fragmentGroup < len(groups) {
			fragment = cleanFragment(groups[m.fragmentGroup])
		}
		return fragment, true
	}
	return "", false
}

// quotedFragment extracts the first single- or double-quoted span.
func quotedFragment(text string) (string, bool) {
	for _, q := range []string{`"`, `'`, "‘", "“"} {
		start := strings.Index(text, q)
		if start < 0 {
			continue
		}
		closeQ := q
		switch q {
		case "‘":
			closeQ = "’"
		case "“":
			closeQ = "”"
		}
		end := strings.Index(text[start+len(q):], closeQ)
		if end <= 0 {
			continue
		}
		frag := strings.TrimSpace(text[start+len(q) : start+len(q)+end])
		if frag != "" {
			return frag, true
		}
	}
	return "", false
}

// cleanFragment strips quotes, trailing punctuation, and a trailing
// "in <language>" clause.
func cleanFragment(s string) string {
	s = strings.TrimSpace(s)
	s = trailingLanguageRe.ReplaceAllString(s, "")
	s = strings.Trim(s, `"'“”‘’?.!, `)
	return s
}
