// Package translate answers "how do you say" questions mid-conversation and
// recognises the learner's attempt to echo the answer back. Translation is a
// side channel: it must never block or kill the main conversation, so every
// failure path degrades to "no translation" rather than an error the turn
// would have to surface.
package translate

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/yogeshsharma140781/Lingoa/internal/llmjson"
	"github.com/yogeshsharma140781/Lingoa/internal/prompt"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/llm"
)

// echoSimilarityFloor is the Jaro-Winkler similarity at which a learner
// utterance counts as an attempt to say a pending translation. Tuned low:
// learner pronunciation comes back mangled by speech recognition, and
// rejecting a genuine attempt is worse than accepting a near miss.
const echoSimilarityFloor = 0.72

// Translation is the answer to a translation request.
type Translation struct {
	// Text is the natural translation in the target language.
	Text string
	// Literal is an optional word-for-word gloss.
	Literal string
	// Note is an optional one-sentence usage note.
	Note string
}

// Option is a functional option for [NewTranslator].
type Option func(*Translator)

// WithTemperature sets the LLM sampling temperature. Default: 0.2.
func WithTemperature(temp float64) Option {
	return func(t *Translator) { t.temperature = temp }
}

// Translator turns learner phrases into target-language translations. Safe
// for concurrent use.
type Translator struct {
	llm         llm.Provider
	assembler   *prompt.Assembler
	temperature float64
}

// NewTranslator creates a [Translator] backed by the given LLM provider.
func NewTranslator(provider llm.Provider, assembler *prompt.Assembler, opts ...Option) *Translator {
	t := &Translator{
		llm:         provider,
		assembler:   assembler,
		temperature: 0.2,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// llmTranslation is the JSON shape the translation prompt requests.
type llmTranslation struct {
	Translation string `json:"translation"`
	Literal     string `json:"literal"`
	Note        string `json:"note"`
}

// Translate renders fragment into the target language.
//
// A nil Translation with a nil error means the model produced nothing
// usable; transport errors surface so the caller can log and degrade.
func (t *Translator) Translate(ctx context.Context, fragment, language string) (*Translation, error) {
	trimmed := strings.TrimSpace(fragment)
	if trimmed == "" {
		return nil, nil
	}

	system, err := t.assembler.Guard(prompt.PurposeTranslation, language, prompt.Data{Transcript: trimmed})
	if err != nil {
		return nil, fmt.Errorf("translate: build prompt: %w", err)
	}

	resp, err := t.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: system,
		Temperature:  t.temperature,
		JSONOnly:     true,
		Messages:     []llm.Message{{Role: "user", Content: trimmed}},
	})
	if err != nil {
		return nil, fmt.Errorf("translate: %w", err)
	}

	parsed, parseErr := llmjson.Decode[llmTranslation](resp.Content)
	if parseErr != nil {
		return nil, nil
	}
	text := stripWrapper(parsed.Translation)
	if text == "" {
		return nil, nil
	}

	return &Translation{
		Text:    text,
		Literal: strings.TrimSpace(parsed.Literal),
		Note:    strings.TrimSpace(parsed.Note),
	}, nil
}

// wrapperEchoes match request framing the model sometimes copies into the
// translation field: a leading "you say" / "how do you say", or a trailing
// English "in <language>" clause. The language list is closed so genuine
// translations ending in "in <place>" survive.
var wrapperEchoes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?:how\s+(?:do|would|can|could)\s+(?:you|i|we)\s+say|how\s+to\s+say|you\s+(?:can|could|would)\s+say|you\s+say|it(?:'s|\s+is)|that(?:'s|\s+is))[\s:,]+`),
	regexp.MustCompile(`(?i)\s+in\s+(?:spanish|french|german|dutch|italian|portuguese|hindi|mandarin|chinese|japanese|korean|english)\s*[.!?]*$`),
}

// stripWrapper removes echoed request framing and surrounding quotes from a
// model translation, leaving the bare phrase.
func stripWrapper(s string) string {
	out := strings.TrimSpace(s)
	for _, re := range wrapperEchoes {
		out = re.ReplaceAllString(out, "")
	}
	return strings.Trim(strings.TrimSpace(out), `"'“”‘’`)
}

// EchoAccepted reports whether utterance is a plausible attempt to say the
// pending translation. Containment catches attempts padded with extra words;
// Jaro-Winkler catches attempts mangled by speech recognition.
func EchoAccepted(utterance, translation string) bool {
	u := normalise(utterance)
	tr := normalise(translation)
	if u == "" || tr == "" {
		return false
	}
	if strings.Contains(u, tr) || strings.Contains(tr, u) {
		return true
	}
	return matchr.JaroWinkler(u, tr, true) >= echoSimilarityFloor
}

// normalise lowercases and strips punctuation so similarity compares spoken
// content, not transcription formatting.
func normalise(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r == ' ', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r > 127:
			// Keep non-ASCII letters; accents and native scripts carry the
			// content being compared.
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
