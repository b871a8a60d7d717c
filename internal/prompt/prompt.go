// Package prompt holds every LLM prompt in the pipeline as data: a registry
// of templates keyed by purpose and, optionally, by target language. Language
// variants override the default variant so a single language can carry its
// own register (Hindi uses casual Hindustani) without forking the pipeline.
package prompt

import (
	"fmt"
	"strings"
	"text/template"
)

// Purpose identifies which pipeline stage a prompt serves.
type Purpose string

// The pipeline purposes. Each has a default template; some have per-language
// variants.
const (
	PurposeConversation Purpose = "conversation"
	PurposeValidation   Purpose = "validation"
	PurposeIntent       Purpose = "intent"
	PurposeInference    Purpose = "inference"
	PurposeTranslation  Purpose = "translation"
	PurposeEnforcement  Purpose = "enforcement"
	PurposeFeedback     Purpose = "feedback"
)

// Data carries the substitution values available to every template.
type Data struct {
	// LanguageName is the display name of the target language.
	LanguageName string
	// Level is the learner level: beginner, intermediate, or advanced.
	Level string
	// TopicHint is the scenario guidance sentence injected into conversation
	// prompts. Empty in roleplay mode.
	TopicHint string
	// Scenario is the roleplay scene description given by the learner.
	// Empty in topic mode.
	Scenario string
	// Transcript is the utterance under inspection, for validation and
	// inference prompts.
	Transcript string
	// Reply is the model reply under inspection, for enforcement prompts.
	Reply string
}

type variantKey struct {
	purpose  Purpose
	language string
}

// templateSources is the raw template table. The empty-language entry is the
// default; a (purpose, language) entry overrides it for that language.
var templateSources = map[variantKey]string{
	{PurposeConversation, ""}: `You are a friendly native {{.LanguageName}} speaker having a casual voice conversation with a {{.Level}} learner.
{{if .Scenario}}You are roleplaying this scene: {{.Scenario}}. Stay in character.{{else}}{{.TopicHint}}{{end}}
Rules:
- Speak ONLY in {{.LanguageName}}. Never switch to another language, even partially.
- Write in the native script of {{.LanguageName}}.
- Use short sentences, 10-12 words at most.
- Keep the whole reply under 20 words.
- Ask exactly ONE question, never more.
- Do not start the reply with filler words like "hmm" or "well".
- Match the learner's level: simple common words for a beginner, richer phrasing for advanced.
- React to what they said before asking anything new.`,

	{PurposeConversation, "hi"}: `You are a friendly young Indian woman having a casual Hindi voice chat with a {{.Level}} learner.
{{if .Scenario}}You are roleplaying this scene: {{.Scenario}}. Stay in character.{{else}}{{.TopicHint}}{{end}}
Rules:
- Speak casual everyday Hindustani, the way friends talk. NOT formal shuddh Hindi.
- NEVER use formal words like रोचक, अनुभव, कृपया, वास्तव में, अत्यंत, अवश्य.
- Use emotional particles naturally: यार, ना, है ना.
- Devanagari script only. Never romanised Hindi, never English sentences.
- Very short sentences, 8-10 words at most. Whole reply under 15 words.
- Ask exactly ONE question.
- Do not start the reply with a filler.`,

	{PurposeValidation, ""}: `You validate speech transcripts from a {{.LanguageName}} learning conversation.
The transcript below was produced by automatic speech recognition and may contain recognition errors.
Respond with a single JSON object: {"valid": true or false, "repaired": "<corrected transcript>", "reason": "<short reason>"}.
Mark valid=false only when the text cannot plausibly be what a learner said.
When repairing, keep the learner's intended words and fix only obvious transcription mistakes. Learner grammar mistakes are NOT transcription errors; leave them alone.
Transcript: {{.Transcript}}`,

	{PurposeIntent, ""}: `Classify one learner utterance from a {{.LanguageName}} practice conversation.
Respond with a single JSON object: {"intent": "conversation" or "translation_request", "fragment": "<the phrase the learner wants translated, or empty>"}.
A translation_request asks how to say something in {{.LanguageName}} or what a {{.LanguageName}} phrase means.
Everything else is conversation, including {{.LanguageName}} speech with mistakes and plain English small talk.
Utterance: {{.Transcript}}`,

	{PurposeInference, ""}: `A learner's speech in a {{.LanguageName}} conversation came through garbled.
Using the recent conversation for context, infer the most likely intended utterance.
Respond with a single JSON object: {"inferred": "<the intended utterance>", "confidence": <0.0 to 1.0>}.
If no plausible reading exists, return an empty inferred string with confidence 0.
Garbled transcript: {{.Transcript}}`,

	{PurposeTranslation, ""}: `Translate the learner's phrase into natural spoken {{.LanguageName}}.
Respond with a single JSON object: {"translation": "<the natural translation>", "literal": "<word-for-word gloss or empty>", "note": "<one short usage note or empty>"}.
Prefer the phrasing a native speaker would actually say out loud.
Phrase: {{.Transcript}}`,

	{PurposeEnforcement, ""}: `The reply below must be entirely in {{.LanguageName}}, native script, but part of it drifted into another language.
Rewrite it fully in {{.LanguageName}}, keeping the meaning, tone, and roughly the same length.
Respond with the rewritten reply only, no explanations.
Reply: {{.Reply}}`,

	{PurposeFeedback, ""}: `You are a {{.LanguageName}} teacher reviewing what a learner said during a conversation.
Pick the 3 to 5 utterances that a native speaker would phrase differently.
Respond with a single JSON object: {"improvements": [{"original": "<what they said>", "better": "<natural phrasing>", "context": "<one short explanation>"}]}.
Only include genuine improvements. If everything was natural, return an empty list.`,
}

var templates = func() map[variantKey]*template.Template {
	parsed := make(map[variantKey]*template.Template, len(templateSources))
	for key, src := range templateSources {
		name := string(key.purpose)
		if key.language != "" {
			name += "." + key.language
		}
		parsed[key] = template.Must(template.New(name).Parse(src))
	}
	return parsed
}()

// Render resolves the template for (purpose, language), falling back to the
// default variant, and executes it with data.
func Render(purpose Purpose, language string, data Data) (string, error) {
	tmpl, ok := templates[variantKey{purpose, language}]
	if !ok {
		tmpl, ok = templates[variantKey{purpose, ""}]
	}
	if !ok {
		return "", fmt.Errorf("prompt: no template for purpose %q", purpose)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("prompt: render %s: %w", purpose, err)
	}
	return b.String(), nil
}

// HasVariant reports whether a language-specific variant exists for purpose.
func HasVariant(purpose Purpose, language string) bool {
	_, ok := templates[variantKey{purpose, language}]
	return ok
}
