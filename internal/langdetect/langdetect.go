// Package langdetect holds the shared language heuristics used across the
// turn pipeline: English detection, garbled-speech detection, and script
// checks. Every other package routes its language sniffing through here so
// the thresholds live in exactly one place.
//
// The heuristics are deliberately cheap. They gate LLM calls, they do not
// replace them: a positive here short-circuits, a negative falls through to
// the model.
package langdetect

import (
	"strings"
	"unicode"
)

const (
	// englishWordRatio is the fraction of tokens that must be common English
	// words before a text is called English. Tuned for precision: Spanish and
	// French share spellings with English ("no", "me", "la") and must not
	// trip the detector on their own.
	englishWordRatio = 0.5

	// minEnglishTokens is the minimum token count before the word-ratio test
	// applies. Shorter inputs are too ambiguous to call.
	minEnglishTokens = 3

	// garbledMinLength is the length below which text is never flagged as
	// garbled. Short fragments ("si", "oui", "हाँ") are legitimate answers.
	garbledMinLength = 6

	// nonLetterRatio is the fraction of non-letter, non-space runes above
	// which text is considered garbled.
	nonLetterRatio = 0.5

	// maxRepeatRun is the longest run of one repeated letter tolerated
	// before the text is considered garbled ("aaaaaah" from a held note).
	maxRepeatRun = 4

	// vowelFreeTokenLen is the token length above which a fully vowel-free
	// Latin token marks the text as garbled ("xkcdqrst").
	vowelFreeTokenLen = 7

	// minSeparatorRuns is the number of stray separator runs (slashes,
	// pipes, underscores) at which text counts as garbled. Recognition
	// engines leak these when they stitch partial hypotheses together.
	minSeparatorRuns = 2
)

// commonEnglishWords are high-frequency English function words that rarely
// appear with these exact spellings in the supported target languages.
// Ambiguous cognates ("no", "me", "la", "a", "son") are deliberately absent.
var commonEnglishWords = map[string]struct{}{
	"the": {}, "and": {}, "you": {}, "that": {}, "was": {}, "for": {},
	"are": {}, "with": {}, "his": {}, "they": {}, "this": {}, "have": {},
	"from": {}, "had": {}, "not": {}, "but": {}, "what": {}, "were": {},
	"when": {}, "your": {}, "can": {}, "there": {}, "how": {}, "will": {},
	"would": {}, "about": {}, "know": {}, "think": {}, "because": {},
	"really": {}, "very": {}, "want": {}, "like": {}, "just": {}, "don't": {},
	"i'm": {}, "it's": {}, "do": {}, "did": {}, "does": {}, "say": {},
	"said": {}, "going": {}, "yes": {}, "okay": {}, "please": {}, "thanks": {},
	"today": {}, "yesterday": {}, "tomorrow": {}, "work": {}, "time": {},
	"good": {}, "people": {}, "something": {}, "things": {},
}

// LooksEnglish reports whether text reads as English prose. It requires an
// ASCII-letter-dominant text and a majority of recognisably English tokens,
// which keeps precision high on Romance-language input that shares spellings
// with English.
func LooksEnglish(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}

	// Any non-Latin script disqualifies immediately.
	for _, r := range trimmed {
		if unicode.IsLetter(r) && !unicode.In(r, unicode.Latin) {
			return false
		}
	}

	tokens := tokenize(trimmed)
	if len(tokens) < minEnglishTokens {
		return false
	}

	matches := 0
	for _, tok := range tokens {
		if _, ok := commonEnglishWords[tok]; ok {
			matches++
		}
	}
	return float64(matches) >= englishWordRatio*float64(len(tokens))
}

// IsGarbled reports whether text looks like transcription noise rather than
// speech: corruption markers, mostly non-letters, long repeated-character
// runs, repeated separator runs, or long vowel-free Latin tokens. Text
// shorter than six characters is never flagged.
func IsGarbled(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len([]rune(trimmed)) < garbledMinLength {
		return false
	}

	// U+FFFD only ever appears when a decode went wrong upstream.
	if strings.ContainsRune(trimmed, '�') {
		return true
	}
	if separatorRuns(trimmed) >= minSeparatorRuns {
		return true
	}

	var letters, others int
	for _, r := range trimmed {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsSpace(r):
			// spaces are neutral
		default:
			others++
		}
	}
	if letters+others > 0 && float64(others) > nonLetterRatio*float64(letters+others) {
		return true
	}

	if longestRepeatRun(trimmed) > maxRepeatRun {
		return true
	}

	for _, tok := range tokenize(trimmed) {
		if len(tok) > vowelFreeTokenLen && isLatinToken(tok) && !containsVowel(tok) {
			return true
		}
	}
	return false
}

// ContainsScript reports whether text contains at least one rune of the
// script expected for the given ISO 639-1 language code. Latin-script
// languages check for Latin letters.
func ContainsScript(text string, lang string) bool {
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		switch lang {
		case "hi":
			if unicode.In(r, unicode.Devanagari) {
				return true
			}
		case "zh":
			if unicode.In(r, unicode.Han) {
				return true
			}
		case "ja":
			if unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han) {
				return true
			}
		case "ko":
			if unicode.In(r, unicode.Hangul) {
				return true
			}
		default:
			if unicode.In(r, unicode.Latin) {
				return true
			}
		}
	}
	return false
}

// DetectMismatch reports whether text plausibly is NOT in the target
// language. For non-Latin targets a missing script is decisive. For Latin
// targets the only reliable cheap signal is text that reads as English when
// the target is not English.
func DetectMismatch(text, target string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}

	switch target {
	case "hi", "zh", "ja", "ko":
		if ContainsScript(trimmed, target) {
			return false
		}
		// No target script at all. English-looking text is a clear mismatch;
		// for Hindi the check fails closed on any scriptless input because
		// romanised output there is almost always a transcription artefact.
		if target == "hi" {
			return true
		}
		return LooksEnglish(trimmed)
	case "en":
		return false
	default:
		return LooksEnglish(trimmed)
	}
}

// ---- helpers ----------------------------------------------------------------

// tokenize lowercases and splits text on non-letter boundaries, keeping
// apostrophes inside tokens ("don't").
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}

// longestRepeatRun returns the length of the longest run of one repeated
// letter rune in text.
func longestRepeatRun(text string) int {
	var prev rune
	run, longest := 0, 0
	for _, r := range text {
		if !unicode.IsLetter(r) {
			prev, run = 0, 0
			continue
		}
		if r == prev {
			run++
		} else {
			run = 1
			prev = r
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// separatorRuns counts maximal runs of stray separator characters in text.
func separatorRuns(text string) int {
	runs := 0
	inRun := false
	for _, r := range text {
		switch r {
		case '/', '\\', '|', '_':
			if !inRun {
				runs++
				inRun = true
			}
		default:
			inRun = false
		}
	}
	return runs
}

// isLatinToken reports whether every rune in tok is a Latin letter or
// apostrophe.
func isLatinToken(tok string) bool {
	for _, r := range tok {
		if r == '\'' {
			continue
		}
		if !unicode.In(r, unicode.Latin) {
			return false
		}
	}
	return true
}

// containsVowel reports whether tok contains a Latin vowel (accented
// variants included).
func containsVowel(tok string) bool {
	return strings.ContainsAny(tok, "aeiouyàáâäèéêëìíîïòóôöùúûüAEIOUY")
}
