// Package speech turns a finished reply into speakable pieces: prosody-aware
// text chunks with pause hints, and synthesised audio fetched concurrently
// but delivered in order.
//
// Chunk boundaries follow how people pause when they talk, not how text
// wraps: sentence ends get the longest pauses, mid-sentence commas shorter
// ones, and short replies are spoken in one breath.
package speech

import (
	"strings"
	"unicode/utf8"
)

const (
	// singleChunkLimit is the reply length (in runes) under which the whole
	// reply is one chunk with no pause.
	singleChunkLimit = 100

	// clauseSplitLimit is the sentence length (in runes) above which a
	// sentence is split on clause separators.
	clauseSplitLimit = 50

	// clausePauseMs separates clauses inside a sentence.
	clausePauseMs = 150

	// lastClausePauseMs follows the final clause of a long sentence when no
	// sentence terminator decided otherwise.
	lastClausePauseMs = 250
)

// Default terminal pauses in milliseconds.
const (
	questionPauseMs    = 300
	exclamationPauseMs = 200
	ellipsisPauseMs    = 350
	statementPauseMs   = 250
)

// Hindi terminal pauses. Hindi speech rhythm runs slower, with longer
// breaks after questions and the danda.
const (
	hindiQuestionPauseMs  = 500
	hindiStatementPauseMs = 450
	hindiFillerPauseMs    = 400
	hindiDefaultPauseMs   = 350
)

// sentenceTerminators covers Latin, Devanagari, and CJK sentence endings.
var sentenceTerminators = []rune{'.', '!', '?', '।', '。', '！', '？'}

// clauseSeparators covers Latin, Arabic, and CJK commas.
var clauseSeparators = []rune{',', '،', '、'}

// hindiFillers are standalone filler words that get their own relaxed pause.
var hindiFillers = map[string]struct{}{
	"अच्छा": {}, "हम्म": {}, "तो": {}, "मतलब": {}, "अरे": {},
}

// Chunk is one speakable piece of a reply.
type Chunk struct {
	// Text is the piece to synthesise.
	Text string
	// PauseMs is the silence to insert after the piece.
	PauseMs int
}

// Split breaks reply into prosody chunks for the given language.
func Split(reply, language string) []Chunk {
	trimmed := strings.TrimSpace(reply)
	if trimmed == "" {
		return nil
	}
	if utf8.RuneCountInString(trimmed) < singleChunkLimit {
		return []Chunk{{Text: trimmed, PauseMs: 0}}
	}

	var chunks []Chunk
	for _, sentence := range splitKeepingTerminators(trimmed, sentenceTerminators) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		terminal := terminalPause(sentence, language)

		if utf8.RuneCountInString(sentence) <= clauseSplitLimit {
			chunks = append(chunks, Chunk{Text: sentence, PauseMs: terminal})
			continue
		}

		clauses := splitKeepingTerminators(sentence, clauseSeparators)
		for i, clause := range clauses {
			clause = strings.TrimSpace(clause)
			if clause == "" {
				continue
			}
			pause := clausePauseMs
			if i == len(clauses)-1 {
				pause = terminal
				if pause == 0 {
					pause = lastClausePauseMs
				}
			}
			chunks = append(chunks, Chunk{Text: clause, PauseMs: pause})
		}
	}
	return chunks
}

// terminalPause returns the pause after a sentence based on how it ends.
func terminalPause(sentence, language string) int {
	if language == "hi" {
		return hindiTerminalPause(sentence)
	}
	switch {
	case strings.HasSuffix(sentence, "..."):
		return ellipsisPauseMs
	case strings.HasSuffix(sentence, "?") || strings.HasSuffix(sentence, "？"):
		return questionPauseMs
	case strings.HasSuffix(sentence, "!") || strings.HasSuffix(sentence, "！"):
		return exclamationPauseMs
	default:
		return statementPauseMs
	}
}

func hindiTerminalPause(sentence string) int {
	bare := strings.TrimRight(sentence, ".!?।…")
	if _, ok := hindiFillers[strings.TrimSpace(bare)]; ok {
		return hindiFillerPauseMs
	}
	switch {
	case strings.HasSuffix(sentence, "..."):
		return hindiFillerPauseMs
	case strings.HasSuffix(sentence, "?"):
		return hindiQuestionPauseMs
	case strings.HasSuffix(sentence, "।") || strings.HasSuffix(sentence, "."):
		return hindiStatementPauseMs
	default:
		return hindiDefaultPauseMs
	}
}

// splitKeepingTerminators splits s after any rune in seps, keeping the
// separator attached to the preceding piece. An ellipsis stays together.
func splitKeepingTerminators(s string, seps []rune) []string {
	isSep := func(r rune) bool {
		for _, sep := range seps {
			if r == sep {
				return true
			}
		}
		return false
	}

	var parts []string
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		b.WriteRune(runes[i])
		if !isSep(runes[i]) {
			continue
		}
		// Consume a run of terminators ("...", "?!") as one ending.
		for i+1 < len(runes) && isSep(runes[i+1]) {
			i++
			b.WriteRune(runes[i])
		}
		parts = append(parts, b.String())
		b.Reset()
	}
	if b.Len() > 0 {
		parts = append(parts, b.String())
	}
	return parts
}
