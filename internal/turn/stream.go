package turn

import (
	"context"
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yogeshsharma140781/Lingoa/pkg/provider/llm"
)

// errStreamFailed marks a reply stream that died mid-generation.
var errStreamFailed = errors.New("turn: reply stream failed")

// streamReply drains the completion stream, flushing complete sentences as
// reply fragments as soon as they form so downstream speech synthesis can
// start before the model finishes. Returns the full accumulated reply.
func streamReply(ctx context.Context, chunks <-chan llm.Chunk, events chan<- Event) (string, error) {
	var full strings.Builder
	pending := ""

	for {
		select {
		case <-ctx.Done():
			return strings.TrimSpace(full.String()), ctx.Err()
		case chunk, ok := <-chunks:
			if !ok {
				if rest := strings.TrimSpace(pending); rest != "" {
					emit(ctx, events, Event{Type: EventReplyFragment, Text: rest})
				}
				return strings.TrimSpace(full.String()), nil
			}
			if chunk.Text != "" {
				full.WriteString(chunk.Text)
				pending += chunk.Text
				for {
					b := sentenceBoundary(pending)
					if b < 0 {
						break
					}
					if sentence := strings.TrimSpace(pending[:b]); sentence != "" {
						if !emit(ctx, events, Event{Type: EventReplyFragment, Text: sentence}) {
							return strings.TrimSpace(full.String()), ctx.Err()
						}
					}
					pending = pending[b:]
				}
			}
			if chunk.FinishReason == "error" {
				return strings.TrimSpace(full.String()), errStreamFailed
			}
		}
	}
}

// sentenceBoundary returns the byte offset just past the first sentence
// terminator that is immediately followed by whitespace, or -1 when no
// complete sentence has accumulated yet. Requiring trailing whitespace keeps
// ellipses and decimals from splitting a sentence early.
func sentenceBoundary(s string) int {
	for i, r := range s {
		if !isSentenceTerminator(r) {
			continue
		}
		next := i + utf8.RuneLen(r)
		if next >= len(s) {
			continue
		}
		if nr, _ := utf8.DecodeRuneInString(s[next:]); unicode.IsSpace(nr) {
			return next
		}
	}
	return -1
}

func isSentenceTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '।', '。', '！', '？':
		return true
	}
	return false
}
