package transcribe

import (
	"context"
	"strings"

	"github.com/yogeshsharma140781/Lingoa/internal/intent"
	"github.com/yogeshsharma140781/Lingoa/internal/langdetect"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/stt"
)

// TranscribeHinted transcribes audio with the requested language forced,
// checks that the result is plausibly in that language, and retries once
// with auto-detection when it is not. When both attempts come back in the
// wrong language the result fails closed to an empty transcript: forcing a
// language makes recognisers hallucinate target-language text over speech
// that never was in it, and delivering that hallucination as practice is
// worse than asking the learner to repeat.
//
// Transport errors from the recogniser propagate; only the language check
// degrades silently.
func TranscribeHinted(ctx context.Context, provider stt.Provider, req stt.Request) (*stt.Result, error) {
	result, err := provider.Transcribe(ctx, req)
	if err != nil {
		return nil, err
	}
	if req.Language == "" || PlausibleTranscript(result, req.Language) {
		return result, nil
	}

	retry := req
	retry.Language = ""
	result, err = provider.Transcribe(ctx, retry)
	if err != nil {
		return nil, err
	}
	if PlausibleTranscript(result, req.Language) {
		return result, nil
	}
	return &stt.Result{DetectedLanguage: result.DetectedLanguage}, nil
}

// PlausibleTranscript reports whether a recognition result can be trusted as
// speech in (or about) the given target language. Translation-request
// wrappers pass: asking about the target language happens in the learner's
// own.
func PlausibleTranscript(result *stt.Result, language string) bool {
	text := strings.TrimSpace(result.Text)
	if text == "" {
		return false
	}
	if intent.IsTranslationWrapper(text) {
		return true
	}
	if result.DetectedLanguage != "" && !strings.EqualFold(result.DetectedLanguage, language) {
		return false
	}
	return !langdetect.DetectMismatch(text, language)
}
