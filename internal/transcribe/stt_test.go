package transcribe_test

import (
	"context"
	"errors"
	"testing"

	"github.com/yogeshsharma140781/Lingoa/internal/transcribe"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/stt"
	sttmock "github.com/yogeshsharma140781/Lingoa/pkg/provider/stt/mock"
)

// TestTranscribeHinted_MatchingResultPassesThrough makes exactly one call
// when the forced transcription already fits the target language.
func TestTranscribeHinted_MatchingResultPassesThrough(t *testing.T) {
	t.Parallel()

	provider := &sttmock.Provider{Result: &stt.Result{Text: "me gusta la playa", DetectedLanguage: "es"}}

	result, err := transcribe.TranscribeHinted(context.Background(), provider, stt.Request{
		Audio: []byte("pcm"), Language: "es",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != "me gusta la playa" {
		t.Errorf("text = %q", result.Text)
	}
	if len(provider.Calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(provider.Calls))
	}
}

// TestTranscribeHinted_RetriesWithAutoDetect drops the forced language for
// the second attempt and accepts a plausible retry.
func TestTranscribeHinted_RetriesWithAutoDetect(t *testing.T) {
	t.Parallel()

	provider := &sttmock.Provider{}
	provider.TranscribeFunc = func(ctx context.Context, req stt.Request) (*stt.Result, error) {
		if req.Language != "" {
			// Forced decoding hallucinated over English speech.
			return &stt.Result{Text: "I really want to know what you think", DetectedLanguage: "en"}, nil
		}
		return &stt.Result{Text: "quiero pedir la comida", DetectedLanguage: "es"}, nil
	}

	result, err := transcribe.TranscribeHinted(context.Background(), provider, stt.Request{
		Audio: []byte("pcm"), Language: "es",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != "quiero pedir la comida" {
		t.Errorf("text = %q, want the auto-detected retry", result.Text)
	}
	if len(provider.Calls) != 2 || provider.Calls[1].Req.Language != "" {
		t.Fatalf("calls = %+v, want forced then auto-detected", provider.Calls)
	}
}

// TestTranscribeHinted_FailsClosedToEmpty degrades to an empty transcript
// when both attempts come back in the wrong language.
func TestTranscribeHinted_FailsClosedToEmpty(t *testing.T) {
	t.Parallel()

	provider := &sttmock.Provider{
		Result: &stt.Result{Text: "I really want to know what you think", DetectedLanguage: "en"},
	}

	result, err := transcribe.TranscribeHinted(context.Background(), provider, stt.Request{
		Audio: []byte("pcm"), Language: "hi",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != "" {
		t.Errorf("text = %q, want empty transcript", result.Text)
	}
	if len(provider.Calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(provider.Calls))
	}
}

// TestTranscribeHinted_TranslationWrapperAccepted keeps spoken translation
// requests alive even though they are not in the target language.
func TestTranscribeHinted_TranslationWrapperAccepted(t *testing.T) {
	t.Parallel()

	provider := &sttmock.Provider{
		Result: &stt.Result{Text: "how do you say thank you in Hindi?", DetectedLanguage: "en"},
	}

	result, err := transcribe.TranscribeHinted(context.Background(), provider, stt.Request{
		Audio: []byte("pcm"), Language: "hi",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text == "" {
		t.Error("translation request was discarded")
	}
	if len(provider.Calls) != 1 {
		t.Errorf("calls = %d, want 1", len(provider.Calls))
	}
}

// TestTranscribeHinted_TransportErrorPropagates leaves recogniser failures
// to the caller.
func TestTranscribeHinted_TransportErrorPropagates(t *testing.T) {
	t.Parallel()

	provider := &sttmock.Provider{Err: errors.New("upstream down")}

	if _, err := transcribe.TranscribeHinted(context.Background(), provider, stt.Request{
		Audio: []byte("pcm"), Language: "es",
	}); err == nil {
		t.Fatal("expected transport error")
	}
}

// TestPlausibleTranscript covers the acceptance table directly.
func TestPlausibleTranscript(t *testing.T) {
	t.Parallel()

	tests := []struct {
		result   stt.Result
		language string
		want     bool
	}{
		{stt.Result{Text: "me gusta la playa", DetectedLanguage: "es"}, "es", true},
		{stt.Result{Text: "me gusta la playa"}, "es", true},
		{stt.Result{Text: "me gusta la playa", DetectedLanguage: "en"}, "es", false},
		{stt.Result{Text: "I really want to know what you think"}, "es", false},
		{stt.Result{Text: "how do you say good night in Spanish?", DetectedLanguage: "en"}, "es", true},
		{stt.Result{Text: "mujhe khana pasand hai", DetectedLanguage: "hi"}, "hi", false},
		{stt.Result{Text: ""}, "es", false},
	}
	for _, tt := range tests {
		r := tt.result
		if got := transcribe.PlausibleTranscript(&r, tt.language); got != tt.want {
			t.Errorf("PlausibleTranscript(%+v, %q) = %v, want %v", tt.result, tt.language, got, tt.want)
		}
	}
}
