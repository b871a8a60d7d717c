package translate_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/yogeshsharma140781/Lingoa/internal/prompt"
	"github.com/yogeshsharma140781/Lingoa/internal/translate"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/llm"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/llm/mock"
)

// TestTranslate_Full parses all three fields.
func TestTranslate_Full(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{
			Content: `{"translation": "¿Dónde está la estación?", "literal": "where is the station", "note": "Use está for locations."}`,
		},
	}
	tr := translate.NewTranslator(provider, prompt.NewAssembler())

	got, err := tr.Translate(context.Background(), "where is the station", "es")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected a translation")
	}
	if got.Text != "¿Dónde está la estación?" {
		t.Errorf("text = %q", got.Text)
	}
	if got.Literal == "" || got.Note == "" {
		t.Errorf("expected literal and note, got %+v", got)
	}
}

// TestTranslate_StripsEchoedWrapper removes request framing the model
// copied into the translation field.
func TestTranslate_StripsEchoedWrapper(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want string
	}{
		{`you say "muchas gracias" in Spanish`, "muchas gracias"},
		{"How do you say: buenos días", "buenos días"},
		{`It is "merci beaucoup"`, "merci beaucoup"},
		{"dhanyavaad in Hindi.", "dhanyavaad"},
		// An "in <place>" clause is content, not framing.
		{"I live in Madrid", "I live in Madrid"},
	}
	for _, tt := range tests {
		provider := &mock.Provider{
			CompleteResponse: &llm.CompletionResponse{
				Content: `{"translation": ` + strconv.Quote(tt.raw) + `}`,
			},
		}
		tr := translate.NewTranslator(provider, prompt.NewAssembler())

		got, err := tr.Translate(context.Background(), "irrelevant", "es")
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tt.raw, err)
		}
		if got == nil || got.Text != tt.want {
			t.Errorf("%q: got %+v, want text %q", tt.raw, got, tt.want)
		}
	}
}

// TestTranslate_EmptyFragment short-circuits.
func TestTranslate_EmptyFragment(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{}
	tr := translate.NewTranslator(provider, prompt.NewAssembler())

	got, err := tr.Translate(context.Background(), "  ", "es")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
	if len(provider.CompleteCalls) != 0 {
		t.Error("empty fragment should not reach the LLM")
	}
}

// TestTranslate_UnparseableDegrades returns nil, nil.
func TestTranslate_UnparseableDegrades(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "the translation is hola"},
	}
	tr := translate.NewTranslator(provider, prompt.NewAssembler())

	got, err := tr.Translate(context.Background(), "hello", "es")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for unparseable output, got %+v", got)
	}
}

// TestTranslate_TransportError surfaces.
func TestTranslate_TransportError(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{CompleteErr: errors.New("rate limited")}
	tr := translate.NewTranslator(provider, prompt.NewAssembler())

	if _, err := tr.Translate(context.Background(), "hello", "es"); err == nil {
		t.Fatal("expected transport error")
	}
}

// TestEchoAccepted_ExactAndMangled accepts honest attempts.
func TestEchoAccepted_ExactAndMangled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		utterance   string
		translation string
		want        bool
	}{
		{"¿dónde está la estación?", "¿Dónde está la estación?", true},
		// Speech recognition drops accents and mangles endings.
		{"donde esta la estacion", "¿Dónde está la estación?", true},
		// Attempt embedded in extra words.
		{"okay so dónde está la estación right", "dónde está la estación", true},
		// A different sentence entirely.
		{"me gusta el fútbol", "¿Dónde está la estación?", false},
		{"", "hola", false},
		{"hola", "", false},
	}
	for _, tt := range tests {
		if got := translate.EchoAccepted(tt.utterance, tt.translation); got != tt.want {
			t.Errorf("EchoAccepted(%q, %q) = %v, want %v", tt.utterance, tt.translation, got, tt.want)
		}
	}
}

// TestEchoAccepted_NonLatin compares native-script content.
func TestEchoAccepted_NonLatin(t *testing.T) {
	t.Parallel()

	if !translate.EchoAccepted("मुझे खाना पसंद है", "मुझे खाना पसंद है") {
		t.Error("expected Devanagari echo to be accepted")
	}
	if translate.EchoAccepted("मुझे संगीत पसंद है यार सच में", "वह बहुत अलग वाक्य था") {
		t.Error("unrelated Devanagari sentences should not match")
	}
}
