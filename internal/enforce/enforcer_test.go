package enforce

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yogeshsharma140781/Lingoa/internal/langdetect"
	"github.com/yogeshsharma140781/Lingoa/internal/prompt"
	"github.com/yogeshsharma140781/Lingoa/internal/scenario"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/llm"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/llm/mock"
)

func newEnforcer(p llm.Provider) *Enforcer {
	return NewEnforcer(p, prompt.NewAssembler())
}

// TestEnforce_CleanReplyPassesThrough makes no LLM call for in-language text.
func TestEnforce_CleanReplyPassesThrough(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{}
	e := newEnforcer(provider)

	in := "¿Qué comiste hoy?"
	if got := e.Enforce(context.Background(), in, "es"); got != in {
		t.Errorf("clean reply changed: %q", got)
	}
	if len(provider.CompleteCalls) != 0 {
		t.Error("clean reply should not trigger a rewrite")
	}
}

// TestEnforce_RefusalReplaced swaps English refusals for a target-language
// clarification.
func TestEnforce_RefusalReplaced(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{}
	e := newEnforcer(provider)

	got := e.Enforce(context.Background(), "Sorry, I didn't understand that.", "es")
	if strings.Contains(strings.ToLower(got), "didn't understand") {
		t.Errorf("refusal reached the learner: %q", got)
	}
	if got == "" {
		t.Error("expected a clarification, got empty reply")
	}
	if langdetect.LooksEnglish(got) {
		t.Errorf("clarification should be in the target language: %q", got)
	}
}

// TestEnforce_DriftRewritten re-asks once and uses the rewrite.
func TestEnforce_DriftRewritten(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "मैं ठीक हूँ, तुम बताओ?"},
	}
	e := newEnforcer(provider)

	got := e.Enforce(context.Background(), "I am doing well, what about you today friend?", "hi")
	if !langdetect.ContainsScript(got, "hi") {
		t.Errorf("expected a Devanagari rewrite, got %q", got)
	}
	if len(provider.CompleteCalls) != 1 {
		t.Errorf("expected exactly one rewrite call, got %d", len(provider.CompleteCalls))
	}
}

// TestEnforce_RewriteFailureKeepsOriginal degrades to the original reply.
func TestEnforce_RewriteFailureKeepsOriginal(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{CompleteErr: errors.New("backend down")}
	e := newEnforcer(provider)

	in := "I am doing well, what about you today friend?"
	if got := e.Enforce(context.Background(), in, "hi"); got != in {
		t.Errorf("expected original reply on rewrite failure, got %q", got)
	}
}

// TestEnforce_RewriteStillDriftedKeepsOriginal rejects a bad rewrite.
func TestEnforce_RewriteStillDriftedKeepsOriginal(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "Still English I am afraid, my friend."},
	}
	e := newEnforcer(provider)

	in := "What did you do today at the market, tell me?"
	if got := e.Enforce(context.Background(), in, "hi"); got != in {
		t.Errorf("expected original reply when rewrite stays off-language, got %q", got)
	}
}

// TestEnforce_PersonaAppliedAfterRewrite runs the persona pass on rewritten
// text too.
func TestEnforce_PersonaAppliedAfterRewrite(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "मैं खाना बनाता हूँ, तुम?"},
	}
	e := newEnforcer(provider)

	got := e.Enforce(context.Background(), "I cook food every day, and you my friend?", "hi")
	if strings.Contains(got, "बनाता हूँ") {
		t.Errorf("persona pass skipped on rewritten reply: %q", got)
	}
	if !strings.Contains(got, "बनाती हूँ") {
		t.Errorf("expected feminine form in %q", got)
	}
}

// TestEnforce_Empty returns empty unchanged.
func TestEnforce_Empty(t *testing.T) {
	t.Parallel()

	e := newEnforcer(&mock.Provider{})
	if got := e.Enforce(context.Background(), "  ", "es"); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

// TestClarificationsNeverTripRefusalCheck keeps the repeat-request phrases
// and the refusal screen from chasing each other: a clarification the
// enforcer itself would flag loops forever.
func TestClarificationsNeverTripRefusalCheck(t *testing.T) {
	t.Parallel()

	for _, lang := range scenario.SupportedLanguages {
		for range 32 {
			if phrase := scenario.Clarification(lang); containsRefusal(phrase) {
				t.Fatalf("clarification %q for %s contains a refusal marker", phrase, lang)
			}
		}
	}
}
