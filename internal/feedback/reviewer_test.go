package feedback_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yogeshsharma140781/Lingoa/internal/feedback"
	"github.com/yogeshsharma140781/Lingoa/internal/prompt"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/llm"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/llm/mock"
)

func newReviewer(p *mock.Provider) *feedback.Reviewer {
	return feedback.NewReviewer(p, prompt.NewAssembler())
}

func TestGenerateReview(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{CompleteResponse: &llm.CompletionResponse{
		Content: `{"improvements":[{"original":"yo gusto paella","better":"me gusta la paella","context":"gustar takes an indirect object"}]}`,
	}}
	review, err := newReviewer(p).Generate(context.Background(),
		[]string{"yo gusto paella", "quiero más"}, "es")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(review.Improvements) != 1 {
		t.Fatalf("improvements = %+v", review.Improvements)
	}
	if review.Improvements[0].Better != "me gusta la paella" {
		t.Errorf("better = %q", review.Improvements[0].Better)
	}

	if len(p.CompleteCalls) != 1 {
		t.Fatalf("complete calls = %d", len(p.CompleteCalls))
	}
	req := p.CompleteCalls[0].Req
	if !req.JSONOnly {
		t.Error("review request must ask for JSON only")
	}
	if !strings.Contains(req.Messages[0].Content, "1. yo gusto paella") {
		t.Errorf("utterances not numbered in prompt: %q", req.Messages[0].Content)
	}
}

func TestGenerateTooFewUtterancesSkipsLLM(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{}
	review, err := newReviewer(p).Generate(context.Background(), []string{"hola", "  "}, "es")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(review.Improvements) != 0 {
		t.Errorf("improvements = %+v, want none", review.Improvements)
	}
	if len(p.CompleteCalls) != 0 {
		t.Error("LLM called for a near-empty session")
	}
}

func TestGenerateUnparseableDegradesToEmpty(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{CompleteResponse: &llm.CompletionResponse{Content: "sorry, no JSON today"}}
	review, err := newReviewer(p).Generate(context.Background(),
		[]string{"uno", "dos", "tres"}, "es")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(review.Improvements) != 0 {
		t.Errorf("improvements = %+v, want none", review.Improvements)
	}
}

func TestGenerateCapsImprovements(t *testing.T) {
	t.Parallel()

	var entries []string
	for range 8 {
		entries = append(entries, `{"original":"a","better":"b","context":"c"}`)
	}
	p := &mock.Provider{CompleteResponse: &llm.CompletionResponse{
		Content: `{"improvements":[` + strings.Join(entries, ",") + `]}`,
	}}
	review, err := newReviewer(p).Generate(context.Background(),
		[]string{"uno", "dos", "tres"}, "es")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(review.Improvements) != 5 {
		t.Errorf("improvements = %d, want capped at 5", len(review.Improvements))
	}
}

func TestGenerateTransportErrorSurfaces(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{CompleteErr: errors.New("upstream down")}
	if _, err := newReviewer(p).Generate(context.Background(),
		[]string{"uno", "dos"}, "es"); err == nil {
		t.Error("transport error swallowed")
	}
}
