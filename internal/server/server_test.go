package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yogeshsharma140781/Lingoa/internal/feedback"
	"github.com/yogeshsharma140781/Lingoa/internal/progress"
	"github.com/yogeshsharma140781/Lingoa/internal/prompt"
	"github.com/yogeshsharma140781/Lingoa/internal/server"
	"github.com/yogeshsharma140781/Lingoa/internal/session"
	"github.com/yogeshsharma140781/Lingoa/internal/turn"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/llm"
	llmmock "github.com/yogeshsharma140781/Lingoa/pkg/provider/llm/mock"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/stt"
	sttmock "github.com/yogeshsharma140781/Lingoa/pkg/provider/stt/mock"
	ttsmock "github.com/yogeshsharma140781/Lingoa/pkg/provider/tts/mock"
)

// fixture bundles the server with the stores and mocks behind it.
type fixture struct {
	server   *server.Server
	engine   *turn.Engine
	store    *session.MemStore
	progress *progress.MemStore
	chat     *llmmock.Provider
	stt      *sttmock.Provider
	tts      *ttsmock.Provider
}

func newFixture(t *testing.T, mutate func(*server.Config)) *fixture {
	t.Helper()

	store := session.NewMemStore()
	t.Cleanup(func() { store.Close() })

	chat := &llmmock.Provider{StreamChunks: []llm.Chunk{
		{Text: "¡Muy bien! ", FinishReason: ""},
		{Text: "¿Y tú?", FinishReason: "stop"},
	}}
	engine, err := turn.NewEngine(turn.Config{Store: store, Chat: chat}, turn.WithFillerChance(0))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	f := &fixture{
		engine:   engine,
		store:    store,
		progress: progress.NewMemStore(),
		chat:     chat,
		stt:      &sttmock.Provider{Result: &stt.Result{Text: "hola", DetectedLanguage: "es"}},
		tts:      &ttsmock.Provider{Audio: []byte("mp3-bytes")},
	}

	cfg := server.Config{
		Engine:   engine,
		Progress: f.progress,
		STT:      f.stt,
		TTS:      f.tts,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	srv, err := server.New(cfg)
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	f.server = srv
	return f
}

func (f *fixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (f *fixture) createSession(t *testing.T) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/sessions", map[string]string{
		"user_id": "learner-1", "language": "es", "mode": "topic", "topic": "food",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session status = %d body = %s", rec.Code, rec.Body)
	}
	var resp struct {
		SessionID string `json:"session_id"`
		Greeting  string `json:"greeting"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.SessionID == "" || resp.Greeting == "" {
		t.Fatalf("response = %+v", resp)
	}
	return resp.SessionID
}

func TestCreateSession(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.createSession(t)
}

func TestCreateSessionRejectsBadLanguage(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodPost, "/api/sessions", map[string]string{
		"user_id": "learner-1", "language": "xx", "mode": "topic",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetSession(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	id := f.createSession(t)

	rec := f.do(t, http.MethodGet, "/api/sessions/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Language  string `json:"language"`
		Completed bool   `json:"completed"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Language != "es" || resp.Completed {
		t.Errorf("response = %+v", resp)
	}

	if rec := f.do(t, http.MethodGet, "/api/sessions/no-such-id", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown session status = %d, want 404", rec.Code)
	}
}

func TestEndSessionReturnsReviewAndRecordsProgress(t *testing.T) {
	t.Parallel()

	reviewLLM := &llmmock.Provider{CompleteResponse: &llm.CompletionResponse{
		Content: `{"improvements":[{"original":"yo gusto","better":"me gusta","context":"gustar"}]}`,
	}}
	f := newFixture(t, func(cfg *server.Config) {
		cfg.Reviewer = feedback.NewReviewer(reviewLLM, prompt.NewAssembler())
	})
	id := f.createSession(t)

	// Give the session some speaking time before ending it.
	sess, err := f.store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	sess.SpeakingSeconds = 120
	sess.UserUtterances = []string{"yo gusto paella", "quiero más"}
	if err := f.store.Update(context.Background(), sess); err != nil {
		t.Fatalf("Update: %v", err)
	}

	rec := f.do(t, http.MethodPost, "/api/sessions/"+id+"/end", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
	}
	var resp struct {
		Session struct {
			Completed bool `json:"completed"`
		} `json:"session"`
		Review *feedback.Review `json:"review"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Session.Completed {
		t.Error("session not completed")
	}
	if resp.Review == nil || len(resp.Review.Improvements) != 1 {
		t.Errorf("review = %+v", resp.Review)
	}

	stored, err := f.progress.ReviewForSession(context.Background(), id)
	if err != nil {
		t.Fatalf("review not persisted: %v", err)
	}
	if stored.Improvements[0].Better != "me gusta" {
		t.Errorf("stored review = %+v", stored)
	}

	rec = f.do(t, http.MethodGet, "/api/users/learner-1/progress", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("progress status = %d", rec.Code)
	}
	var summary progress.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.TodaySeconds != 120 || summary.TodayComplete {
		t.Errorf("summary = %+v", summary)
	}
}

func TestTranscribe(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/transcribe?language=es", strings.NewReader("fake-audio"))
	req.Header.Set("Content-Type", "audio/wav")
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
	}
	var resp struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Text != "hola" {
		t.Errorf("text = %q", resp.Text)
	}
	if len(f.stt.Calls) != 1 || f.stt.Calls[0].Req.Language != "es" {
		t.Errorf("stt calls = %+v", f.stt.Calls)
	}
}

func TestTranscribeWithoutProvider(t *testing.T) {
	t.Parallel()
	f := newFixture(t, func(cfg *server.Config) { cfg.STT = nil })
	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", strings.NewReader("audio"))
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", rec.Code)
	}
}

func TestSpeakUsesLevelSpeed(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/speak", map[string]string{
		"text": "¡Hola!", "language": "es", "level": "beginner",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
	}
	if rec.Body.String() != "mp3-bytes" {
		t.Errorf("body = %q", rec.Body.String())
	}
	if len(f.tts.Calls) != 1 {
		t.Fatalf("tts calls = %d", len(f.tts.Calls))
	}
	if got := f.tts.Calls[0].Req.Speed; got != 0.85 {
		t.Errorf("speed = %v, want 0.85 for beginner", got)
	}
}

func TestSpeakValidation(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	if rec := f.do(t, http.MethodPost, "/api/speak", map[string]string{"language": "es"}); rec.Code != http.StatusBadRequest {
		t.Errorf("empty text status = %d, want 400", rec.Code)
	}
}

func TestHealthRoutes(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	if rec := f.do(t, http.MethodGet, "/health/live", nil); rec.Code != http.StatusOK {
		t.Errorf("live status = %d", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/health/ready", nil); rec.Code != http.StatusOK {
		t.Errorf("ready status = %d", rec.Code)
	}
}
