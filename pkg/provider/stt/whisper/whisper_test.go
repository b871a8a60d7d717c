package whisper

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yogeshsharma140781/Lingoa/pkg/provider/stt"
)

// TestNew_EmptyServerURL ensures the constructor rejects an empty URL.
func TestNew_EmptyServerURL(t *testing.T) {
	t.Parallel()
	_, err := New("")
	if err == nil {
		t.Fatal("expected error for empty serverURL")
	}
}

// TestTranscribe_SendsMultipartAndParsesResponse exercises the happy path
// against a stub whisper-server.
func TestTranscribe_SendsMultipartAndParsesResponse(t *testing.T) {
	t.Parallel()

	var gotLanguage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/inference" {
			t.Errorf("expected path /inference, got %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotLanguage = r.FormValue("language")
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing file field: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"text": "hola amigo", "language": "es"})
	}))
	defer srv.Close()

	p, err := New(srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := p.Transcribe(context.Background(), stt.Request{
		Audio:    []byte{0x01, 0x02, 0x03, 0x04},
		MIMEType: "audio/wav",
		Language: "es",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != "hola amigo" {
		t.Errorf("expected text %q, got %q", "hola amigo", result.Text)
	}
	if result.DetectedLanguage != "es" {
		t.Errorf("expected detected language es, got %q", result.DetectedLanguage)
	}
	if gotLanguage != "es" {
		t.Errorf("expected language field es, got %q", gotLanguage)
	}
}

// TestTranscribe_EmptyAudio ensures empty clips are rejected locally.
func TestTranscribe_EmptyAudio(t *testing.T) {
	t.Parallel()
	p, _ := New("http://localhost:9999")
	_, err := p.Transcribe(context.Background(), stt.Request{})
	if err == nil {
		t.Fatal("expected error for empty audio")
	}
}

// TestTranscribe_ServerError ensures HTTP failures surface as errors.
func TestTranscribe_ServerError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, _ := New(srv.URL)
	_, err := p.Transcribe(context.Background(), stt.Request{Audio: []byte{1, 2}})
	if err == nil {
		t.Fatal("expected error for HTTP 500")
	}
}

// TestTranscribe_FallsBackToProviderLanguage checks the default language option.
func TestTranscribe_FallsBackToProviderLanguage(t *testing.T) {
	t.Parallel()

	var gotLanguage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		gotLanguage = r.FormValue("language")
		json.NewEncoder(w).Encode(map[string]string{"text": "bonjour"})
	}))
	defer srv.Close()

	p, _ := New(srv.URL, WithLanguage("fr"))
	result, err := p.Transcribe(context.Background(), stt.Request{Audio: []byte{1, 2}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLanguage != "fr" {
		t.Errorf("expected fallback language fr, got %q", gotLanguage)
	}
	if result.DetectedLanguage != "fr" {
		t.Errorf("expected detected language fr, got %q", result.DetectedLanguage)
	}
}

// TestEncodeWAV_Header validates the RIFF header fields.
func TestEncodeWAV_Header(t *testing.T) {
	t.Parallel()

	pcm := make([]byte, 320) // 10 ms at 16 kHz mono 16-bit
	wav := encodeWAV(pcm, 16000, 1)

	if len(wav) != 44+len(pcm) {
		t.Fatalf("expected %d bytes, got %d", 44+len(pcm), len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Error("missing RIFF/WAVE markers")
	}
	if rate := binary.LittleEndian.Uint32(wav[24:28]); rate != 16000 {
		t.Errorf("expected sample rate 16000, got %d", rate)
	}
	if size := binary.LittleEndian.Uint32(wav[40:44]); int(size) != len(pcm) {
		t.Errorf("expected data size %d, got %d", len(pcm), size)
	}
}
