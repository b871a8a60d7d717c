// Package elevenlabs provides an ElevenLabs-backed TTS provider using the
// multilingual streaming REST API. It implements tts.Provider and
// tts.StreamingProvider.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/yogeshsharma140781/Lingoa/pkg/provider/tts"
)

const (
	speakEndpointFmt = "https://api.elevenlabs.io/v1/text-to-speech/%s/stream"
	defaultModel     = "eleven_multilingual_v2"

	// defaultVoiceID is "Rachel", a clear female voice that handles all the
	// supported languages under the multilingual model.
	defaultVoiceID = "21m00Tcm4TlvDq8ikWAM"
)

// Compile-time assertions.
var (
	_ tts.Provider          = (*Provider)(nil)
	_ tts.StreamingProvider = (*Provider)(nil)
)

// Option is a functional option for configuring the ElevenLabs Provider.
type Option func(*Provider)

// WithModel sets the ElevenLabs model ID (e.g., "eleven_multilingual_v2").
func WithModel(model string) Option {
	return func(p *Provider) {
		p.model = model
	}
}

// WithVoice sets the default voice ID used when a request does not carry one.
func WithVoice(voiceID string) Option {
	return func(p *Provider) {
		p.voiceID = voiceID
	}
}

// WithBaseURL overrides the API base URL format. Intended for tests; the
// value must contain a single %s placeholder for the voice ID.
func WithBaseURL(urlFmt string) Option {
	return func(p *Provider) {
		p.endpointFmt = urlFmt
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.httpClient.Timeout = d
	}
}

// Provider implements tts.Provider backed by the ElevenLabs REST API.
type Provider struct {
	apiKey      string
	model       string
	voiceID     string
	endpointFmt string
	httpClient  *http.Client
}

// New creates a new ElevenLabs Provider. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("elevenlabs: apiKey must not be empty")
	}
	p := &Provider{
		apiKey:      apiKey,
		model:       defaultModel,
		voiceID:     defaultVoiceID,
		endpointFmt: speakEndpointFmt,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// voiceSettings mirrors the ElevenLabs voice_settings object.
type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// speakPayload is the JSON body for the text-to-speech endpoint.
type speakPayload struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// settingsFor returns voice settings tuned per language. Hindi gets a lower
// stability so the multilingual model keeps a casual, animated delivery.
func settingsFor(language string) voiceSettings {
	if language == "hi" {
		return voiceSettings{
			Stability:       0.30,
			SimilarityBoost: 0.70,
			Style:           0.30,
			UseSpeakerBoost: true,
		}
	}
	return voiceSettings{
		Stability:       0.35,
		SimilarityBoost: 0.75,
		Style:           0.25,
		UseSpeakerBoost: true,
	}
}

// Speak implements tts.Provider. It returns the complete MP3 clip.
func (p *Provider) Speak(ctx context.Context, req tts.Request) ([]byte, error) {
	resp, err := p.do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: read audio: %w", err)
	}
	return audio, nil
}

// SpeakStream implements tts.StreamingProvider. Encoded MP3 fragments are
// emitted as they arrive from the API.
func (p *Provider) SpeakStream(ctx context.Context, req tts.Request) (<-chan []byte, error) {
	resp, err := p.do(ctx, req)
	if err != nil {
		return nil, err
	}

	audioCh := make(chan []byte, 16)
	go func() {
		defer close(audioCh)
		defer resp.Body.Close()

		buf := make([]byte, 4096)
		for {
			n, err := resp.Body.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				select {
				case audioCh <- chunk:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()
	return audioCh, nil
}

// do issues the synthesis request and returns the response with a verified
// 200 status. The caller owns the body.
func (p *Provider) do(ctx context.Context, req tts.Request) (*http.Response, error) {
	if req.Text == "" {
		return nil, errors.New("elevenlabs: text must not be empty")
	}

	voice := req.Voice
	if voice == "" {
		voice = p.voiceID
	}

	payload := speakPayload{
		Text:          req.Text,
		ModelID:       p.model,
		VoiceSettings: settingsFor(req.Language),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: marshal payload: %w", err)
	}

	endpoint := fmt.Sprintf(p.endpointFmt, voice)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: create request: %w", err)
	}
	httpReq.Header.Set("xi-api-key", p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/mpeg")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: http request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("elevenlabs: server returned HTTP %d", resp.StatusCode)
	}
	return resp, nil
}
