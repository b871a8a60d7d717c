package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"llm": {"openai", "anthropic", "gemini", "ollama", "mistral", "groq", "deepseek"},
	"stt": {"openai", "whisper"},
	"tts": {"elevenlabs", "openai"},
}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if tls := cfg.Server.TLS; tls != nil {
		if tls.CertFile == "" || tls.KeyFile == "" {
			errs = append(errs, errors.New("server.tls requires both cert_file and key_file"))
		}
	}

	// Providers. The chat model is the one stage the service cannot run
	// without; speech providers are optional for text-only deployments.
	if cfg.Providers.LLM.Name == "" {
		errs = append(errs, errors.New("providers.llm.name is required"))
	}
	validateProviderName("llm", cfg.Providers.LLM.Name)
	for _, entry := range cfg.Providers.LLMFallbacks {
		validateProviderName("llm", entry.Name)
	}
	validateProviderName("stt", cfg.Providers.STT.Name)
	for _, entry := range cfg.Providers.STTFallbacks {
		validateProviderName("stt", entry.Name)
	}
	validateProviderName("tts", cfg.Providers.TTS.Name)
	for _, entry := range cfg.Providers.TTSFallbacks {
		validateProviderName("tts", entry.Name)
	}
	if cfg.Providers.STT.Name == "" {
		slog.Warn("no STT provider configured; audio transcription endpoints will be unavailable")
	}
	if cfg.Providers.TTS.Name == "" {
		slog.Warn("no TTS provider configured; speech synthesis endpoints will be unavailable")
	}

	// Session store
	switch cfg.Session.Backend {
	case "", BackendMemory:
	case BackendRedis:
		if cfg.Session.RedisAddr == "" {
			errs = append(errs, errors.New("session.redis_addr is required when session.backend is redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("session.backend %q is invalid; valid values: memory, redis", cfg.Session.Backend))
	}
	if cfg.Session.TTL < 0 {
		errs = append(errs, fmt.Errorf("session.ttl %s must not be negative", cfg.Session.TTL))
	}

	// Progress store
	switch cfg.Progress.Backend {
	case "", BackendMemory:
	case BackendPostgres:
		if cfg.Progress.PostgresDSN == "" {
			errs = append(errs, errors.New("progress.postgres_dsn is required when progress.backend is postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("progress.backend %q is invalid; valid values: memory, postgres", cfg.Progress.Backend))
	}

	// Tutor
	if fc := cfg.Tutor.FillerChance; fc != nil && (*fc < 0 || *fc > 1) {
		errs = append(errs, fmt.Errorf("tutor.filler_chance %.2f is out of range [0, 1]", *fc))
	}
	if cfg.Tutor.HistoryWindow < 0 {
		errs = append(errs, fmt.Errorf("tutor.history_window %d must not be negative", cfg.Tutor.HistoryWindow))
	}
	if cfg.Tutor.SpeechPrefetch < 0 {
		errs = append(errs, fmt.Errorf("tutor.speech_prefetch %d must not be negative", cfg.Tutor.SpeechPrefetch))
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name — may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
