// Command lingoa is the main entry point for the Lingoa language tutoring server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/redis/go-redis/v9"

	"github.com/yogeshsharma140781/Lingoa/internal/config"
	"github.com/yogeshsharma140781/Lingoa/internal/enforce"
	"github.com/yogeshsharma140781/Lingoa/internal/feedback"
	"github.com/yogeshsharma140781/Lingoa/internal/health"
	"github.com/yogeshsharma140781/Lingoa/internal/intent"
	"github.com/yogeshsharma140781/Lingoa/internal/observe"
	"github.com/yogeshsharma140781/Lingoa/internal/progress"
	"github.com/yogeshsharma140781/Lingoa/internal/prompt"
	"github.com/yogeshsharma140781/Lingoa/internal/resilience"
	"github.com/yogeshsharma140781/Lingoa/internal/scenario"
	"github.com/yogeshsharma140781/Lingoa/internal/server"
	"github.com/yogeshsharma140781/Lingoa/internal/session"
	"github.com/yogeshsharma140781/Lingoa/internal/speech"
	"github.com/yogeshsharma140781/Lingoa/internal/transcribe"
	"github.com/yogeshsharma140781/Lingoa/internal/translate"
	"github.com/yogeshsharma140781/Lingoa/internal/turn"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/llm"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/llm/anyllm"
	oallm "github.com/yogeshsharma140781/Lingoa/pkg/provider/llm/openai"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/stt"
	oastt "github.com/yogeshsharma140781/Lingoa/pkg/provider/stt/openai"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/stt/whisper"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/tts"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/tts/elevenlabs"
	oatts "github.com/yogeshsharma140781/Lingoa/pkg/provider/tts/openai"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "lingoa: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "lingoa: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logLevel := new(slog.LevelVar)
	logLevel.Set(slogLevel(cfg.Server.LogLevel))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	slog.Info("lingoa starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName: "lingoa",
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(flushCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Scenario overrides ────────────────────────────────────────────────────
	if path := cfg.Tutor.ScenarioOverrides; path != "" {
		if err := scenario.LoadOverrides(path); err != nil {
			slog.Error("failed to load scenario overrides", "path", path, "err", err)
			return 1
		}
		slog.Info("scenario overrides applied", "path", path)
	}

	// ── Provider registry ─────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	// ── Instantiate providers ─────────────────────────────────────────────────
	chat, err := buildLLM(cfg, reg)
	if err != nil {
		slog.Error("failed to build LLM provider", "err", err)
		return 1
	}
	sttProvider, err := buildSTT(cfg, reg)
	if err != nil {
		slog.Error("failed to build STT provider", "err", err)
		return 1
	}
	ttsProvider, err := buildTTS(cfg, reg)
	if err != nil {
		slog.Error("failed to build TTS provider", "err", err)
		return 1
	}

	// ── Stores ────────────────────────────────────────────────────────────────
	var checkers []health.Checker

	sessionStore, sessionChecker, err := buildSessionStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open session store", "err", err)
		return 1
	}
	defer sessionStore.Close()
	if sessionChecker != nil {
		checkers = append(checkers, *sessionChecker)
	}

	progressStore, progressChecker, err := buildProgressStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open progress store", "err", err)
		return 1
	}
	defer progressStore.Close()
	if progressChecker != nil {
		checkers = append(checkers, *progressChecker)
	}

	// ── Turn pipeline ─────────────────────────────────────────────────────────
	var assemblerOpts []prompt.Option
	if cfg.Tutor.HistoryWindow > 0 {
		assemblerOpts = append(assemblerOpts, prompt.WithWindow(cfg.Tutor.HistoryWindow))
	}
	assembler := prompt.NewAssembler(assemblerOpts...)

	var engineOpts []turn.Option
	if cfg.Tutor.FillerChance != nil {
		engineOpts = append(engineOpts, turn.WithFillerChance(*cfg.Tutor.FillerChance))
	}
	engine, err := turn.NewEngine(turn.Config{
		Store:      sessionStore,
		Chat:       chat,
		Validator:  transcribe.NewValidator(chat, assembler),
		Classifier: intent.NewClassifier(chat, assembler),
		Inferrer:   intent.NewInferrer(chat, assembler),
		Translator: translate.NewTranslator(chat, assembler),
		Enforcer:   enforce.NewEnforcer(chat, assembler),
		Assembler:  assembler,
	}, engineOpts...)
	if err != nil {
		slog.Error("failed to build turn engine", "err", err)
		return 1
	}

	var synth *speech.Synthesizer
	if ttsProvider != nil {
		var synthOpts []speech.SynthOption
		if cfg.Tutor.SpeechPrefetch > 0 {
			synthOpts = append(synthOpts, speech.WithPrefetch(cfg.Tutor.SpeechPrefetch))
		}
		synth = speech.NewSynthesizer(ttsProvider, synthOpts...)
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	srv, err := server.New(server.Config{
		Engine:   engine,
		Reviewer: feedback.NewReviewer(chat, assembler),
		Progress: progressStore,
		STT:      sttProvider,
		TTS:      ttsProvider,
		Synth:    synth,
		Health:   health.New(checkers...),
	})
	if err != nil {
		slog.Error("failed to build server", "err", err)
		return 1
	}

	// ── Config hot reload ─────────────────────────────────────────────────────
	watcher, err := config.NewWatcher(*configPath, func(old, next *config.Config) {
		applyReload(config.Diff(old, next), logLevel, engine)
	})
	if err != nil {
		slog.Warn("config hot reload disabled", "err", err)
	} else {
		defer watcher.Stop()
	}

	// ── Serve ─────────────────────────────────────────────────────────────────
	addr := cfg.Server.ListenAddr
	if addr == "" {
		addr = ":8080"
	}
	errCh := make(chan error, 1)
	go func() {
		if tls := cfg.Server.TLS; tls != nil {
			errCh <- srv.StartTLS(addr, tls.CertFile, tls.KeyFile)
		} else {
			errCh <- srv.Start(addr)
		}
	}()

	slog.Info("server ready — press Ctrl+C to shut down", "addr", addr)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			return 1
		}
	case <-ctx.Done():
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	slog.Info("shutdown signal received, stopping…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// applyReload applies the hot-reloadable subset of a config change.
func applyReload(d config.ConfigDiff, logLevel *slog.LevelVar, engine *turn.Engine) {
	if !d.Changed() {
		return
	}
	if d.LogLevelChanged {
		logLevel.Set(slogLevel(d.NewLogLevel))
		slog.Info("log level reloaded", "level", d.NewLogLevel)
	}
	if d.FillerChanceChanged {
		engine.SetFillerChance(d.NewFillerChance)
		slog.Info("filler chance reloaded", "chance", d.NewFillerChance)
	}
}

func slogLevel(l config.LogLevel) slog.Level {
	switch l {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// registerBuiltinProviders wires all built-in provider factories into reg.
// Each factory receives a config.ProviderEntry and constructs the appropriate
// provider from the real implementation packages.
func registerBuiltinProviders(reg *config.Registry) {
	// ── LLM ───────────────────────────────────────────────────────────────────
	// openai talks to the official SDK; the other backends go through any-llm.
	reg.RegisterLLM("openai", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []oallm.Option
		if entry.BaseURL != "" {
			opts = append(opts, oallm.WithBaseURL(entry.BaseURL))
		}
		return oallm.New(entry.APIKey, entry.Model, opts...)
	})

	for _, providerName := range []string{"anthropic", "gemini", "mistral", "groq", "deepseek"} {
		reg.RegisterLLM(providerName, func(entry config.ProviderEntry) (llm.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return anyllm.New(providerName, entry.Model, opts...)
		})
	}

	// ollama is a local server; it uses BaseURL for the address, not an API key.
	reg.RegisterLLM("ollama", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []anyllmlib.Option
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return anyllm.New("ollama", entry.Model, opts...)
	})

	// ── STT ───────────────────────────────────────────────────────────────────
	reg.RegisterSTT("openai", func(entry config.ProviderEntry) (stt.Provider, error) {
		var opts []oastt.Option
		if entry.BaseURL != "" {
			opts = append(opts, oastt.WithBaseURL(entry.BaseURL))
		}
		if entry.Model != "" {
			opts = append(opts, oastt.WithModel(entry.Model))
		}
		return oastt.New(entry.APIKey, opts...)
	})

	reg.RegisterSTT("whisper", func(entry config.ProviderEntry) (stt.Provider, error) {
		var opts []whisper.Option
		if entry.Model != "" {
			opts = append(opts, whisper.WithModel(entry.Model))
		}
		if lang := optString(entry.Options, "language"); lang != "" {
			opts = append(opts, whisper.WithLanguage(lang))
		}
		return whisper.New(entry.BaseURL, opts...)
	})

	// ── TTS ───────────────────────────────────────────────────────────────────
	reg.RegisterTTS("elevenlabs", func(entry config.ProviderEntry) (tts.Provider, error) {
		var opts []elevenlabs.Option
		if entry.Model != "" {
			opts = append(opts, elevenlabs.WithModel(entry.Model))
		}
		if entry.Voice != "" {
			opts = append(opts, elevenlabs.WithVoice(entry.Voice))
		}
		return elevenlabs.New(entry.APIKey, opts...)
	})

	reg.RegisterTTS("openai", func(entry config.ProviderEntry) (tts.Provider, error) {
		var opts []oatts.Option
		if entry.BaseURL != "" {
			opts = append(opts, oatts.WithBaseURL(entry.BaseURL))
		}
		if entry.Model != "" {
			opts = append(opts, oatts.WithModel(entry.Model))
		}
		return oatts.New(entry.APIKey, opts...)
	})
}

// buildLLM instantiates the primary LLM and its fallbacks behind one
// resilience chain. The LLM is the only required provider.
func buildLLM(cfg *config.Config, reg *config.Registry) (llm.Provider, error) {
	entries := make([]resilience.Entry[llm.Provider], 0, 1+len(cfg.Providers.LLMFallbacks))
	for _, entry := range append([]config.ProviderEntry{cfg.Providers.LLM}, cfg.Providers.LLMFallbacks...) {
		p, err := reg.CreateLLM(entry)
		if err != nil {
			return nil, fmt.Errorf("create llm provider %q: %w", entry.Name, err)
		}
		entries = append(entries, resilience.Entry[llm.Provider]{Name: entry.Name, Provider: p})
		slog.Info("provider created", "kind", "llm", "name", entry.Name, "model", entry.Model)
	}
	return resilience.NewLLMChain(resilience.BreakerConfig{}, entries...)
}

// buildSTT instantiates the STT chain, or nil when none is configured.
func buildSTT(cfg *config.Config, reg *config.Registry) (stt.Provider, error) {
	if cfg.Providers.STT.Name == "" {
		slog.Info("no STT provider configured; transcription endpoint disabled")
		return nil, nil
	}
	entries := make([]resilience.Entry[stt.Provider], 0, 1+len(cfg.Providers.STTFallbacks))
	for _, entry := range append([]config.ProviderEntry{cfg.Providers.STT}, cfg.Providers.STTFallbacks...) {
		p, err := reg.CreateSTT(entry)
		if err != nil {
			return nil, fmt.Errorf("create stt provider %q: %w", entry.Name, err)
		}
		entries = append(entries, resilience.Entry[stt.Provider]{Name: entry.Name, Provider: p})
		slog.Info("provider created", "kind", "stt", "name", entry.Name, "model", entry.Model)
	}
	return resilience.NewSTTChain(resilience.BreakerConfig{}, entries...)
}

// buildTTS instantiates the TTS chain, or nil when none is configured.
func buildTTS(cfg *config.Config, reg *config.Registry) (tts.Provider, error) {
	if cfg.Providers.TTS.Name == "" {
		slog.Info("no TTS provider configured; speech endpoints disabled")
		return nil, nil
	}
	entries := make([]resilience.Entry[tts.Provider], 0, 1+len(cfg.Providers.TTSFallbacks))
	for _, entry := range append([]config.ProviderEntry{cfg.Providers.TTS}, cfg.Providers.TTSFallbacks...) {
		p, err := reg.CreateTTS(entry)
		if err != nil {
			return nil, fmt.Errorf("create tts provider %q: %w", entry.Name, err)
		}
		entries = append(entries, resilience.Entry[tts.Provider]{Name: entry.Name, Provider: p})
		slog.Info("provider created", "kind", "tts", "name", entry.Name, "model", entry.Model)
	}
	return resilience.NewTTSChain(resilience.BreakerConfig{}, entries...)
}

// ── Store wiring ──────────────────────────────────────────────────────────────

func buildSessionStore(ctx context.Context, cfg *config.Config) (session.Store, *health.Checker, error) {
	switch cfg.Session.Backend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Session.RedisAddr,
			Password: cfg.Session.RedisPassword,
			DB:       cfg.Session.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		var opts []session.RedisOption
		if cfg.Session.TTL > 0 {
			opts = append(opts, session.WithRedisTTL(cfg.Session.TTL))
		}
		store, err := session.NewRedisStore(client, opts...)
		if err != nil {
			return nil, nil, err
		}
		checker := &health.Checker{
			Name:  "session-store",
			Check: func(ctx context.Context) error { return client.Ping(ctx).Err() },
		}
		slog.Info("session store opened", "backend", "redis", "addr", cfg.Session.RedisAddr)
		return store, checker, nil
	case config.BackendMemory, "":
		var opts []session.MemOption
		if cfg.Session.TTL > 0 {
			opts = append(opts, session.WithTTL(cfg.Session.TTL))
		}
		slog.Info("session store opened", "backend", "memory")
		return session.NewMemStore(opts...), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported session backend %q", cfg.Session.Backend)
	}
}

func buildProgressStore(ctx context.Context, cfg *config.Config) (progress.Store, *health.Checker, error) {
	switch cfg.Progress.Backend {
	case config.BackendPostgres:
		store, err := progress.NewPGStore(ctx, cfg.Progress.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		checker := &health.Checker{Name: "progress-store", Check: store.Ping}
		slog.Info("progress store opened", "backend", "postgres")
		return store, checker, nil
	case config.BackendMemory, "":
		slog.Info("progress store opened", "backend", "memory")
		return progress.NewMemStore(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported progress backend %q", cfg.Progress.Backend)
	}
}

func optString(opts map[string]any, key string) string {
	if opts == nil {
		return ""
	}
	v, ok := opts[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
