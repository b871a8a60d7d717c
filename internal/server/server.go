// Package server exposes the tutoring pipeline over HTTP: a REST API for
// session lifecycle, transcription, speech synthesis, and progress, plus a
// WebSocket endpoint streaming turn events as they happen.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yogeshsharma140781/Lingoa/internal/feedback"
	"github.com/yogeshsharma140781/Lingoa/internal/health"
	"github.com/yogeshsharma140781/Lingoa/internal/observe"
	"github.com/yogeshsharma140781/Lingoa/internal/progress"
	"github.com/yogeshsharma140781/Lingoa/internal/speech"
	"github.com/yogeshsharma140781/Lingoa/internal/turn"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/stt"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/tts"
)

// Config carries the server's dependencies. Engine is required; speech
// providers are optional and their endpoints return 501 when absent.
type Config struct {
	// Engine runs the turn pipeline. Required.
	Engine *turn.Engine
	// Reviewer generates end-of-session feedback. Optional.
	Reviewer *feedback.Reviewer
	// Progress persists streaks and reviews. Defaults to an in-memory store.
	Progress progress.Store
	// STT transcribes uploaded audio. Optional.
	STT stt.Provider
	// TTS speaks replies. Optional.
	TTS tts.Provider
	// Synth prefetches chunk audio over TTS. Built from TTS when nil.
	Synth *speech.Synthesizer
	// Metrics records HTTP telemetry. Defaults to [observe.DefaultMetrics].
	Metrics *observe.Metrics
	// Health serves the liveness and readiness routes. Defaults to a
	// checker-less handler.
	Health *health.Handler
}

// Server is the Lingoa HTTP server.
type Server struct {
	echo     *echo.Echo
	engine   *turn.Engine
	reviewer *feedback.Reviewer
	progress progress.Store
	stt      stt.Provider
	tts      tts.Provider
	synth    *speech.Synthesizer
	metrics  *observe.Metrics
}

// New creates a [Server] from cfg and registers all routes.
func New(cfg Config) (*Server, error) {
	if cfg.Engine == nil {
		return nil, errors.New("server: Engine must not be nil")
	}
	if cfg.Progress == nil {
		cfg.Progress = progress.NewMemStore()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.DefaultMetrics()
	}
	if cfg.Health == nil {
		cfg.Health = health.New()
	}
	if cfg.Synth == nil && cfg.TTS != nil {
		cfg.Synth = speech.NewSynthesizer(cfg.TTS)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(observe.Middleware(cfg.Metrics))

	s := &Server{
		echo:     e,
		engine:   cfg.Engine,
		reviewer: cfg.Reviewer,
		progress: cfg.Progress,
		stt:      cfg.STT,
		tts:      cfg.TTS,
		synth:    cfg.Synth,
		metrics:  cfg.Metrics,
	}

	api := e.Group("/api")
	api.POST("/sessions", s.createSession)
	api.GET("/sessions/:id", s.getSession)
	api.POST("/sessions/:id/end", s.endSession)
	api.GET("/users/:id/progress", s.userProgress)
	api.POST("/transcribe", s.transcribe)
	api.POST("/speak", s.speak)

	e.GET("/ws/conversation/:id", s.conversationSocket)

	cfg.Health.Register(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return s, nil
}

// Handler returns the underlying HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.echo }

// Start listens on addr and blocks until the server stops.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// StartTLS listens with TLS on addr and blocks until the server stops.
func (s *Server) StartTLS(addr, certFile, keyFile string) error {
	return s.echo.StartTLS(addr, certFile, keyFile)
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
