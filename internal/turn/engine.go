package turn

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"sync/atomic"
	"time"

	"github.com/yogeshsharma140781/Lingoa/internal/enforce"
	"github.com/yogeshsharma140781/Lingoa/internal/intent"
	"github.com/yogeshsharma140781/Lingoa/internal/observe"
	"github.com/yogeshsharma140781/Lingoa/internal/prompt"
	"github.com/yogeshsharma140781/Lingoa/internal/scenario"
	"github.com/yogeshsharma140781/Lingoa/internal/session"
	"github.com/yogeshsharma140781/Lingoa/internal/transcribe"
	"github.com/yogeshsharma140781/Lingoa/internal/translate"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/llm"
)

const (
	// replyTemperature keeps the conversation lively without derailing the
	// length and language constraints.
	replyTemperature = 0.8

	// replyMaxTokens caps the tutor reply. Replies are under 20 words by
	// prompt; the cap is a backstop against a runaway model.
	replyMaxTokens = 120

	// defaultFillerChance is how often a conversational filler opens the
	// reply.
	defaultFillerChance = 0.25

	// speakingWordsPerSecond estimates learner speaking time from the
	// transcript for practice-streak accounting.
	speakingWordsPerSecond = 2.5
)

// ErrSessionCompleted is returned when a turn arrives for an ended session.
var ErrSessionCompleted = errors.New("session already completed")

// Config carries the engine's dependencies. Store and Chat are required; a
// nil guard disables that stage gracefully.
type Config struct {
	// Store persists sessions. Required.
	Store session.Store
	// Chat is the conversation model, used for the streamed reply. Required.
	Chat llm.Provider
	// Validator checks and repairs transcripts. Optional.
	Validator *transcribe.Validator
	// Classifier detects translation requests. Optional.
	Classifier *intent.Classifier
	// Inferrer recovers garbled transcripts. Optional.
	Inferrer *intent.Inferrer
	// Translator answers translation requests. Optional.
	Translator *translate.Translator
	// Enforcer guards the final reply. Optional.
	Enforcer *enforce.Enforcer
	// Assembler builds prompts and message windows. Defaults to a fresh
	// assembler.
	Assembler *prompt.Assembler
	// Metrics records pipeline telemetry. Defaults to
	// [observe.DefaultMetrics].
	Metrics *observe.Metrics
}

// Option is a functional option for [NewEngine].
type Option func(*Engine)

// WithFillerChance sets the probability that a reply opens with a
// conversational filler. Default: 0.25. Tests pin it to 0 or 1.
func WithFillerChance(p float64) Option {
	return func(e *Engine) { e.SetFillerChance(p) }
}

// Engine runs the turn pipeline. Turns within one session are serialised;
// different sessions run concurrently.
type Engine struct {
	store      session.Store
	locker     *session.Locker
	chat       llm.Provider
	validator  *transcribe.Validator
	classifier *intent.Classifier
	inferrer   *intent.Inferrer
	translator *translate.Translator
	enforcer   *enforce.Enforcer
	assembler  *prompt.Assembler
	metrics    *observe.Metrics

	// fillerBits holds the filler chance as float bits so config reloads
	// can adjust it while turns are running.
	fillerBits atomic.Uint64
}

// SetFillerChance adjusts the filler probability at runtime.
func (e *Engine) SetFillerChance(p float64) {
	e.fillerBits.Store(math.Float64bits(p))
}

func (e *Engine) fillerChance() float64 {
	return math.Float64frombits(e.fillerBits.Load())
}

// NewEngine creates an [Engine] from cfg.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if cfg.Store == nil {
		return nil, errors.New("turn: Store must not be nil")
	}
	if cfg.Chat == nil {
		return nil, errors.New("turn: Chat must not be nil")
	}
	if cfg.Assembler == nil {
		cfg.Assembler = prompt.NewAssembler()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.DefaultMetrics()
	}
	e := &Engine{
		store:      cfg.Store,
		locker:     session.NewLocker(),
		chat:       cfg.Chat,
		validator:  cfg.Validator,
		classifier: cfg.Classifier,
		inferrer:   cfg.Inferrer,
		translator: cfg.Translator,
		enforcer:   cfg.Enforcer,
		assembler:  cfg.Assembler,
		metrics:    cfg.Metrics,
	}
	e.SetFillerChance(defaultFillerChance)
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// StartParams describes a new conversation.
type StartParams struct {
	// UserID identifies the learner. Required.
	UserID string
	// TargetLanguage is the ISO 639-1 code to practise. Required.
	TargetLanguage string
	// Mode is session.ModeTopic or session.ModeRoleplay. Required.
	Mode string
	// Topic is the topic key in topic mode; defaults to "random".
	Topic string
	// Scenario is the scene description in roleplay mode. Required there.
	Scenario string
	// LearnerLevel defaults to beginner.
	LearnerLevel string
}

// StartSession creates a session and returns it together with the opening
// greeting, which is also recorded as the first assistant message.
func (e *Engine) StartSession(ctx context.Context, p StartParams) (*session.Session, string, error) {
	if p.UserID == "" {
		return nil, "", errors.New("turn: UserID must not be empty")
	}
	if !scenario.IsSupported(p.TargetLanguage) {
		return nil, "", fmt.Errorf("turn: unsupported target language %q", p.TargetLanguage)
	}

	var greeting string
	switch p.Mode {
	case session.ModeTopic:
		if p.Topic == "" {
			p.Topic = "random"
		}
		greeting = scenario.Greeting(p.TargetLanguage, p.Topic)
	case session.ModeRoleplay:
		if strings.TrimSpace(p.Scenario) == "" {
			return nil, "", errors.New("turn: roleplay mode needs a scenario")
		}
		greeting = scenario.RoleplayOpener(p.TargetLanguage, p.Scenario)
	default:
		return nil, "", fmt.Errorf("turn: unknown mode %q", p.Mode)
	}

	s := session.New(p.UserID, p.TargetLanguage, p.Mode)
	s.Topic = p.Topic
	s.Scenario = p.Scenario
	if p.LearnerLevel != "" {
		s.LearnerLevel = p.LearnerLevel
	}
	s.Messages = append(s.Messages, llm.Message{Role: "assistant", Content: greeting})

	if err := e.store.Create(ctx, s); err != nil {
		return nil, "", fmt.Errorf("turn: create session: %w", err)
	}
	e.metrics.ActiveSessions.Add(ctx, 1)
	return s, greeting, nil
}

// EndSession marks the session completed and returns its final state.
func (e *Engine) EndSession(ctx context.Context, sessionID string) (*session.Session, error) {
	unlock := e.locker.Lock(sessionID)
	defer unlock()

	s, err := e.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !s.Completed {
		s.Completed = true
		s.UpdatedAt = time.Now().UTC()
		if err := e.store.Update(ctx, s); err != nil {
			return nil, err
		}
		e.metrics.ActiveSessions.Add(ctx, -1)
	}
	return s, nil
}

// Session returns the current session state.
func (e *Engine) Session(ctx context.Context, sessionID string) (*session.Session, error) {
	return e.store.Get(ctx, sessionID)
}

// ProcessTurn runs the pipeline for one utterance and streams events.
//
// The returned channel is closed after the terminal event. Session loading
// errors are returned synchronously; everything after that is reported on
// the stream. Turns for the same session are serialised.
func (e *Engine) ProcessTurn(ctx context.Context, sessionID, utterance string) (<-chan Event, error) {
	s, err := e.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.Completed {
		return nil, ErrSessionCompleted
	}

	events := make(chan Event, 8)
	go func() {
		defer close(events)
		unlock := e.locker.Lock(sessionID)
		defer unlock()

		// Re-read under the lock: a concurrent turn may have advanced the
		// conversation between Get and Lock.
		current, err := e.store.Get(ctx, sessionID)
		if err != nil {
			emit(ctx, events, Event{Type: EventError, Message: "session unavailable"})
			return
		}
		e.run(ctx, current, utterance, events)
	}()
	return events, nil
}

// emit sends ev unless the context is already gone.
func emit(ctx context.Context, events chan<- Event, ev Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// maybeFiller returns a filler to open the reply with, or empty. The last
// filler used in the session is excluded so consecutive replies vary.
func (e *Engine) maybeFiller(s *session.Session) string {
	chance := e.fillerChance()
	if chance <= 0 || rand.Float64() >= chance {
		return ""
	}
	return scenario.Filler(s.TargetLanguage, s.LastFiller)
}

// estimateSpeakingSeconds converts an utterance into approximate speaking
// time.
func estimateSpeakingSeconds(utterance string) float64 {
	words := len(strings.Fields(utterance))
	if words == 0 {
		return 0
	}
	return float64(words) / speakingWordsPerSecond
}
