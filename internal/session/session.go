// Package session defines the conversation session model and its storage
// backends. A session is the unit of state for one learner/tutor
// conversation: target language, mode, message history, and the bookkeeping
// the turn pipeline needs between utterances.
//
// Storage is behind the [Store] interface so deployments can pick the
// in-memory store for a single node or Redis when sessions must survive a
// restart or be shared across instances. Every implementation must be safe
// for concurrent use.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/yogeshsharma140781/Lingoa/pkg/provider/llm"
)

// Conversation modes.
const (
	ModeTopic    = "topic"
	ModeRoleplay = "roleplay"
)

// Learner levels.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// ErrNotFound is returned when a session ID does not exist in the store.
var ErrNotFound = errors.New("session not found")

// ErrExists is returned when creating a session whose ID is already stored.
var ErrExists = errors.New("session already exists")

// PendingTranslation remembers a translation the tutor just gave, so the next
// learner utterance can be checked against it (an echo of the translation is
// an attempt, not new conversation).
type PendingTranslation struct {
	// Fragment is the phrase the learner asked about.
	Fragment string `json:"fragment"`
	// Translation is the answer the tutor gave.
	Translation string `json:"translation"`
	// IssuedAt is when the translation was delivered.
	IssuedAt time.Time `json:"issued_at"`
}

// Session is the full state of one conversation.
type Session struct {
	// ID is the unique session identifier.
	ID string `json:"id"`
	// UserID identifies the learner.
	UserID string `json:"user_id"`
	// TargetLanguage is the ISO 639-1 code being practised.
	TargetLanguage string `json:"target_language"`
	// Mode is ModeTopic or ModeRoleplay.
	Mode string `json:"mode"`
	// Topic is the topic key in topic mode.
	Topic string `json:"topic,omitempty"`
	// Scenario is the scene description in roleplay mode.
	Scenario string `json:"scenario,omitempty"`
	// LearnerLevel is the declared proficiency.
	LearnerLevel string `json:"learner_level"`
	// Messages is the full conversation history in order. The prompt
	// assembler windows it; the store keeps everything for feedback.
	Messages []llm.Message `json:"messages"`
	// UserUtterances collects what the learner actually said, for the
	// end-of-session feedback pass.
	UserUtterances []string `json:"user_utterances"`
	// PendingTranslation is set while a translation answer awaits the
	// learner's attempt, nil otherwise.
	PendingTranslation *PendingTranslation `json:"pending_translation,omitempty"`
	// LastFiller is the most recent thinking filler played, so consecutive
	// turns avoid repeating it.
	LastFiller string `json:"last_filler,omitempty"`
	// SpeakingSeconds accumulates estimated learner speaking time, used for
	// daily practice streaks.
	SpeakingSeconds float64 `json:"speaking_seconds"`
	// Completed marks a session ended by the learner.
	Completed bool `json:"completed"`
	// CreatedAt is when the session started.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the session last changed.
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates a session with a fresh UUID and timestamps.
func New(userID, targetLanguage, mode string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:             uuid.NewString(),
		UserID:         userID,
		TargetLanguage: targetLanguage,
		Mode:           mode,
		LearnerLevel:   LevelBeginner,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// AppendExchange records one user/assistant exchange and the raw learner
// utterance.
func (s *Session) AppendExchange(userText, assistantText string) {
	s.Messages = append(s.Messages,
		llm.Message{Role: "user", Content: userText},
		llm.Message{Role: "assistant", Content: assistantText},
	)
	s.UserUtterances = append(s.UserUtterances, userText)
	s.UpdatedAt = time.Now().UTC()
}

// Store persists sessions. Get must return [ErrNotFound] for unknown IDs and
// Create must return [ErrExists] for duplicates.
type Store interface {
	// Create stores a new session.
	Create(ctx context.Context, s *Session) error
	// Get returns the session with the given ID.
	Get(ctx context.Context, id string) (*Session, error)
	// Update replaces the stored session.
	Update(ctx context.Context, s *Session) error
	// Delete removes the session. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error
	// Close releases store resources.
	Close() error
}
