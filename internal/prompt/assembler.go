package prompt

import (
	"github.com/yogeshsharma140781/Lingoa/internal/scenario"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/llm"
)

// defaultWindow is how many recent messages are replayed to the model on each
// turn. Older history is dropped; the system prompt carries the standing
// instructions instead.
const defaultWindow = 10

// Assembler builds the system prompt and message window for each LLM call.
type Assembler struct {
	window int
}

// Option is a functional option for [NewAssembler].
type Option func(*Assembler)

// WithWindow overrides how many recent messages the assembler replays.
// Defaults to 10.
func WithWindow(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.window = n
		}
	}
}

// NewAssembler creates an [Assembler] with the default window.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{window: defaultWindow}
	for _, o := range opts {
		o(a)
	}
	return a
}

// ConversationParams describes the session state the conversation prompt
// depends on.
type ConversationParams struct {
	// Language is the ISO 639-1 target language code.
	Language string
	// Level is the learner level: beginner, intermediate, or advanced.
	Level string
	// Topic is the topic key in topic mode.
	Topic string
	// Scenario is the scene description in roleplay mode. When set it takes
	// precedence over Topic.
	Scenario string
}

// Conversation renders the conversation system prompt for the session and
// trims history to the most recent window.
func (a *Assembler) Conversation(p ConversationParams, history []llm.Message) (string, []llm.Message, error) {
	data := Data{
		LanguageName: scenario.LanguageName(p.Language),
		Level:        p.Level,
		Scenario:     p.Scenario,
	}
	if p.Scenario == "" {
		data.TopicHint = scenario.TopicContext(p.Topic)
	}
	system, err := Render(PurposeConversation, p.Language, data)
	if err != nil {
		return "", nil, err
	}
	return system, a.Window(history), nil
}

// Guard renders an auxiliary-stage prompt (validation, intent, inference,
// translation, enforcement, feedback) for the given language and data.
func (a *Assembler) Guard(purpose Purpose, language string, data Data) (string, error) {
	if data.LanguageName == "" {
		data.LanguageName = scenario.LanguageName(language)
	}
	return Render(purpose, language, data)
}

// Window returns the most recent window-sized slice of history.
func (a *Assembler) Window(history []llm.Message) []llm.Message {
	if len(history) <= a.window {
		return history
	}
	return history[len(history)-a.window:]
}
