// Package turn runs the conversation pipeline for one learner utterance:
// transcript validation, intent classification, translation assist, garbled
// speech recovery, the streamed tutor reply, and final-language enforcement.
// Progress is reported as an ordered stream of [Event] values so transports
// (WebSocket, tests) can forward partial replies as they form.
package turn

// EventType discriminates the events a turn can emit.
type EventType string

const (
	// EventYouMeant tells the client which utterance the pipeline recovered
	// from a garbled transcript.
	EventYouMeant EventType = "you_meant"

	// EventTranslation delivers a translation answer.
	EventTranslation EventType = "translation"

	// EventClarification asks the learner to repeat, in the target language.
	EventClarification EventType = "clarification"

	// EventReplyFragment is a partial tutor reply, emitted per sentence as
	// the model streams.
	EventReplyFragment EventType = "reply_fragment"

	// EventReplyComplete carries the final enforced reply. Always the last
	// event of a successful conversational turn.
	EventReplyComplete EventType = "reply_complete"

	// EventError reports that the primary reply could not be generated.
	// Always terminal.
	EventError EventType = "error"
)

// Event is one pipeline notification. Exactly one terminal event ends every
// turn: reply_complete, translation, clarification, or error.
type Event struct {
	// Type discriminates the payload.
	Type EventType `json:"type"`

	// Text is the event payload: the recovered utterance, the reply
	// fragment, the clarification phrase, the final reply, or the
	// translation itself.
	Text string `json:"text,omitempty"`

	// Language is the session's target language, carried on reply_complete
	// events so clients can route the finalized text without extra lookups.
	Language string `json:"language,omitempty"`

	// Literal is the word-for-word gloss on translation events.
	Literal string `json:"literal,omitempty"`

	// Note is the usage note on translation events.
	Note string `json:"note,omitempty"`

	// Message is the human-readable failure description on error events.
	Message string `json:"message,omitempty"`
}

// Terminal reports whether the event ends the turn.
func (e Event) Terminal() bool {
	switch e.Type {
	case EventReplyComplete, EventTranslation, EventClarification, EventError:
		return true
	default:
		return false
	}
}
