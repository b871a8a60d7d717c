package turn

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/yogeshsharma140781/Lingoa/internal/intent"
	"github.com/yogeshsharma140781/Lingoa/internal/observe"
	"github.com/yogeshsharma140781/Lingoa/internal/prompt"
	"github.com/yogeshsharma140781/Lingoa/internal/scenario"
	"github.com/yogeshsharma140781/Lingoa/internal/session"
	"github.com/yogeshsharma140781/Lingoa/internal/translate"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/llm"
)

// run executes the pipeline for one utterance with the session lock held.
//
// Guard stages never kill the turn: a failing validator, classifier,
// inferrer, or translator is logged, counted, and stepped over. Only a
// failure to generate the primary reply produces an error event.
func (e *Engine) run(ctx context.Context, s *session.Session, utterance string, events chan<- Event) {
	start := time.Now()
	lang := s.TargetLanguage
	logger := observe.Logger(ctx).With("session_id", s.ID, "language", lang)

	text := strings.TrimSpace(utterance)

	// Stage 1: transcript validation and repair.
	garbled := false
	if e.validator != nil {
		verdict, err := e.validator.Validate(ctx, text, lang)
		switch {
		case err != nil:
			logger.Warn("transcript validation unavailable", "error", err)
			e.metrics.RecordGuard(ctx, "validation", "degraded")
		case verdict.Garbled:
			garbled = true
			text = verdict.Text
		case !verdict.Valid:
			e.metrics.RecordGuard(ctx, "validation", "rejected")
			e.finishClarification(ctx, s, text, events, start)
			return
		default:
			if verdict.Repaired {
				e.metrics.RecordGuard(ctx, "validation", "repaired")
			}
			text = verdict.Text
		}
	} else if text == "" {
		e.finishClarification(ctx, s, text, events, start)
		return
	}

	// Stage 2: garbled speech recovery. No plausible reading means asking
	// the learner to repeat.
	if garbled {
		recovered, ok := e.recoverGarbled(ctx, s, text, events, logger)
		if !ok {
			e.finishClarification(ctx, s, text, events, start)
			return
		}
		text = recovered
	}

	// Stage 3: pending translation echo. A learner repeating the phrase we
	// just translated is practising, not starting a new topic.
	encouragement := ""
	if s.PendingTranslation != nil {
		if translate.EchoAccepted(text, s.PendingTranslation.Translation) {
			encouragement = scenario.Encouragement(lang)
			logger.Info("translation echo accepted",
				"fragment", s.PendingTranslation.Fragment)
		}
		s.PendingTranslation = nil
	}

	// Stage 4: intent classification. An echo attempt is conversation by
	// definition, so classification only runs otherwise.
	if encouragement == "" && e.classifier != nil {
		res, err := e.classifier.Classify(ctx, text, lang)
		if err != nil {
			logger.Warn("intent classification unavailable", "error", err)
			e.metrics.RecordGuard(ctx, "intent", "degraded")
		} else if res.Intent == intent.TranslationRequest {
			if e.answerTranslation(ctx, s, res.Fragment, events, start, logger) {
				return
			}
			// Translation unavailable: carry on conversing over the raw
			// utterance rather than stalling the turn.
		}
	}

	// Stage 5: the streamed tutor reply.
	reply, ok := e.generateReply(ctx, s, text, events, logger)
	if !ok {
		e.metrics.RecordTurn(ctx, lang, "error", time.Since(start))
		return
	}

	// Stage 6: language and persona enforcement.
	if e.enforcer != nil {
		reply = e.enforcer.Enforce(ctx, reply, lang)
	}

	// Stage 7: delivery framing. An accepted echo earns praise; otherwise a
	// filler occasionally opens the reply so the tutor sounds less instant.
	switch {
	case encouragement != "":
		reply = encouragement + " " + reply
	default:
		if filler := e.maybeFiller(s); filler != "" {
			s.LastFiller = filler
			reply = filler + " " + reply
		}
	}

	s.AppendExchange(text, reply)
	s.SpeakingSeconds += estimateSpeakingSeconds(text)
	if err := e.store.Update(ctx, s); err != nil {
		logger.Warn("session update failed", "error", err)
	}

	emit(ctx, events, Event{Type: EventReplyComplete, Text: reply, Language: lang})
	e.metrics.RecordTurn(ctx, lang, "conversation", time.Since(start))
}

// recoverGarbled asks the inferrer for the intended utterance. The second
// return is false when no usable reading exists.
func (e *Engine) recoverGarbled(ctx context.Context, s *session.Session, garbled string, events chan<- Event, logger *slog.Logger) (string, bool) {
	if e.inferrer == nil {
		return "", false
	}
	inf, err := e.inferrer.Infer(ctx, garbled, s.TargetLanguage, s.Messages)
	if err != nil {
		logger.Warn("garbled speech inference unavailable", "error", err)
		e.metrics.RecordGuard(ctx, "inference", "degraded")
		return "", false
	}
	if inf == nil {
		e.metrics.RecordGuard(ctx, "inference", "unrecovered")
		return "", false
	}
	e.metrics.RecordGuard(ctx, "inference", "recovered")
	if inf.ShowHint {
		emit(ctx, events, Event{Type: EventYouMeant, Text: inf.Utterance})
	}
	return inf.Utterance, true
}

// answerTranslation runs the translation side channel. Returns true when the
// turn ended with a translation event; false means the caller should fall
// back to conversation.
func (e *Engine) answerTranslation(ctx context.Context, s *session.Session, fragment string, events chan<- Event, start time.Time, logger *slog.Logger) bool {
	if e.translator == nil {
		return false
	}
	tr, err := e.translator.Translate(ctx, fragment, s.TargetLanguage)
	if err != nil {
		logger.Warn("translation unavailable", "error", err)
		e.metrics.RecordGuard(ctx, "translation", "degraded")
		return false
	}
	if tr == nil {
		e.metrics.RecordGuard(ctx, "translation", "empty")
		return false
	}

	// The same language guard that covers replies covers translations: a
	// model that answered with English framing gets one rewrite chance.
	answer := tr.Text
	if e.enforcer != nil {
		answer = e.enforcer.Enforce(ctx, answer, s.TargetLanguage)
	}

	// A translation is a side channel. It sets up the echo check for the
	// next turn but never enters the conversation history.
	s.PendingTranslation = &session.PendingTranslation{
		Fragment:    fragment,
		Translation: answer,
		IssuedAt:    time.Now().UTC(),
	}
	if err := e.store.Update(ctx, s); err != nil {
		logger.Warn("session update failed", "error", err)
	}

	emit(ctx, events, Event{
		Type:    EventTranslation,
		Text:    answer,
		Literal: tr.Literal,
		Note:    tr.Note,
	})
	e.metrics.RecordTurn(ctx, s.TargetLanguage, "translation", time.Since(start))
	return true
}

// generateReply streams the conversation completion, emitting sentence
// fragments along the way. The second return is false when the primary reply
// could not be produced, after an error event was emitted.
func (e *Engine) generateReply(ctx context.Context, s *session.Session, utterance string, events chan<- Event, logger *slog.Logger) (string, bool) {
	system, window, err := e.assembler.Conversation(prompt.ConversationParams{
		Language: s.TargetLanguage,
		Level:    s.LearnerLevel,
		Topic:    s.Topic,
		Scenario: s.Scenario,
	}, s.Messages)
	if err != nil {
		logger.Error("conversation prompt failed", "error", err)
		emit(ctx, events, Event{Type: EventError, Message: "reply generation failed"})
		return "", false
	}

	chunks, err := e.chat.StreamCompletion(ctx, llm.CompletionRequest{
		SystemPrompt: system,
		Temperature:  replyTemperature,
		MaxTokens:    replyMaxTokens,
		Messages:     append(window, llm.Message{Role: "user", Content: utterance}),
	})
	if err != nil {
		logger.Error("reply stream failed to start", "error", err)
		emit(ctx, events, Event{Type: EventError, Message: "reply generation failed"})
		return "", false
	}

	reply, streamErr := streamReply(ctx, chunks, events)
	if reply == "" {
		if streamErr != nil {
			logger.Error("reply stream failed", "error", streamErr)
		}
		emit(ctx, events, Event{Type: EventError, Message: "reply generation failed"})
		return "", false
	}
	if streamErr != nil {
		// Partial reply beats no reply; deliver what arrived.
		logger.Warn("reply stream ended early", "error", streamErr)
	}
	return reply, true
}

// finishClarification ends the turn by asking the learner to repeat, in the
// target language. The clarification enters the session history like any
// other reply so the model knows its question is still standing.
func (e *Engine) finishClarification(ctx context.Context, s *session.Session, utterance string, events chan<- Event, start time.Time) {
	ask := scenario.Clarification(s.TargetLanguage)
	if trimmed := strings.TrimSpace(utterance); trimmed != "" {
		s.AppendExchange(trimmed, ask)
	} else {
		// Nothing usable was heard; only the tutor side is worth recording.
		s.Messages = append(s.Messages, llm.Message{Role: "assistant", Content: ask})
		s.UpdatedAt = time.Now().UTC()
	}
	if err := e.store.Update(ctx, s); err != nil {
		observe.Logger(ctx).Warn("session update failed", "error", err, "session_id", s.ID)
	}
	emit(ctx, events, Event{Type: EventClarification, Text: ask})
	e.metrics.RecordTurn(ctx, s.TargetLanguage, "clarification", time.Since(start))
}
