package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/labstack/echo/v4"

	"github.com/yogeshsharma140781/Lingoa/internal/observe"
	"github.com/yogeshsharma140781/Lingoa/internal/session"
	"github.com/yogeshsharma140781/Lingoa/internal/speech"
	"github.com/yogeshsharma140781/Lingoa/internal/transcribe"
	"github.com/yogeshsharma140781/Lingoa/internal/turn"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/stt"
)

// turnTimeout bounds one full turn including speech synthesis.
const turnTimeout = 2 * time.Minute

// clientMessage is what the client sends over the conversation socket.
type clientMessage struct {
	// Type is "utterance" or "end".
	Type string `json:"type"`
	// Text is the transcribed utterance for "utterance" messages.
	Text string `json:"text"`
}

// socketEvent is one server-to-client message. Turn events are forwarded
// as-is; audio metadata frames announce a binary frame that follows.
type socketEvent struct {
	turn.Event
	// PauseMs is the pause after the announced audio chunk, on audio_chunk
	// events.
	PauseMs int `json:"pause_ms,omitempty"`
}

const (
	// eventAudioChunk announces one binary audio frame for a reply chunk.
	eventAudioChunk turn.EventType = "audio_chunk"
	// eventSessionEnded acknowledges an "end" message before the close.
	eventSessionEnded turn.EventType = "session_ended"
)

// conversationSocket runs the WebSocket conversation loop: read an
// utterance, stream the turn's events back, then stream synthesised audio
// for the delivered reply.
func (s *Server) conversationSocket(c echo.Context) error {
	sessionID := c.Param("id")
	ctx := c.Request().Context()

	// Reject unknown sessions before upgrading.
	if _, err := s.engine.Session(ctx, sessionID); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "session not found")
		}
		return err
	}

	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		return nil // Accept already wrote the HTTP error
	}
	defer conn.Close(websocket.StatusInternalError, "connection lost")

	logger := observe.Logger(ctx).With("session_id", sessionID)

	for {
		kind, data, err := conn.Read(ctx)
		if err != nil {
			// Normal closure or dropped client either way.
			return nil
		}

		// Binary frames carry raw audio: transcribe first, then run the
		// turn over the transcript.
		if kind == websocket.MessageBinary {
			text, err := s.transcribeFrame(ctx, sessionID, data)
			if err != nil {
				logger.Warn("socket audio transcription failed", "error", err)
				_ = wsjson.Write(ctx, conn, socketEvent{Event: turn.Event{
					Type:    turn.EventError,
					Message: "transcription failed",
				}})
				continue
			}
			if err := s.handleUtterance(ctx, conn, sessionID, text, logger); err != nil {
				logger.Warn("conversation socket turn failed", "error", err)
				conn.Close(websocket.StatusInternalError, "turn failed")
				return nil
			}
			continue
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = wsjson.Write(ctx, conn, socketEvent{Event: turn.Event{
				Type:    turn.EventError,
				Message: "malformed message",
			}})
			continue
		}

		switch msg.Type {
		case "utterance":
			if err := s.handleUtterance(ctx, conn, sessionID, msg.Text, logger); err != nil {
				logger.Warn("conversation socket turn failed", "error", err)
				conn.Close(websocket.StatusInternalError, "turn failed")
				return nil
			}
		case "end":
			_ = wsjson.Write(ctx, conn, socketEvent{Event: turn.Event{Type: eventSessionEnded}})
			conn.Close(websocket.StatusNormalClosure, "")
			return nil
		default:
			_ = wsjson.Write(ctx, conn, socketEvent{Event: turn.Event{
				Type:    turn.EventError,
				Message: "unknown message type",
			}})
		}
	}
}

// transcribeFrame turns a binary audio frame into an utterance, forcing the
// session's target language. Wrong-language speech comes back as an empty
// utterance, which the engine answers with a clarification.
func (s *Server) transcribeFrame(ctx context.Context, sessionID string, audio []byte) (string, error) {
	if s.stt == nil {
		return "", errors.New("no speech recognition configured")
	}
	sess, err := s.engine.Session(ctx, sessionID)
	if err != nil {
		return "", err
	}
	result, err := transcribe.TranscribeHinted(ctx, s.stt, stt.Request{
		Audio:    audio,
		Language: sess.TargetLanguage,
	})
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// handleUtterance runs one turn and forwards its events, then the audio.
func (s *Server) handleUtterance(ctx context.Context, conn *websocket.Conn, sessionID, text string, logger *slog.Logger) error {
	turnCtx, cancel := context.WithTimeout(ctx, turnTimeout)
	defer cancel()

	events, err := s.engine.ProcessTurn(turnCtx, sessionID, text)
	if err != nil {
		if errors.Is(err, turn.ErrSessionCompleted) || errors.Is(err, session.ErrNotFound) {
			return wsjson.Write(ctx, conn, socketEvent{Event: turn.Event{
				Type:    turn.EventError,
				Message: err.Error(),
			}})
		}
		return err
	}

	var spoken string
	for ev := range events {
		if err := wsjson.Write(ctx, conn, socketEvent{Event: ev}); err != nil {
			// Client gone: drain the turn so the pipeline finishes cleanly.
			for range events {
			}
			return err
		}
		switch ev.Type {
		case turn.EventReplyComplete, turn.EventTranslation, turn.EventClarification:
			spoken = ev.Text
		}
	}

	if spoken == "" || s.synth == nil {
		return nil
	}
	return s.streamAudio(turnCtx, conn, sessionID, spoken, logger)
}

// streamAudio chunks the reply, synthesises it, and interleaves metadata and
// binary frames in chunk order.
func (s *Server) streamAudio(ctx context.Context, conn *websocket.Conn, sessionID, reply string, logger *slog.Logger) error {
	sess, err := s.engine.Session(ctx, sessionID)
	if err != nil {
		return err
	}

	chunks := speech.Split(reply, sess.TargetLanguage)
	audio, wait := s.synth.Synthesize(ctx, chunks, sess.TargetLanguage, sess.LearnerLevel)
	for a := range audio {
		meta := socketEvent{
			Event:   turn.Event{Type: eventAudioChunk, Text: a.Chunk.Text},
			PauseMs: a.Chunk.PauseMs,
		}
		if err := wsjson.Write(ctx, conn, meta); err != nil {
			for range audio {
			}
			_ = wait()
			return err
		}
		if err := conn.Write(ctx, websocket.MessageBinary, a.Data); err != nil {
			for range audio {
			}
			_ = wait()
			return err
		}
	}
	if err := wait(); err != nil {
		// Text already reached the client; missing audio is a degradation,
		// not a failed turn.
		logger.Warn("speech synthesis incomplete", "error", err)
	}
	return nil
}
