package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/yogeshsharma140781/Lingoa/internal/feedback"
	"github.com/yogeshsharma140781/Lingoa/internal/observe"
	"github.com/yogeshsharma140781/Lingoa/internal/session"
	"github.com/yogeshsharma140781/Lingoa/internal/speech"
	"github.com/yogeshsharma140781/Lingoa/internal/transcribe"
	"github.com/yogeshsharma140781/Lingoa/internal/turn"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/stt"
	"github.com/yogeshsharma140781/Lingoa/pkg/provider/tts"
)

// maxAudioUpload caps transcription uploads at 25 MB, the common backend
// limit for a single clip.
const maxAudioUpload = 25 << 20

type createSessionRequest struct {
	UserID   string `json:"user_id"`
	Language string `json:"language"`
	Mode     string `json:"mode"`
	Topic    string `json:"topic"`
	Scenario string `json:"scenario"`
	Level    string `json:"level"`
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
	Greeting  string `json:"greeting"`
	Language  string `json:"language"`
	Mode      string `json:"mode"`
}

func (s *Server) createSession(c echo.Context) error {
	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	sess, greeting, err := s.engine.StartSession(c.Request().Context(), turn.StartParams{
		UserID:         req.UserID,
		TargetLanguage: req.Language,
		Mode:           req.Mode,
		Topic:          req.Topic,
		Scenario:       req.Scenario,
		LearnerLevel:   req.Level,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusCreated, createSessionResponse{
		SessionID: sess.ID,
		Greeting:  greeting,
		Language:  sess.TargetLanguage,
		Mode:      sess.Mode,
	})
}

type sessionResponse struct {
	SessionID       string    `json:"session_id"`
	UserID          string    `json:"user_id"`
	Language        string    `json:"language"`
	Mode            string    `json:"mode"`
	Topic           string    `json:"topic,omitempty"`
	Scenario        string    `json:"scenario,omitempty"`
	Level           string    `json:"level"`
	Turns           int       `json:"turns"`
	SpeakingSeconds float64   `json:"speaking_seconds"`
	Completed       bool      `json:"completed"`
	CreatedAt       time.Time `json:"created_at"`
}

func sessionView(sess *session.Session) sessionResponse {
	return sessionResponse{
		SessionID:       sess.ID,
		UserID:          sess.UserID,
		Language:        sess.TargetLanguage,
		Mode:            sess.Mode,
		Topic:           sess.Topic,
		Scenario:        sess.Scenario,
		Level:           sess.LearnerLevel,
		Turns:           len(sess.UserUtterances),
		SpeakingSeconds: sess.SpeakingSeconds,
		Completed:       sess.Completed,
		CreatedAt:       sess.CreatedAt,
	}
}

func (s *Server) getSession(c echo.Context) error {
	sess, err := s.engine.Session(c.Request().Context(), c.Param("id"))
	if errors.Is(err, session.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionView(sess))
}

type endSessionResponse struct {
	Session sessionResponse  `json:"session"`
	Review  *feedback.Review `json:"review,omitempty"`
}

// endSession completes the session, records practice time, and returns the
// language review. A failed review is logged and omitted; ending a session
// must not fail because feedback was unavailable.
func (s *Server) endSession(c echo.Context) error {
	ctx := c.Request().Context()

	sess, err := s.engine.EndSession(ctx, c.Param("id"))
	if errors.Is(err, session.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	if err != nil {
		return err
	}

	if err := s.progress.RecordPractice(ctx, sess.UserID, time.Now(), sess.SpeakingSeconds); err != nil {
		observe.Logger(ctx).Warn("practice recording failed", "session_id", sess.ID, "error", err)
	}

	var review *feedback.Review
	if s.reviewer != nil {
		review, err = s.reviewer.Generate(ctx, sess.UserUtterances, sess.TargetLanguage)
		if err != nil {
			observe.Logger(ctx).Warn("session review failed", "session_id", sess.ID, "error", err)
			review = nil
		} else if err := s.progress.RecordReview(ctx, sess.UserID, sess.ID, review); err != nil {
			observe.Logger(ctx).Warn("review recording failed", "session_id", sess.ID, "error", err)
		}
	}

	return c.JSON(http.StatusOK, endSessionResponse{
		Session: sessionView(sess),
		Review:  review,
	})
}

func (s *Server) userProgress(c echo.Context) error {
	summary, err := s.progress.Summary(c.Request().Context(), c.Param("id"), time.Now())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

type transcribeResponse struct {
	Text             string `json:"text"`
	DetectedLanguage string `json:"detected_language,omitempty"`
}

// transcribe accepts a multipart "audio" file (or a raw body) plus an
// optional forced language and returns the transcript.
func (s *Server) transcribe(c echo.Context) error {
	if s.stt == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "no speech recognition configured")
	}

	audio, mimeType, err := readAudio(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(audio) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "empty audio")
	}

	result, err := transcribe.TranscribeHinted(c.Request().Context(), s.stt, stt.Request{
		Audio:    audio,
		MIMEType: mimeType,
		Language: c.QueryParam("language"),
	})
	if err != nil {
		observe.Logger(c.Request().Context()).Error("transcription failed", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "transcription failed")
	}

	return c.JSON(http.StatusOK, transcribeResponse{
		Text:             result.Text,
		DetectedLanguage: result.DetectedLanguage,
	})
}

// readAudio extracts the clip from a multipart "audio" part or the raw body.
func readAudio(c echo.Context) ([]byte, string, error) {
	if file, err := c.FormFile("audio"); err == nil {
		f, err := file.Open()
		if err != nil {
			return nil, "", err
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, maxAudioUpload))
		return data, file.Header.Get("Content-Type"), err
	}

	data, err := io.ReadAll(io.LimitReader(c.Request().Body, maxAudioUpload))
	return data, c.Request().Header.Get("Content-Type"), err
}

type speakRequest struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Level    string  `json:"level"`
	Speed    float64 `json:"speed"`
}

// speak synthesises one reply and returns the audio. An explicit speed wins
// over the level-derived one.
func (s *Server) speak(c echo.Context) error {
	if s.tts == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "no speech synthesis configured")
	}

	var req speakRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text is required")
	}

	speed := req.Speed
	if speed == 0 {
		speed = speech.SpeedForLevel(req.Level)
	}

	audio, err := s.tts.Speak(c.Request().Context(), tts.Request{
		Text:     req.Text,
		Language: req.Language,
		Speed:    speed,
	})
	if err != nil {
		observe.Logger(c.Request().Context()).Error("speech synthesis failed", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "speech synthesis failed")
	}

	return c.Blob(http.StatusOK, "audio/mpeg", audio)
}
