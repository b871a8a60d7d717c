// Package progress tracks daily practice: accumulated speaking time per day,
// the daily completion goal, and the streak of consecutive completed days.
// Saved session reviews live here too, so the learner's history survives the
// session TTL.
package progress

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/yogeshsharma140781/Lingoa/internal/feedback"
)

// DailyGoalSeconds is the speaking time that marks a day as complete.
const DailyGoalSeconds = 300

// ErrNoReview is returned when no review is stored for a session.
var ErrNoReview = errors.New("no review for session")

// Summary is the progress view for one learner.
type Summary struct {
	// TodaySeconds is the speaking time accumulated today.
	TodaySeconds float64 `json:"today_seconds"`
	// TodayComplete reports whether today's goal is met.
	TodayComplete bool `json:"today_complete"`
	// CurrentStreak counts consecutive completed days ending today or
	// yesterday. An incomplete today does not break a streak still in
	// progress.
	CurrentStreak int `json:"current_streak"`
	// DaysPracticed counts all days with any recorded speaking time.
	DaysPracticed int `json:"days_practiced"`
}

// Store persists practice time and session reviews.
type Store interface {
	// RecordPractice adds seconds of speaking time to the learner's total
	// for the given day. The day is truncated to a UTC date.
	RecordPractice(ctx context.Context, userID string, day time.Time, seconds float64) error
	// RecordReview saves the end-of-session review.
	RecordReview(ctx context.Context, userID, sessionID string, review *feedback.Review) error
	// ReviewForSession returns the stored review, or [ErrNoReview].
	ReviewForSession(ctx context.Context, sessionID string) (*feedback.Review, error)
	// Summary computes the learner's progress as of today.
	Summary(ctx context.Context, userID string, today time.Time) (*Summary, error)
	// Close releases store resources.
	Close() error
}

// dateOf truncates t to a UTC calendar date.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// streak counts consecutive completed days walking back from today. Today
// itself is optional: a learner who has not finished today's practice yet
// keeps yesterday's streak.
func streak(completed []time.Time, today time.Time) int {
	if len(completed) == 0 {
		return 0
	}
	days := make(map[time.Time]struct{}, len(completed))
	for _, d := range completed {
		days[dateOf(d)] = struct{}{}
	}

	cursor := dateOf(today)
	if _, ok := days[cursor]; !ok {
		cursor = cursor.AddDate(0, 0, -1)
	}

	n := 0
	for {
		if _, ok := days[cursor]; !ok {
			return n
		}
		n++
		cursor = cursor.AddDate(0, 0, -1)
	}
}

// summarize builds a [Summary] from per-day totals.
func summarize(totals map[time.Time]float64, today time.Time) *Summary {
	day := dateOf(today)
	var completed []time.Time
	for d, secs := range totals {
		if secs >= DailyGoalSeconds {
			completed = append(completed, d)
		}
	}
	sort.Slice(completed, func(i, j int) bool { return completed[i].Before(completed[j]) })

	todaySecs := totals[day]
	return &Summary{
		TodaySeconds:  todaySecs,
		TodayComplete: todaySecs >= DailyGoalSeconds,
		CurrentStreak: streak(completed, today),
		DaysPracticed: len(totals),
	}
}
