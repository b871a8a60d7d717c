package progress

import (
	"context"
	"sync"
	"time"

	"github.com/yogeshsharma140781/Lingoa/internal/feedback"
)

// MemStore keeps progress in process memory. Suitable for single-node
// deployments and tests; data does not survive a restart.
type MemStore struct {
	mu      sync.RWMutex
	days    map[string]map[time.Time]float64
	reviews map[string]*feedback.Review
}

var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty [MemStore].
func NewMemStore() *MemStore {
	return &MemStore{
		days:    make(map[string]map[time.Time]float64),
		reviews: make(map[string]*feedback.Review),
	}
}

// RecordPractice implements [Store].
func (m *MemStore) RecordPractice(_ context.Context, userID string, day time.Time, seconds float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	totals := m.days[userID]
	if totals == nil {
		totals = make(map[time.Time]float64)
		m.days[userID] = totals
	}
	totals[dateOf(day)] += seconds
	return nil
}

// RecordReview implements [Store].
func (m *MemStore) RecordReview(_ context.Context, _ string, sessionID string, review *feedback.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reviews[sessionID] = review
	return nil
}

// ReviewForSession implements [Store].
func (m *MemStore) ReviewForSession(_ context.Context, sessionID string) (*feedback.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	review, ok := m.reviews[sessionID]
	if !ok {
		return nil, ErrNoReview
	}
	return review, nil
}

// Summary implements [Store].
func (m *MemStore) Summary(_ context.Context, userID string, today time.Time) (*Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	totals := make(map[time.Time]float64, len(m.days[userID]))
	for d, secs := range m.days[userID] {
		totals[d] = secs
	}
	return summarize(totals, today), nil
}

// Close implements [Store].
func (m *MemStore) Close() error { return nil }
