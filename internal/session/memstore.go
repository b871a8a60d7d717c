package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

const (
	// defaultTTL is how long an idle session survives before eviction.
	defaultTTL = 24 * time.Hour

	// janitorInterval is how often expired sessions are swept.
	janitorInterval = 10 * time.Minute
)

// MemStore is an in-memory [Store] with TTL eviction. Sessions untouched for
// the TTL are swept by a background janitor. Suitable for single-node
// deployments and tests.
type MemStore struct {
	mu       sync.RWMutex
	sessions map[string]memEntry
	ttl      time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

type memEntry struct {
	data    []byte
	touched time.Time
}

// MemOption is a functional option for [NewMemStore].
type MemOption func(*MemStore)

// WithTTL overrides the idle eviction TTL. Defaults to 24 hours.
func WithTTL(ttl time.Duration) MemOption {
	return func(m *MemStore) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// NewMemStore creates a [MemStore] and starts its eviction janitor.
func NewMemStore(opts ...MemOption) *MemStore {
	m := &MemStore{
		sessions: make(map[string]memEntry),
		ttl:      defaultTTL,
		stop:     make(chan struct{}),
	}
	for _, o := range opts {
		o(m)
	}
	go m.janitor()
	return m
}

// Create stores a new session.
func (m *MemStore) Create(_ context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; ok {
		return ErrExists
	}
	m.sessions[s.ID] = memEntry{data: data, touched: time.Now()}
	return nil
}

// Get returns a copy of the stored session and refreshes its TTL.
func (m *MemStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	entry, ok := m.sessions[id]
	if ok {
		entry.touched = time.Now()
		m.sessions[id] = entry
	}
	m.mu.Unlock()

	if !ok {
		return nil, ErrNotFound
	}
	var s Session
	if err := json.Unmarshal(entry.data, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &s, nil
}

// Update replaces the stored session.
func (m *MemStore) Update(_ context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; !ok {
		return ErrNotFound
	}
	m.sessions[s.ID] = memEntry{data: data, touched: time.Now()}
	return nil
}

// Delete removes the session.
func (m *MemStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Close stops the eviction janitor.
func (m *MemStore) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	return nil
}

// Len returns the number of live sessions.
func (m *MemStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *MemStore) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			m.sweep(now)
		}
	}
}

func (m *MemStore) sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, entry := range m.sessions {
		if now.Sub(entry.touched) > m.ttl {
			delete(m.sessions, id)
		}
	}
}

var _ Store = (*MemStore)(nil)
