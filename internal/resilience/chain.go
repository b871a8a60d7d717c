package resilience

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrAllFailed is returned when every entry in a [Chain] fails or has an open
// breaker.
var ErrAllFailed = errors.New("all providers failed")

// Entry names one provider in a [Chain].
type Entry[T any] struct {
	// Name labels the provider in logs and breaker state.
	Name string
	// Provider is the backend instance.
	Provider T
}

type chainEntry[T any] struct {
	name     string
	provider T
	breaker  *Breaker
}

// Chain is an ordered list of interchangeable providers. Calls go to the
// first entry whose breaker is closed; on failure the next entry is tried in
// order. Each entry carries its own breaker so a flapping primary is bypassed
// without probing it on every call.
type Chain[T any] struct {
	entries []chainEntry[T]
}

// NewChain builds a [Chain] from ordered entries. The first entry is the
// preferred provider. cfg seeds each entry's breaker; the entry name
// overrides cfg.Name.
func NewChain[T any](cfg BreakerConfig, entries ...Entry[T]) (*Chain[T], error) {
	if len(entries) == 0 {
		return nil, errors.New("resilience: chain needs at least one entry")
	}
	c := &Chain[T]{entries: make([]chainEntry[T], 0, len(entries))}
	for _, e := range entries {
		bc := cfg
		bc.Name = e.Name
		c.entries = append(c.entries, chainEntry[T]{
			name:     e.Name,
			provider: e.Provider,
			breaker:  NewBreaker(bc),
		})
	}
	return c, nil
}

// Append adds a further fallback at the end of the chain. Not safe to call
// concurrently with Run; wire the chain up before serving.
func (c *Chain[T]) Append(name string, provider T, cfg BreakerConfig) {
	cfg.Name = name
	c.entries = append(c.entries, chainEntry[T]{
		name:     name,
		provider: provider,
		breaker:  NewBreaker(cfg),
	})
}

// Primary returns the first provider in the chain.
func (c *Chain[T]) Primary() T {
	return c.entries[0].provider
}

// Names returns the entry names in order.
func (c *Chain[T]) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.name
	}
	return names
}

// Run tries fn against each entry in order until one succeeds. Open-breaker
// entries are skipped. When every entry fails the last error is wrapped with
// [ErrAllFailed]. Package-level because Go methods cannot introduce the
// result type parameter.
func Run[T any, R any](c *Chain[T], fn func(T) (R, error)) (R, error) {
	var (
		lastErr error
		zero    R
	)
	for i := range c.entries {
		entry := &c.entries[i]
		var result R
		err := entry.breaker.Do(func() error {
			var callErr error
			result, callErr = fn(entry.provider)
			return callErr
		})
		if err == nil {
			return result, nil
		}
		lastErr = err
		if errors.Is(err, ErrBreakerOpen) {
			slog.Debug("skipping provider, breaker open", "provider", entry.name)
		} else {
			slog.Warn("provider failed, trying next", "provider", entry.name, "error", err)
		}
	}
	return zero, fmt.Errorf("%w: %v", ErrAllFailed, lastErr)
}
