// Package ratelimit provides source decorators that throttle calls to
// a backend. Useful for the scraped crypto source, which has no API
// contract and should not be hammered by a burst of refreshes.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"stockquote/internal/quote"
	"stockquote/internal/source"
)

// MinInterval wraps a source and enforces a minimum time between calls.
// Concurrent calls wait until the interval has elapsed since the last
// call, or return early if the context is canceled.
type MinInterval struct {
	S        source.Source
	Interval time.Duration
	mu       sync.Mutex
	last     time.Time
}

func (m *MinInterval) Name() string { return m.S.Name() }

func (m *MinInterval) Fetch(ctx context.Context, symbol string) (*quote.Quote, error) {
	if m.Interval > 0 {
		m.mu.Lock()
		wait := time.Until(m.last.Add(m.Interval))
		m.mu.Unlock()
		if wait > 0 {
			t := time.NewTimer(wait)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-t.C:
			}
		}
	}
	q, err := m.S.Fetch(ctx, symbol)
	if m.Interval > 0 {
		m.mu.Lock()
		m.last = time.Now()
		m.mu.Unlock()
	}
	return q, err
}

// TokenBucket wraps a source with a token bucket limiter. A refresh
// cycle may fetch a handful of symbols at once, so a bucket with a
// burst the size of a typical watchlist stays out of the way while
// still capping sustained request rates.
type TokenBucket struct {
	s      source.Source
	tokens chan struct{}
	done   chan struct{}
	once   sync.Once
}

// NewTokenBucket allows bursts of up to burst calls and refills at
// rate tokens per second.
func NewTokenBucket(s source.Source, rate float64, burst int) *TokenBucket {
	if burst < 1 {
		burst = 1
	}
	tb := &TokenBucket{
		s:      s,
		tokens: make(chan struct{}, burst),
		done:   make(chan struct{}),
	}
	for i := 0; i < burst; i++ {
		tb.tokens <- struct{}{}
	}
	go tb.refill(rate)
	return tb
}

func (tb *TokenBucket) refill(rate float64) {
	if rate <= 0 {
		return
	}
	ticker := time.NewTicker(time.Duration(float64(time.Second) / rate))
	defer ticker.Stop()
	for {
		select {
		case <-tb.done:
			return
		case <-ticker.C:
			select {
			case tb.tokens <- struct{}{}:
			default:
			}
		}
	}
}

// Close stops the refill goroutine.
func (tb *TokenBucket) Close() { tb.once.Do(func() { close(tb.done) }) }

func (tb *TokenBucket) Name() string { return tb.s.Name() }

func (tb *TokenBucket) Fetch(ctx context.Context, symbol string) (*quote.Quote, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-tb.tokens:
	}
	return tb.s.Fetch(ctx, symbol)
}
