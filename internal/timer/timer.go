// Package timer drives session countdowns. Production code uses Ticker; tests
// use Manual to fire ticks deterministically.
package timer

import (
	"context"
	"sync"
	"time"
)

// Scheduler runs fn every interval until the returned handle is stopped.
type Scheduler interface {
	Every(interval time.Duration, fn func()) *Handle
}

// Handle cancels a scheduled callback. Stop is idempotent.
type Handle struct {
	once sync.Once
	stop func()
}

func newHandle(stop func()) *Handle {
	return &Handle{stop: stop}
}

func (h *Handle) Stop() {
	if h == nil {
		return
	}
	h.once.Do(h.stop)
}

// Ticker schedules callbacks on real time.Tickers, one goroutine per handle.
type Ticker struct{}

func (Ticker) Every(interval time.Duration, fn func()) *Handle {
	ctx, cancel := context.WithCancel(context.Background())
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// a stop racing the tick wins
				if ctx.Err() != nil {
					return
				}
				fn()
			}
		}
	}()
	return newHandle(cancel)
}

// Manual records scheduled callbacks and fires them on demand.
type Manual struct {
	mu      sync.Mutex
	entries []*manualEntry
}

type manualEntry struct {
	fn      func()
	stopped bool
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) Every(_ time.Duration, fn func()) *Handle {
	entry := &manualEntry{fn: fn}
	m.mu.Lock()
	m.entries = append(m.entries, entry)
	m.mu.Unlock()
	return newHandle(func() {
		m.mu.Lock()
		entry.stopped = true
		m.mu.Unlock()
	})
}

// Fire runs every live callback once and reports how many ran.
func (m *Manual) Fire() int {
	m.mu.Lock()
	live := make([]func(), 0, len(m.entries))
	for _, e := range m.entries {
		if !e.stopped {
			live = append(live, e.fn)
		}
	}
	m.mu.Unlock()

	for _, fn := range live {
		fn()
	}
	return len(live)
}

// FireAll runs every callback, stopped or not, to simulate late deliveries.
func (m *Manual) FireAll() {
	m.mu.Lock()
	all := make([]func(), 0, len(m.entries))
	for _, e := range m.entries {
		all = append(all, e.fn)
	}
	m.mu.Unlock()

	for _, fn := range all {
		fn()
	}
}

// Live reports how many callbacks are still scheduled.
func (m *Manual) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if !e.stopped {
			n++
		}
	}
	return n
}
