package timer

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTickerStopsFiring(t *testing.T) {
	var calls int32
	h := Ticker{}.Every(5*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&calls) < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("ticker never fired")
		}
		time.Sleep(time.Millisecond)
	}

	h.Stop()
	h.Stop()
	time.Sleep(20 * time.Millisecond)
	after := atomic.LoadInt32(&calls)
	time.Sleep(30 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != after {
		t.Fatalf("expected no calls after stop, got %d more", got-after)
	}
}

func TestManualFiresOnlyLiveHandles(t *testing.T) {
	m := NewManual()
	var a, b int
	ha := m.Every(time.Second, func() { a++ })
	m.Every(time.Second, func() { b++ })

	if n := m.Fire(); n != 2 {
		t.Fatalf("expected 2 callbacks, got %d", n)
	}
	ha.Stop()
	if n := m.Fire(); n != 1 {
		t.Fatalf("expected 1 callback after stop, got %d", n)
	}
	if a != 1 || b != 2 {
		t.Fatalf("unexpected counts a=%d b=%d", a, b)
	}
	if m.Live() != 1 {
		t.Fatalf("expected 1 live handle, got %d", m.Live())
	}

	m.FireAll()
	if a != 2 {
		t.Fatalf("expected late delivery to reach stopped callback, got a=%d", a)
	}
}

func TestNilHandleStopIsSafe(t *testing.T) {
	var h *Handle
	h.Stop()
}
