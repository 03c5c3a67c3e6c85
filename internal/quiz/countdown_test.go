package quiz

import (
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestCountdownExpiresOnce(t *testing.T) {
	defer goleak.VerifyNone(t)

	var ticks, expiries atomic.Int32
	expired := make(chan struct{})

	countdown := StartCountdown(50*time.Millisecond, 10*time.Millisecond,
		func(time.Duration) { ticks.Add(1) },
		func() {
			expiries.Add(1)
			close(expired)
		})

	select {
	case <-expired:
	case <-time.After(2 * time.Second):
		t.Fatalf("countdown never expired")
	}

	countdown.Stop()
	countdown.Stop()

	time.Sleep(30 * time.Millisecond)
	if got := expiries.Load(); got != 1 {
		t.Fatalf("expected exactly one expiry, got %d", got)
	}
	if !countdown.Expired() {
		t.Fatalf("Expired() should report true")
	}
	if got := ticks.Load(); got != 4 {
		t.Fatalf("expected 4 ticks before expiry, got %d", got)
	}
}

func TestCountdownStopPreventsExpiry(t *testing.T) {
	defer goleak.VerifyNone(t)

	var expiries atomic.Int32
	countdown := StartCountdown(time.Hour, 10*time.Millisecond, nil, func() { expiries.Add(1) })

	countdown.Stop()
	select {
	case <-countdown.Done():
	default:
		t.Fatalf("Done not closed after Stop")
	}
	if expiries.Load() != 0 || countdown.Expired() {
		t.Fatalf("stopped countdown expired")
	}
	countdown.Stop()
}

func TestCountdownStopFromExpiry(t *testing.T) {
	defer goleak.VerifyNone(t)

	done := make(chan struct{})
	var countdown *Countdown
	ready := make(chan struct{})
	countdown = StartCountdown(10*time.Millisecond, 5*time.Millisecond, nil, func() {
		<-ready
		countdown.Stop()
		close(done)
	})
	close(ready)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Stop inside onExpire deadlocked")
	}
}
