package quiz

import (
	"sync"
	"time"
)

// Countdown ticks down from a total on its own goroutine. It calls onExpire
// once when the total runs out unless Stop is called first.
type Countdown struct {
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	mu      sync.Mutex
	expired bool
}

// StartCountdown starts the timer. onTick receives the time left after each
// interval; either callback may be nil. A non-positive interval means one
// second.
func StartCountdown(total, interval time.Duration, onTick func(remaining time.Duration), onExpire func()) *Countdown {
	if interval <= 0 {
		interval = time.Second
	}

	c := &Countdown{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go c.run(total, interval, onTick, onExpire)
	return c
}

func (c *Countdown) run(total, interval time.Duration, onTick func(time.Duration), onExpire func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	remaining := total
	for remaining > 0 {
		select {
		case <-c.stop:
			close(c.done)
			return
		case <-ticker.C:
			remaining -= interval
			if remaining > 0 && onTick != nil {
				onTick(remaining)
			}
		}
	}

	c.mu.Lock()
	c.expired = true
	c.mu.Unlock()

	// done is closed first so onExpire may call Stop.
	close(c.done)
	if onExpire != nil {
		onExpire()
	}
}

// Stop halts the timer and waits for its goroutine to stop ticking. It is
// safe to call more than once and after expiry.
func (c *Countdown) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
	<-c.done
}

// Done is closed once the countdown has stopped or expired.
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}

func (c *Countdown) Expired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expired
}
