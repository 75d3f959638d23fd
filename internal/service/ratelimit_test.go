package service

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fixedClock lets tests move time by hand.
type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fixedClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLimiter(threshold int, window time.Duration) (*FailedAttemptLimiter, *fixedClock) {
	clk := &fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	l := NewFailedAttemptLimiter(threshold, window)
	l.now = clk.now
	return l, clk
}

func TestLimiterBlocksAtThreshold(t *testing.T) {
	l, _ := newTestLimiter(10, 10*time.Minute)

	for i := 0; i < 9; i++ {
		l.RecordFailure("1.2.3.4")
		assert.False(t, l.IsBlocked("1.2.3.4"), "blocked too early at failure %d", i+1)
	}
	l.RecordFailure("1.2.3.4")
	assert.True(t, l.IsBlocked("1.2.3.4"), "10th failure must block")
}

func TestLimiterBlockExpiresAfterWindow(t *testing.T) {
	l, clk := newTestLimiter(3, 10*time.Minute)

	for i := 0; i < 3; i++ {
		l.RecordFailure("10.0.0.1")
	}
	assert.True(t, l.IsBlocked("10.0.0.1"))

	clk.advance(10*time.Minute + time.Second)
	assert.False(t, l.IsBlocked("10.0.0.1"), "block must lapse after the window")
}

func TestLimiterSuccessResetsCounter(t *testing.T) {
	l, _ := newTestLimiter(10, 10*time.Minute)

	for i := 0; i < 9; i++ {
		l.RecordFailure("9.9.9.9")
	}
	l.Clear("9.9.9.9")

	// a fresh streak starts from zero
	for i := 0; i < 9; i++ {
		l.RecordFailure("9.9.9.9")
	}
	assert.False(t, l.IsBlocked("9.9.9.9"))
	l.RecordFailure("9.9.9.9")
	assert.True(t, l.IsBlocked("9.9.9.9"))
}

func TestLimiterTracksIPsIndependently(t *testing.T) {
	l, _ := newTestLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		l.RecordFailure("1.1.1.1")
	}
	assert.True(t, l.IsBlocked("1.1.1.1"))
	assert.False(t, l.IsBlocked("2.2.2.2"))
}

func TestLimiterCleanupDropsStaleState(t *testing.T) {
	l, clk := newTestLimiter(10, 10*time.Minute)

	l.RecordFailure("3.3.3.3") // partial streak, never blocked
	for i := 0; i < 10; i++ {
		l.RecordFailure("4.4.4.4") // blocked
	}

	clk.advance(21 * time.Minute)
	l.Cleanup()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Empty(t, l.attempts, "stale entries must be swept")
}

func TestLimiterConcurrentFailures(t *testing.T) {
	l, _ := newTestLimiter(100, time.Minute)

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			ip := fmt.Sprintf("10.0.0.%d", g%2)
			for i := 0; i < 50; i++ {
				l.RecordFailure(ip)
				l.IsBlocked(ip)
			}
		}(g)
	}
	wg.Wait()

	// each of the two IPs saw 250 failures, past the threshold of 100
	assert.True(t, l.IsBlocked("10.0.0.0"))
	assert.True(t, l.IsBlocked("10.0.0.1"))
}
