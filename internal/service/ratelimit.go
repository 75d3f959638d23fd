package service

import (
	"sync"
	"time"
)

type attemptState struct {
	failures     int
	lastFailure  time.Time
	blockedUntil time.Time
}

// FailedAttemptLimiter counts failed public-API authentication attempts
// per source IP and blocks an IP for a fixed window once the threshold
// is reached.  Any successful authentication clears the IP's counter, so
// a legitimate user who fumbles a few times never creeps toward a block.
//
// State lives in process memory behind a mutex: it does not survive
// restarts and is not shared across instances.  That matches the
// single-instance deployment model; a multi-instance deployment would
// need to move this state into shared storage.
type FailedAttemptLimiter struct {
	mu        sync.Mutex
	attempts  map[string]*attemptState
	threshold int
	window    time.Duration
	now       func() time.Time
}

// NewFailedAttemptLimiter builds a limiter blocking an IP for window
// after threshold consecutive failures.
func NewFailedAttemptLimiter(threshold int, window time.Duration) *FailedAttemptLimiter {
	return &FailedAttemptLimiter{
		attempts:  make(map[string]*attemptState),
		threshold: threshold,
		window:    window,
		now:       time.Now,
	}
}

// RecordFailure counts one failed attempt for ip.  Reaching the
// threshold starts the block window from this attempt and resets the
// counter so the IP starts fresh once the window lapses.
func (l *FailedAttemptLimiter) RecordFailure(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	st, ok := l.attempts[ip]
	if !ok {
		st = &attemptState{}
		l.attempts[ip] = st
	}
	st.failures++
	st.lastFailure = l.now()
	if st.failures >= l.threshold {
		st.blockedUntil = l.now().Add(l.window)
		st.failures = 0
	}
}

// IsBlocked reports whether ip is inside a block window.
func (l *FailedAttemptLimiter) IsBlocked(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	st, ok := l.attempts[ip]
	if !ok {
		return false
	}
	return l.now().Before(st.blockedUntil)
}

// Clear resets the counter for ip after a successful authentication.
func (l *FailedAttemptLimiter) Clear(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, ip)
}

// Cleanup removes entries that are neither blocked nor recently failed.
func (l *FailedAttemptLimiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for ip, st := range l.attempts {
		if now.After(st.blockedUntil) && now.Sub(st.lastFailure) > l.window {
			delete(l.attempts, ip)
		}
	}
}

// StartCleanup sweeps expired state on the given interval until the
// process exits.
func (l *FailedAttemptLimiter) StartCleanup(interval time.Duration) {
	go func() {
		for {
			time.Sleep(interval)
			l.Cleanup()
		}
	}()
}
