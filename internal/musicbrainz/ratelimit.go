package musicbrainz

import (
	"context"
	"sync"
	"time"
)

// DefaultMinInterval is the politeness floor MusicBrainz asks anonymous
// clients to honour.
const DefaultMinInterval = time.Second

// DefaultMaxRetries bounds retries after the first attempt.
const DefaultMaxRetries = 3

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepWithContext blocks for the given duration, returning early if the
// context is cancelled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Backoff returns the wait before retrying after a failed attempt (0-based).
// Rate-limited responses wait 2^attempt+1 seconds; everything else waits
// 1+0.5*attempt seconds.
func Backoff(attempt int, rateLimited bool) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if rateLimited {
		return time.Duration(1<<attempt+1) * time.Second
	}
	return time.Second + time.Duration(attempt)*500*time.Millisecond
}

// limiter enforces a minimum spacing between requests. The mutex is held
// while waiting so concurrent callers queue behind one shared clock.
type limiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
	now      func() time.Time
	sleep    Sleeper
}

func newLimiter(interval time.Duration, sleep Sleeper) *limiter {
	return &limiter{interval: interval, now: time.Now, sleep: sleep}
}

func (l *limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if l.interval > 0 && !l.last.IsZero() {
		if wait := l.interval - l.now().Sub(l.last); wait > 0 {
			if err := l.sleep(ctx, wait); err != nil {
				return err
			}
		}
	}
	l.last = l.now()
	return nil
}
