package fetcher

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter spaces out requests across the whole crawl.
//
// Wait blocks until the next request may start. Done is called when a
// request has finished; the next Wait is measured from that moment.
type Limiter interface {
	Wait(ctx context.Context) error
	Done()
}

// IntervalLimiter enforces a minimum interval between the end of one
// request and the start of the next. It is safe for concurrent use.
type IntervalLimiter struct {
	mu  sync.Mutex
	lim *rate.Limiter
	now func() time.Time
}

// NewIntervalLimiter creates a limiter with the given interval.
// A non-positive interval disables waiting.
func NewIntervalLimiter(interval time.Duration) *IntervalLimiter {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &IntervalLimiter{
		lim: rate.NewLimiter(limit, 1),
		now: time.Now,
	}
}

// Wait blocks until a request may start or ctx is done.
func (l *IntervalLimiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	now := l.now()
	r := l.lim.ReserveN(now, 1)
	l.mu.Unlock()

	delay := r.DelayFrom(now)
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}

// Done restarts the interval from now. Dropping the burst to zero drains
// any token accrued while the request was in flight.
func (l *IntervalLimiter) Done() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.lim.SetBurstAt(now, 0)
	l.lim.SetBurstAt(now, 1)
}

// nopLimiter never waits.
type nopLimiter struct{}

// NewNopLimiter returns a Limiter that never delays. Intended for tests.
func NewNopLimiter() Limiter {
	return nopLimiter{}
}

func (nopLimiter) Wait(ctx context.Context) error { return ctx.Err() }
func (nopLimiter) Done()                          {}
