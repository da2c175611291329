// Package ratelimit provides token-bucket read throttling for file transfers
package ratelimit

import (
	"context"
	"io"
	"sync"
	"time"
)

// minBucketSize keeps small limits from stalling between refills
const minBucketSize = 64 * 1024

// Limiter controls the aggregate read rate across any number of wrapped
// readers. A nil *Limiter disables limiting everywhere it is accepted.
type Limiter struct {
	bytesPerSecond int64

	mu         sync.Mutex
	tokens     int64
	bucketSize int64
	lastRefill time.Time
}

// NewLimiter creates a rate limiter for the given bytes-per-second budget.
// A non-positive budget returns nil, meaning unlimited.
func NewLimiter(bytesPerSecond int64) *Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}

	bucketSize := bytesPerSecond
	if bucketSize < minBucketSize {
		bucketSize = minBucketSize
	}

	return &Limiter{
		bytesPerSecond: bytesPerSecond,
		tokens:         bucketSize,
		bucketSize:     bucketSize,
		lastRefill:     time.Now(),
	}
}

// Wrap returns a reader throttled by the limiter. A nil limiter or reader
// passes through unchanged.
func (l *Limiter) Wrap(ctx context.Context, r io.Reader) io.Reader {
	if l == nil || r == nil {
		return r
	}
	return &reader{inner: r, limiter: l, ctx: ctx}
}

// WrapCloser returns a read-closer throttled by the limiter
func (l *Limiter) WrapCloser(ctx context.Context, rc io.ReadCloser) io.ReadCloser {
	if l == nil || rc == nil {
		return rc
	}
	return &readCloser{
		reader: reader{inner: rc, limiter: l, ctx: ctx},
		closer: rc,
	}
}

// take blocks until n tokens are available, then consumes them
func (l *Limiter) take(n int64) {
	for {
		l.mu.Lock()

		now := time.Now()
		elapsed := now.Sub(l.lastRefill)
		refill := int64(float64(elapsed) / float64(time.Second) * float64(l.bytesPerSecond))
		if refill > 0 {
			l.tokens += refill
			if l.tokens > l.bucketSize {
				l.tokens = l.bucketSize
			}
			l.lastRefill = now
		}

		if l.tokens >= n {
			l.tokens -= n
			l.mu.Unlock()
			return
		}

		deficit := n - l.tokens
		wait := time.Duration(float64(deficit) / float64(l.bytesPerSecond) * float64(time.Second))
		if wait < time.Millisecond {
			wait = time.Millisecond
		}
		l.mu.Unlock()

		time.Sleep(wait)
	}
}

type reader struct {
	inner   io.Reader
	limiter *Limiter
	ctx     context.Context
}

// Read implements io.Reader, paying for bytes before reading them
func (r *reader) Read(p []byte) (int, error) {
	select {
	case <-r.ctx.Done():
		return 0, r.ctx.Err()
	default:
	}

	want := int64(len(p))
	if want > r.limiter.bucketSize {
		want = r.limiter.bucketSize
	}
	r.limiter.take(want)

	n, err := r.inner.Read(p[:want])

	// Refund tokens for the bytes we paid for but did not get
	if int64(n) < want {
		r.limiter.mu.Lock()
		r.limiter.tokens += want - int64(n)
		if r.limiter.tokens > r.limiter.bucketSize {
			r.limiter.tokens = r.limiter.bucketSize
		}
		r.limiter.mu.Unlock()
	}

	return n, err
}

type readCloser struct {
	reader
	closer io.Closer
}

// Close implements io.Closer
func (rc *readCloser) Close() error {
	return rc.closer.Close()
}
