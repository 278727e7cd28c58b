package httputil

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/errors"
)

// MaxDelay caps a single wait between attempts, including server-requested
// Retry-After waits.
const MaxDelay = 10 * time.Second

// RetryableError marks a failure as transient. [Retry] only re-runs fn for
// errors that wrap one.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry calls fn until it succeeds, fails with a non-retryable error, or
// attempts run out. The wait starts at delay and doubles after each failure;
// a rate-limited failure waits for its Retry-After instead. The last error
// is returned when attempts run out, and ctx.Err() if ctx ends while waiting.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for n := max(attempts, 1); n > 0; n-- {
		if err = fn(); err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		if n == 1 {
			break
		}

		timer := time.NewTimer(waitFor(err, delay))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay = min(delay*2, MaxDelay)
	}
	return err
}

// RetryWithBackoff is [Retry] with 3 attempts starting at one second.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, 3, time.Second, fn)
}

func isRetryable(err error) bool {
	return stderrors.As(err, new(*RetryableError))
}

// waitFor returns how long to sleep after err.
func waitFor(err error, delay time.Duration) time.Duration {
	var rl *errors.RateLimitedError
	if stderrors.As(err, &rl) && rl.RetryAfter > 0 {
		delay = time.Duration(rl.RetryAfter) * time.Second
	}
	return min(delay, MaxDelay)
}
