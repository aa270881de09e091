package synth

import (
	"context"
	"fmt"
	"time"

	"github.com/book-expert/logger"

	"github.com/jash90/podcast-generator/internal/core"
)

// Default retry budgets. Rate-limit waits run much longer than generic
// transient waits because the provider window has to drain before another
// attempt can succeed.
const (
	DefaultMaxRetries       = 3
	DefaultTransientBackoff = 2 * time.Second
	DefaultRateLimitBackoff = 10 * time.Second

	PreloadMaxRetries       = 1
	PreloadTransientBackoff = 1 * time.Second
	PreloadRateLimitBackoff = 5 * time.Second

	backoffCap = 2 * time.Minute
)

const (
	errFmtExhausted       = "%s failed after %d attempts: %w"
	errFmtAborted         = "%s: %w"
	errFmtWaitInterrupted = "retry wait interrupted: %w"

	logFmtRetrying = "Retrying %s (attempt %d/%d) after %v: %v"
)

// RetryPolicy holds the knobs for one class of retried operation. Policy is
// separate from mechanism so full synthesis and cache preload can run the same
// Invoke with different budgets.
type RetryPolicy struct {
	MaxRetries       int
	TransientBackoff time.Duration
	RateLimitBackoff time.Duration
}

// DefaultPolicy returns the budget used for on-demand synthesis.
func DefaultPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:       DefaultMaxRetries,
		TransientBackoff: DefaultTransientBackoff,
		RateLimitBackoff: DefaultRateLimitBackoff,
	}
}

// PreloadPolicy returns the lighter budget used for background cache warming,
// where giving up quickly is better than stalling the interactive path.
func PreloadPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:       PreloadMaxRetries,
		TransientBackoff: PreloadTransientBackoff,
		RateLimitBackoff: PreloadRateLimitBackoff,
	}
}

// Invoke runs op with bounded, error-classified retry and returns the result
// together with the number of retries used. Fatal errors stop immediately:
// a bad key or exhausted quota will not heal on a second attempt. Rate-limit
// errors wait the longer backoff class, all other failures the shorter one,
// doubling per attempt. The context is honored during every wait.
func Invoke[T any](
	ctx context.Context,
	log *logger.Logger,
	label string,
	policy RetryPolicy,
	op func(context.Context) (T, error),
) (T, int, error) {
	var (
		zero    T
		lastErr error
	)

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(policy, lastErr, attempt)
			log.Warn(logFmtRetrying, label, attempt, policy.MaxRetries, delay, lastErr)

			waitErr := sleepContext(ctx, delay)
			if waitErr != nil {
				return zero, attempt - 1, waitErr
			}
		}

		result, err := op(ctx)
		if err == nil {
			return result, attempt, nil
		}

		lastErr = err

		if core.IsFatal(err) {
			return zero, attempt, fmt.Errorf(errFmtAborted, label, err)
		}
	}

	return zero, policy.MaxRetries, fmt.Errorf(
		errFmtExhausted, label, policy.MaxRetries+1, lastErr,
	)
}

// backoffDelay picks the wait before retry number attempt, doubling per attempt
// within its class and capped to keep pathological policies bounded.
func backoffDelay(policy RetryPolicy, lastErr error, attempt int) time.Duration {
	base := policy.TransientBackoff
	if core.IsRateLimited(lastErr) {
		base = policy.RateLimitBackoff
	}

	delay := base << (attempt - 1)
	if delay > backoffCap || delay <= 0 {
		delay = backoffCap
	}

	return delay
}

func sleepContext(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf(errFmtWaitInterrupted, ctx.Err())
	case <-timer.C:
		return nil
	}
}
