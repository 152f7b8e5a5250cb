package retry

import (
	"context"
	"math"
	"time"
)

var (
	MAX_RETRIES = 5
	BASE_DELAY  = 1 * time.Second
)

type Sleeper interface {
	Sleep(ctx context.Context, duration time.Duration) error
}

type TimeSleeper struct{}

// Sleep waits for duration or until ctx is done, whichever comes first.
func (TimeSleeper) Sleep(ctx context.Context, duration time.Duration) error {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	Sleeper    Sleeper
	// Retriable, when set, stops the loop on errors it rejects.
	Retriable func(error) bool
	// OnRetry is called before each sleep.
	OnRetry func(attempt int, delay time.Duration, err error)
}

func DefaultPolicy() Policy {
	return Policy{MaxRetries: MAX_RETRIES, BaseDelay: BASE_DELAY, Sleeper: TimeSleeper{}}
}

// WithBackoff runs operation until it succeeds, doubling the delay between attempts.
// It returns the last error once MaxRetries attempts have failed or ctx is done.
func WithBackoff(ctx context.Context, policy Policy, operation func(context.Context) error) error {
	if policy.MaxRetries <= 0 {
		policy.MaxRetries = 1
	}
	if policy.Sleeper == nil {
		policy.Sleeper = TimeSleeper{}
	}

	var lastError error
	for i := 0; i < policy.MaxRetries; i++ {
		if err := ctx.Err(); err != nil {
			if lastError != nil {
				return lastError
			}
			return err
		}

		err := operation(ctx)
		if err == nil {
			return nil
		}
		lastError = err
		if policy.Retriable != nil && !policy.Retriable(err) {
			return err
		}
		if i == policy.MaxRetries-1 {
			break
		}

		secRetry := math.Pow(2, float64(i))
		delay := time.Duration(secRetry) * policy.BaseDelay
		if policy.OnRetry != nil {
			policy.OnRetry(i+1, delay, err)
		}
		if err := policy.Sleeper.Sleep(ctx, delay); err != nil {
			return lastError
		}
	}

	return lastError
}
