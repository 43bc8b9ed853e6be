package client

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// backoffDuration computes the wait before the next attempt:
// base * factor^attempt, capped at max. attempt is zero-based.
func backoffDuration(base time.Duration, factor float64, max time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	wait := time.Duration(float64(base) * math.Pow(factor, float64(attempt)))
	if wait > max || wait <= 0 {
		wait = max
	}
	return wait
}

// politenessDelay picks a uniform random wait in [min,max].
func politenessDelay(min, max time.Duration) time.Duration {
	if max <= 0 || max < min {
		return 0
	}
	if max == min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}

// sleep waits for d, honoring context cancellation. Returns a distinguishable
// error when the caller's budget expires mid-wait.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		// Still observe an already-expired context.
		if err := ctx.Err(); err != nil {
			return wrapContextErr(err)
		}
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return wrapContextErr(ctx.Err())
	case <-timer.C:
		return nil
	}
}

func wrapContextErr(err error) error {
	if err == context.DeadlineExceeded {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrContextCancelled, err)
}
