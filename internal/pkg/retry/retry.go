package retry

import (
	"context"
	"fmt"
	"time"
)

// Do runs fn up to attempts times, sleeping delay between tries. It returns
// nil on the first success and the last error once the attempts are spent.
// Context cancellation aborts the wait, not an in-flight fn call.
func Do(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var last error
	for i := 0; i < attempts; i++ {
		if last = fn(); last == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("after %d attempts: %w", attempts, last)
}
