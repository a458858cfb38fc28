package sensor

import (
	"context"
	"runtime"
	"time"
)

// Poller blocks until cond reports true, cond fails, or ctx is done.
// It is the only blocking primitive behind the sensor's waits, so a
// caller can swap a CPU-yielding or sleeping strategy for the default
// busy spin without changing the wait contract.
type Poller func(ctx context.Context, cond func() (bool, error)) error

// BusyPoll evaluates cond back to back with no sleep or yield.
// It never gives up while ctx is live.
func BusyPoll(ctx context.Context, cond func() (bool, error)) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ok, err := cond()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
}

// YieldPoll returns a Poller that waits interval between evaluations.
// A zero interval yields the processor instead of sleeping.
func YieldPoll(interval time.Duration) Poller {
	return func(ctx context.Context, cond func() (bool, error)) error {
		for {
			ok, err := cond()
			if err != nil {
				return err
			}
			if ok {
				return nil
			}
			if interval <= 0 {
				runtime.Gosched()
				if err := ctx.Err(); err != nil {
					return err
				}
				continue
			}
			t := time.NewTimer(interval)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}
	}
}
