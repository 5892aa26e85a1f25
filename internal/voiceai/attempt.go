package voiceai

import (
	"context"
	"errors"
	"time"
)

// attempt is one bounded try against an upstream provider.
type attempt[T any] struct {
	name string
	run  func(ctx context.Context) (T, error)
}

// firstSuccess runs attempts in order, each under its own timeout, and
// returns the first result without error along with the winning attempt's
// name. No attempt is retried. The joined error of every failure is returned
// when nothing succeeds.
func firstSuccess[T any](ctx context.Context, timeout time.Duration, attempts ...attempt[T]) (T, string, error) {
	var errs []error
	for _, a := range attempts {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		v, err := runBounded(ctx, timeout, a.run)
		if err == nil {
			return v, a.name, nil
		}
		errs = append(errs, err)
	}
	var zero T
	if len(errs) == 0 {
		errs = append(errs, errors.New("no attempts configured"))
	}
	return zero, "", errors.Join(errs...)
}

func runBounded[T any](ctx context.Context, timeout time.Duration, run func(ctx context.Context) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return run(ctx)
}
