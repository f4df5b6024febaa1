package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/threadlist/internal/shared"
)

const maxAttempts = 5

// Refresher is satisfied by catalog services that can renew an expired
// credential in place.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Guard wraps upstream calls with the retry policy: up to five attempts,
// immediate retries for transient faults, escalating waits for rate limits,
// and a single transparent credential refresh on expiry.
type Guard struct {
	sink    Sink
	refresh Refresher

	// sleep is swapped out in tests to record waits instead of taking them.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewGuard builds a Guard reporting waits through sink. refresher may be nil
// for sources that carry no credential.
func NewGuard(sink Sink, refresher Refresher) *Guard {
	return &Guard{
		sink:    sink,
		refresh: refresher,
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Do runs op under the retry policy. label names the operation in the status
// messages emitted around rate-limit waits.
//
// Transient faults retry immediately. Rate limits wait attempt x 2 minutes,
// announcing the pause before it starts and the resumption after. A token
// expiry triggers one refresh that does not consume an attempt; a second
// expiry, or a failed refresh, is treated as transient; only the successful
// refresh gets its retry for free. When all attempts are spent the last
// error is wrapped in shared.ErrAttemptsExhausted.
func (g *Guard) Do(ctx context.Context, label string, op func(ctx context.Context) error) error {
	refreshed := false
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		switch {
		case errors.Is(err, shared.ErrTokenExpired) && g.refresh != nil && !refreshed:
			refreshed = true
			if rerr := g.refresh.Refresh(ctx); rerr != nil {
				// A failed refresh is an ordinary transient fault of this
				// attempt, so the attempt stays spent.
				lastErr = fmt.Errorf("%w: refresh failed: %v", shared.ErrTransient, rerr)
				continue
			}
			attempt-- // retry with the fresh credential, attempt not spent
			continue

		case errors.Is(err, shared.ErrRateLimited):
			lastErr = err
			if attempt == maxAttempts {
				break
			}
			wait := time.Duration(attempt) * 2 * time.Minute
			if serr := g.send(statusEvent("Rate limited during %s, waiting %s before retrying", label, wait)); serr != nil {
				return serr
			}
			if serr := g.sleep(ctx, wait); serr != nil {
				return serr
			}
			if serr := g.send(statusEvent("Resuming %s", label)); serr != nil {
				return serr
			}

		case errors.Is(err, shared.ErrTransient), errors.Is(err, shared.ErrTimeout),
			errors.Is(err, shared.ErrServerError), errors.Is(err, shared.ErrTokenExpired):
			lastErr = err

		default:
			// Not retryable.
			return err
		}

		if errors.Is(lastErr, shared.ErrRateLimited) && attempt == maxAttempts {
			break
		}
	}

	return fmt.Errorf("%w: %s: %w", shared.ErrAttemptsExhausted, label, lastErr)
}

func (g *Guard) send(ev Event) error {
	if g.sink == nil {
		return nil
	}
	return g.sink.Send(ev)
}
