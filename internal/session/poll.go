// internal/session/poll.go
//
// Bounded wait for cookie visibility.
//
// Context
// -------
// The browser may lag in attaching a freshly-set cookie to the next
// request, so a mint immediately followed by a status check can report
// absent.  That window is eventual consistency, not a failure: clients
// poll the status endpoint at a fixed short interval under a hard ceiling
// instead of sleeping or retrying forever.  Hitting the ceiling yields a
// distinguishable error—never a hang.

package session

import (
	"context"
	"errors"
	"time"
)

// Await polling defaults: low single-digit seconds in total.
const (
	DefaultPollInterval = 250 * time.Millisecond
	DefaultPollCeiling  = 3 * time.Second
)

// ErrAwaitTimeout reports that the cookie never became visible and
// verified within the polling ceiling.
var ErrAwaitTimeout = errors.New("session: not visible within polling ceiling")

// StatusFn produces the current projection, typically one round-trip to
// GET /api/session with the browser's cookie jar attached.
type StatusFn func(ctx context.Context) (Status, error)

// Await polls fn until it reports PresentVerified, the ceiling elapses, or
// ctx is cancelled.  StatusFn errors are not retried-around silently: the
// last one is wrapped into the timeout result so callers can surface it.
func Await(ctx context.Context, fn StatusFn, interval, ceiling time.Duration) (Status, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if ceiling <= 0 {
		ceiling = DefaultPollCeiling
	}

	ctx, cancel := context.WithTimeout(ctx, ceiling)
	defer cancel()

	tick := time.NewTicker(interval)
	defer tick.Stop()

	var (
		last    Status
		lastErr error
	)
	for {
		st, err := fn(ctx)
		if err == nil {
			if st.State == PresentVerified {
				return st, nil
			}
			last, lastErr = st, nil
		} else {
			lastErr = err
		}

		select {
		case <-ctx.Done():
			if lastErr != nil {
				return last, errors.Join(ErrAwaitTimeout, lastErr)
			}
			return last, ErrAwaitTimeout
		case <-tick.C:
		}
	}
}
