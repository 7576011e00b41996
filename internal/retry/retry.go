package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/fathomenergy/curvetrace/internal/apierror"
)

// DefaultMaxElapsed bounds how long a caller-level retry loop keeps going
// before surfacing the transient failure.
const DefaultMaxElapsed = 30 * time.Second

// Transient runs op, retrying with exponential backoff while it fails with a
// TRANSIENT store error. Operations are all-or-nothing transactions, so a
// retry restarts from scratch; any other error kind is surfaced immediately.
func Transient(ctx context.Context, name string, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = DefaultMaxElapsed

	attempt := 0
	wrapped := func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if apierror.IsRetryable(err) {
			logrus.WithFields(logrus.Fields{"op": name, "attempt": attempt}).Warn("transient store failure, retrying")
			return err
		}
		return backoff.Permanent(err)
	}

	if err := backoff.Retry(wrapped, backoff.WithContext(policy, ctx)); err != nil {
		return errors.Wrapf(err, "%s failed after %d attempt(s)", name, attempt)
	}
	return nil
}
