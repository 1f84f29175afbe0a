package upstream

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	defaultAttempts  = 3
	defaultBaseDelay = 2 * time.Second
	defaultMaxDelay  = 10 * time.Second
)

// Policy bounds the retry loop for one logical upstream call. The zero value
// is not usable; construct via DefaultPolicy and override what you need.
type Policy struct {
	// Attempts is the total number of tries, the first one included.
	Attempts uint
	// BaseDelay is the delay before the first retry; subsequent delays grow
	// exponentially up to MaxDelay.
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultPolicy returns the policy every client ships with: 3 attempts,
// exponential backoff starting at 2s and capped at 10s.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:  defaultAttempts,
		BaseDelay: defaultBaseDelay,
		MaxDelay:  defaultMaxDelay,
	}
}

// Retryable reports whether err is worth another attempt. Only UpstreamError
// qualifies: auth and validation failures cannot be fixed by retrying.
func Retryable(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// Do runs fn under the policy, retrying only failures classified as
// UpstreamError. The error of the last attempt is returned unwrapped so
// callers can keep matching on the taxonomy.
func Do(ctx context.Context, p Policy, fn func() error) error {
	attempts := p.Attempts
	if attempts == 0 {
		attempts = 1
	}

	return retry.Do(fn,
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(p.BaseDelay),
		retry.MaxDelay(p.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(Retryable),
		retry.LastErrorOnly(true),
	)
}
