package publishers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds how often a single publisher is retried for one event.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy retries twice starting at 200ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 2, InitialInterval: 200 * time.Millisecond, MaxInterval: 2 * time.Second}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		exp.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		exp.MaxInterval = p.MaxInterval
	}
	exp.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(exp, p.MaxRetries), ctx)
}

// Fanout dispatches events to all configured publishers.
type Fanout struct {
	publishers []Publisher
	retry      RetryPolicy
	log        Logger
}

// FanoutOption customises a Fanout.
type FanoutOption func(*Fanout)

// WithRetryPolicy overrides the per-publisher retry policy.
func WithRetryPolicy(p RetryPolicy) FanoutOption {
	return func(f *Fanout) { f.retry = p }
}

// WithFanoutLogger sets the logger used for retry diagnostics.
func WithFanoutLogger(log Logger) FanoutOption {
	return func(f *Fanout) { f.log = ensureLogger(log) }
}

// NewFanout builds a dispatcher that fans out events across publishers.
func NewFanout(pubs []Publisher, opts ...FanoutOption) *Fanout {
	cp := make([]Publisher, 0, len(pubs))
	for _, p := range pubs {
		if p == nil {
			continue
		}
		cp = append(cp, p)
	}
	f := &Fanout{publishers: cp, retry: DefaultRetryPolicy(), log: noopLogger{}}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Publish forwards the event to every registered publisher.
// It returns the number of publishers that successfully handled the event.
func (f *Fanout) Publish(ctx context.Context, evt Event) (int, error) {
	if f == nil || len(f.publishers) == 0 {
		return 0, nil
	}

	var errs []error
	successful := 0
	for _, p := range f.publishers {
		if err := f.publishWithRetry(ctx, p, evt); err != nil {
			errs = append(errs, fmt.Errorf("%s publisher[%s]: %w", p.Type(), p.ID(), err))
		} else {
			successful++
		}
	}
	return successful, errors.Join(errs...)
}

func (f *Fanout) publishWithRetry(ctx context.Context, p Publisher, evt Event) error {
	attempt := 0
	op := func() error {
		attempt++
		return p.Publish(ctx, evt)
	}
	notify := func(err error, wait time.Duration) {
		f.log.WarnObj("publisher attempt failed, retrying", "publisher_retry", map[string]any{
			"publisher_id": p.ID(),
			"attempt":      attempt,
			"wait_ms":      wait.Milliseconds(),
			"error":        err.Error(),
		})
	}
	return backoff.RetryNotify(op, f.retry.backOff(ctx), notify)
}

// Size returns the number of active publishers.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.publishers)
}

// Close releases publishers that hold connections.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	return closeAll(f.publishers)
}
