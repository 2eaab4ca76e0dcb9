package publishers

import (
	"context"
	"sync"
	"time"

	"github.com/samvad-hq/samvad-request-client/internal/domain"
)

// Notifier turns token evictions into published events. It satisfies the
// request client's eviction listener.
type Notifier struct {
	fanout  *Fanout
	timeout time.Duration
	log     Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewNotifier returns a Notifier publishing through fanout, each event bounded by timeout.
func NewNotifier(fanout *Fanout, timeout time.Duration, log Logger) *Notifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{fanout: fanout, timeout: timeout, log: ensureLogger(log)}
}

// TokenEvicted publishes the eviction in the background. The publish outlives
// the request that triggered it.
func (n *Notifier) TokenEvicted(ctx context.Context, ev domain.Eviction) {
	if n == nil || n.fanout.Size() == 0 {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	evt := NewEvent(ev)
	base := context.WithoutCancel(ctx)

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		n.log.WarnObj("eviction event dropped; notifier closed", "eviction", ev)
		return
	}
	n.wg.Add(1)
	n.mu.Unlock()

	go func() {
		defer n.wg.Done()
		pctx, cancel := context.WithTimeout(base, n.timeout)
		defer cancel()

		delivered, err := n.fanout.Publish(pctx, evt)
		if err != nil {
			n.log.ErrorObj("eviction event publish failed", "eviction_publish_error", map[string]any{
				"event_id":  evt.ID,
				"delivered": delivered,
				"error":     err.Error(),
			})
			return
		}
		n.log.InfoObj("eviction event published", "eviction_publish", map[string]any{
			"event_id":  evt.ID,
			"reason":    ev.Reason,
			"delivered": delivered,
		})
	}()
}

// Close waits for in-flight publishes and releases the sinks. Evictions
// reported after Close are dropped.
func (n *Notifier) Close() error {
	if n == nil {
		return nil
	}
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	n.mu.Unlock()

	n.wg.Wait()
	return n.fanout.Close()
}
