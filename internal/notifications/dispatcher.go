package notifications

import (
	"context"
	"sync"
	"time"

	"codeberg.org/tasklist/server/internal/logger"
)

const defaultDispatchTimeout = 5 * time.Second

// sends events in the background; failures are logged and never reach the caller
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	wg       sync.WaitGroup
	now      func() time.Time
}

func NewDispatcher(notifier Notifier, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultDispatchTimeout
	}

	return &Dispatcher{
		notifier: notifier,
		timeout:  timeout,
		now:      time.Now,
	}
}

// fire-and-forget; the request context may be cancelled before delivery
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) {
	if d == nil || d.notifier == nil {
		return
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = d.now().UTC()
	}

	log := logger.FromContext(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		sendCtx, cancel := context.WithTimeout(logger.WithContext(context.Background(), log), d.timeout)
		defer cancel()

		if err := d.notifier.Notify(sendCtx, event); err != nil {
			log.Warn("notification failed",
				"type", event.Type,
				"user_id", event.UserID,
				"error", err,
			)
		}
	}()
}

// blocks until in-flight notifications finish; called on shutdown
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}

	d.wg.Wait()
}
