package notification

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const deliverTimeout = 5 * time.Second

// Dispatcher hands notifications to a sink on background workers. Dispatch
// never blocks: when the queue is full the notification is dropped.
type Dispatcher struct {
	sink    Sink
	logger  *zap.Logger
	queue   chan Notification
	wg      sync.WaitGroup
	closed  atomic.Bool
	mu      sync.RWMutex
	dropped atomic.Int64
}

func NewDispatcher(sink Sink, queueSize, workers int, logger *zap.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 100
	}
	if workers <= 0 {
		workers = 1
	}
	d := &Dispatcher{
		sink:   sink,
		logger: logger,
		queue:  make(chan Notification, queueSize),
	}
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker()
	}
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for n := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
		if err := d.sink.Deliver(ctx, &n); err != nil {
			d.logger.Warn("notification delivery failed",
				zap.Int64("user_id", n.UserID),
				zap.String("type", string(n.Type)),
				zap.Error(err),
			)
		}
		cancel()
	}
}

func (d *Dispatcher) Dispatch(n Notification) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed.Load() {
		d.drop(n, "dispatcher closed")
		return
	}
	select {
	case d.queue <- n:
	default:
		d.drop(n, "queue full")
	}
}

func (d *Dispatcher) drop(n Notification, reason string) {
	d.dropped.Add(1)
	d.logger.Warn("notification dropped",
		zap.String("reason", reason),
		zap.Int64("user_id", n.UserID),
		zap.String("type", string(n.Type)),
	)
}

// Dropped reports how many notifications were discarded.
func (d *Dispatcher) Dropped() int64 { return d.dropped.Load() }

// Close stops accepting notifications and waits until the queue is drained
// or ctx is done.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed.Swap(true) {
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
