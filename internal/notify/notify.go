// Package notify delivers best-effort order notifications.
//
// Delivery never blocks the caller and failures never reach it: the
// Dispatcher sends on its own goroutine, logs and counts the outcome.
package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"FreshBasket/pkg/kit"
)

type Message struct {
	Subject string `json:"subject"`
	Body    string `json:"message"`
	OrderID string `json:"order_id,omitempty"`
}

type Sink interface {
	Send(ctx context.Context, m Message) error
}

// LogSink writes notifications to the log. It is the sink when no broker is configured.
type LogSink struct {
	Log *zap.Logger
}

func (s LogSink) Send(_ context.Context, m Message) error {
	s.Log.Info("notification",
		zap.String("subject", m.Subject),
		zap.String("message", m.Body),
		zap.String("order_id", m.OrderID),
	)
	return nil
}

// RedisSink publishes each message as JSON on a pub/sub channel.
type RedisSink struct {
	Client  *redis.Client
	Channel string
}

func (s RedisSink) Send(ctx context.Context, m Message) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return s.Client.Publish(ctx, s.Channel, payload).Err()
}

type Dispatcher struct {
	sink    Sink
	timeout time.Duration
	log     *zap.Logger
	metrics *kit.Metrics

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(sink Sink, timeout time.Duration, log *zap.Logger, metrics *kit.Metrics) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{sink: sink, timeout: timeout, log: log, metrics: metrics}
}

// Notify queues m for delivery and returns immediately.
func (d *Dispatcher) Notify(m Message) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.log.Warn("notification dropped after shutdown", zap.String("order_id", m.OrderID))
		d.metrics.Notification("dropped")
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.sink.Send(ctx, m); err != nil {
			d.log.Warn("notification failed", zap.Error(err), zap.String("order_id", m.OrderID))
			d.metrics.Notification("failed")
			return
		}
		d.metrics.Notification("sent")
	}()
}

// Close stops accepting messages and waits for in-flight sends, or for ctx.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
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
