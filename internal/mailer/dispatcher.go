package mailer

import (
	"context"
	"log/slog"
	"sync"

	"linkup/internal/middleware"
	"linkup/internal/observability"
)

const defaultQueueSize = 64

// Dispatcher delivers notification email off the request path. Failures are
// logged and counted, never surfaced to the caller.
type Dispatcher struct {
	mailer Mailer
	queue  chan CommentNotification
	wg     sync.WaitGroup
	once   sync.Once
}

// NewDispatcher wraps a Mailer with an asynchronous delivery queue.
func NewDispatcher(m Mailer) *Dispatcher {
	return &Dispatcher{
		mailer: m,
		queue:  make(chan CommentNotification, defaultQueueSize),
	}
}

// Start launches the delivery worker. It stops when ctx is canceled.
func (d *Dispatcher) Start(ctx context.Context) {
	d.once.Do(func() {
		d.wg.Add(1)
		go d.run(ctx)
	})
}

func (d *Dispatcher) run(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-d.queue:
			if !ok {
				return
			}
			if err := d.mailer.SendCommentNotification(msg); err != nil {
				observability.NotificationEmailsTotal.WithLabelValues("error").Inc()
				middleware.Logger.Warn("notification email failed",
					slog.String("to", msg.To),
					slog.String("error", err.Error()),
				)
				continue
			}
			observability.NotificationEmailsTotal.WithLabelValues("sent").Inc()
		}
	}
}

// Enqueue queues a notification for delivery. When the queue is full the
// message is dropped and logged, keeping the request path non-blocking.
func (d *Dispatcher) Enqueue(msg CommentNotification) {
	select {
	case d.queue <- msg:
	default:
		observability.NotificationEmailsTotal.WithLabelValues("dropped").Inc()
		middleware.Logger.Warn("notification email queue full, dropping message",
			slog.String("to", msg.To),
		)
	}
}

// Close drains the queue and waits for the worker to exit.
func (d *Dispatcher) Close() {
	close(d.queue)
	d.wg.Wait()
}
