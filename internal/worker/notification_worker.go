package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nxzen/ticketdesk/internal/notify"
)

const sendTimeout = 15 * time.Second

// NotificationWorker delivers queued mail off the request path. Delivery is
// fire-and-forget: failures are logged and never surfaced to callers, and a
// full queue drops the message rather than blocking a request.
type NotificationWorker struct {
	mailer notify.Mailer
	logger *zap.Logger
	queue  chan notify.Message
	wg     sync.WaitGroup
	once   sync.Once
}

// NewNotificationWorker builds a worker with the given queue capacity.
func NewNotificationWorker(mailer notify.Mailer, logger *zap.Logger, capacity int) *NotificationWorker {
	if capacity <= 0 {
		capacity = 128
	}
	return &NotificationWorker{
		mailer: mailer,
		logger: logger,
		queue:  make(chan notify.Message, capacity),
	}
}

// Start launches the delivery loop. Call once.
func (w *NotificationWorker) Start() {
	w.wg.Add(1)
	go w.run()
}

func (w *NotificationWorker) run() {
	defer w.wg.Done()
	for msg := range w.queue {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		if err := w.mailer.Send(ctx, msg); err != nil {
			w.logger.Warn("mail delivery failed",
				zap.Strings("to", msg.To),
				zap.String("subject", msg.Subject),
				zap.Error(err))
		}
		cancel()
	}
}

// Enqueue hands a message to the delivery loop without blocking.
func (w *NotificationWorker) Enqueue(msg notify.Message) {
	select {
	case w.queue <- msg:
	default:
		w.logger.Warn("notification queue full, dropping message",
			zap.String("subject", msg.Subject))
	}
}

// Shutdown drains the queue and stops the loop.
func (w *NotificationWorker) Shutdown() {
	w.once.Do(func() { close(w.queue) })
	w.wg.Wait()
}
