package mail

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aarav-aiphi/Backend/pkg/logger"
)

const defaultSendTimeout = 15 * time.Second

// Notifier dispatches mail off the request path. Failures are logged, never returned.
type Notifier struct {
	sender  Sender
	logg    *logger.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewNotifier wraps sender with bounded, asynchronous delivery.
func NewNotifier(sender Sender, logg *logger.Logger, timeout time.Duration) *Notifier {
	if sender == nil {
		sender = Discard{}
	}
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &Notifier{sender: sender, logg: logg, timeout: timeout}
}

// Notify sends msg in the background. Request-scoped log fields are kept but
// cancellation of ctx does not abort delivery.
func (n *Notifier) Notify(ctx context.Context, msg Message) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
		defer cancel()

		if err := n.sender.Send(sendCtx, msg); err != nil {
			if n.logg == nil || errors.Is(err, ErrNoRecipients) {
				return
			}
			logCtx := n.logg.WithFields(ctx, map[string]any{"mail_subject": msg.Subject, "mail_to": msg.To})
			n.logg.Error(logCtx, "mail delivery failed", err)
		}
	}()
}

// Send delivers synchronously under the notifier timeout.
func (n *Notifier) Send(ctx context.Context, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()
	return n.sender.Send(ctx, msg)
}

// Wait blocks until queued deliveries finish.
func (n *Notifier) Wait() {
	n.wg.Wait()
}
