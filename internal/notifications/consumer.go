// Package notifications delivers queued transactional email.
package notifications

import (
	"context"
	"errors"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/aarav-aiphi/Backend/pkg/logger"
	"github.com/aarav-aiphi/Backend/pkg/mail"
)

const mailConsumer = "mail-delivery"

type claimer interface {
	Claim(ctx context.Context, consumer, messageID string) (bool, error)
	Release(ctx context.Context, consumer, messageID string) error
}

// Consumer pulls mail envelopes off Pub/Sub and hands them to a sender.
type Consumer struct {
	sender       mail.Sender
	subscription *pubsub.Subscriber
	guard        claimer
	logg         *logger.Logger
}

// NewConsumer builds a mail consumer. subscription may be nil when only
// Handle is used.
func NewConsumer(sender mail.Sender, subscription *pubsub.Subscriber, guard claimer, logg *logger.Logger) (*Consumer, error) {
	if sender == nil {
		return nil, fmt.Errorf("mail sender required")
	}
	if guard == nil {
		return nil, fmt.Errorf("idempotency guard required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{sender: sender, subscription: subscription, guard: guard, logg: logg}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	if c.subscription == nil {
		return fmt.Errorf("mail subscription required")
	}
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if c.Handle(ctx, msg.ID, msg.Data, msg.Attributes) {
			msg.Ack()
			return
		}
		msg.Nack()
	})
}

// Handle processes one delivery and reports whether it should be acked.
// Malformed payloads are acked and dropped; send failures release the claim
// and nack so Pub/Sub redelivers.
func (c *Consumer) Handle(ctx context.Context, messageID string, data []byte, attrs map[string]string) bool {
	eventType := attrs["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": messageID,
		"event_type": eventType,
	})

	if eventType != mail.EventTypeMailSend {
		c.logg.Info(logCtx, "skipping non-mail event")
		return true
	}

	env, err := mail.DecodeEnvelope(data)
	if err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return true
	}
	logCtx = c.logg.WithField(logCtx, "mail_id", env.ID)

	claimed, err := c.guard.Claim(ctx, mailConsumer, env.ID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return false
	}
	if !claimed {
		c.logg.Info(logCtx, "mail already delivered")
		return true
	}

	if err := c.sender.Send(ctx, env.Message); err != nil {
		if errors.Is(err, mail.ErrNoRecipients) {
			c.logg.Warn(logCtx, "dropping mail without recipients")
			return true
		}
		c.logg.Error(logCtx, "mail delivery failed", err)
		if relErr := c.guard.Release(ctx, mailConsumer, env.ID); relErr != nil {
			c.logg.Error(logCtx, "failed to release idempotency claim", relErr)
		}
		return false
	}
	c.logg.Info(logCtx, "mail delivered")
	return true
}
