package mail

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
)

// EventTypeMailSend marks queued mail on the Pub/Sub topic.
const EventTypeMailSend = "mail.send"

// Envelope is the queued form of a Message.
type Envelope struct {
	ID      string  `json:"id"`
	Message Message `json:"message"`
}

type publisher interface {
	Publish(ctx context.Context, msg *pubsub.Message) *pubsub.PublishResult
}

// QueueSender hands messages to the mail worker through Pub/Sub.
type QueueSender struct {
	publisher publisher
}

// NewQueueSender wraps the mail topic publisher.
func NewQueueSender(p *pubsub.Publisher) (*QueueSender, error) {
	if p == nil {
		return nil, fmt.Errorf("mail publisher is required")
	}
	return &QueueSender{publisher: p}, nil
}

// Send publishes msg and waits for the broker acknowledgement.
func (q *QueueSender) Send(ctx context.Context, msg Message) error {
	msg, err := msg.Validate()
	if err != nil {
		return err
	}
	env := Envelope{ID: uuid.NewString(), Message: msg}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode mail envelope: %w", err)
	}
	result := q.publisher.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event_type": EventTypeMailSend,
			"mail_id":    env.ID,
		},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish mail: %w", err)
	}
	return nil
}

// DecodeEnvelope parses a queued mail payload.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode mail envelope: %w", err)
	}
	if env.ID == "" {
		return Envelope{}, fmt.Errorf("mail envelope missing id")
	}
	return env, nil
}
