package mail

import (
	"context"
	"errors"
	"strings"
)

// Message is a single outbound email.
type Message struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text,omitempty"`
	HTML    string   `json:"html,omitempty"`
}

// Sender delivers a message synchronously.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ErrNoRecipients is returned for messages without a usable address.
var ErrNoRecipients = errors.New("mail message has no recipients")

// Validate trims recipients and rejects empty messages.
func (m Message) Validate() (Message, error) {
	to := make([]string, 0, len(m.To))
	for _, addr := range m.To {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, addr)
		}
	}
	if len(to) == 0 {
		return Message{}, ErrNoRecipients
	}
	if strings.TrimSpace(m.Subject) == "" {
		return Message{}, errors.New("mail subject is required")
	}
	if m.Text == "" && m.HTML == "" {
		return Message{}, errors.New("mail body is required")
	}
	m.To = to
	return m, nil
}

// Discard drops every message. Used when mail transport is "none".
type Discard struct{}

func (Discard) Send(context.Context, Message) error { return nil }
