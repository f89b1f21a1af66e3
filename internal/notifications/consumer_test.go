package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/aarav-aiphi/Backend/pkg/logger"
	"github.com/aarav-aiphi/Backend/pkg/mail"
)

type memoryGuard struct {
	claimed  map[string]bool
	released []string
	err      error
}

func (g *memoryGuard) Claim(_ context.Context, consumer, id string) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	key := consumer + ":" + id
	if g.claimed[key] {
		return false, nil
	}
	g.claimed[key] = true
	return true, nil
}

func (g *memoryGuard) Release(_ context.Context, consumer, id string) error {
	delete(g.claimed, consumer+":"+id)
	g.released = append(g.released, id)
	return nil
}

type stubSender struct {
	sent []mail.Message
	err  error
}

func (s *stubSender) Send(_ context.Context, msg mail.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func newTestConsumer(t *testing.T, sender *stubSender, guard *memoryGuard) *Consumer {
	t.Helper()
	c, err := NewConsumer(sender, nil, guard, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("new consumer: %v", err)
	}
	return c
}

func envelope(t *testing.T, id string) []byte {
	t.Helper()
	data, err := json.Marshal(mail.Envelope{ID: id, Message: mail.Message{To: []string{"a@example.com"}, Subject: "Hi", Text: "body"}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

var mailAttrs = map[string]string{"event_type": mail.EventTypeMailSend}

func TestHandleDeliversOnce(t *testing.T) {
	sender := &stubSender{}
	guard := &memoryGuard{claimed: map[string]bool{}}
	c := newTestConsumer(t, sender, guard)
	ctx := context.Background()

	if !c.Handle(ctx, "m1", envelope(t, "mail-1"), mailAttrs) {
		t.Fatal("expected ack")
	}
	if !c.Handle(ctx, "m2", envelope(t, "mail-1"), mailAttrs) {
		t.Fatal("expected ack for redelivery")
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one delivery, got %d", len(sender.sent))
	}
}

func TestHandleNacksAndReleasesOnSendFailure(t *testing.T) {
	sender := &stubSender{err: errors.New("smtp down")}
	guard := &memoryGuard{claimed: map[string]bool{}}
	c := newTestConsumer(t, sender, guard)

	if c.Handle(context.Background(), "m1", envelope(t, "mail-2"), mailAttrs) {
		t.Fatal("expected nack")
	}
	if len(guard.released) != 1 || guard.released[0] != "mail-2" {
		t.Fatalf("expected claim released, got %v", guard.released)
	}

	sender.err = nil
	if !c.Handle(context.Background(), "m1", envelope(t, "mail-2"), mailAttrs) {
		t.Fatal("expected retry to ack")
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected retry to deliver")
	}
}

func TestHandleDropsForeignAndMalformedMessages(t *testing.T) {
	sender := &stubSender{}
	guard := &memoryGuard{claimed: map[string]bool{}}
	c := newTestConsumer(t, sender, guard)
	ctx := context.Background()

	if !c.Handle(ctx, "m1", envelope(t, "x"), map[string]string{"event_type": "other"}) {
		t.Fatal("expected ack for foreign event")
	}
	if !c.Handle(ctx, "m2", []byte("{"), mailAttrs) {
		t.Fatal("expected ack for malformed payload")
	}
	if len(sender.sent) != 0 {
		t.Fatal("expected nothing sent")
	}
}

func TestHandleNacksWhenGuardUnavailable(t *testing.T) {
	guard := &memoryGuard{claimed: map[string]bool{}, err: errors.New("redis down")}
	c := newTestConsumer(t, &stubSender{}, guard)
	if c.Handle(context.Background(), "m1", envelope(t, "mail-3"), mailAttrs) {
		t.Fatal("expected nack")
	}
}
