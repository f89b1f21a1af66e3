package mail

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aarav-aiphi/Backend/pkg/config"
)

func TestMessageValidate(t *testing.T) {
	msg, err := Message{To: []string{" a@example.com ", ""}, Subject: "Hi", Text: "body"}.Validate()
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(msg.To) != 1 || msg.To[0] != "a@example.com" {
		t.Fatalf("unexpected recipients %v", msg.To)
	}
	if _, err := (Message{Subject: "Hi", Text: "x"}).Validate(); !errors.Is(err, ErrNoRecipients) {
		t.Fatalf("expected no recipients error, got %v", err)
	}
	if _, err := (Message{To: []string{"a@b.c"}, Text: "x"}).Validate(); err == nil {
		t.Fatal("expected subject error")
	}
	if _, err := (Message{To: []string{"a@b.c"}, Subject: "s"}).Validate(); err == nil {
		t.Fatal("expected body error")
	}
}

func TestDecodeEnvelope(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"id":"m1","message":{"to":["a@b.c"],"subject":"s","text":"t"}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.ID != "m1" || env.Message.Subject != "s" {
		t.Fatalf("unexpected envelope %+v", env)
	}
	if _, err := DecodeEnvelope([]byte(`{"message":{}}`)); err == nil {
		t.Fatal("expected missing id error")
	}
	if _, err := DecodeEnvelope([]byte(`nope`)); err == nil {
		t.Fatal("expected decode error")
	}
}

type recordingSender struct {
	mu   sync.Mutex
	sent []Message
	err  error
	hold time.Duration
}

func (r *recordingSender) Send(ctx context.Context, msg Message) error {
	if r.hold > 0 {
		select {
		case <-time.After(r.hold):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return r.err
}

func TestNotifierDeliversAfterRequestCancel(t *testing.T) {
	sender := &recordingSender{hold: 20 * time.Millisecond}
	n := NewNotifier(sender, nil, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	n.Notify(ctx, Message{To: []string{"a@b.c"}, Subject: "s", Text: "t"})
	cancel()
	n.Wait()

	if len(sender.sent) != 1 {
		t.Fatalf("expected delivery to survive request cancellation, got %d", len(sender.sent))
	}
}

func TestNotifierBoundsSlowSenders(t *testing.T) {
	sender := &recordingSender{hold: time.Second}
	n := NewNotifier(sender, nil, 10*time.Millisecond)

	start := time.Now()
	if err := n.Send(context.Background(), Message{To: []string{"a@b.c"}, Subject: "s", Text: "t"}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Fatal("timeout was not applied")
	}
}

func TestNewSMTPSenderValidation(t *testing.T) {
	if _, err := NewSMTPSender(config.SMTPConfig{}, config.MailConfig{From: "a@b.c"}); err == nil {
		t.Fatal("expected missing host error")
	}
	if _, err := NewSMTPSender(config.SMTPConfig{Host: "h", Port: 25}, config.MailConfig{}); err == nil {
		t.Fatal("expected missing from error")
	}
	if _, err := NewSMTPSender(config.SMTPConfig{Host: "h", Port: 25, TLSMode: "ssl3"}, config.MailConfig{From: "a@b.c"}); err == nil {
		t.Fatal("expected tls mode error")
	}
}

// fakeSMTPServer speaks just enough SMTP for a plaintext delivery.
func fakeSMTPServer(t *testing.T, conn net.Conn, data chan<- string) {
	t.Helper()
	defer conn.Close()
	r := bufio.NewReader(conn)
	write := func(line string) { _, _ = conn.Write([]byte(line + "\r\n")) }

	write("220 test ESMTP")
	var body strings.Builder
	inData := false
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		if inData {
			if line == ".\r\n" {
				inData = false
				data <- body.String()
				write("250 OK")
				continue
			}
			body.WriteString(line)
			continue
		}
		cmd := strings.ToUpper(strings.TrimSpace(line))
		switch {
		case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
			write("250 test")
		case strings.HasPrefix(cmd, "MAIL"), strings.HasPrefix(cmd, "RCPT"):
			write("250 OK")
		case cmd == "DATA":
			inData = true
			write("354 go ahead")
		case cmd == "QUIT":
			write("221 bye")
			return
		default:
			write("250 OK")
		}
	}
}

func TestSMTPSenderPlaintextDelivery(t *testing.T) {
	data := make(chan string, 1)
	sender, err := NewSMTPSender(
		config.SMTPConfig{Host: "smtp.test", Port: 25, TLSMode: "none"},
		config.MailConfig{From: "noreply@aiazent.ai", FromName: "AiAzent"},
	)
	if err != nil {
		t.Fatalf("new sender: %v", err)
	}
	sender.dial = func(ctx context.Context, addr string) (net.Conn, error) {
		client, server := net.Pipe()
		go fakeSMTPServer(t, server, data)
		return client, nil
	}

	err = sender.Send(context.Background(), Message{
		To:      []string{"user@example.com"},
		Subject: "Your Change Request has been Approved",
		Text:    "Hello ada,",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case body := <-data:
		for _, want := range []string{
			"From: AiAzent <noreply@aiazent.ai>",
			"To: user@example.com",
			"Subject: Your Change Request has been Approved",
			"Hello ada,",
		} {
			if !strings.Contains(body, want) {
				t.Fatalf("expected %q in message body:\n%s", want, body)
			}
		}
	case <-time.After(time.Second):
		t.Fatal("server did not receive message")
	}
}

func TestNewSenderSelectsTransport(t *testing.T) {
	cfg := &config.Config{
		Mail: config.MailConfig{Transport: "none"},
		SMTP: config.SMTPConfig{Host: "smtp.example.com", Port: 587, TLSMode: "starttls"},
	}
	sender, err := NewSender(cfg, nil)
	if err != nil {
		t.Fatalf("none transport: %v", err)
	}
	if _, ok := sender.(Discard); !ok {
		t.Fatalf("expected Discard, got %T", sender)
	}

	cfg.Mail = config.MailConfig{Transport: "SMTP", From: "noreply@example.com"}
	sender, err = NewSender(cfg, nil)
	if err != nil {
		t.Fatalf("smtp transport: %v", err)
	}
	if _, ok := sender.(*SMTPSender); !ok {
		t.Fatalf("expected *SMTPSender, got %T", sender)
	}

	cfg.Mail.Transport = "pubsub"
	if _, err := NewSender(cfg, nil); err == nil {
		t.Fatal("expected error without a mail publisher")
	}

	cfg.Mail.Transport = "carrier-pigeon"
	if _, err := NewSender(cfg, nil); err == nil {
		t.Fatal("expected unsupported transport error")
	}
}
