package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/aarav-aiphi/Backend/pkg/config"
	"github.com/google/uuid"
)

const (
	tlsModeImplicit = "tls"
	tlsModeStart    = "starttls"
	tlsModeNone     = "none"
)

// SMTPSender delivers mail through an SMTP relay.
type SMTPSender struct {
	cfg      config.SMTPConfig
	from     string
	fromName string
	dial     func(ctx context.Context, addr string) (net.Conn, error)
}

// NewSMTPSender builds a sender from SMTP settings and the configured from address.
func NewSMTPSender(cfg config.SMTPConfig, mailCfg config.MailConfig) (*SMTPSender, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("smtp host and port are required")
	}
	from := strings.TrimSpace(mailCfg.From)
	if from == "" {
		from = cfg.Username
	}
	if from == "" {
		return nil, fmt.Errorf("mail from address is required")
	}
	switch strings.ToLower(cfg.TLSMode) {
	case tlsModeImplicit, tlsModeStart, tlsModeNone, "":
	default:
		return nil, fmt.Errorf("unsupported smtp tls mode %q", cfg.TLSMode)
	}
	return &SMTPSender{cfg: cfg, from: from, fromName: mailCfg.FromName}, nil
}

// Send delivers msg, honouring ctx for the dial and the overall deadline.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	msg, err := msg.Validate()
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
	conn, err := s.connect(ctx, addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Close()

	if strings.EqualFold(s.cfg.TLSMode, tlsModeStart) || s.cfg.TLSMode == "" {
		if err := client.StartTLS(s.tlsConfig()); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if s.cfg.Username != "" && s.cfg.Password != "" {
		if err := client.Auth(smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := client.Mail(s.from); err != nil {
		return fmt.Errorf("smtp MAIL: %w", err)
	}
	for _, rcpt := range msg.To {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp RCPT %s: %w", rcpt, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(s.render(msg)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}
	return client.Quit()
}

func (s *SMTPSender) connect(ctx context.Context, addr string) (net.Conn, error) {
	if s.dial != nil {
		return s.dial(ctx, addr)
	}
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	if strings.EqualFold(s.cfg.TLSMode, tlsModeImplicit) {
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: s.tlsConfig()}
		conn, err := tlsDialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("smtp tls dial: %w", err)
		}
		return conn, nil
	}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("smtp dial: %w", err)
	}
	return conn, nil
}

func (s *SMTPSender) tlsConfig() *tls.Config {
	return &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}
}

func (s *SMTPSender) render(msg Message) []byte {
	from := s.from
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.from)
	}
	boundary := "az-" + uuid.NewString()

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary)
	if msg.Text != "" {
		fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s\r\n", boundary, msg.Text)
	}
	if msg.HTML != "" {
		fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s\r\n", boundary, msg.HTML)
	}
	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}
