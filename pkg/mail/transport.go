package mail

import (
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/aarav-aiphi/Backend/pkg/config"
)

// NewSender picks the transport named in cfg.Mail.Transport. The pubsub
// transport needs the mail topic publisher; the others ignore it.
func NewSender(cfg *config.Config, publisher *pubsub.Publisher) (Sender, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Mail.Transport)) {
	case config.MailTransportSMTP:
		return NewSMTPSender(cfg.SMTP, cfg.Mail)
	case config.MailTransportPubSub:
		return NewQueueSender(publisher)
	case config.MailTransportNone:
		return Discard{}, nil
	default:
		return nil, fmt.Errorf("unsupported mail transport %q", cfg.Mail.Transport)
	}
}
