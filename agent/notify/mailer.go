package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	contractx "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/agent/contract"
)

type SMTPConfig struct {
	Host     string        `split_words:"true" required:"true"`
	Port     int           `split_words:"true" default:"587"`
	Username string        `split_words:"true" required:"true"`
	Password string        `split_words:"true" required:"true"`
	From     string        `split_words:"true" required:"true"`
	Timeout  time.Duration `split_words:"true" default:"10s"`
}

// SMTPNotifier delivers tour confirmations over SMTP with STARTTLS. Every
// send carries a deadline so a slow mail server cannot stall a session.
type SMTPNotifier struct {
	cfg SMTPConfig
}

var _ contractx.Notifier = (*SMTPNotifier)(nil)

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

func (n *SMTPNotifier) SendConfirmation(ctx context.Context, conf contractx.Confirmation) error {
	msg := mail.NewMsg()
	if err := msg.From(n.cfg.From); err != nil {
		return fmt.Errorf("notify: from address: %w", err)
	}
	if err := msg.To(conf.Email); err != nil {
		return fmt.Errorf("notify: to address: %w", err)
	}
	msg.Subject("Tour Confirmation")
	msg.SetBodyString(mail.TypeTextPlain, confirmationBody(conf))

	client, err := mail.NewClient(n.cfg.Host,
		mail.WithPort(n.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.cfg.Username),
		mail.WithPassword(n.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(n.cfg.Timeout),
	)
	if err != nil {
		return fmt.Errorf("notify: smtp client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("notify: send confirmation: %w", err)
	}
	return nil
}

func confirmationBody(conf contractx.Confirmation) string {
	return fmt.Sprintf(`Hi %s,

Your tour is confirmed!

Property: %s
Unit: %d
Time: %s

– Leasing Bot
`, conf.Name, conf.PropertyAddress, conf.PropertyID, conf.SlotStart.Format(time.RFC1123))
}
