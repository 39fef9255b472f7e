package mailer

import (
	"fmt"

	"github.com/Abdurahmanit/wanderlust/internal/platform/logger"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

const listingCreatedSubject = "New Listing Created"

// dialer is the part of gomail.Dialer the mailer uses.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer sends transactional mail through an SMTP relay.
type SMTPMailer struct {
	from   string
	dialer dialer
	logger *logger.Logger
}

func NewSMTPMailer(host string, port int, from, password string, log *logger.Logger) *SMTPMailer {
	return &SMTPMailer{
		from:   from,
		dialer: gomail.NewDialer(host, port, from, password),
		logger: log.Named("SMTPMailer"),
	}
}

// SendListingCreatedEmail tells the owner their listing is live.
func (m *SMTPMailer) SendListingCreatedEmail(toEmail, listingTitle string) error {
	msg := m.listingCreatedMessage(toEmail, listingTitle)
	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Error("Failed to send listing created email", zap.String("to", toEmail), zap.Error(err))
		return fmt.Errorf("send listing created email to %s: %w", toEmail, err)
	}
	m.logger.Info("Listing created email sent", zap.String("to", toEmail))
	return nil
}

func (m *SMTPMailer) listingCreatedMessage(toEmail, listingTitle string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", listingCreatedSubject)
	msg.SetBody("text/plain", "Your listing '"+listingTitle+"' has been created successfully.")
	return msg
}
