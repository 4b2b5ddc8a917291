package notify

import (
	"context"

	"github.com/shreeglass/erp-backend/pkg/mailer"
	"github.com/shreeglass/erp-backend/pkg/whatsapp"
)

// MailerSender adapts the SMTP mailer to the single-recipient sends this
// package makes.
type MailerSender struct {
	mailer *mailer.Mailer
}

func NewMailerSender(m *mailer.Mailer) *MailerSender {
	return &MailerSender{mailer: m}
}

func (s *MailerSender) Send(ctx context.Context, to, subject, htmlBody string, attachments ...mailer.Attachment) error {
	return s.mailer.Send(ctx, []string{to}, subject, htmlBody, attachments...)
}

// WhatsAppClientSender adapts the WhatsApp client, dropping the provider
// response this package has no use for.
type WhatsAppClientSender struct {
	client *whatsapp.Client
}

func NewWhatsAppClientSender(c *whatsapp.Client) *WhatsAppClientSender {
	return &WhatsAppClientSender{client: c}
}

func (s *WhatsAppClientSender) SendMessage(ctx context.Context, phone, message string) error {
	_, err := s.client.SendMessage(ctx, phone, message)
	return err
}
