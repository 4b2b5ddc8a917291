package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/shreeglass/erp-backend/pkg/db/models"
	"github.com/shreeglass/erp-backend/pkg/enums"
	"github.com/shreeglass/erp-backend/pkg/logger"
	"github.com/shreeglass/erp-backend/pkg/mailer"
)

const dedupWindow = 60 * time.Minute

// EmailSender sends one HTML email with optional attachments.
type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string, attachments ...mailer.Attachment) error
}

// WhatsAppSender sends one text message to a phone number.
type WhatsAppSender interface {
	SendMessage(ctx context.Context, phone, message string) error
}

// Deduper is the Redis slice used for the send-once window.
type Deduper interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	DedupKey(parts ...string) string
}

// Recipient is the resolved destination with channel opt-ins.
type Recipient struct {
	Email         string
	Phone         string
	EmailOptIn    bool
	WhatsAppOptIn bool
}

// Service fans notifications out to email and WhatsApp. Sends are async,
// deduplicated for an hour per (entity, transition, channel), retried with
// growing backoff, and never block or fail the transition that caused them.
type Service struct {
	email    EmailSender
	whatsapp WhatsAppSender
	dedup    Deduper
	logg     *logger.Logger
	backoff  []time.Duration
}

func NewService(email EmailSender, whatsapp WhatsAppSender, dedup Deduper, logg *logger.Logger) *Service {
	return &Service{
		email:    email,
		whatsapp: whatsapp,
		dedup:    dedup,
		logg:     logg,
		backoff:  []time.Duration{time.Second, 8 * time.Second, 64 * time.Second},
	}
}

// OrderTransition fans out one order transition. Attachments (the invoice
// PDF on dispatch) ride along on the email channel only.
func (s *Service) OrderTransition(order *models.Order, transition enums.OrderTransition, attachments ...mailer.Attachment) {
	recipient := Recipient{
		Email:         order.CustomerEmail,
		Phone:         order.CustomerPhone,
		EmailOptIn:    true,
		WhatsAppOptIn: true,
	}
	go s.deliverOrderTransition(context.Background(), order, transition, recipient, attachments)
}

func (s *Service) deliverOrderTransition(ctx context.Context, order *models.Order, transition enums.OrderTransition, recipient Recipient, attachments []mailer.Attachment) {
	entity := order.ID.String()

	if msg, ok := RenderOrder(order, transition, enums.ChannelEmail); ok {
		if recipient.EmailOptIn && recipient.Email != "" && s.email != nil {
			if s.claim(ctx, entity, string(transition), enums.ChannelEmail) {
				s.withRetry(ctx, "email "+string(transition), func(ctx context.Context) error {
					return s.email.Send(ctx, recipient.Email, msg.Subject, msg.Body, attachments...)
				})
			}
		}
	}

	if msg, ok := RenderOrder(order, transition, enums.ChannelWhatsApp); ok {
		if recipient.WhatsAppOptIn && recipient.Phone != "" && s.whatsapp != nil {
			if s.claim(ctx, entity, string(transition), enums.ChannelWhatsApp) {
				s.withRetry(ctx, "whatsapp "+string(transition), func(ctx context.Context) error {
					return s.whatsapp.SendMessage(ctx, recipient.Phone, msg.Body)
				})
			}
		}
	}
}

// JobworkMilestone announces a job-work milestone over WhatsApp.
func (s *Service) JobworkMilestone(order *models.JobworkOrder, milestone enums.JobworkMilestone) {
	go s.deliverJobworkMilestone(context.Background(), order, milestone)
}

func (s *Service) deliverJobworkMilestone(ctx context.Context, order *models.JobworkOrder, milestone enums.JobworkMilestone) {
	msg, ok := RenderJobworkMilestone(order, milestone)
	if !ok || order.CustomerPhone == "" || s.whatsapp == nil {
		return
	}
	if !s.claim(ctx, order.ID.String(), string(milestone), enums.ChannelWhatsApp) {
		return
	}
	s.withRetry(ctx, "whatsapp jobwork "+string(milestone), func(ctx context.Context) error {
		return s.whatsapp.SendMessage(ctx, order.CustomerPhone, msg.Body)
	})
}

// AdminAlert emails the back-office lists directly, bypassing templates.
// Used by scheduled jobs.
func (s *Service) AdminAlert(ctx context.Context, emails []string, subject, body string, attachments ...mailer.Attachment) {
	if s.email == nil {
		return
	}
	for _, to := range emails {
		to := to
		s.withRetry(ctx, "admin email "+subject, func(ctx context.Context) error {
			return s.email.Send(ctx, to, subject, body, attachments...)
		})
	}
}

// AdminWhatsApp pushes one short message to each back-office number. Per
// recipient failures are combined so one dead number cannot hide the rest.
func (s *Service) AdminWhatsApp(ctx context.Context, numbers []string, message string) error {
	if s.whatsapp == nil {
		return nil
	}
	var errs []error
	for _, phone := range numbers {
		if err := s.whatsapp.SendMessage(ctx, phone, message); err != nil {
			errs = append(errs, fmt.Errorf("whatsapp %s: %w", phone, err))
		}
	}
	return multierr.Combine(errs...)
}

// claim reserves the (entity, transition, channel) send slot for an hour.
// Redis trouble fails open so an outage never silences notifications.
func (s *Service) claim(ctx context.Context, entity, transition string, channel enums.NotificationChannel) bool {
	if s.dedup == nil {
		return true
	}
	key := s.dedup.DedupKey(entity, transition, string(channel))
	ok, err := s.dedup.SetNX(ctx, key, time.Now().Unix(), dedupWindow)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "notification dedup check failed, sending anyway")
		}
		return true
	}
	return ok
}

func (s *Service) withRetry(ctx context.Context, name string, send func(ctx context.Context) error) {
	err := send(ctx)
	if err == nil {
		return
	}
	for _, delay := range s.backoff {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
		if err = send(ctx); err == nil {
			return
		}
	}
	if s.logg != nil {
		s.logg.Error(ctx, "notification dropped after retries: "+name, err)
	}
}
