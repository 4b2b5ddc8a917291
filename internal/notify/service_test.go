package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shreeglass/erp-backend/pkg/db/models"
	"github.com/shreeglass/erp-backend/pkg/enums"
	"github.com/shreeglass/erp-backend/pkg/mailer"
)

type stubEmail struct {
	mu    sync.Mutex
	sent  []string
	fails int
}

func (s *stubEmail) Send(ctx context.Context, to, subject, htmlBody string, attachments ...mailer.Attachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fails > 0 {
		s.fails--
		return errors.New("smtp unavailable")
	}
	s.sent = append(s.sent, to+"|"+subject)
	return nil
}

type stubWhatsApp struct {
	mu   sync.Mutex
	sent []string
}

func (s *stubWhatsApp) SendMessage(ctx context.Context, phone, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, phone+"|"+message)
	return nil
}

type stubDedup struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newStubDedup() *stubDedup {
	return &stubDedup{keys: map[string]bool{}}
}

func (s *stubDedup) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *stubDedup) DedupKey(parts ...string) string {
	return "dedup:" + strings.Join(parts, ":")
}

func fastService(email *stubEmail, wa *stubWhatsApp, dedup *stubDedup) *Service {
	svc := NewService(email, wa, dedup, nil)
	svc.backoff = []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond}
	return svc
}

func notifyOrder() *models.Order {
	return &models.Order{
		ID:              uuid.New(),
		OrderNumber:     "ORD-20260901-0007",
		CustomerName:    "Patel Glassworks",
		CustomerEmail:   "patel@example.com",
		CustomerPhone:   "9876543210",
		PaidAmount:      decimal.NewFromInt(2950),
		RemainingAmount: decimal.NewFromInt(8850),
	}
}

func TestDeliverFansOutBothChannels(t *testing.T) {
	email, wa, dedup := &stubEmail{}, &stubWhatsApp{}, newStubDedup()
	svc := fastService(email, wa, dedup)

	svc.deliverOrderTransition(context.Background(), notifyOrder(), enums.TransitionAdvancePaid, Recipient{
		Email: "patel@example.com", Phone: "9876543210", EmailOptIn: true, WhatsAppOptIn: true,
	}, nil)

	if len(email.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(email.sent))
	}
	if !strings.Contains(email.sent[0], "confirmed") {
		t.Fatalf("unexpected email: %s", email.sent[0])
	}
	if len(wa.sent) != 1 {
		t.Fatalf("expected 1 whatsapp message, got %d", len(wa.sent))
	}
}

func TestDeliverHonorsOptOut(t *testing.T) {
	email, wa, dedup := &stubEmail{}, &stubWhatsApp{}, newStubDedup()
	svc := fastService(email, wa, dedup)

	svc.deliverOrderTransition(context.Background(), notifyOrder(), enums.TransitionAdvancePaid, Recipient{
		Email: "patel@example.com", Phone: "9876543210", EmailOptIn: false, WhatsAppOptIn: true,
	}, nil)

	if len(email.sent) != 0 {
		t.Fatal("opted-out email channel must stay silent")
	}
	if len(wa.sent) != 1 {
		t.Fatal("whatsapp channel must still fire")
	}
}

func TestDeliverDeduplicates(t *testing.T) {
	email, wa, dedup := &stubEmail{}, &stubWhatsApp{}, newStubDedup()
	svc := fastService(email, wa, dedup)
	order := notifyOrder()
	recipient := Recipient{Email: "patel@example.com", Phone: "9876543210", EmailOptIn: true, WhatsAppOptIn: true}

	svc.deliverOrderTransition(context.Background(), order, enums.TransitionAdvancePaid, recipient, nil)
	svc.deliverOrderTransition(context.Background(), order, enums.TransitionAdvancePaid, recipient, nil)

	if len(email.sent) != 1 || len(wa.sent) != 1 {
		t.Fatalf("duplicate transition must not resend, got %d emails %d whatsapp", len(email.sent), len(wa.sent))
	}
}

func TestRetryRecoversFromTransientFailures(t *testing.T) {
	email, wa, dedup := &stubEmail{fails: 2}, &stubWhatsApp{}, newStubDedup()
	svc := fastService(email, wa, dedup)

	svc.deliverOrderTransition(context.Background(), notifyOrder(), enums.TransitionFullyPaid, Recipient{
		Email: "patel@example.com", EmailOptIn: true,
	}, nil)

	if len(email.sent) != 1 {
		t.Fatalf("expected eventual delivery, got %d", len(email.sent))
	}
}

func TestJobworkMilestoneMessages(t *testing.T) {
	order := &models.JobworkOrder{
		ID:              uuid.New(),
		JobworkNumber:   "JW-20260901-0002",
		CustomerName:    "Mehta Furnishings",
		CustomerPhone:   "9123456780",
		AdvanceAmount:   decimal.NewFromInt(500),
		RemainingAmount: decimal.NewFromInt(500),
	}

	msg, ok := RenderJobworkMilestone(order, enums.JobworkReadyForDelivery)
	if !ok {
		t.Fatal("expected a rendered message")
	}
	if !strings.Contains(msg.Body, "JW-20260901-0002") || !strings.Contains(msg.Body, "500.00") {
		t.Fatalf("unexpected body: %s", msg.Body)
	}

	if _, ok := RenderJobworkMilestone(order, enums.JobworkMilestone("bogus")); ok {
		t.Fatal("unknown milestone must not render")
	}
}

func TestQuietTransitionsStayQuiet(t *testing.T) {
	order := notifyOrder()
	if _, ok := RenderOrder(order, enums.StageTransition(enums.ProductionStatusPolishing), enums.ChannelEmail); ok {
		t.Fatal("intermediate stages must not notify")
	}
	if _, ok := RenderOrder(order, enums.StageTransition(enums.ProductionStatusDelivered), enums.ChannelWhatsApp); !ok {
		t.Fatal("delivery must notify")
	}
}
