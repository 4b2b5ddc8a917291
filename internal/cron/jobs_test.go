package cron

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shreeglass/erp-backend/internal/reports"
	"github.com/shreeglass/erp-backend/pkg/logger"
	"github.com/shreeglass/erp-backend/pkg/mailer"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test"})
}

type stubAlerts struct {
	subjects []string
	bodies   []string
	emails   [][]string
}

func (s *stubAlerts) AdminAlert(ctx context.Context, emails []string, subject, body string, attachments ...mailer.Attachment) {
	s.emails = append(s.emails, emails)
	s.subjects = append(s.subjects, subject)
	s.bodies = append(s.bodies, body)
}

type stubOverdue struct {
	rows []reports.OverdueOrder
}

func (s *stubOverdue) OverdueOrders(ctx context.Context, now time.Time) ([]reports.OverdueOrder, error) {
	return s.rows, nil
}

func TestPaymentAlertsJobEmailsAdmins(t *testing.T) {
	alerts := &stubAlerts{}
	job, err := NewPaymentAlertsJob(PaymentAlertsJobParams{
		Logger: testLogger(),
		Reports: &stubOverdue{rows: []reports.OverdueOrder{
			{OrderNumber: "ORD-20260820-0001", CustomerName: "Patel Glassworks", Remaining: 8850, AgeDays: 12},
			{OrderNumber: "ORD-20260818-0003", CustomerName: "Mehta Furnishings", Remaining: 1200, AgeDays: 14},
		}},
		Alerts:      alerts,
		AdminEmails: []string{"accounts@shreeglass.in"},
	})
	if err != nil {
		t.Fatalf("NewPaymentAlertsJob: %v", err)
	}

	result, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(result, "2 overdue orders") {
		t.Fatalf("unexpected result: %s", result)
	}
	if len(alerts.bodies) != 1 {
		t.Fatalf("expected one alert, got %d", len(alerts.bodies))
	}
	if !strings.Contains(alerts.bodies[0], "ORD-20260820-0001") || !strings.Contains(alerts.bodies[0], "8850.00") {
		t.Fatalf("unexpected body: %s", alerts.bodies[0])
	}
	if alerts.emails[0][0] != "accounts@shreeglass.in" {
		t.Fatalf("unexpected recipients: %v", alerts.emails[0])
	}
}

type stubWhatsApp struct {
	numbers  [][]string
	messages []string
}

func (s *stubWhatsApp) AdminWhatsApp(ctx context.Context, numbers []string, message string) error {
	s.numbers = append(s.numbers, numbers)
	s.messages = append(s.messages, message)
	return nil
}

func TestPaymentAlertsJobPushesWhatsApp(t *testing.T) {
	alerts := &stubAlerts{}
	wa := &stubWhatsApp{}
	job, err := NewPaymentAlertsJob(PaymentAlertsJobParams{
		Logger: testLogger(),
		Reports: &stubOverdue{rows: []reports.OverdueOrder{
			{OrderNumber: "ORD-20260820-0001", CustomerName: "Patel Glassworks", Remaining: 8850, AgeDays: 12},
		}},
		Alerts:       alerts,
		WhatsApp:     wa,
		AdminEmails:  []string{"accounts@shreeglass.in"},
		AdminNumbers: []string{"+919812345678"},
	})
	if err != nil {
		t.Fatalf("NewPaymentAlertsJob: %v", err)
	}

	if _, err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(wa.messages) != 1 {
		t.Fatalf("expected one whatsapp push, got %d", len(wa.messages))
	}
	if !strings.Contains(wa.messages[0], "1 overdue orders") || !strings.Contains(wa.messages[0], "8850.00") {
		t.Fatalf("unexpected message: %s", wa.messages[0])
	}
	if wa.numbers[0][0] != "+919812345678" {
		t.Fatalf("unexpected numbers: %v", wa.numbers[0])
	}
}

func TestPaymentAlertsJobQuietWhenNothingOverdue(t *testing.T) {
	alerts := &stubAlerts{}
	job, err := NewPaymentAlertsJob(PaymentAlertsJobParams{
		Logger:  testLogger(),
		Reports: &stubOverdue{},
		Alerts:  alerts,
	})
	if err != nil {
		t.Fatalf("NewPaymentAlertsJob: %v", err)
	}

	result, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result != "no overdue receivables" {
		t.Fatalf("unexpected result: %s", result)
	}
	if len(alerts.bodies) != 0 {
		t.Fatal("no alert should go out when nothing is overdue")
	}
}

type stubPL struct {
	got *reports.ProfitAndLoss
}

func (s *stubPL) ProfitAndLoss(ctx context.Context, from, to time.Time) (*reports.ProfitAndLoss, error) {
	s.got = &reports.ProfitAndLoss{
		From: from.Format("2006-01-02"), To: to.Format("2006-01-02"),
		Revenue: 50000, COGS: 32000, GrossProfit: 18000, NetProfit: 18000, MarginPercent: 36,
	}
	return s.got, nil
}

func TestPLReportJobCoversYesterday(t *testing.T) {
	alerts := &stubAlerts{}
	src := &stubPL{}
	job, err := NewPLReportJob(PLReportJobParams{
		Logger:      testLogger(),
		Reports:     src,
		Alerts:      alerts,
		AdminEmails: []string{"owner@shreeglass.in"},
	})
	if err != nil {
		t.Fatalf("NewPLReportJob: %v", err)
	}
	job.(*plReportJob).now = func() time.Time {
		return time.Date(2026, 9, 1, 5, 0, 0, 0, time.UTC)
	}

	result, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if src.got.From != "2026-08-31" || src.got.To != "2026-09-01" {
		t.Fatalf("unexpected range: %s..%s", src.got.From, src.got.To)
	}
	if !strings.Contains(result, "50000.00") {
		t.Fatalf("unexpected result: %s", result)
	}
	if len(alerts.subjects) != 1 || !strings.Contains(alerts.subjects[0], "2026-08-31") {
		t.Fatalf("unexpected subjects: %v", alerts.subjects)
	}
}

type stubVendors struct {
	rows []reports.VendorDue
}

func (s *stubVendors) VendorSummary(ctx context.Context, now time.Time) ([]reports.VendorDue, error) {
	return s.rows, nil
}

func TestVendorSummaryJobTotalsExposure(t *testing.T) {
	alerts := &stubAlerts{}
	job, err := NewVendorSummaryJob(VendorSummaryJobParams{
		Logger: testLogger(),
		Reports: &stubVendors{rows: []reports.VendorDue{
			{VendorName: "Asahi Float Glass", OpenOrders: 2, OpenAmount: 150000, DueThisWeek: 40000},
			{VendorName: "Saint Gobain Depot", OpenOrders: 1, OpenAmount: 60000, DueThisWeek: 0},
		}},
		Alerts:      alerts,
		AdminEmails: []string{"owner@shreeglass.in"},
	})
	if err != nil {
		t.Fatalf("NewVendorSummaryJob: %v", err)
	}

	result, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(result, "2 vendors") || !strings.Contains(result, "210000.00") {
		t.Fatalf("unexpected result: %s", result)
	}
	if !strings.Contains(alerts.bodies[0], "Asahi Float Glass") {
		t.Fatalf("unexpected body: %s", alerts.bodies[0])
	}
}

func TestJobSpecDefaults(t *testing.T) {
	job, _ := NewPaymentAlertsJob(PaymentAlertsJobParams{
		Logger: testLogger(), Reports: &stubOverdue{}, Alerts: &stubAlerts{},
	})
	if job.Spec() != "0 9 * * *" {
		t.Fatalf("unexpected spec: %s", job.Spec())
	}
	if job.Name() != JobPaymentAlerts {
		t.Fatalf("unexpected name: %s", job.Name())
	}
}
