package cron

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shreeglass/erp-backend/internal/reports"
	"github.com/shreeglass/erp-backend/pkg/logger"
	"github.com/shreeglass/erp-backend/pkg/mailer"
)

// JobPaymentAlerts, JobPLReport and JobVendorSummary are the registered
// job names; the manual-run endpoint accepts exactly these.
const (
	JobPaymentAlerts = "daily_payment_alerts"
	JobPLReport      = "daily_pl_report"
	JobVendorSummary = "weekly_vendor_summary"
)

type alertSender interface {
	AdminAlert(ctx context.Context, emails []string, subject, body string, attachments ...mailer.Attachment)
}

type whatsappAlerter interface {
	AdminWhatsApp(ctx context.Context, numbers []string, message string) error
}

type overdueLister interface {
	OverdueOrders(ctx context.Context, now time.Time) ([]reports.OverdueOrder, error)
}

// PaymentAlertsJobParams configure the daily receivables alert. WhatsApp
// delivery is optional and only used when admin numbers are configured.
type PaymentAlertsJobParams struct {
	Logger       *logger.Logger
	Reports      overdueLister
	Alerts       alertSender
	WhatsApp     whatsappAlerter
	AdminEmails  []string
	AdminNumbers []string
	Spec         string
}

func NewPaymentAlertsJob(params PaymentAlertsJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reports == nil {
		return nil, fmt.Errorf("reports source required")
	}
	if params.Alerts == nil {
		return nil, fmt.Errorf("alert sender required")
	}
	spec := params.Spec
	if spec == "" {
		spec = "0 9 * * *"
	}
	return &paymentAlertsJob{
		logg:     params.Logger,
		src:      params.Reports,
		alerts:   params.Alerts,
		whatsapp: params.WhatsApp,
		emails:   params.AdminEmails,
		numbers:  params.AdminNumbers,
		spec:     spec,
		now:      time.Now,
	}, nil
}

type paymentAlertsJob struct {
	logg     *logger.Logger
	src      overdueLister
	alerts   alertSender
	whatsapp whatsappAlerter
	emails   []string
	numbers  []string
	spec     string
	now      func() time.Time
}

func (j *paymentAlertsJob) Name() string { return JobPaymentAlerts }
func (j *paymentAlertsJob) Spec() string { return j.spec }

func (j *paymentAlertsJob) Run(ctx context.Context) (string, error) {
	now := j.now()
	overdue, err := j.src.OverdueOrders(ctx, now)
	if err != nil {
		return "", fmt.Errorf("payment alerts: %w", err)
	}
	if len(overdue) == 0 {
		return "no overdue receivables", nil
	}

	var total float64
	var b strings.Builder
	fmt.Fprintf(&b, "<p>%d orders have overdue balances as of %s.</p><ul>", len(overdue), now.Format("02 Jan 2006"))
	for _, row := range overdue {
		total += row.Remaining
		fmt.Fprintf(&b, "<li>%s / %s (%s): Rs. %.2f outstanding, %d days old</li>",
			row.OrderNumber, row.CustomerName, row.CustomerPhone, row.Remaining, row.AgeDays)
	}
	b.WriteString("</ul>")

	j.alerts.AdminAlert(ctx, j.emails,
		fmt.Sprintf("Payment alerts: %d overdue orders", len(overdue)), b.String())

	if j.whatsapp != nil && len(j.numbers) > 0 {
		msg := fmt.Sprintf("Payment alerts: %d overdue orders, Rs. %.2f outstanding", len(overdue), total)
		if err := j.whatsapp.AdminWhatsApp(ctx, j.numbers, msg); err != nil {
			j.logg.Warn(ctx, "payment alert whatsapp delivery incomplete: "+err.Error())
		}
	}
	return fmt.Sprintf("%d overdue orders, Rs. %.2f outstanding", len(overdue), total), nil
}

type plSource interface {
	ProfitAndLoss(ctx context.Context, from, to time.Time) (*reports.ProfitAndLoss, error)
}

// PLReportJobParams configure the daily profit-and-loss digest. The digest
// covers the previous calendar day.
type PLReportJobParams struct {
	Logger      *logger.Logger
	Reports     plSource
	Alerts      alertSender
	AdminEmails []string
	Spec        string
}

func NewPLReportJob(params PLReportJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reports == nil {
		return nil, fmt.Errorf("reports source required")
	}
	if params.Alerts == nil {
		return nil, fmt.Errorf("alert sender required")
	}
	spec := params.Spec
	if spec == "" {
		spec = "0 5 * * *"
	}
	return &plReportJob{
		logg:   params.Logger,
		src:    params.Reports,
		alerts: params.Alerts,
		emails: params.AdminEmails,
		spec:   spec,
		now:    time.Now,
	}, nil
}

type plReportJob struct {
	logg   *logger.Logger
	src    plSource
	alerts alertSender
	emails []string
	spec   string
	now    func() time.Time
}

func (j *plReportJob) Name() string { return JobPLReport }
func (j *plReportJob) Spec() string { return j.spec }

func (j *plReportJob) Run(ctx context.Context) (string, error) {
	now := j.now()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	from := to.AddDate(0, 0, -1)

	pl, err := j.src.ProfitAndLoss(ctx, from, to)
	if err != nil {
		return "", fmt.Errorf("pl report: %w", err)
	}

	body := fmt.Sprintf(
		"<p>Profit &amp; loss for %s</p>"+
			"<p>Revenue: Rs. %.2f<br>COGS: Rs. %.2f<br>Gross profit: Rs. %.2f<br>"+
			"Net profit: Rs. %.2f (%.1f%% margin)<br>"+
			"GST output: Rs. %.2f, input: Rs. %.2f, net liability: Rs. %.2f</p>",
		pl.From, pl.Revenue, pl.COGS, pl.GrossProfit,
		pl.NetProfit, pl.MarginPercent,
		pl.GSTOutput, pl.GSTInput, pl.GSTNetLiability)

	j.alerts.AdminAlert(ctx, j.emails, "Daily P&L "+pl.From, body)
	return fmt.Sprintf("revenue Rs. %.2f, net Rs. %.2f", pl.Revenue, pl.NetProfit), nil
}

type vendorSource interface {
	VendorSummary(ctx context.Context, now time.Time) ([]reports.VendorDue, error)
}

// VendorSummaryJobParams configure the weekly vendor exposure digest.
type VendorSummaryJobParams struct {
	Logger      *logger.Logger
	Reports     vendorSource
	Alerts      alertSender
	AdminEmails []string
	Spec        string
}

func NewVendorSummaryJob(params VendorSummaryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reports == nil {
		return nil, fmt.Errorf("reports source required")
	}
	if params.Alerts == nil {
		return nil, fmt.Errorf("alert sender required")
	}
	spec := params.Spec
	if spec == "" {
		spec = "0 10 * * 1"
	}
	return &vendorSummaryJob{
		logg:   params.Logger,
		src:    params.Reports,
		alerts: params.Alerts,
		emails: params.AdminEmails,
		spec:   spec,
		now:    time.Now,
	}, nil
}

type vendorSummaryJob struct {
	logg   *logger.Logger
	src    vendorSource
	alerts alertSender
	emails []string
	spec   string
	now    func() time.Time
}

func (j *vendorSummaryJob) Name() string { return JobVendorSummary }
func (j *vendorSummaryJob) Spec() string { return j.spec }

func (j *vendorSummaryJob) Run(ctx context.Context) (string, error) {
	now := j.now()
	vendors, err := j.src.VendorSummary(ctx, now)
	if err != nil {
		return "", fmt.Errorf("vendor summary: %w", err)
	}
	if len(vendors) == 0 {
		return "no vendors on record", nil
	}

	var open, dueSoon float64
	var b strings.Builder
	b.WriteString("<p>Weekly vendor exposure</p><ul>")
	for _, v := range vendors {
		open += v.OpenAmount
		dueSoon += v.DueThisWeek
		fmt.Fprintf(&b, "<li>%s: %d open POs, Rs. %.2f open, Rs. %.2f due this week, %d pending payments</li>",
			v.VendorName, v.OpenOrders, v.OpenAmount, v.DueThisWeek, v.PendingPayments)
	}
	b.WriteString("</ul>")

	j.alerts.AdminAlert(ctx, j.emails, "Weekly vendor summary", b.String())
	return fmt.Sprintf("%d vendors, Rs. %.2f open, Rs. %.2f due this week", len(vendors), open, dueSoon), nil
}
