package reports

import (
	"context"
	"time"

	"gorm.io/gorm"

	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
)

// overdueAfter is how long an uncollected balance may age before it counts
// as overdue on the accounts dashboard.
const overdueAfter = 7 * 24 * time.Hour

// Service runs the read-only reporting projections. Everything here is
// plain SQL over the aggregates' tables; no report ever mutates state.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// AccountsDashboard is the landing view for the accounts team.
type AccountsDashboard struct {
	Receivables        float64 `json:"receivables"`
	MonthlySales       float64 `json:"monthly_sales"`
	MonthlyGST         float64 `json:"monthly_gst"`
	MonthlyCollections float64 `json:"monthly_collections"`
	OverdueCount       int64   `json:"overdue_count"`
	OverdueAmount      float64 `json:"overdue_amount"`
	PendingInvoices    int64   `json:"pending_invoices"`
}

func (s *Service) AccountsDashboard(ctx context.Context, now time.Time) (*AccountsDashboard, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	overdueBefore := now.Add(-overdueAfter)

	var out AccountsDashboard
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			COALESCE((SELECT SUM(remaining_amount) FROM orders
				WHERE canceled_at IS NULL AND payment_status IN ('unpaid','advance_paid')), 0) AS receivables,
			COALESCE((SELECT SUM(total) FROM orders
				WHERE canceled_at IS NULL AND created_at >= ?), 0) AS monthly_sales,
			COALESCE((SELECT SUM(tax_amount) FROM orders
				WHERE canceled_at IS NULL AND created_at >= ?), 0) AS monthly_gst,
			COALESCE((SELECT SUM(amount) FROM payment_events
				WHERE amount > 0 AND created_at >= ?), 0) AS monthly_collections,
			COALESCE((SELECT COUNT(*) FROM orders
				WHERE canceled_at IS NULL AND remaining_amount > 0
				AND payment_status IN ('unpaid','advance_paid') AND created_at < ?), 0) AS overdue_count,
			COALESCE((SELECT SUM(remaining_amount) FROM orders
				WHERE canceled_at IS NULL AND remaining_amount > 0
				AND payment_status IN ('unpaid','advance_paid') AND created_at < ?), 0) AS overdue_amount,
			COALESCE((SELECT COUNT(*) FROM orders
				WHERE canceled_at IS NULL AND production_status = 'dispatched' AND invoice_id IS NULL), 0) AS pending_invoices`,
		monthStart, monthStart, monthStart, overdueBefore, overdueBefore,
	).Scan(&out).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accounts dashboard")
	}
	return &out, nil
}

// ProfitAndLoss summarizes a date range. COGS comes from vendor purchase
// orders; GST liability nets output tax against input tax.
type ProfitAndLoss struct {
	From            string  `json:"from"`
	To              string  `json:"to"`
	Revenue         float64 `json:"revenue"`
	COGS            float64 `json:"cogs"`
	GrossProfit     float64 `json:"gross_profit"`
	Expenses        float64 `json:"expenses"`
	NetProfit       float64 `json:"net_profit"`
	MarginPercent   float64 `json:"margin_percent"`
	GSTOutput       float64 `json:"gst_output"`
	GSTInput        float64 `json:"gst_input"`
	GSTNetLiability float64 `json:"gst_net_liability"`
}

func (s *Service) ProfitAndLoss(ctx context.Context, from, to time.Time) (*ProfitAndLoss, error) {
	if !to.After(from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "range end must be after range start")
	}

	var row struct {
		Revenue   float64
		COGS      float64
		GSTOutput float64
		GSTInput  float64
	}
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			COALESCE((SELECT SUM(total) FROM orders
				WHERE canceled_at IS NULL AND created_at >= ? AND created_at < ?), 0) AS revenue,
			COALESCE((SELECT SUM(amount) FROM purchase_orders
				WHERE created_at >= ? AND created_at < ?), 0) AS cogs,
			COALESCE((SELECT SUM(tax_amount) FROM orders
				WHERE canceled_at IS NULL AND created_at >= ? AND created_at < ?), 0) AS gst_output,
			COALESCE((SELECT SUM(gst_amount) FROM purchase_orders
				WHERE created_at >= ? AND created_at < ?), 0) AS gst_input`,
		from, to, from, to, from, to, from, to,
	).Scan(&row).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "profit and loss")
	}

	pl := &ProfitAndLoss{
		From:      from.Format("2006-01-02"),
		To:        to.Format("2006-01-02"),
		Revenue:   row.Revenue,
		COGS:      row.COGS,
		GSTOutput: row.GSTOutput,
		GSTInput:  row.GSTInput,
	}
	pl.GrossProfit = pl.Revenue - pl.COGS
	pl.NetProfit = pl.GrossProfit - pl.Expenses
	if pl.Revenue > 0 {
		pl.MarginPercent = pl.NetProfit / pl.Revenue * 100
	}
	pl.GSTNetLiability = pl.GSTOutput - pl.GSTInput
	return pl, nil
}

// GSTRow is one invoice in the monthly GST report.
type GSTRow struct {
	InvoiceNumber  string  `json:"invoice_number"`
	CustomerName   string  `json:"customer_name"`
	BuyerStateCode string  `json:"buyer_state_code"`
	Taxable        float64 `json:"taxable"`
	CGST           float64 `json:"cgst"`
	SGST           float64 `json:"sgst"`
	IGST           float64 `json:"igst"`
	Total          float64 `json:"total"`
	Date           string  `json:"date"`
}

// GSTReport is the filing-ready monthly summary.
type GSTReport struct {
	Month     string   `json:"month"`
	Rows      []GSTRow `json:"rows"`
	TotalCGST float64  `json:"total_cgst"`
	TotalSGST float64  `json:"total_sgst"`
	TotalIGST float64  `json:"total_igst"`
}

func (s *Service) MonthlyGST(ctx context.Context, year int, month time.Month) (*GSTReport, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var rows []GSTRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT invoice_number, customer_name, buyer_state_code,
			(subtotal - discount_amount) AS taxable,
			cgst, sgst, igst, total,
			TO_CHAR(created_at, 'YYYY-MM-DD') AS date
		FROM invoices
		WHERE created_at >= ? AND created_at < ?
		ORDER BY invoice_number ASC`,
		start, end,
	).Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "monthly gst report")
	}

	report := &GSTReport{Month: start.Format("2006-01"), Rows: rows}
	for _, row := range rows {
		report.TotalCGST += row.CGST
		report.TotalSGST += row.SGST
		report.TotalIGST += row.IGST
	}
	return report, nil
}

// ChartPoint is one labeled value on a dashboard chart.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// RevenueChart returns per-month revenue for the trailing N months.
func (s *Service) RevenueChart(ctx context.Context, months int, now time.Time) ([]ChartPoint, error) {
	if months <= 0 {
		months = 6
	}
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).
		AddDate(0, -(months - 1), 0)

	var rows []ChartPoint
	err := s.db.WithContext(ctx).Raw(`
		SELECT TO_CHAR(created_at, 'YYYY-MM') AS label, COALESCE(SUM(total), 0) AS value
		FROM orders
		WHERE canceled_at IS NULL AND created_at >= ?
		GROUP BY 1
		ORDER BY 1 ASC`,
		start,
	).Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revenue chart")
	}
	return rows, nil
}

// ProductionChart returns the order count per production stage.
func (s *Service) ProductionChart(ctx context.Context) ([]ChartPoint, error) {
	var rows []ChartPoint
	err := s.db.WithContext(ctx).Raw(`
		SELECT production_status AS label, COUNT(*) AS value
		FROM orders
		WHERE canceled_at IS NULL AND production_status <> 'delivered'
		GROUP BY production_status`,
	).Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "production chart")
	}
	return rows, nil
}

// TopCustomer is one row of the revenue leaderboard.
type TopCustomer struct {
	CustomerName string  `json:"customer_name"`
	Orders       int64   `json:"orders"`
	Revenue      float64 `json:"revenue"`
}

func (s *Service) TopCustomers(ctx context.Context, limit int) ([]TopCustomer, error) {
	if limit <= 0 {
		limit = 5
	}
	var rows []TopCustomer
	err := s.db.WithContext(ctx).Raw(`
		SELECT customer_name, COUNT(*) AS orders, COALESCE(SUM(total), 0) AS revenue
		FROM orders
		WHERE canceled_at IS NULL
		GROUP BY customer_name
		ORDER BY revenue DESC
		LIMIT ?`,
		limit,
	).Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "top customers")
	}
	return rows, nil
}

// VendorDue is one vendor's open exposure for the weekly summary.
type VendorDue struct {
	VendorName      string  `json:"vendor_name"`
	OpenOrders      int64   `json:"open_orders"`
	OpenAmount      float64 `json:"open_amount"`
	DueThisWeek     float64 `json:"due_this_week"`
	PendingPayments int64   `json:"pending_payments"`
}

func (s *Service) VendorSummary(ctx context.Context, now time.Time) ([]VendorDue, error) {
	weekEnd := now.AddDate(0, 0, 7)
	var rows []VendorDue
	err := s.db.WithContext(ctx).Raw(`
		SELECT v.name AS vendor_name,
			COUNT(po.id) FILTER (WHERE po.status = 'open') AS open_orders,
			COALESCE(SUM(po.amount) FILTER (WHERE po.status = 'open'), 0) AS open_amount,
			COALESCE(SUM(po.amount) FILTER (WHERE po.status = 'open' AND po.due_date < ?), 0) AS due_this_week,
			COALESCE((SELECT COUNT(*) FROM vendor_payments vp
				WHERE vp.vendor_id = v.id AND NOT vp.completed), 0) AS pending_payments
		FROM vendors v
		LEFT JOIN purchase_orders po ON po.vendor_id = v.id
		GROUP BY v.id, v.name
		ORDER BY open_amount DESC`,
		weekEnd,
	).Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "vendor summary")
	}
	return rows, nil
}

// OverdueOrder is one receivable flagged by the daily payment alert job.
type OverdueOrder struct {
	OrderNumber   string  `json:"order_number"`
	CustomerName  string  `json:"customer_name"`
	CustomerPhone string  `json:"customer_phone"`
	Remaining     float64 `json:"remaining"`
	AgeDays       int     `json:"age_days"`
}

func (s *Service) OverdueOrders(ctx context.Context, now time.Time) ([]OverdueOrder, error) {
	before := now.Add(-overdueAfter)
	var rows []OverdueOrder
	err := s.db.WithContext(ctx).Raw(`
		SELECT order_number, customer_name, customer_phone,
			remaining_amount AS remaining,
			EXTRACT(DAY FROM (? - created_at))::int AS age_days
		FROM orders
		WHERE canceled_at IS NULL AND remaining_amount > 0
			AND payment_status IN ('unpaid','advance_paid')
			AND created_at < ?
		ORDER BY remaining_amount DESC`,
		now, before,
	).Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "overdue orders")
	}
	return rows, nil
}

// DaybookRow is one cash receipt of the day.
type DaybookRow struct {
	Time      time.Time `json:"time"`
	Reference string    `json:"reference"`
	Party     string    `json:"party"`
	Amount    float64   `json:"amount"`
}

// CashDaybook lists the day's offline receipts: positive payment events
// recorded without a gateway handle.
func (s *Service) CashDaybook(ctx context.Context, day time.Time) ([]DaybookRow, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var rows []DaybookRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT pe.created_at AS time, o.order_number AS reference,
			o.customer_name AS party, pe.amount AS amount
		FROM payment_events pe
		JOIN orders o ON o.id = pe.order_id
		WHERE pe.amount > 0 AND pe.gateway_payment_id = ''
			AND pe.created_at >= ? AND pe.created_at < ?
		ORDER BY pe.created_at ASC`,
		start, end,
	).Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cash daybook")
	}
	return rows, nil
}
