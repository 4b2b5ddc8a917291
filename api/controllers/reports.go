package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shreeglass/erp-backend/api/responses"
	"github.com/shreeglass/erp-backend/api/validators"
	"github.com/shreeglass/erp-backend/internal/artifacts"
	internalreports "github.com/shreeglass/erp-backend/internal/reports"
	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
	"github.com/shreeglass/erp-backend/pkg/logger"
)

func ReportsDashboard(svc *internalreports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dashboard, err := svc.AccountsDashboard(r.Context(), time.Now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dashboard)
	}
}

func ReportsProfitAndLoss(svc *internalreports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, to, err := parseDateRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		report, err := svc.ProfitAndLoss(r.Context(), from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

func ReportsMonthlyGST(svc *internalreports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, month, err := parseYearMonth(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		report, err := svc.MonthlyGST(r.Context(), year, month)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

func ReportsRevenueChart(svc *internalreports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		months, err := validators.ParseQueryInt(r, "months", 6, 1, 36)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		points, err := svc.RevenueChart(r.Context(), months, time.Now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, points)
	}
}

func ReportsProductionChart(svc *internalreports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		points, err := svc.ProductionChart(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, points)
	}
}

func ReportsTopCustomers(svc *internalreports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 5, 1, 50)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customers, err := svc.TopCustomers(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, customers)
	}
}

func ReportsVendorSummary(svc *internalreports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dues, err := svc.VendorSummary(r.Context(), time.Now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dues)
	}
}

// ReportsExport serves the GST and P&L reports as a downloadable workbook
// or PDF table depending on ?format.
func ReportsExport(svc *internalreports.Service, renderer *artifacts.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := chi.URLParam(r, "kind")
		format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
		if format == "" {
			format = "excel"
		}
		if format != "excel" && format != "pdf" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "format must be excel or pdf"))
			return
		}

		var (
			title   string
			headers []string
			rows    [][]any
		)
		switch kind {
		case "gst-report":
			year, month, err := parseYearMonth(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			report, err := svc.MonthlyGST(r.Context(), year, month)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			title = "GST Report " + report.Month
			headers = []string{"Invoice", "Customer", "State", "Taxable", "CGST", "SGST", "IGST", "Total", "Date"}
			for _, row := range report.Rows {
				rows = append(rows, []any{
					row.InvoiceNumber, row.CustomerName, row.BuyerStateCode,
					row.Taxable, row.CGST, row.SGST, row.IGST, row.Total, row.Date,
				})
			}
			rows = append(rows, []any{
				"TOTAL", "", "", "", report.TotalCGST, report.TotalSGST, report.TotalIGST, "", "",
			})
		case "profit-loss":
			from, to, err := parseDateRange(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			report, err := svc.ProfitAndLoss(r.Context(), from, to)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			title = "Profit & Loss " + report.From + " to " + report.To
			headers = []string{"Line", "Amount"}
			rows = [][]any{
				{"Revenue", report.Revenue},
				{"COGS", report.COGS},
				{"Gross profit", report.GrossProfit},
				{"Net profit", report.NetProfit},
				{"Margin %", report.MarginPercent},
				{"GST output", report.GSTOutput},
				{"GST input", report.GSTInput},
				{"GST net liability", report.GSTNetLiability},
			}
		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown report kind"))
			return
		}

		if format == "excel" {
			data, err := artifacts.ExcelReport(title, headers, rows)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteExcel(w, kind+".xlsx", data)
			return
		}

		text := make([][]string, 0, len(rows))
		for _, row := range rows {
			cells := make([]string, 0, len(row))
			for _, cell := range row {
				cells = append(cells, formatCell(cell))
			}
			text = append(text, cells)
		}
		data, err := renderer.ReportTable(title, headers, text)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePDF(w, kind+".pdf", data)
	}
}

func formatCell(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		return fmt.Sprintf("%.2f", value)
	default:
		return fmt.Sprint(value)
	}
}

func parseYearMonth(r *http.Request) (int, time.Month, error) {
	now := time.Now()
	year, err := validators.ParseQueryInt(r, "year", now.Year(), 2000, 2100)
	if err != nil {
		return 0, 0, err
	}
	month, err := validators.ParseQueryInt(r, "month", int(now.Month()), 1, 12)
	if err != nil {
		return 0, 0, err
	}
	return year, time.Month(month), nil
}

func parseDateRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := now

	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "from must be YYYY-MM-DD")
		}
		from = parsed
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "to must be YYYY-MM-DD")
		}
		to = parsed.AddDate(0, 0, 1)
	}
	return from, to, nil
}
