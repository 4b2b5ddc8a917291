package artifacts

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/shreeglass/erp-backend/pkg/config"
	"github.com/shreeglass/erp-backend/pkg/db/models"
	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
)

const companyName = "Shree Glass Works"

// Renderer produces the printable PDF artifacts. It is stateless and safe
// for concurrent use; CPU-heavy renders go through the worker pool.
type Renderer struct {
	signingSecret string
	deepLinkBase  string
}

func NewRenderer(cfg config.ArtifactsConfig) *Renderer {
	return &Renderer{
		signingSecret: cfg.SigningSecret,
		deepLinkBase:  cfg.DeepLinkBase,
	}
}

func newPDF() *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	return pdf
}

func (r *Renderer) header(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, companyName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, title, "", 1, "C", false, 0, "")
	pdf.Ln(4)
}

// embedQR draws the signed deep-link QR at the given position.
func (r *Renderer) embedQR(pdf *gofpdf.Fpdf, kind, id string, x, y, size float64) error {
	payload := NewQRPayload(r.signingSecret, kind, id)
	img, err := QRPNG(payload.DeepLink(r.deepLinkBase), 256)
	if err != nil {
		return err
	}
	name := "qr-" + kind + "-" + id
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img))
	pdf.ImageOptions(name, x, y, size, size, false, opts, 0, "")
	return nil
}

// embedBarcode draws a Code128 image at the given position.
func embedBarcode(pdf *gofpdf.Fpdf, content string, x, y, w, h float64) error {
	img, err := BarcodePNG(content, 600, 160)
	if err != nil {
		return err
	}
	name := "bc-" + content
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img))
	pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	return nil
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render pdf")
	}
	return buf.Bytes(), nil
}

func money(v decimal.Decimal) string {
	return "Rs. " + v.StringFixed(2)
}

// Invoice renders the tax invoice: customer block, HSN table, GST split and
// the signed QR footer.
func (r *Renderer) Invoice(invoice *models.Invoice) ([]byte, error) {
	pdf := newPDF()
	r.header(pdf, "TAX INVOICE")

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 6, invoice.InvoiceNumber, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, "Date: "+invoice.CreatedAt.Format("02 Jan 2006"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Billed to: "+invoice.CustomerName, "", 1, "L", false, 0, "")
	if invoice.CustomerGSTIN != nil {
		pdf.CellFormat(0, 5, "GSTIN: "+*invoice.CustomerGSTIN, "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 5, "Place of supply: state "+invoice.BuyerStateCode, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	widths := []float64{70, 20, 15, 25, 30, 30}
	headers := []string{"Description", "HSN", "Qty", "Unit Price", "Taxable", "Tax"}
	pdf.SetFont("Helvetica", "B", 9)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, line := range invoice.Lines {
		tax := line.CGST.Add(line.SGST).Add(line.IGST)
		pdf.CellFormat(widths[0], 7, line.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, line.HSNCode, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 7, fmt.Sprintf("%d", line.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 7, line.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 7, line.Taxable.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 7, tax.StringFixed(2), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	totals := []struct {
		label string
		value decimal.Decimal
	}{
		{"Subtotal", invoice.Subtotal},
		{"Discount", invoice.DiscountAmount.Neg()},
		{"CGST", invoice.CGST},
		{"SGST", invoice.SGST},
		{"IGST", invoice.IGST},
	}
	for _, row := range totals {
		if row.value.IsZero() && (row.label == "CGST" || row.label == "SGST" || row.label == "IGST" || row.label == "Discount") {
			continue
		}
		pdf.CellFormat(150, 6, row.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, money(row.value), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(150, 8, "Grand Total", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, money(invoice.Total), "", 1, "R", false, 0, "")

	if err := r.embedQR(pdf, KindInvoice, invoice.ID.String(), 15, 250, 30); err != nil {
		return nil, err
	}
	pdf.SetY(282)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, "Scan to verify this invoice.", "", 1, "L", false, 0, "")

	return output(pdf)
}

// DispatchSlip renders the gate-pass slip with the order number barcode.
func (r *Renderer) DispatchSlip(order *models.Order) ([]byte, error) {
	pdf := newPDF()
	r.header(pdf, "DISPATCH SLIP")

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, order.OrderNumber, "", 1, "C", false, 0, "")
	if err := embedBarcode(pdf, order.OrderNumber, 55, 40, 100, 25); err != nil {
		return nil, err
	}
	pdf.SetY(72)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Customer: "+order.CustomerName, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Phone: "+order.CustomerPhone, "", 1, "L", false, 0, "")
	if order.DeliveryAddress != nil {
		pdf.MultiCell(0, 6, "Deliver to: "+*order.DeliveryAddress, "", "L", false)
	}
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Pieces: %d line item(s)", len(order.Items)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, item := range order.Items {
		pdf.CellFormat(0, 5, fmt.Sprintf("- %s %smm %s x %s in, qty %d",
			item.Product, item.ThicknessMM, item.WidthInch, item.HeightInch, item.Quantity),
			"", 1, "L", false, 0, "")
	}

	if err := r.embedQR(pdf, KindDispatch, order.ID.String(), 160, 240, 35); err != nil {
		return nil, err
	}
	return output(pdf)
}

// JobCard renders the shop-floor card: big JC number, QR, barcode, glass
// specs and the current stage box.
func (r *Renderer) JobCard(card *models.ProductionOrder, orderNumber string) ([]byte, error) {
	pdf := newPDF()
	r.header(pdf, "JOB CARD")

	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 14, card.JobCardNumber, "", 1, "C", false, 0, "")

	if err := embedBarcode(pdf, card.JobCardNumber, 55, 45, 100, 22); err != nil {
		return nil, err
	}
	if err := r.embedQR(pdf, KindJobCard, card.ID.String(), 160, 75, 35); err != nil {
		return nil, err
	}

	pdf.SetY(78)
	pdf.SetFont("Helvetica", "", 11)
	rows := [][2]string{
		{"Order", orderNumber},
		{"Glass", card.GlassType},
		{"Thickness", card.ThicknessMM.String() + " mm"},
		{"Size", card.WidthInch.String() + " x " + card.HeightInch.String() + " in"},
		{"Quantity", fmt.Sprintf("%d", card.Quantity)},
		{"Priority", fmt.Sprintf("%d", card.Priority)},
	}
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(40, 8, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, row[1], "", 1, "L", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetDrawColor(0, 0, 0)
	pdf.Rect(15, pdf.GetY(), 110, 14, "D")
	pdf.CellFormat(110, 14, "STAGE: "+card.CurrentStage.String(), "", 1, "C", false, 0, "")

	return output(pdf)
}

// DaybookEntry is one cash movement row for the daybook.
type DaybookEntry struct {
	Time      time.Time
	Reference string
	Party     string
	Amount    decimal.Decimal
}

// CashDaybook renders the day's cash receipts with a running total.
func (r *Renderer) CashDaybook(day time.Time, entries []DaybookEntry) ([]byte, error) {
	pdf := newPDF()
	r.header(pdf, "CASH DAYBOOK - "+day.Format("02 Jan 2006"))

	widths := []float64{25, 45, 70, 40}
	headers := []string{"Time", "Reference", "Party", "Amount"}
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	total := decimal.Zero
	for _, entry := range entries {
		total = total.Add(entry.Amount)
		pdf.CellFormat(widths[0], 7, entry.Time.Format("15:04"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 7, entry.Reference, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 7, entry.Party, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 7, entry.Amount.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(widths[0]+widths[1]+widths[2], 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[3], 8, total.StringFixed(2), "1", 1, "R", false, 0, "")

	return output(pdf)
}

// ReportTable renders a simple titled table, the PDF variant of the report
// export endpoints. Column widths split the printable area evenly.
func (r *Renderer) ReportTable(title string, headers []string, rows [][]string) ([]byte, error) {
	if len(headers) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "report table needs at least one column")
	}

	pdf := newPDF()
	r.header(pdf, title)

	width := 180.0 / float64(len(headers))
	pdf.SetFont("Helvetica", "B", 9)
	for _, h := range headers {
		pdf.CellFormat(width, 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range rows {
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			pdf.CellFormat(width, 6, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return output(pdf)
}
