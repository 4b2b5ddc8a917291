package controllers

import (
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/shreeglass/erp-backend/api/responses"
	"github.com/shreeglass/erp-backend/api/validators"
	"github.com/shreeglass/erp-backend/internal/artifacts"
	internalorders "github.com/shreeglass/erp-backend/internal/orders"
	internalproduction "github.com/shreeglass/erp-backend/internal/production"
	internalreports "github.com/shreeglass/erp-backend/internal/reports"
	"github.com/shreeglass/erp-backend/pkg/config"
	"github.com/shreeglass/erp-backend/pkg/db/models"
	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
	"github.com/shreeglass/erp-backend/pkg/logger"
)

func PDFInvoice(svc *internalorders.Service, renderer *artifacts.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		invoice, err := svc.Invoice(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pdf, err := renderer.Invoice(invoice)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePDF(w, invoice.InvoiceNumber+".pdf", pdf)
	}
}

func PDFDispatchSlip(svc *internalorders.Service, renderer *artifacts.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pdf, err := renderer.DispatchSlip(order)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePDF(w, order.OrderNumber+"-dispatch.pdf", pdf)
	}
}

func PDFJobCard(production *internalproduction.Service, orders *internalorders.Service, renderer *artifacts.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		card, err := jobCardFromRequest(r, production)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := orders.Get(r.Context(), card.OrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pdf, err := renderer.JobCard(card, order.OrderNumber)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePDF(w, card.JobCardNumber+".pdf", pdf)
	}
}

// PDFDesignSheet renders the cutout layout for every line item on an order
// that carries cutouts.
func PDFDesignSheet(svc *internalorders.Service, renderer *artifacts.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var pieces []artifacts.DesignPiece
		for _, item := range order.Items {
			if len(item.Cutouts) == 0 {
				continue
			}
			pieces = append(pieces, artifacts.DesignPiece{
				Label:      item.Product,
				WidthInch:  item.WidthInch,
				HeightInch: item.HeightInch,
				Cutouts:    item.Cutouts,
			})
		}
		if len(pieces) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order has no line items with cutouts"))
			return
		}
		pdf, err := renderer.DesignSheet(order.OrderNumber, pieces)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePDF(w, order.OrderNumber+"-design.pdf", pdf)
	}
}

func PDFCashDaybook(svc *internalreports.Service, renderer *artifacts.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day := time.Now()
		if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
			parsed, err := time.Parse("2006-01-02", raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "date must be YYYY-MM-DD"))
				return
			}
			day = parsed
		}
		rows, err := svc.CashDaybook(r.Context(), day)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entries := make([]artifacts.DaybookEntry, 0, len(rows))
		for _, row := range rows {
			entries = append(entries, artifacts.DaybookEntry{
				Time:      row.Time,
				Reference: row.Reference,
				Party:     row.Party,
				Amount:    decimal.NewFromFloat(row.Amount),
			})
		}
		pdf, err := renderer.CashDaybook(day, entries)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePDF(w, "daybook-"+day.Format("2006-01-02")+".pdf", pdf)
	}
}

func QRJobCard(svc *internalproduction.Service, cfg config.ArtifactsConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		card, err := jobCardFromRequest(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload := artifacts.NewQRPayload(cfg.SigningSecret, artifacts.KindJobCard, card.ID.String())
		png, err := artifacts.QRPNG(payload.DeepLink(cfg.DeepLinkBase), 512)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePNG(w, png)
	}
}

func BarcodeJobCard(svc *internalproduction.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		card, err := jobCardFromRequest(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		png, err := artifacts.BarcodePNG(card.JobCardNumber, 600, 160)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePNG(w, png)
	}
}

type printData struct {
	JobCardNumber string `json:"job_card_number"`
	OrderNumber   string `json:"order_number"`
	GlassType     string `json:"glass_type"`
	ThicknessMM   string `json:"thickness_mm"`
	WidthInch     string `json:"width_inch"`
	HeightInch    string `json:"height_inch"`
	Quantity      int    `json:"quantity"`
	Stage         string `json:"stage"`
	DeepLink      string `json:"deep_link"`
	QRPNG         string `json:"qr_png"`
	BarcodePNG    string `json:"barcode_png"`
}

// PrintData serves everything a thermal label printer needs in one call,
// with the QR and barcode images embedded as base64 PNGs.
func PrintData(production *internalproduction.Service, orders *internalorders.Service, cfg config.ArtifactsConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		card, err := jobCardFromRequest(r, production)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := orders.Get(r.Context(), card.OrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := artifacts.NewQRPayload(cfg.SigningSecret, artifacts.KindJobCard, card.ID.String())
		link := payload.DeepLink(cfg.DeepLinkBase)
		qr, err := artifacts.QRPNG(link, 256)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		barcode, err := artifacts.BarcodePNG(card.JobCardNumber, 600, 160)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, printData{
			JobCardNumber: card.JobCardNumber,
			OrderNumber:   order.OrderNumber,
			GlassType:     card.GlassType,
			ThicknessMM:   card.ThicknessMM.String(),
			WidthInch:     card.WidthInch.String(),
			HeightInch:    card.HeightInch.String(),
			Quantity:      card.Quantity,
			Stage:         card.CurrentStage.String(),
			DeepLink:      link,
			QRPNG:         base64.StdEncoding.EncodeToString(qr),
			BarcodePNG:    base64.StdEncoding.EncodeToString(barcode),
		})
	}
}

// QRVerify checks a scanned payload signature so the mobile app can trust
// the reference before resolving it.
func QRVerify(cfg config.ArtifactsConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload artifacts.QRPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !artifacts.VerifyPayload(cfg.SigningSecret, payload) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid artifact signature"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"kind": payload.Kind, "id": payload.ID})
	}
}

// jobCardFromRequest resolves the {jc} path value, accepting either the
// printed job card number or the card UUID.
func jobCardFromRequest(r *http.Request, svc *internalproduction.Service) (*models.ProductionOrder, error) {
	if id, err := parseUUIDParam(r, "jc"); err == nil {
		return svc.Get(r.Context(), id)
	}
	raw := strings.TrimSpace(chi.URLParam(r, "jc"))
	if raw == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "jc is required")
	}
	return svc.GetByNumber(r.Context(), raw)
}
