package orders

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shreeglass/erp-backend/pkg/db/models"
	"github.com/shreeglass/erp-backend/pkg/enums"
	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
)

func testOrder() *models.Order {
	return &models.Order{
		ID:               uuid.New(),
		OrderNumber:      "ORD-20260901-0001",
		CustomerName:     "Sharma Interiors",
		BuyerStateCode:   "27",
		Subtotal:         decimal.NewFromInt(10000),
		Total:            decimal.NewFromInt(11800),
		AdvancePercent:   25,
		AdvanceAmount:    decimal.NewFromInt(2950),
		PaidAmount:       decimal.Zero,
		RemainingAmount:  decimal.NewFromInt(11800),
		PaymentStatus:    enums.PaymentStatusUnpaid,
		ProductionStatus: enums.ProductionStatusPending,
	}
}

func TestApplyPaymentAdvance(t *testing.T) {
	order := testOrder()
	outcome, err := applyPayment(order, enums.PaymentEventAdvance, decimal.NewFromInt(2950))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.ToStatus != enums.PaymentStatusAdvancePaid {
		t.Fatalf("expected advance_paid, got %s", outcome.ToStatus)
	}
	if !outcome.Remaining.Equal(decimal.NewFromInt(8850)) {
		t.Fatalf("expected remaining 8850, got %s", outcome.Remaining)
	}
	if outcome.Transition != enums.TransitionAdvancePaid {
		t.Fatalf("unexpected transition %s", outcome.Transition)
	}
}

func TestApplyPaymentFullSettlement(t *testing.T) {
	order := testOrder()
	order.PaymentStatus = enums.PaymentStatusAdvancePaid
	order.PaidAmount = decimal.NewFromInt(2950)

	outcome, err := applyPayment(order, enums.PaymentEventRemaining, decimal.NewFromInt(8850))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.ToStatus != enums.PaymentStatusFullyPaid {
		t.Fatalf("expected fully_paid, got %s", outcome.ToStatus)
	}
	if !outcome.Remaining.IsZero() {
		t.Fatalf("expected zero remaining, got %s", outcome.Remaining)
	}
}

func TestApplyPaymentWithinTolerance(t *testing.T) {
	order := testOrder()
	order.PaymentStatus = enums.PaymentStatusAdvancePaid
	order.PaidAmount = decimal.NewFromInt(2950)

	// one paisa short still settles
	outcome, err := applyPayment(order, enums.PaymentEventRemaining, decimal.NewFromFloat(8849.99))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.ToStatus != enums.PaymentStatusFullyPaid {
		t.Fatalf("expected fully_paid within tolerance, got %s", outcome.ToStatus)
	}
}

func TestApplyPaymentRejectsOverpayment(t *testing.T) {
	order := testOrder()
	order.Total = decimal.NewFromInt(1000)
	order.RemainingAmount = decimal.NewFromInt(1000)

	if _, err := applyPayment(order, enums.PaymentEventAdvance, decimal.NewFromInt(5000)); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("paying past the total must be rejected, got %v", err)
	}

	order.PaymentStatus = enums.PaymentStatusAdvancePaid
	order.PaidAmount = decimal.NewFromInt(500)
	if _, err := applyPayment(order, enums.PaymentEventRemaining, decimal.NewFromInt(501)); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("remaining past the total must be rejected, got %v", err)
	}

	// one paisa over still settles within tolerance
	outcome, err := applyPayment(order, enums.PaymentEventRemaining, decimal.NewFromFloat(500.01))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.ToStatus != enums.PaymentStatusFullyPaid {
		t.Fatalf("expected fully_paid within tolerance, got %s", outcome.ToStatus)
	}
	if !outcome.Remaining.IsZero() {
		t.Fatalf("expected zero remaining, got %s", outcome.Remaining)
	}
}

func TestApplyPaymentRejectsOutOfOrderKinds(t *testing.T) {
	order := testOrder()
	if _, err := applyPayment(order, enums.PaymentEventRemaining, decimal.NewFromInt(100)); !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("remaining before advance must conflict, got %v", err)
	}

	order.PaymentStatus = enums.PaymentStatusAdvancePaid
	order.PaidAmount = decimal.NewFromInt(2950)
	if _, err := applyPayment(order, enums.PaymentEventAdvance, decimal.NewFromInt(100)); !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("second advance must conflict, got %v", err)
	}
}

func TestApplyPaymentRefundIsTerminal(t *testing.T) {
	order := testOrder()
	order.PaymentStatus = enums.PaymentStatusAdvancePaid
	order.PaidAmount = decimal.NewFromInt(2950)

	outcome, err := applyPayment(order, enums.PaymentEventRefund, decimal.NewFromInt(-2950))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.ToStatus != enums.PaymentStatusRefunded {
		t.Fatalf("expected refunded, got %s", outcome.ToStatus)
	}
	if !outcome.Paid.IsZero() {
		t.Fatalf("expected paid back to zero, got %s", outcome.Paid)
	}

	order.PaymentStatus = enums.PaymentStatusRefunded
	if _, err := applyPayment(order, enums.PaymentEventAdvance, decimal.NewFromInt(100)); !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("refunded is terminal, got %v", err)
	}
}

func TestApplyPaymentRejectsCanceledOrder(t *testing.T) {
	order := testOrder()
	now := time.Now()
	order.CanceledAt = &now
	if _, err := applyPayment(order, enums.PaymentEventAdvance, decimal.NewFromInt(100)); !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("canceled order must conflict, got %v", err)
	}
}

func TestApplyPaymentValidatesAmountSign(t *testing.T) {
	order := testOrder()
	if _, err := applyPayment(order, enums.PaymentEventAdvance, decimal.NewFromInt(-5)); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("negative advance must be rejected, got %v", err)
	}

	order.PaymentStatus = enums.PaymentStatusFullyPaid
	order.PaidAmount = order.Total
	if _, err := applyPayment(order, enums.PaymentEventRefund, decimal.NewFromInt(5)); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("positive refund must be rejected, got %v", err)
	}
}

func TestCanStartProduction(t *testing.T) {
	order := testOrder()
	if canStartProduction(order) {
		t.Fatal("unpaid order with a required advance must not start")
	}

	order.PaymentStatus = enums.PaymentStatusAdvancePaid
	if !canStartProduction(order) {
		t.Fatal("advance-paid order must start")
	}

	credit := testOrder()
	credit.AdvancePercent = 0
	if !canStartProduction(credit) {
		t.Fatal("zero-advance order must start unpaid")
	}
}

func TestBuildInvoiceIntraState(t *testing.T) {
	order := testOrder()
	order.Items = []models.OrderLineItem{{
		Product:     "Toughened Clear",
		HSNCode:     "7007",
		ThicknessMM: decimal.NewFromInt(12),
		WidthInch:   decimal.NewFromInt(24),
		HeightInch:  decimal.NewFromInt(36),
		Quantity:    2,
		UnitPrice:   decimal.NewFromInt(1500),
	}}

	invoice, err := buildInvoice(order, "INV-2026-0001", "27")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if invoice.InvoiceNumber != "INV-2026-0001" || invoice.OrderID != order.ID {
		t.Fatalf("invoice identity wrong: %+v", invoice)
	}
	if !invoice.Subtotal.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("expected subtotal 3000, got %s", invoice.Subtotal)
	}
	if !invoice.CGST.Equal(decimal.NewFromInt(270)) || !invoice.SGST.Equal(decimal.NewFromInt(270)) {
		t.Fatalf("expected 270/270 split, got %s/%s", invoice.CGST, invoice.SGST)
	}
	if !invoice.IGST.IsZero() {
		t.Fatalf("expected no IGST, got %s", invoice.IGST)
	}
	if !invoice.Total.Equal(decimal.NewFromInt(3540)) {
		t.Fatalf("expected total 3540, got %s", invoice.Total)
	}
	if len(invoice.Lines) != 1 || invoice.Lines[0].HSNCode != "7007" {
		t.Fatalf("unexpected lines: %+v", invoice.Lines)
	}
}

func TestBuildInvoiceInterState(t *testing.T) {
	order := testOrder()
	order.BuyerStateCode = "29"
	order.Items = []models.OrderLineItem{{
		Product:     "Float Clear",
		HSNCode:     "7005",
		ThicknessMM: decimal.NewFromInt(8),
		WidthInch:   decimal.NewFromInt(24),
		HeightInch:  decimal.NewFromInt(36),
		Quantity:    1,
		UnitPrice:   decimal.NewFromInt(1000),
	}}

	invoice, err := buildInvoice(order, "INV-2026-0002", "27")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if invoice.IGST.IsZero() || !invoice.CGST.IsZero() || !invoice.SGST.IsZero() {
		t.Fatalf("expected IGST-only invoice, got cgst=%s sgst=%s igst=%s",
			invoice.CGST, invoice.SGST, invoice.IGST)
	}
}
