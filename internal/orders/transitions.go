package orders

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shreeglass/erp-backend/internal/pricing"
	"github.com/shreeglass/erp-backend/pkg/db/models"
	"github.com/shreeglass/erp-backend/pkg/enums"
	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
)

// paymentOutcome is the computed result of applying one payment event to an
// order's monetary state. It is derived purely so the decision can be tested
// without a database.
type paymentOutcome struct {
	FromStatus enums.PaymentStatus
	ToStatus   enums.PaymentStatus
	Paid       decimal.Decimal
	Remaining  decimal.Decimal
	Transition enums.OrderTransition
}

// applyPayment decides the next payment sub-state for an incoming event.
// Advance and remaining payments only move forward; a refund is terminal.
func applyPayment(order *models.Order, kind enums.PaymentEventKind, amount decimal.Decimal) (paymentOutcome, error) {
	if order.CanceledAt != nil {
		return paymentOutcome{}, pkgerrors.New(pkgerrors.CodeStateConflict, "order is canceled")
	}
	if order.PaymentStatus.IsTerminal() {
		return paymentOutcome{}, pkgerrors.New(pkgerrors.CodeStateConflict, "payment state is terminal")
	}

	switch kind {
	case enums.PaymentEventAdvance, enums.PaymentEventRemaining:
		if !amount.IsPositive() {
			return paymentOutcome{}, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
		}
	case enums.PaymentEventRefund:
		if !amount.IsNegative() {
			return paymentOutcome{}, pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be negative")
		}
	default:
		return paymentOutcome{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment event kind")
	}

	outcome := paymentOutcome{FromStatus: order.PaymentStatus}

	switch kind {
	case enums.PaymentEventAdvance:
		if order.PaymentStatus != enums.PaymentStatusUnpaid {
			return paymentOutcome{}, pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("advance payment not accepted while %s", order.PaymentStatus))
		}
	case enums.PaymentEventRemaining:
		if order.PaymentStatus != enums.PaymentStatusAdvancePaid {
			return paymentOutcome{}, pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("remaining payment not accepted while %s", order.PaymentStatus))
		}
	case enums.PaymentEventRefund:
		if order.PaymentStatus == enums.PaymentStatusUnpaid {
			return paymentOutcome{}, pkgerrors.New(pkgerrors.CodeStateConflict, "nothing to refund")
		}
		outcome.ToStatus = enums.PaymentStatusRefunded
		outcome.Paid = pricing.RoundMoney(order.PaidAmount.Add(amount))
		outcome.Remaining = pricing.RoundMoney(order.Total.Sub(outcome.Paid))
		outcome.Transition = enums.TransitionRefunded
		return outcome, nil
	}

	outcome.Paid = pricing.RoundMoney(order.PaidAmount.Add(amount))
	if outcome.Paid.GreaterThan(order.Total) && !pricing.MoneyEquals(outcome.Paid, order.Total) {
		return paymentOutcome{}, pkgerrors.New(pkgerrors.CodeValidation, "payment exceeds the order balance")
	}
	outcome.Remaining = pricing.RoundMoney(order.Total.Sub(outcome.Paid))

	if outcome.Paid.GreaterThanOrEqual(order.Total) || pricing.MoneyEquals(outcome.Paid, order.Total) {
		outcome.ToStatus = enums.PaymentStatusFullyPaid
		outcome.Remaining = decimal.Zero
		outcome.Transition = enums.TransitionFullyPaid
	} else {
		outcome.ToStatus = enums.PaymentStatusAdvancePaid
		outcome.Transition = enums.TransitionAdvancePaid
	}
	return outcome, nil
}

// canStartProduction gates the move into cutting: money first, unless the
// order was legitimately placed with a zero advance.
func canStartProduction(order *models.Order) bool {
	if order.PaymentStatus == enums.PaymentStatusAdvancePaid ||
		order.PaymentStatus == enums.PaymentStatusFullyPaid {
		return true
	}
	return order.AdvancePercent == 0
}

// buildInvoice freezes the order into its invoice rows. Amounts are
// recomputed from the line items so the invoice never trusts stored totals.
func buildInvoice(order *models.Order, invoiceNumber, sellerStateCode string) (*models.Invoice, error) {
	inputs := make([]pricing.LineInput, 0, len(order.Items))
	for _, item := range order.Items {
		inputs = append(inputs, pricing.LineInput{
			HSNCode:    item.HSNCode,
			WidthInch:  item.WidthInch,
			HeightInch: item.HeightInch,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
		})
	}

	quote, err := pricing.QuoteOrder(inputs, order.BuyerStateCode, sellerStateCode)
	if err != nil {
		return nil, err
	}

	invoice := &models.Invoice{
		InvoiceNumber:  invoiceNumber,
		OrderID:        order.ID,
		CustomerName:   order.CustomerName,
		CustomerGSTIN:  order.CustomerGSTIN,
		BuyerStateCode: order.BuyerStateCode,
		Subtotal:       quote.Subtotal,
		DiscountAmount: quote.DiscountAmount,
		CGST:           quote.Tax.CGST,
		SGST:           quote.Tax.SGST,
		IGST:           quote.Tax.IGST,
		Total:          quote.Total,
	}
	for i, item := range order.Items {
		line := quote.Lines[i]
		invoice.Lines = append(invoice.Lines, models.InvoiceLine{
			Description: describeItem(item),
			HSNCode:     item.HSNCode,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Taxable:     line.Taxable,
			CGST:        line.Tax.CGST,
			SGST:        line.Tax.SGST,
			IGST:        line.Tax.IGST,
		})
	}
	return invoice, nil
}

func describeItem(item models.OrderLineItem) string {
	return fmt.Sprintf("%s %smm %s\"x%s\"",
		item.Product, item.ThicknessMM, item.WidthInch, item.HeightInch)
}
