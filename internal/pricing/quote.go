package pricing

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
)

// LineInput is one glass piece specification to price. The calculator is
// pure: no clock, no I/O, no shared state.
type LineInput struct {
	HSNCode    string
	WidthInch  decimal.Decimal
	HeightInch decimal.Decimal
	Quantity   int
	UnitPrice  decimal.Decimal
}

// LineResult carries the priced line alongside its tax contribution.
type LineResult struct {
	Total   decimal.Decimal
	Sqft    decimal.Decimal
	Taxable decimal.Decimal
	Tax     TaxSplit
}

// Quote is the full monetary breakdown for an order.
type Quote struct {
	Lines           []LineResult
	TotalSqft       decimal.Decimal
	Subtotal        decimal.Decimal
	DiscountPercent int
	DiscountAmount  decimal.Decimal
	Tax             TaxSplit
	TaxAmount       decimal.Decimal
	Total           decimal.Decimal
}

// QuoteOrder prices a set of lines: line totals, sqft-tiered bulk discount on
// the subtotal, and a per-line GST split summed into the aggregate. The
// discount is spread proportionally across lines before tax so the taxable
// base matches the discounted subtotal.
func QuoteOrder(lines []LineInput, buyerStateCode, sellerStateCode string) (*Quote, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line item is required")
	}

	quote := &Quote{}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive")
		}
		if line.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line unit price cannot be negative")
		}
		if !line.WidthInch.IsPositive() || !line.HeightInch.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line dimensions must be positive")
		}

		sqft := AreaSqft(line.WidthInch, line.HeightInch).Mul(decimal.NewFromInt(int64(line.Quantity)))
		total := LineTotal(line.Quantity, line.UnitPrice)

		quote.Lines = append(quote.Lines, LineResult{Total: total, Sqft: sqft})
		quote.TotalSqft = quote.TotalSqft.Add(sqft)
		quote.Subtotal = quote.Subtotal.Add(total)
	}

	quote.Subtotal = RoundMoney(quote.Subtotal)
	quote.DiscountPercent = BulkDiscountPercent(quote.TotalSqft)
	quote.DiscountAmount = PercentOf(quote.Subtotal, quote.DiscountPercent)

	keepRatio := decimal.NewFromInt(int64(100 - quote.DiscountPercent)).Div(hundred)
	for i, line := range lines {
		taxable := quote.Lines[i].Total.Mul(keepRatio)
		split := SplitGST(taxable, RateForHSN(line.HSNCode), buyerStateCode, sellerStateCode)
		quote.Lines[i].Taxable = RoundMoney(taxable)
		quote.Lines[i].Tax = split
		quote.Tax = quote.Tax.Add(split)
	}

	quote.TaxAmount = quote.Tax.Total()
	quote.Total = RoundMoney(quote.Subtotal.Sub(quote.DiscountAmount).Add(quote.TaxAmount))
	return quote, nil
}
