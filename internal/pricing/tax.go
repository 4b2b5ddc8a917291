package pricing

import (
	"github.com/shopspring/decimal"
)

// hsnRates maps HSN codes to GST percentages. Glass and glassware sit at 18%
// across the chapters this business ships under; the map stays explicit so a
// rate change is a one-line edit.
var hsnRates = map[string]decimal.Decimal{
	"7003": decimal.NewFromInt(18), // cast glass sheets
	"7005": decimal.NewFromInt(18), // float glass
	"7007": decimal.NewFromInt(18), // toughened / laminated safety glass
	"7009": decimal.NewFromInt(18), // glass mirrors
	"7020": decimal.NewFromInt(18), // other articles of glass
	"9988": decimal.NewFromInt(18), // job-work services
}

var defaultHSNRate = decimal.NewFromInt(18)

// RateForHSN returns the GST percentage for the HSN code, defaulting to 18.
func RateForHSN(hsn string) decimal.Decimal {
	if rate, ok := hsnRates[hsn]; ok {
		return rate
	}
	return defaultHSNRate
}

// TaxSplit is a per-line or aggregate GST breakdown.
type TaxSplit struct {
	CGST decimal.Decimal `json:"cgst"`
	SGST decimal.Decimal `json:"sgst"`
	IGST decimal.Decimal `json:"igst"`
}

// Total returns the summed tax across components.
func (t TaxSplit) Total() decimal.Decimal {
	return t.CGST.Add(t.SGST).Add(t.IGST)
}

// Add accumulates another split into this one.
func (t TaxSplit) Add(other TaxSplit) TaxSplit {
	return TaxSplit{
		CGST: t.CGST.Add(other.CGST),
		SGST: t.SGST.Add(other.SGST),
		IGST: t.IGST.Add(other.IGST),
	}
}

// SplitGST computes the GST components for one taxable amount. A shared
// buyer/seller state code splits the tax equally into CGST and SGST; an
// inter-state sale emits the whole tax as IGST. Rounding is per call, so
// callers round per line and then sum.
func SplitGST(taxable decimal.Decimal, ratePercent decimal.Decimal, buyerStateCode, sellerStateCode string) TaxSplit {
	tax := taxable.Mul(ratePercent).Div(hundred)
	if buyerStateCode == sellerStateCode {
		half := RoundMoney(tax.Div(decimal.NewFromInt(2)))
		return TaxSplit{CGST: half, SGST: half, IGST: decimal.Zero}
	}
	return TaxSplit{CGST: decimal.Zero, SGST: decimal.Zero, IGST: RoundMoney(tax)}
}
