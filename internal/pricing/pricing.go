package pricing

import (
	"github.com/shopspring/decimal"
)

// Money helpers: every rupee amount in the system is rounded half-even to
// 2 decimal places, and equality checks allow a 0.01 tolerance.

var (
	sqftDivisor = decimal.NewFromInt(144)
	hundred     = decimal.NewFromInt(100)
	tolerance   = decimal.NewFromFloat(0.01)
)

// RoundMoney applies banker's rounding to 2 decimal places.
func RoundMoney(v decimal.Decimal) decimal.Decimal {
	return v.RoundBank(2)
}

// RoundArea applies banker's rounding to 4 decimal places.
func RoundArea(v decimal.Decimal) decimal.Decimal {
	return v.RoundBank(4)
}

// MoneyEquals reports equality within the 0.01 tolerance.
func MoneyEquals(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}

// AreaSqft converts inch dimensions to square feet, rounded to 4 dp before
// any pricing happens.
func AreaSqft(widthInch, heightInch decimal.Decimal) decimal.Decimal {
	return RoundArea(widthInch.Mul(heightInch).Div(sqftDivisor))
}

// LineTotal is quantity times unit price at 2 dp.
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return RoundMoney(unitPrice.Mul(decimal.NewFromInt(int64(quantity))))
}

// BulkDiscountPercent returns the sqft-tiered discount applied to the
// subtotal: >=500 sqft 20%, >=100 15%, >=50 10%, else none.
func BulkDiscountPercent(totalSqft decimal.Decimal) int {
	switch {
	case totalSqft.GreaterThanOrEqual(decimal.NewFromInt(500)):
		return 20
	case totalSqft.GreaterThanOrEqual(decimal.NewFromInt(100)):
		return 15
	case totalSqft.GreaterThanOrEqual(decimal.NewFromInt(50)):
		return 10
	default:
		return 0
	}
}

// PercentOf returns pct% of amount at 2 dp.
func PercentOf(amount decimal.Decimal, pct int) decimal.Decimal {
	return RoundMoney(amount.Mul(decimal.NewFromInt(int64(pct))).Div(hundred))
}
