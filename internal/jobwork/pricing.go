package jobwork

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shreeglass/erp-backend/internal/pricing"
)

// labourRates maps glass thickness (mm) to the labour rate per square foot.
// Unlisted thicknesses fall back to the nearest rate below, or the minimum.
var labourRates = []struct {
	ThicknessMM decimal.Decimal
	RateSqft    decimal.Decimal
}{
	{decimal.NewFromInt(4), decimal.NewFromInt(8)},
	{decimal.NewFromInt(5), decimal.NewFromInt(10)},
	{decimal.NewFromInt(6), decimal.NewFromInt(12)},
	{decimal.NewFromInt(8), decimal.NewFromInt(16)},
	{decimal.NewFromInt(10), decimal.NewFromInt(20)},
	{decimal.NewFromInt(12), decimal.NewFromInt(25)},
}

// LabourRateForThickness returns the per-sqft labour rate for a thickness.
func LabourRateForThickness(thicknessMM decimal.Decimal) decimal.Decimal {
	rate := labourRates[0].RateSqft
	for _, entry := range labourRates {
		if thicknessMM.GreaterThanOrEqual(entry.ThicknessMM) {
			rate = entry.RateSqft
		}
	}
	return rate
}

// LabourTotal prices one job-work batch: sqft per piece times pieces times
// the thickness rate, at 2 dp.
func LabourTotal(widthInch, heightInch decimal.Decimal, pieces int, rateSqft decimal.Decimal) decimal.Decimal {
	sqft := pricing.AreaSqft(widthInch, heightInch).Mul(decimal.NewFromInt(int64(pieces)))
	return pricing.RoundMoney(sqft.Mul(rateSqft))
}

// disclaimerTemplate is rendered into every job-work order. The customer
// supplies the glass; the company is not liable for breakage in process.
const disclaimerTemplate = "I, %s, accept that the glass supplied against job number %s " +
	"is my own material, and that Shree Glass will not be held liable for any breakage, " +
	"scratches or damage occurring during processing. Dated %s."

// RenderDisclaimer produces the liability text frozen onto the order.
func RenderDisclaimer(customerName, jobNumber string, at time.Time) string {
	return fmt.Sprintf(disclaimerTemplate, customerName, jobNumber, at.Format("02 Jan 2006"))
}
