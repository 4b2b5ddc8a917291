package advance

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
	"github.com/shreeglass/erp-backend/pkg/enums"
)

// Settings mirrors the process-wide advance-settings singleton. It is passed
// in explicitly; the policy itself holds no state and never consults a clock.
type Settings struct {
	NoAdvanceUpto              decimal.Decimal
	MinAdvancePercentUpto5000  int
	MinAdvancePercentAbove5000 int
	CreditEnabled              bool
}

// Decision is the advance options offered to a customer for one order total.
type Decision struct {
	Allowed         []int `json:"allowed"`
	MinRequired     int   `json:"min_required"`
	CreditAvailable bool  `json:"credit_available"`
}

var upto5000 = decimal.NewFromInt(5000)

// Decide returns the allowed advance percentages for a standard order.
// Tiny orders (at or below the no-advance threshold) demand full payment up
// front; larger orders step from the configured minimum to 100 in 25-point
// increments. Credit customers (and admin overrides) may defer entirely.
func Decide(total decimal.Decimal, class enums.CustomerClass, settings Settings) (Decision, error) {
	if total.IsNegative() {
		return Decision{}, pkgerrors.New(pkgerrors.CodeValidation, "order total cannot be negative")
	}
	if !class.IsValid() {
		return Decision{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown customer class")
	}

	var decision Decision
	switch {
	case total.LessThanOrEqual(settings.NoAdvanceUpto):
		decision = Decision{Allowed: []int{100}, MinRequired: 100}
	case total.LessThanOrEqual(upto5000):
		decision = stepped(settings.MinAdvancePercentUpto5000)
	default:
		decision = stepped(settings.MinAdvancePercentAbove5000)
	}

	creditCustomer := class == enums.CustomerClassCredit && settings.CreditEnabled
	if creditCustomer || class == enums.CustomerClassAdmin {
		decision.Allowed = append([]int{0}, decision.Allowed...)
		decision.CreditAvailable = creditCustomer
	}
	return decision, nil
}

// DecideJobwork applies the non-negotiable job-work rule: a single piece pays
// in full, anything more pays at least half.
func DecideJobwork(itemCount int) (Decision, error) {
	if itemCount <= 0 {
		return Decision{}, pkgerrors.New(pkgerrors.CodeValidation, "job-work needs at least one piece")
	}
	if itemCount == 1 {
		return Decision{Allowed: []int{100}, MinRequired: 100}, nil
	}
	return Decision{Allowed: []int{50, 100}, MinRequired: 50}, nil
}

// stepped builds {min, min+25step grid ..., 100} clipped at the minimum.
func stepped(min int) Decision {
	if min < 0 {
		min = 0
	}
	if min > 100 {
		min = 100
	}

	allowed := []int{}
	if min%25 != 0 {
		allowed = append(allowed, min)
	}
	for pct := 0; pct <= 100; pct += 25 {
		if pct >= min {
			allowed = append(allowed, pct)
		}
	}
	return Decision{Allowed: allowed, MinRequired: min}
}

// IsAllowed reports whether pct is one of the decision's options.
func (d Decision) IsAllowed(pct int) bool {
	for _, candidate := range d.Allowed {
		if candidate == pct {
			return true
		}
	}
	return false
}
