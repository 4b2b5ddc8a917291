package enums

import "fmt"

// PaymentEventKind classifies append-only payment events.
type PaymentEventKind string

const (
	PaymentEventAdvance   PaymentEventKind = "advance"
	PaymentEventRemaining PaymentEventKind = "remaining"
	PaymentEventRefund    PaymentEventKind = "refund"
)

var validPaymentEventKinds = []PaymentEventKind{
	PaymentEventAdvance,
	PaymentEventRemaining,
	PaymentEventRefund,
}

func (k PaymentEventKind) String() string {
	return string(k)
}

func (k PaymentEventKind) IsValid() bool {
	for _, candidate := range validPaymentEventKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

func ParsePaymentEventKind(value string) (PaymentEventKind, error) {
	for _, candidate := range validPaymentEventKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment event kind %q", value)
}
