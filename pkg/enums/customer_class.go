package enums

import "fmt"

// CustomerClass feeds the advance policy decision.
type CustomerClass string

const (
	CustomerClassStandard CustomerClass = "standard"
	CustomerClassCredit   CustomerClass = "credit"
	CustomerClassAdmin    CustomerClass = "admin"
)

var validCustomerClasses = []CustomerClass{
	CustomerClassStandard,
	CustomerClassCredit,
	CustomerClassAdmin,
}

func (c CustomerClass) String() string {
	return string(c)
}

func (c CustomerClass) IsValid() bool {
	for _, candidate := range validCustomerClasses {
		if candidate == c {
			return true
		}
	}
	return false
}

func ParseCustomerClass(value string) (CustomerClass, error) {
	for _, candidate := range validCustomerClasses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid customer class %q", value)
}
