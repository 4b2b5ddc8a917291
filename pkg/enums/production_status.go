package enums

import "fmt"

// ProductionStatus tracks the production sub-state of an order or job card.
type ProductionStatus string

const (
	ProductionStatusPending      ProductionStatus = "pending"
	ProductionStatusCutting      ProductionStatus = "cutting"
	ProductionStatusPolishing    ProductionStatus = "polishing"
	ProductionStatusGrinding     ProductionStatus = "grinding"
	ProductionStatusToughening   ProductionStatus = "toughening"
	ProductionStatusQualityCheck ProductionStatus = "quality_check"
	ProductionStatusPacking      ProductionStatus = "packing"
	ProductionStatusDispatched   ProductionStatus = "dispatched"
	ProductionStatusDelivered    ProductionStatus = "delivered"
)

// ProductionPath is the forward stage order; transitions walk it left to right.
var ProductionPath = []ProductionStatus{
	ProductionStatusPending,
	ProductionStatusCutting,
	ProductionStatusPolishing,
	ProductionStatusGrinding,
	ProductionStatusToughening,
	ProductionStatusQualityCheck,
	ProductionStatusPacking,
	ProductionStatusDispatched,
	ProductionStatusDelivered,
}

// String implements fmt.Stringer.
func (p ProductionStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductionStatus.
func (p ProductionStatus) IsValid() bool {
	return p.index() >= 0
}

// IsTerminal reports whether no further production transitions are allowed.
func (p ProductionStatus) IsTerminal() bool {
	return p == ProductionStatusDelivered
}

func (p ProductionStatus) index() int {
	for i, candidate := range ProductionPath {
		if candidate == p {
			return i
		}
	}
	return -1
}

// Next returns the immediate successor stage, or "" at the end of the path.
func (p ProductionStatus) Next() ProductionStatus {
	i := p.index()
	if i < 0 || i+1 >= len(ProductionPath) {
		return ""
	}
	return ProductionPath[i+1]
}

// CanAdvanceTo reports whether target is a legal forward transition from p.
// The only permitted jump is polishing straight to toughening, which skips
// the grinding stage; callers gate that on supervisor role.
func (p ProductionStatus) CanAdvanceTo(target ProductionStatus, allowGrindingSkip bool) bool {
	from, to := p.index(), target.index()
	if from < 0 || to < 0 {
		return false
	}
	if to == from+1 {
		return true
	}
	return allowGrindingSkip &&
		p == ProductionStatusPolishing &&
		target == ProductionStatusToughening
}

// ParseProductionStatus converts raw input into a ProductionStatus.
func ParseProductionStatus(value string) (ProductionStatus, error) {
	for _, candidate := range ProductionPath {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid production status %q", value)
}
