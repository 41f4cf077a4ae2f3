package enums

import "fmt"

// CashMovementType classifies entries in the cash drawer ledger.
type CashMovementType string

const (
	CashMovementOpening       CashMovementType = "opening"
	CashMovementReinforcement CashMovementType = "reinforcement"
	CashMovementWithdrawal    CashMovementType = "withdrawal"
	CashMovementSale          CashMovementType = "sale"
	CashMovementClosing       CashMovementType = "closing"
)

var validCashMovementTypes = []CashMovementType{
	CashMovementOpening,
	CashMovementReinforcement,
	CashMovementWithdrawal,
	CashMovementSale,
	CashMovementClosing,
}

// String implements fmt.Stringer.
func (c CashMovementType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CashMovementType.
func (c CashMovementType) IsValid() bool {
	for _, candidate := range validCashMovementTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// Subtracts reports whether the movement reduces the drawer balance.
func (c CashMovementType) Subtracts() bool {
	return c == CashMovementWithdrawal
}

// ParseCashMovementType converts raw input into a CashMovementType.
func ParseCashMovementType(value string) (CashMovementType, error) {
	for _, candidate := range validCashMovementTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cash movement type %q", value)
}
