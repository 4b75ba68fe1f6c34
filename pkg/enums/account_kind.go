package enums

import "fmt"

// AccountKind distinguishes the two ledger account families: persons carry
// prepaid credit, debtors carry outstanding debt.
type AccountKind string

const (
	AccountKindPerson AccountKind = "person"
	AccountKindDebtor AccountKind = "debtor"
)

var validAccountKinds = []AccountKind{
	AccountKindPerson,
	AccountKindDebtor,
}

// IsValid reports whether the value matches the canonical account kind enum.
func (k AccountKind) IsValid() bool {
	for _, candidate := range validAccountKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseAccountKind converts raw input into AccountKind.
func ParseAccountKind(value string) (AccountKind, error) {
	for _, candidate := range validAccountKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid account kind %q", value)
}
