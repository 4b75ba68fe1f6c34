package enums

import "fmt"

// StampAction maps to the stamp_action_enum enum in Postgres. Each loyalty
// card event records one of these actions.
type StampAction string

const (
	StampActionStamp    StampAction = "stamp"
	StampActionRedeem   StampAction = "redeem"
	StampActionComplete StampAction = "complete"
)

var validStampActions = []StampAction{
	StampActionStamp,
	StampActionRedeem,
	StampActionComplete,
}

// IsValid reports whether the value matches the canonical stamp action enum.
func (a StampAction) IsValid() bool {
	for _, candidate := range validStampActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseStampAction converts raw input into StampAction.
func ParseStampAction(value string) (StampAction, error) {
	for _, candidate := range validStampActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stamp action %q", value)
}
