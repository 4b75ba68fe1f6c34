package enums

import "fmt"

// CardScheme maps to the card_scheme_enum enum in Postgres.
//
// buy_n_get_1: collect requiredPurchases stamps, next eligible purchase is free.
// pay_n_get_m: collect payCount stamps, the bonus covers getCount-payCount items.
// stamps_only: pure progress tracking, the card completes without a free item.
type CardScheme string

const (
	CardSchemeBuyNGet1   CardScheme = "buy_n_get_1"
	CardSchemePayNGetM   CardScheme = "pay_n_get_m"
	CardSchemeStampsOnly CardScheme = "stamps_only"
)

var validCardSchemes = []CardScheme{
	CardSchemeBuyNGet1,
	CardSchemePayNGetM,
	CardSchemeStampsOnly,
}

// IsValid reports whether the value matches the canonical card scheme enum.
func (s CardScheme) IsValid() bool {
	for _, candidate := range validCardSchemes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseCardScheme converts raw input into CardScheme.
func ParseCardScheme(value string) (CardScheme, error) {
	for _, candidate := range validCardSchemes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid card scheme %q", value)
}
