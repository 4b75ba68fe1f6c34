package enums

import "fmt"

// CardBinding maps to the card_binding_enum enum in Postgres. It determines
// which products count toward a loyalty card type.
type CardBinding string

const (
	CardBindingProduct  CardBinding = "product"
	CardBindingProducts CardBinding = "products"
	CardBindingCategory CardBinding = "category"
)

var validCardBindings = []CardBinding{
	CardBindingProduct,
	CardBindingProducts,
	CardBindingCategory,
}

// IsValid reports whether the value matches the canonical card binding enum.
func (b CardBinding) IsValid() bool {
	for _, candidate := range validCardBindings {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseCardBinding converts raw input into CardBinding.
func ParseCardBinding(value string) (CardBinding, error) {
	for _, candidate := range validCardBindings {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid card binding %q", value)
}
