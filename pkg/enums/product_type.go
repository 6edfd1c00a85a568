package enums

import "fmt"

// ProductType classifies how a product participates in the cart.
type ProductType string

const (
	// ProductTypeSimple is a directly orderable product.
	ProductTypeSimple ProductType = "simple"
	// ProductTypeGrouped is a display-only container and never orderable.
	ProductTypeGrouped ProductType = "grouped"
	// ProductTypeBundle is composed of fixed quantities of other products.
	ProductTypeBundle ProductType = "bundle"
)

var validProductTypes = []ProductType{
	ProductTypeSimple,
	ProductTypeGrouped,
	ProductTypeBundle,
}

// String implements fmt.Stringer.
func (p ProductType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductType.
func (p ProductType) IsValid() bool {
	for _, candidate := range validProductTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProductType converts raw input into a ProductType.
func ParseProductType(value string) (ProductType, error) {
	for _, candidate := range validProductTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product type %q", value)
}
