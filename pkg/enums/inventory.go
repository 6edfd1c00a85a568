package enums

import "fmt"

// InventoryMethod selects which stock bookkeeping applies to a product.
type InventoryMethod string

const (
	InventoryMethodNone         InventoryMethod = "dont_manage"
	InventoryMethodTrack        InventoryMethod = "manage_stock"
	InventoryMethodByAttributes InventoryMethod = "manage_stock_by_attributes"
)

var validInventoryMethods = []InventoryMethod{
	InventoryMethodNone,
	InventoryMethodTrack,
	InventoryMethodByAttributes,
}

// String implements fmt.Stringer.
func (m InventoryMethod) String() string {
	return string(m)
}

// IsValid reports whether the value is a known InventoryMethod.
func (m InventoryMethod) IsValid() bool {
	for _, candidate := range validInventoryMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseInventoryMethod converts raw input into an InventoryMethod.
func ParseInventoryMethod(value string) (InventoryMethod, error) {
	for _, candidate := range validInventoryMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inventory method %q", value)
}

// BackorderMode controls ordering past available stock.
type BackorderMode string

const (
	BackorderModeNone        BackorderMode = "no_backorders"
	BackorderModeAllow       BackorderMode = "allow_qty_below_zero"
	BackorderModeAllowNotify BackorderMode = "allow_qty_below_zero_notify"
)

var validBackorderModes = []BackorderMode{
	BackorderModeNone,
	BackorderModeAllow,
	BackorderModeAllowNotify,
}

// String implements fmt.Stringer.
func (b BackorderMode) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BackorderMode.
func (b BackorderMode) IsValid() bool {
	for _, candidate := range validBackorderModes {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBackorderMode converts raw input into a BackorderMode.
func ParseBackorderMode(value string) (BackorderMode, error) {
	for _, candidate := range validBackorderModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid backorder mode %q", value)
}
