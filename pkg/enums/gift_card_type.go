package enums

import "fmt"

// GiftCardType distinguishes e-mailed gift cards from shipped ones.
type GiftCardType string

const (
	GiftCardTypeVirtual  GiftCardType = "virtual"
	GiftCardTypePhysical GiftCardType = "physical"
)

var validGiftCardTypes = []GiftCardType{
	GiftCardTypeVirtual,
	GiftCardTypePhysical,
}

// String implements fmt.Stringer.
func (g GiftCardType) String() string {
	return string(g)
}

// IsValid reports whether the value is a known GiftCardType.
func (g GiftCardType) IsValid() bool {
	for _, candidate := range validGiftCardTypes {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseGiftCardType converts raw input into a GiftCardType.
func ParseGiftCardType(value string) (GiftCardType, error) {
	for _, candidate := range validGiftCardTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid gift card type %q", value)
}
