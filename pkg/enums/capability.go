package enums

// Capability names a customer-facing permission checked before cart access.
type Capability string

const (
	CapabilityAccessShoppingCart Capability = "access_shopping_cart"
	CapabilityAccessWishlist     Capability = "access_wishlist"
)

// String implements fmt.Stringer.
func (c Capability) String() string {
	return string(c)
}

// CapabilityForCartType maps a cart type to the capability guarding it.
func CapabilityForCartType(cartType CartType) Capability {
	if cartType == CartTypeWishlist {
		return CapabilityAccessWishlist
	}
	return CapabilityAccessShoppingCart
}
