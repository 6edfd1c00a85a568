package access

import (
	"fmt"

	"github.com/cartforge/cartforge/pkg/db/models"
	"github.com/cartforge/cartforge/pkg/enums"
)

// Customer role names recognized by the capability grants.
const (
	RoleRegistered = "registered"
	RoleGuest      = "guest"
	RoleAdmin      = "admin"
)

// defaultGrants maps each role to the capabilities it carries. Guests keep
// shopping cart access only; a wishlist needs an account to survive the
// session.
var defaultGrants = map[string][]enums.Capability{
	RoleRegistered: {enums.CapabilityAccessShoppingCart, enums.CapabilityAccessWishlist},
	RoleAdmin:      {enums.CapabilityAccessShoppingCart, enums.CapabilityAccessWishlist},
	RoleGuest:      {enums.CapabilityAccessShoppingCart},
}

// Service answers capability checks for customers based on their role set.
type Service struct {
	grants map[string][]enums.Capability
}

// NewService builds a capability checker with the default role grants.
func NewService() *Service {
	return &Service{grants: defaultGrants}
}

// Authorize reports whether any of the customer's roles grants the capability.
// Customers without roles fall back to the guest grant set.
func (s *Service) Authorize(customer *models.Customer, capability enums.Capability) bool {
	if customer == nil {
		return false
	}
	roles := customer.Roles
	if len(roles) == 0 {
		roles = []string{RoleGuest}
	}
	for _, role := range roles {
		for _, granted := range s.grants[role] {
			if granted == capability {
				return true
			}
		}
	}
	return false
}

// DenialMessage renders the violation text for a failed capability check.
func (s *Service) DenialMessage(capability enums.Capability) string {
	switch capability {
	case enums.CapabilityAccessWishlist:
		return "wishlist is not available for this account"
	case enums.CapabilityAccessShoppingCart:
		return "shopping cart is not available for this account"
	default:
		return fmt.Sprintf("capability %s is not granted", capability)
	}
}
