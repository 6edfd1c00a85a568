package access

import (
	"testing"

	"github.com/lib/pq"

	"github.com/cartforge/cartforge/pkg/db/models"
	"github.com/cartforge/cartforge/pkg/enums"
)

func TestAuthorizeByRole(t *testing.T) {
	svc := NewService()

	registered := &models.Customer{Roles: pq.StringArray{RoleRegistered}}
	guest := &models.Customer{Roles: pq.StringArray{RoleGuest}, IsGuest: true}

	if !svc.Authorize(registered, enums.CapabilityAccessWishlist) {
		t.Fatal("registered customers must reach the wishlist")
	}
	if svc.Authorize(guest, enums.CapabilityAccessWishlist) {
		t.Fatal("guests must not reach the wishlist")
	}
	if !svc.Authorize(guest, enums.CapabilityAccessShoppingCart) {
		t.Fatal("guests must reach the shopping cart")
	}
}

func TestAuthorizeFallsBackToGuestGrants(t *testing.T) {
	svc := NewService()
	roleless := &models.Customer{}

	if !svc.Authorize(roleless, enums.CapabilityAccessShoppingCart) {
		t.Fatal("customers without roles get the guest grant set")
	}
	if svc.Authorize(nil, enums.CapabilityAccessShoppingCart) {
		t.Fatal("nil customer must be denied")
	}
}

func TestDenialMessage(t *testing.T) {
	svc := NewService()
	if msg := svc.DenialMessage(enums.CapabilityAccessWishlist); msg == "" {
		t.Fatal("expected a denial message")
	}
}
