package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/cartforge/cartforge/pkg/types"
)

// Customer owns cart line items and carries the checkout progress markers the
// composer resets on every cart mutation.
type Customer struct {
	ID                     uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email                  *string                   `gorm:"column:email"`
	IsGuest                bool                      `gorm:"column:is_guest;not null;default:false"`
	Roles                  pq.StringArray            `gorm:"column:roles;type:text[]"`
	SelectedPaymentMethod  *string                   `gorm:"column:selected_payment_method"`
	SelectedShippingOption *string                   `gorm:"column:selected_shipping_option"`
	CheckoutAttributes     *types.AttributeSelection `gorm:"column:checkout_attributes;type:jsonb;serializer:json"`
	CreatedAt              time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}

// HasRole reports whether the customer carries the named role.
func (c *Customer) HasRole(role string) bool {
	for _, candidate := range c.Roles {
		if candidate == role {
			return true
		}
	}
	return false
}
