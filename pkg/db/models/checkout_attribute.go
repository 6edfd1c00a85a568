package models

import (
	"time"

	"github.com/google/uuid"
)

// CheckoutAttribute is a store-level attribute the customer fills in during
// checkout (e.g. gift wrapping). ShippableProductRequired attributes only
// apply when the cart contains something that ships.
type CheckoutAttribute struct {
	ID                       uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID                  uuid.UUID `gorm:"column:store_id;type:uuid;not null;index:checkout_attributes_store_id_idx"`
	Name                     string    `gorm:"column:name;not null"`
	IsRequired               bool      `gorm:"column:is_required;not null;default:false"`
	ShippableProductRequired bool      `gorm:"column:shippable_product_required;not null;default:false"`
	DisplayOrder             int       `gorm:"column:display_order;not null;default:0"`
	CreatedAt                time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
