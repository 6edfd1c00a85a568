package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/cartforge/cartforge/pkg/enums"
	"github.com/cartforge/cartforge/pkg/types"
)

// CartItem is one persisted cart line. Bundle children carry a non-nil
// ParentItemID plus the BundleItemID of the slot they fill; a child's cart
// type always equals its parent's.
type CartItem struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID uuid.UUID      `gorm:"column:customer_id;type:uuid;not null;index:cart_items_customer_idx"`
	StoreID    uuid.UUID      `gorm:"column:store_id;type:uuid;not null"`
	CartType   enums.CartType `gorm:"column:cart_type;not null"`
	ProductID  uuid.UUID      `gorm:"column:product_id;type:uuid;not null"`
	Quantity   int            `gorm:"column:quantity;not null"`

	Selection         types.AttributeSelection `gorm:"column:selection;type:jsonb;serializer:json"`
	EnteredPriceCents int64                    `gorm:"column:entered_price_cents;not null;default:0"`

	ParentItemID *uuid.UUID `gorm:"column:parent_item_id;type:uuid;index:cart_items_parent_idx"`
	BundleItemID *uuid.UUID `gorm:"column:bundle_item_id;type:uuid"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// IsChild reports whether the line fills a bundle slot under a parent line.
func (c *CartItem) IsChild() bool {
	return c.ParentItemID != nil
}
