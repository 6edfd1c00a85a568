package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/cartforge/cartforge/pkg/db/types"
)

// ProductBundleItem is one slot of a bundle product: a fixed quantity of a
// child product, optionally discounted, with attribute inputs filtered down to
// an allowed subset.
type ProductBundleItem struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BundleProductID uuid.UUID        `gorm:"column:bundle_product_id;type:uuid;not null;index:product_bundle_items_bundle_product_id_idx"`
	ProductID       uuid.UUID        `gorm:"column:product_id;type:uuid;not null"`
	Quantity        int              `gorm:"column:quantity;not null;default:1"`
	Discount        *decimal.Decimal `gorm:"column:discount;type:numeric(18,4)"`

	// FilteredAttributeIDs lists attribute mappings whose input is hidden for
	// this slot; required-attribute validation skips them.
	FilteredAttributeIDs dbtypes.UUIDArray `gorm:"column:filtered_attribute_ids;type:uuid[]"`

	Published    bool      `gorm:"column:published;not null;default:true"`
	DisplayOrder int       `gorm:"column:display_order;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// FiltersAttribute reports whether the slot hides input for the given mapping.
func (b *ProductBundleItem) FiltersAttribute(mappingID uuid.UUID) bool {
	return b.FilteredAttributeIDs.Contains(mappingID)
}
