package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductAttributeMapping attaches a configurable attribute (color, size, ...)
// to a product.
type ProductAttributeMapping struct {
	ID           uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID    uuid.UUID               `gorm:"column:product_id;type:uuid;not null;index:product_attribute_mappings_product_id_idx"`
	Name         string                  `gorm:"column:name;not null"`
	IsRequired   bool                    `gorm:"column:is_required;not null;default:false"`
	DisplayOrder int                     `gorm:"column:display_order;not null;default:0"`
	Values       []ProductAttributeValue `gorm:"foreignKey:MappingID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// ProductAttributeValue is one selectable value of an attribute mapping. A
// value may link another catalog product, pulling it into validation.
type ProductAttributeValue struct {
	ID                    uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MappingID             uuid.UUID       `gorm:"column:mapping_id;type:uuid;not null;index:product_attribute_values_mapping_id_idx"`
	Name                  string          `gorm:"column:name;not null"`
	PriceAdjustment       decimal.Decimal `gorm:"column:price_adjustment;type:numeric(18,4);not null;default:0"`
	LinkedProductID       *uuid.UUID      `gorm:"column:linked_product_id;type:uuid"`
	LinkedProductQuantity int             `gorm:"column:linked_product_quantity;not null;default:1"`
	DisplayOrder          int             `gorm:"column:display_order;not null;default:0"`
	CreatedAt             time.Time       `gorm:"column:created_at;autoCreateTime"`
}
