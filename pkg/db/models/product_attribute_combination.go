package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/cartforge/cartforge/pkg/types"
)

// ProductAttributeCombination is a catalog-defined pairing of attribute values
// that carries its own stock, price and availability overrides.
type ProductAttributeCombination struct {
	ID                    uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID             uuid.UUID                `gorm:"column:product_id;type:uuid;not null;index:product_attribute_combinations_product_id_idx"`
	Selection             types.AttributeSelection `gorm:"column:selection;type:jsonb;serializer:json"`
	StockQuantity         int                      `gorm:"column:stock_quantity;not null;default:0"`
	AllowOutOfStockOrders bool                     `gorm:"column:allow_out_of_stock_orders;not null;default:false"`
	IsActive              bool                     `gorm:"column:is_active;not null;default:true"`
	PriceCents            *int64                   `gorm:"column:price_cents"`
	CreatedAt             time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
