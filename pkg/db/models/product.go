package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	dbtypes "github.com/cartforge/cartforge/pkg/db/types"
	"github.com/cartforge/cartforge/pkg/enums"
)

// Product is the catalog entry the cart engine validates against.
type Product struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string            `gorm:"column:name;not null"`
	SKU         string            `gorm:"column:sku;not null"`
	ProductType enums.ProductType `gorm:"column:product_type;not null;default:'simple'"`
	Published   bool              `gorm:"column:published;not null;default:true"`
	Deleted     bool              `gorm:"column:deleted;not null;default:false"`

	// Empty arrays mean "no restriction".
	LimitedToStoreIDs dbtypes.UUIDArray `gorm:"column:limited_to_store_ids;type:uuid[]"`
	LimitedToRoles    pq.StringArray    `gorm:"column:limited_to_roles;type:text[]"`

	VisibleIndividually   bool `gorm:"column:visible_individually;not null;default:true"`
	DisableBuyButton      bool `gorm:"column:disable_buy_button;not null;default:false"`
	DisableWishlistButton bool `gorm:"column:disable_wishlist_button;not null;default:false"`
	CallForPrice          bool `gorm:"column:call_for_price;not null;default:false"`

	PriceCents           int64 `gorm:"column:price_cents;not null;default:0"`
	CustomerEntersPrice  bool  `gorm:"column:customer_enters_price;not null;default:false"`
	MinEnteredPriceCents int64 `gorm:"column:min_entered_price_cents;not null;default:0"`
	MaxEnteredPriceCents int64 `gorm:"column:max_entered_price_cents;not null;default:0"`

	OrderMinimumQuantity int           `gorm:"column:order_minimum_quantity;not null;default:1"`
	OrderMaximumQuantity int           `gorm:"column:order_maximum_quantity;not null;default:10000"`
	AllowedQuantities    pq.Int64Array `gorm:"column:allowed_quantities;type:integer[]"`

	InventoryMethod enums.InventoryMethod `gorm:"column:inventory_method;not null;default:'dont_manage'"`
	StockQuantity   int                   `gorm:"column:stock_quantity;not null;default:0"`
	BackorderMode   enums.BackorderMode   `gorm:"column:backorder_mode;not null;default:'no_backorders'"`

	AvailableStartUTC *time.Time `gorm:"column:available_start_utc"`
	AvailableEndUTC   *time.Time `gorm:"column:available_end_utc"`

	IsGiftCard   bool               `gorm:"column:is_gift_card;not null;default:false"`
	GiftCardType enums.GiftCardType `gorm:"column:gift_card_type;not null;default:'virtual'"`

	IsDownload           bool                       `gorm:"column:is_download;not null;default:false"`
	IsRecurring          bool                       `gorm:"column:is_recurring;not null;default:false"`
	RecurringCycleLength int                        `gorm:"column:recurring_cycle_length;not null;default:0"`
	RecurringCyclePeriod enums.RecurringCyclePeriod `gorm:"column:recurring_cycle_period;not null;default:'days'"`
	RecurringTotalCycles int                        `gorm:"column:recurring_total_cycles;not null;default:0"`

	IsShippingEnabled bool `gorm:"column:is_shipping_enabled;not null;default:true"`

	RequireOtherProducts    bool              `gorm:"column:require_other_products;not null;default:false"`
	RequiredProductIDs      dbtypes.UUIDArray `gorm:"column:required_product_ids;type:uuid[]"`
	AutoAddRequiredProducts bool              `gorm:"column:auto_add_required_products;not null;default:false"`

	// CanBeBundleItem flags products eligible to fill a bundle slot.
	CanBeBundleItem      bool `gorm:"column:can_be_bundle_item;not null;default:false"`
	BundlePerItemPricing bool `gorm:"column:bundle_per_item_pricing;not null;default:false"`

	AttributeMappings []ProductAttributeMapping `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	BundleItems       []ProductBundleItem       `gorm:"foreignKey:BundleProductID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// IsBundle reports whether the product is a bundle parent.
func (p *Product) IsBundle() bool {
	return p.ProductType == enums.ProductTypeBundle
}

// IsAvailableByDate checks the availability window against now (UTC).
func (p *Product) IsAvailableByDate(now time.Time) bool {
	now = now.UTC()
	if p.AvailableStartUTC != nil && now.Before(*p.AvailableStartUTC) {
		return false
	}
	if p.AvailableEndUTC != nil && now.After(*p.AvailableEndUTC) {
		return false
	}
	return true
}

// QuantityAllowed checks the explicit allowed-quantity set when configured.
func (p *Product) QuantityAllowed(quantity int) bool {
	if len(p.AllowedQuantities) == 0 {
		return true
	}
	for _, allowed := range p.AllowedQuantities {
		if int(allowed) == quantity {
			return true
		}
	}
	return false
}
