package products

import (
	"github.com/cartforge/cartforge/pkg/db/models"
	"github.com/cartforge/cartforge/pkg/enums"
)

// Override field names understood by Overridable.
const (
	OverrideStockQuantity         = "stock_quantity"
	OverridePriceCents            = "price_cents"
	OverrideBackorderMode         = "backorder_mode"
	OverrideAllowOutOfStockOrders = "allow_out_of_stock_orders"
)

// Overridable layers attribute-combination overrides on top of a stored
// product without mutating it. Readers go through the typed accessors; the
// stored field is returned whenever no override is set.
type Overridable struct {
	Product   *models.Product
	overrides map[string]any
}

// NewOverridable wraps a product with an empty override layer.
func NewOverridable(product *models.Product) *Overridable {
	return &Overridable{Product: product}
}

// SetOverride records an override for the named field.
func (o *Overridable) SetOverride(name string, value any) {
	if o.overrides == nil {
		o.overrides = map[string]any{}
	}
	o.overrides[name] = value
}

// ClearOverrides drops the override layer.
func (o *Overridable) ClearOverrides() {
	o.overrides = nil
}

// EffectiveValue returns the override for name when set.
func (o *Overridable) EffectiveValue(name string) (any, bool) {
	value, ok := o.overrides[name]
	return value, ok
}

// StockQuantity returns the effective stock quantity.
func (o *Overridable) StockQuantity() int {
	if value, ok := o.overrides[OverrideStockQuantity]; ok {
		if typed, ok := value.(int); ok {
			return typed
		}
	}
	return o.Product.StockQuantity
}

// PriceCents returns the effective unit price.
func (o *Overridable) PriceCents() int64 {
	if value, ok := o.overrides[OverridePriceCents]; ok {
		if typed, ok := value.(int64); ok {
			return typed
		}
	}
	return o.Product.PriceCents
}

// BackorderMode returns the effective backorder policy.
func (o *Overridable) BackorderMode() enums.BackorderMode {
	if value, ok := o.overrides[OverrideBackorderMode]; ok {
		if typed, ok := value.(enums.BackorderMode); ok {
			return typed
		}
	}
	return o.Product.BackorderMode
}

// AllowOutOfStockOrders reports whether the active combination permits orders
// past its stock. Products without combinations never set this.
func (o *Overridable) AllowOutOfStockOrders() bool {
	if value, ok := o.overrides[OverrideAllowOutOfStockOrders]; ok {
		if typed, ok := value.(bool); ok {
			return typed
		}
	}
	return false
}
