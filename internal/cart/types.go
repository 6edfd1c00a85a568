package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cartforge/cartforge/internal/attributes"
	"github.com/cartforge/cartforge/internal/products"
	"github.com/cartforge/cartforge/pkg/db/models"
	"github.com/cartforge/cartforge/pkg/enums"
	"github.com/cartforge/cartforge/pkg/types"
)

// AddToCartRequest is the unit of work for one add attempt. It lives for a
// single composer invocation, including any bundle expansion, and is discarded
// afterward.
type AddToCartRequest struct {
	Customer *models.Customer
	StoreID  uuid.UUID
	CartType enums.CartType

	Product  *models.Product
	Quantity int

	// Selection is the structured attribute choice. When VariantQuery is set
	// the composer materializes it into Selection before validating.
	Selection    types.AttributeSelection
	VariantQuery *attributes.VariantQuery

	EnteredPriceCents int64

	// BundleItem is non-nil when this request fills one slot of a bundle
	// being expanded; ParentProduct is then the bundle product.
	BundleItem    *models.ProductBundleItem
	ParentProduct *models.Product

	// AutoAddRequired and AutoExpandBundle gate the composer's expansion
	// steps for this request; both are also subject to the global config.
	AutoAddRequired  bool
	AutoExpandBundle bool
}

// AddToCartResult is the composer's answer for one add attempt. Violations is
// the ordered, human-readable rejection list; a rejected attempt never
// mutated the store.
type AddToCartResult struct {
	Accepted   bool
	Violations []string
	ItemID     uuid.UUID
}

// reject builds a rejected result carrying the given violations.
func reject(violations []string) *AddToCartResult {
	return &AddToCartResult{Violations: violations}
}

// OrganizedCartItem is one node of the read-side parent/child tree. Built
// fresh on every read, never persisted. Snapshot carries combination
// overrides layered on the product; AdditionalCharge accumulates
// attribute-value price adjustments for per-item-priced bundle children.
type OrganizedCartItem struct {
	Item             models.CartItem
	Product          *models.Product
	Snapshot         *products.Overridable
	BundleItem       *models.ProductBundleItem
	Children         []*OrganizedCartItem
	AdditionalCharge decimal.Decimal
}

// MigrateResult summarizes a cart-to-cart transfer. Moves are best-effort per
// top-level item; Violations collects the reasons for any item left behind.
type MigrateResult struct {
	Moved      int
	Skipped    int
	Violations []string
}
