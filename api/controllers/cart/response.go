package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cartsvc "github.com/cartforge/cartforge/internal/cart"
	"github.com/cartforge/cartforge/pkg/types"
)

// AddItemResponse reports a committed add. Rejections never reach this shape;
// they surface as a STATE_CONFLICT error envelope carrying the violations.
type AddItemResponse struct {
	Accepted bool      `json:"accepted"`
	ItemID   uuid.UUID `json:"item_id"`
}

// CartResponse is the organized parent/child tree for one cart.
type CartResponse struct {
	CartType string         `json:"cart_type"`
	Items    []CartItemNode `json:"items"`
}

// CartItemNode is one organized line. Children are bundle slot lines nested
// under their parent; PriceCents reflects any combination override in effect.
type CartItemNode struct {
	ID                uuid.UUID                `json:"id"`
	ProductID         uuid.UUID                `json:"product_id"`
	ProductName       string                   `json:"product_name"`
	Quantity          int                      `json:"quantity"`
	Selection         types.AttributeSelection `json:"selection,omitempty"`
	EnteredPriceCents int64                    `json:"entered_price_cents,omitempty"`
	PriceCents        int64                    `json:"price_cents"`
	StockQuantity     int                      `json:"stock_quantity"`
	AdditionalCharge  decimal.Decimal          `json:"additional_charge"`
	BundleItemID      *uuid.UUID               `json:"bundle_item_id,omitempty"`
	Children          []CartItemNode           `json:"children,omitempty"`
	CreatedAt         time.Time                `json:"created_at"`
	UpdatedAt         time.Time                `json:"updated_at"`
}

// MigrateSummary reports a best-effort cart transfer.
type MigrateSummary struct {
	Moved      int      `json:"moved"`
	Skipped    int      `json:"skipped"`
	Violations []string `json:"violations,omitempty"`
}

// CheckoutValidationResponse lists what still blocks checkout; an empty list
// means the cart is ready.
type CheckoutValidationResponse struct {
	Ready      bool     `json:"ready"`
	Violations []string `json:"violations,omitempty"`
}

func newCartResponse(cartType string, items []*cartsvc.OrganizedCartItem) CartResponse {
	nodes := make([]CartItemNode, 0, len(items))
	for _, item := range items {
		nodes = append(nodes, newCartItemNode(item))
	}
	return CartResponse{CartType: cartType, Items: nodes}
}

func newCartItemNode(item *cartsvc.OrganizedCartItem) CartItemNode {
	node := CartItemNode{
		ID:                item.Item.ID,
		ProductID:         item.Item.ProductID,
		Quantity:          item.Item.Quantity,
		Selection:         item.Item.Selection,
		EnteredPriceCents: item.Item.EnteredPriceCents,
		AdditionalCharge:  item.AdditionalCharge,
		BundleItemID:      item.Item.BundleItemID,
		CreatedAt:         item.Item.CreatedAt,
		UpdatedAt:         item.Item.UpdatedAt,
	}
	if item.Product != nil {
		node.ProductName = item.Product.Name
	}
	if item.Snapshot != nil {
		node.PriceCents = item.Snapshot.PriceCents()
		node.StockQuantity = item.Snapshot.StockQuantity()
	}
	for _, child := range item.Children {
		node.Children = append(node.Children, newCartItemNode(child))
	}
	return node
}
