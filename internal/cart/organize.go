package cart

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cartforge/cartforge/internal/products"
	"github.com/cartforge/cartforge/pkg/db/models"
)

// organizer rebuilds the flat line collection into the two-level
// parent/child tree used for display, pricing and checkout.
type organizer struct {
	attrs attributeResolver
}

// organize partitions items into parents and children and hangs each eligible
// child under its parent. productsByID must contain every product referenced
// by the items; slotsByID maps bundle slot ids to their definitions.
func (o *organizer) organize(ctx context.Context, items []models.CartItem, productsByID map[uuid.UUID]*models.Product, slotsByID map[uuid.UUID]*models.ProductBundleItem) ([]*OrganizedCartItem, error) {
	var parents []models.CartItem
	var children []models.CartItem
	for _, item := range items {
		if item.IsChild() {
			children = append(children, item)
		} else {
			parents = append(parents, item)
		}
	}

	tree := make([]*OrganizedCartItem, 0, len(parents))
	for _, parent := range parents {
		parentProduct := productsByID[parent.ProductID]
		node := &OrganizedCartItem{
			Item:     parent,
			Product:  parentProduct,
			Snapshot: products.NewOverridable(parentProduct),
		}

		for _, child := range children {
			if child.ParentItemID == nil || *child.ParentItemID != parent.ID {
				continue
			}
			// Guards against an id collision making an item its own child.
			if child.ID == parent.ID {
				continue
			}
			if child.CartType != parent.CartType {
				continue
			}
			childProduct := productsByID[child.ProductID]
			if childProduct == nil || !childProduct.CanBeBundleItem {
				continue
			}

			childNode, err := o.organizeChild(ctx, child, childProduct, parentProduct, slotsByID)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, childNode)
		}

		tree = append(tree, node)
	}
	return tree, nil
}

// organizeChild builds one child node, merging any matching attribute
// combination and accumulating attribute-value price adjustments when the
// bundle prices per item.
func (o *organizer) organizeChild(ctx context.Context, child models.CartItem, childProduct, parentProduct *models.Product, slotsByID map[uuid.UUID]*models.ProductBundleItem) (*OrganizedCartItem, error) {
	node := &OrganizedCartItem{
		Item:             child,
		Product:          childProduct,
		Snapshot:         products.NewOverridable(childProduct),
		AdditionalCharge: decimal.Zero,
	}
	if child.BundleItemID != nil {
		node.BundleItem = slotsByID[*child.BundleItemID]
	}

	perItemPricing := parentProduct != nil && parentProduct.BundlePerItemPricing
	if child.Selection.IsEmpty() || !perItemPricing || child.BundleItemID == nil {
		return node, nil
	}

	combination, err := o.attrs.FindCombination(ctx, childProduct.ID, child.Selection)
	if err != nil {
		return nil, err
	}
	if combination != nil && combination.IsActive {
		o.attrs.MergeCombination(node.Snapshot, combination)
	}

	resolved, err := o.attrs.Materialize(ctx, child.Selection)
	if err != nil {
		return nil, err
	}
	for _, attr := range resolved {
		for _, value := range attr.Values {
			node.AdditionalCharge = node.AdditionalCharge.Add(value.PriceAdjustment)
		}
	}
	return node, nil
}
