package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/cartforge/cartforge/internal/attributes"
	"github.com/cartforge/cartforge/internal/checkoutattrs"
	"github.com/cartforge/cartforge/internal/products"
	"github.com/cartforge/cartforge/pkg/config"
	"github.com/cartforge/cartforge/pkg/db/models"
	"github.com/cartforge/cartforge/pkg/enums"
	"github.com/cartforge/cartforge/pkg/types"
)

// accessChecker answers capability checks for the acting customer.
type accessChecker interface {
	Authorize(customer *models.Customer, capability enums.Capability) bool
	DenialMessage(capability enums.Capability) string
}

// attributeResolver is the slice of the materializer the validator needs.
type attributeResolver interface {
	Materialize(ctx context.Context, selection types.AttributeSelection) ([]attributes.ResolvedAttribute, error)
	FindCombination(ctx context.Context, productID uuid.UUID, selection types.AttributeSelection) (*models.ProductAttributeCombination, error)
	MergeCombination(snapshot *products.Overridable, combination *models.ProductAttributeCombination)
}

// productLoader resolves catalog products for linked-attribute and
// required-product checks.
type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error)
}

// Validator is the stateless rule engine. Checks report violations, never
// mutate, and only return an error for broken call contracts or failed
// collaborator I/O.
type Validator struct {
	access   accessChecker
	attrs    attributeResolver
	products productLoader
	cfg      config.CartConfig
	validate *validator.Validate
	now      func() time.Time
}

// NewValidator constructs the rule engine.
func NewValidator(access accessChecker, attrs attributeResolver, productRepo productLoader, cfg config.CartConfig) (*Validator, error) {
	if access == nil {
		return nil, fmt.Errorf("access checker is required")
	}
	if attrs == nil {
		return nil, fmt.Errorf("attribute resolver is required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product loader is required")
	}
	return &Validator{
		access:   access,
		attrs:    attrs,
		products: productRepo,
		cfg:      cfg,
		validate: validator.New(),
		now:      time.Now,
	}, nil
}

// CheckAccess verifies the customer may use the given cart type. At most one
// violation; the composer aborts immediately on it.
func (v *Validator) CheckAccess(customer *models.Customer, cartType enums.CartType) []string {
	capability := enums.CapabilityForCartType(cartType)
	if v.access.Authorize(customer, capability) {
		return nil
	}
	return []string{v.access.DenialMessage(capability)}
}

// CheckProduct runs the product validity rules for a prospective line at the
// given candidate quantity. The snapshot carries any combination overrides.
func (v *Validator) CheckProduct(req *AddToCartRequest, quantity int, snapshot *products.Overridable, combination *models.ProductAttributeCombination) []string {
	product := req.Product
	var violations []string

	if product == nil || product.Deleted {
		return []string{"this product is no longer available"}
	}
	if product.ProductType == enums.ProductTypeGrouped {
		violations = append(violations, fmt.Sprintf("%s is a grouped product and cannot be ordered directly", product.Name))
	}
	if product.IsBundle() && product.BundlePerItemPricing && req.EnteredPriceCents != 0 {
		violations = append(violations, fmt.Sprintf("%s is priced per bundle item and cannot carry an entered price", product.Name))
	}
	if !product.Published {
		violations = append(violations, fmt.Sprintf("%s is not published", product.Name))
	}
	if len(product.LimitedToStoreIDs) > 0 && !product.LimitedToStoreIDs.Contains(req.StoreID) {
		violations = append(violations, fmt.Sprintf("%s is not available in this store", product.Name))
	}
	if len(product.LimitedToRoles) > 0 && !customerHasAnyRole(req.Customer, product.LimitedToRoles) {
		violations = append(violations, fmt.Sprintf("%s is not available for this account", product.Name))
	}
	if req.CartType == enums.CartTypeShoppingCart && product.DisableBuyButton {
		violations = append(violations, fmt.Sprintf("buying %s is disabled", product.Name))
	}
	if req.CartType == enums.CartTypeWishlist && product.DisableWishlistButton {
		violations = append(violations, fmt.Sprintf("%s cannot be added to a wishlist", product.Name))
	}
	if req.CartType == enums.CartTypeShoppingCart && product.CallForPrice {
		violations = append(violations, fmt.Sprintf("please call for the price of %s", product.Name))
	}
	if product.CustomerEntersPrice &&
		(req.EnteredPriceCents < product.MinEnteredPriceCents || req.EnteredPriceCents > product.MaxEnteredPriceCents) {
		violations = append(violations, fmt.Sprintf("the entered price must be between %d and %d",
			product.MinEnteredPriceCents, product.MaxEnteredPriceCents))
	}

	violations = append(violations, v.checkQuantity(product, quantity)...)
	violations = append(violations, v.checkStock(product, quantity, snapshot, combination)...)

	// A single violation per date problem, even when both window edges fail.
	if !product.IsAvailableByDate(v.now()) {
		violations = append(violations, fmt.Sprintf("%s is not available", product.Name))
	}

	return violations
}

func (v *Validator) checkQuantity(product *models.Product, quantity int) []string {
	var violations []string
	if quantity <= 0 {
		return append(violations, "quantity must be positive")
	}
	if quantity < product.OrderMinimumQuantity {
		violations = append(violations, fmt.Sprintf("the minimum order quantity for %s is %d", product.Name, product.OrderMinimumQuantity))
	}
	if quantity > product.OrderMaximumQuantity {
		violations = append(violations, fmt.Sprintf("the maximum order quantity for %s is %d", product.Name, product.OrderMaximumQuantity))
	}
	if !product.QuantityAllowed(quantity) {
		violations = append(violations, fmt.Sprintf("%s cannot be ordered in a quantity of %d", product.Name, quantity))
	}
	return violations
}

func (v *Validator) checkStock(product *models.Product, quantity int, snapshot *products.Overridable, combination *models.ProductAttributeCombination) []string {
	switch product.InventoryMethod {
	case enums.InventoryMethodTrack:
		if snapshot.BackorderMode() != enums.BackorderModeNone {
			return nil
		}
		return stockViolation(product.Name, quantity, snapshot.StockQuantity())
	case enums.InventoryMethodByAttributes:
		if combination == nil || combination.AllowOutOfStockOrders {
			return nil
		}
		return stockViolation(product.Name, quantity, combination.StockQuantity)
	default:
		return nil
	}
}

// stockViolation distinguishes "none left" from "some left" wording.
func stockViolation(name string, quantity, stock int) []string {
	if quantity <= stock {
		return nil
	}
	if stock <= 0 {
		return []string{fmt.Sprintf("%s is out of stock", name)}
	}
	return []string{fmt.Sprintf("only %d of %s are in stock", stock, name)}
}

// CheckAttributes runs attribute completeness for a prospective line,
// including recursion into attribute values linked to other products.
func (v *Validator) CheckAttributes(ctx context.Context, req *AddToCartRequest, combination *models.ProductAttributeCombination) ([]string, error) {
	product := req.Product
	var violations []string

	// Bundles, and bundle slots of a bundle priced as a whole, carry no
	// attribute configuration of their own.
	noAttributesAllowed := (product.IsBundle() && !product.BundlePerItemPricing) ||
		(req.BundleItem != nil && req.ParentProduct != nil && !req.ParentProduct.BundlePerItemPricing)
	if noAttributesAllowed && len(req.Selection.Attributes) > 0 {
		return append(violations, fmt.Sprintf("%s cannot be configured with attributes", product.Name)), nil
	}

	resolved, err := v.attrs.Materialize(ctx, req.Selection)
	if err != nil {
		return nil, err
	}
	for _, attr := range resolved {
		if attr.Mapping.ProductID != product.ID {
			violations = append(violations, fmt.Sprintf("attribute %s does not belong to %s", attr.Mapping.Name, product.Name))
		}
	}

	for _, mapping := range product.AttributeMappings {
		if !mapping.IsRequired {
			continue
		}
		if req.BundleItem != nil && req.BundleItem.FiltersAttribute(mapping.ID) {
			continue
		}
		if len(req.Selection.ValuesFor(mapping.ID)) == 0 {
			violations = append(violations, fmt.Sprintf("please select %s", mapping.Name))
		}
	}

	if combination != nil && !combination.IsActive {
		violations = append(violations, fmt.Sprintf("%s is not available", product.Name))
	}

	linked, err := v.checkLinkedProducts(ctx, req, resolved)
	if err != nil {
		return nil, err
	}
	violations = append(violations, linked...)

	return violations, nil
}

// checkLinkedProducts validates attribute values that pull another catalog
// product into the line. Nested violations come back annotated with the
// attribute's display name.
func (v *Validator) checkLinkedProducts(ctx context.Context, req *AddToCartRequest, resolved []attributes.ResolvedAttribute) ([]string, error) {
	var violations []string
	for _, attr := range resolved {
		for _, value := range attr.Values {
			if value.LinkedProductID == nil {
				continue
			}
			linkedProduct, err := v.products.FindByID(ctx, *value.LinkedProductID)
			if err != nil {
				violations = append(violations, fmt.Sprintf("%s: the linked product is no longer available", attr.Mapping.Name))
				continue
			}
			linkedQuantity := value.LinkedProductQuantity
			if linkedQuantity <= 0 {
				linkedQuantity = 1
			}
			nested := &AddToCartRequest{
				Customer: req.Customer,
				StoreID:  req.StoreID,
				CartType: req.CartType,
				Product:  linkedProduct,
				Quantity: req.Quantity * linkedQuantity,
			}
			snapshot := products.NewOverridable(linkedProduct)
			for _, violation := range v.CheckProduct(nested, nested.Quantity, snapshot, nil) {
				violations = append(violations, fmt.Sprintf("%s: %s", attr.Mapping.Name, violation))
			}
		}
	}
	return violations, nil
}

// CheckGiftCard verifies gift card recipient/sender completeness. Virtual
// gift cards additionally need syntactically valid email addresses.
func (v *Validator) CheckGiftCard(req *AddToCartRequest) []string {
	product := req.Product
	if !product.IsGiftCard {
		return nil
	}

	var violations []string
	info := req.Selection.GiftCard
	if info == nil {
		info = &types.GiftCardInfo{}
	}
	if info.RecipientName == "" {
		violations = append(violations, "a gift card recipient name is required")
	}
	if info.SenderName == "" {
		violations = append(violations, "a gift card sender name is required")
	}
	if product.GiftCardType == enums.GiftCardTypeVirtual {
		if v.validate.Var(info.RecipientEmail, "required,email") != nil {
			violations = append(violations, "a valid gift card recipient email is required")
		}
		if v.validate.Var(info.SenderEmail, "required,email") != nil {
			violations = append(violations, "a valid gift card sender email is required")
		}
	}
	return violations
}

// CheckRequiredProducts reports required products still missing from the
// cart. Presence is by product id only; attributes do not matter.
func (v *Validator) CheckRequiredProducts(ctx context.Context, product *models.Product, items []models.CartItem) ([]string, error) {
	if !product.RequireOtherProducts || len(product.RequiredProductIDs) == 0 {
		return nil, nil
	}

	present := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		present[item.ProductID] = struct{}{}
	}

	var missing []uuid.UUID
	for _, requiredID := range product.RequiredProductIDs {
		if _, ok := present[requiredID]; !ok {
			missing = append(missing, requiredID)
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}

	named, err := v.products.FindByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	violations := make([]string, 0, len(missing))
	for _, requiredID := range missing {
		name := requiredID.String()
		if required, ok := named[requiredID]; ok {
			name = required.Name
		}
		violations = append(violations, fmt.Sprintf("%s requires %s to be in the cart", product.Name, name))
	}
	return violations, nil
}

// CheckBundleItem validates the bundle slot a child request fills.
func (v *Validator) CheckBundleItem(req *AddToCartRequest) []string {
	slot := req.BundleItem
	if slot == nil {
		return nil
	}

	var violations []string
	if !slot.Published {
		violations = append(violations, fmt.Sprintf("bundle item %s is not published", req.Product.Name))
	}
	if req.ParentProduct == nil {
		violations = append(violations, "the bundle product could not be resolved")
	}
	if slot.Quantity <= 0 {
		violations = append(violations, fmt.Sprintf("bundle item %s has no quantity configured", req.Product.Name))
	}
	if req.Product.IsDownload {
		violations = append(violations, fmt.Sprintf("%s is a download and cannot be part of a bundle", req.Product.Name))
	}
	if req.Product.IsRecurring {
		violations = append(violations, fmt.Sprintf("%s is a recurring product and cannot be part of a bundle", req.Product.Name))
	}
	return violations
}

// CheckCartSize rations brand-new top-level lines. Never called on the merge
// path: growing an accepted line is not subject to the ceiling.
func (v *Validator) CheckCartSize(cartType enums.CartType, items []models.CartItem) []string {
	topLevel := 0
	for _, item := range items {
		if !item.IsChild() {
			topLevel++
		}
	}
	limit := v.cfg.MaxItemsFor(cartType.String())
	if topLevel < limit {
		return nil
	}
	if cartType == enums.CartTypeWishlist {
		return []string{fmt.Sprintf("the wishlist cannot hold more than %d items", limit)}
	}
	return []string{fmt.Sprintf("the shopping cart cannot hold more than %d items", limit)}
}

// CheckCheckoutAttributes cross-checks the customer's checkout selection
// against the store's required attributes, narrowed to shipping-independent
// ones when nothing in the cart ships.
func (v *Validator) CheckCheckoutAttributes(attrs []models.CheckoutAttribute, selection types.AttributeSelection, cartShippable bool) []string {
	if !cartShippable {
		attrs = checkoutattrs.RemoveShippableAttributes(attrs)
	}
	var violations []string
	for _, attr := range checkoutattrs.MissingRequired(attrs, selection) {
		violations = append(violations, fmt.Sprintf("please select %s", attr.Name))
	}
	return violations
}

// CheckRecurringConflict enforces recurring/non-recurring exclusivity across
// the cart including the candidate, and cycle agreement among recurring ones.
func (v *Validator) CheckRecurringConflict(candidate *models.Product, cartProducts []*models.Product) []string {
	all := make([]*models.Product, 0, len(cartProducts)+1)
	all = append(all, cartProducts...)
	if candidate != nil {
		all = append(all, candidate)
	}

	var recurring []*models.Product
	nonRecurring := false
	for _, product := range all {
		if product == nil {
			continue
		}
		if product.IsRecurring {
			recurring = append(recurring, product)
		} else {
			nonRecurring = true
		}
	}

	if len(recurring) == 0 {
		return nil
	}
	if nonRecurring {
		return []string{"a cart cannot mix recurring and non-recurring products"}
	}
	first := recurring[0]
	for _, product := range recurring[1:] {
		if product.RecurringCycleLength != first.RecurringCycleLength ||
			product.RecurringCyclePeriod != first.RecurringCyclePeriod ||
			product.RecurringTotalCycles != first.RecurringTotalCycles {
			return []string{"recurring products in the cart have conflicting billing cycles"}
		}
	}
	return nil
}

func customerHasAnyRole(customer *models.Customer, roles []string) bool {
	if customer == nil {
		return false
	}
	for _, role := range roles {
		if customer.HasRole(role) {
			return true
		}
	}
	return false
}
