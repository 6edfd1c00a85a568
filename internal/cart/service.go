package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cartforge/cartforge/internal/access"
	"github.com/cartforge/cartforge/internal/attributes"
	"github.com/cartforge/cartforge/internal/checkoutattrs"
	"github.com/cartforge/cartforge/internal/customers"
	"github.com/cartforge/cartforge/internal/products"
	"github.com/cartforge/cartforge/pkg/config"
	"github.com/cartforge/cartforge/pkg/db"
	"github.com/cartforge/cartforge/pkg/db/models"
	"github.com/cartforge/cartforge/pkg/enums"
	pkgerrors "github.com/cartforge/cartforge/pkg/errors"
	"github.com/cartforge/cartforge/pkg/logger"
	"github.com/cartforge/cartforge/pkg/metrics"
	"github.com/cartforge/cartforge/pkg/types"
)

// Service is the cart composer: the single entry point for every cart
// mutation and for the organized read path.
type Service interface {
	AddToCart(ctx context.Context, req *AddToCartRequest) (*AddToCartResult, error)
	GetCartItems(ctx context.Context, customerID uuid.UUID, cartType enums.CartType, storeID uuid.UUID) ([]*OrganizedCartItem, error)
	UpdateQuantity(ctx context.Context, customerID, itemID uuid.UUID, quantity int) (*AddToCartResult, error)
	DeleteItem(ctx context.Context, customerID, itemID uuid.UUID) error
	DeleteItems(ctx context.Context, customerID uuid.UUID, cartType enums.CartType, storeID uuid.UUID, itemIDs []uuid.UUID) error
	CopyCartItem(ctx context.Context, customerID, itemID uuid.UUID, toCartType enums.CartType) (*AddToCartResult, error)
	MigrateCart(ctx context.Context, fromCustomerID, toCustomerID, storeID uuid.UUID) (*MigrateResult, error)
	ValidateCheckout(ctx context.Context, customerID uuid.UUID, cartType enums.CartType, storeID uuid.UUID) ([]string, error)
}

// itemStore is the durable cart line collection the composer commits to.
type itemStore interface {
	GetItems(ctx context.Context, customerID uuid.UUID, cartType enums.CartType, storeID uuid.UUID) ([]models.CartItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.CartItem, error)
	Add(ctx context.Context, item *models.CartItem) error
	AddChildren(ctx context.Context, parentID uuid.UUID, children []*models.CartItem) error
	UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int, selection types.AttributeSelection) error
	Remove(ctx context.Context, ids []uuid.UUID) error
	RemoveChildrenOf(ctx context.Context, parentIDs []uuid.UUID, excludeIDs []uuid.UUID) error
	WithTx(tx *gorm.DB) itemStore
}

// productCatalog resolves products and bundle slots.
type productCatalog interface {
	productLoader
	ListBundleItems(ctx context.Context, bundleProductID uuid.UUID) ([]models.ProductBundleItem, error)
	FindBundleItemByID(ctx context.Context, id uuid.UUID) (*models.ProductBundleItem, error)
}

// customerStore reads customers and their checkout state.
type customerStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	ResetCheckoutProgress(ctx context.Context, customerID uuid.UUID) error
	CheckoutAttributes(ctx context.Context, customerID uuid.UUID) (types.AttributeSelection, error)
	SaveCheckoutAttributes(ctx context.Context, customerID uuid.UUID, selection types.AttributeSelection) error
}

// checkoutStore lists store-level checkout attributes.
type checkoutStore interface {
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.CheckoutAttribute, error)
}

// attributeMaterializer is the full materializer contract the composer needs.
type attributeMaterializer interface {
	attributeResolver
	SelectionFromQuery(ctx context.Context, query attributes.VariantQuery, product *models.Product, slot *models.ProductBundleItem) (types.AttributeSelection, []string)
}

// txRunner runs a function inside one database transaction.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Deps wires the composer's collaborators.
type Deps struct {
	DB            *db.Client
	Items         *Repository
	Products      *products.Repository
	Customers     *customers.Repository
	CheckoutAttrs *checkoutattrs.Repository
	Attributes    *attributes.Service
	Access        *access.Service
	Cache         Cache
	Config        config.CartConfig
	Logger        *logger.Logger
	Metrics       *metrics.CartMetrics
}

type service struct {
	tx        txRunner
	items     itemStore
	catalog   productCatalog
	customers customerStore
	checkout  checkoutStore
	attrs     attributeMaterializer
	validator *Validator
	cache     Cache
	cfg       config.CartConfig
	log       *logger.Logger
	metrics   *metrics.CartMetrics
	organizer *organizer
	now       func() time.Time
}

// NewService builds the cart composer.
func NewService(deps Deps) (Service, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("db client is required")
	}
	if deps.Items == nil {
		return nil, fmt.Errorf("cart item repository is required")
	}
	if deps.Products == nil {
		return nil, fmt.Errorf("product repository is required")
	}
	if deps.Customers == nil {
		return nil, fmt.Errorf("customer repository is required")
	}
	if deps.CheckoutAttrs == nil {
		return nil, fmt.Errorf("checkout attribute repository is required")
	}
	if deps.Attributes == nil {
		return nil, fmt.Errorf("attribute materializer is required")
	}
	if deps.Access == nil {
		return nil, fmt.Errorf("access service is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Cache == nil {
		deps.Cache = NewMemoryCache()
	}

	validator, err := NewValidator(deps.Access, deps.Attributes, deps.Products, deps.Config)
	if err != nil {
		return nil, err
	}

	return &service{
		tx:        deps.DB,
		items:     deps.Items,
		catalog:   deps.Products,
		customers: deps.Customers,
		checkout:  deps.CheckoutAttrs,
		attrs:     deps.Attributes,
		validator: validator,
		cache:     deps.Cache,
		cfg:       deps.Config,
		log:       deps.Logger,
		metrics:   deps.Metrics,
		organizer: &organizer{attrs: deps.Attributes},
		now:       time.Now,
	}, nil
}

// AddToCart runs one add attempt through the full pipeline: variant query
// materialization, access check, required-product courtesy adds,
// merge-vs-insert, validation and, for bundles, all-or-nothing slot
// expansion. Bundle slots are staged internally; callers never pass a
// BundleItem themselves. Nothing is written unless the whole prospective tree
// is valid.
func (s *service) AddToCart(ctx context.Context, req *AddToCartRequest) (*AddToCartResult, error) {
	if req == nil || req.Customer == nil || req.Product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer and product are required")
	}
	if req.BundleItem != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bundle slots are expanded by the composer")
	}
	ctx = s.log.WithCustomerID(ctx, req.Customer.ID.String())
	ctx = s.log.WithCartType(ctx, req.CartType.String())
	key := Key{CustomerID: req.Customer.ID, CartType: req.CartType, StoreID: req.StoreID}

	// Any mutation attempt invalidates previously computed checkout choices.
	if err := s.customers.ResetCheckoutProgress(ctx, req.Customer.ID); err != nil {
		return nil, err
	}

	if req.VariantQuery != nil {
		selection, warnings := s.attrs.SelectionFromQuery(ctx, *req.VariantQuery, req.Product, nil)
		if req.Product.IsBundle() {
			// Query entries for the bundle's own attributes are a rejection;
			// entries for slot products surface as warnings here and are
			// re-materialized per slot during expansion.
			if len(selection.Attributes) > 0 {
				s.countRejected()
				return reject([]string{fmt.Sprintf("%s cannot be configured with attributes", req.Product.Name)}), nil
			}
			selection.Attributes = nil
			req.Selection = selection
		} else {
			if len(warnings) > 0 {
				s.countRejected()
				return reject(warnings), nil
			}
			req.Selection = selection
		}
	}

	if violations := s.validator.CheckAccess(req.Customer, req.CartType); len(violations) > 0 {
		s.countViolations("access", violations)
		s.countRejected()
		return reject(violations), nil
	}

	items, err := s.items.GetItems(ctx, req.Customer.ID, req.CartType, req.StoreID)
	if err != nil {
		return nil, err
	}

	var violations []string
	if req.AutoAddRequired && s.cfg.AutoAddRequiredProducts &&
		req.Product.RequireOtherProducts && req.Product.AutoAddRequiredProducts {
		var courtesy []string
		items, courtesy, err = s.addRequiredProducts(ctx, req, items)
		if err != nil {
			return nil, err
		}
		violations = append(violations, courtesy...)
	}

	required, err := s.validator.CheckRequiredProducts(ctx, req.Product, items)
	if err != nil {
		return nil, err
	}
	s.countViolations("required_products", required)
	violations = append(violations, required...)

	if match := findMatch(items, req); match != nil {
		return s.mergeIntoExisting(ctx, key, req, match, items, violations)
	}

	itemViolations, err := s.validateItem(ctx, req, req.Quantity, items, true)
	if err != nil {
		return nil, err
	}
	violations = append(violations, itemViolations...)

	pending := s.newLine(req, nil)
	s.cache.Invalidate(key)

	var children []*models.CartItem
	if req.Product.IsBundle() && len(violations) == 0 &&
		req.AutoExpandBundle && s.cfg.AutoExpandBundleProducts {
		var slotViolations []string
		children, slotViolations, err = s.expandBundle(ctx, req, items)
		if err != nil {
			return nil, err
		}
		violations = append(violations, slotViolations...)
	}

	if len(violations) > 0 {
		s.countRejected()
		return reject(violations), nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		store := s.items.WithTx(tx)
		if err := store.Add(ctx, pending); err != nil {
			return err
		}
		return store.AddChildren(ctx, pending.ID, children)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(key)
	s.countCommitted()
	s.log.Info(ctx, "cart item added")
	return &AddToCartResult{Accepted: true, ItemID: pending.ID}, nil
}

// mergeIntoExisting handles the merge path: same product, same selection,
// same entered price. Validation runs against the combined quantity before
// anything is written; the cart-size ceiling does not apply here.
func (s *service) mergeIntoExisting(ctx context.Context, key Key, req *AddToCartRequest, match *models.CartItem, items []models.CartItem, violations []string) (*AddToCartResult, error) {
	candidate := match.Quantity + req.Quantity

	itemViolations, err := s.validateItem(ctx, req, candidate, items, false)
	if err != nil {
		return nil, err
	}
	violations = append(violations, itemViolations...)
	if len(violations) > 0 {
		s.countRejected()
		return reject(violations), nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.items.WithTx(tx).UpdateQuantity(ctx, match.ID, candidate, req.Selection)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(key)
	s.countCommitted()
	s.log.Info(ctx, "cart item quantity merged")
	return &AddToCartResult{Accepted: true, ItemID: match.ID}, nil
}

// addRequiredProducts courtesy-adds missing required products as independent
// top-level lines. Nested rejections are collected, not fatal by themselves;
// the parent attempt is only stopped by its own accumulated violations.
func (s *service) addRequiredProducts(ctx context.Context, req *AddToCartRequest, items []models.CartItem) ([]models.CartItem, []string, error) {
	present := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		present[item.ProductID] = struct{}{}
	}

	var violations []string
	added := false
	for _, requiredID := range req.Product.RequiredProductIDs {
		if _, ok := present[requiredID]; ok {
			continue
		}
		requiredProduct, err := s.catalog.FindByID(ctx, requiredID)
		if err != nil {
			violations = append(violations, fmt.Sprintf("a product required by %s is no longer available", req.Product.Name))
			continue
		}
		// AutoAddRequired off stops mutual requirements from recursing forever.
		res, err := s.AddToCart(ctx, &AddToCartRequest{
			Customer:         req.Customer,
			StoreID:          req.StoreID,
			CartType:         req.CartType,
			Product:          requiredProduct,
			Quantity:         1,
			AutoExpandBundle: req.AutoExpandBundle,
		})
		if err != nil {
			return nil, nil, err
		}
		if res.Accepted {
			added = true
		} else {
			violations = append(violations, res.Violations...)
		}
	}

	if added {
		refreshed, err := s.items.GetItems(ctx, req.Customer.ID, req.CartType, req.StoreID)
		if err != nil {
			return nil, nil, err
		}
		items = refreshed
	}
	return items, violations, nil
}

// expandBundle stages one child line per bundle slot, in catalog order. The
// first failing slot aborts the whole expansion: a bundle commits atomically
// or not at all.
func (s *service) expandBundle(ctx context.Context, req *AddToCartRequest, items []models.CartItem) ([]*models.CartItem, []string, error) {
	slots := req.Product.BundleItems
	if len(slots) == 0 {
		loaded, err := s.catalog.ListBundleItems(ctx, req.Product.ID)
		if err != nil {
			return nil, nil, err
		}
		slots = loaded
	}

	children := make([]*models.CartItem, 0, len(slots))
	for i := range slots {
		child, violations, err := s.stageChild(ctx, req, &slots[i], items)
		if err != nil {
			return nil, nil, err
		}
		if len(violations) > 0 {
			s.countViolations("bundle_item", violations)
			return nil, violations, nil
		}
		children = append(children, child)
	}
	return children, nil, nil
}

// stageChild validates one bundle slot and returns the staged (not yet
// persisted) child line. The child inherits the parent's cart type and pulls
// its configuration from the parent's variant query or selection, narrowed to
// its own attributes.
func (s *service) stageChild(ctx context.Context, parent *AddToCartRequest, slot *models.ProductBundleItem, items []models.CartItem) (*models.CartItem, []string, error) {
	childProduct, err := s.catalog.FindByID(ctx, slot.ProductID)
	if err != nil {
		return nil, []string{fmt.Sprintf("a bundle item of %s is no longer available", parent.Product.Name)}, nil
	}

	childReq := &AddToCartRequest{
		Customer:      parent.Customer,
		StoreID:       parent.StoreID,
		CartType:      parent.CartType,
		Product:       childProduct,
		Quantity:      slot.Quantity,
		BundleItem:    slot,
		ParentProduct: parent.Product,
	}
	if parent.VariantQuery != nil {
		// Warnings reference attributes of the other slots; drop them.
		childReq.Selection, _ = s.attrs.SelectionFromQuery(ctx, *parent.VariantQuery, childProduct, slot)
	} else {
		childReq.Selection = selectionForProduct(parent.Selection, childProduct, slot)
	}

	violations, err := s.validateItem(ctx, childReq, childReq.Quantity, items, false)
	if err != nil {
		return nil, nil, err
	}
	required, err := s.validator.CheckRequiredProducts(ctx, childProduct, items)
	if err != nil {
		return nil, nil, err
	}
	violations = append(violations, required...)
	if len(violations) > 0 {
		return nil, violations, nil
	}

	return s.newLine(childReq, &slot.ID), nil, nil
}

// validateItem runs the per-item rule set for a prospective line at the given
// candidate quantity. insertingTopLevel additionally applies the cart-size
// ceiling.
func (s *service) validateItem(ctx context.Context, req *AddToCartRequest, quantity int, items []models.CartItem, insertingTopLevel bool) ([]string, error) {
	snapshot := products.NewOverridable(req.Product)
	var combination *models.ProductAttributeCombination
	if !req.Selection.IsEmpty() {
		var err error
		combination, err = s.attrs.FindCombination(ctx, req.Product.ID, req.Selection)
		if err != nil {
			return nil, err
		}
		if combination != nil && combination.IsActive {
			s.attrs.MergeCombination(snapshot, combination)
		}
	}

	var violations []string

	productViolations := s.validator.CheckProduct(req, quantity, snapshot, combination)
	s.countViolations("product", productViolations)
	violations = append(violations, productViolations...)

	attrViolations, err := s.validator.CheckAttributes(ctx, req, combination)
	if err != nil {
		return nil, err
	}
	s.countViolations("attributes", attrViolations)
	violations = append(violations, attrViolations...)

	giftViolations := s.validator.CheckGiftCard(req)
	s.countViolations("gift_card", giftViolations)
	violations = append(violations, giftViolations...)

	if req.BundleItem != nil {
		slotViolations := s.validator.CheckBundleItem(req)
		s.countViolations("bundle_item", slotViolations)
		violations = append(violations, slotViolations...)
	}

	if insertingTopLevel {
		sizeViolations := s.validator.CheckCartSize(req.CartType, items)
		s.countViolations("cart_size", sizeViolations)
		violations = append(violations, sizeViolations...)
	}

	recurring, err := s.recurringViolations(ctx, req, items)
	if err != nil {
		return nil, err
	}
	s.countViolations("recurring", recurring)
	violations = append(violations, recurring...)

	return violations, nil
}

func (s *service) recurringViolations(ctx context.Context, req *AddToCartRequest, items []models.CartItem) ([]string, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	cartProducts, err := s.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	flat := make([]*models.Product, 0, len(cartProducts))
	for _, product := range cartProducts {
		flat = append(flat, product)
	}
	return s.validator.CheckRecurringConflict(req.Product, flat), nil
}

// GetCartItems returns the organized tree, memoized per (customer, cart type,
// store) until the next mutation.
func (s *service) GetCartItems(ctx context.Context, customerID uuid.UUID, cartType enums.CartType, storeID uuid.UUID) ([]*OrganizedCartItem, error) {
	key := Key{CustomerID: customerID, CartType: cartType, StoreID: storeID}
	if tree, ok := s.cache.Get(key); ok {
		return tree, nil
	}

	started := s.now()
	items, err := s.items.GetItems(ctx, customerID, cartType, storeID)
	if err != nil {
		return nil, err
	}

	productsByID, slotsByID, err := s.prefetch(ctx, items)
	if err != nil {
		return nil, err
	}

	tree, err := s.organizer.organize(ctx, items, productsByID, slotsByID)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, tree)
	s.metrics.ObserveOrganize(time.Since(started))
	return tree, nil
}

func (s *service) prefetch(ctx context.Context, items []models.CartItem) (map[uuid.UUID]*models.Product, map[uuid.UUID]*models.ProductBundleItem, error) {
	productIDs := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		productIDs = append(productIDs, item.ProductID)
	}

	productsByID, err := s.catalog.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, nil, err
	}

	slotsByID := map[uuid.UUID]*models.ProductBundleItem{}
	for _, item := range items {
		if item.BundleItemID == nil {
			continue
		}
		if _, ok := slotsByID[*item.BundleItemID]; ok {
			continue
		}
		slot, err := s.catalog.FindBundleItemByID(ctx, *item.BundleItemID)
		if err != nil {
			// A deleted slot definition only costs the display metadata.
			continue
		}
		slotsByID[*item.BundleItemID] = slot
	}
	return productsByID, slotsByID, nil
}

// UpdateQuantity changes an existing line's quantity, validating the new
// quantity before anything is written. A non-positive quantity removes the
// line (and its children).
func (s *service) UpdateQuantity(ctx context.Context, customerID, itemID uuid.UUID, quantity int) (*AddToCartResult, error) {
	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cart item belongs to another customer")
	}

	if quantity <= 0 {
		if err := s.DeleteItems(ctx, customerID, item.CartType, item.StoreID, []uuid.UUID{item.ID}); err != nil {
			return nil, err
		}
		return &AddToCartResult{Accepted: true, ItemID: item.ID}, nil
	}

	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	product, err := s.catalog.FindByID(ctx, item.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product no longer exists")
	}

	req := &AddToCartRequest{
		Customer:          customer,
		StoreID:           item.StoreID,
		CartType:          item.CartType,
		Product:           product,
		Quantity:          quantity,
		Selection:         item.Selection,
		EnteredPriceCents: item.EnteredPriceCents,
	}

	if violations := s.validator.CheckAccess(customer, item.CartType); len(violations) > 0 {
		s.countRejected()
		return reject(violations), nil
	}

	items, err := s.items.GetItems(ctx, customerID, item.CartType, item.StoreID)
	if err != nil {
		return nil, err
	}
	violations, err := s.validateItem(ctx, req, quantity, items, false)
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		s.countRejected()
		return reject(violations), nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.items.WithTx(tx).UpdateQuantity(ctx, item.ID, quantity, item.Selection)
	})
	if err != nil {
		return nil, err
	}

	if err := s.customers.ResetCheckoutProgress(ctx, customerID); err != nil {
		return nil, err
	}
	s.cache.Invalidate(Key{CustomerID: customerID, CartType: item.CartType, StoreID: item.StoreID})
	s.countCommitted()
	return &AddToCartResult{Accepted: true, ItemID: item.ID}, nil
}

// DeleteItems removes the given lines and every child whose parent is in the
// set, then scrubs shipping-only checkout answers when the remaining cart no
// longer ships anything.
// DeleteItem removes a single line the customer owns, cascading to its bundle
// children the same way a batch delete does.
func (s *service) DeleteItem(ctx context.Context, customerID, itemID uuid.UUID) error {
	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item.CustomerID != customerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "cart item belongs to another customer")
	}
	return s.DeleteItems(ctx, customerID, item.CartType, item.StoreID, []uuid.UUID{item.ID})
}

func (s *service) DeleteItems(ctx context.Context, customerID uuid.UUID, cartType enums.CartType, storeID uuid.UUID, itemIDs []uuid.UUID) error {
	if len(itemIDs) == 0 {
		return nil
	}

	items, err := s.items.GetItems(ctx, customerID, cartType, storeID)
	if err != nil {
		return err
	}

	owned := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		owned[item.ID] = struct{}{}
	}
	targets := make([]uuid.UUID, 0, len(itemIDs))
	for _, id := range itemIDs {
		if _, ok := owned[id]; ok {
			targets = append(targets, id)
		}
	}
	if len(targets) == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart items not found")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		store := s.items.WithTx(tx)
		if err := store.RemoveChildrenOf(ctx, targets, targets); err != nil {
			return err
		}
		return store.Remove(ctx, targets)
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(Key{CustomerID: customerID, CartType: cartType, StoreID: storeID})
	if err := s.customers.ResetCheckoutProgress(ctx, customerID); err != nil {
		return err
	}
	return s.cleanupShippingAttributes(ctx, customerID, cartType, storeID)
}

// cleanupShippingAttributes drops checkout answers that require shipping once
// nothing left in the cart ships.
func (s *service) cleanupShippingAttributes(ctx context.Context, customerID uuid.UUID, cartType enums.CartType, storeID uuid.UUID) error {
	remaining, err := s.items.GetItems(ctx, customerID, cartType, storeID)
	if err != nil {
		return err
	}
	shippable, err := s.cartShippable(ctx, remaining)
	if err != nil {
		return err
	}
	if shippable {
		return nil
	}

	selection, err := s.customers.CheckoutAttributes(ctx, customerID)
	if err != nil {
		return err
	}
	if selection.IsEmpty() {
		return nil
	}

	attrs, err := s.checkout.ListByStore(ctx, storeID)
	if err != nil {
		return err
	}
	shippingOnly := make([]models.CheckoutAttribute, 0, len(attrs))
	for _, attr := range attrs {
		if attr.ShippableProductRequired {
			shippingOnly = append(shippingOnly, attr)
		}
	}
	if len(shippingOnly) == 0 {
		return nil
	}

	stripped := checkoutattrs.StripSelection(selection, shippingOnly)
	return s.customers.SaveCheckoutAttributes(ctx, customerID, stripped)
}

func (s *service) cartShippable(ctx context.Context, items []models.CartItem) (bool, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	productsByID, err := s.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return false, err
	}
	for _, product := range productsByID {
		if product.IsShippingEnabled {
			return true, nil
		}
	}
	return false, nil
}

// MigrateCart transfers both cart types from one customer to another,
// best-effort per top-level item: a rejected item stays with the source and
// its violations are reported, the rest move.
func (s *service) MigrateCart(ctx context.Context, fromCustomerID, toCustomerID, storeID uuid.UUID) (*MigrateResult, error) {
	target, err := s.customers.FindByID(ctx, toCustomerID)
	if err != nil {
		return nil, err
	}

	result := &MigrateResult{}
	for _, cartType := range []enums.CartType{enums.CartTypeShoppingCart, enums.CartTypeWishlist} {
		tree, err := s.GetCartItems(ctx, fromCustomerID, cartType, storeID)
		if err != nil {
			return nil, err
		}
		for _, node := range tree {
			res, err := s.copyNode(ctx, node, target, cartType, storeID)
			if err != nil {
				return nil, err
			}
			if !res.Accepted {
				result.Skipped++
				result.Violations = append(result.Violations, res.Violations...)
				continue
			}
			if err := s.DeleteItems(ctx, fromCustomerID, cartType, storeID, []uuid.UUID{node.Item.ID}); err != nil {
				return nil, err
			}
			result.Moved++
		}
	}
	return result, nil
}

// CopyCartItem duplicates one top-level line, children included, into the
// target cart type by replaying it through AddToCart. A failing bundle child
// rejects the whole copy and nothing is written.
func (s *service) CopyCartItem(ctx context.Context, customerID, itemID uuid.UUID, toCartType enums.CartType) (*AddToCartResult, error) {
	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cart item belongs to another customer")
	}
	if item.IsChild() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "only top-level cart items can be copied")
	}

	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	tree, err := s.GetCartItems(ctx, customerID, item.CartType, item.StoreID)
	if err != nil {
		return nil, err
	}
	for _, node := range tree {
		if node.Item.ID == item.ID {
			return s.copyNode(ctx, node, customer, toCartType, item.StoreID)
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
}

// copyNode funnels one organized item through AddToCart for the target
// customer. Bundles re-expand there, so a failing child rejects the whole
// copy of that item.
func (s *service) copyNode(ctx context.Context, node *OrganizedCartItem, target *models.Customer, cartType enums.CartType, storeID uuid.UUID) (*AddToCartResult, error) {
	product, err := s.catalog.FindByID(ctx, node.Item.ProductID)
	if err != nil {
		return reject([]string{"the product is no longer available"}), nil
	}
	return s.AddToCart(ctx, &AddToCartRequest{
		Customer:          target,
		StoreID:           storeID,
		CartType:          cartType,
		Product:           product,
		Quantity:          node.Item.Quantity,
		Selection:         node.Item.Selection.Clone(),
		EnteredPriceCents: node.Item.EnteredPriceCents,
		AutoAddRequired:   true,
		AutoExpandBundle:  true,
	})
}

// ValidateCheckout runs the cart-wide checks: checkout-attribute completeness
// (narrowed when nothing ships) and recurring-cycle agreement.
func (s *service) ValidateCheckout(ctx context.Context, customerID uuid.UUID, cartType enums.CartType, storeID uuid.UUID) ([]string, error) {
	items, err := s.items.GetItems(ctx, customerID, cartType, storeID)
	if err != nil {
		return nil, err
	}

	shippable, err := s.cartShippable(ctx, items)
	if err != nil {
		return nil, err
	}
	selection, err := s.customers.CheckoutAttributes(ctx, customerID)
	if err != nil {
		return nil, err
	}
	attrs, err := s.checkout.ListByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	violations := s.validator.CheckCheckoutAttributes(attrs, selection, shippable)
	s.countViolations("checkout_attributes", violations)

	recurring, err := s.recurringViolations(ctx, &AddToCartRequest{}, items)
	if err != nil {
		return nil, err
	}
	s.countViolations("recurring", recurring)
	violations = append(violations, recurring...)

	return violations, nil
}

func (s *service) newLine(req *AddToCartRequest, bundleItemID *uuid.UUID) *models.CartItem {
	return &models.CartItem{
		ID:                uuid.New(),
		CustomerID:        req.Customer.ID,
		StoreID:           req.StoreID,
		CartType:          req.CartType,
		ProductID:         req.Product.ID,
		Quantity:          req.Quantity,
		Selection:         req.Selection,
		EnteredPriceCents: req.EnteredPriceCents,
		BundleItemID:      bundleItemID,
	}
}

// findMatch locates an existing top-level line with the same product,
// selection and entered price. Any difference creates a distinct line.
func findMatch(items []models.CartItem, req *AddToCartRequest) *models.CartItem {
	for i := range items {
		item := &items[i]
		if item.IsChild() {
			continue
		}
		if item.ProductID != req.Product.ID {
			continue
		}
		if item.EnteredPriceCents != req.EnteredPriceCents {
			continue
		}
		if !item.Selection.Equal(req.Selection) {
			continue
		}
		return item
	}
	return nil
}

// selectionForProduct narrows a selection to the attributes of the given
// product, honoring a bundle slot's attribute filters.
func selectionForProduct(selection types.AttributeSelection, product *models.Product, slot *models.ProductBundleItem) types.AttributeSelection {
	out := types.AttributeSelection{}
	for _, mapping := range product.AttributeMappings {
		if slot != nil && slot.FiltersAttribute(mapping.ID) {
			continue
		}
		for _, value := range selection.ValuesFor(mapping.ID) {
			out = out.WithValue(mapping.ID, value)
		}
	}
	return out
}

func (s *service) countCommitted() {
	s.metrics.IncAddAttempt("committed")
}

func (s *service) countRejected() {
	s.metrics.IncAddAttempt("rejected")
}

func (s *service) countViolations(check string, violations []string) {
	for range violations {
		s.metrics.IncViolation(check)
	}
}
