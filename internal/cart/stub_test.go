package cart

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/cartforge/cartforge/internal/access"
	"github.com/cartforge/cartforge/internal/attributes"
	"github.com/cartforge/cartforge/internal/products"
	"github.com/cartforge/cartforge/pkg/config"
	"github.com/cartforge/cartforge/pkg/db/models"
	"github.com/cartforge/cartforge/pkg/enums"
	pkgerrors "github.com/cartforge/cartforge/pkg/errors"
	"github.com/cartforge/cartforge/pkg/logger"
	"github.com/cartforge/cartforge/pkg/types"
)

type stubTx struct{}

func (stubTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

// stubStore is an in-memory item store counting every write, so tests can
// assert that a rejected attempt performed zero mutations.
type stubStore struct {
	items     []models.CartItem
	mutations int
}

func (st *stubStore) GetItems(_ context.Context, customerID uuid.UUID, cartType enums.CartType, storeID uuid.UUID) ([]models.CartItem, error) {
	var out []models.CartItem
	for _, item := range st.items {
		if item.CustomerID == customerID && item.CartType == cartType && item.StoreID == storeID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (st *stubStore) FindByID(_ context.Context, id uuid.UUID) (*models.CartItem, error) {
	for i := range st.items {
		if st.items[i].ID == id {
			item := st.items[i]
			return &item, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
}

func (st *stubStore) Add(_ context.Context, item *models.CartItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	st.mutations++
	st.items = append(st.items, *item)
	return nil
}

func (st *stubStore) AddChildren(_ context.Context, parentID uuid.UUID, children []*models.CartItem) error {
	for _, child := range children {
		if child.ID == uuid.Nil {
			child.ID = uuid.New()
		}
		pid := parentID
		child.ParentItemID = &pid
		st.mutations++
		st.items = append(st.items, *child)
	}
	return nil
}

func (st *stubStore) UpdateQuantity(_ context.Context, itemID uuid.UUID, quantity int, selection types.AttributeSelection) error {
	for i := range st.items {
		if st.items[i].ID == itemID {
			st.items[i].Quantity = quantity
			st.items[i].Selection = selection
			st.mutations++
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
}

func (st *stubStore) Remove(_ context.Context, ids []uuid.UUID) error {
	doomed := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		doomed[id] = struct{}{}
	}
	kept := st.items[:0]
	for _, item := range st.items {
		if _, ok := doomed[item.ID]; !ok {
			kept = append(kept, item)
		}
	}
	st.items = kept
	st.mutations++
	return nil
}

func (st *stubStore) RemoveChildrenOf(_ context.Context, parentIDs []uuid.UUID, excludeIDs []uuid.UUID) error {
	parents := make(map[uuid.UUID]struct{}, len(parentIDs))
	for _, id := range parentIDs {
		parents[id] = struct{}{}
	}
	excluded := make(map[uuid.UUID]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}
	kept := st.items[:0]
	for _, item := range st.items {
		if item.ParentItemID != nil {
			if _, isTarget := parents[*item.ParentItemID]; isTarget {
				if _, spared := excluded[item.ID]; !spared {
					continue
				}
			}
		}
		kept = append(kept, item)
	}
	st.items = kept
	st.mutations++
	return nil
}

func (st *stubStore) WithTx(_ *gorm.DB) itemStore { return st }

func (st *stubStore) topLevel() []models.CartItem {
	var out []models.CartItem
	for _, item := range st.items {
		if !item.IsChild() {
			out = append(out, item)
		}
	}
	return out
}

type stubCatalog struct {
	products map[uuid.UUID]*models.Product
	slots    []models.ProductBundleItem
}

func newStubCatalog(list ...*models.Product) *stubCatalog {
	catalog := &stubCatalog{products: map[uuid.UUID]*models.Product{}}
	for _, product := range list {
		catalog.products[product.ID] = product
	}
	return catalog
}

func (c *stubCatalog) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if product, ok := c.products[id]; ok {
		return product, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (c *stubCatalog) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error) {
	out := map[uuid.UUID]*models.Product{}
	for _, id := range ids {
		if product, ok := c.products[id]; ok {
			out[id] = product
		}
	}
	return out, nil
}

func (c *stubCatalog) ListBundleItems(_ context.Context, bundleProductID uuid.UUID) ([]models.ProductBundleItem, error) {
	var out []models.ProductBundleItem
	for _, slot := range c.slots {
		if slot.BundleProductID == bundleProductID {
			out = append(out, slot)
		}
	}
	return out, nil
}

func (c *stubCatalog) FindBundleItemByID(_ context.Context, id uuid.UUID) (*models.ProductBundleItem, error) {
	for i := range c.slots {
		if c.slots[i].ID == id {
			return &c.slots[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type stubCustomers struct {
	customers  map[uuid.UUID]*models.Customer
	checkout   map[uuid.UUID]types.AttributeSelection
	resetCalls int
}

func newStubCustomers(list ...*models.Customer) *stubCustomers {
	sc := &stubCustomers{
		customers: map[uuid.UUID]*models.Customer{},
		checkout:  map[uuid.UUID]types.AttributeSelection{},
	}
	for _, customer := range list {
		sc.customers[customer.ID] = customer
	}
	return sc
}

func (sc *stubCustomers) FindByID(_ context.Context, id uuid.UUID) (*models.Customer, error) {
	if customer, ok := sc.customers[id]; ok {
		return customer, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
}

func (sc *stubCustomers) ResetCheckoutProgress(_ context.Context, _ uuid.UUID) error {
	sc.resetCalls++
	return nil
}

func (sc *stubCustomers) CheckoutAttributes(_ context.Context, customerID uuid.UUID) (types.AttributeSelection, error) {
	return sc.checkout[customerID], nil
}

func (sc *stubCustomers) SaveCheckoutAttributes(_ context.Context, customerID uuid.UUID, selection types.AttributeSelection) error {
	sc.checkout[customerID] = selection
	return nil
}

type stubCheckout struct {
	attrs []models.CheckoutAttribute
}

func (sc *stubCheckout) ListByStore(_ context.Context, _ uuid.UUID) ([]models.CheckoutAttribute, error) {
	return sc.attrs, nil
}

type stubAttrs struct {
	combinations map[uuid.UUID]*models.ProductAttributeCombination
	resolved     []attributes.ResolvedAttribute
}

func (a *stubAttrs) Materialize(_ context.Context, selection types.AttributeSelection) ([]attributes.ResolvedAttribute, error) {
	if selection.IsEmpty() {
		return nil, nil
	}
	return a.resolved, nil
}

func (a *stubAttrs) FindCombination(_ context.Context, productID uuid.UUID, selection types.AttributeSelection) (*models.ProductAttributeCombination, error) {
	combination, ok := a.combinations[productID]
	if !ok {
		return nil, nil
	}
	stored := types.AttributeSelection{Attributes: combination.Selection.Attributes}
	if !stored.Equal(types.AttributeSelection{Attributes: selection.Attributes}) {
		return nil, nil
	}
	return combination, nil
}

func (a *stubAttrs) MergeCombination(snapshot *products.Overridable, combination *models.ProductAttributeCombination) {
	if snapshot == nil || combination == nil {
		return
	}
	snapshot.SetOverride(products.OverrideStockQuantity, combination.StockQuantity)
	snapshot.SetOverride(products.OverrideAllowOutOfStockOrders, combination.AllowOutOfStockOrders)
	if combination.PriceCents != nil {
		snapshot.SetOverride(products.OverridePriceCents, *combination.PriceCents)
	}
}

func (a *stubAttrs) SelectionFromQuery(_ context.Context, query attributes.VariantQuery, _ *models.Product, _ *models.ProductBundleItem) (types.AttributeSelection, []string) {
	selection := types.AttributeSelection{GiftCard: query.GiftCard}
	for _, entry := range query.Entries {
		for _, value := range entry.Values {
			selection = selection.WithValue(entry.AttributeID, value)
		}
	}
	return selection, nil
}

type fixture struct {
	svc       *service
	store     *stubStore
	catalog   *stubCatalog
	customers *stubCustomers
	checkout  *stubCheckout
	attrs     *stubAttrs
}

func defaultCartConfig() config.CartConfig {
	return config.CartConfig{
		MaxShoppingCartItems:     50,
		MaxWishlistItems:         50,
		AutoAddRequiredProducts:  true,
		AutoExpandBundleProducts: true,
	}
}

func newFixture(t *testing.T, cfg config.CartConfig, catalog *stubCatalog, customer *models.Customer) *fixture {
	t.Helper()
	store := &stubStore{}
	custStore := newStubCustomers(customer)
	checkout := &stubCheckout{}
	attrsStub := &stubAttrs{combinations: map[uuid.UUID]*models.ProductAttributeCombination{}}

	validator, err := NewValidator(access.NewService(), attrsStub, catalog, cfg)
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}

	svc := &service{
		tx:        stubTx{},
		items:     store,
		catalog:   catalog,
		customers: custStore,
		checkout:  checkout,
		attrs:     attrsStub,
		validator: validator,
		cache:     NewMemoryCache(),
		cfg:       cfg,
		log:       logger.New(logger.Options{ServiceName: "cartforge-test", Output: io.Discard}),
		organizer: &organizer{attrs: attrsStub},
		now:       time.Now,
	}
	return &fixture{svc: svc, store: store, catalog: catalog, customers: custStore, checkout: checkout, attrs: attrsStub}
}

func registeredCustomer() *models.Customer {
	return &models.Customer{ID: uuid.New(), Roles: pq.StringArray{access.RoleRegistered}}
}

func simpleProduct(name string) *models.Product {
	return &models.Product{
		ID:                   uuid.New(),
		Name:                 name,
		SKU:                  name,
		ProductType:          enums.ProductTypeSimple,
		Published:            true,
		OrderMinimumQuantity: 1,
		OrderMaximumQuantity: 10000,
		InventoryMethod:      enums.InventoryMethodNone,
		IsShippingEnabled:    true,
	}
}
