package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cartforge/cartforge/api/middleware"
	cartsvc "github.com/cartforge/cartforge/internal/cart"
	"github.com/cartforge/cartforge/pkg/config"
	"github.com/cartforge/cartforge/pkg/db/models"
	"github.com/cartforge/cartforge/pkg/enums"
	pkgerrors "github.com/cartforge/cartforge/pkg/errors"
	"github.com/cartforge/cartforge/pkg/types"
)

type stubCartService struct {
	addResult      *cartsvc.AddToCartResult
	addErr         error
	lastAdd        *cartsvc.AddToCartRequest
	items          []*cartsvc.OrganizedCartItem
	updateResult   *cartsvc.AddToCartResult
	migrateResult  *cartsvc.MigrateResult
	checkoutIssues []string
	copyResult     *cartsvc.AddToCartResult
	copyCartType   enums.CartType
	deleteErr      error
	deletedItemID  uuid.UUID
}

func (s *stubCartService) AddToCart(_ context.Context, req *cartsvc.AddToCartRequest) (*cartsvc.AddToCartResult, error) {
	s.lastAdd = req
	return s.addResult, s.addErr
}

func (s *stubCartService) GetCartItems(context.Context, uuid.UUID, enums.CartType, uuid.UUID) ([]*cartsvc.OrganizedCartItem, error) {
	return s.items, nil
}

func (s *stubCartService) UpdateQuantity(context.Context, uuid.UUID, uuid.UUID, int) (*cartsvc.AddToCartResult, error) {
	return s.updateResult, nil
}

func (s *stubCartService) DeleteItem(_ context.Context, _ uuid.UUID, itemID uuid.UUID) error {
	s.deletedItemID = itemID
	return s.deleteErr
}

func (s *stubCartService) DeleteItems(context.Context, uuid.UUID, enums.CartType, uuid.UUID, []uuid.UUID) error {
	return s.deleteErr
}

func (s *stubCartService) CopyCartItem(_ context.Context, _ uuid.UUID, _ uuid.UUID, toCartType enums.CartType) (*cartsvc.AddToCartResult, error) {
	s.copyCartType = toCartType
	return s.copyResult, nil
}

func (s *stubCartService) MigrateCart(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (*cartsvc.MigrateResult, error) {
	return s.migrateResult, nil
}

func (s *stubCartService) ValidateCheckout(context.Context, uuid.UUID, enums.CartType, uuid.UUID) ([]string, error) {
	return s.checkoutIssues, nil
}

type stubCustomerLoader struct {
	customer *models.Customer
}

func (s *stubCustomerLoader) FindByID(context.Context, uuid.UUID) (*models.Customer, error) {
	if s.customer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	return s.customer, nil
}

type stubProductLoader struct {
	product *models.Product
}

func (s *stubProductLoader) FindByID(context.Context, uuid.UUID) (*models.Product, error) {
	if s.product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return s.product, nil
}

func seededRequest(method, target, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := middleware.WithCustomerID(r.Context(), uuid.New())
	ctx = middleware.WithStoreID(ctx, uuid.New())
	return r.WithContext(ctx)
}

func TestAddItemAcceptedReturns201(t *testing.T) {
	itemID := uuid.New()
	svc := &stubCartService{addResult: &cartsvc.AddToCartResult{Accepted: true, ItemID: itemID}}
	handler := AddItem(svc, &stubCustomerLoader{customer: &models.Customer{ID: uuid.New()}}, &stubProductLoader{product: &models.Product{ID: uuid.New(), Name: "Widget"}}, config.CartConfig{AutoAddRequiredProducts: true, AutoExpandBundleProducts: true}, nil)

	productID := uuid.New()
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, seededRequest("POST", "/api/v1/cart/items", `{"product_id":"`+productID.String()+`","quantity":2}`))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if svc.lastAdd == nil || svc.lastAdd.Quantity != 2 {
		t.Fatalf("service did not receive the add request")
	}
	if !svc.lastAdd.AutoAddRequired || !svc.lastAdd.AutoExpandBundle {
		t.Fatalf("expansion flags not forwarded from config")
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	data := body.Data.(map[string]any)
	if data["item_id"] != itemID.String() {
		t.Fatalf("unexpected item id %v", data["item_id"])
	}
}

func TestAddItemRejectionReturns422WithViolations(t *testing.T) {
	svc := &stubCartService{addResult: &cartsvc.AddToCartResult{Violations: []string{"Widget is out of stock"}}}
	handler := AddItem(svc, &stubCustomerLoader{customer: &models.Customer{ID: uuid.New()}}, &stubProductLoader{product: &models.Product{ID: uuid.New()}}, config.CartConfig{}, nil)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, seededRequest("POST", "/api/v1/cart/items", `{"product_id":"`+uuid.NewString()+`","quantity":1}`))

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Error.Code != string(pkgerrors.CodeStateConflict) {
		t.Fatalf("unexpected code %s", body.Error.Code)
	}
	details := body.Error.Details.(map[string]any)
	violations := details["violations"].([]any)
	if len(violations) != 1 || violations[0] != "Widget is out of stock" {
		t.Fatalf("unexpected violations %v", violations)
	}
}

func TestAddItemRejectsMalformedBody(t *testing.T) {
	svc := &stubCartService{}
	handler := AddItem(svc, &stubCustomerLoader{}, &stubProductLoader{}, config.CartConfig{}, nil)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, seededRequest("POST", "/api/v1/cart/items", `{"quantity":0}`))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if svc.lastAdd != nil {
		t.Fatalf("service should not be called for invalid payloads")
	}
}

func TestFetchCartReturnsOrganizedTree(t *testing.T) {
	itemID := uuid.New()
	svc := &stubCartService{items: []*cartsvc.OrganizedCartItem{
		{Item: models.CartItem{ID: itemID, Quantity: 3}, Product: &models.Product{Name: "Widget"}},
	}}
	handler := FetchCart(svc, nil)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, seededRequest("GET", "/api/v1/cart?cart_type=wishlist", ""))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	data := body.Data.(map[string]any)
	if data["cart_type"] != "wishlist" {
		t.Fatalf("unexpected cart type %v", data["cart_type"])
	}
	items := data["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	first := items[0].(map[string]any)
	if first["product_name"] != "Widget" {
		t.Fatalf("unexpected product name %v", first["product_name"])
	}
}

func TestUpdateItemQuantityRejectsInvalidID(t *testing.T) {
	router := chi.NewRouter()
	router.Patch("/api/v1/cart/items/{itemId}", UpdateItemQuantity(&stubCartService{}, nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, seededRequest("PATCH", "/api/v1/cart/items/not-a-uuid", `{"quantity":1}`))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestUpdateItemQuantityPropagatesRejection(t *testing.T) {
	svc := &stubCartService{updateResult: &cartsvc.AddToCartResult{Violations: []string{"The maximum quantity allowed for purchase is 5"}}}
	router := chi.NewRouter()
	router.Patch("/api/v1/cart/items/{itemId}", UpdateItemQuantity(svc, nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, seededRequest("PATCH", "/api/v1/cart/items/"+uuid.NewString(), `{"quantity":10}`))

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
}

func TestMigrateRejectsSelfTransfer(t *testing.T) {
	handler := Migrate(&stubCartService{}, nil)

	customerID := uuid.New()
	r := httptest.NewRequest("POST", "/api/v1/cart/migrate", strings.NewReader(`{"from_customer_id":"`+customerID.String()+`"}`))
	ctx := middleware.WithCustomerID(r.Context(), customerID)
	ctx = middleware.WithStoreID(ctx, uuid.New())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r.WithContext(ctx))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestMigrateReturnsSummary(t *testing.T) {
	svc := &stubCartService{migrateResult: &cartsvc.MigrateResult{Moved: 2, Skipped: 1, Violations: []string{"Widget is out of stock"}}}
	handler := Migrate(svc, nil)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, seededRequest("POST", "/api/v1/cart/migrate", `{"from_customer_id":"`+uuid.NewString()+`"}`))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	data := body.Data.(map[string]any)
	if data["moved"].(float64) != 2 || data["skipped"].(float64) != 1 {
		t.Fatalf("unexpected summary %v", data)
	}
}

func TestValidateCheckoutReportsReadiness(t *testing.T) {
	svc := &stubCartService{checkoutIssues: []string{"Please select a Gift wrap option"}}
	handler := ValidateCheckout(svc, nil)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, seededRequest("GET", "/api/v1/cart/checkout/validate", ""))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	data := body.Data.(map[string]any)
	if data["ready"].(bool) {
		t.Fatalf("expected not ready")
	}
}

func TestCopyItemForwardsCartType(t *testing.T) {
	itemID := uuid.New()
	svc := &stubCartService{copyResult: &cartsvc.AddToCartResult{Accepted: true, ItemID: uuid.New()}}
	router := chi.NewRouter()
	router.Post("/api/v1/cart/items/{itemId}/copy", CopyItem(svc, nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, seededRequest("POST", "/api/v1/cart/items/"+itemID.String()+"/copy", `{"cart_type":"wishlist"}`))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if svc.copyCartType != enums.CartTypeWishlist {
		t.Fatalf("expected wishlist target, got %s", svc.copyCartType)
	}
}

func TestCopyItemPropagatesRejection(t *testing.T) {
	svc := &stubCartService{copyResult: &cartsvc.AddToCartResult{Violations: []string{"The product is not published"}}}
	router := chi.NewRouter()
	router.Post("/api/v1/cart/items/{itemId}/copy", CopyItem(svc, nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, seededRequest("POST", "/api/v1/cart/items/"+uuid.NewString()+"/copy", `{}`))

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
}

func TestDeleteItemByPath(t *testing.T) {
	itemID := uuid.New()
	svc := &stubCartService{}
	router := chi.NewRouter()
	router.Delete("/api/v1/cart/items/{itemId}", DeleteItem(svc, nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, seededRequest("DELETE", "/api/v1/cart/items/"+itemID.String(), ""))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if svc.deletedItemID != itemID {
		t.Fatalf("expected delete of %s, got %s", itemID, svc.deletedItemID)
	}
}
