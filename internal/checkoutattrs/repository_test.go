package checkoutattrs

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cartforge/cartforge/pkg/db/models"
	"github.com/cartforge/cartforge/pkg/types"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.CheckoutAttribute{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	repo, err := NewRepository(conn)
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	return repo
}

func TestListByStoreOrdersByDisplayOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	storeID := uuid.New()

	second := models.CheckoutAttribute{ID: uuid.New(), StoreID: storeID, Name: "Delivery note", DisplayOrder: 2}
	first := models.CheckoutAttribute{ID: uuid.New(), StoreID: storeID, Name: "Gift wrap", DisplayOrder: 1}
	other := models.CheckoutAttribute{ID: uuid.New(), StoreID: uuid.New(), Name: "Elsewhere"}
	for _, attr := range []models.CheckoutAttribute{second, first, other} {
		if err := repo.db.Create(&attr).Error; err != nil {
			t.Fatalf("seed attribute: %v", err)
		}
	}

	attrs, err := repo.ListByStore(ctx, storeID)
	if err != nil {
		t.Fatalf("ListByStore: %v", err)
	}
	if len(attrs) != 2 {
		t.Fatalf("expected two attributes, got %d", len(attrs))
	}
	if attrs[0].Name != "Gift wrap" || attrs[1].Name != "Delivery note" {
		t.Fatalf("expected display order sorting, got %q then %q", attrs[0].Name, attrs[1].Name)
	}
}

func TestRemoveShippableAttributes(t *testing.T) {
	attrs := []models.CheckoutAttribute{
		{Name: "Gift wrap", ShippableProductRequired: true},
		{Name: "Invoice note"},
	}

	kept := RemoveShippableAttributes(attrs)
	if len(kept) != 1 || kept[0].Name != "Invoice note" {
		t.Fatalf("expected only non-shipping attributes, got %+v", kept)
	}
}

func TestMissingRequired(t *testing.T) {
	answered := models.CheckoutAttribute{ID: uuid.New(), Name: "Gift wrap", IsRequired: true}
	unanswered := models.CheckoutAttribute{ID: uuid.New(), Name: "Courier", IsRequired: true}
	optional := models.CheckoutAttribute{ID: uuid.New(), Name: "Note"}

	selection := types.AttributeSelection{}.WithValue(answered.ID, "yes")

	missing := MissingRequired([]models.CheckoutAttribute{answered, unanswered, optional}, selection)
	if len(missing) != 1 || missing[0].ID != unanswered.ID {
		t.Fatalf("expected only the unanswered required attribute, got %+v", missing)
	}
}

func TestStripSelection(t *testing.T) {
	giftWrap := models.CheckoutAttribute{ID: uuid.New(), Name: "Gift wrap"}
	selection := types.AttributeSelection{}.
		WithValue(giftWrap.ID, "yes").
		WithValue(uuid.New(), "keep me")

	stripped := StripSelection(selection, []models.CheckoutAttribute{giftWrap})
	if len(stripped.ValuesFor(giftWrap.ID)) != 0 {
		t.Fatal("stripped attribute must be gone")
	}
	if len(stripped.Attributes) != 1 {
		t.Fatalf("unrelated entries must survive, got %+v", stripped)
	}
}
