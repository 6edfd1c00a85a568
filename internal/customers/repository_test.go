package customers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cartforge/cartforge/pkg/db/models"
	pkgerrors "github.com/cartforge/cartforge/pkg/errors"
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
	if err := conn.AutoMigrate(&models.Customer{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	repo, err := NewRepository(conn)
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	return repo
}

func seedCustomer(t *testing.T, repo *Repository) *models.Customer {
	t.Helper()
	payment := "card"
	shipping := "ground"
	customer := &models.Customer{
		ID:                     uuid.New(),
		SelectedPaymentMethod:  &payment,
		SelectedShippingOption: &shipping,
	}
	if err := repo.db.Create(customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return customer
}

func TestFindByID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seeded := seedCustomer(t, repo)

	found, err := repo.FindByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found.ID != seeded.ID {
		t.Fatalf("expected customer %s, got %s", seeded.ID, found.ID)
	}

	_, err = repo.FindByID(ctx, uuid.New())
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestResetCheckoutProgress(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seeded := seedCustomer(t, repo)

	if err := repo.ResetCheckoutProgress(ctx, seeded.ID); err != nil {
		t.Fatalf("ResetCheckoutProgress: %v", err)
	}

	reloaded, err := repo.FindByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if reloaded.SelectedPaymentMethod != nil || reloaded.SelectedShippingOption != nil {
		t.Fatalf("checkout progress must be cleared, got %+v", reloaded)
	}
}

func TestCheckoutAttributesRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seeded := seedCustomer(t, repo)

	empty, err := repo.CheckoutAttributes(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("CheckoutAttributes: %v", err)
	}
	if !empty.IsEmpty() {
		t.Fatalf("expected empty selection, got %+v", empty)
	}

	attrID := uuid.New()
	selection := types.AttributeSelection{}.WithValue(attrID, "gift wrap")
	if err := repo.SaveCheckoutAttributes(ctx, seeded.ID, selection); err != nil {
		t.Fatalf("SaveCheckoutAttributes: %v", err)
	}

	saved, err := repo.CheckoutAttributes(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("CheckoutAttributes after save: %v", err)
	}
	if got := saved.ValuesFor(attrID); len(got) != 1 || got[0] != "gift wrap" {
		t.Fatalf("expected saved selection, got %+v", saved)
	}
}
