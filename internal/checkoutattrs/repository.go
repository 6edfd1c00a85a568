package checkoutattrs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cartforge/cartforge/pkg/db/models"
	pkgerrors "github.com/cartforge/cartforge/pkg/errors"
	"github.com/cartforge/cartforge/pkg/types"
)

// Repository reads store-level checkout attributes.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a checkout attribute repository backed by the provided DB.
func NewRepository(db *gorm.DB) (*Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &Repository{db: db}, nil
}

// ListByStore returns the store's checkout attributes in display order.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.CheckoutAttribute, error) {
	var attrs []models.CheckoutAttribute
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("display_order ASC").
		Find(&attrs).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading checkout attributes")
	}
	return attrs, nil
}

// RemoveShippableAttributes drops attributes that only apply to carts which
// ship. Used when the cart carries no shippable product.
func RemoveShippableAttributes(attrs []models.CheckoutAttribute) []models.CheckoutAttribute {
	out := make([]models.CheckoutAttribute, 0, len(attrs))
	for _, attr := range attrs {
		if attr.ShippableProductRequired {
			continue
		}
		out = append(out, attr)
	}
	return out
}

// MissingRequired returns required attributes the selection leaves unanswered.
func MissingRequired(attrs []models.CheckoutAttribute, selection types.AttributeSelection) []models.CheckoutAttribute {
	var missing []models.CheckoutAttribute
	for _, attr := range attrs {
		if !attr.IsRequired {
			continue
		}
		if len(selection.ValuesFor(attr.ID)) == 0 {
			missing = append(missing, attr)
		}
	}
	return missing
}

// StripSelection removes selection entries for the given attributes. Used to
// scrub shipping-only checkout answers once the cart stops shipping.
func StripSelection(selection types.AttributeSelection, attrs []models.CheckoutAttribute) types.AttributeSelection {
	ids := make([]uuid.UUID, 0, len(attrs))
	for _, attr := range attrs {
		ids = append(ids, attr.ID)
	}
	return selection.Without(ids...)
}
