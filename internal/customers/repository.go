package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/cartforge/cartforge/pkg/errors"
	"github.com/cartforge/cartforge/pkg/db/models"
	"github.com/cartforge/cartforge/pkg/types"
)

// Repository reads and updates customer rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a customer repository backed by the provided DB.
func NewRepository(db *gorm.DB) (*Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &Repository{db: db}, nil
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads a customer by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading customer")
	}
	return &customer, nil
}

// ResetCheckoutProgress clears the customer's selected payment method and
// shipping option. Every cart mutation invalidates previously computed
// checkout choices.
func (r *Repository) ResetCheckoutProgress(ctx context.Context, customerID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", customerID).
		Updates(map[string]any{
			"selected_payment_method":  nil,
			"selected_shipping_option": nil,
		}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resetting checkout progress")
	}
	return nil
}

// CheckoutAttributes returns the customer's stored checkout attribute
// selection, empty when none has been saved.
func (r *Repository) CheckoutAttributes(ctx context.Context, customerID uuid.UUID) (types.AttributeSelection, error) {
	customer, err := r.FindByID(ctx, customerID)
	if err != nil {
		return types.AttributeSelection{}, err
	}
	if customer.CheckoutAttributes == nil {
		return types.AttributeSelection{}, nil
	}
	return customer.CheckoutAttributes.Clone(), nil
}

// SaveCheckoutAttributes persists the customer's checkout attribute selection.
func (r *Repository) SaveCheckoutAttributes(ctx context.Context, customerID uuid.UUID, selection types.AttributeSelection) error {
	err := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", customerID).
		Update("checkout_attributes", &selection).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving checkout attributes")
	}
	return nil
}
