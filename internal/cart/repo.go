package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cartforge/cartforge/pkg/db/models"
	"github.com/cartforge/cartforge/pkg/enums"
	pkgerrors "github.com/cartforge/cartforge/pkg/errors"
	"github.com/cartforge/cartforge/pkg/types"
)

// Repository is the durable cart line store.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a cart item repository backed by the provided DB.
func NewRepository(db *gorm.DB) (*Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &Repository{db: db}, nil
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) itemStore {
	return &Repository{db: tx}
}

// GetItems loads all lines (top-level and children) for one cart.
func (r *Repository) GetItems(ctx context.Context, customerID uuid.UUID, cartType enums.CartType, storeID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND cart_type = ? AND store_id = ?", customerID, cartType, storeID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart items")
	}
	return items, nil
}

// FindByID loads a single line item.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart item")
	}
	return &item, nil
}

// Add persists a new top-level line item.
func (r *Repository) Add(ctx context.Context, item *models.CartItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating cart item")
	}
	return nil
}

// AddChildren persists bundle children under a parent line in one batch. The
// children inherit the parent id; their cart type must already equal the
// parent's.
func (r *Repository) AddChildren(ctx context.Context, parentID uuid.UUID, children []*models.CartItem) error {
	if len(children) == 0 {
		return nil
	}
	for _, child := range children {
		if child.ID == uuid.Nil {
			child.ID = uuid.New()
		}
		child.ParentItemID = &parentID
	}
	if err := r.db.WithContext(ctx).Create(children).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating bundle children")
	}
	return nil
}

// UpdateQuantity persists a new quantity and (possibly updated) selection on
// an existing line.
func (r *Repository) UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int, selection types.AttributeSelection) error {
	err := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Select("quantity", "selection").
		Updates(models.CartItem{Quantity: quantity, Selection: selection}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating cart item quantity")
	}
	return nil
}

// Remove deletes the given line items.
func (r *Repository) Remove(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&models.CartItem{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting cart items")
	}
	return nil
}

// RemoveChildrenOf deletes children of the given parents, sparing ids listed
// in excludeIDs. Used by cascade delete so no child line outlives its parent.
func (r *Repository) RemoveChildrenOf(ctx context.Context, parentIDs []uuid.UUID, excludeIDs []uuid.UUID) error {
	if len(parentIDs) == 0 {
		return nil
	}
	query := r.db.WithContext(ctx).Where("parent_item_id IN ?", parentIDs)
	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}
	if err := query.Delete(&models.CartItem{}).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting bundle children")
	}
	return nil
}
