package products

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cartforge/cartforge/pkg/db/models"
	pkgerrors "github.com/cartforge/cartforge/pkg/errors"
)

// Repository loads catalog data for the cart engine.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a product repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a product with its attribute mappings, values and bundle
// slots. Soft-deleted products are not filtered here; the validator reports
// them as violations instead.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("AttributeMappings", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Preload("AttributeMappings.Values", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Preload("BundleItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return nil, err
	}
	return &product, nil
}

// FindByIDs batch-loads products keyed by id, used to prefetch an entire cart.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error) {
	out := make(map[uuid.UUID]*models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Preload("AttributeMappings").
		Preload("AttributeMappings.Values").
		Preload("BundleItems").
		Where("id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out, nil
}

// ListBundleItems returns the published-or-not slots of a bundle product in
// catalog order.
func (r *Repository) ListBundleItems(ctx context.Context, bundleProductID uuid.UUID) ([]models.ProductBundleItem, error) {
	var rows []models.ProductBundleItem
	err := r.db.WithContext(ctx).
		Where("bundle_product_id = ?", bundleProductID).
		Order("display_order ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindBundleItemByID resolves a single bundle slot.
func (r *Repository) FindBundleItemByID(ctx context.Context, id uuid.UUID) (*models.ProductBundleItem, error) {
	var row models.ProductBundleItem
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "bundle item not found")
		}
		return nil, err
	}
	return &row, nil
}
