package attributes

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cartforge/cartforge/internal/products"
	"github.com/cartforge/cartforge/pkg/db/models"
	"github.com/cartforge/cartforge/pkg/types"
)

// VariantQueryEntry is one raw attribute choice as submitted by a storefront
// form, before it has been checked against the product's attributes.
type VariantQueryEntry struct {
	AttributeID uuid.UUID
	Values      []string
}

// VariantQuery is the raw, untrusted form of an attribute selection.
type VariantQuery struct {
	Entries  []VariantQueryEntry
	GiftCard *types.GiftCardInfo
}

// IsEmpty reports whether the query carries no data at all.
func (q VariantQuery) IsEmpty() bool {
	return len(q.Entries) == 0 && q.GiftCard == nil
}

// ResolvedAttribute pairs a selected attribute mapping with the concrete value
// rows the customer picked. Free-text entries resolve to an empty Values slice.
type ResolvedAttribute struct {
	Mapping   models.ProductAttributeMapping
	Values    []models.ProductAttributeValue
	RawValues []string
}

// Service materializes raw attribute selections against the catalog.
type Service struct {
	db *gorm.DB
}

// NewService builds an attribute materializer backed by the provided DB.
func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &Service{db: db}, nil
}

// SelectionFromQuery converts a raw variant query into a structured selection
// against the product's attribute mappings. Entries referencing attributes the
// product does not carry are dropped with a warning. When bundleItem filters
// an attribute's input, the entry is dropped silently: the slot pre-selects
// its own values.
func (s *Service) SelectionFromQuery(_ context.Context, query VariantQuery, product *models.Product, bundleItem *models.ProductBundleItem) (types.AttributeSelection, []string) {
	selection := types.AttributeSelection{GiftCard: query.GiftCard}
	var warnings []string

	known := make(map[uuid.UUID]struct{}, len(product.AttributeMappings))
	for _, mapping := range product.AttributeMappings {
		known[mapping.ID] = struct{}{}
	}

	for _, entry := range query.Entries {
		if _, ok := known[entry.AttributeID]; !ok {
			warnings = append(warnings, fmt.Sprintf("attribute %s does not belong to product %s", entry.AttributeID, product.Name))
			continue
		}
		if bundleItem != nil && bundleItem.FiltersAttribute(entry.AttributeID) {
			continue
		}
		for _, value := range entry.Values {
			if value == "" {
				continue
			}
			selection = selection.WithValue(entry.AttributeID, value)
		}
	}

	return selection, warnings
}

// Materialize resolves a structured selection into concrete attribute and
// value rows. Values that do not name a catalog value row (free text) keep
// only their raw entry.
func (s *Service) Materialize(ctx context.Context, selection types.AttributeSelection) ([]ResolvedAttribute, error) {
	ids := selection.AttributeIDs()
	if len(ids) == 0 {
		return nil, nil
	}

	var mappings []models.ProductAttributeMapping
	err := s.db.WithContext(ctx).
		Preload("Values").
		Where("id IN ?", ids).
		Find(&mappings).Error
	if err != nil {
		return nil, fmt.Errorf("loading attribute mappings: %w", err)
	}

	byID := make(map[uuid.UUID]models.ProductAttributeMapping, len(mappings))
	for _, mapping := range mappings {
		byID[mapping.ID] = mapping
	}

	out := make([]ResolvedAttribute, 0, len(ids))
	for _, attr := range selection.Attributes {
		mapping, ok := byID[attr.AttributeID]
		if !ok {
			continue
		}
		resolved := ResolvedAttribute{Mapping: mapping, RawValues: attr.Values}
		for _, raw := range attr.Values {
			for _, value := range mapping.Values {
				if value.ID.String() == raw {
					resolved.Values = append(resolved.Values, value)
				}
			}
		}
		out = append(out, resolved)
	}
	return out, nil
}

// FindCombination returns the attribute combination matching the selection
// regardless of its active flag, or nil when the product defines none for it.
// Gift card fields do not participate in the match.
func (s *Service) FindCombination(ctx context.Context, productID uuid.UUID, selection types.AttributeSelection) (*models.ProductAttributeCombination, error) {
	var combinations []models.ProductAttributeCombination
	err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Find(&combinations).Error
	if err != nil {
		return nil, fmt.Errorf("loading attribute combinations: %w", err)
	}

	target := types.AttributeSelection{Attributes: selection.Attributes}
	for i := range combinations {
		candidate := types.AttributeSelection{Attributes: combinations[i].Selection.Attributes}
		if candidate.Equal(target) {
			return &combinations[i], nil
		}
	}
	return nil, nil
}

// FindActiveCombination is FindCombination narrowed to active combinations.
func (s *Service) FindActiveCombination(ctx context.Context, productID uuid.UUID, selection types.AttributeSelection) (*models.ProductAttributeCombination, error) {
	combination, err := s.FindCombination(ctx, productID, selection)
	if err != nil {
		return nil, err
	}
	if combination == nil || !combination.IsActive {
		return nil, nil
	}
	return combination, nil
}

// MergeCombination layers a combination's stock/price overrides onto the
// product snapshot.
func (s *Service) MergeCombination(snapshot *products.Overridable, combination *models.ProductAttributeCombination) {
	if snapshot == nil || combination == nil {
		return
	}
	snapshot.SetOverride(products.OverrideStockQuantity, combination.StockQuantity)
	snapshot.SetOverride(products.OverrideAllowOutOfStockOrders, combination.AllowOutOfStockOrders)
	if combination.PriceCents != nil {
		snapshot.SetOverride(products.OverridePriceCents, *combination.PriceCents)
	}
}
