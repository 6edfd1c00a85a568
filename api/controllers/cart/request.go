package cart

import (
	"github.com/google/uuid"

	"github.com/cartforge/cartforge/api/validators"
	"github.com/cartforge/cartforge/internal/attributes"
	cartsvc "github.com/cartforge/cartforge/internal/cart"
	"github.com/cartforge/cartforge/pkg/types"
)

const giftCardFieldMaxLen = 255

// AddItemRequest is the wire form of one add-to-cart attempt. Attribute
// choices arrive as raw attribute/value pairs and are materialized
// server-side; clients never send structured selections.
type AddItemRequest struct {
	ProductID         uuid.UUID             `json:"product_id" validate:"required"`
	CartType          string                `json:"cart_type" validate:"omitempty,oneof=shopping_cart wishlist"`
	Quantity          int                   `json:"quantity" validate:"required,min=1"`
	EnteredPriceCents int64                 `json:"entered_price_cents" validate:"omitempty,min=0"`
	Attributes        []AttributeEntry      `json:"attributes" validate:"omitempty,dive"`
	GiftCard          *GiftCardRecipient    `json:"gift_card"`
}

// AttributeEntry carries one attribute's raw chosen values.
type AttributeEntry struct {
	AttributeID uuid.UUID `json:"attribute_id" validate:"required"`
	Values      []string  `json:"values" validate:"required,min=1"`
}

// GiftCardRecipient carries gift card personalization fields.
type GiftCardRecipient struct {
	RecipientName  string `json:"recipient_name"`
	RecipientEmail string `json:"recipient_email" validate:"omitempty,email"`
	SenderName     string `json:"sender_name"`
	SenderEmail    string `json:"sender_email" validate:"omitempty,email"`
	Message        string `json:"message"`
}

// UpdateQuantityRequest changes one line's quantity; zero is a delete.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"min=0"`
}

// DeleteItemsRequest removes a batch of lines from one cart.
type DeleteItemsRequest struct {
	CartType string      `json:"cart_type" validate:"omitempty,oneof=shopping_cart wishlist"`
	ItemIDs  []uuid.UUID `json:"item_ids" validate:"required,min=1"`
}

// CopyItemRequest duplicates a top-level line into the named cart type.
type CopyItemRequest struct {
	CartType string `json:"cart_type" validate:"omitempty,oneof=shopping_cart wishlist"`
}

// MigrateRequest moves a guest's carts onto the signed-in customer.
type MigrateRequest struct {
	FromCustomerID uuid.UUID `json:"from_customer_id" validate:"required"`
}

func (p AddItemRequest) variantQuery() *attributes.VariantQuery {
	if len(p.Attributes) == 0 && p.GiftCard == nil {
		return nil
	}

	query := &attributes.VariantQuery{}
	for _, entry := range p.Attributes {
		values := make([]string, 0, len(entry.Values))
		for _, value := range entry.Values {
			values = append(values, validators.SanitizeString(value, giftCardFieldMaxLen))
		}
		query.Entries = append(query.Entries, attributes.VariantQueryEntry{
			AttributeID: entry.AttributeID,
			Values:      values,
		})
	}

	if p.GiftCard != nil {
		query.GiftCard = &types.GiftCardInfo{
			RecipientName:  validators.SanitizeString(p.GiftCard.RecipientName, giftCardFieldMaxLen),
			RecipientEmail: validators.SanitizeString(p.GiftCard.RecipientEmail, giftCardFieldMaxLen),
			SenderName:     validators.SanitizeString(p.GiftCard.SenderName, giftCardFieldMaxLen),
			SenderEmail:    validators.SanitizeString(p.GiftCard.SenderEmail, giftCardFieldMaxLen),
			Message:        validators.SanitizeString(p.GiftCard.Message, 1000),
		}
	}

	return query
}

func newMigrateSummary(result *cartsvc.MigrateResult) MigrateSummary {
	return MigrateSummary{
		Moved:      result.Moved,
		Skipped:    result.Skipped,
		Violations: result.Violations,
	}
}
