package types

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// SelectedAttribute carries the chosen value ids (or free-text entries) for one
// product attribute.
type SelectedAttribute struct {
	AttributeID uuid.UUID `json:"attribute_id"`
	Values      []string  `json:"values"`
}

// GiftCardInfo captures the recipient/sender fields entered alongside a gift
// card product.
type GiftCardInfo struct {
	RecipientName  string `json:"recipient_name"`
	RecipientEmail string `json:"recipient_email,omitempty"`
	SenderName     string `json:"sender_name"`
	SenderEmail    string `json:"sender_email,omitempty"`
	Message        string `json:"message,omitempty"`
}

// AttributeSelection is the structured, serializable set of attribute choices a
// customer made for one cart line item. Persisted as jsonb.
type AttributeSelection struct {
	Attributes []SelectedAttribute `json:"attributes,omitempty"`
	GiftCard   *GiftCardInfo       `json:"gift_card,omitempty"`
}

// IsEmpty reports whether the selection carries neither attribute choices nor
// gift card data.
func (s AttributeSelection) IsEmpty() bool {
	return len(s.Attributes) == 0 && s.GiftCard == nil
}

// ValuesFor returns the chosen values for the given attribute, or nil.
func (s AttributeSelection) ValuesFor(attributeID uuid.UUID) []string {
	for _, attr := range s.Attributes {
		if attr.AttributeID == attributeID {
			return attr.Values
		}
	}
	return nil
}

// AttributeIDs returns the ids of all attributes present in the selection.
func (s AttributeSelection) AttributeIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.Attributes))
	for _, attr := range s.Attributes {
		ids = append(ids, attr.AttributeID)
	}
	return ids
}

// WithValue returns a copy of the selection with value appended for the given
// attribute, creating the attribute entry when absent.
func (s AttributeSelection) WithValue(attributeID uuid.UUID, value string) AttributeSelection {
	out := s.Clone()
	for i := range out.Attributes {
		if out.Attributes[i].AttributeID == attributeID {
			out.Attributes[i].Values = append(out.Attributes[i].Values, value)
			return out
		}
	}
	out.Attributes = append(out.Attributes, SelectedAttribute{
		AttributeID: attributeID,
		Values:      []string{value},
	})
	return out
}

// Without returns a copy of the selection with the given attributes removed.
func (s AttributeSelection) Without(attributeIDs ...uuid.UUID) AttributeSelection {
	drop := make(map[uuid.UUID]struct{}, len(attributeIDs))
	for _, id := range attributeIDs {
		drop[id] = struct{}{}
	}
	out := AttributeSelection{GiftCard: cloneGiftCard(s.GiftCard)}
	for _, attr := range s.Attributes {
		if _, skip := drop[attr.AttributeID]; skip {
			continue
		}
		out.Attributes = append(out.Attributes, SelectedAttribute{
			AttributeID: attr.AttributeID,
			Values:      append([]string(nil), attr.Values...),
		})
	}
	return out
}

// Clone returns a deep copy of the selection.
func (s AttributeSelection) Clone() AttributeSelection {
	out := AttributeSelection{GiftCard: cloneGiftCard(s.GiftCard)}
	for _, attr := range s.Attributes {
		out.Attributes = append(out.Attributes, SelectedAttribute{
			AttributeID: attr.AttributeID,
			Values:      append([]string(nil), attr.Values...),
		})
	}
	return out
}

// Equal reports whether two selections describe the same configuration.
// Attribute order and value order are irrelevant; line items are merged only
// when their selections are equal under this comparison.
func (s AttributeSelection) Equal(other AttributeSelection) bool {
	if !giftCardEqual(s.GiftCard, other.GiftCard) {
		return false
	}
	return s.canonical() == other.canonical()
}

func (s AttributeSelection) canonical() string {
	entries := make([]string, 0, len(s.Attributes))
	for _, attr := range s.Attributes {
		if len(attr.Values) == 0 {
			continue
		}
		values := append([]string(nil), attr.Values...)
		sort.Strings(values)
		entries = append(entries, attr.AttributeID.String()+"="+strings.Join(values, "|"))
	}
	sort.Strings(entries)
	return strings.Join(entries, ";")
}

func cloneGiftCard(info *GiftCardInfo) *GiftCardInfo {
	if info == nil {
		return nil
	}
	copied := *info
	return &copied
}

func giftCardEqual(a, b *GiftCardInfo) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
