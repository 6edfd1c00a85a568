package validators

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/cartforge/cartforge/pkg/enums"
	pkgerrors "github.com/cartforge/cartforge/pkg/errors"
)

// ParseQueryUUID reads a required uuid query parameter.
func ParseQueryUUID(r *http.Request, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter required").WithDetails(map[string]any{"field": key})
	}
	value, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a uuid").WithDetails(map[string]any{"field": key})
	}
	return value, nil
}

// ParseQueryCartType reads an optional cart type query parameter, defaulting
// to the shopping cart.
func ParseQueryCartType(r *http.Request, key string) (enums.CartType, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return enums.CartTypeShoppingCart, nil
	}
	cartType, err := enums.ParseCartType(raw)
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "unknown cart type").WithDetails(map[string]any{"field": key, "value": raw})
	}
	return cartType, nil
}
