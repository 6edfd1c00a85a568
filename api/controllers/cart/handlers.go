package cart

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cartforge/cartforge/api/middleware"
	"github.com/cartforge/cartforge/api/responses"
	"github.com/cartforge/cartforge/api/validators"
	cartsvc "github.com/cartforge/cartforge/internal/cart"
	"github.com/cartforge/cartforge/pkg/config"
	"github.com/cartforge/cartforge/pkg/db/models"
	"github.com/cartforge/cartforge/pkg/enums"
	pkgerrors "github.com/cartforge/cartforge/pkg/errors"
	"github.com/cartforge/cartforge/pkg/logger"
)

type customerLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// AddItem handles one add-to-cart attempt. A rejected attempt maps to a
// STATE_CONFLICT envelope listing the violations; nothing was written.
func AddItem(svc cartsvc.Service, customers customerLoader, products productLoader, cartCfg config.CartConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		cartType, err := parseCartType(payload.CartType)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		customer, err := customers.FindByID(ctx, middleware.CustomerIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		product, err := products.FindByID(ctx, payload.ProductID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.AddToCart(ctx, &cartsvc.AddToCartRequest{
			Customer:          customer,
			StoreID:           middleware.StoreIDFromContext(ctx),
			CartType:          cartType,
			Product:           product,
			Quantity:          payload.Quantity,
			VariantQuery:      payload.variantQuery(),
			EnteredPriceCents: payload.EnteredPriceCents,
			AutoAddRequired:   cartCfg.AutoAddRequiredProducts,
			AutoExpandBundle:  cartCfg.AutoExpandBundleProducts,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if !result.Accepted {
			responses.WriteError(ctx, logg, w, rejectionError(result.Violations))
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, AddItemResponse{
			Accepted: true,
			ItemID:   result.ItemID,
		})
	}
}

// FetchCart returns the organized tree for the requested cart type.
func FetchCart(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		cartType, err := validators.ParseQueryCartType(r, "cart_type")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		items, err := svc.GetCartItems(ctx, middleware.CustomerIDFromContext(ctx), cartType, middleware.StoreIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(cartType.String(), items))
	}
}

// UpdateItemQuantity changes one line's quantity; quantity zero deletes the
// line and its bundle children.
func UpdateItemQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid item id"))
			return
		}

		var payload UpdateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.UpdateQuantity(ctx, middleware.CustomerIDFromContext(ctx), itemID, payload.Quantity)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if !result.Accepted {
			responses.WriteError(ctx, logg, w, rejectionError(result.Violations))
			return
		}

		responses.WriteSuccess(w, AddItemResponse{Accepted: true, ItemID: result.ItemID})
	}
}

// DeleteItem removes one line; its bundle children cascade with it.
func DeleteItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid item id"))
			return
		}

		if err := svc.DeleteItem(ctx, middleware.CustomerIDFromContext(ctx), itemID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

// CopyItem duplicates a top-level line into another cart type, typically
// moving a wishlist entry into the shopping cart.
func CopyItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid item id"))
			return
		}

		var payload CopyItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		cartType, err := parseCartType(payload.CartType)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.CopyCartItem(ctx, middleware.CustomerIDFromContext(ctx), itemID, cartType)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if !result.Accepted {
			responses.WriteError(ctx, logg, w, rejectionError(result.Violations))
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, AddItemResponse{Accepted: true, ItemID: result.ItemID})
	}
}

// DeleteItems removes a batch of lines; bundle children cascade with their
// parents.
func DeleteItems(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload DeleteItemsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		cartType, err := parseCartType(payload.CartType)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.DeleteItems(ctx, middleware.CustomerIDFromContext(ctx), cartType, middleware.StoreIDFromContext(ctx), payload.ItemIDs); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

// Migrate moves the caller's guest carts onto their signed-in identity.
func Migrate(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload MigrateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		toCustomerID := middleware.CustomerIDFromContext(ctx)
		if payload.FromCustomerID == toCustomerID {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cannot migrate a cart onto itself"))
			return
		}

		result, err := svc.MigrateCart(ctx, payload.FromCustomerID, toCustomerID, middleware.StoreIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, newMigrateSummary(result))
	}
}

// ValidateCheckout reports what still blocks checkout for the cart.
func ValidateCheckout(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		cartType, err := validators.ParseQueryCartType(r, "cart_type")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		violations, err := svc.ValidateCheckout(ctx, middleware.CustomerIDFromContext(ctx), cartType, middleware.StoreIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, CheckoutValidationResponse{
			Ready:      len(violations) == 0,
			Violations: violations,
		})
	}
}

func parseCartType(raw string) (enums.CartType, error) {
	if raw == "" {
		return enums.CartTypeShoppingCart, nil
	}
	cartType, err := enums.ParseCartType(raw)
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "unknown cart type")
	}
	return cartType, nil
}

func rejectionError(violations []string) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "cart change was rejected").
		WithDetails(map[string]any{"violations": violations})
}
