package httpapi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/storefront-service/internal/cart"
	"github.com/fairyhunter13/storefront-service/internal/catalog"
	"github.com/fairyhunter13/storefront-service/internal/model"
)

type cartView struct {
	Lines  []model.CartLine `json:"lines"`
	Totals model.CartTotals `json:"totals"`
}

type addItemRequest struct {
	ProductID string  `json:"productId"`
	Quantity  *int    `json:"quantity"`
	SKU       *string `json:"sku"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (a *App) writeCart(w http.ResponseWriter, r *http.Request, status int) {
	id, _ := IdentityFromContext(r.Context())
	lines, err := a.Cart.Lines(r.Context(), id.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, cartView{Lines: lines, Totals: cart.Totals(lines)})
}

func (a *App) getCartHandler(w http.ResponseWriter, r *http.Request) {
	a.writeCart(w, r, http.StatusOK)
}

func (a *App) addItemHandler(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "productId is required")
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	p, err := a.Catalog.Get(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var variation *model.Variation
	if req.SKU != nil && *req.SKU != "" {
		v, ok := catalog.FindVariation(p, *req.SKU)
		if !ok {
			writeError(w, r, model.Invalid(fmt.Sprintf("product has no variation with sku %q", *req.SKU)))
			return
		}
		variation = &v
	}
	id, _ := IdentityFromContext(r.Context())
	if _, err := a.Cart.Add(r.Context(), id.ID, p, qty, variation); err != nil {
		writeError(w, r, err)
		return
	}
	a.writeCart(w, r, http.StatusCreated)
}

func (a *App) setQuantityHandler(w http.ResponseWriter, r *http.Request) {
	var req setQuantityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, _ := IdentityFromContext(r.Context())
	if err := a.Cart.SetQuantity(r.Context(), id.ID, chi.URLParam(r, "lineID"), req.Quantity); err != nil {
		writeError(w, r, err)
		return
	}
	a.writeCart(w, r, http.StatusOK)
}

func (a *App) removeItemHandler(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())
	if err := a.Cart.Remove(r.Context(), id.ID, chi.URLParam(r, "lineID")); err != nil {
		writeError(w, r, err)
		return
	}
	a.writeCart(w, r, http.StatusOK)
}

func (a *App) clearCartHandler(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())
	if err := a.Cart.Clear(r.Context(), id.ID); err != nil {
		writeError(w, r, err)
		return
	}
	a.writeCart(w, r, http.StatusOK)
}
