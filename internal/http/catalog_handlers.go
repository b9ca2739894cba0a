package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/storefront-service/internal/catalog"
	"github.com/fairyhunter13/storefront-service/internal/model"
)

// productView is a product as shoppers see it: variations parsed and the
// "from" price resolved.
type productView struct {
	model.Product
	Variations []model.Variation `json:"variations"`
	FromPrice  int64             `json:"from_price"`
}

func viewProduct(p model.Product) productView {
	return productView{
		Product:    p,
		Variations: catalog.DecodeVariations(p.Variations),
		FromPrice:  catalog.FromPrice(p),
	}
}

func (a *App) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := model.ProductFilter{Category: q.Get("category")}
	f.FeaturedOnly, _ = strconv.ParseBool(q.Get("featured"))
	f.InStockOnly, _ = strconv.ParseBool(q.Get("in_stock"))
	ps, err := a.Catalog.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]productView, 0, len(ps))
	for _, p := range ps {
		out = append(out, viewProduct(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *App) getProductHandler(w http.ResponseWriter, r *http.Request) {
	p, err := a.Catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewProduct(p))
}

func (a *App) createProductHandler(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProductInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := a.Catalog.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewProduct(p))
}

func (a *App) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProductInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := a.Catalog.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewProduct(p))
}

func (a *App) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.Catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
