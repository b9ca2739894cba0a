package httpapi

import (
	"expvar"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Use(WithRequestID, WithLogging)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	})

	r.Get("/healthz", app.healthHandler)
	r.Get("/debug/metrics", app.metricsHandler)
	r.Method(http.MethodGet, "/debug/vars", expvar.Handler())
	r.Get("/openapi.yaml", app.openapiHandler)
	r.Get("/docs", app.docsHandler)

	r.Get("/products", app.listProductsHandler)
	r.Get("/products/{id}", app.getProductHandler)

	r.Group(func(r chi.Router) {
		r.Use(app.RequireUser)

		r.Get("/cart", app.getCartHandler)
		r.Delete("/cart", app.clearCartHandler)
		r.Post("/cart/items", app.addItemHandler)
		r.Put("/cart/items/{lineID}", app.setQuantityHandler)
		r.Delete("/cart/items/{lineID}", app.removeItemHandler)

		r.Post("/checkout/quote", app.quoteHandler)
		r.Post("/checkout", app.placeOrderHandler)

		r.Get("/orders", app.listOrdersHandler)
		r.Get("/orders/{id}", app.getOrderHandler)

		r.Get("/profile", app.getProfileHandler)
		r.Put("/profile", app.putProfileHandler)

		r.Post("/admin/claim", app.claimAdminHandler)

		r.Group(func(r chi.Router) {
			r.Use(app.RequireAdmin)
			r.Post("/admin/products", app.createProductHandler)
			r.Put("/admin/products/{id}", app.updateProductHandler)
			r.Delete("/admin/products/{id}", app.deleteProductHandler)
			r.Get("/admin/orders", app.adminListOrdersHandler)
			r.Put("/admin/orders/{id}/status", app.adminUpdateStatusHandler)
		})
	})
	return r
}
