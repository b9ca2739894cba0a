package httpapi

import (
	"net/http"

	"github.com/fairyhunter13/storefront-service/internal/checkout"
	"github.com/fairyhunter13/storefront-service/internal/model"
)

type quoteRequest struct {
	ShippingMethod string `json:"shippingMethod"`
	PaymentMethod  string `json:"paymentMethod"`
}

type quoteResponse struct {
	checkout.Quote
	Selection       checkout.Selection       `json:"selection"`
	AllowedPayments []checkout.PaymentMethod `json:"allowedPayments"`
}

// selection resolves a requested method pair the way the checkout form
// does: switching shipping may reset payment, an illegal payment is refused.
func selection(shipping, payment string) (checkout.Selection, error) {
	sel := checkout.DefaultSelection()
	if shipping != "" {
		m, err := checkout.ParseShippingMethod(shipping)
		if err != nil {
			return sel, model.Invalid(err.Error())
		}
		sel = sel.WithShipping(m)
	}
	if payment != "" {
		p, err := checkout.ParsePaymentMethod(payment)
		if err != nil {
			return sel, model.Invalid(err.Error())
		}
		if sel, err = sel.WithPayment(p); err != nil {
			return sel, model.Invalid(err.Error())
		}
	}
	return sel, nil
}

func (a *App) quoteHandler(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sel, err := selection(req.ShippingMethod, req.PaymentMethod)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, _ := IdentityFromContext(r.Context())
	lines, err := a.Cart.Lines(r.Context(), id.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q, err := checkout.QuoteFor(lines, sel.Shipping)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quoteResponse{
		Quote:           q,
		Selection:       sel,
		AllowedPayments: checkout.AllowedPayments(sel.Shipping),
	})
}

func (a *App) placeOrderHandler(w http.ResponseWriter, r *http.Request) {
	if a.closing.Load() {
		WriteJSONError(w, http.StatusServiceUnavailable, "shutting_down", "")
		return
	}
	var addr model.Address
	if !decodeJSON(w, r, &addr) {
		return
	}
	shipping, err := checkout.ParseShippingMethod(addr.ShippingMethod)
	if err != nil {
		writeError(w, r, model.Invalid(err.Error()))
		return
	}
	payment, err := checkout.ParsePaymentMethod(addr.PaymentMethod)
	if err != nil {
		writeError(w, r, model.Invalid(err.Error()))
		return
	}
	id, _ := IdentityFromContext(r.Context())
	lines, err := a.Cart.Lines(r.Context(), id.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	o, err := a.Checkout.PlaceOrder(r.Context(), checkout.PlaceOrderRequest{
		Customer: id,
		Lines:    lines,
		Address:  addr,
		Shipping: shipping,
		Payment:  payment,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}
