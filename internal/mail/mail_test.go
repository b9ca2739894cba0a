package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/storefront-service/internal/model"
)

func sampleOrder() (model.Order, model.Identity) {
	label := "250g"
	return model.Order{
		ID:          "order-1",
		UserID:      "u1",
		Status:      model.StatusPending,
		Subtotal:    42000,
		ShippingFee: 6000,
		Total:       48000,
		Address: model.Address{
			FirstName: "Ada", LastName: "Lovelace", Phone: "5555", Address: "Royal Road",
			City: "Pereybere", PostalCode: "30546", Country: "Mauritius",
			SpecialRequest: "Ring <twice>", ShippingMethod: "postage", PaymentMethod: "juice",
		},
		Items: []model.OrderItem{
			{ProductName: "Coffee beans", Quantity: 2, UnitPrice: 21000, VariationLabel: &label},
		},
		CreatedAt: time.Now(),
	}, model.Identity{ID: "u1", Email: "ada@example.com"}
}

func TestMethodNames(t *testing.T) {
	assert.Equal(t, "Postage", ShippingMethodName("postage"))
	assert.Equal(t, "Home Delivery", ShippingMethodName("home_delivery"))
	assert.Equal(t, "Pickup at Pereybere", ShippingMethodName("pickup_pereybere"))
	assert.Equal(t, "Juice (Bank Transfer/QR)", PaymentMethodName("juice"))
	assert.Equal(t, "Cash on Delivery", PaymentMethodName("cod"))
	assert.Equal(t, "Cash on Delivery", PaymentMethodName("cash_on_delivery"))
	assert.Equal(t, "other", PaymentMethodName("other"))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "Rs 480.00", FormatMoney(48000))
	assert.Equal(t, "Rs 0.05", FormatMoney(5))
	assert.Equal(t, "Rs 1,234,567.89", FormatMoney(123456789))
	assert.Equal(t, "-Rs 60.00", FormatMoney(-6000))
}

func TestNewPayload(t *testing.T) {
	o, who := sampleOrder()
	p := NewPayload(o, who)
	assert.Equal(t, "Ada Lovelace", p.CustomerName)
	assert.Equal(t, "ada@example.com", p.CustomerEmail)
	require.Len(t, p.Items, 1)
	assert.Equal(t, "250g", p.Items[0].VariationLabel)
	assert.Equal(t, int64(6000), p.Shipping)
	assert.Equal(t, "30546", p.ShippingAddress.PostalCode)
}

func TestRender(t *testing.T) {
	o, who := sampleOrder()
	html, err := Render(NewPayload(o, who))
	require.NoError(t, err)
	assert.Contains(t, html, "<!doctype html>")
	assert.Contains(t, html, "Coffee beans (250g)")
	assert.Contains(t, html, "Rs 420.00")
	assert.Contains(t, html, "Shipping (Postage): Rs 60.00")
	assert.Contains(t, html, "Total: Rs 480.00")
	assert.Contains(t, html, "Juice (Bank Transfer/QR)")
	assert.Contains(t, html, "Ring &lt;twice&gt;")
}

func TestRenderFreeShipping(t *testing.T) {
	o, who := sampleOrder()
	o.ShippingFee = 0
	o.Address.ShippingMethod = "pickup_pereybere"
	html, err := Render(NewPayload(o, who))
	require.NoError(t, err)
	assert.Contains(t, html, "Shipping (Pickup at Pereybere): Free")
}

func TestFunctionSender(t *testing.T) {
	var got Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer k" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	o, who := sampleOrder()
	msg, err := NewConfirmation(NewPayload(o, who))
	require.NoError(t, err)
	require.NoError(t, NewFunctionSender(srv.URL, "k").Send(context.Background(), msg))
	assert.Equal(t, "ada@example.com", got.To)
	assert.Equal(t, "order-1", got.Order.OrderID)
	assert.True(t, strings.HasPrefix(got.Subject, "Order confirmation"))

	err = NewFunctionSender(srv.URL, "wrong").Send(context.Background(), msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
