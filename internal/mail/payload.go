// Package mail builds and sends the order confirmation email.
package mail

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/storefront-service/internal/model"
)

// Item is one line of the confirmation.
type Item struct {
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	Price          int64  `json:"price"`
	VariationLabel string `json:"variationLabel,omitempty"`
}

// ShippingAddress is the postal part of the order snapshot.
type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Payload is the structured order summary handed to the email function.
type Payload struct {
	OrderID         string          `json:"orderId"`
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	CustomerPhone   string          `json:"customerPhone"`
	Items           []Item          `json:"items"`
	ShippingMethod  string          `json:"shippingMethod"`
	ShippingFee     int64           `json:"shippingFee"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	SpecialRequest  string          `json:"specialRequest,omitempty"`
	Subtotal        int64           `json:"subtotal"`
	Shipping        int64           `json:"shipping"`
	Total           int64           `json:"total"`
}

// NewPayload maps a stored order to the email payload.
func NewPayload(o model.Order, customer model.Identity) Payload {
	a := o.Address
	p := Payload{
		OrderID:        o.ID,
		CustomerName:   strings.TrimSpace(a.FirstName + " " + a.LastName),
		CustomerEmail:  customer.Email,
		CustomerPhone:  a.Phone,
		Items:          make([]Item, 0, len(o.Items)),
		ShippingMethod: a.ShippingMethod,
		ShippingFee:    o.ShippingFee,
		ShippingAddress: ShippingAddress{
			Address:    a.Address,
			City:       a.City,
			PostalCode: a.PostalCode,
			Country:    a.Country,
		},
		PaymentMethod:  a.PaymentMethod,
		SpecialRequest: a.SpecialRequest,
		Subtotal:       o.Subtotal,
		Shipping:       o.ShippingFee,
		Total:          o.Total,
	}
	for _, it := range o.Items {
		item := Item{Name: it.ProductName, Quantity: it.Quantity, Price: it.UnitPrice}
		if it.VariationLabel != nil {
			item.VariationLabel = *it.VariationLabel
		}
		p.Items = append(p.Items, item)
	}
	return p
}

// ShippingMethodName is the customer-facing name of a shipping method code.
func ShippingMethodName(code string) string {
	switch code {
	case "postage":
		return "Postage"
	case "home_delivery":
		return "Home Delivery"
	case "pickup_pereybere":
		return "Pickup at Pereybere"
	default:
		return code
	}
}

// PaymentMethodName is the customer-facing name of a payment method code.
func PaymentMethodName(code string) string {
	switch code {
	case "juice":
		return "Juice (Bank Transfer/QR)"
	case "cod", "cash_on_delivery":
		return "Cash on Delivery"
	default:
		return code
	}
}

// FormatMoney renders minor units as "Rs 1,234.00".
func FormatMoney(minor int64) string {
	s := decimal.New(minor, -2).Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	sign := ""
	if minor < 0 {
		sign = "-"
	}
	return sign + "Rs " + b.String() + "." + frac
}
