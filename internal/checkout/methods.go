// Package checkout prices a cart for a shipping method, enforces payment
// eligibility and turns a cart into an order.
package checkout

import (
	"fmt"
	"strings"
)

// ShippingMethod is how an order reaches the customer.
type ShippingMethod string

const (
	Postage         ShippingMethod = "postage"
	HomeDelivery    ShippingMethod = "home_delivery"
	PickupPereybere ShippingMethod = "pickup_pereybere"
)

// PaymentMethod is how an order is paid.
type PaymentMethod string

const (
	Juice          PaymentMethod = "juice"
	CashOnDelivery PaymentMethod = "cash_on_delivery"
)

// FreeShippingThreshold is the subtotal, in minor units, from which every
// shipping method is free.
const FreeShippingThreshold int64 = 100000

var shippingFees = map[ShippingMethod]int64{
	Postage:         6000,
	HomeDelivery:    15000,
	PickupPereybere: 0,
}

var allowedPayments = map[ShippingMethod][]PaymentMethod{
	Postage:         {Juice},
	HomeDelivery:    {Juice, CashOnDelivery},
	PickupPereybere: {Juice, CashOnDelivery},
}

// ParseShippingMethod validates a shipping method code.
func ParseShippingMethod(s string) (ShippingMethod, error) {
	m := ShippingMethod(strings.TrimSpace(s))
	if _, ok := shippingFees[m]; !ok {
		return "", fmt.Errorf("unknown shipping method %q", s)
	}
	return m, nil
}

// ParsePaymentMethod validates a payment method code. "cod" is accepted as
// an alias of cash_on_delivery.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch p := PaymentMethod(strings.TrimSpace(s)); p {
	case Juice, CashOnDelivery:
		return p, nil
	case "cod":
		return CashOnDelivery, nil
	default:
		return "", fmt.Errorf("unknown payment method %q", s)
	}
}

// ShippingFee returns the fee for m at the given subtotal.
func ShippingFee(m ShippingMethod, subtotal int64) (int64, error) {
	fee, ok := shippingFees[m]
	if !ok {
		return 0, fmt.Errorf("unknown shipping method %q", m)
	}
	if subtotal >= FreeShippingThreshold {
		return 0, nil
	}
	return fee, nil
}

// AllowedPayments lists the payment methods legal for m.
func AllowedPayments(m ShippingMethod) []PaymentMethod {
	return append([]PaymentMethod(nil), allowedPayments[m]...)
}

// PaymentAllowed reports whether p may be used with m. Cash on delivery is
// never allowed for postage.
func PaymentAllowed(m ShippingMethod, p PaymentMethod) bool {
	for _, ok := range allowedPayments[m] {
		if ok == p {
			return true
		}
	}
	return false
}

// Selection is the customer's current shipping and payment choice. Its
// methods never produce an illegal combination.
type Selection struct {
	Shipping ShippingMethod `json:"shippingMethod"`
	Payment  PaymentMethod  `json:"paymentMethod"`
}

// DefaultSelection is postage paid by juice.
func DefaultSelection() Selection {
	return Selection{Shipping: Postage, Payment: Juice}
}

// WithShipping switches the shipping method. Postage forces juice; any
// payment that becomes illegal resets to juice.
func (s Selection) WithShipping(m ShippingMethod) Selection {
	s.Shipping = m
	if m == Postage || !PaymentAllowed(m, s.Payment) {
		s.Payment = Juice
	}
	return s
}

// WithPayment switches the payment method, refusing illegal combinations.
func (s Selection) WithPayment(p PaymentMethod) (Selection, error) {
	if !PaymentAllowed(s.Shipping, p) {
		return s, fmt.Errorf("payment method %s is not available for %s", p, s.Shipping)
	}
	s.Payment = p
	return s, nil
}
