package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShippingFee(t *testing.T) {
	cases := []struct {
		method   ShippingMethod
		subtotal int64
		want     int64
	}{
		{Postage, 42000, 6000},
		{Postage, 99999, 6000},
		{Postage, 100000, 0},
		{Postage, 150000, 0},
		{HomeDelivery, 90000, 15000},
		{HomeDelivery, 100000, 0},
		{PickupPereybere, 0, 0},
		{PickupPereybere, 90000, 0},
		{PickupPereybere, 150000, 0},
	}
	for _, tc := range cases {
		got, err := ShippingFee(tc.method, tc.subtotal)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%s @ %d", tc.method, tc.subtotal)
	}
	_, err := ShippingFee("drone", 1)
	assert.Error(t, err)
}

func TestPaymentEligibility(t *testing.T) {
	assert.True(t, PaymentAllowed(Postage, Juice))
	assert.False(t, PaymentAllowed(Postage, CashOnDelivery))
	assert.True(t, PaymentAllowed(HomeDelivery, CashOnDelivery))
	assert.True(t, PaymentAllowed(PickupPereybere, CashOnDelivery))
	assert.False(t, PaymentAllowed("drone", Juice))
	assert.Equal(t, []PaymentMethod{Juice}, AllowedPayments(Postage))
}

func TestSelectionTransitions(t *testing.T) {
	s := Selection{Shipping: HomeDelivery, Payment: CashOnDelivery}

	s = s.WithShipping(PickupPereybere)
	assert.Equal(t, CashOnDelivery, s.Payment, "legal payment survives a move away from postage")

	s = s.WithShipping(Postage)
	assert.Equal(t, Selection{Shipping: Postage, Payment: Juice}, s)

	_, err := s.WithPayment(CashOnDelivery)
	assert.Error(t, err)

	s = s.WithShipping(HomeDelivery)
	assert.Equal(t, Juice, s.Payment)
	s, err = s.WithPayment(CashOnDelivery)
	require.NoError(t, err)
	assert.Equal(t, CashOnDelivery, s.Payment)

	bogus := Selection{Shipping: HomeDelivery, Payment: "cheque"}.WithShipping(PickupPereybere)
	assert.Equal(t, Juice, bogus.Payment)
}

func TestParseMethods(t *testing.T) {
	m, err := ParseShippingMethod("home_delivery")
	require.NoError(t, err)
	assert.Equal(t, HomeDelivery, m)
	_, err = ParseShippingMethod("teleport")
	assert.Error(t, err)

	p, err := ParsePaymentMethod("cod")
	require.NoError(t, err)
	assert.Equal(t, CashOnDelivery, p)
	_, err = ParsePaymentMethod("card")
	assert.Error(t, err)
}
