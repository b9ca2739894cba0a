package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/storefront-service/internal/cart"
	"github.com/fairyhunter13/storefront-service/internal/model"
	"github.com/fairyhunter13/storefront-service/internal/store"
)

type recordingNotifier struct {
	mu     sync.Mutex
	orders []model.Order
}

func (n *recordingNotifier) OrderPlaced(_ context.Context, o model.Order, _ model.Identity) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, o)
}

type failingClearer struct{}

func (failingClearer) Clear(context.Context, string) error { return errors.New("backend down") }

func address() model.Address {
	return model.Address{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Phone:     "+230 5555 0000",
		Address:   "Royal Road",
		City:      "Pereybere",
		Country:   "Mauritius",
	}
}

var customer = model.Identity{ID: "u1", Email: "ada@example.com"}

func seed(t *testing.T, st *store.Memory, id string, price int64) model.Product {
	t.Helper()
	p := model.Product{ID: id, Name: "Product " + id, Price: price, Category: "c", InStock: true, CreatedAt: time.Now()}
	require.NoError(t, st.InsertProduct(context.Background(), p))
	return p
}

func TestQuoteFor(t *testing.T) {
	line := func(price int64, qty int) model.CartLine { return model.CartLine{UnitPrice: price, Quantity: qty} }

	q, err := QuoteFor([]model.CartLine{line(90000, 1)}, HomeDelivery)
	require.NoError(t, err)
	assert.Equal(t, Quote{Subtotal: 90000, ShippingFee: 15000, Total: 105000, FreeShippingRemaining: 10000}, q)

	q, err = QuoteFor([]model.CartLine{line(75000, 2)}, Postage)
	require.NoError(t, err)
	assert.Equal(t, int64(0), q.ShippingFee)
	assert.Equal(t, int64(150000), q.Total)

	q, err = QuoteFor([]model.CartLine{line(1000, 1)}, PickupPereybere)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), q.Total)
}

func TestPlaceOrderPostageScenario(t *testing.T) {
	st := store.NewMemory()
	agg := cart.New(st)
	ctx := context.Background()
	a := seed(t, st, "A", 21000)
	_, err := agg.Add(ctx, customer.ID, a, 2, nil)
	require.NoError(t, err)
	lines, err := agg.Lines(ctx, customer.ID)
	require.NoError(t, err)

	svc := NewService(st, agg, nil)
	o, err := svc.PlaceOrder(ctx, PlaceOrderRequest{
		Customer: customer, Lines: lines, Address: address(), Shipping: Postage, Payment: Juice,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42000), o.Subtotal)
	assert.Equal(t, int64(6000), o.ShippingFee)
	assert.Equal(t, int64(48000), o.Total)
	assert.Equal(t, model.StatusPending, o.Status)
	assert.Equal(t, "postage", o.Address.ShippingMethod)
	assert.Equal(t, "juice", o.Address.PaymentMethod)
}

func TestPlaceOrderThreeLines(t *testing.T) {
	st := store.NewMemory()
	agg := cart.New(st)
	notifier := &recordingNotifier{}
	ctx := context.Background()
	for i, price := range []int64{1000, 2000, 3000} {
		p := seed(t, st, fmt.Sprintf("p%d", i), price)
		_, err := agg.Add(ctx, customer.ID, p, i+1, nil)
		require.NoError(t, err)
	}
	lines, err := agg.Lines(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, lines, 3)

	// Live catalog prices change after the lines were added.
	for i := range lines {
		p := *lines[i].Product
		p.Price *= 10
		require.NoError(t, st.UpdateProduct(ctx, p))
	}

	svc := NewService(st, agg, notifier)
	o, err := svc.PlaceOrder(ctx, PlaceOrderRequest{
		Customer: customer, Lines: lines, Address: address(), Shipping: HomeDelivery, Payment: CashOnDelivery,
	})
	require.NoError(t, err)

	orders, err := st.ListOrders(ctx, model.OrderFilter{UserID: customer.ID})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Items, 3)
	for i, it := range orders[0].Items {
		assert.Equal(t, lines[i].Price(), it.UnitPrice)
		assert.Equal(t, lines[i].Quantity, it.Quantity)
		assert.Equal(t, lines[i].Product.Name, it.ProductName)
	}
	assert.Equal(t, int64(1000+4000+9000), o.Subtotal)
	assert.Equal(t, int64(15000), o.ShippingFee)

	after, err := agg.Lines(ctx, customer.ID)
	require.NoError(t, err)
	assert.Empty(t, after)
	require.Len(t, notifier.orders, 1)
	assert.Equal(t, o.ID, notifier.orders[0].ID)
}

func TestPlaceOrderRejectsBeforeWriting(t *testing.T) {
	st := store.NewMemory()
	agg := cart.New(st)
	ctx := context.Background()
	p := seed(t, st, "A", 1000)
	_, err := agg.Add(ctx, customer.ID, p, 1, nil)
	require.NoError(t, err)
	lines, err := agg.Lines(ctx, customer.ID)
	require.NoError(t, err)
	svc := NewService(st, agg, nil)

	cases := map[string]PlaceOrderRequest{
		"postage cod":   {Customer: customer, Lines: lines, Address: address(), Shipping: Postage, Payment: CashOnDelivery},
		"empty cart":    {Customer: customer, Address: address(), Shipping: Postage, Payment: Juice},
		"missing phone": {Customer: customer, Lines: lines, Address: model.Address{FirstName: "A", LastName: "B", Address: "x", City: "y", Country: "z"}, Shipping: Postage, Payment: Juice},
		"bad shipping":  {Customer: customer, Lines: lines, Address: address(), Shipping: "drone", Payment: Juice},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.PlaceOrder(ctx, req)
			var ve *model.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
		})
	}

	orders, err := st.ListOrders(ctx, model.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
	still, err := agg.Lines(ctx, customer.ID)
	require.NoError(t, err)
	assert.Len(t, still, 1)
}

func TestPlaceOrderSurvivesCartClearFailure(t *testing.T) {
	st := store.NewMemory()
	agg := cart.New(st)
	ctx := context.Background()
	p := seed(t, st, "A", 1000)
	_, err := agg.Add(ctx, customer.ID, p, 1, nil)
	require.NoError(t, err)
	lines, err := agg.Lines(ctx, customer.ID)
	require.NoError(t, err)

	svc := NewService(st, failingClearer{}, nil)
	o, err := svc.PlaceOrder(ctx, PlaceOrderRequest{
		Customer: customer, Lines: lines, Address: address(), Shipping: PickupPereybere, Payment: Juice,
	})
	require.NoError(t, err)
	got, err := st.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.Total, got.Total)
}
