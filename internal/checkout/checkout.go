package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/storefront-service/internal/cart"
	"github.com/fairyhunter13/storefront-service/internal/model"
	"github.com/fairyhunter13/storefront-service/internal/obs"
)

// OrderStore writes an order together with its items.
type OrderStore interface {
	CreateOrder(ctx context.Context, o model.Order) error
}

// CartClearer empties a user's cart once the order is stored.
type CartClearer interface {
	Clear(ctx context.Context, userID string) error
}

// Notifier is told about placed orders. Implementations must not block on
// delivery.
type Notifier interface {
	OrderPlaced(ctx context.Context, o model.Order, customer model.Identity)
}

// Quote is the price of a cart for one shipping method.
type Quote struct {
	Subtotal              int64 `json:"subtotal"`
	ShippingFee           int64 `json:"shipping_fee"`
	Total                 int64 `json:"total"`
	FreeShippingRemaining int64 `json:"free_shipping_remaining"`
}

// QuoteFor prices lines for shipping method m.
func QuoteFor(lines []model.CartLine, m ShippingMethod) (Quote, error) {
	subtotal := cart.Totals(lines).TotalPrice
	fee, err := ShippingFee(m, subtotal)
	if err != nil {
		return Quote{}, err
	}
	q := Quote{Subtotal: subtotal, ShippingFee: fee, Total: subtotal + fee}
	if subtotal < FreeShippingThreshold {
		q.FreeShippingRemaining = FreeShippingThreshold - subtotal
	}
	return q, nil
}

// PlaceOrderRequest carries everything PlaceOrder needs.
type PlaceOrderRequest struct {
	Customer model.Identity
	Lines    []model.CartLine
	Address  model.Address
	Shipping ShippingMethod
	Payment  PaymentMethod
}

// Service places orders.
type Service struct {
	orders   OrderStore
	cart     CartClearer
	notifier Notifier
	now      func() time.Time
}

// NewService constructs a Service. notifier may be nil.
func NewService(orders OrderStore, c CartClearer, notifier Notifier) *Service {
	return &Service{orders: orders, cart: c, notifier: notifier, now: time.Now}
}

// Validate checks the preconditions of PlaceOrder without writing anything.
func Validate(req PlaceOrderRequest) error {
	var verr model.ValidationError
	if len(req.Lines) == 0 {
		verr.Add("cart is empty")
	}
	a := req.Address
	for _, f := range []struct{ name, value string }{
		{"firstName", a.FirstName},
		{"lastName", a.LastName},
		{"phone", a.Phone},
		{"address", a.Address},
		{"city", a.City},
		{"country", a.Country},
	} {
		if strings.TrimSpace(f.value) == "" {
			verr.Add(f.name + " is required")
		}
	}
	if _, ok := shippingFees[req.Shipping]; !ok {
		verr.Add(fmt.Sprintf("unknown shipping method %q", req.Shipping))
	} else if !PaymentAllowed(req.Shipping, req.Payment) {
		verr.Add(fmt.Sprintf("payment method %q is not available for %s", req.Payment, req.Shipping))
	}
	return verr.Err()
}

// PlaceOrder stores one pending order and one item per cart line, priced from
// the lines' snapshots, then clears the cart. A failure to clear the cart is
// logged and does not undo the order.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (model.Order, error) {
	if err := Validate(req); err != nil {
		return model.Order{}, err
	}
	q, err := QuoteFor(req.Lines, req.Shipping)
	if err != nil {
		return model.Order{}, err
	}

	addr := req.Address
	addr.ShippingMethod = string(req.Shipping)
	addr.PaymentMethod = string(req.Payment)
	o := model.Order{
		ID:          uuid.NewString(),
		UserID:      req.Customer.ID,
		Status:      model.StatusPending,
		Subtotal:    q.Subtotal,
		ShippingFee: q.ShippingFee,
		Total:       q.Total,
		Address:     addr,
		Items:       make([]model.OrderItem, 0, len(req.Lines)),
		CreatedAt:   s.now().UTC(),
	}
	for _, l := range req.Lines {
		name := ""
		if l.Product != nil {
			name = l.Product.Name
		}
		o.Items = append(o.Items, model.OrderItem{
			ID:             uuid.NewString(),
			OrderID:        o.ID,
			ProductID:      l.ProductID,
			ProductName:    name,
			Quantity:       l.Quantity,
			UnitPrice:      l.Price(),
			VariationLabel: l.VariationLabel,
			VariationSKU:   l.VariationSKU,
		})
	}
	if err := s.orders.CreateOrder(ctx, o); err != nil {
		return model.Order{}, fmt.Errorf("creating order: %w", err)
	}
	obs.OrdersPlaced.Add(1)
	obs.Logger.Info("order_placed",
		"order_id", o.ID,
		"user_id", o.UserID,
		"items", len(o.Items),
		"total", o.Total,
		"shipping_method", addr.ShippingMethod,
		"payment_method", addr.PaymentMethod,
	)

	if err := s.cart.Clear(ctx, req.Customer.ID); err != nil {
		obs.Logger.Warn("cart_clear_after_order_failed", "order_id", o.ID, "user_id", o.UserID, "error", err)
	}
	if s.notifier != nil {
		s.notifier.OrderPlaced(ctx, o, req.Customer)
	}
	return o, nil
}
