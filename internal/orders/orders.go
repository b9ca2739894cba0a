// Package orders reads placed orders and moves them through fulfilment.
package orders

import (
	"context"
	"fmt"

	"github.com/fairyhunter13/storefront-service/internal/model"
	"github.com/fairyhunter13/storefront-service/internal/obs"
)

// Store reads orders and updates their status.
type Store interface {
	ListOrders(ctx context.Context, f model.OrderFilter) ([]model.Order, error)
	GetOrder(ctx context.Context, id string) (model.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, from, to model.OrderStatus) error
}

type Service struct {
	store Store
}

func NewService(st Store) *Service { return &Service{store: st} }

// List returns the user's orders, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]model.Order, error) {
	os, err := s.store.ListOrders(ctx, model.OrderFilter{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return os, nil
}

// Get returns one of the user's orders. Orders of other users are reported
// as not found.
func (s *Service) Get(ctx context.Context, userID, orderID string) (model.Order, error) {
	o, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return model.Order{}, fmt.Errorf("getting order %s: %w", orderID, err)
	}
	if o.UserID != userID {
		return model.Order{}, fmt.Errorf("getting order %s: %w", orderID, model.ErrNotFound)
	}
	return o, nil
}

// ListAll returns every order, optionally only those in status.
func (s *Service) ListAll(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	if status != "" && !status.Valid() {
		return nil, model.Invalid(fmt.Sprintf("unknown status %q", status))
	}
	os, err := s.store.ListOrders(ctx, model.OrderFilter{Status: status})
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return os, nil
}

// UpdateStatus moves an order forward along
// pending → processing → shipped → delivered.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, next model.OrderStatus) (model.Order, error) {
	if !next.Valid() {
		return model.Order{}, model.Invalid(fmt.Sprintf("unknown status %q", next))
	}
	o, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return model.Order{}, fmt.Errorf("getting order %s: %w", orderID, err)
	}
	if !o.Status.CanAdvanceTo(next) {
		return model.Order{}, model.Invalid(fmt.Sprintf("cannot move order from %s to %s", o.Status, next))
	}
	if err := s.store.UpdateOrderStatus(ctx, orderID, o.Status, next); err != nil {
		return model.Order{}, fmt.Errorf("updating order %s: %w", orderID, err)
	}
	obs.Logger.Info("order_status_changed", "order_id", orderID, "from", o.Status, "to", next)
	o.Status = next
	return o, nil
}
