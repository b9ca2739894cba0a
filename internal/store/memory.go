package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fairyhunter13/storefront-service/internal/model"
)

type cartKey struct {
	userID    string
	productID string
	sku       string
}

// Memory is an in-process store guarded by a single RWMutex. It honours the
// same merge and uniqueness rules as SQL.
type Memory struct {
	mu       sync.RWMutex
	products map[string]model.Product
	lines    map[string]model.CartLine
	byKey    map[cartKey]string
	orders   map[string]model.Order
	profiles map[string]model.Profile
	admin    string
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		products: make(map[string]model.Product),
		lines:    make(map[string]model.CartLine),
		byKey:    make(map[cartKey]string),
		orders:   make(map[string]model.Order),
		profiles: make(map[string]model.Profile),
	}
}

// Ping always succeeds.
func (s *Memory) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Memory) Close() error { return nil }

func (s *Memory) ListProducts(_ context.Context, f model.ProductFilter) ([]model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Product{}
	for _, p := range s.products {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.FeaturedOnly && !p.Featured {
			continue
		}
		if f.InStockOnly && !p.InStock {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Memory) GetProduct(_ context.Context, id string) (model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return model.Product{}, model.ErrNotFound
	}
	return p, nil
}

func (s *Memory) InsertProduct(_ context.Context, p model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; ok {
		return ErrDuplicate
	}
	s.products[p.ID] = p
	return nil
}

func (s *Memory) UpdateProduct(_ context.Context, p model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.products[p.ID]
	if !ok {
		return model.ErrNotFound
	}
	p.CreatedAt = cur.CreatedAt
	s.products[p.ID] = p
	return nil
}

func (s *Memory) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return model.ErrNotFound
	}
	delete(s.products, id)
	for lid, l := range s.lines {
		if l.ProductID == id {
			s.deleteLineLocked(lid)
		}
	}
	return nil
}

func (s *Memory) UpsertCartLine(_ context.Context, line model.CartLine) (model.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[line.ProductID]
	if !ok {
		return model.CartLine{}, model.ErrNotFound
	}
	key := cartKey{line.UserID, line.ProductID, line.SKUKey()}
	if id, ok := s.byKey[key]; ok {
		cur := s.lines[id]
		cur.Quantity += line.Quantity
		s.lines[id] = cur
		return withProduct(cur, p), nil
	}
	line.Product = nil
	s.lines[line.ID] = line
	s.byKey[key] = line.ID
	return withProduct(line, p), nil
}

func (s *Memory) ListCartLines(_ context.Context, userID string) ([]model.CartLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.CartLine{}
	for _, l := range s.lines {
		if l.UserID != userID {
			continue
		}
		p, ok := s.products[l.ProductID]
		if !ok {
			continue
		}
		out = append(out, withProduct(l, p))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Memory) SetCartLineQuantity(_ context.Context, userID, lineID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lines[lineID]
	if !ok || l.UserID != userID {
		return model.ErrNotFound
	}
	l.Quantity = quantity
	s.lines[lineID] = l
	return nil
}

func (s *Memory) DeleteCartLine(_ context.Context, userID, lineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lines[lineID]
	if !ok || l.UserID != userID {
		return model.ErrNotFound
	}
	s.deleteLineLocked(lineID)
	return nil
}

func (s *Memory) DeleteCartLines(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, l := range s.lines {
		if l.UserID == userID {
			s.deleteLineLocked(id)
		}
	}
	return nil
}

func (s *Memory) deleteLineLocked(id string) {
	l := s.lines[id]
	delete(s.byKey, cartKey{l.UserID, l.ProductID, l.SKUKey()})
	delete(s.lines, id)
}

func withProduct(l model.CartLine, p model.Product) model.CartLine {
	l.Product = &p
	return l
}

func (s *Memory) CreateOrder(_ context.Context, o model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[o.ID]; ok {
		return ErrDuplicate
	}
	items := make([]model.OrderItem, len(o.Items))
	for i, it := range o.Items {
		it.OrderID = o.ID
		items[i] = it
	}
	o.Items = items
	s.orders[o.ID] = o
	return nil
}

func (s *Memory) ListOrders(_ context.Context, f model.OrderFilter) ([]model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Order{}
	for _, o := range s.orders {
		if f.UserID != "" && o.UserID != f.UserID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, copyOrder(o))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Memory) GetOrder(_ context.Context, id string) (model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return model.Order{}, model.ErrNotFound
	}
	return copyOrder(o), nil
}

func (s *Memory) UpdateOrderStatus(_ context.Context, id string, from, to model.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.Status != from {
		return model.ErrConflict
	}
	o.Status = to
	s.orders[id] = o
	return nil
}

func copyOrder(o model.Order) model.Order {
	o.Items = append([]model.OrderItem{}, o.Items...)
	return o
}

func (s *Memory) GetProfile(_ context.Context, userID string) (model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return model.Profile{}, model.ErrNotFound
	}
	return p, nil
}

func (s *Memory) UpsertProfile(_ context.Context, p model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserID] = p
	return nil
}

func (s *Memory) AdminUserID(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admin, nil
}

func (s *Memory) InsertAdmin(_ context.Context, userID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.admin != "" {
		return ErrDuplicate
	}
	s.admin = userID
	return nil
}
