package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/storefront-service/internal/model"
	"github.com/fairyhunter13/storefront-service/internal/obs"
)

// Store is the persistence the catalog needs.
type Store interface {
	ListProducts(ctx context.Context, f model.ProductFilter) ([]model.Product, error)
	GetProduct(ctx context.Context, id string) (model.Product, error)
	InsertProduct(ctx context.Context, p model.Product) error
	UpdateProduct(ctx context.Context, p model.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// Service serves catalog reads and admin writes.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService constructs a Service over st.
func NewService(st Store) *Service {
	return &Service{store: st, now: time.Now}
}

// List returns products matching f, newest first.
func (s *Service) List(ctx context.Context, f model.ProductFilter) ([]model.Product, error) {
	ps, err := s.store.ListProducts(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return ps, nil
}

// Get returns one product or model.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (model.Product, error) {
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return model.Product{}, fmt.Errorf("getting product %s: %w", id, err)
	}
	return p, nil
}

// Create validates in and inserts a new product.
func (s *Service) Create(ctx context.Context, in ProductInput) (model.Product, error) {
	p, err := s.build(in)
	if err != nil {
		return model.Product{}, err
	}
	p.ID = uuid.NewString()
	p.CreatedAt = s.now().UTC()
	if err := s.store.InsertProduct(ctx, p); err != nil {
		return model.Product{}, fmt.Errorf("inserting product: %w", err)
	}
	obs.Logger.Info("product_created", "product_id", p.ID, "variations", len(DecodeVariations(p.Variations)))
	return p, nil
}

// Update validates in and replaces the product's editable fields.
func (s *Service) Update(ctx context.Context, id string, in ProductInput) (model.Product, error) {
	p, err := s.build(in)
	if err != nil {
		return model.Product{}, err
	}
	cur, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return model.Product{}, fmt.Errorf("getting product %s: %w", id, err)
	}
	p.ID = cur.ID
	p.CreatedAt = cur.CreatedAt
	if err := s.store.UpdateProduct(ctx, p); err != nil {
		return model.Product{}, fmt.Errorf("updating product %s: %w", id, err)
	}
	obs.Logger.Info("product_updated", "product_id", p.ID)
	return p, nil
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("deleting product %s: %w", id, err)
	}
	obs.Logger.Info("product_deleted", "product_id", id)
	return nil
}

func (s *Service) build(in ProductInput) (model.Product, error) {
	vs, err := in.Validate()
	if err != nil {
		return model.Product{}, err
	}
	raw, err := EncodeVariations(vs)
	if err != nil {
		return model.Product{}, fmt.Errorf("encoding variations: %w", err)
	}
	return model.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		ImageURL:    in.ImageURL,
		InStock:     in.InStock,
		Featured:    in.Featured,
		PromoLabel:  in.PromoLabel,
		Variations:  raw,
	}, nil
}
