// Package cart maintains one line per (user, product, variation) and derives
// cart totals.
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/storefront-service/internal/catalog"
	"github.com/fairyhunter13/storefront-service/internal/model"
	"github.com/fairyhunter13/storefront-service/internal/obs"
)

// ErrOutOfStock is returned when adding a product flagged as not in stock.
var ErrOutOfStock = errors.New("product is out of stock")

// Store persists cart lines. UpsertCartLine must merge on
// (user, product, variation sku) atomically.
type Store interface {
	UpsertCartLine(ctx context.Context, line model.CartLine) (model.CartLine, error)
	ListCartLines(ctx context.Context, userID string) ([]model.CartLine, error)
	SetCartLineQuantity(ctx context.Context, userID, lineID string, quantity int) error
	DeleteCartLine(ctx context.Context, userID, lineID string) error
	DeleteCartLines(ctx context.Context, userID string) error
}

// Aggregator applies cart operations for authenticated users.
type Aggregator struct {
	store Store
	now   func() time.Time
}

// New constructs an Aggregator over st.
func New(st Store) *Aggregator {
	return &Aggregator{store: st, now: time.Now}
}

// Add puts quantity units of product, pinned to variation when it has any, into
// the user's cart. An existing line with the same key has its quantity
// increased instead of a second line being created. The price snapshot is
// taken only when the line is first created.
func (a *Aggregator) Add(ctx context.Context, userID string, product model.Product, quantity int, variation *model.Variation) (model.CartLine, error) {
	if quantity <= 0 {
		return model.CartLine{}, model.Invalid("quantity must be > 0")
	}
	if !product.InStock {
		return model.CartLine{}, ErrOutOfStock
	}
	// The base price is only purchasable when the product has no variations.
	if variation == nil && len(catalog.DecodeVariations(product.Variations)) > 0 {
		return model.CartLine{}, model.Invalid("a variation sku is required for this product")
	}
	line := model.CartLine{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProductID: product.ID,
		Quantity:  quantity,
		UnitPrice: product.Price,
		CreatedAt: a.now().UTC(),
	}
	if variation != nil {
		label, sku, price := variation.Label, variation.SKU, variation.Price
		line.VariationLabel = &label
		line.VariationSKU = &sku
		line.VariationPrice = &price
		line.UnitPrice = price
	}
	stored, err := a.store.UpsertCartLine(ctx, line)
	if err != nil {
		return model.CartLine{}, fmt.Errorf("adding to cart: %w", err)
	}
	obs.CartAdds.Add(1)
	obs.Logger.Info("cart_line_added",
		"user_id", userID,
		"product_id", product.ID,
		"sku", line.SKUKey(),
		"quantity", stored.Quantity,
	)
	return stored, nil
}

// SetQuantity sets a line's quantity to exactly quantity. Zero or negative
// removes the line.
func (a *Aggregator) SetQuantity(ctx context.Context, userID, lineID string, quantity int) error {
	if quantity <= 0 {
		return a.Remove(ctx, userID, lineID)
	}
	if err := a.store.SetCartLineQuantity(ctx, userID, lineID, quantity); err != nil {
		return fmt.Errorf("setting quantity of line %s: %w", lineID, err)
	}
	return nil
}

// Remove deletes one line.
func (a *Aggregator) Remove(ctx context.Context, userID, lineID string) error {
	if err := a.store.DeleteCartLine(ctx, userID, lineID); err != nil {
		return fmt.Errorf("removing line %s: %w", lineID, err)
	}
	return nil
}

// Clear deletes every line the user owns.
func (a *Aggregator) Clear(ctx context.Context, userID string) error {
	if err := a.store.DeleteCartLines(ctx, userID); err != nil {
		return fmt.Errorf("clearing cart: %w", err)
	}
	return nil
}

// Lines returns the user's cart, oldest line first.
func (a *Aggregator) Lines(ctx context.Context, userID string) ([]model.CartLine, error) {
	lines, err := a.store.ListCartLines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing cart: %w", err)
	}
	return lines, nil
}

// Totals sums quantities and snapshot prices.
func Totals(lines []model.CartLine) model.CartTotals {
	var t model.CartTotals
	for _, l := range lines {
		t.TotalItems += l.Quantity
		t.TotalPrice += l.LineTotal()
	}
	return t
}
