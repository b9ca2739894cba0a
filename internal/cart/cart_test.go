package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/storefront-service/internal/catalog"
	"github.com/fairyhunter13/storefront-service/internal/model"
	"github.com/fairyhunter13/storefront-service/internal/store"
)

func setup(t *testing.T) (*Aggregator, *store.Memory, model.Product, model.Product) {
	t.Helper()
	st := store.NewMemory()
	p := model.Product{
		ID:         "beans",
		Name:       "Coffee beans",
		Price:      21000,
		Category:   "coffee",
		InStock:    true,
		Variations: json.RawMessage(`[{"label":"250g","sku":"B-250","price":21000},{"label":"1kg","sku":"B-1000","price":72000}]`),
		CreatedAt:  time.Now(),
	}
	plain := model.Product{
		ID:        "filter",
		Name:      "Paper filters",
		Price:     3000,
		Category:  "coffee",
		InStock:   true,
		CreatedAt: time.Now(),
	}
	require.NoError(t, st.InsertProduct(context.Background(), p))
	require.NoError(t, st.InsertProduct(context.Background(), plain))
	return New(st), st, p, plain
}

func TestAddTwiceMergesIntoOneLine(t *testing.T) {
	a, _, p, plain := setup(t)
	ctx := context.Background()
	small, _ := catalog.FindVariation(p, "B-250")
	for i := 0; i < 2; i++ {
		_, err := a.Add(ctx, "u1", p, 1, &small)
		require.NoError(t, err)
		_, err = a.Add(ctx, "u1", plain, 1, nil)
		require.NoError(t, err)
	}

	lines, err := a.Lines(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	for _, l := range lines {
		assert.Equal(t, 2, l.Quantity)
	}
}

func TestAddDistinguishesVariations(t *testing.T) {
	a, _, p, _ := setup(t)
	ctx := context.Background()
	small, ok := catalog.FindVariation(p, "B-250")
	require.True(t, ok)
	big, ok := catalog.FindVariation(p, "B-1000")
	require.True(t, ok)

	_, err := a.Add(ctx, "u1", p, 1, &small)
	require.NoError(t, err)
	_, err = a.Add(ctx, "u1", p, 2, &big)
	require.NoError(t, err)
	l, err := a.Add(ctx, "u1", p, 3, &big)
	require.NoError(t, err)
	assert.Equal(t, 5, l.Quantity)

	lines, err := a.Lines(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

func TestAddRequiresVariationWhenProductHasThem(t *testing.T) {
	a, st, _, _ := setup(t)
	ctx := context.Background()
	cheapBase := model.Product{
		ID:         "grinder",
		Name:       "Grinder",
		Price:      100,
		Category:   "gear",
		InStock:    true,
		Variations: json.RawMessage(`[{"label":"Manual","sku":"G-M","price":50000}]`),
		CreatedAt:  time.Now(),
	}
	require.NoError(t, st.InsertProduct(ctx, cheapBase))

	_, err := a.Add(ctx, "u1", cheapBase, 1, nil)
	var ve *model.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Error(), "variation sku is required")

	lines, err := a.Lines(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, lines)

	v, _ := catalog.FindVariation(cheapBase, "G-M")
	l, err := a.Add(ctx, "u1", cheapBase, 1, &v)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), l.LineTotal())
}

func TestAddSnapshotsPrice(t *testing.T) {
	a, st, p, plain := setup(t)
	ctx := context.Background()
	big, _ := catalog.FindVariation(p, "B-1000")
	_, err := a.Add(ctx, "u1", p, 1, &big)
	require.NoError(t, err)
	_, err = a.Add(ctx, "u1", plain, 1, nil)
	require.NoError(t, err)

	p.Variations = json.RawMessage(`[{"label":"1kg","sku":"B-1000","price":1}]`)
	require.NoError(t, st.UpdateProduct(ctx, p))
	plain.Price = 1
	require.NoError(t, st.UpdateProduct(ctx, plain))

	lines, err := a.Lines(ctx, "u1")
	require.NoError(t, err)
	tot := Totals(lines)
	assert.Equal(t, 2, tot.TotalItems)
	assert.Equal(t, int64(72000+3000), tot.TotalPrice)
}

func TestAddRejects(t *testing.T) {
	a, _, _, plain := setup(t)
	ctx := context.Background()
	_, err := a.Add(ctx, "u1", plain, 0, nil)
	var ve *model.ValidationError
	assert.True(t, errors.As(err, &ve))

	plain.InStock = false
	_, err = a.Add(ctx, "u1", plain, 1, nil)
	assert.ErrorIs(t, err, ErrOutOfStock)
}

func TestSetQuantity(t *testing.T) {
	a, _, _, plain := setup(t)
	ctx := context.Background()

	for _, q := range []int{0, -1} {
		l, err := a.Add(ctx, "u1", plain, 4, nil)
		require.NoError(t, err)
		require.NoError(t, a.SetQuantity(ctx, "u1", l.ID, q))
		lines, err := a.Lines(ctx, "u1")
		require.NoError(t, err)
		assert.Empty(t, lines, "quantity %d", q)
	}

	l, err := a.Add(ctx, "u1", plain, 7, nil)
	require.NoError(t, err)
	require.NoError(t, a.SetQuantity(ctx, "u1", l.ID, 3))
	lines, err := a.Lines(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)

	assert.ErrorIs(t, a.SetQuantity(ctx, "u2", l.ID, 3), model.ErrNotFound)
}

func TestRemoveAndClear(t *testing.T) {
	a, _, p, plain := setup(t)
	ctx := context.Background()
	big, _ := catalog.FindVariation(p, "B-1000")
	l1, err := a.Add(ctx, "u1", plain, 1, nil)
	require.NoError(t, err)
	_, err = a.Add(ctx, "u1", p, 1, &big)
	require.NoError(t, err)
	_, err = a.Add(ctx, "u2", plain, 1, nil)
	require.NoError(t, err)

	require.NoError(t, a.Remove(ctx, "u1", l1.ID))
	lines, err := a.Lines(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, lines, 1)
	assert.ErrorIs(t, a.Remove(ctx, "u1", l1.ID), model.ErrNotFound)

	require.NoError(t, a.Clear(ctx, "u1"))
	lines, err = a.Lines(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, lines)
	other, err := a.Lines(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestTotals(t *testing.T) {
	vp := int64(500)
	lines := []model.CartLine{
		{Quantity: 2, UnitPrice: 21000},
		{Quantity: 3, UnitPrice: 999, VariationPrice: &vp},
	}
	assert.Equal(t, model.CartTotals{TotalItems: 5, TotalPrice: 43500}, Totals(lines))
	assert.Equal(t, model.CartTotals{}, Totals(nil))
}
