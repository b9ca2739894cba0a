// Package catalog reads and maintains the product catalog: variation decoding,
// display pricing and admin writes.
package catalog

import (
	"encoding/json"
	"math"

	"github.com/fairyhunter13/storefront-service/internal/model"
)

// ParseVariations normalizes a decoded JSON value into variations. Anything
// that is not an array yields nil. Elements without a string label, a string
// sku and a numeric price are dropped; a non-numeric quantity becomes nil.
func ParseVariations(raw any) []model.Variation {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]model.Variation, 0, len(items))
	for _, it := range items {
		obj, ok := it.(map[string]any)
		if !ok {
			continue
		}
		label, ok := obj["label"].(string)
		if !ok {
			continue
		}
		sku, ok := obj["sku"].(string)
		if !ok {
			continue
		}
		price, ok := integer(obj["price"], math.MinInt64, math.MaxInt64)
		if !ok {
			continue
		}
		v := model.Variation{Label: label, SKU: sku, Price: price}
		if q, ok := integer(obj["quantity"], math.MinInt, math.MaxInt); ok {
			n := int(q)
			v.Quantity = &n
		}
		out = append(out, v)
	}
	return out
}

// DecodeVariations parses the persisted JSON form of a variation list.
// Malformed JSON is treated like an absent list.
func DecodeVariations(data []byte) []model.Variation {
	if len(data) == 0 {
		return nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	return ParseVariations(raw)
}

// EncodeVariations is the inverse of DecodeVariations for validated input.
func EncodeVariations(vs []model.Variation) (json.RawMessage, error) {
	if len(vs) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(vs)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// FindVariation returns the variation of p with the given sku.
func FindVariation(p model.Product, sku string) (model.Variation, bool) {
	for _, v := range DecodeVariations(p.Variations) {
		if v.SKU == sku {
			return v, true
		}
	}
	return model.Variation{}, false
}

// integer rounds a numeric value and rejects it when it falls outside
// [lo, hi], where converting would not be well defined.
func integer(v any, lo, hi int64) (int64, bool) {
	f, ok := number(v)
	if !ok {
		return 0, false
	}
	r := math.Round(f)
	if r < float64(lo) || r >= float64(hi) {
		return 0, false
	}
	return int64(r), true
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
