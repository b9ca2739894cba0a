package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fairyhunter13/storefront-service/internal/model"
)

// ProductInput is an admin create/update request.
type ProductInput struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       int64            `json:"price"`
	Category    string           `json:"category"`
	ImageURL    string           `json:"image_url"`
	InStock     bool             `json:"in_stock"`
	Featured    bool             `json:"featured"`
	PromoLabel  *string          `json:"promo_label"`
	Variations  []VariationInput `json:"variations"`
}

// VariationInput is one row of the admin variation editor.
type VariationInput struct {
	Label    string `json:"label"`
	SKU      string `json:"sku"`
	Price    int64  `json:"price"`
	Quantity *int   `json:"quantity"`
}

// Validate checks an admin product write and returns the variations in
// their strict form. Every problem is reported, nothing is written on error.
func (in ProductInput) Validate() ([]model.Variation, error) {
	var verr model.ValidationError
	if strings.TrimSpace(in.Name) == "" {
		verr.Add("name is required")
	}
	if strings.TrimSpace(in.Category) == "" {
		verr.Add("category is required")
	}
	if in.Price <= 0 {
		verr.Add("price must be > 0")
	}
	vs, err := ValidateVariations(in.Variations)
	if err != nil {
		var ve *model.ValidationError
		if errors.As(err, &ve) {
			verr.Problems = append(verr.Problems, ve.Problems...)
		}
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	return vs, nil
}

// ValidateVariations enforces label/sku presence, positive prices and
// quantities, and sku uniqueness within one product.
func ValidateVariations(in []VariationInput) ([]model.Variation, error) {
	var verr model.ValidationError
	seen := make(map[string]int, len(in))
	out := make([]model.Variation, 0, len(in))
	for i, v := range in {
		row := i + 1
		label := strings.TrimSpace(v.Label)
		sku := strings.TrimSpace(v.SKU)
		if label == "" {
			verr.Add(fmt.Sprintf("variation %d: label is required", row))
		}
		if sku == "" {
			verr.Add(fmt.Sprintf("variation %d: sku is required", row))
		} else if first, dup := seen[sku]; dup {
			verr.Add(fmt.Sprintf("variation %d: sku %q duplicates variation %d", row, sku, first))
		} else {
			seen[sku] = row
		}
		if v.Price <= 0 {
			verr.Add(fmt.Sprintf("variation %d: price must be > 0", row))
		}
		if v.Quantity != nil && *v.Quantity <= 0 {
			verr.Add(fmt.Sprintf("variation %d: quantity must be > 0", row))
		}
		out = append(out, model.Variation{Label: label, SKU: sku, Price: v.Price, Quantity: v.Quantity})
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
