package model

import "time"

// CartLine is one (user, product, variation) entry of a cart. The variation
// fields and UnitPrice are copied when the line is created and are not
// refreshed from the catalog afterwards.
type CartLine struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	ProductID      string    `json:"product_id"`
	Quantity       int       `json:"quantity"`
	UnitPrice      int64     `json:"unit_price"`
	VariationLabel *string   `json:"variation_label,omitempty"`
	VariationSKU   *string   `json:"variation_sku,omitempty"`
	VariationPrice *int64    `json:"variation_price,omitempty"`
	Product        *Product  `json:"product,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Price returns the unit price charged for the line.
func (l CartLine) Price() int64 {
	if l.VariationPrice != nil {
		return *l.VariationPrice
	}
	return l.UnitPrice
}

// LineTotal is Price multiplied by Quantity.
func (l CartLine) LineTotal() int64 { return l.Price() * int64(l.Quantity) }

// SKUKey is the variation part of the merge key; empty when no variation is pinned.
func (l CartLine) SKUKey() string {
	if l.VariationSKU == nil {
		return ""
	}
	return *l.VariationSKU
}

// CartTotals summarizes a cart.
type CartTotals struct {
	TotalItems int   `json:"total_items"`
	TotalPrice int64 `json:"total_price"`
}
