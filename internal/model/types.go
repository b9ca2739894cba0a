// Package model defines domain types used by the service.
package model

import (
	"encoding/json"
	"time"
)

// Product is a catalog entry. Price is in minor currency units and is only
// purchasable directly when the product has no variations.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       int64           `json:"price"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url,omitempty"`
	InStock     bool            `json:"in_stock"`
	Featured    bool            `json:"featured"`
	PromoLabel  *string         `json:"promo_label,omitempty"`
	Variations  json.RawMessage `json:"-"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Variation is a purchasable option of a product, such as a pack size.
type Variation struct {
	Label    string `json:"label"`
	SKU      string `json:"sku"`
	Price    int64  `json:"price"`
	Quantity *int   `json:"quantity,omitempty"`
}

// Identity is the authenticated caller as reported by the auth service.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Profile holds the customer details used to prefill checkout.
type Profile struct {
	UserID     string    `json:"user_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address"`
	City       string    `json:"city"`
	PostalCode string    `json:"postal_code"`
	Country    string    `json:"country"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ProductFilter narrows catalog listings. Zero values disable a filter.
type ProductFilter struct {
	Category     string
	FeaturedOnly bool
	InStockOnly  bool
}
