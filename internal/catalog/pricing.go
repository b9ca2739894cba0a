package catalog

import "github.com/fairyhunter13/storefront-service/internal/model"

// FromPrice is the "starting at" price of a product: the cheapest variation
// when any exist, the base price otherwise. The base price is not compared
// against the variation floor.
func FromPrice(p model.Product) int64 {
	vs := DecodeVariations(p.Variations)
	if len(vs) == 0 {
		return p.Price
	}
	lowest := vs[0].Price
	for _, v := range vs[1:] {
		if v.Price < lowest {
			lowest = v.Price
		}
	}
	return lowest
}
