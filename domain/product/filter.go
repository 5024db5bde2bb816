package product

import (
	"sort"
	"strings"
)

// CategoryAll is the sentinel meaning "no category filter". An empty
// category behaves the same way.
const CategoryAll = "all"

// PriceRange is an inclusive price interval.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Criteria is a transient structured filter over a product list. The zero
// value filters nothing.
type Criteria struct {
	Category    string      `json:"category"`
	PriceRange  *PriceRange `json:"priceRange,omitempty"`
	InStockOnly bool        `json:"inStockOnly"`
}

// ApplyFilters narrows products to the visible subset. Stages are applied
// sequentially: category, price range, stock flag, then free-text search
// against name or description. Each stage is an independent predicate, so
// the result is always a subset of the input and reapplying the same
// criteria is a no-op. The input slice is never mutated.
func ApplyFilters(products []Product, criteria Criteria, searchTerm string) []Product {
	filtered := products

	if criteria.Category != "" && !strings.EqualFold(criteria.Category, CategoryAll) {
		filtered = filter(filtered, func(p Product) bool {
			return strings.EqualFold(p.Category, criteria.Category)
		})
	}

	if criteria.PriceRange != nil {
		lo, hi := criteria.PriceRange.Min, criteria.PriceRange.Max
		filtered = filter(filtered, func(p Product) bool {
			return p.Price >= lo && p.Price <= hi
		})
	}

	if criteria.InStockOnly {
		filtered = filter(filtered, func(p Product) bool {
			return p.InStock
		})
	}

	if searchTerm != "" {
		term := strings.ToLower(searchTerm)
		filtered = filter(filtered, func(p Product) bool {
			return strings.Contains(strings.ToLower(p.Name), term) ||
				strings.Contains(strings.ToLower(p.Description), term)
		})
	}

	return filtered
}

func filter(products []Product, keep func(Product) bool) []Product {
	result := make([]Product, 0, len(products))
	for _, p := range products {
		if keep(p) {
			result = append(result, p)
		}
	}
	return result
}

// SortKey selects a product ordering.
type SortKey string

const (
	// SortPriceLow orders by ascending price.
	SortPriceLow SortKey = "price-low"
	// SortPriceHigh orders by descending price.
	SortPriceHigh SortKey = "price-high"
	// SortRating orders by descending rating.
	SortRating SortKey = "rating"
	// SortName orders lexicographically by name.
	SortName SortKey = "name"
)

// SortProducts returns a new slice ordered by the given key. The sort is
// stable for equal keys and the input is never mutated. An unknown key
// returns the products in their original order.
func SortProducts(products []Product, key SortKey) []Product {
	sorted := make([]Product, len(products))
	copy(sorted, products)

	switch key {
	case SortPriceLow:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Price < sorted[j].Price
		})
	case SortPriceHigh:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Price > sorted[j].Price
		})
	case SortRating:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Rating > sorted[j].Rating
		})
	case SortName:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Name < sorted[j].Name
		})
	}

	return sorted
}
