package product

// SampleProducts returns the built-in sample catalog used as the degraded-
// mode fallback when the backend cannot be reached, and as the seed data
// for the embedded mock backend.
func SampleProducts() []Product {
	return []Product{
		{
			ID:            1,
			Name:          "Smartphone Pro Max",
			Price:         1299.99,
			OriginalPrice: 1499.99,
			Image:         "/placeholder.svg",
			Category:      "Electronics",
			Rating:        4.8,
			InStock:       true,
			Description:   "Latest flagship smartphone with advanced camera system",
			StockQuantity: 15,
		},
		{
			ID:            2,
			Name:          "Wireless Headphones",
			Price:         199.99,
			OriginalPrice: 249.99,
			Image:         "/placeholder.svg",
			Category:      "Electronics",
			Rating:        4.6,
			InStock:       true,
			Description:   "Premium noise-cancelling wireless headphones",
			StockQuantity: 25,
		},
		{
			ID:            3,
			Name:          "Designer Backpack",
			Price:         89.99,
			OriginalPrice: 119.99,
			Image:         "/placeholder.svg",
			Category:      "Fashion",
			Rating:        4.4,
			InStock:       true,
			Description:   "Stylish and functional backpack for everyday use",
			StockQuantity: 30,
		},
		{
			ID:            4,
			Name:          "Smart Watch",
			Price:         299.99,
			OriginalPrice: 399.99,
			Image:         "/placeholder.svg",
			Category:      "Electronics",
			Rating:        4.7,
			InStock:       false,
			Description:   "Advanced smartwatch with health monitoring",
			StockQuantity: 0,
		},
		{
			ID:            5,
			Name:          "Coffee Maker",
			Price:         149.99,
			OriginalPrice: 199.99,
			Image:         "/placeholder.svg",
			Category:      "Home",
			Rating:        4.5,
			InStock:       true,
			Description:   "Professional grade coffee maker for perfect brews",
			StockQuantity: 12,
		},
		{
			ID:            6,
			Name:          "Gaming Mouse",
			Price:         79.99,
			OriginalPrice: 99.99,
			Image:         "/placeholder.svg",
			Category:      "Electronics",
			Rating:        4.9,
			InStock:       true,
			Description:   "High-precision gaming mouse with RGB lighting",
			StockQuantity: 35,
		},
	}
}

// FeaturedCount is how many products the home page highlights.
const FeaturedCount = 3

// Featured returns the products highlighted on the home page: the first
// three of the given list.
func Featured(products []Product) []Product {
	if len(products) <= FeaturedCount {
		return products
	}
	return products[:FeaturedCount]
}
