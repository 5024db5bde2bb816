package product

// Product represents a product in the storefront catalog. The backend
// assigns IDs; the client never invents them.
type Product struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"originalPrice,omitempty"`
	Image         string  `json:"image"`
	Category      string  `json:"category"`
	Rating        float64 `json:"rating"`
	InStock       bool    `json:"inStock"`
	Description   string  `json:"description"`
	StockQuantity int     `json:"stockQuantity"`
}

// Draft is a product payload without a backend-assigned ID, used for
// create requests.
type Draft struct {
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"originalPrice,omitempty"`
	Image         string  `json:"image"`
	Category      string  `json:"category"`
	Rating        float64 `json:"rating"`
	InStock       bool    `json:"inStock"`
	Description   string  `json:"description"`
	StockQuantity int     `json:"stockQuantity"`
}

// Patch is a partial product update. Nil fields are left unchanged.
type Patch struct {
	Name          *string  `json:"name,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Image         *string  `json:"image,omitempty"`
	Category      *string  `json:"category,omitempty"`
	Rating        *float64 `json:"rating,omitempty"`
	InStock       *bool    `json:"inStock,omitempty"`
	Description   *string  `json:"description,omitempty"`
	StockQuantity *int     `json:"stockQuantity,omitempty"`
}

// Apply returns a copy of p with the non-nil patch fields applied.
func (patch Patch) Apply(p Product) Product {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.OriginalPrice != nil {
		p.OriginalPrice = *patch.OriginalPrice
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Rating != nil {
		p.Rating = *patch.Rating
	}
	if patch.InStock != nil {
		p.InStock = *patch.InStock
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.StockQuantity != nil {
		p.StockQuantity = *patch.StockQuantity
	}
	return p
}

// Draft returns the product as a create/update payload.
func (p Product) Draft() Draft {
	return Draft{
		Name:          p.Name,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Image:         p.Image,
		Category:      p.Category,
		Rating:        p.Rating,
		InStock:       p.InStock,
		Description:   p.Description,
		StockQuantity: p.StockQuantity,
	}
}

// Purchasable reports whether the product may be offered for sale:
// it must be in stock and, when stock is tracked, have units left.
func (p Product) Purchasable() bool {
	if !p.InStock {
		return false
	}
	return p.StockQuantity > 0
}

// DiscountPercent derives the displayed discount from the original price.
// It is zero unless OriginalPrice is set and greater than Price.
func (p Product) DiscountPercent() int {
	if p.OriginalPrice <= p.Price || p.OriginalPrice <= 0 {
		return 0
	}
	return int((p.OriginalPrice - p.Price) / p.OriginalPrice * 100)
}

// Page is the pagination envelope returned by the backend's paginated and
// search endpoints.
type Page struct {
	Content       []Product `json:"content"`
	TotalElements int64     `json:"totalElements"`
	TotalPages    int       `json:"totalPages"`
	Size          int       `json:"size"`
	Number        int       `json:"number"`
	First         bool      `json:"first"`
	Last          bool      `json:"last"`
}
