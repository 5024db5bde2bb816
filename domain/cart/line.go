package cart

// Line is one product's quantity entry within the cart. Name, price and
// image are a snapshot taken when the product was added; they are not
// re-synced with later catalog changes.
type Line struct {
	ProductID int     `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
}

// Subtotal returns price times quantity for this line.
func (l Line) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

// Snapshot is the add-time product capture used to open a new line.
type Snapshot struct {
	ProductID int     `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
}
