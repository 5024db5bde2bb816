package web

import (
	domain "github.com/example/storefront-demo/domain/cart"
	"github.com/example/storefront-demo/domain/product"
	"github.com/example/storefront-demo/domain/user"
	"github.com/example/storefront-demo/modules/notify"
)

// ErrorResponse is the error payload for all non-2xx responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HomeResponse is the home page payload.
type HomeResponse struct {
	Featured []product.Product `json:"featured"`
	Loading  bool              `json:"loading"`
	Error    string            `json:"error,omitempty"`
}

// ProductListResponse is the locally filtered catalog view.
type ProductListResponse struct {
	Products []product.Product `json:"products"`
	Total    int               `json:"total"`
}

// PageResponse is the remote-paginated catalog view.
type PageResponse struct {
	Products    []product.Product `json:"products"`
	TotalPages  int               `json:"totalPages"`
	CurrentPage int               `json:"currentPage"`
}

// CartResponse is the cart page payload. Shipping is a flat rate waived
// on empty carts.
type CartResponse struct {
	Items     []domain.Line `json:"items"`
	ItemCount int           `json:"itemCount"`
	Subtotal  float64       `json:"subtotal"`
	Shipping  float64       `json:"shipping"`
	Total     float64       `json:"total"`
}

// AddItemRequest is the add-to-cart payload.
type AddItemRequest struct {
	ProductID int `json:"productId"`
}

// QuantityRequest is the direct quantity update payload.
type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CheckoutResponse is the simulated checkout payload. No order is placed.
type CheckoutResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
}

// CredentialsRequest is the login payload.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the account registration payload.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is the authenticated session payload.
type SessionResponse struct {
	User    user.User `json:"user"`
	IsAdmin bool      `json:"isAdmin"`
}

// NotificationsResponse is the recent toast feed.
type NotificationsResponse struct {
	Notifications []notify.Notification `json:"notifications"`
}
