package backend

import (
	"context"
	"net/http"

	"github.com/example/storefront-demo/domain/user"
)

// LoginRequest is the credentials payload for login and admin login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the payload for account registration.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the backend's successful authentication payload.
type AuthResponse struct {
	Token string    `json:"token"`
	User  user.User `json:"user"`
}

// Login authenticates a customer.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	req := LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LoginAdmin authenticates against the admin login route. The returned
// role is the server's claim; callers enforce their own admin check on top
// of it.
func (c *Client) LoginAdmin(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	req := LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login-admin", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a new account. It returns the created user without
// authenticating the session.
func (c *Client) Register(ctx context.Context, name, email, password string) (*user.User, error) {
	var created user.User
	req := RegisterRequest{Name: name, Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
