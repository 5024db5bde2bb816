package user

// Role is the privilege tier attached to an authenticated user.
type Role string

const (
	// RoleCustomer is the default role for registered shoppers.
	RoleCustomer Role = "customer"
	// RoleAdmin carries all elevated privileges, including product
	// management.
	RoleAdmin Role = "admin"
)

// User represents an authenticated storefront identity.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  Role   `json:"role,omitempty"`
}

// Normalize defaults an absent role to customer. The backend may omit the
// role field; the client treats that as an ordinary shopper.
func (u User) Normalize() User {
	if u.Role == "" {
		u.Role = RoleCustomer
	}
	return u
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
