package identity

import (
	"strings"

	"github.com/shopfront/backend/internal/domain/shared"
)

// Role is the closed set of account roles
type Role string

const (
	RoleCustomer Role = "Customer"
	RoleSeller   Role = "Seller"
	RoleAdmin    Role = "Admin"
)

// Roles lists every valid role
func Roles() []Role {
	return []Role{RoleCustomer, RoleSeller, RoleAdmin}
}

// ParseRole converts a string to a Role. Matching is case-insensitive and
// an empty string yields RoleCustomer.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "customer":
		return RoleCustomer, nil
	case "seller":
		return RoleSeller, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return "", shared.ErrInvalidInput.WithMessage("Unknown role: %s", s)
	}
}

// IsValid reports whether r is one of the defined roles
func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleSeller, RoleAdmin:
		return true
	default:
		return false
	}
}

// String returns the role name
func (r Role) String() string {
	return string(r)
}

// CanPlaceOrders reports whether the role may buy
func (r Role) CanPlaceOrders() bool {
	return r == RoleCustomer
}

// CanManageProducts reports whether the role may create products
func (r Role) CanManageProducts() bool {
	return r == RoleSeller || r == RoleAdmin
}

// IsSelfAssignable reports whether the role can be chosen at registration
func (r Role) IsSelfAssignable() bool {
	return r == RoleCustomer || r == RoleSeller
}
