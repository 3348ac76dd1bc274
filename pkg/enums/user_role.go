package enums

import "slices"

// UserRole is carried in access tokens.
type UserRole string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleStaff    UserRole = "staff"
	UserRoleAdmin    UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	return slices.Contains([]UserRole{UserRoleCustomer, UserRoleStaff, UserRoleAdmin}, r)
}

// IsStaff reports whether the role may act on other customers' orders.
func (r UserRole) IsStaff() bool { return r == UserRoleStaff || r == UserRoleAdmin }
