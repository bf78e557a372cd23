package domain

import "fmt"

// Role is the fixed set of roles gating access to routes.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleCustomer Role = "customer"
)

// ParseRole validates a role string against the fixed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleCustomer:
		return Role(s), nil
	default:
		return "", fmt.Errorf("domain: unknown role %q", s)
	}
}

func (r Role) String() string { return string(r) }
