package domain

import "time"

// Tenant is an organizational scope users and managers may belong to.
type Tenant struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
