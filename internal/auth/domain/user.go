package domain

import "time"

type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string  // argon2id encoded
	Role         Role    // admin / manager / customer
	TenantID     *string // optional tenant association (nullable)
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
