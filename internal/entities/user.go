package entities

import "time"

// User is a dashboard account. Non-admin users belong to exactly one
// tenant and only see that tenant's data.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`      // "admin" or "user"
	TenantID     string    `json:"tenant_id"` // Empty for platform admins
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}
