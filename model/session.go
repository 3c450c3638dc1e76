// model/session.go
package model

import "time"

// Role is the closed set of dashboard user roles.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleManager  Role = "manager"
	RoleStaff    Role = "staff"
	RoleDelivery Role = "delivery"
)

type User struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Role        Role      `json:"role"`
	Permissions []string  `json:"permissions"`
	StoreID     string    `json:"store_id"`
	BranchID    string    `json:"branch_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasPermission reports whether the user holds the named capability tag.
func (u User) HasPermission(permission string) bool {
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// FeatureMap carries per-store feature flags as they arrive from the API.
// Values are loosely typed upstream (true, false, 0, 1, null); normalize
// with access.ToBoolFlag before branching on them.
type FeatureMap map[string]any

// FeatureLimits carries numeric per-store capacity limits.
type FeatureLimits struct {
	MaxProducts int `json:"max_products,omitempty"`
	MaxBranches int `json:"max_branches,omitempty"`
	MaxUsers    int `json:"max_users,omitempty"`
}

type BillingStatus string

const (
	BillingActive   BillingStatus = "active"
	BillingTrial    BillingStatus = "trial"
	BillingPastDue  BillingStatus = "past_due"
	BillingCanceled BillingStatus = "canceled"
)

type Billing struct {
	Status    BillingStatus `json:"status"`
	PaidUntil time.Time     `json:"paid_until,omitempty"`
}

// StoreConfig is the per-store snapshot the session provider fetches
// alongside the current user.
type StoreConfig struct {
	StoreID  string        `json:"store_id"`
	Name     string        `json:"name"`
	Features FeatureMap    `json:"features"`
	Limits   FeatureLimits `json:"limits"`
	Billing  Billing       `json:"billing"`
}
