package account

import (
	"strings"
	"time"
)

// Role is the closed set of privilege levels. Every capability in the system
// is derived from it; there are no per-user permission overrides.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleDirector   Role = "director"
	RoleMethodist  Role = "methodist"
	RoleTeacher    Role = "teacher"
)

// AllRoles lists valid roles in descending privilege order.
var AllRoles = []Role{RoleSuperAdmin, RoleDirector, RoleMethodist, RoleTeacher}

// ParseRole normalises and validates a role string.
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimSpace(strings.ToLower(s)))
	for _, known := range AllRoles {
		if r == known {
			return r, nil
		}
	}
	return "", ErrInvalidRole
}

// Account represents a registered user: a teacher or a moderating role.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	School       string    `json:"school"`
	Subject      string    `json:"subject"`
	CategoryTier string    `json:"category_tier"`
	Experience   int       `json:"experience_years"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Name returns the display name, falling back to the username.
func (a *Account) Name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Username
}
