package models

import (
	"fmt"
	"strings"
	"time"
)

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin  UserRole = "ADMIN"
	RoleEditor UserRole = "EDITOR"
	RoleViewer UserRole = "VIEWER"
)

// Roles lists every role from most to least privileged.
var Roles = []UserRole{RoleAdmin, RoleEditor, RoleViewer}

func (r UserRole) rank() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleEditor:
		return 2
	case RoleViewer:
		return 1
	default:
		return 0
	}
}

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	return r.rank() > 0
}

// Satisfies reports whether a holder of r may perform an action requiring
// required. ADMIN covers EDITOR which covers VIEWER.
func (r UserRole) Satisfies(required UserRole) bool {
	return r.Valid() && required.Valid() && r.rank() >= required.rank()
}

// ParseRole accepts a role name in any case.
func ParseRole(raw string) (UserRole, error) {
	role := UserRole(strings.ToUpper(strings.TrimSpace(raw)))
	if !role.Valid() {
		return "", fmt.Errorf("invalid role %q, expected ADMIN, EDITOR or VIEWER", raw)
	}
	return role, nil
}

// User represents an operator account stored in the users table.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CreateUserRequest registers a new operator. Role defaults to VIEWER.
type CreateUserRequest struct {
	Username string   `validate:"required,max=80"`
	Password string   `validate:"required"`
	Role     UserRole `validate:"omitempty,oneof=ADMIN EDITOR VIEWER"`
}

// ChangePasswordRequest updates the acting user's own password.
type ChangePasswordRequest struct {
	OldPassword string `validate:"required"`
	NewPassword string `validate:"required"`
}
