package models

import "github.com/golang-jwt/jwt/v5"

// Principal is the authenticated operator on whose behalf an operation runs.
type Principal struct {
	UserID   int64
	Username string
	Role     UserRole
}

// PrincipalFromUser builds the principal for a stored user.
func PrincipalFromUser(u *User) *Principal {
	if u == nil {
		return nil
	}
	return &Principal{UserID: u.ID, Username: u.Username, Role: u.Role}
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// SessionClaims is the payload of the signed web session cookie.
type SessionClaims struct {
	UserID   int64    `json:"uid"`
	Username string   `json:"usr"`
	Role     UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Principal extracts the principal carried by the claims.
func (c *SessionClaims) Principal() *Principal {
	return &Principal{UserID: c.UserID, Username: c.Username, Role: c.Role}
}
