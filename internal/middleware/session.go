package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-admin/internal/models"
)

// ContextPrincipalKey is the gin context key storing the logged-in principal.
const ContextPrincipalKey = "currentPrincipal"

// LoginPath is where unauthenticated requests are redirected.
const LoginPath = "/login"

type sessionValidator interface {
	Validate(ctx context.Context, token string) (*models.Principal, error)
}

// Session attaches the principal carried by the session cookie. Invalid or
// revoked cookies are cleared; the request continues unauthenticated.
func Session(sessions sessionValidator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}
		principal, err := sessions.Validate(c.Request.Context(), token)
		if err != nil {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cookieName, "", -1, "/", "", false, true)
			c.Next()
			return
		}
		c.Set(ContextPrincipalKey, principal)
		c.Next()
	}
}

// PrincipalFromContext returns the logged-in principal or nil.
func PrincipalFromContext(c *gin.Context) *models.Principal {
	value, exists := c.Get(ContextPrincipalKey)
	if !exists {
		return nil
	}
	principal, ok := value.(*models.Principal)
	if !ok {
		return nil
	}
	return principal
}
