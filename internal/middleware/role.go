package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-admin/internal/models"
)

// RequireRole lets the request through when the principal's role satisfies
// required. Anonymous requests are redirected to the login page.
func RequireRole(required models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := PrincipalFromContext(c)
		if principal == nil {
			c.Redirect(http.StatusSeeOther, LoginPath)
			c.Abort()
			return
		}
		if !principal.Role.Satisfies(required) {
			c.Data(http.StatusForbidden, "text/html; charset=utf-8",
				[]byte(fmt.Sprintf("<p>Acesso negado: perfil %s necessário.</p><p><a href=\"/\">Voltar</a></p>", required)))
			c.Abort()
			return
		}
		c.Next()
	}
}
