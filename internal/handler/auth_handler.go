package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-admin/internal/middleware"
	"github.com/noah-isme/academy-admin/internal/models"
	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
	"github.com/noah-isme/academy-admin/pkg/response"
)

type sessionManager interface {
	Login(ctx context.Context, req models.LoginRequest) (string, *models.Principal, error)
	Revoke(ctx context.Context, token string) error
	TTL() time.Duration
}

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler serves the login and logout pages.
type AuthHandler struct {
	sessions sessionManager
	cookie   CookieConfig
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(sessions sessionManager, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{sessions: sessions, cookie: cookie}
}

// LoginForm renders the login page.
func (h *AuthHandler) LoginForm(c *gin.Context) {
	if principalFromContext(c) != nil {
		response.Redirect(c, "/")
		return
	}
	response.HTML(c, http.StatusOK, "login.html", page(c, "Entrar"))
}

// Login authenticates the form credentials and sets the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderLoginError(c, req.Username, appErrors.Clone(appErrors.ErrValidation, "Informe usuário e senha."))
		return
	}
	token, _, err := h.sessions.Login(c.Request.Context(), req)
	if err != nil {
		switch appErrors.FromError(err).Code {
		case appErrors.ErrInvalidCredentials.Code:
			err = appErrors.Clone(appErrors.ErrInvalidCredentials, "Usuário ou senha inválidos.")
		case appErrors.ErrValidation.Code:
			err = appErrors.Clone(appErrors.ErrValidation, "Informe usuário e senha.")
		}
		h.renderLoginError(c, req.Username, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token, int(h.sessions.TTL().Seconds()), "/", "", h.cookie.Secure, true)
	response.Redirect(c, "/")
}

func (h *AuthHandler) renderLoginError(c *gin.Context, username string, err error) {
	_ = c.Error(err)
	data := page(c, "Entrar")
	data["Error"] = response.ErrorMessage(err)
	data["Username"] = username
	response.HTML(c, appErrors.FromError(err).Status, "login.html", data)
}

// Logout revokes the session and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(h.cookie.Name); err == nil && token != "" {
		if err := h.sessions.Revoke(c.Request.Context(), token); err != nil {
			_ = c.Error(err)
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	response.RedirectWithFlash(c, middleware.LoginPath, response.FlashSuccess, "Sessão encerrada.")
}
