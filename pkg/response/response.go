package response

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
)

// FlashCookie carries one-shot messages across a redirect.
const FlashCookie = "academia_flash"

const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// GenericErrorMessage is shown for errors whose details must not reach the browser.
const GenericErrorMessage = "Ocorreu um erro inesperado. Tente novamente."

// Flash is a message shown once on the next page.
type Flash struct {
	Kind    string
	Message string
}

// HTML renders a named template with no-store caching headers.
func HTML(c *gin.Context, status int, name string, data gin.H) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.HTML(status, name, data)
}

// SetFlash stores a message for the next request.
func SetFlash(c *gin.Context, kind, message string) {
	value := base64.RawURLEncoding.EncodeToString([]byte(kind + "|" + message))
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(FlashCookie, value, 60, "/", "", false, true)
}

// PopFlash returns and clears the pending message, if any.
func PopFlash(c *gin.Context) *Flash {
	value, err := c.Cookie(FlashCookie)
	if err != nil || value == "" {
		return nil
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(FlashCookie, "", -1, "/", "", false, true)
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	kind, message, ok := strings.Cut(string(raw), "|")
	if !ok {
		return nil
	}
	return &Flash{Kind: kind, Message: message}
}

// Redirect sends a 303 so POST forms are followed by a GET.
func Redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

// RedirectWithFlash sets a flash message and redirects.
func RedirectWithFlash(c *gin.Context, location, kind, message string) {
	SetFlash(c, kind, message)
	Redirect(c, location)
}

// ErrorMessage converts an error into text safe for display. Internal errors
// collapse into GenericErrorMessage.
func ErrorMessage(err error) string {
	appErr := appErrors.FromError(err)
	if appErr.Status >= http.StatusInternalServerError {
		return GenericErrorMessage
	}
	return appErr.Message
}

// Error records err on the context and redirects with an error flash.
func Error(c *gin.Context, location string, err error) {
	_ = c.Error(err)
	RedirectWithFlash(c, location, FlashError, ErrorMessage(err))
}

// Download streams a generated file as an attachment.
func Download(c *gin.Context, name, contentType string, data []byte) {
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, contentType, data)
}
