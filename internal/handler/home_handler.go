package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-admin/internal/models"
	"github.com/noah-isme/academy-admin/pkg/response"
)

type academyReader interface {
	Get(ctx context.Context, actor *models.Principal, id int64) (*models.Academy, error)
	List(ctx context.Context, actor *models.Principal) ([]models.Academy, error)
}

// HomeHandler renders the landing page.
type HomeHandler struct {
	academies academyReader
}

// NewHomeHandler constructs HomeHandler.
func NewHomeHandler(academies academyReader) *HomeHandler {
	return &HomeHandler{academies: academies}
}

// Index lists the academies.
func (h *HomeHandler) Index(c *gin.Context) {
	data := page(c, "Academia")
	academies, err := h.academies.List(c.Request.Context(), principalFromContext(c))
	if err != nil {
		_ = c.Error(err)
		data["Flash"] = &response.Flash{Kind: response.FlashError, Message: response.ErrorMessage(err)}
	}
	data["Academies"] = academies
	response.HTML(c, http.StatusOK, "home.html", data)
}
