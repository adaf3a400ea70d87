package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-admin/internal/middleware"
	"github.com/noah-isme/academy-admin/internal/models"
)

// Handlers groups the page handlers mounted by RegisterRoutes.
type Handlers struct {
	Auth     *AuthHandler
	Home     *HomeHandler
	Students *StudentHandler
	Reports  *ReportHandler
	Metrics  *MetricsHandler
}

// RegisterRoutes mounts every route of the web shell. The session middleware
// must already be installed on r.
func RegisterRoutes(r *gin.Engine, h Handlers) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/metrics", h.Metrics.Prometheus)

	r.GET("/login", h.Auth.LoginForm)
	r.POST("/login", h.Auth.Login)
	r.GET("/logout", h.Auth.Logout)

	viewer := r.Group("/", middleware.RequireRole(models.RoleViewer))
	viewer.GET("", h.Home.Index)
	viewer.GET("relatorios", h.Reports.Index)
	viewer.GET("relatorios/export", h.Reports.Export)

	editor := r.Group("/alunos", middleware.RequireRole(models.RoleEditor))
	editor.GET("", h.Students.List)
	editor.GET("/adicionar", h.Students.NewForm)
	editor.POST("/adicionar", h.Students.Create)
	editor.GET("/editar/:id", h.Students.EditForm)
	editor.POST("/editar/:id", h.Students.Update)

	admin := r.Group("/alunos", middleware.RequireRole(models.RoleAdmin))
	admin.POST("/remover/:id", h.Students.Delete)
}
