package handler

import (
	"embed"
	"html/template"
	"time"

	"github.com/noah-isme/academy-admin/internal/models"
	"github.com/noah-isme/academy-admin/pkg/identifier"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.New("pages").Funcs(template.FuncMap{
		"deref": models.StringValue,
		"formatDate": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return identifier.FormatDate(*t)
		},
		"formatPhone": func(p *string) string {
			if p == nil {
				return ""
			}
			return identifier.FormatPhone(*p)
		},
		"roleAllows": func(p *models.Principal, role string) bool {
			return p != nil && p.Role.Satisfies(models.UserRole(role))
		},
	}).ParseFS(templateFS, "templates/*.html")
}
