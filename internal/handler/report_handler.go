package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-admin/internal/models"
	"github.com/noah-isme/academy-admin/internal/service"
	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
	"github.com/noah-isme/academy-admin/pkg/export"
	"github.com/noah-isme/academy-admin/pkg/response"
)

const reportsPath = "/relatorios"

type reportReader interface {
	ActiveStudentsByAcademy(ctx context.Context, actor *models.Principal) ([]models.AcademyCount, error)
	GradeBuckets(ctx context.Context, actor *models.Principal) ([]models.GradeBucket, error)
	ListStudentsByModalityAndGrade(ctx context.Context, actor *models.Principal, modalityName, grade string) ([]models.RosterEntry, error)
	Export(ctx context.Context, actor *models.Principal, req models.ReportRequest, format export.Format) (*service.ExportFile, error)
}

// ReportHandler serves the report tables and downloads.
type ReportHandler struct {
	reports reportReader
}

// NewReportHandler constructs handler.
func NewReportHandler(reports reportReader) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Index renders the report tables. The roster is shown when a modality is queried.
func (h *ReportHandler) Index(c *gin.Context) {
	ctx := c.Request.Context()
	actor := principalFromContext(c)
	data := page(c, "Relatórios")

	byAcademy, err := h.reports.ActiveStudentsByAcademy(ctx, actor)
	if err != nil {
		response.Error(c, "/", err)
		return
	}
	byGrade, err := h.reports.GradeBuckets(ctx, actor)
	if err != nil {
		response.Error(c, "/", err)
		return
	}
	data["ByAcademy"] = byAcademy
	data["ByGrade"] = byGrade

	modality := strings.TrimSpace(c.Query("modality"))
	grade := strings.TrimSpace(c.Query("grade"))
	data["Modality"] = modality
	data["Grade"] = grade
	if modality != "" {
		roster, err := h.reports.ListStudentsByModalityAndGrade(ctx, actor, modality, grade)
		if err != nil {
			_ = c.Error(err)
			data["RosterError"] = response.ErrorMessage(err)
		}
		data["Roster"] = roster
	}
	response.HTML(c, http.StatusOK, "reports.html", data)
}

// Export downloads one report as CSV or PDF.
func (h *ReportHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, reportsPath, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "formato de exportação inválido"))
		return
	}
	req := models.ReportRequest{
		Kind:         models.ReportKind(c.Query("kind")),
		ModalityName: c.Query("modality"),
		Grade:        c.Query("grade"),
	}
	file, err := h.reports.Export(c.Request.Context(), principalFromContext(c), req, format)
	if err != nil {
		response.Error(c, reportsPath, err)
		return
	}
	response.Download(c, file.Name, file.ContentType, file.Data)
}
