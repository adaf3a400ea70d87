package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-admin/internal/models"
	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
	"github.com/noah-isme/academy-admin/pkg/export"
)

// ExportFile is a rendered report ready to be saved or downloaded.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ReportService computes the aggregate reports over active students.
type ReportService struct {
	uow      UnitOfWork
	renderer *export.Renderer
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// NewReportService constructs a ReportService.
func NewReportService(uow UnitOfWork, renderer *export.Renderer, metrics *MetricsService, logger *zap.Logger) *ReportService {
	if renderer == nil {
		renderer = export.NewRenderer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{uow: uow, renderer: renderer, metrics: metrics, logger: logger, now: time.Now}
}

// ActiveStudentsByAcademy returns active student counts ordered by academy name.
func (s *ReportService) ActiveStudentsByAcademy(ctx context.Context, actor *models.Principal) ([]models.AcademyCount, error) {
	if err := authorize(actor, models.RoleViewer); err != nil {
		return nil, err
	}
	var rows []models.AcademyCount
	err := s.uow.Do(ctx, func(repos Repositories) error {
		var err error
		rows, err = repos.Reports().ActiveStudentsByAcademy(ctx)
		return err
	})
	if err != nil {
		return nil, storeError(err, "failed to count active students")
	}
	return rows, nil
}

// CountActiveStudentsByAcademy maps academy name to its number of active students.
// Academies without active students are omitted.
func (s *ReportService) CountActiveStudentsByAcademy(ctx context.Context, actor *models.Principal) (map[string]int, error) {
	rows, err := s.ActiveStudentsByAcademy(ctx, actor)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.AcademyName] = row.Count
	}
	return counts, nil
}

// GradeBuckets returns enrollment counts per modality and grade for active
// students, ordered by modality and grade.
func (s *ReportService) GradeBuckets(ctx context.Context, actor *models.Principal) ([]models.GradeBucket, error) {
	if err := authorize(actor, models.RoleViewer); err != nil {
		return nil, err
	}
	var rows []models.GradeCount
	err := s.uow.Do(ctx, func(repos Repositories) error {
		var err error
		rows, err = repos.Reports().GradeCounts(ctx)
		return err
	})
	if err != nil {
		return nil, storeError(err, "failed to count students by grade")
	}

	type key struct {
		modality int64
		grade    string
	}
	index := make(map[key]int)
	buckets := make([]models.GradeBucket, 0, len(rows))
	for _, row := range rows {
		grade := strings.TrimSpace(models.StringValue(row.Grade))
		if grade == "" {
			grade = models.GradeNotInformed
		}
		k := key{modality: row.ModalityID, grade: grade}
		if i, ok := index[k]; ok {
			buckets[i].Count += row.Count
			continue
		}
		index[k] = len(buckets)
		buckets = append(buckets, models.GradeBucket{
			ModalityID:   row.ModalityID,
			ModalityName: row.ModalityName,
			Grade:        grade,
			Count:        row.Count,
		})
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		if buckets[i].ModalityName != buckets[j].ModalityName {
			return buckets[i].ModalityName < buckets[j].ModalityName
		}
		return buckets[i].Grade < buckets[j].Grade
	})
	return buckets, nil
}

// CountStudentsByModalityAndGrade maps modality id to grade to count.
func (s *ReportService) CountStudentsByModalityAndGrade(ctx context.Context, actor *models.Principal) (map[int64]map[string]int, error) {
	buckets, err := s.GradeBuckets(ctx, actor)
	if err != nil {
		return nil, err
	}
	counts := make(map[int64]map[string]int)
	for _, b := range buckets {
		if counts[b.ModalityID] == nil {
			counts[b.ModalityID] = make(map[string]int)
		}
		counts[b.ModalityID][b.Grade] = b.Count
	}
	return counts, nil
}

// ListStudentsByModalityAndGrade lists active students enrolled in the named
// modality with the given grade. GradeNotInformed or "" selects enrollments
// without a grade.
func (s *ReportService) ListStudentsByModalityAndGrade(ctx context.Context, actor *models.Principal, modalityName, grade string) ([]models.RosterEntry, error) {
	if err := authorize(actor, models.RoleViewer); err != nil {
		return nil, err
	}
	grade = strings.TrimSpace(grade)
	if grade == models.GradeNotInformed {
		grade = ""
	}
	var rows []models.RosterEntry
	err := s.uow.Do(ctx, func(repos Repositories) error {
		modality, err := repos.Modalities().FindByName(ctx, strings.TrimSpace(modalityName))
		if err != nil {
			return lookupError(err, fmt.Sprintf("modality %q not found", modalityName), "failed to load modality")
		}
		rows, err = repos.Reports().Roster(ctx, modality.ID, grade)
		return err
	})
	if err != nil {
		return nil, storeError(err, "failed to list students by modality and grade")
	}
	return rows, nil
}

// Export renders the requested report in the given format.
func (s *ReportService) Export(ctx context.Context, actor *models.Principal, req models.ReportRequest, format export.Format) (*ExportFile, error) {
	if err := authorize(actor, models.RoleViewer); err != nil {
		return nil, err
	}
	dataset, err := s.buildDataset(ctx, actor, req)
	if err != nil {
		return nil, err
	}
	data, err := s.renderer.Render(format, dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to render report")
	}
	s.metrics.RecordExport(string(req.Kind), string(format))

	file := &ExportFile{
		Name:        s.buildFilename(req.Kind, format),
		ContentType: format.ContentType(),
		Data:        data,
	}
	s.logger.Info("report exported",
		zap.String("report", string(req.Kind)),
		zap.String("format", string(format)),
		zap.String("file", file.Name),
	)
	return file, nil
}

func (s *ReportService) buildDataset(ctx context.Context, actor *models.Principal, req models.ReportRequest) (export.Dataset, error) {
	switch req.Kind {
	case models.ReportActiveByAcademy:
		rows, err := s.ActiveStudentsByAcademy(ctx, actor)
		if err != nil {
			return export.Dataset{}, err
		}
		data := export.Dataset{Title: "Alunos ativos por polo", Headers: []string{"Polo", "Alunos ativos"}}
		for _, row := range rows {
			data.Rows = append(data.Rows, map[string]string{
				"Polo":          row.AcademyName,
				"Alunos ativos": strconv.Itoa(row.Count),
			})
		}
		return data, nil
	case models.ReportGradeCounts:
		buckets, err := s.GradeBuckets(ctx, actor)
		if err != nil {
			return export.Dataset{}, err
		}
		data := export.Dataset{Title: "Alunos por modalidade e graduação", Headers: []string{"Modalidade", "Graduação", "Alunos"}}
		for _, b := range buckets {
			data.Rows = append(data.Rows, map[string]string{
				"Modalidade": b.ModalityName,
				"Graduação":  b.Grade,
				"Alunos":     strconv.Itoa(b.Count),
			})
		}
		return data, nil
	case models.ReportRoster:
		rows, err := s.ListStudentsByModalityAndGrade(ctx, actor, req.ModalityName, req.Grade)
		if err != nil {
			return export.Dataset{}, err
		}
		grade := req.Grade
		if strings.TrimSpace(grade) == "" {
			grade = models.GradeNotInformed
		}
		data := export.Dataset{
			Title:   fmt.Sprintf("Alunos de %s - %s", req.ModalityName, grade),
			Headers: []string{"Aluno", "Matrícula", "Polo"},
		}
		for _, row := range rows {
			data.Rows = append(data.Rows, map[string]string{
				"Aluno":     row.StudentName,
				"Matrícula": row.EnrollmentNumber,
				"Polo":      row.AcademyName,
			})
		}
		return data, nil
	default:
		return export.Dataset{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown report %q", req.Kind))
	}
}

func (s *ReportService) buildFilename(kind models.ReportKind, format export.Format) string {
	stamp := s.now().UTC().Format("20060102-150405")
	return fmt.Sprintf("%s-%s-%s.%s", kind, stamp, uuid.NewString()[:8], format)
}
