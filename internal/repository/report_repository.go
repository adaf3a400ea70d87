package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academy-admin/internal/models"
)

// ReportRepository runs the aggregate queries behind the reports menu.
type ReportRepository struct {
	db sqlx.ExtContext
}

// NewReportRepository constructs a ReportRepository.
func NewReportRepository(db sqlx.ExtContext) *ReportRepository {
	return &ReportRepository{db: db}
}

// ActiveStudentsByAcademy counts active students per academy. Academies
// without active students are not returned.
func (r *ReportRepository) ActiveStudentsByAcademy(ctx context.Context) ([]models.AcademyCount, error) {
	query := r.db.Rebind(`SELECT a.name AS academy_name, COUNT(s.id) AS total
FROM academies a
JOIN students s ON s.academy_id = a.id
WHERE s.active = ?
GROUP BY a.id, a.name
ORDER BY a.name`)
	var rows []models.AcademyCount
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, true); err != nil {
		return nil, fmt.Errorf("count active students by academy: %w", err)
	}
	return rows, nil
}

// GradeCounts counts active students' enrollments per modality and grade.
// The grade is returned raw; NULL and empty labels are merged by the caller.
func (r *ReportRepository) GradeCounts(ctx context.Context) ([]models.GradeCount, error) {
	query := r.db.Rebind(`SELECT m.id AS modality_id, m.name AS modality_name, e.grade AS grade, COUNT(e.id) AS total
FROM enrollments e
JOIN students s ON s.id = e.student_id
JOIN modalities m ON m.id = e.modality_id
WHERE s.active = ?
GROUP BY m.id, m.name, e.grade
ORDER BY m.name, e.grade`)
	var rows []models.GradeCount
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, true); err != nil {
		return nil, fmt.Errorf("count students by modality and grade: %w", err)
	}
	return rows, nil
}

// Roster lists active students enrolled in the modality with the grade.
// An empty grade matches enrollments without a grade.
func (r *ReportRepository) Roster(ctx context.Context, modalityID int64, grade string) ([]models.RosterEntry, error) {
	gradeClause := "e.grade = ?"
	args := []interface{}{modalityID, true}
	if grade == "" {
		gradeClause = "(e.grade IS NULL OR e.grade = '')"
	} else {
		args = append(args, grade)
	}

	query := r.db.Rebind(`SELECT s.full_name AS student_name, e.enrollment_number AS enrollment_number, a.name AS academy_name
FROM enrollments e
JOIN students s ON s.id = e.student_id
JOIN academies a ON a.id = s.academy_id
WHERE e.modality_id = ? AND s.active = ? AND ` + gradeClause + `
ORDER BY s.full_name`)
	var rows []models.RosterEntry
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list students by modality and grade: %w", err)
	}
	return rows, nil
}
