package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academy-admin/internal/models"
)

const enrollmentColumns = `e.id, e.enrollment_number, e.grade, e.enrolled_at, e.student_id, e.modality_id`

// EnrollmentRepository manages student to modality enrollments.
type EnrollmentRepository struct {
	db sqlx.ExtContext
}

// NewEnrollmentRepository constructs an EnrollmentRepository.
func NewEnrollmentRepository(db sqlx.ExtContext) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	query := r.db.Rebind(`INSERT INTO enrollments (enrollment_number, grade, enrolled_at, student_id, modality_id) VALUES (?, ?, ?, ?, ?) RETURNING id`)
	row := r.db.QueryRowxContext(ctx, query, enrollment.EnrollmentNumber, enrollment.Grade, enrollment.EnrolledAt, enrollment.StudentID, enrollment.ModalityID)
	if err := row.Scan(&enrollment.ID); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

func (r *EnrollmentRepository) FindByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	return r.findOne(ctx, "find enrollment by id", "e.id = ?", id)
}

func (r *EnrollmentRepository) FindByNumber(ctx context.Context, number string) (*models.Enrollment, error) {
	return r.findOne(ctx, "find enrollment by number", "e.enrollment_number = ?", number)
}

// FindByPair returns the enrollment of a student in a modality.
func (r *EnrollmentRepository) FindByPair(ctx context.Context, studentID, modalityID int64) (*models.Enrollment, error) {
	return r.findOne(ctx, "find enrollment by pair", "e.student_id = ? AND e.modality_id = ?", studentID, modalityID)
}

func (r *EnrollmentRepository) findOne(ctx context.Context, op, where string, args ...interface{}) (*models.Enrollment, error) {
	query := r.db.Rebind(`SELECT ` + enrollmentColumns + ` FROM enrollments e WHERE ` + where)
	var enrollment models.Enrollment
	if err := sqlx.GetContext(ctx, r.db, &enrollment, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &enrollment, nil
}

// ListByStudent returns the student's enrollments with modality names.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.EnrollmentDetail, error) {
	query := r.db.Rebind(`SELECT ` + enrollmentColumns + `, s.full_name AS student_name, m.name AS modality_name
FROM enrollments e
JOIN students s ON s.id = e.student_id
JOIN modalities m ON m.id = e.modality_id
WHERE e.student_id = ?
ORDER BY m.name`)
	var enrollments []models.EnrollmentDetail
	if err := sqlx.SelectContext(ctx, r.db, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list enrollments by student: %w", err)
	}
	return enrollments, nil
}

// UpdateGrade sets the grade label; nil clears it.
func (r *EnrollmentRepository) UpdateGrade(ctx context.Context, id int64, grade *string) error {
	query := r.db.Rebind(`UPDATE enrollments SET grade = ? WHERE id = ?`)
	return execAffecting(ctx, r.db, "update enrollment grade", query, grade, id)
}

func (r *EnrollmentRepository) Delete(ctx context.Context, id int64) error {
	query := r.db.Rebind(`DELETE FROM enrollments WHERE id = ?`)
	return execAffecting(ctx, r.db, "delete enrollment", query, id)
}

// DeleteByStudent removes every enrollment of the student and returns how many were removed.
func (r *EnrollmentRepository) DeleteByStudent(ctx context.Context, studentID int64) (int64, error) {
	query := r.db.Rebind(`DELETE FROM enrollments WHERE student_id = ?`)
	res, err := r.db.ExecContext(ctx, query, studentID)
	if err != nil {
		return 0, fmt.Errorf("delete enrollments by student: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete enrollments by student rows affected: %w", err)
	}
	return removed, nil
}
