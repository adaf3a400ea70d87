package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academy-admin/internal/models"
	"github.com/noah-isme/academy-admin/pkg/database"
)

const studentColumns = `s.id, s.full_name, s.birth_date, s.national_id, s.national_id_formatted, s.phone, s.guardian_name, s.grade, s.active, s.registered_at, s.academy_id`

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db sqlx.ExtContext
	sb sq.StatementBuilderType
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db sqlx.ExtContext) *StudentRepository {
	return &StudentRepository{db: db, sb: database.Builder(db.DriverName())}
}

// Create inserts a student and sets its ID.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.RegisteredAt.IsZero() {
		student.RegisteredAt = time.Now().UTC()
	}
	query := r.db.Rebind(`INSERT INTO students (full_name, birth_date, national_id, national_id_formatted, phone, guardian_name, grade, active, registered_at, academy_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	row := r.db.QueryRowxContext(ctx, query,
		student.FullName,
		student.BirthDate,
		student.NationalID,
		student.NationalIDFormatted,
		student.Phone,
		student.GuardianName,
		student.Grade,
		student.Active,
		student.RegisteredAt,
		student.AcademyID,
	)
	if err := row.Scan(&student.ID); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// FindByID returns a student or sql.ErrNoRows.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	return r.findOne(ctx, "find student by id", "s.id = ?", id)
}

// FindByNationalID looks a student up by the canonical 11-digit id.
func (r *StudentRepository) FindByNationalID(ctx context.Context, nationalID string) (*models.Student, error) {
	return r.findOne(ctx, "find student by national id", "s.national_id = ?", nationalID)
}

func (r *StudentRepository) findOne(ctx context.Context, op, where string, arg interface{}) (*models.Student, error) {
	query := r.db.Rebind(`SELECT ` + studentColumns + ` FROM students s WHERE ` + where)
	var student models.Student
	if err := sqlx.GetContext(ctx, r.db, &student, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &student, nil
}

// FindListItem returns the student joined with its academy name.
func (r *StudentRepository) FindListItem(ctx context.Context, id int64) (*models.StudentListItem, error) {
	query := r.db.Rebind(`SELECT ` + studentColumns + `, a.name AS academy_name
FROM students s JOIN academies a ON a.id = s.academy_id WHERE s.id = ?`)
	var item models.StudentListItem
	if err := sqlx.GetContext(ctx, r.db, &item, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student detail: %w", err)
	}
	return &item, nil
}

// List returns students matching the filter ordered by name.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentListItem, error) {
	builder := r.sb.Select(studentColumns, "a.name AS academy_name").
		From("students s").
		Join("academies a ON a.id = s.academy_id").
		OrderBy("s.full_name", "s.id")

	if filter.AcademyID != nil {
		builder = builder.Where(sq.Eq{"s.academy_id": *filter.AcademyID})
	}
	if filter.Active != nil {
		builder = builder.Where(sq.Eq{"s.active": *filter.Active})
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		builder = builder.Where(sq.Or{
			sq.Like{"LOWER(s.full_name)": pattern},
			sq.Like{"s.national_id": pattern},
		})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list students query: %w", err)
	}

	var students []models.StudentListItem
	if err := sqlx.SelectContext(ctx, r.db, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// Update overwrites every mutable column.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	query := r.db.Rebind(`UPDATE students SET full_name = ?, birth_date = ?, national_id = ?, national_id_formatted = ?, phone = ?, guardian_name = ?, grade = ?, active = ?, academy_id = ?
WHERE id = ?`)
	_, err := r.db.ExecContext(ctx, query,
		student.FullName,
		student.BirthDate,
		student.NationalID,
		student.NationalIDFormatted,
		student.Phone,
		student.GuardianName,
		student.Grade,
		student.Active,
		student.AcademyID,
		student.ID,
	)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// SetActive toggles the soft-delete flag.
func (r *StudentRepository) SetActive(ctx context.Context, id int64, active bool) error {
	query := r.db.Rebind(`UPDATE students SET active = ? WHERE id = ?`)
	return execAffecting(ctx, r.db, "set student active", query, active, id)
}

// Delete removes the student row. Enrollments must be removed first.
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	query := r.db.Rebind(`DELETE FROM students WHERE id = ?`)
	return execAffecting(ctx, r.db, "delete student", query, id)
}

// Count returns the number of stored students.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, `SELECT COUNT(*) FROM students`); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return total, nil
}
