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

const academyColumns = `id, name, address, responsible, created_at`

// AcademyRepository manages persistence for academies.
type AcademyRepository struct {
	db sqlx.ExtContext
}

// NewAcademyRepository constructs an AcademyRepository.
func NewAcademyRepository(db sqlx.ExtContext) *AcademyRepository {
	return &AcademyRepository{db: db}
}

// Create inserts the academy and sets its ID.
func (r *AcademyRepository) Create(ctx context.Context, academy *models.Academy) error {
	if academy.CreatedAt.IsZero() {
		academy.CreatedAt = time.Now().UTC()
	}
	query := r.db.Rebind(`INSERT INTO academies (name, address, responsible, created_at) VALUES (?, ?, ?, ?) RETURNING id`)
	if err := r.db.QueryRowxContext(ctx, query, academy.Name, academy.Address, academy.Responsible, academy.CreatedAt).Scan(&academy.ID); err != nil {
		return fmt.Errorf("create academy: %w", err)
	}
	return nil
}

// FindByID returns an academy or sql.ErrNoRows.
func (r *AcademyRepository) FindByID(ctx context.Context, id int64) (*models.Academy, error) {
	query := r.db.Rebind(`SELECT ` + academyColumns + ` FROM academies WHERE id = ?`)
	var academy models.Academy
	if err := sqlx.GetContext(ctx, r.db, &academy, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find academy by id: %w", err)
	}
	return &academy, nil
}

// FindByName returns an academy by its unique name or sql.ErrNoRows.
func (r *AcademyRepository) FindByName(ctx context.Context, name string) (*models.Academy, error) {
	query := r.db.Rebind(`SELECT ` + academyColumns + ` FROM academies WHERE name = ?`)
	var academy models.Academy
	if err := sqlx.GetContext(ctx, r.db, &academy, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find academy by name: %w", err)
	}
	return &academy, nil
}

// List returns every academy ordered by name.
func (r *AcademyRepository) List(ctx context.Context) ([]models.Academy, error) {
	const query = `SELECT ` + academyColumns + ` FROM academies ORDER BY name`
	var academies []models.Academy
	if err := sqlx.SelectContext(ctx, r.db, &academies, query); err != nil {
		return nil, fmt.Errorf("list academies: %w", err)
	}
	return academies, nil
}

// Update overwrites the mutable columns.
func (r *AcademyRepository) Update(ctx context.Context, academy *models.Academy) error {
	query := r.db.Rebind(`UPDATE academies SET name = ?, address = ?, responsible = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, academy.Name, academy.Address, academy.Responsible, academy.ID); err != nil {
		return fmt.Errorf("update academy: %w", err)
	}
	return nil
}

// Delete removes the academy. It returns sql.ErrNoRows when nothing was deleted.
func (r *AcademyRepository) Delete(ctx context.Context, id int64) error {
	query := r.db.Rebind(`DELETE FROM academies WHERE id = ?`)
	return execAffecting(ctx, r.db, "delete academy", query, id)
}

// CountDependants returns how many students and coaches reference the academy.
func (r *AcademyRepository) CountDependants(ctx context.Context, id int64) (students, coaches int, err error) {
	query := r.db.Rebind(`SELECT
	(SELECT COUNT(*) FROM students WHERE academy_id = ?) AS students,
	(SELECT COUNT(*) FROM coaches WHERE academy_id = ?) AS coaches`)
	var counts struct {
		Students int `db:"students"`
		Coaches  int `db:"coaches"`
	}
	if err := sqlx.GetContext(ctx, r.db, &counts, query, id, id); err != nil {
		return 0, 0, fmt.Errorf("count academy dependants: %w", err)
	}
	return counts.Students, counts.Coaches, nil
}

func execAffecting(ctx context.Context, db sqlx.ExecerContext, op, query string, args ...interface{}) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
