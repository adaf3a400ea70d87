package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academy-admin/internal/models"
	"github.com/noah-isme/academy-admin/pkg/database"
)

const coachDetailColumns = `c.id, c.full_name, c.phone, c.certification, c.academy_id, c.modality_id, a.name AS academy_name, m.name AS modality_name`

// CoachRepository manages persistence for coaches.
type CoachRepository struct {
	db sqlx.ExtContext
	sb sq.StatementBuilderType
}

// NewCoachRepository constructs a CoachRepository.
func NewCoachRepository(db sqlx.ExtContext) *CoachRepository {
	return &CoachRepository{db: db, sb: database.Builder(db.DriverName())}
}

func (r *CoachRepository) Create(ctx context.Context, coach *models.Coach) error {
	query := r.db.Rebind(`INSERT INTO coaches (full_name, phone, certification, academy_id, modality_id) VALUES (?, ?, ?, ?, ?) RETURNING id`)
	row := r.db.QueryRowxContext(ctx, query, coach.FullName, coach.Phone, coach.Certification, coach.AcademyID, coach.ModalityID)
	if err := row.Scan(&coach.ID); err != nil {
		return fmt.Errorf("create coach: %w", err)
	}
	return nil
}

// FindByID returns the coach with academy and modality names.
func (r *CoachRepository) FindByID(ctx context.Context, id int64) (*models.CoachDetail, error) {
	query := r.db.Rebind(`SELECT ` + coachDetailColumns + `
FROM coaches c JOIN academies a ON a.id = c.academy_id JOIN modalities m ON m.id = c.modality_id
WHERE c.id = ?`)
	var coach models.CoachDetail
	if err := sqlx.GetContext(ctx, r.db, &coach, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find coach by id: %w", err)
	}
	return &coach, nil
}

// List returns coaches matching the filter ordered by name.
func (r *CoachRepository) List(ctx context.Context, filter models.CoachFilter) ([]models.CoachDetail, error) {
	builder := r.sb.Select(coachDetailColumns).
		From("coaches c").
		Join("academies a ON a.id = c.academy_id").
		Join("modalities m ON m.id = c.modality_id").
		OrderBy("c.full_name", "c.id")
	if filter.AcademyID != nil {
		builder = builder.Where(sq.Eq{"c.academy_id": *filter.AcademyID})
	}
	if filter.ModalityID != nil {
		builder = builder.Where(sq.Eq{"c.modality_id": *filter.ModalityID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list coaches query: %w", err)
	}
	var coaches []models.CoachDetail
	if err := sqlx.SelectContext(ctx, r.db, &coaches, query, args...); err != nil {
		return nil, fmt.Errorf("list coaches: %w", err)
	}
	return coaches, nil
}

func (r *CoachRepository) Update(ctx context.Context, coach *models.Coach) error {
	query := r.db.Rebind(`UPDATE coaches SET full_name = ?, phone = ?, certification = ?, academy_id = ?, modality_id = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, coach.FullName, coach.Phone, coach.Certification, coach.AcademyID, coach.ModalityID, coach.ID); err != nil {
		return fmt.Errorf("update coach: %w", err)
	}
	return nil
}

func (r *CoachRepository) Delete(ctx context.Context, id int64) error {
	query := r.db.Rebind(`DELETE FROM coaches WHERE id = ?`)
	return execAffecting(ctx, r.db, "delete coach", query, id)
}
