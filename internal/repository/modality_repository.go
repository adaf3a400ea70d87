package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academy-admin/internal/models"
)

// ModalityRepository manages persistence for modalities.
type ModalityRepository struct {
	db sqlx.ExtContext
}

// NewModalityRepository constructs a ModalityRepository.
func NewModalityRepository(db sqlx.ExtContext) *ModalityRepository {
	return &ModalityRepository{db: db}
}

func (r *ModalityRepository) Create(ctx context.Context, modality *models.Modality) error {
	query := r.db.Rebind(`INSERT INTO modalities (name, category) VALUES (?, ?) RETURNING id`)
	if err := r.db.QueryRowxContext(ctx, query, modality.Name, modality.Category).Scan(&modality.ID); err != nil {
		return fmt.Errorf("create modality: %w", err)
	}
	return nil
}

func (r *ModalityRepository) FindByID(ctx context.Context, id int64) (*models.Modality, error) {
	query := r.db.Rebind(`SELECT id, name, category FROM modalities WHERE id = ?`)
	var modality models.Modality
	if err := sqlx.GetContext(ctx, r.db, &modality, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find modality by id: %w", err)
	}
	return &modality, nil
}

func (r *ModalityRepository) FindByName(ctx context.Context, name string) (*models.Modality, error) {
	query := r.db.Rebind(`SELECT id, name, category FROM modalities WHERE name = ?`)
	var modality models.Modality
	if err := sqlx.GetContext(ctx, r.db, &modality, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find modality by name: %w", err)
	}
	return &modality, nil
}

func (r *ModalityRepository) List(ctx context.Context) ([]models.Modality, error) {
	var modalities []models.Modality
	if err := sqlx.SelectContext(ctx, r.db, &modalities, `SELECT id, name, category FROM modalities ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list modalities: %w", err)
	}
	return modalities, nil
}

func (r *ModalityRepository) Update(ctx context.Context, modality *models.Modality) error {
	query := r.db.Rebind(`UPDATE modalities SET name = ?, category = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, modality.Name, modality.Category, modality.ID); err != nil {
		return fmt.Errorf("update modality: %w", err)
	}
	return nil
}

func (r *ModalityRepository) Delete(ctx context.Context, id int64) error {
	query := r.db.Rebind(`DELETE FROM modalities WHERE id = ?`)
	return execAffecting(ctx, r.db, "delete modality", query, id)
}

// CountDependants returns how many coaches and enrollments reference the modality.
func (r *ModalityRepository) CountDependants(ctx context.Context, id int64) (coaches, enrollments int, err error) {
	query := r.db.Rebind(`SELECT
	(SELECT COUNT(*) FROM coaches WHERE modality_id = ?) AS coaches,
	(SELECT COUNT(*) FROM enrollments WHERE modality_id = ?) AS enrollments`)
	var counts struct {
		Coaches     int `db:"coaches"`
		Enrollments int `db:"enrollments"`
	}
	if err := sqlx.GetContext(ctx, r.db, &counts, query, id, id); err != nil {
		return 0, 0, fmt.Errorf("count modality dependants: %w", err)
	}
	return counts.Coaches, counts.Enrollments, nil
}
