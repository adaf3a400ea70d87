package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-admin/internal/models"
	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
)

// ModalityService handles modality use-cases.
type ModalityService struct {
	uow       UnitOfWork
	validator *validator.Validate
	logger    *zap.Logger
}

// NewModalityService constructs the modality service.
func NewModalityService(uow UnitOfWork, validate *validator.Validate, logger *zap.Logger) *ModalityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModalityService{uow: uow, validator: validate, logger: logger}
}

// Create registers a modality with a unique name.
func (s *ModalityService) Create(ctx context.Context, actor *models.Principal, req models.CreateModalityRequest) (*models.Modality, error) {
	if err := authorize(actor, models.RoleEditor); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid modality payload")
	}

	modality := &models.Modality{Name: req.Name, Category: models.OptionalString(req.Category)}
	err := s.uow.Do(ctx, func(repos Repositories) error {
		if err := ensureModalityNameFree(ctx, repos, modality.Name, 0); err != nil {
			return err
		}
		return repos.Modalities().Create(ctx, modality)
	})
	if err != nil {
		return nil, storeError(err, "failed to create modality")
	}
	s.logger.Info("modality created", zap.Int64("modality_id", modality.ID), zap.String("name", modality.Name))
	return modality, nil
}

// Get returns a modality by ID.
func (s *ModalityService) Get(ctx context.Context, actor *models.Principal, id int64) (*models.Modality, error) {
	if err := authorize(actor, models.RoleViewer); err != nil {
		return nil, err
	}
	var modality *models.Modality
	err := s.uow.Do(ctx, func(repos Repositories) error {
		var err error
		modality, err = repos.Modalities().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, lookupError(err, "modality not found", "failed to load modality")
	}
	return modality, nil
}

// GetByName returns a modality by its unique name.
func (s *ModalityService) GetByName(ctx context.Context, actor *models.Principal, name string) (*models.Modality, error) {
	if err := authorize(actor, models.RoleViewer); err != nil {
		return nil, err
	}
	var modality *models.Modality
	err := s.uow.Do(ctx, func(repos Repositories) error {
		var err error
		modality, err = repos.Modalities().FindByName(ctx, strings.TrimSpace(name))
		return err
	})
	if err != nil {
		return nil, lookupError(err, "modality not found", "failed to load modality")
	}
	return modality, nil
}

// List returns modalities ordered by name.
func (s *ModalityService) List(ctx context.Context, actor *models.Principal) ([]models.Modality, error) {
	if err := authorize(actor, models.RoleViewer); err != nil {
		return nil, err
	}
	var modalities []models.Modality
	err := s.uow.Do(ctx, func(repos Repositories) error {
		var err error
		modalities, err = repos.Modalities().List(ctx)
		return err
	})
	if err != nil {
		return nil, storeError(err, "failed to list modalities")
	}
	return modalities, nil
}

// Update applies the supplied fields.
func (s *ModalityService) Update(ctx context.Context, actor *models.Principal, id int64, req models.UpdateModalityRequest) (*models.Modality, error) {
	if err := authorize(actor, models.RoleEditor); err != nil {
		return nil, err
	}
	var modality *models.Modality
	err := s.uow.Do(ctx, func(repos Repositories) error {
		var err error
		modality, err = repos.Modalities().FindByID(ctx, id)
		if err != nil {
			return lookupError(err, "modality not found", "failed to load modality")
		}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return appErrors.Clone(appErrors.ErrValidation, "modality name cannot be empty")
			}
			if name != modality.Name {
				if err := ensureModalityNameFree(ctx, repos, name, modality.ID); err != nil {
					return err
				}
			}
			modality.Name = name
		}
		if req.Category != nil {
			modality.Category = models.OptionalString(*req.Category)
		}
		return repos.Modalities().Update(ctx, modality)
	})
	if err != nil {
		return nil, storeError(err, "failed to update modality")
	}
	s.logger.Info("modality updated", zap.Int64("modality_id", modality.ID))
	return modality, nil
}

// Delete removes a modality without coaches or enrollments.
func (s *ModalityService) Delete(ctx context.Context, actor *models.Principal, id int64) error {
	if err := authorize(actor, models.RoleAdmin); err != nil {
		return err
	}
	err := s.uow.Do(ctx, func(repos Repositories) error {
		if _, err := repos.Modalities().FindByID(ctx, id); err != nil {
			return lookupError(err, "modality not found", "failed to load modality")
		}
		coaches, enrollments, err := repos.Modalities().CountDependants(ctx, id)
		if err != nil {
			return err
		}
		if coaches > 0 || enrollments > 0 {
			return appErrors.Clone(appErrors.ErrReferential,
				fmt.Sprintf("modality still has %d coach(es) and %d enrollment(s)", coaches, enrollments))
		}
		return repos.Modalities().Delete(ctx, id)
	})
	if err != nil {
		return storeError(err, "failed to delete modality")
	}
	s.logger.Info("modality deleted", zap.Int64("modality_id", id))
	return nil
}

func ensureModalityNameFree(ctx context.Context, repos Repositories, name string, selfID int64) error {
	existing, err := repos.Modalities().FindByName(ctx, name)
	if err != nil {
		if isNoRows(err) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return appErrors.Clone(appErrors.ErrDuplicateKey, fmt.Sprintf("modality %q already exists", name))
	}
	return nil
}

func ensureModalityExists(ctx context.Context, repos Repositories, id int64) error {
	if _, err := repos.Modalities().FindByID(ctx, id); err != nil {
		if isNoRows(err) {
			return appErrors.Clone(appErrors.ErrReferential, fmt.Sprintf("modality %d does not exist", id))
		}
		return err
	}
	return nil
}
