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

// AcademyService handles academy use-cases.
type AcademyService struct {
	uow       UnitOfWork
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAcademyService constructs the academy service.
func NewAcademyService(uow UnitOfWork, validate *validator.Validate, logger *zap.Logger) *AcademyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AcademyService{uow: uow, validator: validate, logger: logger}
}

// Create registers a new academy with a unique name.
func (s *AcademyService) Create(ctx context.Context, actor *models.Principal, req models.CreateAcademyRequest) (*models.Academy, error) {
	if err := authorize(actor, models.RoleEditor); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid academy payload")
	}

	academy := &models.Academy{
		Name:        req.Name,
		Address:     models.OptionalString(req.Address),
		Responsible: models.OptionalString(req.Responsible),
	}
	err := s.uow.Do(ctx, func(repos Repositories) error {
		if err := ensureAcademyNameFree(ctx, repos, academy.Name, 0); err != nil {
			return err
		}
		return repos.Academies().Create(ctx, academy)
	})
	if err != nil {
		return nil, storeError(err, "failed to create academy")
	}
	s.logger.Info("academy created", zap.Int64("academy_id", academy.ID), zap.String("name", academy.Name))
	return academy, nil
}

// Get returns an academy by ID.
func (s *AcademyService) Get(ctx context.Context, actor *models.Principal, id int64) (*models.Academy, error) {
	if err := authorize(actor, models.RoleViewer); err != nil {
		return nil, err
	}
	var academy *models.Academy
	err := s.uow.Do(ctx, func(repos Repositories) error {
		var err error
		academy, err = repos.Academies().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, lookupError(err, "academy not found", "failed to load academy")
	}
	return academy, nil
}

// GetByName returns an academy by its unique name.
func (s *AcademyService) GetByName(ctx context.Context, actor *models.Principal, name string) (*models.Academy, error) {
	if err := authorize(actor, models.RoleViewer); err != nil {
		return nil, err
	}
	var academy *models.Academy
	err := s.uow.Do(ctx, func(repos Repositories) error {
		var err error
		academy, err = repos.Academies().FindByName(ctx, strings.TrimSpace(name))
		return err
	})
	if err != nil {
		return nil, lookupError(err, "academy not found", "failed to load academy")
	}
	return academy, nil
}

// List returns academies ordered by name.
func (s *AcademyService) List(ctx context.Context, actor *models.Principal) ([]models.Academy, error) {
	if err := authorize(actor, models.RoleViewer); err != nil {
		return nil, err
	}
	var academies []models.Academy
	err := s.uow.Do(ctx, func(repos Repositories) error {
		var err error
		academies, err = repos.Academies().List(ctx)
		return err
	})
	if err != nil {
		return nil, storeError(err, "failed to list academies")
	}
	return academies, nil
}

// Update applies the supplied fields.
func (s *AcademyService) Update(ctx context.Context, actor *models.Principal, id int64, req models.UpdateAcademyRequest) (*models.Academy, error) {
	if err := authorize(actor, models.RoleEditor); err != nil {
		return nil, err
	}
	var academy *models.Academy
	err := s.uow.Do(ctx, func(repos Repositories) error {
		var err error
		academy, err = repos.Academies().FindByID(ctx, id)
		if err != nil {
			return lookupError(err, "academy not found", "failed to load academy")
		}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return appErrors.Clone(appErrors.ErrValidation, "academy name cannot be empty")
			}
			if name != academy.Name {
				if err := ensureAcademyNameFree(ctx, repos, name, academy.ID); err != nil {
					return err
				}
			}
			academy.Name = name
		}
		if req.Address != nil {
			academy.Address = models.OptionalString(*req.Address)
		}
		if req.Responsible != nil {
			academy.Responsible = models.OptionalString(*req.Responsible)
		}
		return repos.Academies().Update(ctx, academy)
	})
	if err != nil {
		return nil, storeError(err, "failed to update academy")
	}
	s.logger.Info("academy updated", zap.Int64("academy_id", academy.ID))
	return academy, nil
}

// Delete removes an academy that no longer owns students or coaches.
func (s *AcademyService) Delete(ctx context.Context, actor *models.Principal, id int64) error {
	if err := authorize(actor, models.RoleAdmin); err != nil {
		return err
	}
	err := s.uow.Do(ctx, func(repos Repositories) error {
		if _, err := repos.Academies().FindByID(ctx, id); err != nil {
			return lookupError(err, "academy not found", "failed to load academy")
		}
		students, coaches, err := repos.Academies().CountDependants(ctx, id)
		if err != nil {
			return err
		}
		if students > 0 || coaches > 0 {
			return appErrors.Clone(appErrors.ErrReferential,
				fmt.Sprintf("academy still has %d student(s) and %d coach(es)", students, coaches))
		}
		return repos.Academies().Delete(ctx, id)
	})
	if err != nil {
		return storeError(err, "failed to delete academy")
	}
	s.logger.Info("academy deleted", zap.Int64("academy_id", id))
	return nil
}

func ensureAcademyNameFree(ctx context.Context, repos Repositories, name string, selfID int64) error {
	existing, err := repos.Academies().FindByName(ctx, name)
	if err != nil {
		if isNoRows(err) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return appErrors.Clone(appErrors.ErrDuplicateKey, fmt.Sprintf("academy %q already exists", name))
	}
	return nil
}
