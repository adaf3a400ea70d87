package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-admin/internal/models"
	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
	"github.com/noah-isme/academy-admin/pkg/identifier"
)

// CoachService handles coach use-cases.
type CoachService struct {
	uow       UnitOfWork
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCoachService constructs the coach service.
func NewCoachService(uow UnitOfWork, validate *validator.Validate, logger *zap.Logger) *CoachService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CoachService{uow: uow, validator: validate, logger: logger}
}

// Create registers a coach for an existing academy and modality.
func (s *CoachService) Create(ctx context.Context, actor *models.Principal, req models.CreateCoachRequest) (*models.CoachDetail, error) {
	if err := authorize(actor, models.RoleEditor); err != nil {
		return nil, err
	}
	req.FullName = strings.TrimSpace(req.FullName)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid coach payload")
	}

	coach := &models.Coach{
		FullName:      req.FullName,
		Phone:         models.OptionalString(identifier.NormalizePhone(req.Phone)),
		Certification: models.OptionalString(req.Certification),
		AcademyID:     req.AcademyID,
		ModalityID:    req.ModalityID,
	}
	var detail *models.CoachDetail
	err := s.uow.Do(ctx, func(repos Repositories) error {
		if err := ensureAcademyExists(ctx, repos, coach.AcademyID); err != nil {
			return err
		}
		if err := ensureModalityExists(ctx, repos, coach.ModalityID); err != nil {
			return err
		}
		if err := repos.Coaches().Create(ctx, coach); err != nil {
			return err
		}
		var err error
		detail, err = repos.Coaches().FindByID(ctx, coach.ID)
		return err
	})
	if err != nil {
		return nil, storeError(err, "failed to create coach")
	}
	s.logger.Info("coach created", zap.Int64("coach_id", coach.ID), zap.Int64("modality_id", coach.ModalityID))
	return detail, nil
}

// Get returns a coach with academy and modality names.
func (s *CoachService) Get(ctx context.Context, actor *models.Principal, id int64) (*models.CoachDetail, error) {
	if err := authorize(actor, models.RoleEditor); err != nil {
		return nil, err
	}
	var coach *models.CoachDetail
	err := s.uow.Do(ctx, func(repos Repositories) error {
		var err error
		coach, err = repos.Coaches().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, lookupError(err, "coach not found", "failed to load coach")
	}
	return coach, nil
}

// List returns coaches matching the filter ordered by name.
func (s *CoachService) List(ctx context.Context, actor *models.Principal, filter models.CoachFilter) ([]models.CoachDetail, error) {
	if err := authorize(actor, models.RoleEditor); err != nil {
		return nil, err
	}
	var coaches []models.CoachDetail
	err := s.uow.Do(ctx, func(repos Repositories) error {
		var err error
		coaches, err = repos.Coaches().List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, storeError(err, "failed to list coaches")
	}
	return coaches, nil
}

// Update applies the supplied fields.
func (s *CoachService) Update(ctx context.Context, actor *models.Principal, id int64, req models.UpdateCoachRequest) (*models.CoachDetail, error) {
	if err := authorize(actor, models.RoleEditor); err != nil {
		return nil, err
	}
	var detail *models.CoachDetail
	err := s.uow.Do(ctx, func(repos Repositories) error {
		current, err := repos.Coaches().FindByID(ctx, id)
		if err != nil {
			return lookupError(err, "coach not found", "failed to load coach")
		}
		coach := current.Coach
		if req.FullName != nil {
			name := strings.TrimSpace(*req.FullName)
			if name == "" {
				return appErrors.Clone(appErrors.ErrValidation, "coach name cannot be empty")
			}
			coach.FullName = name
		}
		if req.Phone != nil {
			coach.Phone = models.OptionalString(identifier.NormalizePhone(*req.Phone))
		}
		if req.Certification != nil {
			coach.Certification = models.OptionalString(*req.Certification)
		}
		if req.AcademyID != nil && *req.AcademyID != coach.AcademyID {
			if err := ensureAcademyExists(ctx, repos, *req.AcademyID); err != nil {
				return err
			}
			coach.AcademyID = *req.AcademyID
		}
		if req.ModalityID != nil && *req.ModalityID != coach.ModalityID {
			if err := ensureModalityExists(ctx, repos, *req.ModalityID); err != nil {
				return err
			}
			coach.ModalityID = *req.ModalityID
		}
		if err := repos.Coaches().Update(ctx, &coach); err != nil {
			return err
		}
		detail, err = repos.Coaches().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, storeError(err, "failed to update coach")
	}
	s.logger.Info("coach updated", zap.Int64("coach_id", id))
	return detail, nil
}

// Delete removes a coach.
func (s *CoachService) Delete(ctx context.Context, actor *models.Principal, id int64) error {
	if err := authorize(actor, models.RoleAdmin); err != nil {
		return err
	}
	err := s.uow.Do(ctx, func(repos Repositories) error {
		if err := repos.Coaches().Delete(ctx, id); err != nil {
			return lookupError(err, "coach not found", "failed to delete coach")
		}
		return nil
	})
	if err != nil {
		return storeError(err, "failed to delete coach")
	}
	s.logger.Info("coach deleted", zap.Int64("coach_id", id))
	return nil
}
