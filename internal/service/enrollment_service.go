package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-admin/internal/models"
	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
)

// EnrollmentService links students to modalities and tracks their grade.
type EnrollmentService struct {
	uow       UnitOfWork
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(uow UnitOfWork, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{uow: uow, validator: validate, logger: logger, now: time.Now}
}

// Create enrolls a student in a modality.
func (s *EnrollmentService) Create(ctx context.Context, actor *models.Principal, req models.CreateEnrollmentRequest) (*models.Enrollment, error) {
	if err := authorize(actor, models.RoleEditor); err != nil {
		return nil, err
	}
	req.EnrollmentNumber = strings.TrimSpace(req.EnrollmentNumber)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	enrolledAt := s.now().UTC()
	if date, err := parseOptionalDate(req.EnrolledAt, "enrollment date"); err != nil {
		return nil, err
	} else if date != nil {
		enrolledAt = *date
	}

	enrollment := &models.Enrollment{
		EnrollmentNumber: req.EnrollmentNumber,
		Grade:            models.OptionalString(req.Grade),
		EnrolledAt:       enrolledAt,
		StudentID:        req.StudentID,
		ModalityID:       req.ModalityID,
	}
	err := s.uow.Do(ctx, func(repos Repositories) error {
		if _, err := repos.Students().FindByID(ctx, req.StudentID); err != nil {
			if isNoRows(err) {
				return appErrors.Clone(appErrors.ErrReferential, fmt.Sprintf("student %d does not exist", req.StudentID))
			}
			return err
		}
		if err := ensureModalityExists(ctx, repos, req.ModalityID); err != nil {
			return err
		}
		if _, err := repos.Enrollments().FindByPair(ctx, req.StudentID, req.ModalityID); err == nil {
			return appErrors.Clone(appErrors.ErrDuplicateKey, "student is already enrolled in this modality")
		} else if !isNoRows(err) {
			return err
		}
		if _, err := repos.Enrollments().FindByNumber(ctx, req.EnrollmentNumber); err == nil {
			return appErrors.Clone(appErrors.ErrDuplicateKey,
				fmt.Sprintf("enrollment number %q already exists", req.EnrollmentNumber))
		} else if !isNoRows(err) {
			return err
		}
		return repos.Enrollments().Create(ctx, enrollment)
	})
	if err != nil {
		return nil, storeError(err, "failed to create enrollment")
	}
	s.logger.Info("enrollment created",
		zap.Int64("enrollment_id", enrollment.ID),
		zap.Int64("student_id", enrollment.StudentID),
		zap.Int64("modality_id", enrollment.ModalityID),
	)
	return enrollment, nil
}

// Get returns an enrollment by ID.
func (s *EnrollmentService) Get(ctx context.Context, actor *models.Principal, id int64) (*models.Enrollment, error) {
	if err := authorize(actor, models.RoleEditor); err != nil {
		return nil, err
	}
	var enrollment *models.Enrollment
	err := s.uow.Do(ctx, func(repos Repositories) error {
		var err error
		enrollment, err = repos.Enrollments().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, lookupError(err, "enrollment not found", "failed to load enrollment")
	}
	return enrollment, nil
}

// GetByNumber returns the enrollment with the given enrollment number.
func (s *EnrollmentService) GetByNumber(ctx context.Context, actor *models.Principal, number string) (*models.Enrollment, error) {
	if err := authorize(actor, models.RoleEditor); err != nil {
		return nil, err
	}
	var enrollment *models.Enrollment
	err := s.uow.Do(ctx, func(repos Repositories) error {
		var err error
		enrollment, err = repos.Enrollments().FindByNumber(ctx, strings.TrimSpace(number))
		return err
	})
	if err != nil {
		return nil, lookupError(err, "enrollment not found", "failed to load enrollment")
	}
	return enrollment, nil
}

// ListByStudent returns the enrollments of a student with modality names.
func (s *EnrollmentService) ListByStudent(ctx context.Context, actor *models.Principal, studentID int64) ([]models.EnrollmentDetail, error) {
	if err := authorize(actor, models.RoleEditor); err != nil {
		return nil, err
	}
	var enrollments []models.EnrollmentDetail
	err := s.uow.Do(ctx, func(repos Repositories) error {
		if _, err := repos.Students().FindByID(ctx, studentID); err != nil {
			return lookupError(err, "student not found", "failed to load student")
		}
		var err error
		enrollments, err = repos.Enrollments().ListByStudent(ctx, studentID)
		return err
	})
	if err != nil {
		return nil, storeError(err, "failed to list enrollments")
	}
	return enrollments, nil
}

// UpdateGrade replaces the grade label of an enrollment. An empty grade clears it.
func (s *EnrollmentService) UpdateGrade(ctx context.Context, actor *models.Principal, id int64, grade string) (*models.Enrollment, error) {
	if err := authorize(actor, models.RoleEditor); err != nil {
		return nil, err
	}
	var enrollment *models.Enrollment
	err := s.uow.Do(ctx, func(repos Repositories) error {
		var err error
		enrollment, err = repos.Enrollments().FindByID(ctx, id)
		if err != nil {
			return lookupError(err, "enrollment not found", "failed to load enrollment")
		}
		return s.setGrade(ctx, repos, enrollment, grade)
	})
	if err != nil {
		return nil, storeError(err, "failed to update enrollment grade")
	}
	return enrollment, nil
}

// UpdateGradeByPair replaces the grade of the student's enrollment in the modality.
func (s *EnrollmentService) UpdateGradeByPair(ctx context.Context, actor *models.Principal, studentID, modalityID int64, grade string) (*models.Enrollment, error) {
	if err := authorize(actor, models.RoleEditor); err != nil {
		return nil, err
	}
	var enrollment *models.Enrollment
	err := s.uow.Do(ctx, func(repos Repositories) error {
		var err error
		enrollment, err = repos.Enrollments().FindByPair(ctx, studentID, modalityID)
		if err != nil {
			return lookupError(err, "enrollment not found", "failed to load enrollment")
		}
		return s.setGrade(ctx, repos, enrollment, grade)
	})
	if err != nil {
		return nil, storeError(err, "failed to update enrollment grade")
	}
	return enrollment, nil
}

func (s *EnrollmentService) setGrade(ctx context.Context, repos Repositories, enrollment *models.Enrollment, grade string) error {
	enrollment.Grade = models.OptionalString(grade)
	if err := repos.Enrollments().UpdateGrade(ctx, enrollment.ID, enrollment.Grade); err != nil {
		return err
	}
	s.logger.Info("enrollment grade updated",
		zap.Int64("enrollment_id", enrollment.ID),
		zap.String("grade", models.StringValue(enrollment.Grade)),
	)
	return nil
}

// Delete removes an enrollment by ID.
func (s *EnrollmentService) Delete(ctx context.Context, actor *models.Principal, id int64) error {
	if err := authorize(actor, models.RoleEditor); err != nil {
		return err
	}
	err := s.uow.Do(ctx, func(repos Repositories) error {
		if err := repos.Enrollments().Delete(ctx, id); err != nil {
			return lookupError(err, "enrollment not found", "failed to delete enrollment")
		}
		return nil
	})
	if err != nil {
		return storeError(err, "failed to delete enrollment")
	}
	s.logger.Info("enrollment deleted", zap.Int64("enrollment_id", id))
	return nil
}

// DeleteByPair removes the student's enrollment in the modality.
func (s *EnrollmentService) DeleteByPair(ctx context.Context, actor *models.Principal, studentID, modalityID int64) error {
	if err := authorize(actor, models.RoleEditor); err != nil {
		return err
	}
	var id int64
	err := s.uow.Do(ctx, func(repos Repositories) error {
		enrollment, err := repos.Enrollments().FindByPair(ctx, studentID, modalityID)
		if err != nil {
			return lookupError(err, "enrollment not found", "failed to load enrollment")
		}
		id = enrollment.ID
		return repos.Enrollments().Delete(ctx, id)
	})
	if err != nil {
		return storeError(err, "failed to delete enrollment")
	}
	s.logger.Info("enrollment deleted", zap.Int64("enrollment_id", id))
	return nil
}
