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
	"github.com/noah-isme/academy-admin/pkg/identifier"
)

// StudentService handles student use-cases.
type StudentService struct {
	uow       UnitOfWork
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewStudentService constructs the student service.
func NewStudentService(uow UnitOfWork, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{uow: uow, validator: validate, logger: logger, now: time.Now}
}

// Create registers a student under an existing academy.
func (s *StudentService) Create(ctx context.Context, actor *models.Principal, req models.CreateStudentRequest) (*models.Student, error) {
	if err := authorize(actor, models.RoleEditor); err != nil {
		return nil, err
	}
	req.FullName = strings.TrimSpace(req.FullName)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	nationalID, err := parseNationalID(req.NationalID)
	if err != nil {
		return nil, err
	}
	birthDate, err := parseOptionalDate(req.BirthDate, "birth date")
	if err != nil {
		return nil, err
	}

	student := &models.Student{
		FullName:            req.FullName,
		BirthDate:           birthDate,
		NationalID:          nationalID,
		NationalIDFormatted: identifier.FormatNationalID(nationalID),
		Phone:               models.OptionalString(identifier.NormalizePhone(req.Phone)),
		GuardianName:        models.OptionalString(req.GuardianName),
		Grade:               models.OptionalString(req.Grade),
		Active:              true,
		RegisteredAt:        s.now().UTC(),
		AcademyID:           req.AcademyID,
	}
	err = s.uow.Do(ctx, func(repos Repositories) error {
		if err := ensureAcademyExists(ctx, repos, student.AcademyID); err != nil {
			return err
		}
		if err := ensureNationalIDFree(ctx, repos, nationalID, 0); err != nil {
			return err
		}
		return repos.Students().Create(ctx, student)
	})
	if err != nil {
		return nil, storeError(err, "failed to create student")
	}
	s.logger.Info("student created", zap.Int64("student_id", student.ID), zap.Int64("academy_id", student.AcademyID))
	return student, nil
}

// Get returns the student with academy name and enrollments.
func (s *StudentService) Get(ctx context.Context, actor *models.Principal, id int64) (*models.StudentDetail, error) {
	if err := authorize(actor, models.RoleEditor); err != nil {
		return nil, err
	}
	var detail *models.StudentDetail
	err := s.uow.Do(ctx, func(repos Repositories) error {
		var err error
		detail, err = loadStudentDetail(ctx, repos, id)
		return err
	})
	if err != nil {
		return nil, storeError(err, "failed to load student")
	}
	return detail, nil
}

// GetByNationalID looks a student up by national id in any format.
func (s *StudentService) GetByNationalID(ctx context.Context, actor *models.Principal, raw string) (*models.StudentDetail, error) {
	if err := authorize(actor, models.RoleEditor); err != nil {
		return nil, err
	}
	nationalID, err := parseNationalID(raw)
	if err != nil {
		return nil, err
	}
	var detail *models.StudentDetail
	err = s.uow.Do(ctx, func(repos Repositories) error {
		student, err := repos.Students().FindByNationalID(ctx, nationalID)
		if err != nil {
			return lookupError(err, "student not found", "failed to load student")
		}
		detail, err = loadStudentDetail(ctx, repos, student.ID)
		return err
	})
	if err != nil {
		return nil, storeError(err, "failed to load student")
	}
	return detail, nil
}

// List returns students matching the filter ordered by name.
func (s *StudentService) List(ctx context.Context, actor *models.Principal, filter models.StudentFilter) ([]models.StudentListItem, error) {
	if err := authorize(actor, models.RoleEditor); err != nil {
		return nil, err
	}
	var students []models.StudentListItem
	err := s.uow.Do(ctx, func(repos Repositories) error {
		var err error
		students, err = repos.Students().List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, storeError(err, "failed to list students")
	}
	return students, nil
}

// ListActiveByAcademy returns the active students of an academy.
func (s *StudentService) ListActiveByAcademy(ctx context.Context, actor *models.Principal, academyID int64) ([]models.StudentListItem, error) {
	if err := authorize(actor, models.RoleEditor); err != nil {
		return nil, err
	}
	active := true
	var students []models.StudentListItem
	err := s.uow.Do(ctx, func(repos Repositories) error {
		if _, err := repos.Academies().FindByID(ctx, academyID); err != nil {
			return lookupError(err, "academy not found", "failed to load academy")
		}
		var err error
		students, err = repos.Students().List(ctx, models.StudentFilter{AcademyID: &academyID, Active: &active})
		return err
	})
	if err != nil {
		return nil, storeError(err, "failed to list students")
	}
	return students, nil
}

// Update applies the supplied fields.
func (s *StudentService) Update(ctx context.Context, actor *models.Principal, id int64, req models.UpdateStudentRequest) (*models.Student, error) {
	if err := authorize(actor, models.RoleEditor); err != nil {
		return nil, err
	}
	var student *models.Student
	err := s.uow.Do(ctx, func(repos Repositories) error {
		var err error
		student, err = repos.Students().FindByID(ctx, id)
		if err != nil {
			return lookupError(err, "student not found", "failed to load student")
		}
		if err := s.applyUpdate(ctx, repos, student, req); err != nil {
			return err
		}
		return repos.Students().Update(ctx, student)
	})
	if err != nil {
		return nil, storeError(err, "failed to update student")
	}
	s.logger.Info("student updated", zap.Int64("student_id", student.ID))
	return student, nil
}

func (s *StudentService) applyUpdate(ctx context.Context, repos Repositories, student *models.Student, req models.UpdateStudentRequest) error {
	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return appErrors.Clone(appErrors.ErrValidation, "student name cannot be empty")
		}
		student.FullName = name
	}
	if req.NationalID != nil {
		nationalID, err := parseNationalID(*req.NationalID)
		if err != nil {
			return err
		}
		if nationalID != student.NationalID {
			if err := ensureNationalIDFree(ctx, repos, nationalID, student.ID); err != nil {
				return err
			}
		}
		student.NationalID = nationalID
		student.NationalIDFormatted = identifier.FormatNationalID(nationalID)
	}
	if req.BirthDate != nil {
		birthDate, err := parseOptionalDate(*req.BirthDate, "birth date")
		if err != nil {
			return err
		}
		student.BirthDate = birthDate
	}
	if req.AcademyID != nil && *req.AcademyID != student.AcademyID {
		if err := ensureAcademyExists(ctx, repos, *req.AcademyID); err != nil {
			return err
		}
		student.AcademyID = *req.AcademyID
	}
	if req.Phone != nil {
		student.Phone = models.OptionalString(identifier.NormalizePhone(*req.Phone))
	}
	if req.GuardianName != nil {
		student.GuardianName = models.OptionalString(*req.GuardianName)
	}
	if req.Grade != nil {
		student.Grade = models.OptionalString(*req.Grade)
	}
	if req.Active != nil {
		student.Active = *req.Active
	}
	return nil
}

// SetActive toggles the student's active flag.
func (s *StudentService) SetActive(ctx context.Context, actor *models.Principal, id int64, active bool) error {
	if err := authorize(actor, models.RoleEditor); err != nil {
		return err
	}
	err := s.uow.Do(ctx, func(repos Repositories) error {
		if err := repos.Students().SetActive(ctx, id, active); err != nil {
			return lookupError(err, "student not found", "failed to update student status")
		}
		return nil
	})
	if err != nil {
		return storeError(err, "failed to update student status")
	}
	s.logger.Info("student status changed", zap.Int64("student_id", id), zap.Bool("active", active))
	return nil
}

// SetActiveByNationalID toggles the active flag of the student with the national id.
func (s *StudentService) SetActiveByNationalID(ctx context.Context, actor *models.Principal, raw string, active bool) (*models.Student, error) {
	if err := authorize(actor, models.RoleEditor); err != nil {
		return nil, err
	}
	nationalID, err := parseNationalID(raw)
	if err != nil {
		return nil, err
	}
	var student *models.Student
	err = s.uow.Do(ctx, func(repos Repositories) error {
		var err error
		student, err = repos.Students().FindByNationalID(ctx, nationalID)
		if err != nil {
			return lookupError(err, "student not found", "failed to load student")
		}
		student.Active = active
		return repos.Students().SetActive(ctx, student.ID, active)
	})
	if err != nil {
		return nil, storeError(err, "failed to update student status")
	}
	s.logger.Info("student status changed", zap.Int64("student_id", student.ID), zap.Bool("active", active))
	return student, nil
}

// Delete removes the student together with its enrollments.
func (s *StudentService) Delete(ctx context.Context, actor *models.Principal, id int64) error {
	if err := authorize(actor, models.RoleAdmin); err != nil {
		return err
	}
	var removed int64
	err := s.uow.Do(ctx, func(repos Repositories) error {
		if _, err := repos.Students().FindByID(ctx, id); err != nil {
			return lookupError(err, "student not found", "failed to load student")
		}
		var err error
		if removed, err = repos.Enrollments().DeleteByStudent(ctx, id); err != nil {
			return err
		}
		return repos.Students().Delete(ctx, id)
	})
	if err != nil {
		return storeError(err, "failed to delete student")
	}
	s.logger.Info("student deleted", zap.Int64("student_id", id), zap.Int64("enrollments_removed", removed))
	return nil
}

func loadStudentDetail(ctx context.Context, repos Repositories, id int64) (*models.StudentDetail, error) {
	item, err := repos.Students().FindListItem(ctx, id)
	if err != nil {
		return nil, lookupError(err, "student not found", "failed to load student")
	}
	enrollments, err := repos.Enrollments().ListByStudent(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.StudentDetail{StudentListItem: *item, Enrollments: enrollments}, nil
}

func parseNationalID(raw string) (string, error) {
	digits := identifier.NationalIDDigits(raw)
	if digits == 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "national id is required")
	}
	if digits > identifier.NationalIDLength {
		return "", appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("national id must have at most %d digits", identifier.NationalIDLength))
	}
	return identifier.NormalizeNationalID(raw), nil
}

func parseOptionalDate(raw, field string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := identifier.ParseDate(raw)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid "+field)
	}
	return &t, nil
}

func ensureAcademyExists(ctx context.Context, repos Repositories, id int64) error {
	if _, err := repos.Academies().FindByID(ctx, id); err != nil {
		if isNoRows(err) {
			return appErrors.Clone(appErrors.ErrReferential, fmt.Sprintf("academy %d does not exist", id))
		}
		return err
	}
	return nil
}

func ensureNationalIDFree(ctx context.Context, repos Repositories, nationalID string, selfID int64) error {
	existing, err := repos.Students().FindByNationalID(ctx, nationalID)
	if err != nil {
		if isNoRows(err) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return appErrors.Clone(appErrors.ErrDuplicateKey,
			fmt.Sprintf("a student with national id %s already exists", identifier.FormatNationalID(nationalID)))
	}
	return nil
}
