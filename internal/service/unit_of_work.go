package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/noah-isme/academy-admin/internal/models"
	"github.com/noah-isme/academy-admin/internal/repository"
	"github.com/noah-isme/academy-admin/pkg/database"
	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
)

type academyRepository interface {
	Create(ctx context.Context, academy *models.Academy) error
	FindByID(ctx context.Context, id int64) (*models.Academy, error)
	FindByName(ctx context.Context, name string) (*models.Academy, error)
	List(ctx context.Context) ([]models.Academy, error)
	Update(ctx context.Context, academy *models.Academy) error
	Delete(ctx context.Context, id int64) error
	CountDependants(ctx context.Context, id int64) (students, coaches int, err error)
}

type studentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	FindByNationalID(ctx context.Context, nationalID string) (*models.Student, error)
	FindListItem(ctx context.Context, id int64) (*models.StudentListItem, error)
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentListItem, error)
	Update(ctx context.Context, student *models.Student) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

type modalityRepository interface {
	Create(ctx context.Context, modality *models.Modality) error
	FindByID(ctx context.Context, id int64) (*models.Modality, error)
	FindByName(ctx context.Context, name string) (*models.Modality, error)
	List(ctx context.Context) ([]models.Modality, error)
	Update(ctx context.Context, modality *models.Modality) error
	Delete(ctx context.Context, id int64) error
	CountDependants(ctx context.Context, id int64) (coaches, enrollments int, err error)
}

type coachRepository interface {
	Create(ctx context.Context, coach *models.Coach) error
	FindByID(ctx context.Context, id int64) (*models.CoachDetail, error)
	List(ctx context.Context, filter models.CoachFilter) ([]models.CoachDetail, error)
	Update(ctx context.Context, coach *models.Coach) error
	Delete(ctx context.Context, id int64) error
}

type enrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	FindByID(ctx context.Context, id int64) (*models.Enrollment, error)
	FindByNumber(ctx context.Context, number string) (*models.Enrollment, error)
	FindByPair(ctx context.Context, studentID, modalityID int64) (*models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID int64) ([]models.EnrollmentDetail, error)
	UpdateGrade(ctx context.Context, id int64, grade *string) error
	Delete(ctx context.Context, id int64) error
	DeleteByStudent(ctx context.Context, studentID int64) (int64, error)
}

type userRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Count(ctx context.Context) (int, error)
	CountByRole(ctx context.Context, role models.UserRole) (int, error)
	UpdateRole(ctx context.Context, id int64, role models.UserRole) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
}

type reportRepository interface {
	ActiveStudentsByAcademy(ctx context.Context) ([]models.AcademyCount, error)
	GradeCounts(ctx context.Context) ([]models.GradeCount, error)
	Roster(ctx context.Context, modalityID int64, grade string) ([]models.RosterEntry, error)
}

// Repositories is the set of repositories bound to one unit of work.
type Repositories interface {
	Academies() academyRepository
	Students() studentRepository
	Modalities() modalityRepository
	Coaches() coachRepository
	Enrollments() enrollmentRepository
	Users() userRepository
	Reports() reportRepository
}

// UnitOfWork scopes one service operation. Do commits when fn returns nil
// and rolls back otherwise.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(repos Repositories) error) error
}

type sqlUnitOfWork struct {
	store   *repository.Store
	metrics *MetricsService
}

// NewUnitOfWork adapts a repository.Store to the UnitOfWork contract.
func NewUnitOfWork(store *repository.Store, metrics *MetricsService) UnitOfWork {
	return &sqlUnitOfWork{store: store, metrics: metrics}
}

func (u *sqlUnitOfWork) Do(ctx context.Context, fn func(repos Repositories) error) error {
	start := time.Now()
	err := u.store.InTx(ctx, func(tx *repository.Tx) error {
		return fn(txRepositories{tx: tx})
	})
	u.metrics.ObserveUnitOfWork(err == nil, time.Since(start))
	return err
}

type txRepositories struct {
	tx *repository.Tx
}

func (r txRepositories) Academies() academyRepository { return r.tx.Academies() }
func (r txRepositories) Students() studentRepository { return r.tx.Students() }
func (r txRepositories) Modalities() modalityRepository { return r.tx.Modalities() }
func (r txRepositories) Coaches() coachRepository { return r.tx.Coaches() }
func (r txRepositories) Enrollments() enrollmentRepository { return r.tx.Enrollments() }
func (r txRepositories) Users() userRepository { return r.tx.Users() }
func (r txRepositories) Reports() reportRepository { return r.tx.Reports() }

// storeError passes typed errors through, maps constraint violations and
// wraps everything else as internal.
func storeError(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	if database.IsUniqueViolation(err) || database.IsForeignKeyViolation(err) {
		return database.TranslateConstraint(err, "")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

// lookupError maps sql.ErrNoRows to NotFound with the given message.
func lookupError(err error, notFound, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return storeError(err, message)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
