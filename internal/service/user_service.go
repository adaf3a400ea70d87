package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/academy-admin/internal/models"
	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
)

type sessionRevoker interface {
	RevokeUser(ctx context.Context, userID int64) error
}

// UserService handles operator accounts and credential checks.
type UserService struct {
	uow       UnitOfWork
	sessions  sessionRevoker
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	hashCost  int
	dummyOnce sync.Once
	dummyHash []byte
}

// NewUserService creates an instance of UserService. sessions and metrics may be nil.
func NewUserService(uow UnitOfWork, sessions sessionRevoker, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *UserService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		uow:       uow,
		sessions:  sessions,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		hashCost:  bcrypt.DefaultCost,
	}
}

// Register creates a user. The role defaults to VIEWER.
func (s *UserService) Register(ctx context.Context, actor *models.Principal, req models.CreateUserRequest) (*models.User, error) {
	if err := authorize(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.create(ctx, req, func(ctx context.Context, repos Repositories) error { return nil })
}

// RegisterFirstAdmin creates an ADMIN account while no user exists yet.
func (s *UserService) RegisterFirstAdmin(ctx context.Context, username, password string) (*models.User, error) {
	req := models.CreateUserRequest{Username: username, Password: password, Role: models.RoleAdmin}
	return s.create(ctx, req, ensureNoUsers)
}

// HasUsers reports whether at least one user exists.
func (s *UserService) HasUsers(ctx context.Context) (bool, error) {
	var count int
	err := s.uow.Do(ctx, func(repos Repositories) error {
		var err error
		count, err = repos.Users().Count(ctx)
		return err
	})
	if err != nil {
		return false, storeError(err, "failed to count users")
	}
	return count > 0, nil
}

// BootstrapAdmin creates the configured administrator when the users table is
// empty. When password is blank a random one is generated and returned so the
// caller can show it once. It returns a nil user when users already exist.
func (s *UserService) BootstrapAdmin(ctx context.Context, username, password string) (*models.User, string, error) {
	generated := ""
	if strings.TrimSpace(password) == "" {
		var err error
		if generated, err = randomPassword(); err != nil {
			return nil, "", appErrors.Internal(err, "failed to generate bootstrap password")
		}
		password = generated
	}
	req := models.CreateUserRequest{Username: username, Password: password, Role: models.RoleAdmin}
	user, err := s.create(ctx, req, ensureNoUsers)
	if err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrPreconditionFailed.Code {
			return nil, "", nil
		}
		return nil, "", err
	}
	if generated != "" {
		s.logger.Warn("bootstrap administrator created with a generated password", zap.String("username", user.Username))
	}
	return user, generated, nil
}

func ensureNoUsers(ctx context.Context, repos Repositories) error {
	count, err := repos.Users().Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "users already exist")
	}
	return nil
}

func (s *UserService) create(ctx context.Context, req models.CreateUserRequest, guard func(context.Context, Repositories) error) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	if req.Role == "" {
		req.Role = models.RoleViewer
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to hash password")
	}

	user := &models.User{Username: req.Username, PasswordHash: string(hash), Role: req.Role}
	err = s.uow.Do(ctx, func(repos Repositories) error {
		if err := guard(ctx, repos); err != nil {
			return err
		}
		if _, err := repos.Users().FindByUsername(ctx, user.Username); err == nil {
			return appErrors.Clone(appErrors.ErrDuplicateKey, fmt.Sprintf("username %q already exists", user.Username))
		} else if !isNoRows(err) {
			return err
		}
		return repos.Users().Create(ctx, user)
	})
	if err != nil {
		return nil, storeError(err, "failed to create user")
	}
	s.logger.Info("user created", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// Authenticate verifies credentials and returns the matching user.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	var user *models.User
	err := s.uow.Do(ctx, func(repos Repositories) error {
		var err error
		user, err = repos.Users().FindByUsername(ctx, username)
		return err
	})
	if err != nil && !isNoRows(err) {
		return nil, storeError(err, "failed to fetch user")
	}

	hash := s.fallbackHash()
	if user != nil {
		hash = []byte(user.PasswordHash)
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil || user == nil {
		s.metrics.RecordAuthAttempt(false)
		s.logger.Warn("authentication failed", zap.String("username", username))
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid username or password")
	}
	s.metrics.RecordAuthAttempt(true)
	return user, nil
}

// fallbackHash is compared against when the username is unknown so both
// paths cost one bcrypt comparison.
func (s *UserService) fallbackHash() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("unused-password"), s.hashCost)
	})
	return s.dummyHash
}

// List returns every user ordered by username.
func (s *UserService) List(ctx context.Context, actor *models.Principal) ([]models.User, error) {
	if err := authorize(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	var users []models.User
	err := s.uow.Do(ctx, func(repos Repositories) error {
		var err error
		users, err = repos.Users().List(ctx)
		return err
	})
	if err != nil {
		return nil, storeError(err, "failed to list users")
	}
	return users, nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, actor *models.Principal, id int64) (*models.User, error) {
	if err := authorize(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	var user *models.User
	err := s.uow.Do(ctx, func(repos Repositories) error {
		var err error
		user, err = repos.Users().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, lookupError(err, "user not found", "failed to load user")
	}
	return user, nil
}

// UpdateRole changes a user's role. The only ADMIN cannot be demoted.
func (s *UserService) UpdateRole(ctx context.Context, actor *models.Principal, id int64, role models.UserRole) (*models.User, error) {
	if err := authorize(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid role %q", role))
	}
	var user *models.User
	err := s.uow.Do(ctx, func(repos Repositories) error {
		var err error
		user, err = repos.Users().FindByID(ctx, id)
		if err != nil {
			return lookupError(err, "user not found", "failed to load user")
		}
		if user.Role == role {
			return nil
		}
		if user.Role == models.RoleAdmin {
			if err := ensureNotLastAdmin(ctx, repos, "cannot demote the last administrator"); err != nil {
				return err
			}
		}
		user.Role = role
		return repos.Users().UpdateRole(ctx, id, role)
	})
	if err != nil {
		return nil, storeError(err, "failed to update user role")
	}
	s.revokeSessions(ctx, id)
	s.logger.Info("user role updated", zap.Int64("user_id", id), zap.String("role", string(role)))
	return user, nil
}

// ChangePassword replaces the acting user's own password after checking the old one.
func (s *UserService) ChangePassword(ctx context.Context, actor *models.Principal, req models.ChangePasswordRequest) error {
	if err := authorize(actor, models.RoleViewer); err != nil {
		return err
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid password payload")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.hashCost)
	if err != nil {
		return appErrors.Internal(err, "failed to hash password")
	}
	err = s.uow.Do(ctx, func(repos Repositories) error {
		user, err := repos.Users().FindByID(ctx, actor.UserID)
		if err != nil {
			return lookupError(err, "user not found", "failed to load user")
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)) != nil {
			return appErrors.Clone(appErrors.ErrInvalidCredentials, "current password is incorrect")
		}
		return repos.Users().UpdatePassword(ctx, user.ID, string(hash))
	})
	if err != nil {
		return storeError(err, "failed to change password")
	}
	s.logger.Info("password changed", zap.Int64("user_id", actor.UserID))
	return nil
}

// Delete removes a user. The last ADMIN cannot be deleted.
func (s *UserService) Delete(ctx context.Context, actor *models.Principal, id int64) error {
	if err := authorize(actor, models.RoleAdmin); err != nil {
		return err
	}
	err := s.uow.Do(ctx, func(repos Repositories) error {
		user, err := repos.Users().FindByID(ctx, id)
		if err != nil {
			return lookupError(err, "user not found", "failed to load user")
		}
		if user.Role == models.RoleAdmin {
			if err := ensureNotLastAdmin(ctx, repos, "cannot delete the last administrator"); err != nil {
				return err
			}
		}
		return repos.Users().Delete(ctx, id)
	})
	if err != nil {
		return storeError(err, "failed to delete user")
	}
	s.revokeSessions(ctx, id)
	s.logger.Info("user deleted", zap.Int64("user_id", id))
	return nil
}

func (s *UserService) revokeSessions(ctx context.Context, userID int64) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.RevokeUser(ctx, userID); err != nil {
		s.logger.Warn("failed to revoke user sessions", zap.Int64("user_id", userID), zap.Error(err))
	}
}

func ensureNotLastAdmin(ctx context.Context, repos Repositories, message string) error {
	admins, err := repos.Users().CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return err
	}
	if admins <= 1 {
		return appErrors.Clone(appErrors.ErrLastAdmin, message)
	}
	return nil
}

func randomPassword() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
