package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-admin/internal/models"
	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
)

const sessionIssuer = "academy-admin"

type sessionRegistry interface {
	Register(ctx context.Context, sessionID string, userID int64, ttl time.Duration) error
	Exists(ctx context.Context, sessionID string) (bool, error)
	Revoke(ctx context.Context, sessionID string) error
}

// SessionConfig defines how web session tokens are signed.
type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

// SessionService issues and validates the signed web session cookie.
type SessionService struct {
	users    *UserService
	registry sessionRegistry
	config   SessionConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewSessionService constructs a SessionService. registry may be nil.
func NewSessionService(users *UserService, registry sessionRegistry, config SessionConfig, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.TTL <= 0 {
		config.TTL = 8 * time.Hour
	}
	return &SessionService{users: users, registry: registry, config: config, logger: logger, now: time.Now}
}

// TTL returns the lifetime of issued sessions.
func (s *SessionService) TTL() time.Duration {
	return s.config.TTL
}

// Login authenticates the credentials and issues a session token.
func (s *SessionService) Login(ctx context.Context, req models.LoginRequest) (string, *models.Principal, error) {
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return "", nil, appErrors.Clone(appErrors.ErrValidation, "username and password are required")
	}
	user, err := s.users.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return "", nil, err
	}
	token, err := s.Issue(ctx, user)
	if err != nil {
		return "", nil, err
	}
	s.logger.Info("session issued", zap.Int64("user_id", user.ID))
	return token, models.PrincipalFromUser(user), nil
}

// Issue signs a session token for the user and records it in the registry.
func (s *SessionService) Issue(ctx context.Context, user *models.User) (string, error) {
	issuedAt := s.now().UTC()
	claims := &models.SessionClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    sessionIssuer,
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.TTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", appErrors.Internal(err, "failed to sign session")
	}
	if s.registry != nil {
		if err := s.registry.Register(ctx, claims.ID, user.ID, s.config.TTL); err != nil {
			return "", appErrors.Internal(err, "failed to register session")
		}
	}
	return signed, nil
}

// Validate verifies the token and returns the principal it carries.
func (s *SessionService) Validate(ctx context.Context, tokenString string) (*models.Principal, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if s.registry != nil {
		ok, err := s.registry.Exists(ctx, claims.ID)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to check session")
		}
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session revoked")
		}
	}
	return claims.Principal(), nil
}

// Revoke forgets the session carried by the token. Invalid tokens are ignored.
func (s *SessionService) Revoke(ctx context.Context, tokenString string) error {
	claims, err := s.parse(tokenString)
	if err != nil || s.registry == nil {
		return nil
	}
	if err := s.registry.Revoke(ctx, claims.ID); err != nil {
		return appErrors.Internal(err, "failed to revoke session")
	}
	return nil
}

func (s *SessionService) parse(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithTimeFunc(s.now), jwt.WithIssuer(sessionIssuer))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid session")
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid || !claims.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid session claims")
	}
	return claims, nil
}
