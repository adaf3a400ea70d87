package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-admin/internal/models"
	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
)

type fakeRegistry struct {
	sessions map[string]int64
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{sessions: map[string]int64{}}
}

func (f *fakeRegistry) Register(ctx context.Context, sessionID string, userID int64, ttl time.Duration) error {
	f.sessions[sessionID] = userID
	return nil
}

func (f *fakeRegistry) Exists(ctx context.Context, sessionID string) (bool, error) {
	_, ok := f.sessions[sessionID]
	return ok, nil
}

func (f *fakeRegistry) Revoke(ctx context.Context, sessionID string) error {
	delete(f.sessions, sessionID)
	return nil
}

func newTestSessionService(t *testing.T, registry sessionRegistry) (*SessionService, *testServices) {
	t.Helper()
	ts := newTestServices(t)
	seedUser(t, ts, "maria", models.RoleEditor)
	svc := NewSessionService(ts.users, registry, SessionConfig{Secret: "test-secret", TTL: time.Hour}, nil)
	return svc, ts
}

func TestSessionServiceLoginAndValidate(t *testing.T) {
	registry := newFakeRegistry()
	svc, _ := newTestSessionService(t, registry)
	ctx := context.Background()

	token, principal, err := svc.Login(ctx, models.LoginRequest{Username: "maria", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleEditor, principal.Role)
	assert.Len(t, registry.sessions, 1)

	validated, err := svc.Validate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, principal, validated)

	require.NoError(t, svc.Revoke(ctx, token))
	_, err = svc.Validate(ctx, token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestSessionServiceRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestSessionService(t, nil)

	_, _, err := svc.Login(context.Background(), models.LoginRequest{Username: "maria", Password: "nope"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), models.LoginRequest{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestSessionServiceRejectsTamperedAndExpiredTokens(t *testing.T) {
	svc, ts := newTestSessionService(t, nil)
	ctx := context.Background()
	user, err := ts.users.Authenticate(ctx, "maria", "secret")
	require.NoError(t, err)

	token, err := svc.Issue(ctx, user)
	require.NoError(t, err)

	other := NewSessionService(ts.users, nil, SessionConfig{Secret: "another-secret"}, nil)
	_, err = other.Validate(ctx, token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Validate(ctx, token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	_, err = svc.Validate(ctx, "not-a-token")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
	assert.NoError(t, svc.Revoke(ctx, "not-a-token"))
}
