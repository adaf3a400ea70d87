package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-admin/internal/models"
	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
)

func seedUser(t *testing.T, ts *testServices, username string, role models.UserRole) *models.User {
	t.Helper()
	user, err := ts.users.Register(context.Background(), adminActor, models.CreateUserRequest{
		Username: username, Password: "secret", Role: role,
	})
	require.NoError(t, err)
	return user
}

func TestUserServiceRegister(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	user, err := ts.users.Register(ctx, adminActor, models.CreateUserRequest{Username: " maria ", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "maria", user.Username)
	assert.Equal(t, models.RoleViewer, user.Role)
	assert.NotEqual(t, "secret", user.PasswordHash)

	_, err = ts.users.Register(ctx, adminActor, models.CreateUserRequest{Username: "maria", Password: "other"})
	assert.ErrorIs(t, err, appErrors.ErrDuplicateKey)

	_, err = ts.users.Register(ctx, adminActor, models.CreateUserRequest{Username: "x", Password: "y", Role: "ROOT"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = ts.users.Register(ctx, editorActor, models.CreateUserRequest{Username: "x", Password: "y"})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestUserServiceAuthenticate(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	seedUser(t, ts, "maria", models.RoleEditor)

	user, err := ts.users.Authenticate(ctx, "maria", "secret")
	require.NoError(t, err)
	assert.Equal(t, models.RoleEditor, user.Role)

	_, err = ts.users.Authenticate(ctx, "maria", "wrong")
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = ts.users.Authenticate(ctx, "ghost", "secret")
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestUserServiceBootstrapAdmin(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	admin, generated, err := ts.users.BootstrapAdmin(ctx, "admin", "")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.NotEmpty(t, generated)

	_, err = ts.users.Authenticate(ctx, "admin", generated)
	require.NoError(t, err)

	again, _, err := ts.users.BootstrapAdmin(ctx, "admin2", "pw")
	require.NoError(t, err)
	assert.Nil(t, again)
	assert.Len(t, ts.uow.state.users, 1)

	_, err = ts.users.RegisterFirstAdmin(ctx, "late", "pw")
	assert.ErrorIs(t, err, appErrors.ErrPreconditionFailed)

	has, err := ts.users.HasUsers(ctx)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestUserServiceDeleteLastAdmin(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	admin := seedUser(t, ts, "admin", models.RoleAdmin)
	editor := seedUser(t, ts, "editor", models.RoleEditor)
	viewer := seedUser(t, ts, "viewer", models.RoleViewer)

	err := ts.users.Delete(ctx, adminActor, admin.ID)
	assert.ErrorIs(t, err, appErrors.ErrLastAdmin)

	require.NoError(t, ts.users.Delete(ctx, adminActor, editor.ID))
	require.NoError(t, ts.users.Delete(ctx, adminActor, viewer.ID))
	assert.Equal(t, []int64{editor.ID, viewer.ID}, ts.revoked)

	second := seedUser(t, ts, "second", models.RoleAdmin)
	require.NoError(t, ts.users.Delete(ctx, adminActor, second.ID))
	assert.Len(t, ts.uow.state.users, 1)
}

func TestUserServiceDeleteOwnAccountWhenAnotherAdminRemains(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	root := seedUser(t, ts, "root", models.RoleAdmin)
	other := seedUser(t, ts, "other", models.RoleAdmin)

	actor := models.PrincipalFromUser(root)
	require.NoError(t, ts.users.Delete(ctx, actor, root.ID))
	assert.NotContains(t, ts.uow.state.users, root.ID)
	assert.Equal(t, []int64{root.ID}, ts.revoked)

	last := models.PrincipalFromUser(other)
	assert.ErrorIs(t, ts.users.Delete(ctx, last, other.ID), appErrors.ErrLastAdmin)
	assert.Contains(t, ts.uow.state.users, other.ID)

	assert.ErrorIs(t, ts.users.Delete(ctx, last, 999), appErrors.ErrNotFound)
}

func TestUserServiceUpdateRole(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	admin := seedUser(t, ts, "admin", models.RoleAdmin)
	viewer := seedUser(t, ts, "viewer", models.RoleViewer)

	_, err := ts.users.UpdateRole(ctx, adminActor, admin.ID, models.RoleEditor)
	assert.ErrorIs(t, err, appErrors.ErrLastAdmin)
	assert.Equal(t, models.RoleAdmin, ts.uow.state.users[admin.ID].Role)

	promoted, err := ts.users.UpdateRole(ctx, adminActor, viewer.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, promoted.Role)
	assert.Equal(t, []int64{viewer.ID}, ts.revoked)

	demoted, err := ts.users.UpdateRole(ctx, adminActor, admin.ID, models.RoleViewer)
	require.NoError(t, err)
	assert.Equal(t, models.RoleViewer, demoted.Role)

	_, err = ts.users.UpdateRole(ctx, adminActor, viewer.ID, "OWNER")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestUserServiceChangePassword(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	viewer := seedUser(t, ts, "viewer", models.RoleViewer)
	actor := models.PrincipalFromUser(viewer)

	err := ts.users.ChangePassword(ctx, actor, models.ChangePasswordRequest{OldPassword: "wrong", NewPassword: "next"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	require.NoError(t, ts.users.ChangePassword(ctx, actor, models.ChangePasswordRequest{OldPassword: "secret", NewPassword: "next"}))
	_, err = ts.users.Authenticate(ctx, "viewer", "next")
	assert.NoError(t, err)

	_, err = ts.users.List(ctx, actor)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}
