package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/noah-isme/academy-admin/internal/models"
	"github.com/noah-isme/academy-admin/pkg/config"
	"github.com/noah-isme/academy-admin/pkg/database"
	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
)

var admin = &models.Principal{UserID: 1, Username: "root", Role: models.RoleAdmin}

func newSQLiteApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Database:  config.DatabaseConfig{Driver: config.DriverSQLite, Path: filepath.Join(dir, "academy.db")},
		Session:   config.SessionConfig{Secret: "test-secret", TTL: time.Hour},
		Exports:   config.ExportsConfig{Dir: filepath.Join(dir, "exports")},
		Bootstrap: config.BootstrapConfig{AdminUsername: "root", AdminPassword: "root-pass"},
	}
	a, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestAcademyLifecycleOnSQLite(t *testing.T) {
	a := newSQLiteApp(t)
	ctx := context.Background()

	polo, err := a.Academies.Create(ctx, admin, models.CreateAcademyRequest{Name: "Polo A"})
	require.NoError(t, err)

	jane, err := a.Students.Create(ctx, admin, models.CreateStudentRequest{
		FullName: "Jane Doe", NationalID: "11122233344", AcademyID: polo.ID,
	})
	require.NoError(t, err)
	assert.NotZero(t, jane.ID)

	_, err = a.Students.Create(ctx, admin, models.CreateStudentRequest{
		FullName: "Jane Twin", NationalID: "111.222.333-44", AcademyID: polo.ID,
	})
	assert.ErrorIs(t, err, appErrors.ErrDuplicateKey)

	judo, err := a.Modalities.Create(ctx, admin, models.CreateModalityRequest{Name: "Judo"})
	require.NoError(t, err)

	_, err = a.Enrollments.Create(ctx, admin, models.CreateEnrollmentRequest{
		StudentID: jane.ID, ModalityID: judo.ID, EnrollmentNumber: "J-1", Grade: "White",
	})
	require.NoError(t, err)
	_, err = a.Enrollments.Create(ctx, admin, models.CreateEnrollmentRequest{
		StudentID: jane.ID, ModalityID: judo.ID, EnrollmentNumber: "J-2",
	})
	assert.ErrorIs(t, err, appErrors.ErrDuplicateKey)

	_, err = a.DB.ExecContext(ctx,
		"INSERT INTO enrollments (enrollment_number, student_id, modality_id) VALUES (?, ?, ?)",
		"J-3", jane.ID, judo.ID)
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))

	_, err = a.Enrollments.UpdateGradeByPair(ctx, admin, jane.ID, judo.ID, "Yellow")
	require.NoError(t, err)
	enrollments, err := a.Enrollments.ListByStudent(ctx, admin, jane.ID)
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	assert.Equal(t, "Yellow", models.StringValue(enrollments[0].Grade))

	require.NoError(t, a.Students.SetActive(ctx, admin, jane.ID, false))
	active, err := a.Students.ListActiveByAcademy(ctx, admin, polo.ID)
	require.NoError(t, err)
	assert.Empty(t, active)
	all, err := a.Students.List(ctx, admin, models.StudentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	assert.ErrorIs(t, a.Academies.Delete(ctx, admin, polo.ID), appErrors.ErrReferential)
	_, err = a.DB.ExecContext(ctx, "DELETE FROM academies WHERE id = ?", polo.ID)
	require.Error(t, err)
	assert.True(t, database.IsForeignKeyViolation(err))

	require.NoError(t, a.Students.Delete(ctx, admin, jane.ID))
	require.NoError(t, a.Academies.Delete(ctx, admin, polo.ID))
}

func TestAdminCanDeleteOwnAccountOnSQLite(t *testing.T) {
	a := newSQLiteApp(t)
	ctx := context.Background()

	generated, err := a.BootstrapAdmin(ctx)
	require.NoError(t, err)
	assert.Empty(t, generated)

	root, err := a.Users.Authenticate(ctx, "root", "root-pass")
	require.NoError(t, err)
	actor := models.PrincipalFromUser(root)

	second, err := a.Users.Register(ctx, actor, models.CreateUserRequest{
		Username: "second", Password: "secret", Role: models.RoleAdmin,
	})
	require.NoError(t, err)

	require.NoError(t, a.Users.Delete(ctx, actor, root.ID))
	_, err = a.Users.Authenticate(ctx, "root", "root-pass")
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	last := models.PrincipalFromUser(second)
	assert.ErrorIs(t, a.Users.Delete(ctx, last, second.ID), appErrors.ErrLastAdmin)
}
