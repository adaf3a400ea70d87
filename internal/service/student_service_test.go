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

func seedAcademy(t *testing.T, ts *testServices, name string) *models.Academy {
	t.Helper()
	academy, err := ts.academies.Create(context.Background(), editorActor, models.CreateAcademyRequest{Name: name})
	require.NoError(t, err)
	return academy
}

func TestStudentScenarioDeactivate(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	polo := seedAcademy(t, ts, "Polo A")

	jane, err := ts.students.Create(ctx, editorActor, models.CreateStudentRequest{
		FullName:   "Jane Doe",
		NationalID: "11122233344",
		AcademyID:  polo.ID,
	})
	require.NoError(t, err)
	assert.NotZero(t, jane.ID)
	assert.True(t, jane.Active)
	assert.Equal(t, "111.222.333-44", jane.NationalIDFormatted)

	_, err = ts.students.Create(ctx, editorActor, models.CreateStudentRequest{
		FullName:   "John Doe",
		NationalID: "111.222.333-44",
		AcademyID:  polo.ID,
	})
	assert.ErrorIs(t, err, appErrors.ErrDuplicateKey)
	assert.Len(t, ts.uow.state.students, 1)

	require.NoError(t, ts.students.SetActive(ctx, editorActor, jane.ID, false))

	active, err := ts.students.ListActiveByAcademy(ctx, editorActor, polo.ID)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := ts.students.List(ctx, editorActor, models.StudentFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Polo A", all[0].AcademyName)
	assert.False(t, all[0].Active)
}

func TestStudentServiceCreateNormalizesInput(t *testing.T) {
	ts := newTestServices(t)
	polo := seedAcademy(t, ts, "Polo A")
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	ts.students.now = func() time.Time { return now }

	student, err := ts.students.Create(context.Background(), editorActor, models.CreateStudentRequest{
		FullName:   "Ana Lima",
		NationalID: "123-45",
		BirthDate:  "05/06/2010",
		Phone:      "(11) 98765-4321",
		Grade:      " ",
		AcademyID:  polo.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "00000012345", student.NationalID)
	assert.Equal(t, "000.000.123-45", student.NationalIDFormatted)
	assert.Equal(t, "11987654321", models.StringValue(student.Phone))
	assert.Nil(t, student.Grade)
	require.NotNil(t, student.BirthDate)
	assert.Equal(t, time.Date(2010, 6, 5, 0, 0, 0, 0, time.UTC), *student.BirthDate)
	assert.Equal(t, now, student.RegisteredAt)
}

func TestStudentServiceCreateRejectsInvalidInput(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	polo := seedAcademy(t, ts, "Polo A")

	_, err := ts.students.Create(ctx, editorActor, models.CreateStudentRequest{
		FullName: "Too Long", NationalID: "123456789012", AcademyID: polo.ID,
	})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = ts.students.Create(ctx, editorActor, models.CreateStudentRequest{
		FullName: "Bad Date", NationalID: "1", BirthDate: "2010/31/31", AcademyID: polo.ID,
	})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = ts.students.Create(ctx, editorActor, models.CreateStudentRequest{
		FullName: "No Academy", NationalID: "1", AcademyID: 999,
	})
	assert.ErrorIs(t, err, appErrors.ErrReferential)

	_, err = ts.students.Create(ctx, viewerActor, models.CreateStudentRequest{
		FullName: "Viewer", NationalID: "2", AcademyID: polo.ID,
	})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.Empty(t, ts.uow.state.students)
}

func TestStudentServiceUpdate(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	poloA := seedAcademy(t, ts, "Polo A")
	poloB := seedAcademy(t, ts, "Polo B")
	student, err := ts.students.Create(ctx, editorActor, models.CreateStudentRequest{
		FullName: "Jane Doe", NationalID: "11122233344", Phone: "11987654321", GuardianName: "Maria", AcademyID: poloA.ID,
	})
	require.NoError(t, err)
	_, err = ts.students.Create(ctx, editorActor, models.CreateStudentRequest{
		FullName: "John Roe", NationalID: "99988877766", AcademyID: poloA.ID,
	})
	require.NoError(t, err)

	updated, err := ts.students.Update(ctx, editorActor, student.ID, models.UpdateStudentRequest{
		Phone:     strPtr(""),
		Grade:     strPtr("Faixa Azul"),
		AcademyID: &poloB.ID,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.Phone)
	assert.Equal(t, "Maria", models.StringValue(updated.GuardianName))
	assert.Equal(t, "Faixa Azul", models.StringValue(updated.Grade))
	assert.Equal(t, poloB.ID, updated.AcademyID)
	assert.Equal(t, "Jane Doe", updated.FullName)

	_, err = ts.students.Update(ctx, editorActor, student.ID, models.UpdateStudentRequest{NationalID: strPtr("999.888.777-66")})
	assert.ErrorIs(t, err, appErrors.ErrDuplicateKey)

	_, err = ts.students.Update(ctx, editorActor, student.ID, models.UpdateStudentRequest{FullName: strPtr("  ")})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	missing := int64(999)
	_, err = ts.students.Update(ctx, editorActor, student.ID, models.UpdateStudentRequest{AcademyID: &missing})
	assert.ErrorIs(t, err, appErrors.ErrReferential)
	assert.Equal(t, poloB.ID, ts.uow.state.students[student.ID].AcademyID)
}

func TestStudentServiceLookupByNationalID(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	polo := seedAcademy(t, ts, "Polo A")
	student, err := ts.students.Create(ctx, editorActor, models.CreateStudentRequest{
		FullName: "Jane Doe", NationalID: "11122233344", AcademyID: polo.ID,
	})
	require.NoError(t, err)

	detail, err := ts.students.GetByNationalID(ctx, editorActor, "111.222.333-44")
	require.NoError(t, err)
	assert.Equal(t, student.ID, detail.ID)
	assert.Equal(t, "Polo A", detail.AcademyName)
	assert.Empty(t, detail.Enrollments)

	toggled, err := ts.students.SetActiveByNationalID(ctx, editorActor, "11122233344", false)
	require.NoError(t, err)
	assert.False(t, toggled.Active)
	assert.False(t, ts.uow.state.students[student.ID].Active)

	_, err = ts.students.GetByNationalID(ctx, editorActor, "555")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestStudentServiceDeleteCascadesEnrollments(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	polo := seedAcademy(t, ts, "Polo A")
	student, err := ts.students.Create(ctx, editorActor, models.CreateStudentRequest{
		FullName: "Jane Doe", NationalID: "11122233344", AcademyID: polo.ID,
	})
	require.NoError(t, err)
	judo, err := ts.modalities.Create(ctx, editorActor, models.CreateModalityRequest{Name: "Judo"})
	require.NoError(t, err)
	_, err = ts.enrollments.Create(ctx, editorActor, models.CreateEnrollmentRequest{
		StudentID: student.ID, ModalityID: judo.ID, EnrollmentNumber: "J-001",
	})
	require.NoError(t, err)

	err = ts.students.Delete(ctx, editorActor, student.ID)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	require.NoError(t, ts.students.Delete(ctx, adminActor, student.ID))
	assert.Empty(t, ts.uow.state.students)
	assert.Empty(t, ts.uow.state.enrollments)

	err = ts.students.Delete(ctx, adminActor, student.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
