package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-admin/internal/models"
)

var studentListColumns = []string{"id", "full_name", "birth_date", "national_id", "national_id_formatted", "phone", "guardian_name", "grade", "active", "registered_at", "academy_id", "academy_name"}

func TestStudentCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO students (full_name, birth_date, national_id, national_id_formatted, phone, guardian_name, grade, active, registered_at, academy_id)")).
		WithArgs("Jane Doe", nil, "11122233344", "111.222.333-44", nil, nil, nil, true, sqlmock.AnyArg(), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))

	student := &models.Student{
		FullName:            "Jane Doe",
		NationalID:          "11122233344",
		NationalIDFormatted: "111.222.333-44",
		Active:              true,
		AcademyID:           1,
	}
	require.NoError(t, repo.Create(context.Background(), student))
	assert.Equal(t, int64(10), student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentListWithFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(studentListColumns).
		AddRow(10, "Jane Doe", nil, "11122233344", "111.222.333-44", "11987654321", nil, "White", true, now, 1, "Polo A")
	mock.ExpectQuery(regexp.QuoteMeta("FROM students s JOIN academies a ON a.id = s.academy_id WHERE s.academy_id = ? AND s.active = ? ORDER BY s.full_name, s.id")).
		WithArgs(int64(1), true).
		WillReturnRows(rows)

	academyID := int64(1)
	active := true
	students, err := repo.List(context.Background(), models.StudentFilter{AcademyID: &academyID, Active: &active})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Polo A", students[0].AcademyName)
	assert.Equal(t, "White", models.StringValue(students[0].Grade))
	assert.Nil(t, students[0].BirthDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentListSearch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE (LOWER(s.full_name) LIKE ? OR s.national_id LIKE ?)")).
		WithArgs("%jane%", "%jane%").
		WillReturnRows(sqlmock.NewRows(studentListColumns))

	students, err := repo.List(context.Background(), models.StudentFilter{Search: " Jane "})
	require.NoError(t, err)
	assert.Empty(t, students)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentSetActiveMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET active = ? WHERE id = ?")).
		WithArgs(false, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetActive(context.Background(), 5, false)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
