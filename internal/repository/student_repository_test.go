package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/credilocker/credilocker-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func studentRows(students ...models.Student) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"uid", "name", "class", "semester", "email", "phone", "created_at", "updated_at"})
	for _, s := range students {
		rows.AddRow(s.UID, s.Name, s.Class, s.Semester, s.Email, s.Phone, time.Now(), time.Now())
	}
	return rows
}

func TestStudentRepositoryCreateAndFind(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	student := &models.Student{
		UID:   "24BIT001",
		Name:  "Asha Verma",
		Class: models.ClassFYIT,
		Email: "asha@college.edu",
	}
	require.NoError(t, repo.Create(context.Background(), student))
	require.False(t, student.CreatedAt.IsZero())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT uid, name, class, semester, email, phone")).
		WithArgs("24BIT001").
		WillReturnRows(studentRows(*student))

	found, err := repo.FindByUID(context.Background(), "24BIT001")
	require.NoError(t, err)
	require.Equal(t, "Asha Verma", found.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("UPPER(class) = $1")).
		WithArgs("SYIT", "%asha%").
		WillReturnRows(studentRows(models.Student{UID: "23BIT010", Name: "Asha", Class: "SYIT"}))

	students, err := repo.List(context.Background(), models.StudentFilter{Class: "syit", Search: "Asha"})
	require.NoError(t, err)
	require.Len(t, students, 1)
	require.Equal(t, "23BIT010", students[0].UID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryLoginLookup(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("uid = $1 AND LOWER(email) = LOWER($2)")).
		WithArgs("24BIT001", "asha@college.edu").
		WillReturnRows(studentRows(models.Student{UID: "24BIT001", Class: "FYIT", Email: "asha@college.edu"}))

	found, err := repo.FindByUIDAndEmail(context.Background(), "24BIT001", "asha@college.edu")
	require.NoError(t, err)
	require.Equal(t, "FYIT", found.Class)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryBulkUpdateSemester(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET semester = $2")).
		WithArgs("SYIT", 4, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 42))

	affected, err := repo.BulkUpdateSemester(context.Background(), "syit", 4)
	require.NoError(t, err)
	require.Equal(t, int64(42), affected)
	require.NoError(t, mock.ExpectationsWereMet())
}
