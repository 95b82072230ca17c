package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/credilocker/credilocker-api/internal/models"
)

func TestAttendanceRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (activity_id, student_uid)")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	record := &models.AttendanceRecord{
		ActivityID:       1,
		StudentUID:       "24BIT001",
		AttendanceStatus: models.AttendancePresent,
		MarkedBy:         "T001",
	}
	require.NoError(t, repo.Upsert(context.Background(), record))
	require.False(t, record.MarkedAt.IsZero())

	// Re-marking goes through the same statement, not a delete+insert.
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (activity_id, student_uid)")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	record.AttendanceStatus = models.AttendanceAbsent
	require.NoError(t, repo.Upsert(context.Background(), record))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryUpsertBatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO co_curricular_attendance")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO co_curricular_attendance")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	records := []models.AttendanceRecord{
		{ActivityID: 1, StudentUID: "24BIT001", AttendanceStatus: models.AttendancePresent, MarkedBy: "T001"},
		{ActivityID: 1, StudentUID: "24BIT002", AttendanceStatus: models.AttendanceAbsent, MarkedBy: "T001"},
	}
	require.NoError(t, repo.UpsertBatch(context.Background(), records))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryUpsertBatchEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	require.NoError(t, repo.UpsertBatch(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}
